package orders

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusValidated  Status = "VALIDATED"
)

var validNext = map[Status]map[Status]bool{
	StatusInProgress: {StatusValidated: true},
	StatusValidated:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}
