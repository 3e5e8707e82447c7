package orders

const (
	TopicOrderCreated  = "pos.order.created"
	TopicOrderInvoiced = "pos.order.invoiced"
	TopicStockMoved    = "pos.stock.moved"
)

// PartitionKey keeps every event of one order (or product) on one partition.
func PartitionKey(id string) []byte { return []byte(id) }
