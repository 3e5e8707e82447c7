package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
)

type Role string

const (
	RoleAdmin             Role = "ADMIN"
	RoleManager           Role = "MANAGER"
	RoleAccountant        Role = "ACCOUNTANT"
	RoleAuditor           Role = "AUDITOR"
	RoleCashier           Role = "CASHIER"
	RoleBarManager        Role = "BAR_MANAGER"
	RoleBartender         Role = "BARTENDER"
	RoleRestaurantManager Role = "RESTAURANT_MANAGER"
	RoleWaiter            Role = "WAITER"
	RoleChef              Role = "CHEF"
	RolePharmacyManager   Role = "PHARMACY_MANAGER"
	RolePharmacist        Role = "PHARMACIST"
	RoleStockKeeper       Role = "STOCK_KEEPER"
	RolePropertyManager   Role = "PROPERTY_MANAGER"
	RoleReceptionist      Role = "RECEPTIONIST"
)

var allRoles = []Role{
	RoleAdmin, RoleManager, RoleAccountant, RoleAuditor, RoleCashier,
	RoleBarManager, RoleBartender, RoleRestaurantManager, RoleWaiter, RoleChef,
	RolePharmacyManager, RolePharmacist, RoleStockKeeper, RolePropertyManager, RoleReceptionist,
}

var known = func() map[Role]bool {
	m := make(map[Role]bool, len(allRoles))
	for _, r := range allRoles {
		m[r] = true
	}
	return m
}()

var upper = cases.Upper(language.Und)

func AllRoles() []Role { return append([]Role(nil), allRoles...) }

func (r Role) Valid() bool { return known[r] }

// ParseRole accepts "bar manager", "Bar-Manager" or "BAR_MANAGER" alike.
func ParseRole(raw string) (Role, error) {
	parts := strings.FieldsFunc(raw, func(c rune) bool {
		return unicode.IsSpace(c) || c == '-' || c == '_'
	})
	r := Role(upper.String(strings.Join(parts, "_")))
	if !r.Valid() {
		return "", apperr.Validation("role", fmt.Sprintf("unknown role %q", raw))
	}
	return r, nil
}
