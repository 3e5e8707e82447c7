package httpx

import "github.com/ariefcatur/hospitality-pos/internal/auth"

// Allow-sets per endpoint group. A role missing from a set gets 403.
var (
	rolesAnyStaff = auth.AllRoles()

	rolesOrdering = []auth.Role{
		auth.RoleAdmin, auth.RoleManager, auth.RoleCashier,
		auth.RoleBarManager, auth.RoleBartender,
		auth.RoleRestaurantManager, auth.RoleWaiter,
		auth.RolePharmacyManager, auth.RolePharmacist,
	}
	rolesInvoicing = append([]auth.Role{auth.RoleAccountant}, rolesOrdering...)
	rolesOrderRead = append([]auth.Role{auth.RoleAccountant, auth.RoleAuditor, auth.RoleChef}, rolesOrdering...)

	rolesStock = []auth.Role{
		auth.RoleAdmin, auth.RoleManager, auth.RoleStockKeeper,
		auth.RoleBarManager, auth.RoleRestaurantManager, auth.RolePharmacyManager,
	}
	rolesStockRead = append([]auth.Role{auth.RoleAuditor, auth.RoleAccountant, auth.RoleChef, auth.RolePharmacist}, rolesStock...)
	rolesCatalog   = rolesStock

	rolesTables = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleBarManager, auth.RoleRestaurantManager}
	rolesStaff  = []auth.Role{auth.RoleAdmin, auth.RoleManager}

	rolesRental     = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RolePropertyManager}
	rolesRentalDesk = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RolePropertyManager, auth.RoleReceptionist}
	rolesRentalRead = append([]auth.Role{auth.RoleAccountant, auth.RoleAuditor, auth.RoleReceptionist}, rolesRental...)

	rolesSettings     = []auth.Role{auth.RoleAdmin, auth.RoleAccountant}
	rolesSettingsRead = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleAccountant, auth.RoleAuditor}
	rolesReports      = []auth.Role{
		auth.RoleAdmin, auth.RoleManager, auth.RoleAccountant, auth.RoleAuditor,
		auth.RoleBarManager, auth.RoleRestaurantManager, auth.RolePharmacyManager,
	}
)
