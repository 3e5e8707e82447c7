package redisx

import "time"

const (
	// Login session: session:{token} -> hash {user_id, role, name}
	KeySession = "session:%s"

	// Tokens issued to a user: user_sessions:{user_id} -> set of tokens
	KeyUserSessions = "user_sessions:%s"

	// Settings cache: setting:{key} -> raw value
	KeySetting = "setting:%s"

	// Dedup event processing: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Live sales, per business day (YYYY-MM-DD): revenue is an integer count
	// of cents, units is a sorted set of product_id -> quantity.
	KeySalesRevenue  = "sales:revenue:%s"
	KeySalesInvoices = "sales:invoices:%s"
	KeySalesUnits    = "sales:units:%s"

	// Stock moved outside orders, per day: hash {IN, OUT} -> thousandths of a unit
	KeyStockFlow = "stock:flow:%s"
)

var (
	TTLSettingCache = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
	TTLSalesDay     = 8 * 24 * time.Hour
)
