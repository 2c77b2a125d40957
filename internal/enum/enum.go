package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	CategoryStarters = "entrées"
	CategoryMains    = "plats"
	CategoryDesserts = "desserts"
	CategoryDrinks   = "boissons"
)

// GuestUserID is recorded on orders submitted without a signed-in account.
const GuestUserID = "guest"
