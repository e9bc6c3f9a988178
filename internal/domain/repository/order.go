package repository

// Order is a validated timestamp sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// IsValidOrder returns true if o is a supported sort order.
func IsValidOrder(o Order) bool {
	switch o {
	case OrderAsc, OrderDesc:
		return true
	default:
		return false
	}
}

// DefaultOrder returns the default sort order.
func DefaultOrder() Order { return OrderAsc }

// ParseOrder converts a raw string to a valid order. Empty input yields the
// default; anything else unsupported reports ok=false.
func ParseOrder(s string) (Order, bool) {
	if s == "" {
		return DefaultOrder(), true
	}
	o := Order(s)
	if IsValidOrder(o) {
		return o, true
	}
	return "", false
}
