package enums

// OrderStatus mirrors the lifecycle values the upstream backend reports.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (o OrderStatus) String() string {
	return string(o)
}

// CountsTowardRevenue reports whether orders in this state appear in sales totals.
func (o OrderStatus) CountsTowardRevenue() bool {
	return o != OrderStatusCancelled
}
