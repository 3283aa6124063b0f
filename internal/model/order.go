package model

// Order represents an order with its embedded client and item snapshots.
// Identifier is the human-scannable code printed on the order's barcode.
type Order struct {
	ID         int64       `json:"id"`
	Identifier string      `json:"identifier"`
	Status     string      `json:"status"`
	ClientID   int64       `json:"client_id"`
	Client     Client      `json:"client"`
	Items      []OrderItem `json:"items"`
}

// Order statuses.
const (
	OrderStatusPending = "pending"
	OrderStatusReady   = "ready"
	OrderStatusShipped = "shipped"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	return s == OrderStatusPending || s == OrderStatusReady || s == OrderStatusShipped
}

// OrderItem is a single line of an order, with a product snapshot.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// OrderCreate is the request body for creating an order.
type OrderCreate struct {
	ClientID int64             `json:"client_id"`
	Status   string            `json:"status"`
	Items    []OrderItemCreate `json:"items"`
}

// OrderItemCreate is a single requested line in an order creation.
type OrderItemCreate struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
