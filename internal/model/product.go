package model

// Product represents a catalog product with its current stock level.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image,omitempty"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// ProductUpdate carries changed fields for a product update.
// The backend keys the update on the current name; nil fields are
// left unchanged.
type ProductUpdate struct {
	Name     string   `json:"name"`
	NewName  *string  `json:"new_name,omitempty"`
	NewPrice *float64 `json:"new_price,omitempty"`
	NewStock *int     `json:"new_stock,omitempty"`
}
