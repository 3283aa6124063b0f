// Package cart holds the transient product selection built up while
// assembling a new order. It lives only in memory; a restart starts empty.
package cart

import (
	"sort"

	"github.com/avolkov/tsdman/internal/model"
)

// Cart maps product IDs to requested quantities. A product is either
// absent or present with a quantity of at least one; quantities never
// reach zero while stored.
type Cart struct {
	items map[int64]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[int64]int)}
}

// Increase adds one unit of the product. Stock ceilings are the caller's
// concern.
func (c *Cart) Increase(productID int64) {
	c.items[productID]++
}

// Decrease removes one unit of the product. At zero the entry is deleted;
// decreasing an absent product does nothing.
func (c *Cart) Decrease(productID int64) {
	current, ok := c.items[productID]
	if !ok {
		return
	}
	if current <= 1 {
		delete(c.items, productID)
		return
	}
	c.items[productID] = current - 1
}

// Quantity returns the requested quantity for a product, zero if absent.
func (c *Cart) Quantity(productID int64) int {
	return c.items[productID]
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the cart contents.
func (c *Cart) Items() map[int64]int {
	items := make(map[int64]int, len(c.items))
	for id, qty := range c.items {
		items[id] = qty
	}
	return items
}

// Lines converts the cart into order-creation line items, ordered by
// product ID so request bodies are deterministic.
func (c *Cart) Lines() []model.OrderItemCreate {
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lines := make([]model.OrderItemCreate, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, model.OrderItemCreate{ProductID: id, Quantity: c.items[id]})
	}
	return lines
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = make(map[int64]int)
}
