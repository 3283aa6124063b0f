package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/avolkov/tsdman/internal/model"
)

// orderPageLimit is the fixed page used for the order list; the terminal
// always loads one large page.
const orderPageLimit = 1000

// LoadOrders fetches the order list.
func (c *Controller) LoadOrders(ctx context.Context) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	orders, err := client.Orders(ctx, 0, orderPageLimit)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "loading orders failed: " + err.Error()
			return
		}
		c.allOrders = orders
		c.projectOrders()
	})
}

// FilterOrders recomputes the visible order list from the retained
// source, matching the search query against order identifiers. An empty
// query restores the full list.
func (c *Controller) FilterOrders() {
	c.mutate(c.projectOrders)
}

// projectOrders rebuilds the visible order projection. Callers hold the
// lock.
func (c *Controller) projectOrders() {
	query := strings.ToLower(c.state.SearchQuery)
	if query == "" {
		c.state.Orders = c.allOrders
		return
	}

	filtered := make([]model.Order, 0, len(c.allOrders))
	for _, order := range c.allOrders {
		if strings.Contains(strings.ToLower(order.Identifier), query) {
			filtered = append(filtered, order)
		}
	}
	c.state.Orders = filtered
}

// IncreaseQuantity adds one unit of a product to the cart.
func (c *Controller) IncreaseQuantity(productID int64) {
	c.mutate(func() { c.cart.Increase(productID) })
}

// DecreaseQuantity removes one unit of a product from the cart; the
// entry disappears at zero.
func (c *Controller) DecreaseQuantity(productID int64) {
	c.mutate(func() { c.cart.Decrease(productID) })
}

// CreateOrder converts the cart into an order for the given client, one
// line item per cart entry, status pending. The cart is cleared only
// after the backend accepts the order, then the order list is reloaded.
func (c *Controller) CreateOrder(ctx context.Context, clientID int64) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	c.mu.Lock()
	lines := c.cart.Lines()
	c.mu.Unlock()
	if len(lines) == 0 {
		c.mutate(func() { c.state.ErrorMessage = "cart is empty" })
		return
	}

	order := model.OrderCreate{
		ClientID: clientID,
		Status:   model.OrderStatusPending,
		Items:    lines,
	}

	gen := c.begin()
	err := client.CreateOrder(ctx, order)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "creating order failed: " + err.Error()
			return
		}
		c.cart.Clear()
		c.state.SelectedClientForOrder = nil
	})
	if err == nil {
		c.LoadOrders(ctx)
	}
}

// LoadOrderDetails resolves an order identifier (scanned or typed) to
// its full order and makes it the current order.
func (c *Controller) LoadOrderDetails(ctx context.Context, identifier string) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	order, err := client.OrderByIdentifier(ctx, identifier)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "loading order failed: " + err.Error()
			return
		}
		c.state.CurrentOrder = order
	})
}

// AddItemToOrder adds a product line to an existing order and reloads
// its detail.
func (c *Controller) AddItemToOrder(ctx context.Context, identifier, productName string, quantity int) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	err := client.AddOrderItem(ctx, identifier, productName, quantity)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "adding item failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadOrderDetails(ctx, identifier)
	}
}

// UpdateItemQuantity sets the quantity of an order line; zero removes
// the line. The order detail is reloaded afterwards.
func (c *Controller) UpdateItemQuantity(ctx context.Context, identifier, productName string, quantity int) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	err := client.UpdateOrderItem(ctx, identifier, productName, quantity)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "updating quantity failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadOrderDetails(ctx, identifier)
	}
}

// UpdateOrderStatus moves an order to the given status and reloads its
// detail.
func (c *Controller) UpdateOrderStatus(ctx context.Context, identifier, status string) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	err := client.UpdateOrderStatus(ctx, identifier, status)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "updating status failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadOrderDetails(ctx, identifier)
	}
}

// DeleteOrder deletes an order and reloads the list.
func (c *Controller) DeleteOrder(ctx context.Context, identifier string) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	err := client.DeleteOrder(ctx, identifier)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "deleting order failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadOrders(ctx)
	}
}

// DownloadReceipt fetches the order's receipt PDF into the download
// directory and calls onSuccess with the final path. The file is written
// through a uniquely named temp file and renamed into place, so a failed
// download leaves no partial receipt behind. onSuccess is never called
// on failure.
func (c *Controller) DownloadReceipt(ctx context.Context, identifier string, onSuccess func(path string)) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	data, err := client.DownloadReceipt(ctx, identifier)
	if err != nil {
		c.finish(gen, func() {
			c.state.ErrorMessage = "downloading receipt failed: " + err.Error()
		})
		return
	}

	final := filepath.Join(c.downloadDir, fmt.Sprintf("receipt_%s.pdf", identifier))
	tmp := final + "." + uuid.NewString() + ".part"
	if err := os.WriteFile(tmp, data, 0644); err == nil {
		err = os.Rename(tmp, final)
	}
	if err != nil {
		os.Remove(tmp)
		c.finish(gen, func() {
			c.state.ErrorMessage = "saving receipt failed: " + err.Error()
		})
		return
	}

	c.finish(gen, nil)
	if onSuccess != nil {
		onSuccess(final)
	}
}
