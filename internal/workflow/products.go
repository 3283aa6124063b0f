package workflow

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/avolkov/tsdman/internal/imaging"
	"github.com/avolkov/tsdman/internal/model"
)

// productReloadLimit is the page reloaded after a catalog mutation.
const productReloadLimit = 100

// LoadProducts fetches a catalog page.
func (c *Controller) LoadProducts(ctx context.Context, skip, limit int) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	products, err := client.Products(ctx, skip, limit)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "loading products failed: " + err.Error()
			return
		}
		c.allProducts = products
		c.projectProducts()
	})
}

// FilterProducts recomputes the visible product list from the retained
// source using the current search query. An empty query restores the
// full list.
func (c *Controller) FilterProducts() {
	c.mutate(c.projectProducts)
}

// projectProducts rebuilds the visible product projection. Callers hold
// the lock.
func (c *Controller) projectProducts() {
	query := strings.ToLower(c.state.SearchQuery)
	if query == "" {
		c.state.Products = c.allProducts
		return
	}

	filtered := make([]model.Product, 0, len(c.allProducts))
	for _, product := range c.allProducts {
		if strings.Contains(strings.ToLower(product.Name), query) {
			filtered = append(filtered, product)
		}
	}
	c.state.Products = filtered
}

// CreateProduct creates a product with its photo. The photo is shrunk
// and re-encoded before upload, then the catalog page is reloaded.
func (c *Controller) CreateProduct(ctx context.Context, name string, price float64, stock int, photo io.Reader, filename string) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	upload, err := imaging.Prepare(photo, filename)
	if err != nil {
		c.mutate(func() { c.state.ErrorMessage = "preparing photo failed: " + err.Error() })
		return
	}

	gen := c.begin()
	err = client.CreateProduct(ctx, name, price, stock, bytes.NewReader(upload.Data), upload.Filename)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "creating product failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadProducts(ctx, 0, productReloadLimit)
	}
}

// UpdateProduct updates a product's fields and reloads the catalog page.
func (c *Controller) UpdateProduct(ctx context.Context, upd model.ProductUpdate) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	err := client.UpdateProduct(ctx, upd)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "updating product failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadProducts(ctx, 0, productReloadLimit)
	}
}

// UpdateProductImage replaces a product's photo and reloads the catalog
// page.
func (c *Controller) UpdateProductImage(ctx context.Context, name string, photo io.Reader, filename string) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	upload, err := imaging.Prepare(photo, filename)
	if err != nil {
		c.mutate(func() { c.state.ErrorMessage = "preparing photo failed: " + err.Error() })
		return
	}

	gen := c.begin()
	err = client.UpdateProductImage(ctx, name, bytes.NewReader(upload.Data), upload.Filename)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "updating photo failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadProducts(ctx, 0, productReloadLimit)
	}
}

// DeleteProduct deletes the product with the given id and reloads the
// catalog page. The wire protocol keys products by name, resolved from
// the loaded list.
func (c *Controller) DeleteProduct(ctx context.Context, id int64) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	current, ok := c.productByID(id)
	if !ok {
		c.mutate(func() { c.state.ErrorMessage = "product not in the loaded list; reload products first" })
		return
	}

	gen := c.begin()
	err := client.DeleteProduct(ctx, current.Name)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "deleting product failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadProducts(ctx, 0, productReloadLimit)
	}
}

// productByID resolves a product from the loaded source list.
func (c *Controller) productByID(id int64) (model.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, product := range c.allProducts {
		if product.ID == id {
			return product, true
		}
	}
	return model.Product{}, false
}
