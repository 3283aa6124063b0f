package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avolkov/tsdman/internal/model"
)

// Products returns a catalog page. GET /products?skip=&limit=.
func (c *Client) Products(ctx context.Context, skip, limit int) ([]model.Product, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var products []model.Product
	if err := c.getJSON(ctx, "/products?"+query.Encode(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product with its photo. POST /products, multipart.
func (c *Client) CreateProduct(ctx context.Context, name string, price float64, stock int, image io.Reader, filename string) error {
	fields := map[string]string{
		"name":  name,
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"stock": strconv.Itoa(stock),
	}
	return c.sendMultipart(ctx, http.MethodPost, "/products", fields, "image", filename, image, nil)
}

// UpdateProduct updates the product named in upd. PUT /products/by-name.
// The backend expects the whole update object JSON-encoded into a single
// form field named request.
func (c *Client) UpdateProduct(ctx context.Context, upd model.ProductUpdate) error {
	payload, err := json.Marshal(upd)
	if err != nil {
		return fmt.Errorf("encoding product update: %w", err)
	}

	form := url.Values{}
	form.Set("request", string(payload))

	return c.sendForm(ctx, http.MethodPut, "/products/by-name", form, nil)
}

// UpdateProductImage replaces a product's photo. PUT /products/by-name/image,
// multipart.
func (c *Client) UpdateProductImage(ctx context.Context, name string, image io.Reader, filename string) error {
	fields := map[string]string{"name": name}
	return c.sendMultipart(ctx, http.MethodPut, "/products/by-name/image", fields, "image", filename, image, nil)
}

// DeleteProduct deletes the product with the given name.
// DELETE /products/by-name.
func (c *Client) DeleteProduct(ctx context.Context, name string) error {
	form := url.Values{}
	form.Set("name", name)

	return c.sendForm(ctx, http.MethodDelete, "/products/by-name", form, nil)
}
