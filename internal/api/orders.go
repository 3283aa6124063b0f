package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avolkov/tsdman/internal/model"
)

// Orders returns a page of orders. GET /orders?skip=&limit=.
func (c *Client) Orders(ctx context.Context, skip, limit int) ([]model.Order, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var orders []model.Order
	if err := c.getJSON(ctx, "/orders?"+query.Encode(), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder submits a new order. POST /orders, JSON body.
func (c *Client) CreateOrder(ctx context.Context, order model.OrderCreate) error {
	return c.sendJSON(ctx, http.MethodPost, "/orders", order, nil)
}

// OrderByIdentifier resolves a scanned or typed order code to its order.
// GET /search/orders/{identifier}.
func (c *Client) OrderByIdentifier(ctx context.Context, identifier string) (*model.Order, error) {
	var order model.Order
	if err := c.getJSON(ctx, "/search/orders/"+url.PathEscape(identifier), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AddOrderItem adds a product line to an order.
// POST /orders/by-identifier/{identifier}/items.
func (c *Client) AddOrderItem(ctx context.Context, identifier, productName string, quantity int) error {
	form := url.Values{}
	form.Set("product_name", productName)
	form.Set("quantity", strconv.Itoa(quantity))

	path := "/orders/by-identifier/" + url.PathEscape(identifier) + "/items"
	return c.sendForm(ctx, http.MethodPost, path, form, nil)
}

// UpdateOrderItem sets the quantity of an order line; zero removes the line.
// PATCH /orders/by-identifier/{identifier}/items/by-name.
func (c *Client) UpdateOrderItem(ctx context.Context, identifier, productName string, quantity int) error {
	form := url.Values{}
	form.Set("product_name", productName)
	form.Set("quantity", strconv.Itoa(quantity))

	path := "/orders/by-identifier/" + url.PathEscape(identifier) + "/items/by-name"
	return c.sendForm(ctx, http.MethodPatch, path, form, nil)
}

// UpdateOrderStatus moves an order to the given status.
// PATCH /orders/by-identifier/{identifier}/status.
func (c *Client) UpdateOrderStatus(ctx context.Context, identifier, status string) error {
	form := url.Values{}
	form.Set("status", status)

	path := "/orders/by-identifier/" + url.PathEscape(identifier) + "/status"
	return c.sendForm(ctx, http.MethodPatch, path, form, nil)
}

// DeleteOrder deletes an order. DELETE /orders/{identifier}.
func (c *Client) DeleteOrder(ctx context.Context, identifier string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/orders/"+url.PathEscape(identifier), nil, "")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// DownloadReceipt fetches an order's receipt PDF.
// GET /orders/{identifier}/receipt.
func (c *Client) DownloadReceipt(ctx context.Context, identifier string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(identifier)+"/receipt", nil, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading receipt: %w", err)
	}
	return data, nil
}
