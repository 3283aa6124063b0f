package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/avolkov/tsdman/internal/model"
)

// Clients returns the full client list. GET /clients.
func (c *Client) Clients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := c.getJSON(ctx, "/clients", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateClient creates a client. POST /clients.
func (c *Client) CreateClient(ctx context.Context, client model.Client) error {
	form := url.Values{}
	form.Set("first_name", client.FirstName)
	form.Set("last_name", client.LastName)
	form.Set("middle_name", client.MiddleName)
	form.Set("birth_date", client.BirthDate)
	form.Set("phone", client.Phone)
	form.Set("address", client.Address)

	return c.sendForm(ctx, http.MethodPost, "/clients", form, nil)
}

// UpdateClient updates the client currently named firstName lastName.
// PUT /clients/by-name. Unset fields in upd stay unchanged server-side.
func (c *Client) UpdateClient(ctx context.Context, firstName, lastName string, upd model.ClientUpdate) error {
	form := url.Values{}
	form.Set("first_name", firstName)
	form.Set("last_name", lastName)
	setOptional(form, "new_first_name", upd.NewFirstName)
	setOptional(form, "new_last_name", upd.NewLastName)
	setOptional(form, "new_middle_name", upd.NewMiddleName)
	setOptional(form, "new_birth_date", upd.NewBirthDate)
	setOptional(form, "new_phone", upd.NewPhone)
	setOptional(form, "new_address", upd.NewAddress)

	return c.sendForm(ctx, http.MethodPut, "/clients/by-name", form, nil)
}

// DeleteClient deletes the client named firstName lastName.
// DELETE /clients/by-name.
func (c *Client) DeleteClient(ctx context.Context, firstName, lastName string) error {
	form := url.Values{}
	form.Set("first_name", firstName)
	form.Set("last_name", lastName)

	return c.sendForm(ctx, http.MethodDelete, "/clients/by-name", form, nil)
}

// setOptional adds a form field only when the value is present.
func setOptional(form url.Values, key string, value *string) {
	if value != nil {
		form.Set(key, *value)
	}
}
