package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/avolkov/tsdman/internal/model"
)

// Login exchanges credentials for a bearer token. POST /login.
func (c *Client) Login(ctx context.Context, username, password string) (*model.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token model.Token
	if err := c.sendForm(ctx, http.MethodPost, "/login", form, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// CurrentUser returns the account behind the client's token. GET /users/me.
// Used as the session liveness probe: any failure means the token is no
// longer accepted server-side.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
