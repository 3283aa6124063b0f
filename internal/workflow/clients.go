package workflow

import (
	"context"
	"strings"

	"github.com/avolkov/tsdman/internal/model"
)

// LoadClients fetches the full client list.
func (c *Controller) LoadClients(ctx context.Context) {
	client := c.apiClient()
	if client == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	clients, err := client.Clients(ctx)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "loading clients failed: " + err.Error()
			return
		}
		c.allClients = clients
		c.projectClients()
	})
}

// FilterClients recomputes the visible client list from the retained
// source using the current search query. An empty query restores the
// full list; filtering never mutates the source.
func (c *Controller) FilterClients() {
	c.mutate(c.projectClients)
}

// projectClients rebuilds the visible client projection. Callers hold
// the lock.
func (c *Controller) projectClients() {
	query := strings.ToLower(c.state.SearchQuery)
	if query == "" {
		c.state.Clients = c.allClients
		return
	}

	filtered := make([]model.Client, 0, len(c.allClients))
	for _, client := range c.allClients {
		if strings.Contains(strings.ToLower(client.FirstName), query) ||
			strings.Contains(strings.ToLower(client.LastName), query) ||
			strings.Contains(strings.ToLower(client.MiddleName), query) {
			filtered = append(filtered, client)
		}
	}
	c.state.Clients = filtered
}

// CreateClient creates a client and reloads the list.
func (c *Controller) CreateClient(ctx context.Context, client model.Client) {
	apiClient := c.apiClient()
	if apiClient == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	gen := c.begin()
	err := apiClient.CreateClient(ctx, client)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "creating client failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadClients(ctx)
	}
}

// UpdateClient replaces the fields of the client with the given id. The
// wire protocol keys clients by first and last name, so the current name
// is resolved from the loaded list.
func (c *Controller) UpdateClient(ctx context.Context, id int64, updated model.Client) {
	apiClient := c.apiClient()
	if apiClient == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	current, ok := c.clientByID(id)
	if !ok {
		c.mutate(func() { c.state.ErrorMessage = "client not in the loaded list; reload clients first" })
		return
	}

	upd := model.ClientUpdate{
		NewFirstName:  &updated.FirstName,
		NewLastName:   &updated.LastName,
		NewMiddleName: &updated.MiddleName,
		NewBirthDate:  &updated.BirthDate,
		NewPhone:      &updated.Phone,
		NewAddress:    &updated.Address,
	}

	gen := c.begin()
	err := apiClient.UpdateClient(ctx, current.FirstName, current.LastName, upd)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "updating client failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadClients(ctx)
	}
}

// DeleteClient deletes the client with the given id and reloads the
// list. No optimistic local removal.
func (c *Controller) DeleteClient(ctx context.Context, id int64) {
	apiClient := c.apiClient()
	if apiClient == nil {
		c.mutate(func() { c.state.ErrorMessage = "not logged in" })
		return
	}

	current, ok := c.clientByID(id)
	if !ok {
		c.mutate(func() { c.state.ErrorMessage = "client not in the loaded list; reload clients first" })
		return
	}

	gen := c.begin()
	err := apiClient.DeleteClient(ctx, current.FirstName, current.LastName)
	c.finish(gen, func() {
		if err != nil {
			c.state.ErrorMessage = "deleting client failed: " + err.Error()
		}
	})
	if err == nil {
		c.LoadClients(ctx)
	}
}

// clientByID resolves a client from the loaded source list.
func (c *Controller) clientByID(id int64) (model.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, client := range c.allClients {
		if client.ID == id {
			return client, true
		}
	}
	return model.Client{}, false
}
