// Package workflow coordinates every terminal operation against the
// backend: session lifecycle, list loading, order assembly, and CRUD for
// clients and products. Front-ends (the CLI, tests) read state snapshots
// and subscribe to change notifications; all mutation goes through
// controller methods.
package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/avolkov/tsdman/internal/api"
	"github.com/avolkov/tsdman/internal/cart"
	"github.com/avolkov/tsdman/internal/model"
	"github.com/avolkov/tsdman/internal/session"
)

// State is a point-in-time snapshot of the controller. List fields hold
// the visible (possibly filtered) projections; the unfiltered sources are
// kept internally so filtering never loses data.
type State struct {
	LoggedIn     bool
	Loading      bool
	ErrorMessage string
	SearchQuery  string

	Clients  []model.Client
	Products []model.Product
	Orders   []model.Order

	SelectedClient         *model.Client
	SelectedClientForOrder *model.Client
	SelectedProduct        *model.Product
	CurrentOrder           *model.Order

	Cart map[int64]int
}

// Controller is the single coordination point between front-ends and the
// backend. Shared state is mutex-guarded; every network failure is
// captured into ErrorMessage and never propagated to callers.
type Controller struct {
	store       *session.Store
	secret      string
	downloadDir string

	mu     sync.Mutex
	client *api.Client // authenticated; nil until login or restore
	base   *api.Client // unauthenticated, used for login only
	state  State

	allClients  []model.Client
	allProducts []model.Product
	allOrders   []model.Order
	cart        *cart.Cart

	// gen invalidates in-flight loads: logout bumps it, and a load whose
	// snapshot no longer matches drops its result instead of writing
	// stale data into fresh state.
	gen uint64

	observers map[int]func()
	nextObs   int
}

// New returns a controller for the backend at baseURL. secret is the
// shared JWT secret used for local expiry decoding; downloadDir receives
// receipt files.
func New(baseURL string, store *session.Store, secret, downloadDir string) *Controller {
	return &Controller{
		store:       store,
		secret:      secret,
		downloadDir: downloadDir,
		base:        api.New(baseURL, ""),
		cart:        cart.New(),
		observers:   make(map[int]func()),
	}
}

// OnChange registers an observer called after every state change. The
// returned function unsubscribes it.
func (c *Controller) OnChange(fn func()) func() {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.state
	snap.Clients = append([]model.Client(nil), c.state.Clients...)
	snap.Products = append([]model.Product(nil), c.state.Products...)
	snap.Orders = append([]model.Order(nil), c.state.Orders...)
	snap.Cart = c.cart.Items()
	return snap
}

// ClearError dismisses the current error message.
func (c *Controller) ClearError() {
	c.mutate(func() { c.state.ErrorMessage = "" })
}

// SetSearchQuery updates the query used by the Filter methods.
func (c *Controller) SetSearchQuery(query string) {
	c.mutate(func() { c.state.SearchQuery = query })
}

// SelectClient marks a client as selected for detail screens.
func (c *Controller) SelectClient(client *model.Client) {
	c.mutate(func() { c.state.SelectedClient = client })
}

// SelectClientForOrder marks the client the cart will be ordered for.
func (c *Controller) SelectClientForOrder(client *model.Client) {
	c.mutate(func() { c.state.SelectedClientForOrder = client })
}

// SelectProduct marks a product as selected for detail screens.
func (c *Controller) SelectProduct(product *model.Product) {
	c.mutate(func() { c.state.SelectedProduct = product })
}

// mutate runs fn under the lock, then notifies observers.
func (c *Controller) mutate(fn func()) {
	c.mu.Lock()
	fn()
	obs := c.observerList()
	c.mu.Unlock()
	notify(obs)
}

// begin marks the controller loading and returns the generation the
// caller must pass to finish. Advisory only: a second operation started
// before the first finishes is not blocked.
func (c *Controller) begin() uint64 {
	c.mu.Lock()
	c.state.Loading = true
	gen := c.gen
	obs := c.observerList()
	c.mu.Unlock()
	notify(obs)
	return gen
}

// finish clears the loading flag and applies the operation's state
// mutation, unless the generation moved while the network call was in
// flight, in which case the result is dropped.
func (c *Controller) finish(gen uint64, apply func()) {
	c.mu.Lock()
	c.state.Loading = false
	if gen == c.gen && apply != nil {
		apply()
	}
	obs := c.observerList()
	c.mu.Unlock()
	notify(obs)
}

func (c *Controller) observerList() []func() {
	obs := make([]func(), 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	return obs
}

func notify(observers []func()) {
	for _, fn := range observers {
		fn()
	}
}

// apiClient returns the authenticated client, or nil when logged out.
func (c *Controller) apiClient() *api.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Login performs a single login attempt. On success the session is
// decoded and persisted and the controller becomes authenticated. A
// token-decode failure is surfaced as an error but does not fail the
// login: the raw token stays in use until the next validity check
// rejects it.
func (c *Controller) Login(ctx context.Context, username, password string) bool {
	gen := c.begin()

	token, err := c.base.Login(ctx, username, password)
	if err != nil {
		c.finish(gen, func() {
			c.state.ErrorMessage = "login failed: " + err.Error()
		})
		return false
	}

	sess, decodeErr := session.Decode(c.secret, token.AccessToken)
	var saveErr error
	if decodeErr == nil {
		saveErr = c.store.Save(ctx, sess)
	}

	c.finish(gen, func() {
		switch {
		case decodeErr != nil:
			c.state.ErrorMessage = "processing token: " + decodeErr.Error()
		case saveErr != nil:
			c.state.ErrorMessage = "saving session: " + saveErr.Error()
		}
		c.client = c.base.WithToken(token.AccessToken)
		c.state.LoggedIn = true
	})
	return true
}

// Restore loads a persisted session at process start. Returns true when
// a locally valid session was found and the controller is authenticated.
func (c *Controller) Restore(ctx context.Context) bool {
	sess, err := c.store.Load(ctx)
	if err != nil || sess == nil || !sess.Valid() {
		return false
	}

	c.mutate(func() {
		c.client = c.base.WithToken(sess.Token)
		c.state.LoggedIn = true
	})
	return true
}

// Logout clears the persisted session and resets the authenticated
// state. In-flight loads started before the logout are discarded.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.mutate(func() { c.state.ErrorMessage = "clearing session: " + err.Error() })
		return
	}

	c.mutate(func() {
		c.client = nil
		c.state.LoggedIn = false
		c.gen++
	})
}

// SessionValidLocally reports whether a persisted session exists and its
// expiry is still in the future. No network involved.
func (c *Controller) SessionValidLocally() bool {
	sess, err := c.store.Load(context.Background())
	return err == nil && sess != nil && sess.ValidAt(time.Now())
}

// SessionValidOnServer probes /users/me with the current token. Any
// failure, network errors included, counts as invalid and clears the
// local session, since a locally unexpired token may have been revoked
// server-side.
func (c *Controller) SessionValidOnServer(ctx context.Context) bool {
	client := c.apiClient()
	if client == nil {
		return false
	}

	gen := c.begin()
	_, err := client.CurrentUser(ctx)
	if err == nil {
		c.finish(gen, nil)
		return true
	}

	clearErr := c.store.Clear(ctx)
	c.finish(gen, func() {
		c.state.ErrorMessage = "session check failed: " + err.Error()
		if clearErr == nil {
			c.client = nil
			c.state.LoggedIn = false
			c.gen++
		}
	})
	return false
}
