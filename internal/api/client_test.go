package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/avolkov/tsdman/internal/model"
)

const testToken = "test-token"

// fakeBackend is a minimal stand-in for the order backend, just enough to
// exercise the client's wire shapes.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("username") != "admin" || r.PostFormValue("password") != "password" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(model.Token{AccessToken: testToken, TokenType: "bearer"})
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "not authenticated"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /users/me", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.User{ID: 1, Username: "admin"})
	}))

	mux.HandleFunc("GET /clients", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Client{
			{ID: 1, FirstName: "Ivan", LastName: "Petrov"},
		})
	}))

	mux.HandleFunc("POST /clients", authed(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("first_name") == "" || r.PostFormValue("last_name") == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"detail": "name required"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	mux.HandleFunc("DELETE /clients/by-name", authed(func(w http.ResponseWriter, r *http.Request) {
		// ParseForm skips DELETE bodies, so parse it by hand.
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		if form.Get("first_name") != "Ivan" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "client not found"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	mux.HandleFunc("GET /products", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("skip") == "" || r.URL.Query().Get("limit") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode([]model.Product{
			{ID: 1, Name: "Widget", Price: 9.99, Stock: 4},
		})
	}))

	mux.HandleFunc("POST /products", authed(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"detail": "image required"})
			return
		}
		file.Close()
		if header.Filename == "" || r.FormValue("name") == "" || r.FormValue("price") == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	mux.HandleFunc("GET /search/orders/{identifier}", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("identifier") != "ABC000001" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "order not found"})
			return
		}
		json.NewEncoder(w).Encode(model.Order{
			ID: 7, Identifier: "ABC000001", Status: model.OrderStatusPending, ClientID: 1,
			Items: []model.OrderItem{{ID: 1, OrderID: 7, ProductID: 1, Quantity: 2}},
		})
	}))

	mux.HandleFunc("POST /orders", authed(func(w http.ResponseWriter, r *http.Request) {
		var req model.OrderCreate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"detail": "items required"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	mux.HandleFunc("GET /orders/{identifier}/receipt", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("identifier") != "ABC000001" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "order not found"})
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLogin(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, "")
	ctx := context.Background()

	token, err := client.Login(ctx, "admin", "password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token.AccessToken != testToken {
		t.Errorf("expected token %q, got %q", testToken, token.AccessToken)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, "")

	_, err := client.Login(context.Background(), "admin", "wrong")
	if err == nil {
		t.Fatal("expected error for bad credentials")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("expected backend detail to be surfaced, got %q", apiErr.Message)
	}
}

func TestCurrentUser(t *testing.T) {
	server := fakeBackend(t)
	ctx := context.Background()

	user, err := New(server.URL, testToken).CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", user.Username)
	}

	// Without a valid token the probe must fail.
	if _, err := New(server.URL, "stale").CurrentUser(ctx); err == nil {
		t.Error("expected error for stale token")
	}
}

func TestClientsCRUD(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, testToken)
	ctx := context.Background()

	clients, err := client.Clients(ctx)
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if len(clients) != 1 || clients[0].FirstName != "Ivan" {
		t.Errorf("unexpected client list: %+v", clients)
	}

	if err := client.CreateClient(ctx, model.Client{FirstName: "Anna", LastName: "Orlova"}); err != nil {
		t.Errorf("CreateClient: %v", err)
	}

	if err := client.DeleteClient(ctx, "Ivan", "Petrov"); err != nil {
		t.Errorf("DeleteClient: %v", err)
	}
	if err := client.DeleteClient(ctx, "Nobody", "Here"); err == nil {
		t.Error("expected error deleting unknown client")
	}
}

func TestProducts(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, testToken)
	ctx := context.Background()

	products, err := client.Products(ctx, 0, 100)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Widget" {
		t.Errorf("unexpected product list: %+v", products)
	}
}

func TestCreateProductMultipart(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, testToken)

	image := strings.NewReader("fake image bytes")
	err := client.CreateProduct(context.Background(), "Widget", 9.99, 4, image, "widget.jpg")
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
}

func TestOrderByIdentifier(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, testToken)
	ctx := context.Background()

	order, err := client.OrderByIdentifier(ctx, "ABC000001")
	if err != nil {
		t.Fatalf("OrderByIdentifier: %v", err)
	}
	if order.Identifier != "ABC000001" || len(order.Items) != 1 {
		t.Errorf("unexpected order: %+v", order)
	}

	if _, err := client.OrderByIdentifier(ctx, "MISSING"); err == nil {
		t.Error("expected error for unknown identifier")
	}
}

func TestCreateOrder(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, testToken)

	err := client.CreateOrder(context.Background(), model.OrderCreate{
		ClientID: 5,
		Status:   model.OrderStatusPending,
		Items:    []model.OrderItemCreate{{ProductID: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
}

func TestDownloadReceipt(t *testing.T) {
	server := fakeBackend(t)
	client := New(server.URL, testToken)
	ctx := context.Background()

	data, err := client.DownloadReceipt(ctx, "ABC000001")
	if err != nil {
		t.Fatalf("DownloadReceipt: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("expected PDF payload, got %q", data)
	}

	_, err = client.DownloadReceipt(ctx, "MISSING")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 *api.Error, got %v", err)
	}
}
