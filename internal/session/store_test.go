package session

import (
	"context"
	"testing"

	"github.com/avolkov/tsdman/internal/db"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(db.NewTestDB(t))
	ctx := context.Background()

	if err := store.Save(ctx, Session{Token: "abc", Expiry: 1700000000}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sess, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess == nil {
		t.Fatal("expected a stored session")
	}
	if sess.Token != "abc" || sess.Expiry != 1700000000 {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := NewStore(db.NewTestDB(t))
	ctx := context.Background()

	store.Save(ctx, Session{Token: "old", Expiry: 1})
	if err := store.Save(ctx, Session{Token: "new", Expiry: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sess, _ := store.Load(ctx)
	if sess.Token != "new" || sess.Expiry != 2 {
		t.Errorf("expected overwritten session, got %+v", sess)
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	store := NewStore(db.NewTestDB(t))

	sess, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session from empty store, got %+v", sess)
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore(db.NewTestDB(t))
	ctx := context.Background()

	store.Save(ctx, Session{Token: "abc", Expiry: 1700000000})
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	sess, _ := store.Load(ctx)
	if sess != nil {
		t.Errorf("expected nil session after clear, got %+v", sess)
	}
}
