package kv

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kv.db")

	store, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get(ctx, "owner/transactions"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "owner/transactions", `[{"id":"1"}]`); err != nil {
		t.Fatal(err)
	}
	v, ok, err := store.Get(ctx, "owner/transactions")
	if err != nil || !ok || v != `[{"id":"1"}]` {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}

	// upsert replaces
	if err := store.Set(ctx, "owner/transactions", `[]`); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := store.Get(ctx, "owner/transactions"); v != `[]` {
		t.Fatalf("got %q", v)
	}

	if err := store.Remove(ctx, "owner/transactions"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(ctx, "owner/transactions"); ok {
		t.Fatal("key present after remove")
	}
}
