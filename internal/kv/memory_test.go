package kv

import (
	"context"
	"testing"
)

func TestMemoryGetSetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := m.Set(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := m.Get(ctx, "k"); !ok || v != "v1" {
		t.Fatalf("got %q ok=%v", v, ok)
	}

	if err := m.Set(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := m.Get(ctx, "k"); v != "v2" {
		t.Fatalf("overwrite failed: got %q", v)
	}

	if err := m.Remove(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("key still present after remove")
	}

	// removing a missing key is not an error
	if err := m.Remove(ctx, "k"); err != nil {
		t.Fatal(err)
	}
}
