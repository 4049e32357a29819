// Package identity supplies the opaque owner identifier that namespaces all
// persisted records. The ledger never validates or rotates it.
package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bilancio/internal/kv"
)

// Provider yields a stable owner id for the current session.
type Provider interface {
	// OwnerID returns the identifier under which records are stored.
	OwnerID(ctx context.Context) (string, error)
	// Anonymous reports whether this is a guest session. Anonymous sessions
	// with no stored records are seeded with the demo dataset; signed-in
	// sessions never are.
	Anonymous() bool
}

const deviceIDKey = "device_id"

// Device mints a per-device id on first use and persists it, so an
// anonymous guest keeps the same ledger across restarts.
type Device struct {
	store kv.Store
}

func NewDevice(store kv.Store) *Device {
	return &Device{store: store}
}

func (d *Device) OwnerID(ctx context.Context) (string, error) {
	existing, ok, err := d.store.Get(ctx, deviceIDKey)
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if ok && existing != "" {
		return existing, nil
	}
	id := "device-" + uuid.NewString()
	if err := d.store.Set(ctx, deviceIDKey, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

func (d *Device) Anonymous() bool { return true }

// User is the provider for a signed-in account: a fixed id handed over by
// the auth layer.
type User struct {
	ID string
}

func (u User) OwnerID(context.Context) (string, error) { return u.ID, nil }

func (u User) Anonymous() bool { return false }
