// Package guestcart persists the guest-mode cart in a key-value store, one
// key per anonymous session. It is intentionally forgiving: a cart that
// cannot be read or written degrades to an empty cart rather than an error,
// because cart operations must never fail on storage problems.
package guestcart

import (
	"context"

	"grocerfront/internal/domain"
)

type Store interface {
	// Load returns the persisted guest cart, or an empty slice when the key
	// is absent, unreadable or corrupt.
	Load(ctx context.Context, anonymousID string) []domain.LineItem
	// Save persists the cart best-effort.
	Save(ctx context.Context, anonymousID string, items []domain.LineItem)
	// Clear removes the persisted cart best-effort.
	Clear(ctx context.Context, anonymousID string)
}
