// Package cartsync keeps one session's cart consistent across two
// authorities: the remote cart service when the session is authenticated and
// the persistent guest store otherwise. The engine owns the decision of which
// authority is live; nothing else reads the two stores directly.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"grocerfront/internal/cartapi"
	"grocerfront/internal/domain"
	"grocerfront/internal/guestcart"
)

// ErrRemoteUnavailable is returned once the bounded retry budget for remote
// cart reads is exhausted. Its text is the user-visible message.
var ErrRemoteUnavailable = errors.New("Failed to fetch cart. Please try again later.")

const (
	fetchRetries    = 2
	fetchRetryDelay = time.Second

	// Remote lines that omit maxQuantity still need a clamp ceiling.
	defaultMaxQuantity = 10
)

type catalogRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Engine is the per-session synchronization state machine. Mutations in
// guest mode apply optimistically and persist before returning; mutations in
// authenticated mode delegate to the gateway and then refetch the whole cart,
// because the remote side may clamp quantities or reject items.
type Engine struct {
	store   guestcart.Store
	gateway cartapi.Gateway
	catalog catalogRepo
	logger  *log.Logger

	retries    int
	retryDelay time.Duration
	sleep      func(time.Duration)
	newID      func() string

	mu      sync.Mutex
	session domain.Session
	items   []domain.LineItem
	applied uint64

	seq atomic.Uint64
}

func New(store guestcart.Store, gateway cartapi.Gateway, catalog catalogRepo, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		store:      store,
		gateway:    gateway,
		catalog:    catalog,
		logger:     logger,
		retries:    fetchRetries,
		retryDelay: fetchRetryDelay,
		sleep:      time.Sleep,
		newID:      uuid.NewString,
	}
}

// SetSession observes a session transition. On login the guest cart goes
// dormant in the store and the remote cart becomes authoritative; on logout
// the dormant guest cart is restored as-is.
func (e *Engine) SetSession(ctx context.Context, s domain.Session) error {
	e.mu.Lock()
	prev := e.session
	e.session = s
	e.mu.Unlock()
	e.gateway.SetToken(s.Token)

	switch {
	case s.Authenticated && !prev.Authenticated:
		return e.refetchRemote(ctx)
	case !s.Authenticated:
		items := e.store.Load(ctx, s.AnonymousID)
		e.mu.Lock()
		e.items = items
		e.mu.Unlock()
	}
	return nil
}

// Session returns the last observed session value.
func (e *Engine) Session() domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Items returns a copy of the live line items.
func (e *Engine) Items() []domain.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.LineItem, len(e.items))
	copy(out, e.items)
	return out
}

// Totals recomputes aggregate totals from the live line items.
func (e *Engine) Totals() domain.CartTotals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.ComputeTotals(e.items)
}

// Refresh re-reads the live authority: the guest store in guest mode, the
// remote service (with the bounded retry policy) when authenticated.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()

	if s.Authenticated {
		return e.refetchRemote(ctx)
	}
	items := e.store.Load(ctx, s.AnonymousID)
	e.mu.Lock()
	e.items = items
	e.mu.Unlock()
	return nil
}

// AddItem adds quantity of a product. Guest mode merges by product and
// clamps to the product's max quantity; authenticated mode delegates and
// refetches.
func (e *Engine) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if e.authenticated() {
		if err := e.gateway.AddItem(ctx, productID, quantity); err != nil {
			return err
		}
		return e.refetchRemote(ctx)
	}
	return e.addGuest(ctx, productID, quantity)
}

// UpdateItem sets a line's quantity. Zero (or less) means removal.
func (e *Engine) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return e.RemoveItem(ctx, itemID)
	}
	if e.authenticated() {
		if err := e.gateway.UpdateItem(ctx, itemID, quantity); err != nil {
			return err
		}
		return e.refetchRemote(ctx)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.items {
		if e.items[i].ItemID == itemID {
			e.items[i].Quantity = clampQuantity(quantity, e.items[i].MaxQuantity)
			e.persistLocked(ctx)
			return nil
		}
	}
	// Unknown line is a no-op, same as removal.
	return nil
}

// RemoveItem removes a line by identifier. An absent identifier is a no-op.
func (e *Engine) RemoveItem(ctx context.Context, itemID string) error {
	if e.authenticated() {
		if err := e.gateway.RemoveItem(ctx, itemID); err != nil {
			var gwErr *cartapi.GatewayError
			if !errors.As(err, &gwErr) || gwErr.StatusCode != http.StatusNotFound {
				return err
			}
			// Already gone remotely: removal stays idempotent.
		}
		return e.refetchRemote(ctx)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.items[:0]
	removed := false
	for _, it := range e.items {
		if it.ItemID == itemID {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	e.items = kept
	if removed {
		e.persistLocked(ctx)
	}
	return nil
}

// ClearCart empties the cart. When the remote service does not support a
// clear, the in-memory state is emptied anyway rather than surfacing an
// error.
func (e *Engine) ClearCart(ctx context.Context) error {
	if e.authenticated() {
		err := e.gateway.ClearCart(ctx)
		switch {
		case errors.Is(err, cartapi.ErrUnsupported):
			e.logger.Printf("cartsync: remote clear unsupported, clearing in-memory state only")
			e.mu.Lock()
			e.items = nil
			e.mu.Unlock()
			return nil
		case err != nil:
			return err
		}
		return e.refetchRemote(ctx)
	}

	e.mu.Lock()
	e.items = nil
	s := e.session
	e.mu.Unlock()
	e.store.Clear(ctx, s.AnonymousID)
	return nil
}

func (e *Engine) authenticated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Authenticated
}

func (e *Engine) addGuest(ctx context.Context, productID string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.items {
		if e.items[i].ProductID == productID {
			e.items[i].Quantity = clampQuantity(e.items[i].Quantity+quantity, e.items[i].MaxQuantity)
			e.persistLocked(ctx)
			return nil
		}
	}

	product, err := e.catalog.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	maxQty := product.MaxQuantity
	if maxQty < 1 {
		maxQty = 1
	}
	e.items = append(e.items, domain.LineItem{
		ItemID:          e.newID(),
		ProductID:       product.ID,
		Name:            product.Name,
		Quantity:        clampQuantity(quantity, maxQty),
		UnitPriceCents:  product.PriceCents,
		DiscountPercent: product.DiscountPercent,
		MaxQuantity:     maxQty,
		ImagePath:       ImagePathFor(product.Name),
	})
	e.persistLocked(ctx)
	return nil
}

// persistLocked saves the guest cart; callers hold e.mu.
func (e *Engine) persistLocked(ctx context.Context) {
	e.store.Save(ctx, e.session.AnonymousID, e.items)
}

// refetchRemote replaces in-memory state wholesale with the remote cart.
// Each refetch carries a monotonically increasing sequence; a snapshot older
// than the newest applied one is dropped, so out-of-order completions cannot
// overwrite fresher state.
func (e *Engine) refetchRemote(ctx context.Context) error {
	seq := e.seq.Add(1)
	cart, err := e.fetchWithRetry(ctx)
	if err != nil {
		e.applySnapshot(seq, nil)
		return err
	}
	e.applySnapshot(seq, e.filterRemoteLines(cart.Lines))
	return nil
}

func (e *Engine) applySnapshot(seq uint64, items []domain.LineItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seq < e.applied {
		e.logger.Printf("cartsync: dropping stale cart snapshot seq=%d applied=%d", seq, e.applied)
		return
	}
	e.applied = seq
	e.items = items
}

func (e *Engine) fetchWithRetry(ctx context.Context) (*cartapi.RemoteCart, error) {
	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			e.sleep(e.retryDelay)
		}
		cart, err := e.gateway.GetCart(ctx)
		if err == nil {
			return cart, nil
		}
		lastErr = err
		e.logger.Printf("cartsync: get cart attempt=%d error=%v", attempt+1, err)
	}
	return nil, fmt.Errorf("%w (%v)", ErrRemoteUnavailable, lastErr)
}

// filterRemoteLines converts remote lines to domain items, dropping any line
// that lacks a product or a positive price. API responses are occasionally
// partially populated; filtering beats failing the whole snapshot.
func (e *Engine) filterRemoteLines(lines []cartapi.RemoteLine) []domain.LineItem {
	var items []domain.LineItem
	for _, l := range lines {
		if l.ProductID == "" || l.UnitPriceCents <= 0 {
			e.logger.Printf("cartsync: dropping malformed remote line item_id=%q product_id=%q", l.ItemID, l.ProductID)
			continue
		}
		maxQty := l.MaxQuantity
		if maxQty < 1 {
			maxQty = defaultMaxQuantity
		}
		discount := l.DiscountPercent
		if discount < 0 {
			discount = 0
		} else if discount > 100 {
			discount = 100
		}
		items = append(items, domain.LineItem{
			ItemID:          l.ItemID,
			ProductID:       l.ProductID,
			Name:            l.Name,
			Quantity:        clampQuantity(l.Quantity, maxQty),
			UnitPriceCents:  l.UnitPriceCents,
			DiscountPercent: discount,
			MaxQuantity:     maxQty,
		})
	}
	return items
}

func clampQuantity(q, maxQty int) int {
	if q < 1 {
		return 1
	}
	if q > maxQty {
		return maxQty
	}
	return q
}
