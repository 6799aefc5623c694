// Package cart owns the session-scoped shopping cart: line items, quantity
// rules, the derived total, and the change notifications other surfaces
// consume.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/logger"
	"github.com/ityouth/xtn-storefront/pkg/money"
	"github.com/ityouth/xtn-storefront/pkg/redis"
)

// Item is one cart line. Price fields are whole VND; PriceVersion and
// ClientPriceVND are echoed back to the order API at checkout so it can
// detect stale quotes.
type Item struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PriceVND       int64  `json:"price_vnd"`
	Quantity       int    `json:"quantity"`
	ImageID        string `json:"image_id,omitempty"`
	VariantID      string `json:"variant_id"`
	ComboID        string `json:"combo_id,omitempty"`
	PriceVersion   int    `json:"price_version"`
	ClientPriceVND int64  `json:"client_price_vnd"`
}

// Cart is the full cart state for one session.
type Cart struct {
	Items []Item `json:"items"`
}

// TotalPrice sums price * quantity over the current items.
func (c *Cart) TotalPrice() money.VND {
	if c == nil {
		return 0
	}
	var total money.VND
	for _, item := range c.Items {
		total = money.Sum(total, money.LineTotal(money.VND(item.PriceVND), item.Quantity))
	}
	return total
}

// ItemCount sums the quantities, which is what the cart badge displays.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// Repository persists carts keyed by session id.
type Repository struct {
	store  store
	ttl    time.Duration
	logger *logger.Logger
}

// NewRepository builds the cart repository.
func NewRepository(store store, ttl time.Duration, logg *logger.Logger) (*Repository, error) {
	if store == nil {
		return nil, errors.New("cart repository requires a store")
	}
	return &Repository{store: store, ttl: ttl, logger: logg}, nil
}

// Load returns the session's cart. A missing key yields an empty cart; a
// corrupt payload is discarded, logged, and replaced with an empty cart so
// the session can keep shopping.
func (r *Repository) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := r.store.Get(ctx, r.store.CartKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		if r.logger != nil {
			lctx := r.logger.WithFields(ctx, map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			r.logger.Warn(lctx, "discarding corrupt cart payload")
		}
		return &Cart{}, nil
	}
	return &cart, nil
}

// Save writes the cart back with the configured TTL.
func (r *Repository) Save(ctx context.Context, sessionID string, cart *Cart) error {
	if cart == nil {
		cart = &Cart{}
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart")
	}
	if err := r.store.Set(ctx, r.store.CartKey(sessionID), string(payload), r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return nil
}

// Clear drops the session's cart entirely.
func (r *Repository) Clear(ctx context.Context, sessionID string) error {
	if err := r.store.Del(ctx, r.store.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}
