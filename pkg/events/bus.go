// Package events is the in-process replacement for the storefront's browser
// CustomEvent channel: the cart and order stores publish here, UI-facing
// consumers (cart badge, order feed) subscribe.
package events

import (
	"sync"

	"github.com/ityouth/xtn-storefront/pkg/db/models"
)

// CartChanged is published after every cart mutation.
type CartChanged struct {
	SessionID string
	ItemCount int
	TotalVND  int64
}

// OrderCompleted is published after a local order record is saved.
type OrderCompleted struct {
	SessionID string
	Order     models.LocalOrder
}

const subscriberBuffer = 16

// Bus fans events out to subscribers. Publishing never blocks; a subscriber
// that has fallen subscriberBuffer events behind misses the event.
type Bus struct {
	mu             sync.Mutex
	nextID         int
	cartSubs       map[int]chan CartChanged
	orderSubs      map[int]chan OrderCompleted
	closed         bool
	closeProtector sync.Once
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		cartSubs:  map[int]chan CartChanged{},
		orderSubs: map[int]chan OrderCompleted{},
	}
}

// SubscribeCartChanged registers a cart listener. The returned cancel func
// must be called when the consumer goes away.
func (b *Bus) SubscribeCartChanged() (<-chan CartChanged, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan CartChanged, subscriberBuffer)
	b.cartSubs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.cartSubs[id]; ok {
			delete(b.cartSubs, id)
			close(sub)
		}
	}
}

// SubscribeOrderCompleted registers an order listener.
func (b *Bus) SubscribeOrderCompleted() (<-chan OrderCompleted, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan OrderCompleted, subscriberBuffer)
	b.orderSubs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.orderSubs[id]; ok {
			delete(b.orderSubs, id)
			close(sub)
		}
	}
}

// PublishCartChanged delivers the event to all cart subscribers.
func (b *Bus) PublishCartChanged(event CartChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.cartSubs {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishOrderCompleted delivers the event to all order subscribers.
func (b *Bus) PublishOrderCompleted(event OrderCompleted) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.orderSubs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close tears down all subscriptions.
func (b *Bus) Close() {
	b.closeProtector.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = true
		for id, ch := range b.cartSubs {
			delete(b.cartSubs, id)
			close(ch)
		}
		for id, ch := range b.orderSubs {
			delete(b.orderSubs, id)
			close(ch)
		}
	})
}
