package cart

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/events"
	"github.com/ityouth/xtn-storefront/pkg/money"
)

type cartRepo interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type publisher interface {
	PublishCartChanged(event events.CartChanged)
}

// Service applies cart mutations and broadcasts the change so the cart badge
// and other consumers refresh without polling.
type Service struct {
	repo cartRepo
	bus  publisher
}

// NewService builds the cart service.
func NewService(repo cartRepo, bus publisher) (*Service, error) {
	if repo == nil {
		return nil, errors.New("cart service requires a repository")
	}
	if bus == nil {
		return nil, errors.New("cart service requires an event bus")
	}
	return &Service{repo: repo, bus: bus}, nil
}

// Get returns the current cart.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	return s.repo.Load(ctx, sessionID)
}

// AddItem appends the item or, when the id is already present, increments the
// existing line's quantity.
func (s *Service) AddItem(ctx context.Context, sessionID string, item Item) (*Cart, error) {
	if strings.TrimSpace(item.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, item)
	}

	return s.persist(ctx, sessionID, cart)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less removes
// the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*Cart, error) {
	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	next := cart.Items[:0]
	for _, line := range cart.Items {
		if line.ID != itemID {
			next = append(next, line)
			continue
		}
		found = true
		if quantity > 0 {
			line.Quantity = quantity
			next = append(next, line)
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	cart.Items = next

	return s.persist(ctx, sessionID, cart)
}

// RemoveItem drops the line entirely.
func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID string) (*Cart, error) {
	return s.UpdateQuantity(ctx, sessionID, itemID, 0)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.repo.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.bus.PublishCartChanged(events.CartChanged{SessionID: sessionID})
	return nil
}

// TotalPrice returns the cart's derived total.
func (s *Service) TotalPrice(ctx context.Context, sessionID string) (money.VND, error) {
	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice(), nil
}

func (s *Service) persist(ctx context.Context, sessionID string, cart *Cart) (*Cart, error) {
	if err := s.repo.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.bus.PublishCartChanged(events.CartChanged{
		SessionID: sessionID,
		ItemCount: cart.ItemCount(),
		TotalVND:  cart.TotalPrice().Int64(),
	})
	return cart, nil
}
