package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ityouth/xtn-storefront/pkg/db/models"
	"github.com/ityouth/xtn-storefront/pkg/enums"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/events"
	"github.com/ityouth/xtn-storefront/pkg/metrics"
)

type orderRepo interface {
	Save(ctx context.Context, order *models.LocalOrder) error
	List(ctx context.Context, sessionID string) ([]models.LocalOrder, error)
	Find(ctx context.Context, sessionID, id string) (*models.LocalOrder, error)
	Update(ctx context.Context, sessionID, id string, patch Patch) error
}

type publisher interface {
	PublishOrderCompleted(event events.OrderCompleted)
}

// Service owns local order records: creation after checkout, history
// listing, status patches, and the completion broadcast the order feed
// listens for.
type Service struct {
	repo    orderRepo
	bus     publisher
	metrics *metrics.CheckoutMetrics
}

// NewService builds the order service. Metrics may be nil.
func NewService(repo orderRepo, bus publisher, checkoutMetrics *metrics.CheckoutMetrics) (*Service, error) {
	if repo == nil {
		return nil, errors.New("order service requires a repository")
	}
	if bus == nil {
		return nil, errors.New("order service requires an event bus")
	}
	return &Service{repo: repo, bus: bus, metrics: checkoutMetrics}, nil
}

// Save writes a new record, assigning the local id and default status, and
// publishes the order-completed event carrying the saved record.
func (s *Service) Save(ctx context.Context, order *models.LocalOrder) (*models.LocalOrder, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order record is required")
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = enums.LocalOrderStatusPending
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.IncOrderSaved()
	s.bus.PublishOrderCompleted(events.OrderCompleted{
		SessionID: order.SessionID,
		Order:     *order,
	})
	return order, nil
}

// List returns the session's order history newest first.
func (s *Service) List(ctx context.Context, sessionID string) ([]models.LocalOrder, error) {
	return s.repo.List(ctx, sessionID)
}

// Find returns one order by local id.
func (s *Service) Find(ctx context.Context, sessionID, id string) (*models.LocalOrder, error) {
	return s.repo.Find(ctx, sessionID, id)
}

// UpdateStatus patches the locally tracked status.
func (s *Service) UpdateStatus(ctx context.Context, sessionID, id string, status enums.LocalOrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	raw := status.String()
	return s.repo.Update(ctx, sessionID, id, Patch{Status: &raw})
}

// Cancel marks a pending order cancelled. Orders that have progressed past
// pending keep their status.
func (s *Service) Cancel(ctx context.Context, sessionID, id string) error {
	record, err := s.repo.Find(ctx, sessionID, id)
	if err != nil {
		return err
	}
	if record.Status != enums.LocalOrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "chỉ đơn hàng đang chờ mới có thể hủy")
	}
	return s.UpdateStatus(ctx, sessionID, id, enums.LocalOrderStatusCancelled)
}

// RecordBackendStatus stores the backend's status pair alongside the record.
func (s *Service) RecordBackendStatus(ctx context.Context, sessionID, id, paymentStatus, orderStatus string) error {
	patch := Patch{}
	if paymentStatus != "" {
		patch.BackendPaymentStatus = &paymentStatus
	}
	if orderStatus != "" {
		patch.BackendOrderStatus = &orderStatus
	}
	return s.repo.Update(ctx, sessionID, id, patch)
}
