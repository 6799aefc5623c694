package lookup

import (
	"context"
	"errors"
	"strings"

	"github.com/ityouth/xtn-storefront/pkg/db/models"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
)

type orderLister interface {
	List(ctx context.Context, sessionID string) ([]models.LocalOrder, error)
}

// Result is a found order together with its merged status badges.
type Result struct {
	Order        models.LocalOrder `json:"order"`
	PaymentBadge Badge             `json:"payment_badge"`
	OrderBadge   Badge             `json:"order_badge"`
}

// Service searches the session's local orders.
type Service struct {
	orders orderLister
}

// NewService builds the lookup service.
func NewService(orders orderLister) (*Service, error) {
	if orders == nil {
		return nil, errors.New("lookup service requires an order lister")
	}
	return &Service{orders: orders}, nil
}

// Search returns the first order whose phone contains the phone query or
// whose id (local or backend code) contains the order-id query. Records are
// scanned newest first; no ranking beyond that.
func (s *Service) Search(ctx context.Context, sessionID, phone, orderID string) (*Result, error) {
	phone = strings.TrimSpace(phone)
	orderID = strings.TrimSpace(orderID)
	if phone == "" && orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Vui lòng nhập số điện thoại hoặc mã đơn")
	}

	records, err := s.orders.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if matches(record, phone, orderID) {
			return s.describe(record), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Không tìm thấy đơn hàng")
}

// Describe annotates every record with its badges, for the history listing.
func (s *Service) Describe(ctx context.Context, sessionID string) ([]Result, error) {
	records, err := s.orders.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(records))
	for _, record := range records {
		results = append(results, *s.describe(record))
	}
	return results, nil
}

func (s *Service) describe(record models.LocalOrder) *Result {
	return &Result{
		Order:        record,
		PaymentBadge: PaymentBadge(ResolvePaymentStatus(record)),
		OrderBadge:   OrderBadge(ResolveOrderStatus(record)),
	}
}

func matches(record models.LocalOrder, phone, orderID string) bool {
	if phone != "" && strings.Contains(record.CustomerPhone, phone) {
		return true
	}
	if orderID == "" {
		return false
	}
	if strings.Contains(record.ID, orderID) {
		return true
	}
	return record.BackendCode != nil && strings.Contains(*record.BackendCode, orderID)
}
