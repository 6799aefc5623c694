// Package orders is the local order store: the storefront's own record of
// every checkout, kept per session because nothing ties a visitor to a
// backend account.
package orders

import (
	"context"
	"errors"

	"github.com/ityouth/xtn-storefront/pkg/db/models"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"gorm.io/gorm"
)

// Patch is a partial update applied to an existing order record. Nil fields
// are left untouched.
type Patch struct {
	Status               *string
	BackendPaymentStatus *string
	BackendOrderStatus   *string
}

// Repository persists local order records.
type Repository struct {
	conn *gorm.DB
}

// NewRepository builds the order repository.
func NewRepository(conn *gorm.DB) (*Repository, error) {
	if conn == nil {
		return nil, errors.New("order repository requires a db connection")
	}
	return &Repository{conn: conn}, nil
}

// Save inserts the record.
func (r *Repository) Save(ctx context.Context, order *models.LocalOrder) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order record is required")
	}
	if err := r.conn.WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save local order")
	}
	return nil
}

// List returns the session's orders newest first.
func (r *Repository) List(ctx context.Context, sessionID string) ([]models.LocalOrder, error) {
	var records []models.LocalOrder
	err := r.conn.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list local orders")
	}
	return records, nil
}

// Find returns one order by its local id, scoped to the session.
func (r *Repository) Find(ctx context.Context, sessionID, id string) (*models.LocalOrder, error) {
	var record models.LocalOrder
	err := r.conn.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find local order")
	}
	return &record, nil
}

// Update applies the patch to the record.
func (r *Repository) Update(ctx context.Context, sessionID, id string, patch Patch) error {
	updates := map[string]any{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.BackendPaymentStatus != nil {
		updates["backend_payment_status"] = *patch.BackendPaymentStatus
	}
	if patch.BackendOrderStatus != nil {
		updates["backend_order_status"] = *patch.BackendOrderStatus
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.conn.WithContext(ctx).
		Model(&models.LocalOrder{}).
		Where("session_id = ? AND id = ?", sessionID, id).
		Updates(updates)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "update local order")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}
