// Package catalog exposes the remote product list in the shape the storefront
// renders: one purchasable entry per variant, priced in whole VND.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/ityouth/xtn-storefront/pkg/orderapi"
)

// Entry is one purchasable catalog row. Variants are flattened so each row
// maps directly onto a cart line.
type Entry struct {
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceVND     int64  `json:"price_vnd"`
	PriceVersion int    `json:"price_version"`
	Stock        int    `json:"stock"`
	InStock      bool   `json:"in_stock"`
}

type productLister interface {
	ListProducts(ctx context.Context) ([]orderapi.Product, error)
}

// Service fetches and flattens the catalog.
type Service struct {
	api productLister
}

// NewService builds the catalog service.
func NewService(api productLister) (*Service, error) {
	if api == nil {
		return nil, errors.New("catalog service requires an order api client")
	}
	return &Service{api: api}, nil
}

// List returns the catalog with one entry per variant. Products without
// variants are skipped; they cannot be added to a cart.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(products))
	for _, product := range products {
		for _, variant := range product.Variants {
			entries = append(entries, Entry{
				ProductID:    product.ID,
				VariantID:    variant.ID,
				Name:         displayName(product.Name, variant),
				Description:  product.Description,
				PriceVND:     variant.PriceVND,
				PriceVersion: variant.PriceVersion,
				Stock:        variant.Stock,
				InStock:      variant.Stock > 0,
			})
		}
	}
	return entries, nil
}

func displayName(productName string, variant orderapi.ProductVariant) string {
	opts := make([]string, 0, 2)
	for _, opt := range []string{variant.Option1, variant.Option2} {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			opts = append(opts, trimmed)
		}
	}
	if len(opts) == 0 {
		return productName
	}
	return productName + " (" + strings.Join(opts, " / ") + ")"
}
