package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ityouth/xtn-storefront/api/middleware"
	"github.com/ityouth/xtn-storefront/api/responses"
	"github.com/ityouth/xtn-storefront/api/validators"
	cartsvc "github.com/ityouth/xtn-storefront/internal/cart"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/logger"
)

type addItemRequest struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	PriceVND       int64  `json:"price_vnd" validate:"gte=0"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
	ImageID        string `json:"image_id"`
	VariantID      string `json:"variant_id" validate:"required"`
	ComboID        string `json:"combo_id"`
	PriceVersion   int    `json:"price_version"`
	ClientPriceVND int64  `json:"client_price_vnd"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type cartView struct {
	Items     []cartsvc.Item `json:"items"`
	ItemCount int            `json:"item_count"`
	TotalVND  int64          `json:"total_vnd"`
	Total     string         `json:"total_display"`
}

func newCartView(c *cartsvc.Cart) cartView {
	items := c.Items
	if items == nil {
		items = []cartsvc.Item{}
	}
	total := c.TotalPrice()
	return cartView{
		Items:     items,
		ItemCount: c.ItemCount(),
		TotalVND:  total.Int64(),
		Total:     total.Format(),
	}
}

// CartFetch returns the session's cart with its derived total.
func CartFetch(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(current))
	}
}

// CartAddItem adds a line or increments an existing one.
func CartAddItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.AddItem(r.Context(), sessionID, cartsvc.Item{
			ID:             payload.ID,
			Name:           payload.Name,
			PriceVND:       payload.PriceVND,
			Quantity:       payload.Quantity,
			ImageID:        payload.ImageID,
			VariantID:      payload.VariantID,
			ComboID:        payload.ComboID,
			PriceVersion:   payload.PriceVersion,
			ClientPriceVND: payload.ClientPriceVND,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(current))
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.UpdateQuantity(r.Context(), sessionID, chi.URLParam(r, "itemId"), *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(current))
	}
}

// CartRemoveItem drops a line entirely.
func CartRemoveItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.RemoveItem(r.Context(), sessionID, chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(current))
	}
}

// CartClear empties the cart.
func CartClear(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(&cartsvc.Cart{}))
	}
}

func requireSession(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	return sessionID, nil
}
