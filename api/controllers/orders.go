package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ityouth/xtn-storefront/api/responses"
	"github.com/ityouth/xtn-storefront/api/validators"
	"github.com/ityouth/xtn-storefront/internal/lookup"
	ordersvc "github.com/ityouth/xtn-storefront/internal/orders"
	"github.com/ityouth/xtn-storefront/pkg/logger"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
)

type searchRequest struct {
	Phone   string `json:"phone"`
	OrderID string `json:"order_id"`
}

// OrdersList returns the session's order history, newest first, with merged
// status badges.
func OrdersList(svc *lookup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.Describe(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// OrdersSearch finds the first order matching a phone or order-id substring.
func OrdersSearch(svc *lookup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload searchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), sessionID, payload.Phone, payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// OrderDetail passes a backend order code through to the remote API.
func OrderDetail(api *orderapi.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := api.GetOrder(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderCancel marks a pending local order cancelled.
func OrderCancel(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID := chi.URLParam(r, "orderId")
		if err := svc.Cancel(r.Context(), sessionID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Find(r.Context(), sessionID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
