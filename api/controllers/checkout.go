package controllers

import (
	"net/http"

	"github.com/ityouth/xtn-storefront/api/responses"
	"github.com/ityouth/xtn-storefront/api/validators"
	checkoutsvc "github.com/ityouth/xtn-storefront/internal/checkout"
	"github.com/ityouth/xtn-storefront/pkg/enums"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/logger"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
	"github.com/ityouth/xtn-storefront/pkg/vietqr"
)

// The ordered Vietnamese validation messages are the workflow's own contract,
// so the info body carries no binding tags beyond shape.
type checkoutInfoRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	Note         string `json:"note"`
	DeliveryType string `json:"delivery_type"`
}

type checkoutPaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type qrView struct {
	DataURL     string `json:"data_url,omitempty"`
	FallbackURL string `json:"fallback_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

func newQRView(result *vietqr.Result) *qrView {
	if result == nil {
		return nil
	}
	view := &qrView{DataURL: result.DataURL, FallbackURL: result.FallbackURL}
	if result.Err != nil {
		view.Error = result.Err.Error()
	}
	return view
}

type paymentResponse struct {
	State  checkoutsvc.State       `json:"state"`
	Order  *orderapi.Order         `json:"order,omitempty"`
	Intent *orderapi.PaymentIntent `json:"payment_intent,omitempty"`
	Notice string                  `json:"notice,omitempty"`
}

// CheckoutState returns the session's current workflow snapshot.
func CheckoutState(mgr *checkoutsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.Workflow(sessionID).State())
	}
}

// CheckoutInfo runs the step 1 -> 2 transition. A finished workflow is
// discarded first so a returning supporter starts over.
func CheckoutInfo(mgr *checkoutsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutInfoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wf := mgr.Workflow(sessionID)
		if wf.State().Step == checkoutsvc.StepCompleted {
			mgr.Reset(sessionID)
			wf = mgr.Workflow(sessionID)
		}

		form := checkoutsvc.Form{
			Name:         payload.Name,
			Phone:        payload.Phone,
			Email:        payload.Email,
			Address:      payload.Address,
			Note:         payload.Note,
			DeliveryType: enums.DeliveryType(payload.DeliveryType),
		}
		if err := wf.SubmitInfo(r.Context(), form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wf.State())
	}
}

// CheckoutPayment submits the order with the chosen payment method.
func CheckoutPayment(mgr *checkoutsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		wf := mgr.Workflow(sessionID)
		result, err := wf.SelectPayment(r.Context(), method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := paymentResponse{
			State:  wf.State(),
			Order:  result.Order,
			Intent: result.Intent,
		}
		if result.IntentErr != nil {
			resp.Notice = result.IntentErr.Error()
		}
		responses.WriteSuccess(w, resp)
	}
}

// CheckoutQR renders (or regenerates) the transfer QR without resubmitting
// the order. Generation failures still return the deterministic fallback URL.
func CheckoutQR(mgr *checkoutsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, intent, err := mgr.Workflow(sessionID).RenderQR(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"qr":             newQRView(result),
			"payment_intent": intent,
		})
	}
}

// CheckoutConfirmTransfer is the supporter-confirmed 3 -> 4 transition.
func CheckoutConfirmTransfer(mgr *checkoutsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wf := mgr.Workflow(sessionID)
		if err := wf.ConfirmTransfer(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wf.State())
	}
}
