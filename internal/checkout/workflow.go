package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ityouth/xtn-storefront/internal/cart"
	"github.com/ityouth/xtn-storefront/pkg/db/models"
	"github.com/ityouth/xtn-storefront/pkg/enums"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/logger"
	"github.com/ityouth/xtn-storefront/pkg/metrics"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
	"github.com/ityouth/xtn-storefront/pkg/vietqr"
)

// Step is the checkout position. Cash payment goes 2 -> 4 directly.
type Step int

const (
	StepCollectInfo Step = iota + 1
	StepChoosePayment
	StepVietQRPending
	StepCompleted
)

// String renders the step for logs and API responses.
func (s Step) String() string {
	switch s {
	case StepCollectInfo:
		return "collect_info"
	case StepChoosePayment:
		return "choose_payment"
	case StepVietQRPending:
		return "vietqr_pending"
	case StepCompleted:
		return "completed"
	}
	return "unknown"
}

type cartStore interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type orderSubmitter interface {
	Checkout(ctx context.Context, req orderapi.CheckoutRequest) (*orderapi.Order, error)
	PaymentIntent(ctx context.Context, code string) (*orderapi.PaymentIntent, error)
}

type orderStore interface {
	Save(ctx context.Context, order *models.LocalOrder) (*models.LocalOrder, error)
}

type qrRenderer interface {
	Render(ctx context.Context, intent *orderapi.PaymentIntent) (*vietqr.Result, error)
}

// State is a read-only snapshot of one session's checkout.
type State struct {
	Step          Step                    `json:"step"`
	StepName      string                  `json:"step_name"`
	Form          Form                    `json:"form"`
	PaymentMethod enums.PaymentMethod     `json:"payment_method,omitempty"`
	Order         *orderapi.Order         `json:"order,omitempty"`
	LocalOrderID  string                  `json:"local_order_id,omitempty"`
	Intent        *orderapi.PaymentIntent `json:"payment_intent,omitempty"`
	Submitting    bool                    `json:"submitting"`
}

// SubmissionResult is returned from a successful payment selection.
type SubmissionResult struct {
	Step       Step
	Order      *orderapi.Order
	LocalOrder *models.LocalOrder
	Intent     *orderapi.PaymentIntent
	// IntentErr carries a non-fatal payment-intent fetch failure; the
	// workflow still sits on the VietQR step and the supporter retries.
	IntentErr error
}

// Workflow is one session's checkout state machine. All methods are safe for
// concurrent use; a submission in flight rejects further submissions.
type Workflow struct {
	sessionID string
	deps      *deps

	mu            sync.Mutex
	step          Step
	form          Form
	paymentMethod enums.PaymentMethod
	order         *orderapi.Order
	localOrderID  string
	intent        *orderapi.PaymentIntent
	submitting    bool
}

type deps struct {
	carts     cartStore
	orders    orderStore
	api       orderSubmitter
	renderer  qrRenderer
	metrics   *metrics.CheckoutMetrics
	logger    *logger.Logger
	idemScope string
}

func newWorkflow(sessionID string, deps *deps) *Workflow {
	return &Workflow{
		sessionID: sessionID,
		deps:      deps,
		step:      StepCollectInfo,
	}
}

// State returns a snapshot.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Step:          w.step,
		StepName:      w.step.String(),
		Form:          w.form,
		PaymentMethod: w.paymentMethod,
		Order:         w.order,
		LocalOrderID:  w.localOrderID,
		Intent:        w.intent,
		Submitting:    w.submitting,
	}
}

// SubmitInfo runs the step-1 validation and, on pass, stores the form and
// advances to payment selection.
func (w *Workflow) SubmitInfo(ctx context.Context, form Form) error {
	if form.DeliveryType == "" {
		form.DeliveryType = enums.DeliveryTypePickup
	}
	if !form.DeliveryType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery type")
	}

	currentCart, err := w.deps.carts.Get(ctx, w.sessionID)
	if err != nil {
		return err
	}
	if err := validateForm(form, currentCart); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already completed")
	}
	w.form = form
	w.step = StepChoosePayment
	return nil
}

// SelectPayment re-validates, submits the order to the remote API with a
// fresh idempotency key, persists the local record, clears the cart, and
// advances: VietQR to the pending-transfer step, cash straight to completed.
// A failed submission leaves the workflow where it was.
func (w *Workflow) SelectPayment(ctx context.Context, method enums.PaymentMethod) (*SubmissionResult, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "đơn hàng đang được xử lý, vui lòng đợi")
	}
	if w.step != StepChoosePayment {
		w.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not awaiting payment selection")
	}
	form := w.form
	w.submitting = true
	w.mu.Unlock()

	start := time.Now()
	result, err := w.submit(ctx, form, method)

	w.mu.Lock()
	w.submitting = false
	if err == nil {
		w.paymentMethod = method
		w.order = result.Order
		w.localOrderID = result.LocalOrder.ID
		w.intent = result.Intent
		w.step = result.Step
	}
	w.mu.Unlock()

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	w.deps.metrics.ObserveSubmission(method.String(), outcome, time.Since(start))
	return result, err
}

func (w *Workflow) submit(ctx context.Context, form Form, method enums.PaymentMethod) (*SubmissionResult, error) {
	currentCart, err := w.deps.carts.Get(ctx, w.sessionID)
	if err != nil {
		return nil, err
	}
	if err := validateForm(form, currentCart); err != nil {
		return nil, err
	}

	req := buildCheckoutRequest(form, method, currentCart, w.deps.idemScope)
	order, err := w.deps.api.Checkout(ctx, req)
	if err != nil {
		w.logf(ctx, "order submission failed", err)
		return nil, surfaceError(err, msgSubmitFallback)
	}

	localOrder, err := w.deps.orders.Save(ctx, buildLocalOrder(w.sessionID, form, method, currentCart, order))
	if err != nil {
		return nil, err
	}
	if err := w.deps.carts.Clear(ctx, w.sessionID); err != nil {
		w.logf(ctx, "clearing cart after checkout failed", err)
	}

	result := &SubmissionResult{Order: order, LocalOrder: localOrder}
	if method == enums.PaymentMethodCash {
		result.Step = StepCompleted
		return result, nil
	}

	result.Step = StepVietQRPending
	intent, err := w.deps.api.PaymentIntent(ctx, order.Code)
	if err != nil {
		// Non-fatal: the order exists, the supporter retries the fetch
		// from the pending-transfer step.
		w.logf(ctx, "payment intent fetch failed", err)
		result.IntentErr = surfaceError(err, msgIntentFallback)
		return result, nil
	}
	result.Intent = intent
	return result, nil
}

// RenderQR generates the QR image for the pending transfer, fetching the
// payment intent first if an earlier fetch failed. Also the manual
// "regenerate" action; it never resubmits the order.
func (w *Workflow) RenderQR(ctx context.Context) (*vietqr.Result, *orderapi.PaymentIntent, error) {
	w.mu.Lock()
	if w.step != StepVietQRPending {
		w.mu.Unlock()
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending transfer to render")
	}
	intent := w.intent
	order := w.order
	w.mu.Unlock()

	if intent == nil {
		fetched, err := w.deps.api.PaymentIntent(ctx, order.Code)
		if err != nil {
			return nil, nil, surfaceError(err, msgIntentFallback)
		}
		intent = fetched
		w.mu.Lock()
		w.intent = fetched
		w.mu.Unlock()
	}

	result, err := w.deps.renderer.Render(ctx, intent)
	switch {
	case err != nil:
		w.deps.metrics.IncQRGeneration("error")
		return nil, intent, err
	case result.Err != nil:
		w.deps.metrics.IncQRGeneration("fallback")
	default:
		w.deps.metrics.IncQRGeneration("success")
	}
	return result, intent, nil
}

// ConfirmTransfer is the supporter-confirmed 3 -> 4 transition. The backend
// order keeps whatever status it independently tracks.
func (w *Workflow) ConfirmTransfer(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepVietQRPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no pending transfer to confirm")
	}
	w.step = StepCompleted
	return nil
}

func buildCheckoutRequest(form Form, method enums.PaymentMethod, currentCart *cart.Cart, idemScope string) orderapi.CheckoutRequest {
	items := make([]orderapi.CheckoutItem, 0, len(currentCart.Items))
	for _, line := range currentCart.Items {
		priceVersion := line.PriceVersion
		if priceVersion == 0 {
			priceVersion = 1
		}
		clientPrice := line.ClientPriceVND
		if clientPrice == 0 {
			clientPrice = line.PriceVND
		}
		items = append(items, orderapi.CheckoutItem{
			Quantity:       line.Quantity,
			PriceVersion:   priceVersion,
			ClientPriceVND: clientPrice,
			VariantID:      line.VariantID,
			ComboID:        line.ComboID,
		})
	}
	return orderapi.CheckoutRequest{
		FullName:        form.Name,
		Phone:           form.Phone,
		Email:           form.Email,
		Address:         form.Address,
		Note:            form.Note,
		FulfillmentType: form.DeliveryType.FulfillmentType(),
		PaymentMethod:   method.APIValue(),
		IdemScope:       idemScope,
		IdemKey:         uuid.NewString(),
		Items:           items,
	}
}

func buildLocalOrder(sessionID string, form Form, method enums.PaymentMethod, currentCart *cart.Cart, order *orderapi.Order) *models.LocalOrder {
	items := make(models.LocalOrderItems, 0, len(currentCart.Items))
	for _, line := range currentCart.Items {
		items = append(items, models.LocalOrderItem{
			ID:             line.ID,
			Name:           line.Name,
			PriceVND:       line.PriceVND,
			Quantity:       line.Quantity,
			ImageID:        line.ImageID,
			VariantID:      line.VariantID,
			ComboID:        line.ComboID,
			PriceVersion:   line.PriceVersion,
			ClientPriceVND: line.ClientPriceVND,
		})
	}

	record := &models.LocalOrder{
		SessionID:     sessionID,
		Items:         items,
		TotalVND:      currentCart.TotalPrice().Int64(),
		CustomerName:  form.Name,
		CustomerEmail: form.Email,
		CustomerPhone: form.Phone,
		DeliveryType:  form.DeliveryType,
		PaymentMethod: method,
	}
	if form.Address != "" {
		address := form.Address
		record.CustomerAddress = &address
	}
	if form.Note != "" {
		note := form.Note
		record.Note = &note
	}
	if order != nil {
		code := order.Code
		record.BackendCode = &code
		if order.GrandTotalVND > 0 {
			record.TotalVND = order.GrandTotalVND
		}
		if order.PaymentStatus != "" {
			ps := order.PaymentStatus
			record.BackendPaymentStatus = &ps
		}
		if order.OrderStatus != "" {
			os := order.OrderStatus
			record.BackendOrderStatus = &os
		}
	}
	return record
}

// surfaceError keeps a remote message the supporter should see and replaces
// transport noise with the localized fallback. Messages built with New carry
// the server's own text; wrapped errors do not.
func surfaceError(err error, fallback string) error {
	typed := pkgerrors.As(err)
	if typed != nil && typed.Unwrap() == nil && typed.Message() != "" {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallback)
}

func (w *Workflow) logf(ctx context.Context, msg string, err error) {
	if w.deps.logger == nil {
		return
	}
	lctx := w.deps.logger.WithSession(ctx, w.sessionID)
	w.deps.logger.Error(lctx, msg, err)
}
