package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ityouth/xtn-storefront/internal/cart"
	"github.com/ityouth/xtn-storefront/pkg/db/models"
	"github.com/ityouth/xtn-storefront/pkg/enums"
	pkgerrors "github.com/ityouth/xtn-storefront/pkg/errors"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
	"github.com/ityouth/xtn-storefront/pkg/vietqr"
)

type stubCarts struct {
	mu      sync.Mutex
	cart    *cart.Cart
	cleared bool
}

func (s *stubCarts) Get(context.Context, string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		return &cart.Cart{}, nil
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = true
	return nil
}

type stubOrders struct {
	mu    sync.Mutex
	saved []*models.LocalOrder
}

func (s *stubOrders) Save(_ context.Context, order *models.LocalOrder) (*models.LocalOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = "local-1"
	s.saved = append(s.saved, order)
	return order, nil
}

type stubAPI struct {
	mu        sync.Mutex
	requests  []orderapi.CheckoutRequest
	failures  int
	failWith  error
	order     *orderapi.Order
	intent    *orderapi.PaymentIntent
	intentErr error
	block     chan struct{}
}

func (s *stubAPI) Checkout(_ context.Context, req orderapi.CheckoutRequest) (*orderapi.Order, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.failures > 0 {
		s.failures--
		return nil, s.failWith
	}
	return s.order, nil
}

func (s *stubAPI) PaymentIntent(context.Context, string) (*orderapi.PaymentIntent, error) {
	if s.intentErr != nil {
		return nil, s.intentErr
	}
	return s.intent, nil
}

type stubRenderer struct {
	result *vietqr.Result
	err    error
}

func (s *stubRenderer) Render(context.Context, *orderapi.PaymentIntent) (*vietqr.Result, error) {
	return s.result, s.err
}

func testIntent() *orderapi.PaymentIntent {
	return &orderapi.PaymentIntent{
		Bank:            orderapi.BankAccount{BankCode: "970436", AccountNo: "123", AccountName: "QUY XTN"},
		AmountVND:       100000,
		TransferContent: "XTN-0042",
	}
}

func newTestManager(t *testing.T, carts *stubCarts, orders *stubOrders, api *stubAPI, renderer *stubRenderer) *Manager {
	t.Helper()

	if renderer == nil {
		renderer = &stubRenderer{result: &vietqr.Result{DataURL: "data:image/png;base64,x", FallbackURL: "https://img"}}
	}
	mgr, err := NewManager(ManagerOptions{
		Carts:     carts,
		Orders:    orders,
		API:       api,
		Renderer:  renderer,
		IdemScope: "checkout",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr
}

func TestCashCheckoutReachesTerminalState(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	orders := &stubOrders{}
	api := &stubAPI{order: &orderapi.Order{Code: "XTN-0042", GrandTotalVND: 100000}}
	wf := newTestManager(t, carts, orders, api, nil).Workflow("s1")
	ctx := context.Background()

	if err := wf.SubmitInfo(ctx, validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}
	if wf.State().Step != StepChoosePayment {
		t.Fatalf("expected step 2, got %v", wf.State().Step)
	}

	result, err := wf.SelectPayment(ctx, enums.PaymentMethodCash)
	if err != nil {
		t.Fatalf("select payment: %v", err)
	}
	if result.Step != StepCompleted || wf.State().Step != StepCompleted {
		t.Fatalf("cash should complete directly, got %v", result.Step)
	}
	if result.LocalOrder.TotalVND != 100000 {
		t.Fatalf("expected total 100000, got %d", result.LocalOrder.TotalVND)
	}
	if result.LocalOrder.PaymentMethod != enums.PaymentMethodCash {
		t.Fatalf("expected cash, got %s", result.LocalOrder.PaymentMethod)
	}
	if !carts.cleared {
		t.Fatal("cart should be cleared after a successful submission")
	}
	if len(orders.saved) != 1 {
		t.Fatalf("expected exactly one local record, got %d", len(orders.saved))
	}

	req := api.requests[0]
	if req.FulfillmentType != "PICKUP_SCHOOL" || req.PaymentMethod != "CASH" {
		t.Fatalf("unexpected request mapping %+v", req)
	}
	if req.IdemScope != "checkout" || req.IdemKey == "" {
		t.Fatalf("idempotency fields missing: %+v", req)
	}
}

func TestVietQRCheckoutAdvancesToPendingTransfer(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	api := &stubAPI{
		order:  &orderapi.Order{Code: "XTN-0042", GrandTotalVND: 100000},
		intent: testIntent(),
	}
	wf := newTestManager(t, carts, &stubOrders{}, api, nil).Workflow("s1")
	ctx := context.Background()

	if err := wf.SubmitInfo(ctx, validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}
	result, err := wf.SelectPayment(ctx, enums.PaymentMethodVietQR)
	if err != nil {
		t.Fatalf("select payment: %v", err)
	}
	if result.Step != StepVietQRPending {
		t.Fatalf("expected pending transfer, got %v", result.Step)
	}
	if result.Intent == nil || result.Intent.TransferContent != "XTN-0042" {
		t.Fatalf("expected payment intent, got %+v", result.Intent)
	}

	if err := wf.ConfirmTransfer(ctx); err != nil {
		t.Fatalf("confirm transfer: %v", err)
	}
	if wf.State().Step != StepCompleted {
		t.Fatalf("expected completed, got %v", wf.State().Step)
	}
}

func TestSubmissionFailureStaysOnStep(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	orders := &stubOrders{}
	api := &stubAPI{
		failures: 1,
		failWith: pkgerrors.New(pkgerrors.CodeValidation, "Sản phẩm đã hết hàng"),
		order:    &orderapi.Order{Code: "XTN-0042"},
	}
	wf := newTestManager(t, carts, orders, api, nil).Workflow("s1")
	ctx := context.Background()

	if err := wf.SubmitInfo(ctx, validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}

	_, err := wf.SelectPayment(ctx, enums.PaymentMethodCash)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "Sản phẩm đã hết hàng" {
		t.Fatalf("server message not surfaced: %v", err)
	}
	if wf.State().Step != StepChoosePayment {
		t.Fatalf("failed submission must stay on step 2, got %v", wf.State().Step)
	}
	if len(orders.saved) != 0 {
		t.Fatal("no local record may be written on failure")
	}
	if carts.cleared {
		t.Fatal("cart must survive a failed submission")
	}
}

func TestTransportFailureGetsGenericMessage(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	api := &stubAPI{
		failures: 1,
		failWith: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp: connection refused"), "execute order api request"),
	}
	wf := newTestManager(t, carts, &stubOrders{}, api, nil).Workflow("s1")
	ctx := context.Background()

	if err := wf.SubmitInfo(ctx, validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}
	_, err := wf.SelectPayment(ctx, enums.PaymentMethodCash)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != msgSubmitFallback {
		t.Fatalf("expected localized fallback, got %v", err)
	}
}

func TestDistinctIdempotencyKeysAcrossAttempts(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	api := &stubAPI{
		failures: 1,
		failWith: pkgerrors.New(pkgerrors.CodeDependency, "tạm thời quá tải"),
		order:    &orderapi.Order{Code: "XTN-0042", GrandTotalVND: 100000},
	}
	wf := newTestManager(t, carts, &stubOrders{}, api, nil).Workflow("s1")
	ctx := context.Background()

	if err := wf.SubmitInfo(ctx, validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}
	if _, err := wf.SelectPayment(ctx, enums.PaymentMethodCash); err == nil {
		t.Fatal("first attempt should fail")
	}
	if _, err := wf.SelectPayment(ctx, enums.PaymentMethodCash); err != nil {
		t.Fatalf("second attempt: %v", err)
	}

	if len(api.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(api.requests))
	}
	first, second := api.requests[0].IdemKey, api.requests[1].IdemKey
	if first == "" || second == "" || first == second {
		t.Fatalf("attempts must carry distinct keys: %q vs %q", first, second)
	}
}

func TestReentrancyGuardRejectsConcurrentSubmission(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	api := &stubAPI{
		order: &orderapi.Order{Code: "XTN-0042"},
		block: make(chan struct{}),
	}
	wf := newTestManager(t, carts, &stubOrders{}, api, nil).Workflow("s1")
	ctx := context.Background()

	if err := wf.SubmitInfo(ctx, validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := wf.SelectPayment(ctx, enums.PaymentMethodCash)
		firstDone <- err
	}()

	deadline := time.After(5 * time.Second)
	for {
		if wf.State().Submitting {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first submission never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	_, err := wf.SelectPayment(ctx, enums.PaymentMethodCash)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected re-entrancy rejection, got %v", err)
	}

	close(api.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submission: %v", err)
	}
}

func TestRenderQRRequiresPendingTransfer(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	wf := newTestManager(t, carts, &stubOrders{}, &stubAPI{}, nil).Workflow("s1")

	_, _, err := wf.RenderQR(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRenderQRFetchesMissingIntent(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	api := &stubAPI{
		order:     &orderapi.Order{Code: "XTN-0042"},
		intentErr: pkgerrors.New(pkgerrors.CodeNotFound, "Đơn hàng chưa có yêu cầu thanh toán"),
	}
	wf := newTestManager(t, carts, &stubOrders{}, api, nil).Workflow("s1")
	ctx := context.Background()

	if err := wf.SubmitInfo(ctx, validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}
	result, err := wf.SelectPayment(ctx, enums.PaymentMethodVietQR)
	if err != nil {
		t.Fatalf("select payment: %v", err)
	}
	if result.Step != StepVietQRPending || result.IntentErr == nil {
		t.Fatalf("intent failure should be non-fatal, got %+v", result)
	}

	// The retry succeeds once the backend has the intent ready.
	api.intentErr = nil
	api.intent = testIntent()
	qr, intent, err := wf.RenderQR(ctx)
	if err != nil {
		t.Fatalf("render qr: %v", err)
	}
	if intent == nil || qr == nil || qr.DataURL == "" {
		t.Fatalf("expected rendered qr, got %+v %+v", qr, intent)
	}
}

func TestManagerScopesWorkflowsPerSession(t *testing.T) {
	t.Parallel()

	carts := &stubCarts{cart: filledCart()}
	mgr := newTestManager(t, carts, &stubOrders{}, &stubAPI{}, nil)

	if mgr.Workflow("s1") != mgr.Workflow("s1") {
		t.Fatal("same session must reuse its workflow")
	}
	if mgr.Workflow("s1") == mgr.Workflow("s2") {
		t.Fatal("sessions must not share workflows")
	}

	wf := mgr.Workflow("s1")
	if err := wf.SubmitInfo(context.Background(), validForm()); err != nil {
		t.Fatalf("submit info: %v", err)
	}
	mgr.Reset("s1")
	if mgr.Workflow("s1").State().Step != StepCollectInfo {
		t.Fatal("reset must start the workflow over")
	}
}
