package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ityouth/xtn-storefront/api/routes"
	cartsvc "github.com/ityouth/xtn-storefront/internal/cart"
	"github.com/ityouth/xtn-storefront/internal/catalog"
	checkoutsvc "github.com/ityouth/xtn-storefront/internal/checkout"
	"github.com/ityouth/xtn-storefront/internal/lookup"
	ordersvc "github.com/ityouth/xtn-storefront/internal/orders"
	"github.com/ityouth/xtn-storefront/pkg/config"
	"github.com/ityouth/xtn-storefront/pkg/db/models"
	"github.com/ityouth/xtn-storefront/pkg/events"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
	"github.com/ityouth/xtn-storefront/pkg/redis"
	"github.com/ityouth/xtn-storefront/pkg/vietqr"
)

type memoryStore struct {
	values map[string]string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *memoryStore) CartKey(sessionID string) string {
	return "xtn:cart:" + sessionID
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]orderapi.Product{
			{
				ID:   "prod-1",
				Name: "Áo Xuân Tình Nguyện",
				Variants: []orderapi.ProductVariant{
					{ID: "v1", PriceVND: 50000, PriceVersion: 1, Stock: 10, Option1: "M"},
				},
			},
		})
	})
	mux.HandleFunc("POST /orders/checkout", func(w http.ResponseWriter, r *http.Request) {
		var req orderapi.CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.IdemKey == "" || req.IdemScope != "checkout" {
			http.Error(w, "missing idempotency", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(orderapi.Order{
			Code:          "XTN-0042",
			GrandTotalVND: 100000,
			PaymentStatus: "PENDING",
			OrderStatus:   "PENDING",
		})
	})
	mux.HandleFunc("GET /orders/XTN-0042/payment-intent", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(orderapi.PaymentIntent{
			Bank:            orderapi.BankAccount{BankCode: "970436", AccountNo: "123456789", AccountName: "QUY XTN"},
			AmountVND:       100000,
			TransferContent: "XTN-0042",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	backend := newBackend(t)
	qrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"qrDataURL": "data:image/png;base64,qr"},
		})
	}))
	t.Cleanup(qrSrv.Close)

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.LocalOrder{}))

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	cartRepo, err := cartsvc.NewRepository(&memoryStore{values: map[string]string{}}, time.Hour, nil)
	require.NoError(t, err)
	cartService, err := cartsvc.NewService(cartRepo, bus)
	require.NoError(t, err)

	orderRepo, err := ordersvc.NewRepository(conn)
	require.NoError(t, err)
	orderService, err := ordersvc.NewService(orderRepo, bus, nil)
	require.NoError(t, err)

	apiClient, err := orderapi.NewClient(backend.URL)
	require.NoError(t, err)

	catalogService, err := catalog.NewService(apiClient)
	require.NoError(t, err)
	lookupService, err := lookup.NewService(orderRepo)
	require.NoError(t, err)

	checkoutManager, err := checkoutsvc.NewManager(checkoutsvc.ManagerOptions{
		Carts:    cartService,
		Orders:   orderService,
		API:      apiClient,
		Renderer: vietqr.NewRenderer(vietqr.NewClient(vietqr.WithGenerateURL(qrSrv.URL))),
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Checkout.SessionTTL = time.Hour

	return routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Catalog:  catalogService,
		Cart:     cartService,
		Checkout: checkoutManager,
		Orders:   orderService,
		Lookup:   lookupService,
		OrderAPI: apiClient,
	})
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestCashCheckoutEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	status, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/products", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/cart/items", map[string]any{
		"id":         "p1",
		"name":       "Áo Xuân Tình Nguyện (M)",
		"price_vnd":  50000,
		"quantity":   2,
		"variant_id": "v1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, status)
	var cartView struct {
		ItemCount int   `json:"item_count"`
		TotalVND  int64 `json:"total_vnd"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cartView))
	require.Equal(t, 2, cartView.ItemCount)
	require.Equal(t, int64(100000), cartView.TotalVND)

	status, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/checkout/info", map[string]any{
		"name":          "Nguyễn Văn A",
		"phone":         "0912345678",
		"email":         "a@example.com",
		"delivery_type": "pickup",
	})
	require.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/checkout/payment", map[string]any{
		"payment_method": "CASH",
	})
	require.Equal(t, http.StatusOK, status)
	var payment struct {
		State struct {
			StepName string `json:"step_name"`
		} `json:"state"`
		Order struct {
			Code string `json:"code"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payment))
	require.Equal(t, "completed", payment.State.StepName)
	require.Equal(t, "XTN-0042", payment.Order.Code)

	status, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &cartView))
	require.Equal(t, 0, cartView.ItemCount)

	status, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, status)
	var history []struct {
		Order struct {
			Total         int64  `json:"total"`
			PaymentMethod string `json:"paymentMethod"`
		} `json:"order"`
		PaymentBadge struct {
			Status string `json:"status"`
		} `json:"payment_badge"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	require.Equal(t, int64(100000), history[0].Order.Total)
	require.Equal(t, "cash", history[0].Order.PaymentMethod)
	require.Equal(t, "CASH", history[0].PaymentBadge.Status)
}

func TestVietQRCheckoutEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	status, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/cart/items", map[string]any{
		"id":         "p1",
		"name":       "Áo Xuân Tình Nguyện (M)",
		"price_vnd":  50000,
		"quantity":   2,
		"variant_id": "v1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/checkout/info", map[string]any{
		"name":          "Nguyễn Văn A",
		"phone":         "0912345678",
		"email":         "a@example.com",
		"delivery_type": "pickup",
	})
	require.Equal(t, http.StatusOK, status)

	status, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/checkout/payment", map[string]any{
		"payment_method": "VIETQR",
	})
	require.Equal(t, http.StatusOK, status)
	var payment struct {
		State struct {
			StepName string `json:"step_name"`
		} `json:"state"`
		Intent struct {
			TransferContent string `json:"transfer_content"`
		} `json:"payment_intent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payment))
	require.Equal(t, "vietqr_pending", payment.State.StepName)
	require.Equal(t, "XTN-0042", payment.Intent.TransferContent)

	status, env = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/checkout/qr", nil)
	require.Equal(t, http.StatusOK, status)
	var qr struct {
		QR struct {
			DataURL     string `json:"data_url"`
			FallbackURL string `json:"fallback_url"`
		} `json:"qr"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &qr))
	require.Equal(t, "data:image/png;base64,qr", qr.QR.DataURL)
	require.NotEmpty(t, qr.QR.FallbackURL)

	status, env = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/checkout/confirm-transfer", nil)
	require.Equal(t, http.StatusOK, status)
	var state struct {
		StepName string `json:"step_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	require.Equal(t, "completed", state.StepName)
}

func TestCheckoutValidationMessageSurface(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	status, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/checkout/info", map[string]any{
		"name":          "Nguyễn Văn A",
		"phone":         "09123456",
		"email":         "a@example.com",
		"delivery_type": "pickup",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.Equal(t, "Số điện thoại không hợp lệ (Phải là 10 số, bắt đầu bằng 0)", env.Error.Message)
}
