package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/orders/adapters/memory"
	"storefront/internal/orders/application"
	"storefront/internal/orders/domain"
	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/middleware"
)

type apiHarness struct {
	router   *gin.Engine
	store    *memory.Store
	verifier *auth.TokenVerifier
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	store.PutProduct(domain.Product{
		ID:     1,
		Name:   "Áo thun",
		Price:  decimal.NewFromInt(600_000),
		Stock:  5,
		Status: domain.ProductStatusActive,
	})

	log := logger.New("test", "debug")
	useCase := application.NewOrderUseCase(application.OrderUseCaseDeps{
		Orders:     store.Orders(),
		Catalog:    store.Catalog(),
		Transactor: store,
		Numbers:    store.Counter(),
		Log:        log,
	})
	verifier := auth.NewTokenVerifier("test-secret")

	r := gin.New()
	r.Use(middleware.TraceID(), middleware.ErrorHandler(log, false))
	NewHTTPHandler(useCase).RegisterRoutes(r.Group("/api/v1"), verifier)

	return &apiHarness{router: r, store: store, verifier: verifier}
}

func (h *apiHarness) do(t *testing.T, method, path string, p auth.Principal, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p.ID != 0 {
		token, err := h.verifier.Issue(p, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	return w, decoded
}

var (
	buyer = auth.Principal{ID: 7, Role: auth.RoleCustomer}
	staff = auth.Principal{ID: 1, Role: auth.RoleAdmin}
)

func orderBody(qty int) map[string]interface{} {
	return map[string]interface{}{
		"items":         []map[string]interface{}{{"product": 1, "quantity": qty}},
		"paymentMethod": "momo",
		"shippingAddress": map[string]interface{}{
			"firstName": "An",
			"lastName":  "Nguyen",
			"street":    "1 Le Loi",
			"city":      "Ho Chi Minh",
			"state":     "HCM",
			"zipCode":   "700000",
			"country":   "Vietnam",
			"phone":     "0901234567",
		},
	}
}

func TestHTTP_CreateAndCancel(t *testing.T) {
	h := newAPIHarness(t)

	w, body := h.do(t, http.MethodPost, "/api/v1/orders", buyer, orderBody(2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := body["data"].(map[string]interface{})
	pricing := data["pricing"].(map[string]interface{})
	assert.Equal(t, "1320000.00", pricing["total"])
	assert.Equal(t, "1.320.000 ₫", pricing["formattedTotal"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "Chờ xử lý", data["statusVN"])
	assert.NotEmpty(t, body["trace_id"])

	id := int(data["id"].(float64))
	w, body = h.do(t, http.MethodPut, "/api/v1/orders/"+strconv.Itoa(id)+"/cancel", buyer, map[string]string{"reason": "Đổi ý"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "cancelled", data["status"])
	assert.Len(t, data["timeline"], 2)

	p, err := h.store.Catalog().FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestHTTP_InsufficientStock(t *testing.T) {
	h := newAPIHarness(t)

	w, body := h.do(t, http.MethodPost, "/api/v1/orders", buyer, orderBody(6))

	assert.Equal(t, http.StatusConflict, w.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "CONFLICT", errBody["code"])
	assert.Equal(t, domain.ReasonInsufficientStock, errBody["reason"])
}

func TestHTTP_ValidationError(t *testing.T) {
	h := newAPIHarness(t)

	w, body := h.do(t, http.MethodPost, "/api/v1/orders", buyer, map[string]interface{}{"items": []interface{}{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.NotEmpty(t, errBody["details"])
}

func TestHTTP_RequiresToken(t *testing.T) {
	h := newAPIHarness(t)

	w, _ := h.do(t, http.MethodGet, "/api/v1/orders", auth.Principal{}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHTTP_AdminStatusFlow(t *testing.T) {
	h := newAPIHarness(t)
	_, body := h.do(t, http.MethodPost, "/api/v1/orders", buyer, orderBody(1))
	id := strconv.Itoa(int(body["data"].(map[string]interface{})["id"].(float64)))

	w, _ := h.do(t, http.MethodPut, "/api/v1/admin/orders/"+id+"/status", buyer, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = h.do(t, http.MethodPut, "/api/v1/admin/orders/"+id+"/status", staff, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Order status updated to Đang giao hàng", body["message"])

	w, body = h.do(t, http.MethodPut, "/api/v1/orders/"+id+"/cancel", buyer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.ReasonNotCancellable, body["error"].(map[string]interface{})["reason"])

	w, body = h.do(t, http.MethodGet, "/api/v1/admin/orders?status=shipped", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(20), pagination["itemsPerPage"])
}

func TestHTTP_InvalidOrderID(t *testing.T) {
	h := newAPIHarness(t)

	w, _ := h.do(t, http.MethodGet, "/api/v1/orders/abc", buyer, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_CancelReasonFromChunkedBody(t *testing.T) {
	h := newAPIHarness(t)
	_, body := h.do(t, http.MethodPost, "/api/v1/orders", buyer, orderBody(1))
	id := strconv.Itoa(int(body["data"].(map[string]interface{})["id"].(float64)))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/"+id+"/cancel", strings.NewReader(`{"reason":"Giao chậm"}`))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	token, err := h.verifier.Issue(buyer, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	timeline := decoded["data"].(map[string]interface{})["timeline"].([]interface{})
	require.Len(t, timeline, 2)
	assert.Equal(t, "Giao chậm", timeline[1].(map[string]interface{})["note"])
}

func TestHTTP_CancelWithoutBodyUsesDefaultReason(t *testing.T) {
	h := newAPIHarness(t)
	_, body := h.do(t, http.MethodPost, "/api/v1/orders", buyer, orderBody(1))
	id := strconv.Itoa(int(body["data"].(map[string]interface{})["id"].(float64)))

	w, body := h.do(t, http.MethodPut, "/api/v1/orders/"+id+"/cancel", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	timeline := body["data"].(map[string]interface{})["timeline"].([]interface{})
	assert.Equal(t, "Order cancelled by customer", timeline[1].(map[string]interface{})["note"])
}
