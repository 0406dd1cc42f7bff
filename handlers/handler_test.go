package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/webnovauz/paint-management-backend/models"
	"github.com/webnovauz/paint-management-backend/utils"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err      error
		expected int
	}{
		{utils.NewValidationError("quantity is required"), http.StatusBadRequest},
		{utils.NewNotFoundError("Paint", 1), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{&utils.IntegrityError{Message: "duplicate paint"}, http.StatusConflict},
		{models.ErrStockMovementImmutable, http.StatusConflict},
		{models.ErrPriceHistoryImmutable, http.StatusConflict},
		{gorm.ErrInvalidTransaction, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.expected {
			t.Fatalf("StatusFor(%v) expected %d, got %d", tc.err, tc.expected, got)
		}
	}
}

func TestInvalidPathIdIsBadRequest(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{"/api/paints/abc", "/api/paints/0", "/api/customers/-3/balance", "/api/sales/x"} {
		w, body := doRequest(r, http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s expected 400, got %d", path, w.Code)
		}
		if body["error"] != "invalid id" {
			t.Fatalf("%s unexpected error %v", path, body["error"])
		}
	}
}

func TestAdjustStockRequiresQuantity(t *testing.T) {
	r := newTestRouter()
	cases := []struct {
		body     string
		expected string
	}{
		{`{"notes":"recount"}`, "quantity is required"},
		{`{"quantity":null}`, "quantity is required"},
		{`{"quantity":""}`, "quantity is required"},
		{`{"quantity":"lots"}`, "invalid quantity"},
		{`{"quantity":true}`, "invalid quantity"},
	}
	for _, tc := range cases {
		w, body := doRequest(r, http.MethodPost, "/api/paints/1/adjust_stock", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s expected 400, got %d", tc.body, w.Code)
		}
		if body["error"] != tc.expected {
			t.Fatalf("%s expected %q, got %v", tc.body, tc.expected, body["error"])
		}
	}
}

func TestParseAdjustQuantity_AcceptsNumbersAndStrings(t *testing.T) {
	for _, raw := range []string{`-2.5`, `"-2.5"`} {
		q, msg := parseAdjustQuantity(json.RawMessage(raw))
		if msg != "" || q == nil || q.String() != "-2.5" {
			t.Fatalf("%s expected -2.5, got %v (%s)", raw, q, msg)
		}
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	r := newTestRouter()
	w, body := doRequest(r, http.MethodPost, "/api/sales", `{"items": [`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "invalid request body" {
		t.Fatalf("unexpected error %v", body["error"])
	}
}

func TestPaymentsByCustomerRequiresCustomerId(t *testing.T) {
	r := newTestRouter()
	w, body := doRequest(r, http.MethodGet, "/api/payments/by_customer", "")
	if w.Code != http.StatusBadRequest || body["error"] != "customer_id is required" {
		t.Fatalf("expected customer_id is required, got %d %v", w.Code, body)
	}
	w, body = doRequest(r, http.MethodGet, "/api/payments/by_customer?customer_id=abc", "")
	if w.Code != http.StatusBadRequest || body["error"] != "invalid customer_id" {
		t.Fatalf("expected invalid customer_id, got %d %v", w.Code, body)
	}
}

func TestRenderError(t *testing.T) {
	r := gin.New()
	r.GET("/validation", func(c *gin.Context) {
		renderError(c, &utils.ValidationError{
			Message: "invalid sale items",
			Details: map[string]string{"items[0].quantity": "piece items must be sold in whole units"},
		})
	})
	r.GET("/internal", func(c *gin.Context) {
		renderError(c, errors.New("dial tcp: connection refused"))
	})

	w, body := doRequest(r, http.MethodGet, "/validation", "")
	if w.Code != http.StatusBadRequest || body["error"] != "invalid sale items" {
		t.Fatalf("unexpected validation response %d %v", w.Code, body)
	}
	details, _ := body["details"].(map[string]any)
	if details["items[0].quantity"] != "piece items must be sold in whole units" {
		t.Fatalf("expected line details, got %v", body["details"])
	}

	w, body = doRequest(r, http.MethodGet, "/internal", "")
	if w.Code != http.StatusInternalServerError || body["error"] != "internal server error" {
		t.Fatalf("internal errors must not leak, got %d %v", w.Code, body)
	}
}

func TestListSalesRejectsMalformedDates(t *testing.T) {
	r := newTestRouter()
	w, body := doRequest(r, http.MethodGet, "/api/sales?from=2024-13-01", "")
	if w.Code != http.StatusBadRequest || body["error"] != "invalid date range" {
		t.Fatalf("expected invalid date range, got %d %v", w.Code, body)
	}
}

func TestLatestReconciliationWithoutRedis(t *testing.T) {
	w, body := doRequest(newTestRouter(), http.MethodGet, "/api/reconciliation/latest", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body["error"] != "reconciliation not found" {
		t.Fatalf("unexpected body %v", body)
	}
}
