package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Syed-Shayan-ALi33/company-plus/internal/store"
)

type nopProducer struct{}

func (nopProducer) SendMessage(context.Context, string, []byte, []byte) error { return nil }
func (nopProducer) Close() error                                              { return nil }

// 2024-03-04 is a Monday, so the ticker hits the "Mon" bucket.
var testNow = time.Date(2024, 3, 4, 15, 4, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, http.Handler, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	s := New(st, nopProducer{}, "test.audit", "0")
	s.rng = newLockedRand(1)
	s.timeNow = func() time.Time { return testNow }

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s.audit.Start(ctx)

	return s, s.routes(), st
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()

	rr := doRequest(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "company11",
		"password": "company123",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginIssuesFreshValidatingTokens(t *testing.T) {
	_, h, _ := newTestServer(t)

	first := login(t, h)
	second := login(t, h)
	assert.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		rr := doRequest(t, h, http.MethodGet, "/api/auth/validate", token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"username":"company11"}`, rr.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, h, _ := newTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "company11", password: "wrong"},
		{name: "unknown user", username: "nobody", password: "company123"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
				"username": tc.username,
				"password": tc.password,
			})
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"message":"Invalid username or password"}`, rr.Body.String())
		})
	}
}

func TestValidateRequiresToken(t *testing.T) {
	_, h, _ := newTestServer(t)

	rr := doRequest(t, h, http.MethodGet, "/api/auth/validate", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"message":"Missing session token"}`, rr.Body.String())

	rr = doRequest(t, h, http.MethodGet, "/api/auth/validate", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"message":"Session expired. Please sign in again."}`, rr.Body.String())
}

func TestLogoutInvalidatesToken(t *testing.T) {
	_, h, _ := newTestServer(t)
	token := login(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = doRequest(t, h, http.MethodGet, "/api/auth/validate", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutAcceptsBodyTokenAndMissingToken(t *testing.T) {
	_, h, _ := newTestServer(t)
	token := login(t, h)

	rr := doRequest(t, h, http.MethodPost, "/api/auth/logout", "", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/auth/validate", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// No token at all still succeeds.
	rr = doRequest(t, h, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

type dashboardResponse struct {
	Orders    []store.Order      `json:"orders"`
	ChartData []store.ChartPoint `json:"chartData"`
	Metrics   struct {
		Revenue        float64 `json:"revenue"`
		ActiveUsers    int     `json:"activeUsers"`
		Leads          int     `json:"leads"`
		ConversionRate float64 `json:"conversionRate"`
	} `json:"metrics"`
}

func getDashboard(t *testing.T, h http.Handler) dashboardResponse {
	t.Helper()

	rr := doRequest(t, h, http.MethodGet, "/api/dashboard", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dashboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestDashboardSeedMetrics(t *testing.T) {
	_, h, _ := newTestServer(t)

	resp := getDashboard(t, h)

	assert.Len(t, resp.Orders, 5)
	assert.Len(t, resp.ChartData, 7)
	assert.InDelta(t, 970.74, resp.Metrics.Revenue, 1e-9)
	assert.Equal(t, 15, resp.Metrics.Leads)
	assert.GreaterOrEqual(t, resp.Metrics.ActiveUsers, 1)
	assert.LessOrEqual(t, resp.Metrics.ActiveUsers, 3)
}

func TestDashboardTicksAndPersistsChart(t *testing.T) {
	_, h, st := newTestServer(t)

	before, err := st.Load(context.Background())
	require.NoError(t, err)

	getDashboard(t, h)
	getDashboard(t, h)

	after, err := st.Load(context.Background())
	require.NoError(t, err)

	for i, p := range after.ChartData {
		if p.Name == "Mon" {
			assert.Greater(t, p.Conversations, before.ChartData[i].Conversations)
		} else {
			assert.Equal(t, before.ChartData[i], p)
		}
	}
	// Orders are untouched by the ticker.
	assert.Equal(t, before.Orders, after.Orders)
}

func TestCreateOrder(t *testing.T) {
	_, h, _ := newTestServer(t)

	rr := doRequest(t, h, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"customer":   "Alex Doe",
		"product":    "Desk Lamp",
		"amount":     39.99,
		"phone":      "+1 (555) 000-1111",
		"visibility": "public",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Order store.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, store.StatusPending, resp.Order.Status)
	assert.True(t, strings.HasPrefix(resp.Order.ID, "#ORD-"), "unexpected id %q", resp.Order.ID)
	assert.Len(t, resp.Order.ID, len("#ORD-")+5)
	assert.Equal(t, store.VisibilityPublic, resp.Order.Visibility)
	assert.Equal(t, "03:04 PM", resp.Order.Date)

	dashboard := getDashboard(t, h)
	require.Len(t, dashboard.Orders, 6)
	assert.Equal(t, resp.Order.ID, dashboard.Orders[0].ID)
	assert.InDelta(t, 970.74+39.99, dashboard.Metrics.Revenue, 1e-9)
}

func TestCreateOrderDefaultsToPrivate(t *testing.T) {
	_, h, _ := newTestServer(t)

	rr := doRequest(t, h, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"customer": "Alex Doe",
		"product":  "Desk Lamp",
		"amount":   10.0,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Order store.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, store.VisibilityPrivate, resp.Order.Visibility)
}

func TestCreateOrderValidation(t *testing.T) {
	_, h, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing customer", body: map[string]interface{}{"product": "Lamp", "amount": 10.0}},
		{name: "missing product", body: map[string]interface{}{"customer": "Alex", "amount": 10.0}},
		{name: "zero amount", body: map[string]interface{}{"customer": "Alex", "product": "Lamp", "amount": 0}},
		{name: "negative amount", body: map[string]interface{}{"customer": "Alex", "product": "Lamp", "amount": -5.0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/api/orders", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"message":"Missing required fields"}`, rr.Body.String())
		})
	}
}

func orderPath(id string) string {
	return "/api/orders/" + url.PathEscape(id)
}

func TestUpdateOrderStatus(t *testing.T) {
	_, h, _ := newTestServer(t)

	before := getDashboard(t, h)

	rr := doRequest(t, h, http.MethodPatch, orderPath("#ORD-9020"), "", map[string]string{"status": "Delivered"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Order store.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, store.StatusDelivered, resp.Order.Status)

	after := getDashboard(t, h)
	require.Len(t, after.Orders, len(before.Orders))
	for i, o := range after.Orders {
		if o.ID == "#ORD-9020" {
			assert.Equal(t, store.StatusDelivered, o.Status)
			o.Status = before.Orders[i].Status
		}
		assert.Equal(t, before.Orders[i], o, "only the status of #ORD-9020 may change")
	}
}

func TestCancelledOrderExcludedFromRevenue(t *testing.T) {
	_, h, _ := newTestServer(t)

	// #ORD-9019 is worth 120.00.
	rr := doRequest(t, h, http.MethodPatch, orderPath("#ORD-9019"), "", map[string]string{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, rr.Code)

	dashboard := getDashboard(t, h)
	assert.InDelta(t, 970.74-120.00, dashboard.Metrics.Revenue, 1e-9)
	// Cancelled orders stay in the list.
	assert.Len(t, dashboard.Orders, 5)
}

func TestUpdateOrderErrors(t *testing.T) {
	_, h, _ := newTestServer(t)

	rr := doRequest(t, h, http.MethodPatch, orderPath("#ORD-0000"), "", map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rr.Body.String())

	rr = doRequest(t, h, http.MethodPatch, orderPath("#ORD-9020"), "", map[string]string{"status": "Teleported"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"Invalid order status"}`, rr.Body.String())
}

func TestDeleteOrder(t *testing.T) {
	_, h, _ := newTestServer(t)

	rr := doRequest(t, h, http.MethodDelete, orderPath("#ORD-9017"), "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool `json:"success"`
		Metrics struct {
			Revenue float64 `json:"revenue"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.InDelta(t, 970.74-65.00, resp.Metrics.Revenue, 1e-9)

	dashboard := getDashboard(t, h)
	require.Len(t, dashboard.Orders, 4)
	for _, o := range dashboard.Orders {
		assert.NotEqual(t, "#ORD-9017", o.ID)
	}

	// Deleting again is a 404.
	rr = doRequest(t, h, http.MethodDelete, orderPath("#ORD-9017"), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rr.Body.String())
}

func TestOrderMutationsTickChart(t *testing.T) {
	_, h, st := newTestServer(t)

	before, err := st.Load(context.Background())
	require.NoError(t, err)
	monBefore := before.ChartData[0]
	require.Equal(t, "Mon", monBefore.Name)

	rr := doRequest(t, h, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"customer": "Alex", "product": "Lamp", "amount": 10.0,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	after, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Greater(t, after.ChartData[0].Conversations, monBefore.Conversations)
}

func TestConcurrentRequestsShareRngSafely(t *testing.T) {
	_, h, _ := newTestServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				rr := doRequest(t, h, http.MethodGet, "/api/dashboard", "", nil)
				assert.Equal(t, http.StatusOK, rr.Code)
			}
		}()
	}
	wg.Wait()

	resp := getDashboard(t, h)
	assert.GreaterOrEqual(t, resp.Metrics.ActiveUsers, 1)
	assert.LessOrEqual(t, resp.Metrics.ActiveUsers, 3)
}

func TestHealth(t *testing.T) {
	_, h, _ := newTestServer(t)

	rr := doRequest(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestShutdownBeforeRun(t *testing.T) {
	s := New(store.NewMemoryStore(), nopProducer{}, "test.audit", "0")

	// A signal can land before Run is ever scheduled; Shutdown must still
	// be safe.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestCORSPreflight(t *testing.T) {
	_, h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
