package routes

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"basketly/handlers"
	"basketly/models"
	"basketly/services/delivery"
	"basketly/services/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCatalog []models.RawSlot

func (c staticCatalog) ActiveSlots(context.Context) ([]models.RawSlot, error) {
	return append([]models.RawSlot(nil), c...), nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryStores) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	slots := staticCatalog{
		{ID: "s-morning", Name: "Morning", DeliveryStartTime: "08:00", DeliveryEndTime: "11:00", OrderCutoffTime: "14:00", DeliveryCharge: 30},
		{ID: "s-bulk", Name: "Bulk", DeliveryStartTime: "12:00", DeliveryEndTime: "15:00", DeliveryCharge: 0, MinOrderValue: 1000},
		{ID: "e-open", Name: "Express", IsExpress: true, ExpressDeliveryHours: 2, DeliveryCharge: 60},
	}

	stores := storage.NewMemoryStores()
	reg := delivery.NewRegistry(context.Background(), slots,
		func(id string) delivery.SelectionStore { return stores.For(id) },
		delivery.RegistryConfig{Engine: delivery.EngineConfig{
			Clock:      func() time.Time { return now },
			InvoiceFee: delivery.DefaultInvoiceFee,
		}}, nil)
	t.Cleanup(reg.Stop)

	r := gin.New()
	RegisterRoutes(r, handlers.NewHandlerBundle(handlers.NewCartHandler(reg)))
	return r, stores
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/cart/sessions", models.CartState{})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)

	require.Eventually(t, func() bool {
		var snap models.SlotSnapshot
		w := doJSON(t, r, http.MethodGet, "/api/cart/sessions/"+resp.SessionID+"/slots", nil)
		return w.Code == http.StatusOK && json.Unmarshal(w.Body.Bytes(), &snap) == nil && snap.Loaded
	}, time.Second, 10*time.Millisecond)
	return resp.SessionID
}

func TestCartFlow(t *testing.T) {
	r, stores := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/cart/sessions/" + id

	var snap models.SlotSnapshot
	w := doJSON(t, r, http.MethodGet, base+"/slots", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "s-morning", snap.SelectedSlotID)
	assert.Len(t, snap.StandardSlots, 2)
	assert.Len(t, snap.ExpressSlots, 1)

	w = doJSON(t, r, http.MethodPut, base+"/cart", models.CartState{
		Items:             []models.CartItem{{ProductID: "rice-25kg", Price: 100, Quantity: 2, GSTRate: 5}},
		InvoiceFeeEnabled: true,
		DiscountAmount:    10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 200.0, snap.CartSubtotal)
	assert.Equal(t, 234.0, snap.Pricing.FinalTotal)

	var sel struct {
		Accepted bool                `json:"accepted"`
		Slots    models.SlotSnapshot `json:"slots"`
	}
	w = doJSON(t, r, http.MethodPost, base+"/slots/select", map[string]string{"slotId": "s-bulk"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sel))
	assert.False(t, sel.Accepted)
	assert.Equal(t, "s-morning", sel.Slots.SelectedSlotID)

	w = doJSON(t, r, http.MethodPost, base+"/slots/select", map[string]string{"slotId": "e-open"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sel))
	assert.True(t, sel.Accepted)
	assert.Equal(t, "e-open", sel.Slots.SelectedSlotID)

	var quote struct {
		SessionID      string                  `json:"sessionId"`
		SelectedSlotID string                  `json:"selectedSlotId"`
		Pricing        models.PricingBreakdown `json:"pricing"`
	}
	w = doJSON(t, r, http.MethodGet, base+"/quote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, id, quote.SessionID)
	assert.Equal(t, "e-open", quote.SelectedSlotID)
	assert.Equal(t, 264.0, quote.Pricing.FinalTotal)
	assert.True(t, quote.Pricing.CheckoutEligible)

	w = doJSON(t, r, http.MethodPost, base+"/slots/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "e-open", snap.SelectedSlotID)

	w = doJSON(t, r, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessionId":"`+id+`","closed":true}`, w.Body.String())

	p, _ := stores.For(id).Get(context.Background())
	assert.Equal(t, "e-open", p.SlotID)
}

func TestSelectSlot_BadPayload(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/cart/sessions/"+id+"/slots/select", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCart_RejectsNegativeQuantity(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createSession(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/cart/sessions/"+id+"/cart", map[string]any{
		"items": []map[string]any{{"price": 10, "quantity": -1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidSessionID(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/cart/sessions/not-a-uuid/slots",
		"/api/cart/sessions/not-a-uuid/quote",
	} {
		w := doJSON(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	w := doJSON(t, r, http.MethodDelete, "/api/cart/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestStreamSlots_SendsCurrentSnapshot(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createSession(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/cart/sessions/"+id+"/slots/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			event = v
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = v
			break
		}
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, "slots", event)

	var snap models.SlotSnapshot
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	assert.Equal(t, id, snap.SessionID)
	assert.True(t, snap.Loaded)
}

func TestCreateSession_WithoutCartWaitsForCart(t *testing.T) {
	r, stores := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/cart/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	base := "/api/cart/sessions/" + created.SessionID

	// a reload of a bulk order: the saved slot needs the real subtotal
	stores.For(created.SessionID).Seed("s-bulk", nil)

	var snap models.SlotSnapshot
	require.Eventually(t, func() bool {
		w := doJSON(t, r, http.MethodGet, base+"/slots", nil)
		return json.Unmarshal(w.Body.Bytes(), &snap) == nil && snap.Loaded
	}, time.Second, 10*time.Millisecond)
	assert.True(t, snap.AwaitingCart)
	assert.Empty(t, snap.SelectedSlotID)

	w = doJSON(t, r, http.MethodPut, base+"/cart", models.CartState{
		Items: []models.CartItem{{ProductID: "oil-15l", Price: 1200, Quantity: 1}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.False(t, snap.AwaitingCart)
	assert.Equal(t, "s-bulk", snap.SelectedSlotID)
}

func TestCreateSession_BadCart(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/cart/sessions", map[string]any{
		"items": []map[string]any{{"price": -1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
