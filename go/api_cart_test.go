package cakecartserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	cakecartserver "github.com/sugarloaf/cakecart/go"
	cartevents "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/events"
	cartmemory "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/memory"
	cartapp "github.com/sugarloaf/cakecart/internal/domains/cart/application"
	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

type itemViewDTO struct {
	ID              string `json:"id"`
	BakeryID        string `json:"bakery_id"`
	AvailableCakeID string `json:"available_cake_id"`
	CustomCakeID    string `json:"custom_cake_id"`
	Name            string `json:"name"`
	Size            string `json:"size"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	Quantity        int32  `json:"quantity"`
	SubTotalCents   int64  `json:"sub_total_cents"`
}

type switchViewDTO struct {
	FromBakeryID string      `json:"from_bakery_id"`
	ToBakeryID   string      `json:"to_bakery_id"`
	Candidate    itemViewDTO `json:"candidate"`
}

type cartViewDTO struct {
	Items         []itemViewDTO   `json:"items"`
	BakeryID      string          `json:"bakery_id"`
	SyncState     string          `json:"sync_state"`
	PendingSwitch *switchViewDTO  `json:"pending_switch"`
	CheckoutMeta  json.RawMessage `json:"checkout_meta"`
	TotalCents    int64           `json:"total_cents"`
}

type outcomeViewDTO struct {
	Status string         `json:"status"`
	Item   *itemViewDTO   `json:"item"`
	Switch *switchViewDTO `json:"switch"`
}

type problemDTO struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func newCartTestServer(t testing.TB) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := cartapp.NewManager(nil,
		cartapp.WithManagerSnapshots(cartmemory.NewSnapshotStore()),
		cartapp.WithManagerEvents(cartevents.NewBroadcaster()),
	)
	resolve := func(ctx context.Context, key, token string) (cartports.Service, error) {
		return manager.StoreFor(ctx, key, token), nil
	}

	handlers := cakecartserver.ApiHandleFunctions{
		CartAPI: cakecartserver.NewCartAPI(resolve, manager.Drop),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = cakecartserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t testing.TB, server *httptest.Server, method, path, sessionID string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(cakecartserver.HeaderSessionID, sessionID)
	}
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t testing.TB, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func addItemBody(bakeryID, cakeID string, quantity int32) map[string]any {
	return map[string]any{
		"bakery_id":         bakeryID,
		"available_cake_id": cakeID,
		"name":              "Chocolate Fudge",
		"size":              "medium",
		"quantity":          quantity,
	}
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	server := newCartTestServer(t)
	const session = "shopper-1"

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-1", "cake-1", 2))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	outcome := decodeBody[outcomeViewDTO](t, resp)
	require.Equal(t, "accepted", outcome.Status)
	require.NotNil(t, outcome.Item)
	require.NotEmpty(t, outcome.Item.ID)
	require.Equal(t, int64(3900), outcome.Item.UnitPriceCents)
	itemID := outcome.Item.ID

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart := decodeBody[cartViewDTO](t, resp)
	require.Equal(t, "bk-1", cart.BakeryID)
	require.Len(t, cart.Items, 1)
	require.Equal(t, int64(7800), cart.TotalCents)

	resp = doRequest(t, server, http.MethodPut, "/v1/cart/items/"+itemID+"/quantity", session, map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart = decodeBody[cartViewDTO](t, resp)
	require.Equal(t, int64(11700), cart.TotalCents)

	resp = doRequest(t, server, http.MethodPut, "/v1/cart/items/"+itemID, session, map[string]any{
		"name":    "Chocolate Fudge",
		"size":    "large",
		"add_ons": []string{"candles"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	edited := decodeBody[itemViewDTO](t, resp)
	require.Equal(t, itemID, edited.ID)
	require.Equal(t, int64(5950), edited.UnitPriceCents)
	require.Equal(t, int32(3), edited.Quantity)

	resp = doRequest(t, server, http.MethodDelete, "/v1/cart/items/"+itemID, session, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart = decodeBody[cartViewDTO](t, resp)
	require.Empty(t, cart.Items)
	require.Empty(t, cart.BakeryID)
	require.Zero(t, cart.TotalCents)
}

func TestAddItemRejectsAmbiguousCakeRef(t *testing.T) {
	server := newCartTestServer(t)

	body := addItemBody("bk-1", "cake-1", 1)
	body["custom_cake_id"] = "custom-9"
	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", "shopper-2", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/problem+json")
	problem := decodeBody[problemDTO](t, resp)
	require.Equal(t, "/problems/bad-request", problem.Type)
}

func TestAddItemRequiresBakeryID(t *testing.T) {
	server := newCartTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", "shopper-3", map[string]any{
		"available_cake_id": "cake-1",
		"size":              "small",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	problem := decodeBody[problemDTO](t, resp)
	require.Equal(t, http.StatusBadRequest, problem.Status)
}

func TestBakerySwitchOverHTTP(t *testing.T) {
	server := newCartTestServer(t)
	const session = "shopper-4"

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-1", "cake-1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-2", "cake-2", 1))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	outcome := decodeBody[outcomeViewDTO](t, resp)
	require.Equal(t, "needsConfirmation", outcome.Status)
	require.NotNil(t, outcome.Switch)
	require.Equal(t, "bk-1", outcome.Switch.FromBakeryID)
	require.Equal(t, "bk-2", outcome.Switch.ToBakeryID)

	// The parked candidate must not have touched the cart.
	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	cart := decodeBody[cartViewDTO](t, resp)
	require.Equal(t, "bk-1", cart.BakeryID)
	require.Len(t, cart.Items, 1)
	require.NotNil(t, cart.PendingSwitch)

	resp = doRequest(t, server, http.MethodPost, "/v1/cart/switch/confirm", session, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	confirmed := decodeBody[outcomeViewDTO](t, resp)
	require.Equal(t, "accepted", confirmed.Status)
	require.NotNil(t, confirmed.Item)
	require.Equal(t, "bk-2", confirmed.Item.BakeryID)

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	cart = decodeBody[cartViewDTO](t, resp)
	require.Equal(t, "bk-2", cart.BakeryID)
	require.Len(t, cart.Items, 1)
	require.Nil(t, cart.PendingSwitch)

	resp = doRequest(t, server, http.MethodPost, "/v1/cart/switch/confirm", session, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	problem := decodeBody[problemDTO](t, resp)
	require.Equal(t, "/problems/bakery-conflict", problem.Type)
}

func TestCancelBakerySwitchKeepsCart(t *testing.T) {
	server := newCartTestServer(t)
	const session = "shopper-5"

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-1", "cake-1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-2", "cake-2", 1))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/v1/cart/switch/cancel", session, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	cart := decodeBody[cartViewDTO](t, resp)
	require.Equal(t, "bk-1", cart.BakeryID)
	require.Len(t, cart.Items, 1)
	require.Nil(t, cart.PendingSwitch)
}

func TestEditUnknownItemReturnsProblemNotFound(t *testing.T) {
	server := newCartTestServer(t)

	resp := doRequest(t, server, http.MethodPut, "/v1/cart/items/no-such-line", "shopper-6", map[string]any{
		"name": "Anything",
		"size": "small",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	problem := decodeBody[problemDTO](t, resp)
	require.Equal(t, "/problems/not-found", problem.Type)
	require.Equal(t, http.StatusNotFound, problem.Status)
}

func TestSessionKeyIsEchoedAndStable(t *testing.T) {
	server := newCartTestServer(t)

	// No credentials at all: the server mints an anonymous key and echoes it.
	resp := doRequest(t, server, http.MethodGet, "/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	minted := resp.Header.Get(cakecartserver.HeaderSessionID)
	require.NotEmpty(t, minted)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", "my-session", nil)
	require.Equal(t, "anon-my-session", resp.Header.Get(cakecartserver.HeaderSessionID))
	resp.Body.Close()
}

func TestSessionsAreIsolated(t *testing.T) {
	server := newCartTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", "shopper-a", addItemBody("bk-1", "cake-1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", "shopper-b", nil)
	cart := decodeBody[cartViewDTO](t, resp)
	require.Empty(t, cart.Items)

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", "shopper-a", nil)
	cart = decodeBody[cartViewDTO](t, resp)
	require.Len(t, cart.Items, 1)
}

func TestClearCartAndDropSession(t *testing.T) {
	server := newCartTestServer(t)
	const session = "shopper-7"

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-1", "cake-1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodDelete, "/v1/cart", session, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	cart := decodeBody[cartViewDTO](t, resp)
	require.Empty(t, cart.Items)

	resp = doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-1", "cake-1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodDelete, "/v1/cart/session", session, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	cart = decodeBody[cartViewDTO](t, resp)
	require.Empty(t, cart.Items)
}

func TestCheckoutMetaRoundTrip(t *testing.T) {
	server := newCartTestServer(t)
	const session = "shopper-8"

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-1", "cake-1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPut, "/v1/cart/checkout-meta", session, map[string]any{
		"delivery": "pickup",
		"slot":     "2026-09-01T10:00:00Z",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	cart := decodeBody[cartViewDTO](t, resp)
	require.JSONEq(t, `{"delivery":"pickup","slot":"2026-09-01T10:00:00Z"}`, string(cart.CheckoutMeta))
}

func TestSyncWithoutGatewayReportsSyncFailed(t *testing.T) {
	server := newCartTestServer(t)
	const session = "shopper-9"

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items", session, addItemBody("bk-1", "cake-1", 1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/v1/cart/sync", session, nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	problem := decodeBody[problemDTO](t, resp)
	require.Equal(t, "/problems/sync-failed", problem.Type)

	// A failed push never loses local state.
	resp = doRequest(t, server, http.MethodGet, "/v1/cart", session, nil)
	cart := decodeBody[cartViewDTO](t, resp)
	require.Len(t, cart.Items, 1)
}

func TestUnknownRouteMethod(t *testing.T) {
	server := newCartTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/v1/cart/items/some-id/quantity", "shopper-10", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
