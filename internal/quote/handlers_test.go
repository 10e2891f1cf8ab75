package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, q *stubQueries) http.Handler {
	t.Helper()
	h := NewHandler(HandlerConfig{Service: newTestService(t, q, nil)})
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return rr, payload
}

func TestTotalsEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/totals", `{
		"items": [
			{"listUnitPrice": "100", "quantity": 10, "termMonths": 12, "netUnitPrice": "80"},
			{"listUnitPrice": 200, "quantity": 5, "termMonths": 12, "discountPercent": "0.2", "revenueType": "net_new"}
		]
	}`)
	require.Equal(t, http.StatusOK, rr.Code)

	data := payload["data"].(map[string]any)
	totals := data["totals"].(map[string]any)
	require.Equal(t, "2000", totals["listMonthly"])
	require.Equal(t, "1600", totals["netMonthly"])
	require.Equal(t, "0.2", totals["blendedDiscount"])
	require.Equal(t, "20.0%", data["display"].(map[string]any)["blendedDiscount"])
	require.Len(t, data["lines"], 2)
}

func requireDecimal(t *testing.T, want string, got any) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "expected decimal string, got %v", got)
	require.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "want %s got %s", want, s)
}

func TestTotalsEndpointLastEditedWins(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	cases := []struct {
		lastEdited string
		netMonthly string
	}{
		{"", "8"},
		{"net", "8"},
		{"discount", "9"},
		{"list", "10"},
	}
	for _, tc := range cases {
		rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/totals", `{"items": [
			{"listUnitPrice": "10", "quantity": 1, "termMonths": 12, "discountPercent": "0.1", "netUnitPrice": "8", "lastEdited": "`+tc.lastEdited+`"}
		]}`)
		require.Equal(t, http.StatusOK, rr.Code, tc.lastEdited)
		totals := payload["data"].(map[string]any)["totals"].(map[string]any)
		requireDecimal(t, tc.netMonthly, totals["netMonthly"])
	}

	rr, _ := do(t, router, http.MethodPost, "/api/v1/quotes/totals", `{"items": [
		{"listUnitPrice": "10", "quantity": 1, "termMonths": 12, "lastEdited": "both"}
	]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestApplyMaxDiscountEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/apply-max-discount", `{"items": [
		{"productName": "Slack", "listUnitPrice": "10", "quantity": 50, "termMonths": 12, "discountPercent": "0.05"},
		{"productName": "[Enterprise] Sales Cloud", "listUnitPrice": "100", "quantity": 10, "termMonths": 12},
		{"productName": "Unknown Thing", "listUnitPrice": "5", "quantity": 1, "termMonths": 12, "netUnitPrice": "4"}
	]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	data := payload["data"].(map[string]any)
	items := data["items"].([]any)
	require.Len(t, items, 3)
	slack := items[0].(map[string]any)
	requireDecimal(t, "0.2", slack["discountPercent"])
	requireDecimal(t, "8", slack["netUnitPrice"])
	sales := items[1].(map[string]any)
	requireDecimal(t, "0.25", sales["discountPercent"])
	requireDecimal(t, "75", sales["netUnitPrice"])
	unknown := items[2].(map[string]any)
	require.Nil(t, unknown["discountPercent"])
	requireDecimal(t, "4", unknown["netUnitPrice"])

	appr := data["approval"].(map[string]any)
	require.Equal(t, "L4", appr["level"])
	require.Equal(t, float64(1), appr["unmatched"])
	require.Equal(t, false, appr["isInstantApproval"])
}

func TestTotalsEndpointEmptyScenario(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/totals", `{"items": []}`)
	require.Equal(t, http.StatusOK, rr.Code)
	totals := payload["data"].(map[string]any)["totals"].(map[string]any)
	require.Equal(t, "0", totals["blendedDiscount"])
	require.Equal(t, "0", totals["totalSavings"])
}

func TestTotalsEndpointValidation(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/totals", `{
		"items": [{"listUnitPrice": "-5", "quantity": 1, "termMonths": 0, "revenueType": "renewal"}]
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	errBody := payload["error"].(map[string]any)
	require.Equal(t, "VALIDATION_FAILED", errBody["code"])
	fields := errBody["details"].(map[string]any)["fields"].([]any)
	var names []string
	for _, f := range fields {
		names = append(names, f.(map[string]any)["field"].(string))
	}
	require.ElementsMatch(t, []string{"items[0].listUnitPrice", "items[0].termMonths", "items[0].revenueType"}, names)
}

func TestTotalsEndpointMalformedJSON(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/totals", `{"items": [`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "INVALID_REQUEST", payload["error"].(map[string]any)["code"])
}

func TestApprovalEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())

	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/approval",
		`{"productName": "[Enterprise] Sales Cloud", "quantity": 10, "discountPercent": "0.25"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	data := payload["data"].(map[string]any)
	require.Equal(t, "L4", data["level"])
	require.Equal(t, true, data["isInstantApproval"])
	require.Equal(t, "0.25", data["maxL4Discount"])
	require.Equal(t, "[Enterprise] Sales Cloud", data["matchedProductName"])

	rr, payload = do(t, router, http.MethodPost, "/api/v1/quotes/approval",
		`{"productName": "Unknown Thing", "quantity": 10, "discountPercent": "0.1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	data = payload["data"].(map[string]any)
	require.Equal(t, "N/A", data["level"])
	require.Nil(t, data["maxL4Discount"])
	require.Nil(t, data["matchedProductName"])
}

func TestApprovalEndpointScenario(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/approval", `{
		"items": [
			{"productName": "Slack", "listUnitPrice": "10", "quantity": 50, "termMonths": 12, "discountPercent": "0.15"},
			{"productName": "[Enterprise] Sales Cloud", "listUnitPrice": "165", "quantity": 50, "termMonths": 12}
		]
	}`)
	require.Equal(t, http.StatusOK, rr.Code)
	data := payload["data"].(map[string]any)
	require.Equal(t, "L4", data["level"])
	require.Equal(t, true, data["isInstantApproval"])
	require.Len(t, data["lines"], 2)
}

func TestApprovalEndpointRequiresProduct(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, _ := do(t, router, http.MethodPost, "/api/v1/quotes/approval", `{"quantity": 10}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, _ = do(t, router, http.MethodPost, "/api/v1/quotes/approval", `{"productName": "Slack", "discountPercent": "1.5"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestApprovalEndpointStoreDown(t *testing.T) {
	router := newTestRouter(t, &stubQueries{err: errors.New("dial tcp: refused")})
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/approval", `{"productName": "Slack", "quantity": 1}`)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "UNAVAILABLE", payload["error"].(map[string]any)["code"])
	require.NotContains(t, rr.Body.String(), "refused")
}

func TestCompareEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodPost, "/api/v1/quotes/scenarios/compare", `{
		"scenarios": [
			{"name": "three year", "items": [{"productName": "Slack", "listUnitPrice": "10", "quantity": 10, "termMonths": 36}]},
			{"name": "one year", "items": [{"productName": "Slack", "listUnitPrice": "10", "quantity": 10, "termMonths": 12}]}
		]
	}`)
	require.Equal(t, http.StatusOK, rr.Code)
	data := payload["data"].([]any)
	require.Len(t, data, 2)
	require.Equal(t, "three year", data[0].(map[string]any)["name"])
	require.Equal(t, "$3,600", data[0].(map[string]any)["display"].(map[string]any)["netTerm"])

	rr, _ = do(t, router, http.MethodPost, "/api/v1/quotes/scenarios/compare", `{"scenarios": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodGet, "/api/v1/products/search?q=slak&limit=2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	results := payload["data"].([]any)
	require.NotEmpty(t, results)
	require.Equal(t, "Slack", results[0].(map[string]any)["category"])

	rr, payload = do(t, router, http.MethodGet, "/api/v1/products/search?q=zzz-no-match", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, payload["data"])
}

func TestCategoriesEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodGet, "/api/v1/products/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	groups := payload["data"].([]any)
	require.Len(t, groups, 2)
	slack := groups[1].(map[string]any)
	editions := slack["editions"].([]any)
	require.Nil(t, editions[len(editions)-1].(map[string]any)["edition"])
}

func TestMatrixNameEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodGet, "/api/v1/products/matrix-name?category=Tableau&edition=Viewer", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[Creator, Explorer, Viewer] Tableau", payload["data"].(map[string]any)["matrixName"])

	rr, payload = do(t, router, http.MethodGet, "/api/v1/products/matrix-name?category=Tableau&edition=Viewer&edition=N/A&edition=Creator", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[Viewer, Creator] Tableau", payload["data"].(map[string]any)["matrixName"])

	rr, _ = do(t, router, http.MethodGet, "/api/v1/products/matrix-name", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResolveEndpoint(t *testing.T) {
	router := newTestRouter(t, fixtureQueries())
	rr, payload := do(t, router, http.MethodGet, "/api/v1/products/resolve?name=%5BUnlimited%5D+Sales+Cloud", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[Unlimited] Sales Cloud", payload["data"].(map[string]any)["displayName"])

	rr, _ = do(t, router, http.MethodGet, "/api/v1/products/resolve?name=qqqqqq", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
