package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"catalog-proxy-api/internal/handler"
	"catalog-proxy-api/internal/middleware"
	"catalog-proxy-api/internal/roblox"
	"catalog-proxy-api/internal/rolimons"
	"catalog-proxy-api/internal/service"
	"catalog-proxy-api/internal/session"
)

// newTestRouter wires the full stack against a fake upstream.
func newTestRouter(t *testing.T, adminKey string) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/assets/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":7,"name":"Cool Bundle"}]}`))
	})
	mux.HandleFunc("/v1/bundles/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"product":{"priceInRobux":250}}`))
	})
	mux.HandleFunc("/v1/catalog/items/details", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":123,"itemType":"Asset","name":"Dominus","product":{"isLimited":true}}]}`))
	})
	mux.HandleFunc("/itemdetails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"items":{"123":["Dominus","DOM",750000,760000,750000]}}`))
	})

	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	sess := session.NewStore(filepath.Join(t.TempDir(), "cookies.json"), "test-token")
	robloxClient := roblox.NewClient(sess, nil, roblox.Options{
		BaseURL: upstream.URL,
		Timeout: 5 * time.Second,
	})
	prices := rolimons.NewCache(rolimons.NewClient(upstream.URL+"/itemdetails", 5*time.Second, nil), rolimons.DefaultTTL)
	catalog := service.NewCatalogService(robloxClient, prices, nil, 0)

	return New(Config{
		Handler:        handler.New("test"),
		CatalogHandler: handler.NewCatalogHandler(catalog),
		AdminHandler:   handler.NewAdminHandler(nil, prices, "none"),
		LogHandler:     handler.NewLogHandler(nil),
		AdminAuth:      middleware.NewAdminAuth(adminKey),
	})
}

func TestAssetToBundleEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/asset-to-bundle/42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Contract endpoints return the payload bare, with no envelope.
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, enveloped := body["success"]; enveloped {
		t.Error("contract response wrapped in envelope")
	}
	if body["assetId"] != float64(42) || body["bundleId"] != float64(7) {
		t.Errorf("body = %v", body)
	}
	if body["bundleName"] != "Cool Bundle" || body["priceInRobux"] != float64(250) {
		t.Errorf("body = %v", body)
	}
}

func TestAssetToBundleRejectsBadID(t *testing.T) {
	r := newTestRouter(t, "")

	for _, raw := range []string{"abc", "-5", "0"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/asset-to-bundle/"+raw, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestItemDetailsEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items/details", strings.NewReader(`[123]`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0]
	if item["isLimited"] != true {
		t.Errorf("isLimited = %v", item["isLimited"])
	}
	// Limited item with no catalog price gets backfilled from the index.
	if item["lowestPrice"] != float64(750000) {
		t.Errorf("lowestPrice = %v, want 750000", item["lowestPrice"])
	}
}

func TestItemDetailsRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items/details", strings.NewReader(`{"not":"an array"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLimitedPriceEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rolimons/limited-price/123", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["assetId"] != float64(123) || body["rap"] != float64(750000) {
		t.Errorf("body = %v", body)
	}

	// Unknown assets answer with an explicit null rap, not an error.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rolimons/limited-price/999", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d for unknown asset", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rap, present := body["rap"]; !present || rap != nil {
		t.Errorf("rap = %v, want null", rap)
	}
}

func TestAdminEndpointsRequireKey(t *testing.T) {
	r := newTestRouter(t, "secret")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("X-API-Key", "secret")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with key = %d, want 200", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t, "")

	for _, path := range []string{"/api/v1/health", "/api/v1/ready", "/api/status"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}
