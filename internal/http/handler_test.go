package httpapp

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/cesargomez89/streamhub/internal/app"
	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/http/dto"
	"github.com/cesargomez89/streamhub/internal/httpclient"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/proxy"
	"github.com/cesargomez89/streamhub/internal/store"
)

func fakeXtream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body string
		switch r.URL.Query().Get("action") {
		case "get_profile":
			body = `{"user_info":{"username":"u","password":"secret","auth":1,"status":"Active"},"server_info":{"url":"x"}}`
		case "get_live_categories":
			body = `[{"category_id":"1","category_name":"News","parent_id":0}]`
		case "get_vod_categories":
			body = `[{"category_id":"2","category_name":"Films"}]`
		case "get_series_categories":
			body = `[{"category_id":"3","category_name":"Shows"}]`
		case "get_live_streams":
			body = `[{"stream_id":11,"name":"Zeta","category_id":"1"},{"stream_id":12,"name":"Alpha","category_id":"1"},{"stream_id":13,"name":"Mid","category_id":"1"}]`
		case "get_vod_streams":
			body = `[{"stream_id":21,"name":"Film","category_id":"2","rating":"7.5"}]`
		case "get_series":
			body = `[{"series_id":31,"name":"Show","category_id":"3","rating":8}]`
		default:
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func setupTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test_http.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()
	client := httpclient.NewClient(&http.Client{Timeout: 5 * time.Second}, 0, 1, "test")
	resolver := proxy.NewResolver(proxy.PortFunc(func(ctx context.Context) (int, error) {
		return 9999, nil
	}), log)

	session := app.NewSession(db, app.XtreamCatalog(client, log), resolver, log)
	t.Cleanup(session.Close)

	h := NewHandler(session, log)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return h, r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, base, password string) *httptest.ResponseRecorder {
	return doJSON(t, router, http.MethodPost, "/api/login", map[string]interface{}{
		"url":      base,
		"username": "u",
		"password": password,
	})
}

func TestLogin_SyncsCatalog(t *testing.T) {
	remote := fakeXtream(t)
	defer remote.Close()
	_, router := setupTestHandler(t)

	rec := login(t, router, remote.URL, "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Saved map[string]int `json:"saved"`
		RunID string         `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.RunID == "" {
		t.Error("Expected run id")
	}
	if res.Saved["channels"] != 3 {
		t.Errorf("Expected 3 channels saved, got %d", res.Saved["channels"])
	}

	rec = doJSON(t, router, http.MethodGet, "/api/categories/1/channels", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var page dto.Page[domain.Channel]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Pagination.TotalItems != 3 || len(page.Items) != 3 {
		t.Fatalf("Expected 3 channels, got total=%d items=%d", page.Pagination.TotalItems, len(page.Items))
	}
	if page.Items[0].Name != "Alpha" || page.Items[2].Name != "Zeta" {
		t.Errorf("Expected channels ordered by name, got %s..%s", page.Items[0].Name, page.Items[2].Name)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/profile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Errorf("Expected password to be omitted from profile response, got %s", rec.Body.String())
	}
	var profile dto.ProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Username != "u" || profile.Status != "Active" || profile.ServerURL != "x" {
		t.Errorf("Unexpected profile response: %+v", profile)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	remote := fakeXtream(t)
	defer remote.Close()
	_, router := setupTestHandler(t)

	rec := login(t, router, remote.URL, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/stats", nil)
	var counts store.Counts
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if counts != (store.Counts{}) {
		t.Errorf("Expected nothing persisted, got %+v", counts)
	}
}

func TestLogin_UndecodableProfileIsUnauthorized(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops"))
	}))
	defer remote.Close()
	_, router := setupTestHandler(t)

	rec := login(t, router, remote.URL, "secret")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/profile", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected no stored profile, got %d", rec.Code)
	}
}

func TestLogin_Validation(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{"url": "ftp://x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body.Fields["username"]; !ok {
		t.Errorf("Expected username field error, got %v", body.Fields)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rr.Code)
	}
}

func TestSync_NoProfile(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sync?wait=true", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/sync", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when nothing to cancel, got %d", rec.Code)
	}
}

func TestSyncStatus_AfterRun(t *testing.T) {
	remote := fakeXtream(t)
	defer remote.Close()
	_, router := setupTestHandler(t)

	if rec := login(t, router, remote.URL, "secret"); rec.Code != http.StatusOK {
		t.Fatalf("login: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/sync/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var status struct {
		State   string `json:"state"`
		Running bool   `json:"running"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.State != string(domain.SyncStateComplete) {
		t.Errorf("Expected state %s, got %s", domain.SyncStateComplete, status.State)
	}
	if status.Running {
		t.Error("Expected no running sync")
	}
}

func TestCategories_Kind(t *testing.T) {
	remote := fakeXtream(t)
	defer remote.Close()
	_, router := setupTestHandler(t)
	login(t, router, remote.URL, "secret")

	rec := doJSON(t, router, http.MethodGet, "/api/categories?type=vod", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var cats []domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Films" {
		t.Errorf("Expected Films category, got %+v", cats)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/categories?type=radio", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestPlay(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/api/play?url="+"http%3A%2F%2Fhost%2Fa.m3u8", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	expected := "http://localhost:9999/proxy?url=http%3A%2F%2Fhost%2Fa.m3u8"
	if resp.URL != expected {
		t.Errorf("Expected %s, got %s", expected, resp.URL)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/play", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without url, got %d", rec.Code)
	}
}

func TestPurge(t *testing.T) {
	remote := fakeXtream(t)
	defer remote.Close()
	_, router := setupTestHandler(t)
	login(t, router, remote.URL, "secret")

	rec := doJSON(t, router, http.MethodPost, "/api/purge", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/categories/1/channels", nil)
	if !strings.Contains(rec.Body.String(), `"total_items":0`) {
		t.Errorf("Expected empty page after purge, got %s", rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("Expected healthy response, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from metrics, got %d", rec.Code)
	}
}

func TestSyncProgressWS(t *testing.T) {
	remote := fakeXtream(t)
	defer remote.Close()
	h, router := setupTestHandler(t)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sync/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Session.Hub().Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for subscriber")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if rec := login(t, router, remote.URL, "secret"); rec.Code != http.StatusOK {
		t.Fatalf("login: %d", rec.Code)
	}

	var percents []int
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var ev domain.SyncProgress
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read: %v (got %v)", err, percents)
		}
		percents = append(percents, ev.Percent)
		if ev.State == domain.SyncStateComplete {
			break
		}
	}

	expected := []int{0, 10, 20, 40, 50, 70, 80, 100}
	if len(percents) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, percents)
	}
	for i := range expected {
		if percents[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, percents)
			break
		}
	}
}
