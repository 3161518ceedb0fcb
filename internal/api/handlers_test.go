package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/devbar/viera2mqtt/internal/history"
	"github.com/devbar/viera2mqtt/internal/infrastructure/config"
	"github.com/devbar/viera2mqtt/internal/infrastructure/logging"
	"github.com/devbar/viera2mqtt/internal/remote"
)

// mockTV implements TVProber for testing.
type mockTV struct {
	volume int
	mute   bool
	err    error
}

func (tv *mockTV) Host() string { return "192.168.1.50" }

func (tv *mockTV) GetVolume(context.Context) (int, error) {
	return tv.volume, tv.err
}

func (tv *mockTV) GetMute(context.Context) (bool, error) {
	return tv.mute, tv.err
}

// mockBroker implements BrokerStatus for testing.
type mockBroker struct {
	connected bool
}

func (m *mockBroker) IsConnected() bool { return m.connected }

// setupHistory creates an in-memory history repository with the
// command_history schema.
func setupHistory(t *testing.T) *history.Repository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE command_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '',
			operation TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return history.NewRepository(db)
}

// newTestServer builds a server around mocks and returns its router.
func newTestServer(t *testing.T, tv *mockTV, store HistoryStore, broker BrokerStatus) http.Handler {
	t.Helper()

	srv, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logger:  logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test"),
		TV:      tv,
		History: store,
		MQTT:    broker,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv.buildRouter()
}

func doRequest(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Deps{TV: &mockTV{}}); err == nil {
		t.Error("New() without logger should fail")
	}
	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	if _, err := New(Deps{Logger: logger}); err == nil {
		t.Error("New() without TV should fail")
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestServer(t, &mockTV{}, nil, &mockBroker{connected: true})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["mqtt"] != "connected" || body["tv"] != "192.168.1.50" {
		t.Errorf("health body = %v", body)
	}
}

func TestHandleHealthNoBroker(t *testing.T) {
	router := newTestServer(t, &mockTV{}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health")

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["mqtt"] != "unknown" {
		t.Errorf("mqtt = %v, want unknown", body["mqtt"])
	}
}

func TestHandleStatusOn(t *testing.T) {
	router := newTestServer(t, &mockTV{volume: 24, mute: true}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Power != "on" || body.Volume == nil || *body.Volume != 24 || body.Mute == nil || !*body.Mute {
		t.Errorf("status body = %+v", body)
	}
}

func TestHandleStatusOff(t *testing.T) {
	router := newTestServer(t, &mockTV{err: remote.ErrUnreachable}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (off is not an error)", rec.Code)
	}

	var body statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Power != "off" || body.Reason != "TV switched off" {
		t.Errorf("status body = %+v, want switched off", body)
	}
}

func TestHandleStatusTVError(t *testing.T) {
	router := newTestServer(t, &mockTV{err: remote.ErrEncryptionRequired}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var body Error
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Code != ErrCodeTVError {
		t.Errorf("error code = %q, want %q", body.Code, ErrCodeTVError)
	}
}

func TestHandleHistory(t *testing.T) {
	store := setupHistory(t)
	ctx := context.Background()
	for _, outcome := range []string{history.OutcomeOK, history.OutcomeError, history.OutcomeOK} {
		err := store.Record(ctx, history.Entry{
			Topic:     "panasonic/viera/192.168.1.50/command",
			Payload:   "MUTE",
			Operation: "send_key",
			Outcome:   outcome,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	router := newTestServer(t, &mockTV{}, store, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/history?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Entries []history.Entry `json:"entries"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 2 || len(body.Entries) != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
}

func TestHandleHistoryInvalidLimit(t *testing.T) {
	router := newTestServer(t, &mockTV{}, setupHistory(t), nil)

	for _, limit := range []string{"abc", "0", "-5"} {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/history?limit="+limit)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestHandleHistoryDisabled(t *testing.T) {
	router := newTestServer(t, &mockTV{}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/history")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleKeys(t *testing.T) {
	router := newTestServer(t, &mockTV{}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/keys")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Keys  []remote.CatalogueEntry `json:"keys"`
		Count int                     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count == 0 || len(body.Keys) != body.Count {
		t.Fatalf("keys count = %d", body.Count)
	}

	found := false
	for _, k := range body.Keys {
		if k.Name == "VOLUME_UP" {
			found = true
		}
	}
	if !found {
		t.Error("catalogue should contain VOLUME_UP")
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestServer(t, &mockTV{}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Errorf("X-Request-ID = %q, want client-supplied", got)
	}
}
