package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sensewire/internal/logging"
	"sensewire/internal/shared"
)

// Broadcaster receives every successfully stored reading. Optional.
type Broadcaster interface {
	Broadcast(rec shared.StoredReading)
}

type API struct {
	Store         Store
	ClientSecret  string
	DisplayOffset time.Duration
	Stream        Broadcaster // may be nil

	log *slog.Logger
}

func NewAPI(store Store, clientSecret string, displayOffset time.Duration) *API {
	return &API{
		Store:         store,
		ClientSecret:  clientSecret,
		DisplayOffset: displayOffset,
		log:           logging.Component("api"),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 1<<20))
}

// RequireClientSecret guards ingestion with the static shared secret.
// Comparison is exact: case-sensitive, no normalization.
func (a *API) RequireClientSecret(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Client-Secret") != a.ClientSecret {
			writeJSON(w, 401, map[string]any{"error": "invalid client secret"})
			return
		}
		next(w, r)
	}
}

// IngestReading stores one reading. The stored record gets a fresh id
// and the server clock's timestamp; nothing else about the payload is
// touched (device ids are case- and whitespace-sensitive as sent).
func (a *API) IngestReading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body"})
		return
	}

	var req shared.SensorReading
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}
	if req.DeviceID == "" {
		writeJSON(w, 400, map[string]any{"error": "missing device_id"})
		return
	}

	rec := shared.NewStoredReading(req)
	if err := a.Store.AppendReading(rec); err != nil {
		a.log.Error("append failed", "device_id", rec.DeviceID, "error", err)
		writeJSON(w, 500, map[string]any{"error": "storage error"})
		return
	}
	if a.Stream != nil {
		a.Stream.Broadcast(rec)
	}

	a.log.Debug("stored reading", "device_id", rec.DeviceID, "id", rec.ID, "timestamp_ms", rec.TimestampMS)
	writeJSON(w, 200, shared.IngestResponse{ID: rec.ID})
}

func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}
	devices, err := a.Store.ListDevices()
	if err != nil {
		a.log.Error("list devices failed", "error", err)
		writeJSON(w, 500, map[string]any{"error": "storage error"})
		return
	}
	if devices == nil {
		devices = []string{}
	}
	writeJSON(w, 200, devices)
}

// DeviceValues serves GET /devices/{device_id}/values. Unknown device
// wins over a malformed limit, matching the lookup-then-parse order of
// the read path.
func (a *API) DeviceValues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/devices/")
	deviceID, ok := strings.CutSuffix(rest, "/values")
	if !ok || deviceID == "" {
		writeJSON(w, 404, map[string]any{"error": "not found"})
		return
	}

	recs, err := a.Store.DeviceReadings(deviceID)
	if err != nil {
		a.log.Error("read failed", "device_id", deviceID, "error", err)
		writeJSON(w, 500, map[string]any{"error": "storage error"})
		return
	}
	if recs == nil {
		writeJSON(w, 404, map[string]any{"error": "device not found"})
		return
	}

	opts, err := ParseQueryOptions(r.URL.Query())
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, 200, Annotate(SelectReadings(recs, opts), a.DisplayOffset))
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, shared.HealthResponse{Status: "ok"})
}

// Routes wires the HTTP surface onto a fresh mux.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/sensors", a.RequireClientSecret(a.IngestReading))
	mux.HandleFunc("/devices", a.ListDevices)
	mux.HandleFunc("/devices/", a.DeviceValues)
	mux.HandleFunc("/health", a.Health)
	return mux
}
