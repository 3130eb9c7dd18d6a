package shared

import (
	"time"

	"github.com/google/uuid"
)

// SensorReading is the payload a device submits. The client may send a
// timestamp_ms but the server never trusts it; ingestion stamps its own.
type SensorReading struct {
	DeviceID     string  `json:"device_id"`
	TimestampMS  int64   `json:"timestamp_ms"`
	TemperatureC float64 `json:"temperature_c"`
	TemperatureF float64 `json:"temperature_f"`
	HumidityPct  float64 `json:"humidity_pct"`
	PressureHPa  float64 `json:"pressure_hpa"`
	AltitudeM    float64 `json:"altitude_m"`
}

// StoredReading is a SensorReading after ingestion: server-assigned id,
// server-assigned timestamp. Never mutated once stored.
type StoredReading struct {
	SensorReading
	ID string `json:"id"`
}

// AnnotatedReading is the query-time view of a StoredReading with a
// display timestamp derived from timestamp_ms.
type AnnotatedReading struct {
	StoredReading
	TimestampISOAEST string `json:"timestamp_iso_aest"`
}

// NewStoredReading assigns identity and the server-side timestamp.
// The client-supplied timestamp_ms is discarded here, on purpose.
func NewStoredReading(r SensorReading) StoredReading {
	r.TimestampMS = time.Now().UTC().UnixMilli()
	return StoredReading{
		SensorReading: r,
		ID:            uuid.NewString(),
	}
}

type IngestResponse struct {
	ID string `json:"id"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
