package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoredReadingStampsServerTime(t *testing.T) {
	before := time.Now().UnixMilli()
	rec := NewStoredReading(SensorReading{
		DeviceID:    "dev1",
		TimestampMS: 42, // client value, must be discarded
	})
	after := time.Now().UnixMilli()

	assert.NotEqual(t, int64(42), rec.TimestampMS)
	assert.GreaterOrEqual(t, rec.TimestampMS, before)
	assert.LessOrEqual(t, rec.TimestampMS, after)
	assert.Equal(t, "dev1", rec.DeviceID)
	assert.NotEmpty(t, rec.ID)
}

func TestNewStoredReadingUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		rec := NewStoredReading(SensorReading{DeviceID: "dev1"})
		require.False(t, seen[rec.ID])
		seen[rec.ID] = true
	}
}

func TestStoredReadingJSONIsFlat(t *testing.T) {
	rec := StoredReading{
		SensorReading: SensorReading{
			DeviceID:     "dev1",
			TimestampMS:  100,
			TemperatureC: 20.0,
		},
		ID: "abc",
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	// Embedding must not introduce nesting on the wire.
	assert.Equal(t, "abc", m["id"])
	assert.Equal(t, "dev1", m["device_id"])
	assert.Equal(t, float64(100), m["timestamp_ms"])
}

func TestAnnotatedReadingJSONCarriesAllFields(t *testing.T) {
	ar := AnnotatedReading{
		StoredReading: StoredReading{
			SensorReading: SensorReading{DeviceID: "dev1", TimestampMS: 100},
			ID:            "abc",
		},
		TimestampISOAEST: "1970-01-01T10:00:00.100+10:00",
	}

	b, err := json.Marshal(ar)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "abc", m["id"])
	assert.Equal(t, "1970-01-01T10:00:00.100+10:00", m["timestamp_iso_aest"])
	for _, key := range []string{"device_id", "timestamp_ms", "temperature_c", "temperature_f", "humidity_pct", "pressure_hpa", "altitude_m"} {
		assert.Contains(t, m, key)
	}
}
