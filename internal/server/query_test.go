package server

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensewire/internal/shared"
)

func readingsAt(timestamps ...int64) []shared.StoredReading {
	recs := make([]shared.StoredReading, 0, len(timestamps))
	for i, ts := range timestamps {
		recs = append(recs, shared.StoredReading{
			SensorReading: shared.SensorReading{
				DeviceID:    "dev1",
				TimestampMS: ts,
			},
			ID: string(rune('a' + i)),
		})
	}
	return recs
}

func timestampsOf(recs []shared.StoredReading) []int64 {
	out := make([]int64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.TimestampMS)
	}
	return out
}

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

func TestSelectReadings(t *testing.T) {
	base := readingsAt(100, 200, 300, 400)

	tests := []struct {
		name string
		opts QueryOptions
		want []int64
	}{
		{"no filters", QueryOptions{}, []int64{100, 200, 300, 400}},
		{"start_ts inclusive", QueryOptions{StartTS: i64(200)}, []int64{200, 300, 400}},
		{"end_ts inclusive", QueryOptions{EndTS: i64(300)}, []int64{100, 200, 300}},
		{"both bounds", QueryOptions{StartTS: i64(150), EndTS: i64(350)}, []int64{200, 300}},
		{"inverted bounds empty", QueryOptions{StartTS: i64(250), EndTS: i64(150)}, []int64{}},
		{"limit keeps newest", QueryOptions{Limit: iptr(2)}, []int64{300, 400}},
		{"limit larger than set", QueryOptions{Limit: iptr(10)}, []int64{100, 200, 300, 400}},
		{"limit zero empty", QueryOptions{Limit: iptr(0)}, []int64{}},
		{"limit negative empty", QueryOptions{Limit: iptr(-5)}, []int64{}},
		{"filter then limit", QueryOptions{EndTS: i64(300), Limit: iptr(2)}, []int64{200, 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectReadings(base, tt.opts)
			assert.Equal(t, tt.want, timestampsOf(got))
		})
	}
}

func TestSelectReadingsSortsUnorderedInput(t *testing.T) {
	got := SelectReadings(readingsAt(300, 100, 400, 200), QueryOptions{})
	assert.Equal(t, []int64{100, 200, 300, 400}, timestampsOf(got))
}

func TestSelectReadingsStableOnEqualTimestamps(t *testing.T) {
	recs := readingsAt(200, 100, 200)
	got := SelectReadings(recs, QueryOptions{})

	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)
	// Equal timestamps keep store order: 'a' was appended before 'c'.
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestSelectReadingsLimitIsSuffixNotPrefix(t *testing.T) {
	// A prefix-take would return the oldest reading; the contract wants
	// the most recent ones within the filtered window.
	got := SelectReadings(readingsAt(100, 200, 300, 400), QueryOptions{Limit: iptr(1)})
	require.Len(t, got, 1)
	assert.Equal(t, int64(400), got[0].TimestampMS)
}

func TestSelectReadingsDoesNotMutateInput(t *testing.T) {
	recs := readingsAt(300, 100, 200)
	_ = SelectReadings(recs, QueryOptions{})
	assert.Equal(t, []int64{300, 100, 200}, timestampsOf(recs))
}

func TestParseQueryOptions(t *testing.T) {
	opts, err := ParseQueryOptions(url.Values{
		"start_ts": {"100"},
		"end_ts":   {"400"},
		"limit":    {"2"},
	})
	require.NoError(t, err)
	require.NotNil(t, opts.StartTS)
	require.NotNil(t, opts.EndTS)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(100), *opts.StartTS)
	assert.Equal(t, int64(400), *opts.EndTS)
	assert.Equal(t, 2, *opts.Limit)

	opts, err = ParseQueryOptions(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, opts.StartTS)
	assert.Nil(t, opts.EndTS)
	assert.Nil(t, opts.Limit)

	for _, key := range []string{"start_ts", "end_ts", "limit"} {
		_, err := ParseQueryOptions(url.Values{key: {"abc"}})
		assert.Error(t, err, key)
	}
}

func TestAnnotateAppliesFixedOffset(t *testing.T) {
	got := Annotate(readingsAt(100), 10*time.Hour)
	require.Len(t, got, 1)
	// 100ms after the epoch, shifted +10h, offset marker included.
	assert.Equal(t, "1970-01-01T10:00:00.100+10:00", got[0].TimestampISOAEST)
	assert.Equal(t, int64(100), got[0].TimestampMS)
}

func TestAnnotateRoundTimestamp(t *testing.T) {
	// 2024-01-15T10:30:00Z in millis.
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC).UnixMilli()
	got := Annotate(readingsAt(ts), 10*time.Hour)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-15T20:30:00.000+10:00", got[0].TimestampISOAEST)
}

func TestAnnotateEmptyInput(t *testing.T) {
	got := Annotate(nil, 10*time.Hour)
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}
