package server

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"sensewire/internal/shared"
)

// QueryOptions are the optional read-time filters. Nil means "not given".
type QueryOptions struct {
	StartTS *int64
	EndTS   *int64
	Limit   *int
}

// ParseQueryOptions reads start_ts, end_ts and limit from the query
// string. Any value that does not parse as an integer is a caller error.
func ParseQueryOptions(q url.Values) (QueryOptions, error) {
	var opts QueryOptions

	if v := q.Get("start_ts"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("start_ts must be an integer")
		}
		opts.StartTS = &n
	}
	if v := q.Get("end_ts"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("end_ts must be an integer")
		}
		opts.EndTS = &n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("limit must be an integer")
		}
		opts.Limit = &n
	}
	return opts, nil
}

// SelectReadings applies the read path in its required order:
// filter by time bounds, sort ascending by timestamp, then keep the
// LAST limit entries. The suffix-take is the point: limit selects the
// most recent readings within the filtered window, not the oldest.
func SelectReadings(recs []shared.StoredReading, opts QueryOptions) []shared.StoredReading {
	out := make([]shared.StoredReading, 0, len(recs))
	for _, r := range recs {
		if opts.StartTS != nil && r.TimestampMS < *opts.StartTS {
			continue
		}
		if opts.EndTS != nil && r.TimestampMS > *opts.EndTS {
			continue
		}
		out = append(out, r)
	}

	// Stable sort so equal timestamps keep store (ingestion) order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMS < out[j].TimestampMS
	})

	if opts.Limit != nil {
		n := *opts.Limit
		if n <= 0 {
			return out[:0]
		}
		if n < len(out) {
			out = out[len(out)-n:]
		}
	}
	return out
}

const isoMillisLayout = "2006-01-02T15:04:05.000-07:00"

// Annotate derives the display timestamp for each reading: the UTC
// instant shifted by a fixed offset, rendered ISO-8601 with that offset.
// Fixed arithmetic on purpose; the source convention is not DST-aware.
func Annotate(recs []shared.StoredReading, offset time.Duration) []shared.AnnotatedReading {
	loc := time.FixedZone("", int(offset/time.Second))
	out := make([]shared.AnnotatedReading, 0, len(recs))
	for _, r := range recs {
		out = append(out, shared.AnnotatedReading{
			StoredReading:    r,
			TimestampISOAEST: time.UnixMilli(r.TimestampMS).In(loc).Format(isoMillisLayout),
		})
	}
	return out
}
