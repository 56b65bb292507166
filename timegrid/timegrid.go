// Package timegrid quantizes availability time ranges into fixed-size
// bookable chunks and normalizes the time representations accepted at the
// API boundary.
package timegrid

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// BaseChunk is the smallest bookable time unit. All availability is
// quantized to it and every service duration must be a multiple of it.
const BaseChunk = 30 * time.Minute

// ErrMalformedTimeInput is returned when a value cannot be interpreted as
// an instant.
var ErrMalformedTimeInput = errors.New("malformed time input")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Normalize converts any accepted time representation into a UTC instant.
// Accepted: time.Time, RFC3339 strings, epoch seconds (int/int64/float64),
// and maps carrying epoch "seconds" with optional "nanos"/"nanoseconds"
// (the shape document-store timestamps decode into from JSON).
func Normalize(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrMalformedTimeInput)
		}
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil time", ErrMalformedTimeInput)
		}
		return Normalize(*v)
	case string:
		if v == "" {
			return time.Time{}, fmt.Errorf("%w: empty string", ErrMalformedTimeInput)
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05", v); err == nil {
			return t.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("%w: unparseable string %q", ErrMalformedTimeInput, v)
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, fmt.Errorf("%w: non-finite number", ErrMalformedTimeInput)
		}
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	case map[string]interface{}:
		secs, ok := v["seconds"]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: map without seconds field", ErrMalformedTimeInput)
		}
		base, err := Normalize(secs)
		if err != nil {
			return time.Time{}, err
		}
		if nanos, ok := v["nanos"]; ok {
			base = base.Add(time.Duration(toInt64(nanos)))
		} else if nanos, ok := v["nanoseconds"]; ok {
			base = base.Add(time.Duration(toInt64(nanos)))
		}
		return base.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedTimeInput, value)
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Chunk splits [start, end) into the maximal ascending sequence of
// left-aligned BaseChunk-length intervals that fit entirely within the
// range. A trailing remainder shorter than BaseChunk is dropped; the
// result is empty when end <= start.
func Chunk(start, end time.Time) []Interval {
	var chunks []Interval
	for cur := start; !cur.Add(BaseChunk).After(end); cur = cur.Add(BaseChunk) {
		chunks = append(chunks, Interval{Start: cur, End: cur.Add(BaseChunk)})
	}
	return chunks
}

// ChunkCount reports how many base chunks fit entirely within [start, end).
func ChunkCount(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / BaseChunk)
}

// Aligned reports whether d is a positive multiple of BaseChunk.
func Aligned(d time.Duration) bool {
	return d > 0 && d%BaseChunk == 0
}

// ChunksFor returns the number of base chunks needed to host a service of
// the given duration.
func ChunksFor(durationMinutes int) int {
	d := time.Duration(durationMinutes) * time.Minute
	return int((d + BaseChunk - 1) / BaseChunk)
}
