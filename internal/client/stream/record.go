package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record is one log line pushed by the backend.
type Record struct {
	ID        int64
	ServerID  string
	Timestamp time.Time
	Level     Level
	// RawLevel is the level exactly as sent.
	RawLevel       string
	Source         string
	Message        string
	AnalysisStatus string
	Problem        string
	ServerConfigID *int64
}

type wireRecord struct {
	IDLog          *int64          `json:"idLog"`
	IDServerConfig *int64          `json:"idServerConfig"`
	Timestamp      json.RawMessage `json:"timestamp"`
	Level          *string         `json:"level"`
	Source         *string         `json:"source"`
	Message        *string         `json:"message"`
	AnalysisStatus *string         `json:"analysisStatus"`
	Problem        *string         `json:"problem"`
}

// Zone-less timestamps are what the backend's LocalDateTime serializes to.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
}

// DecodeRecord validates and decodes one message body. Every failure wraps
// ErrMalformedRecord.
func DecodeRecord(body []byte) (Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, fmt.Errorf("%w: not a JSON object", ErrMalformedRecord)
	}

	var w wireRecord
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if w.IDLog == nil {
		return Record{}, fmt.Errorf("%w: missing idLog", ErrMalformedRecord)
	}

	ts, err := decodeTimestamp(w.Timestamp)
	if err != nil {
		return Record{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedRecord, err)
	}

	r := Record{
		ID:             *w.IDLog,
		Timestamp:      ts,
		RawLevel:       deref(w.Level),
		Source:         deref(w.Source),
		Message:        deref(w.Message),
		AnalysisStatus: deref(w.AnalysisStatus),
		Problem:        deref(w.Problem),
		ServerConfigID: w.IDServerConfig,
	}
	r.Level = ParseLevel(r.RawLevel)
	return r, nil
}

// decodeTimestamp accepts RFC 3339, a zone-less ISO-8601 local date-time
// (read as UTC), or Jackson's array form [y,m,d,h,min,s,nanos].
func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised format %q", s)

	case '[':
		var parts []int
		if err := json.Unmarshal(raw, &parts); err != nil {
			return time.Time{}, err
		}
		if len(parts) < 3 || len(parts) > 7 {
			return time.Time{}, fmt.Errorf("expected 3 to 7 elements, got %d", len(parts))
		}
		f := make([]int, 7)
		copy(f, parts)
		return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], f[6], time.UTC), nil

	default:
		return time.Time{}, fmt.Errorf("unexpected JSON %s", raw)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
