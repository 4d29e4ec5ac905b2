package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Timestamp layouts accepted at the ingestion boundary. The 46elks gateway
// sends "2024-01-01T00:00:00.000000" style timestamps, sometimes with a
// trailing "Z" UTC marker; stored timestamps are canonical RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a gateway or stored timestamp, tolerating a trailing
// "Z" and missing zone information. Zoneless timestamps are taken as UTC.
// This is the single normalization point; services must not re-parse.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	// Zoneless layouts reject a trailing Z; strip it and retry.
	if trimmed, ok := strings.CutSuffix(value, "Z"); ok {
		for _, layout := range timestampLayouts[2:] {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t.UTC(), nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", value)
}

// FormatTimestamp renders the canonical stored form: RFC 3339 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewID generates a new record id.
func NewID() string {
	return uuid.NewString()
}
