package database

import (
	"time"
)

// timestampLayouts covers the formats SQLite hands back for CURRENT_TIMESTAMP
// columns depending on how the value was written.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
