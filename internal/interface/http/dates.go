package http

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireDate accepts either a calendar date (2006-01-02) or an RFC 3339
// timestamp. Only the calendar date as written is kept, at midnight UTC, so
// an offset never moves a birthday to the neighbouring day.
type wireDate struct {
	time.Time
}

func (d *wireDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if ts, err := time.Parse(layout, raw); err == nil {
			y, m, day := ts.Date()
			d.Time = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}
