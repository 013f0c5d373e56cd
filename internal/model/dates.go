package model

import (
	"fmt"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts the ISO-8601 shapes clients send: full timestamps and
// bare calendar dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Timestamp formats t the way records store their audit fields.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
