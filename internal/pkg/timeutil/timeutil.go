package timeutil

import (
	"strings"
	"time"
)

// ISOLayout is the wire format for every timestamp the API returns.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func NowMilli() int64 {
	return time.Now().UnixMilli()
}

func FromMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func FormatMilli(ms int64) string {
	return FromMilli(ms).Format(ISOLayout)
}

// ParseISO accepts the common ISO-8601 shapes. Values without a zone are
// taken as UTC.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
