package segment

import "time"

// timestampLayouts are tried in order. Sources emit a mix of Z-suffixed,
// fractional-second, zone-less and date-only forms.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp leniently parses a message timestamp. On any unparsable
// input it returns the zero time and false instead of an error, so
// segmentation never fails on malformed timestamps.
func ParseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
