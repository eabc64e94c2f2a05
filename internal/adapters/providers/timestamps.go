package providers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes the providers return: RFC 3339
// strings, Go-style UTC strings, and Unix epoch milliseconds.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// ParseSubtitleDate reads dates like "Mar 4 • 8:15 AM" or "Mar 4, 2024 • 8:15 AM"
// from activity list subtitles. Dates without a year are placed in the most
// recent year that does not put them after now.
func ParseSubtitleDate(subtitle string, now time.Time, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	parts := strings.Split(subtitle, "•")
	datePart := strings.TrimSpace(parts[0])
	timePart := ""
	if len(parts) > 1 {
		timePart = strings.TrimSpace(parts[1])
	}

	withYear := []string{"Jan 2, 2006", "January 2, 2006", "1/2/06", "1/2/2006"}
	for _, layout := range withYear {
		if d, err := time.ParseInLocation(layout, datePart, loc); err == nil {
			return withClock(d, timePart), true
		}
	}
	for _, layout := range []string{"Jan 2", "January 2"} {
		d, err := time.ParseInLocation(layout, datePart, loc)
		if err != nil {
			continue
		}
		year := now.In(loc).Year()
		d = time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, loc)
		if d.After(now) {
			d = d.AddDate(-1, 0, 0)
		}
		return withClock(d, timePart), true
	}
	return time.Time{}, false
}

func withClock(day time.Time, clock string) time.Time {
	if clock == "" {
		return day
	}
	t, err := time.Parse("3:04 PM", clock)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

// Timestamp decodes a JSON string or number holding either an RFC 3339
// value or epoch milliseconds. Null and empty values decode to the zero time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !strings.ContainsAny(raw, "-:") {
		t.Time = time.UnixMilli(int64(f)).UTC()
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
