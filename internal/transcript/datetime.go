package transcript

import (
	"fmt"
	"strings"
	"time"
)

// ParseError is returned when a transcript header's day or time cannot be
// parsed. Per spec section 7, this is a per-file failure: the caller skips
// the whole transcript and warns, it does not abort the run.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// dayLayouts are tried in order: DD/MM/YY before DD/MM/YYYY, per spec 4.2.
var dayLayouts = []string{"2/1/06", "2/1/2006"}

// timeLayouts cover 12-hour (with the space the spec's regex bakes into the
// capture group) and bare 24-hour clock times.
var timeLayouts = []string{"3:04 pm", "3:04pm", "15:04"}

// parseDayTime combines a "day" and "tm" capture from a transcript header
// into a local datetime at minute resolution (seconds always zero).
func parseDayTime(day, tm string) (time.Time, error) {
	var d time.Time
	var err error
	for _, layout := range dayLayouts {
		d, err = time.ParseInLocation(layout, day, time.Local)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, &ParseError{Raw: day, Err: err}
	}

	normalizedTM := strings.ToLower(strings.TrimSpace(tm))
	var t time.Time
	err = nil
	parsed := false
	for _, layout := range timeLayouts {
		t, err = time.Parse(strings.ToLower(layout), normalizedTM)
		if err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return time.Time{}, &ParseError{Raw: tm, Err: err}
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}
