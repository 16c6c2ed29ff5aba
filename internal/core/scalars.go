package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Number is a loosely typed numeric field as it arrives from storage or
// clients: a JSON number, a numeric string, or null. The raw text is kept so
// an unparseable value round-trips unchanged.
type Number struct {
	raw string
	set bool
}

// NewNumber wraps a decimal value.
func NewNumber(d decimal.Decimal) Number {
	return Number{raw: d.String(), set: true}
}

// NumberFrom wraps raw text. Blank text yields an unset Number.
func NumberFrom(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	return Number{raw: s, set: true}
}

// IsZero reports whether the field is absent.
func (n Number) IsZero() bool { return !n.set }

// Raw returns the text as received.
func (n Number) Raw() string { return n.raw }

// Decimal parses the value. ok is false when the field is absent or the text
// is not a finite number.
func (n Number) Decimal() (d decimal.Decimal, ok bool) {
	if !n.set {
		return decimal.Zero, false
	}
	d, err := ParseNumber(n.raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OrZero returns the parsed value or zero.
func (n Number) OrZero() decimal.Decimal {
	d, _ := n.Decimal()
	return d
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberFrom(s)
		return nil
	}
	*n = Number{raw: string(data), set: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	if d, ok := n.Decimal(); ok {
		return []byte(d.String()), nil
	}
	return json.Marshal(n.raw)
}

// Text is a string field that also accepts JSON numbers, since reference and
// invoice numbers are stored both ways.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

// String returns the text value.
func (t Text) String() string { return string(t) }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// Timestamp is an optional date or date-time. Text that matches none of the
// accepted layouts is kept but never resolves.
type Timestamp struct {
	raw      string
	t        time.Time
	ok       bool
	dateOnly bool
}

// NewTimestamp wraps a resolved time.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{raw: t.Format(time.RFC3339), t: t, ok: true}
}

// NewDate returns a date-only Timestamp at UTC midnight.
func NewDate(year int, month time.Month, day int) Timestamp {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Timestamp{raw: t.Format("2006-01-02"), t: t, ok: true, dateOnly: true}
}

// ParseTimestamp resolves s against the accepted layouts.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{raw: s, t: t, ok: true, dateOnly: layout == "2006-01-02"}
		}
	}
	return Timestamp{raw: s}
}

// IsZero reports whether the field is absent.
func (ts Timestamp) IsZero() bool { return ts.raw == "" }

// Time returns the resolved instant.
func (ts Timestamp) Time() (time.Time, bool) { return ts.t, ts.ok }

// Day returns the calendar date as written, at UTC midnight. The time of day
// and the zone offset are dropped so boundary comparisons are per day.
func (ts Timestamp) Day() (time.Time, bool) {
	if !ts.ok {
		return time.Time{}, false
	}
	return DayOf(ts.t), true
}

// String returns the text as received.
func (ts Timestamp) String() string { return ts.raw }

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Non-string values are kept as unresolvable text.
		*ts = Timestamp{raw: string(data)}
		return nil
	}
	*ts = ParseTimestamp(s)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.raw == "":
		return []byte("null"), nil
	case !ts.ok:
		return json.Marshal(ts.raw)
	case ts.dateOnly:
		return json.Marshal(ts.t.Format("2006-01-02"))
	default:
		return json.Marshal(ts.t.Format(time.RFC3339))
	}
}

// DayOf truncates t to its calendar date in its own location and returns it
// at UTC midnight.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
