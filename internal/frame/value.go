package frame

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a cell holds
type Kind uint8

const (
	Null Kind = iota
	String
	Number
	Date
)

// Value is a single table cell. Exactly one of Str, Num or Time is meaningful,
// selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Time time.Time
}

func NullValue() Value { return Value{} }
func StringValue(s string) Value { return Value{Kind: String, Str: s} }
func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }
func DateValue(t time.Time) Value { return Value{Kind: Date, Time: t} }
func (v Value) IsNull() bool { return v.Kind == Null }
func (v Value) Float() (float64, bool) { return v.Num, v.Kind == Number }

// Text renders the cell the way it is compared and exported: numbers in
// shortest form, dates as YYYY-MM-DD, null as "".
func (v Value) Text() string {
	switch v.Kind {
	case String:
		return v.Str
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Date:
		return v.Time.Format(dateLayout)
	default:
		return ""
	}
}

// TimePtr returns the cell as *time.Time, nil unless it is a date.
func (v Value) TimePtr() *time.Time {
	if v.Kind != Date {
		return nil
	}
	t := v.Time
	return &t
}

// FloatPtr returns the cell as *float64, nil unless it is a number.
func (v Value) FloatPtr() *float64 {
	if v.Kind != Number {
		return nil
	}
	f := v.Num
	return &f
}

const dateLayout = "2006-01-02"

// naTokens mirrors the markers CSV exports use for missing values.
var naTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "-nan": true, "null": true,
	"none": true, "nat": true, "#n/a": true, "<na>": true,
}

// IsNA reports whether a raw cell should be read as missing.
func IsNA(raw string) bool {
	return naTokens[strings.ToLower(strings.TrimSpace(raw))]
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"02.01.2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"January 2, 2006",
}

// ParseDate tries the known layouts in order. Day-first layouts are tried
// after ISO ones, matching how court registries write dates.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if IsNA(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumber accepts plain decimal numbers only; "Inf"/"NaN" spellings are
// not treated as numbers.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
