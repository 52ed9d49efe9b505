// internal/core/dates.go
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrInvalidDateFormat is returned when no supported format matches a value.
var ErrInvalidDateFormat = errors.New("invalid date format")

// InvalidDateFormatError carries the rejected input.
type InvalidDateFormatError struct {
	Value string
}

func (e *InvalidDateFormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidDateFormat, e.Value)
}

func (e *InvalidDateFormatError) Unwrap() error { return ErrInvalidDateFormat }

// NormalizedDate is the canonical component set produced by NormalizeDate.
// Month is 1-based.
type NormalizedDate struct {
	Year    int  `json:"year"`
	Month   int  `json:"month"`
	Day     int  `json:"day"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	Second  int  `json:"second"`
	IsValid bool `json:"isValid"`
}

// Time returns the components as a UTC time.
func (d NormalizedDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, time.UTC)
}

// Format renders the date as parameter text suitable for the given cast suffix.
func (d NormalizedDate) Format(cast string) string {
	t := d.Time()
	switch cast {
	case CastDate:
		return t.Format("2006-01-02")
	case CastTime:
		return t.Format("15:04:05")
	case CastTimestampTZ:
		return t.Format(time.RFC3339)
	default:
		return t.Format("2006-01-02 15:04:05")
	}
}

func fromTime(t time.Time) *NormalizedDate {
	return &NormalizedDate{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		IsValid: true,
	}
}

// colonDate matches a:b:yyyy with an optional :HH:mm:ss suffix.
var colonDate = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{4})(?::(\d{1,2}):(\d{1,2}):(\d{1,2}))?$`)

// isoLayouts are tried for strings with a 'T' date/time separator.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

// dateTemplates is the ordered list of explicit templates. Order matters:
// day-first forms are tried before month-first forms.
var dateTemplates = []string{
	"2/1/2006 15:04:05", // dd/MM/yyyy HH:mm:ss
	"2/1/2006",          // dd/MM/yyyy
	"2-1-2006",          // dd-MM-yyyy
	"1-2-2006",          // MM-dd-yyyy
	"Jan 2 2006",        // MMM dd yyyy
	"January 2 2006",
	"2 Jan 2006", // dd MMM yyyy
	"2 January 2006",
	"2006/1/2 15:04",    // yyyy/MM/dd HH:mm
	"2006-1-2 15:04:05", // yyyy-MM-dd HH:mm:ss
	"2006-1-2",          // yyyy-MM-dd
	"1/2/2006",          // MM/dd/yyyy
	"1/2/2006 15:04:05", // MM/dd/yyyy HH:mm:ss
}

var timeOfDayLayouts = []string{"15:04:05", "15:04"}

// NormalizeDate parses a heterogeneous date/time value into its components.
//
// A nil result with a nil error means "no value" (nil, empty or blank string)
// and maps to SQL NULL. Unparseable input yields *InvalidDateFormatError.
func NormalizeDate(value any) (*NormalizedDate, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return fromTime(v), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return fromTime(*v), nil
	case float64:
		return fromTime(time.UnixMilli(int64(v)).UTC()), nil
	case int:
		return fromTime(time.UnixMilli(int64(v)).UTC()), nil
	case int64:
		return fromTime(time.UnixMilli(v).UTC()), nil
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return nil, &InvalidDateFormatError{Value: v.String()}
		}
		return fromTime(time.UnixMilli(ms).UTC()), nil
	case string:
		return normalizeDateString(v)
	default:
		return normalizeDateString(fmt.Sprint(v))
	}
}

func normalizeDateString(raw string) (*NormalizedDate, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	if d, ok := parseColonDate(s); ok {
		return d, nil
	}

	if strings.Contains(s, "T") {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return fromTime(t.UTC()), nil
			}
		}
	}

	for _, layout := range dateTemplates {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t), nil
		}
	}

	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &NormalizedDate{Year: 1970, Month: 1, Day: 1, Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), IsValid: true}, nil
		}
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return fromTime(t.UTC()), nil
	}

	return nil, &InvalidDateFormatError{Value: raw}
}

// parseColonDate resolves the day/month order of a:b:yyyy by magnitude:
// a > 12 means a is the day; otherwise b > 12 means b is the day; when both
// are <= 12 the input is read as day:month.
func parseColonDate(s string) (*NormalizedDate, bool) {
	m := colonDate.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}

	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	day, month := a, b
	if a <= 12 && b > 12 {
		day, month = b, a
	}

	var hour, minute, second int
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		second, _ = strconv.Atoi(m[6])
	}

	if !validComponents(year, month, day, hour, minute, second) {
		return nil, false
	}
	return &NormalizedDate{
		Year:    year,
		Month:   month,
		Day:     day,
		Hour:    hour,
		Minute:  minute,
		Second:  second,
		IsValid: true,
	}, true
}

func validComponents(year, month, day, hour, minute, second int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	if hour > 23 || minute > 59 || second > 59 {
		return false
	}
	// time.Date normalises overflow, so a round trip detects e.g. 31/02.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}
