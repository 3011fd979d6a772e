package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Excel serial day numbers accepted as dates (1900-01-01 .. 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

var nullSentinels = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
	"-":    {},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02/01/2006 15:04:05",
}

// NormalizeString trims the value and maps empty or null-like cells to nil.
func NormalizeString(v any) *string {
	var s string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		s = val
	case *string:
		if val == nil {
			return nil
		}
		s = *val
	case time.Time:
		s = val.Format("2006-01-02")
	case float64:
		s = formatFloat(val)
	case float32:
		s = formatFloat(float64(val))
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, ok := nullSentinels[strings.ToLower(s)]; ok {
		return nil
	}
	return &s
}

// NormalizeInt parses decimal integers, accepting integral floats such as "2024.0".
func NormalizeInt(v any) *int {
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		return &val
	case int8:
		return intPtr(int(val))
	case int16:
		return intPtr(int(val))
	case int32:
		return intPtr(int(val))
	case int64:
		return intFromFloat(float64(val))
	case uint:
		return intFromFloat(float64(val))
	case uint8:
		return intPtr(int(val))
	case uint16:
		return intPtr(int(val))
	case uint32:
		return intFromFloat(float64(val))
	case uint64:
		return intFromFloat(float64(val))
	case float32:
		return intFromFloat(float64(val))
	case float64:
		return intFromFloat(val)
	case bool:
		return nil
	}

	s := NormalizeString(v)
	if s == nil {
		return nil
	}
	if n, err := strconv.Atoi(*s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return intFromFloat(f)
}

// NormalizeDate converts ISO or dd/mm/yyyy strings, time values and Excel serial
// numbers into a calendar date at UTC midnight.
func NormalizeDate(v any) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return dateOnly(val)
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		return dateOnly(*val)
	case float64:
		return fromExcelSerial(val)
	case float32:
		return fromExcelSerial(float64(val))
	case int:
		return fromExcelSerial(float64(val))
	case int64:
		return fromExcelSerial(float64(val))
	}

	s := NormalizeString(v)
	if s == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return dateOnly(t)
		}
	}
	if f, err := strconv.ParseFloat(*s, 64); err == nil {
		return fromExcelSerial(f)
	}
	return nil
}

// OrientationSet is the controlled vocabulary of orientation tags, keyed by folded spelling.
type OrientationSet map[string]string

// NewOrientationSet builds a vocabulary from canonical spellings.
func NewOrientationSet(values []string) OrientationSet {
	set := make(OrientationSet, len(values))
	for _, value := range values {
		canonical := strings.TrimSpace(value)
		if canonical == "" {
			continue
		}
		set[foldKey(canonical)] = canonical
	}
	return set
}

// NormalizeOrientation returns the canonical spelling of v when it belongs to allowed.
// An empty vocabulary accepts any non-empty value in title case, so "FINANZAS" and
// "finanzas" land on the same tag.
func NormalizeOrientation(v any, allowed OrientationSet) *string {
	s := NormalizeString(v)
	if s == nil {
		return nil
	}
	if len(allowed) == 0 {
		canonical := titleOrientation(*s)
		return &canonical
	}
	canonical, ok := allowed[foldKey(*s)]
	if !ok {
		return nil
	}
	return &canonical
}

// typeSet matches subject types case-insensitively.
type typeSet map[string]struct{}

func newTypeSet(values []string) typeSet {
	set := make(typeSet, len(values))
	for _, value := range values {
		if key := foldKey(value); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func (s typeSet) Contains(value *string) bool {
	if value == nil {
		return false
	}
	_, ok := s[foldKey(*value)]
	return ok
}

func titleOrientation(s string) string {
	return cases.Title(language.Spanish).String(foldKey(s))
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func intFromFloat(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	return intPtr(int(f))
}

func fromExcelSerial(serial float64) *time.Time {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return nil
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return nil
	}
	return dateOnly(t)
}

func dateOnly(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
