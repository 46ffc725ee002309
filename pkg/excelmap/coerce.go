package excelmap

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const dayMillis = 24 * 60 * 60 * 1000

// Bounds of the floats that convert to int64 and uint64 without overflow.
const (
	minInt64Float  = -9223372036854775808.0
	maxInt64Float  = 9223372036854775808.0
	maxUint64Float = 18446744073709551616.0
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// ---------------------------------------------------------------------------
// export: field value -> cell value
// ---------------------------------------------------------------------------

// indirect dereferences pointers. ok is false for nil values.
func indirect(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

// textValue renders a value for a TEXT cell.
func textValue(v interface{}, p datePattern) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case time.Time:
		if val.IsZero() {
			return "", nil
		}
		return val.Format(p.layout), nil
	case time.Duration:
		return val.String(), nil
	case encoding.TextMarshaler:
		b, err := val.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}
	return fmt.Sprint(v), nil
}

// numericValue returns an int64, uint64 or float64 for a NUMERIC cell.
// An empty string yields nil.
func numericValue(v interface{}) (interface{}, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if _, ok := v.(time.Duration); ok {
			break
		}
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%T cannot be written as a number", v)
}

// timeOfDay returns the time of day of t or the duration d as a fraction of a day.
func timeOfDay(v interface{}) (float64, error) {
	switch val := v.(type) {
	case time.Time:
		d := time.Duration(val.Hour())*time.Hour +
			time.Duration(val.Minute())*time.Minute +
			time.Duration(val.Second())*time.Second +
			time.Duration(val.Nanosecond())
		return d.Seconds() / 86400, nil
	case time.Duration:
		return val.Seconds() / 86400, nil
	}
	return 0, fmt.Errorf("%T cannot be written as a time of day", v)
}

// ---------------------------------------------------------------------------
// import: raw cell text -> field value
// ---------------------------------------------------------------------------

// decodable reports whether values of t can be decoded from raw cell text.
func decodable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType || t == durationType || reflect.PtrTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

type decoder struct {
	loc      *time.Location
	date1904 bool
}

// decode converts raw cell text into a value of type t. Empty text decodes to
// the zero value.
func (d decoder) decode(raw string, t reflect.Type, ct CellType, p datePattern) (reflect.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return reflect.Zero(t), nil
	}
	if t.Kind() == reflect.Ptr {
		elem, err := d.decode(raw, t.Elem(), ct, p)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	switch t {
	case timeType:
		var (
			tm  time.Time
			err error
		)
		if ct == CellTypeTime {
			tm, err = d.parseClock(raw, p)
		} else {
			tm, err = d.parseDate(raw, p)
		}
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(tm), nil
	case durationType:
		dur, err := d.parseDuration(raw, ct, p)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(dur).Convert(t), nil
	}

	if reflect.PtrTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}

	s := strings.TrimSpace(raw)
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%q is not a boolean", s)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			// "12.0" and "1.2e3" are integral numbers written as floats
			f, ferr := strconv.ParseFloat(s, 64)
			if !errors.Is(err, strconv.ErrSyntax) || ferr != nil || f != math.Trunc(f) ||
				f < minInt64Float || f >= maxInt64Float || v.OverflowInt(int64(f)) {
				return reflect.Value{}, fmt.Errorf("%q is not a valid %s", s, t)
			}
			n = int64(f)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if !errors.Is(err, strconv.ErrSyntax) || ferr != nil || f != math.Trunc(f) ||
				f < 0 || f >= maxUint64Float || v.OverflowUint(uint64(f)) {
				return reflect.Value{}, fmt.Errorf("%q is not a valid %s", s, t)
			}
			n = uint64(f)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%q is not a valid %s", s, t)
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("cannot decode into %s", t)
	}
	return v, nil
}

// parseDate accepts text in the column pattern, a date serial number or RFC 3339.
func (d decoder) parseDate(raw string, p datePattern) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(p.layout, s, d.loc); err == nil {
		return t, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return d.fromSerial(serial, p)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(d.loc), nil
	}
	return time.Time{}, fmt.Errorf("%q does not match pattern %q", s, p.source)
}

func (d decoder) fromSerial(serial float64, p datePattern) (time.Time, error) {
	days := math.Floor(serial)
	base, err := excelize.ExcelDateToTime(days, d.date1904)
	if err != nil {
		return time.Time{}, err
	}
	ms := math.Round((serial - days) * dayMillis)
	t := base.Add(time.Duration(ms) * time.Millisecond)
	if !p.subSecond {
		t = t.Round(time.Second)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), d.loc), nil
}

// parseClock reads a time of day and returns it on January 1 of year 0.
func (d decoder) parseClock(raw string, p datePattern) (time.Time, error) {
	dur, err := d.parseDuration(raw, CellTypeTime, p)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(0, time.January, 1, 0, 0, 0, 0, d.loc).Add(dur), nil
}

// parseDuration reads a day fraction, text in the column pattern or a Go duration string.
func (d decoder) parseDuration(raw string, ct CellType, p datePattern) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if ct == CellTypeTime {
			f -= math.Floor(f)
		}
		ms := math.Round(f * dayMillis)
		dur := time.Duration(ms) * time.Millisecond
		if !p.subSecond {
			dur = dur.Round(time.Second)
		}
		return dur, nil
	}
	if t, err := time.ParseInLocation(p.layout, s, d.loc); err == nil {
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second +
			time.Duration(t.Nanosecond()), nil
	}
	if dur, err := time.ParseDuration(s); err == nil {
		return dur, nil
	}
	return 0, fmt.Errorf("%q is not a time of day in pattern %q", s, p.source)
}
