package excelmap

import (
	"math"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellType(t *testing.T) {
	for in, want := range map[string]CellType{
		"":        CellTypeText,
		"text":    CellTypeText,
		"Numeric": CellTypeNumeric,
		"number":  CellTypeNumeric,
		" DATE ":  CellTypeDate,
		"time":    CellTypeTime,
	} {
		got, err := ParseCellType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCellType("currency")
	assert.Error(t, err)
	assert.Equal(t, "NUMERIC", CellTypeNumeric.String())
	assert.Equal(t, "CellType(9)", CellType(9).String())
}

func TestTextValue(t *testing.T) {
	p, err := compilePattern("dd/MM/yyyy")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", "plain", "plain"},
		{"time", time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), "29/02/2024"},
		{"zero time", time.Time{}, ""},
		{"duration", 90 * time.Minute, "1h30m0s"},
		{"text marshaler", net.ParseIP("10.0.0.1"), "10.0.0.1"},
		{"bool", false, "false"},
		{"int", int8(-4), "-4"},
		{"uint", uint16(7), "7"},
		{"float", 1.5, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := textValue(tt.in, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumericValue(t *testing.T) {
	v, err := numericValue(int32(-3))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), v)

	v, err = numericValue(uint(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	v, err = numericValue(" 2.75 ")
	require.NoError(t, err)
	assert.Equal(t, 2.75, v)

	v, err = numericValue("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = numericValue("abc")
	assert.Error(t, err)
	_, err = numericValue(time.Second)
	assert.Error(t, err)
	_, err = numericValue(true)
	assert.Error(t, err)
}

func TestTimeOfDay(t *testing.T) {
	f, err := timeOfDay(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-12)

	f, err = timeOfDay(6 * time.Hour)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f, 1e-12)

	_, err = timeOfDay("noon")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	d := decoder{loc: time.UTC}
	p, err := compilePattern(DefaultDatePattern)
	require.NoError(t, err)

	decode := func(raw string, v interface{}, ct CellType) interface{} {
		t.Helper()
		rv, err := d.decode(raw, reflect.TypeOf(v), ct, p)
		require.NoError(t, err, raw)
		return rv.Interface()
	}

	assert.Equal(t, " keep spaces ", decode(" keep spaces ", "", CellTypeText))
	assert.Equal(t, true, decode("TRUE", false, CellTypeText))
	assert.Equal(t, 12, decode("12", 0, CellTypeNumeric))
	assert.Equal(t, 12, decode("12.0", 0, CellTypeNumeric))
	assert.Equal(t, uint8(200), decode("200", uint8(0), CellTypeNumeric))
	assert.Equal(t, int64(1000), decode("1e3", int64(0), CellTypeNumeric))
	assert.Equal(t, int64(math.MinInt64), decode("-9223372036854775808", int64(0), CellTypeNumeric))
	assert.Equal(t, uint64(math.MaxUint64), decode("18446744073709551615", uint64(0), CellTypeNumeric))
	assert.Equal(t, float32(0.5), decode("0.5", float32(0), CellTypeNumeric))
	assert.Equal(t, 0, decode("", 0, CellTypeNumeric))
	assert.Equal(t, net.ParseIP("10.0.0.1"), decode("10.0.0.1", net.IP{}, CellTypeText))
	assert.Equal(t, 2*time.Hour, decode("2h", time.Duration(0), CellTypeText))

	when := decode("2024-02-29 10:11:12", time.Time{}, CellTypeDate).(time.Time)
	assert.Equal(t, time.Date(2024, 2, 29, 10, 11, 12, 0, time.UTC), when)
	when = decode("45351.5", time.Time{}, CellTypeDate).(time.Time)
	assert.Equal(t, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), when)
	when = decode("2024-02-29T10:11:12Z", time.Time{}, CellTypeDate).(time.Time)
	assert.Equal(t, time.Date(2024, 2, 29, 10, 11, 12, 0, time.UTC), when)

	ptr := decode("7", new(int), CellTypeNumeric).(*int)
	require.NotNil(t, ptr)
	assert.Equal(t, 7, *ptr)
	assert.Nil(t, decode(" ", new(int), CellTypeNumeric).(*int))

	for _, tc := range []struct {
		raw string
		v   interface{}
	}{
		{"yes please", false},
		{"1.5", 0},
		{"-1", uint(0)},
		{"300", int8(0)},
		{"9223372036854775808", int64(0)},
		{"-9223372036854775809", int64(0)},
		{"1e30", int64(0)},
		{"-1e30", int64(0)},
		{"9.3e18", int64(0)},
		{"18446744073709551616", uint64(0)},
		{"1e20", uint64(0)},
		{"3e2", int8(0)},
		{"x", 0.0},
		{"someday", time.Time{}},
		{"a", []string{}},
	} {
		_, err := d.decode(tc.raw, reflect.TypeOf(tc.v), CellTypeText, p)
		assert.Error(t, err, tc.raw)
	}
}

func TestDecodeDate1904(t *testing.T) {
	p, err := compilePattern("yyyy-MM-dd")
	require.NoError(t, err)

	got, err := decoder{loc: time.UTC, date1904: true}.parseDate("42369", p)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestDecodable(t *testing.T) {
	assert.True(t, decodable(reflect.TypeOf("")))
	assert.True(t, decodable(reflect.TypeOf(new(time.Time))))
	assert.True(t, decodable(reflect.TypeOf(time.Second)))
	assert.True(t, decodable(reflect.TypeOf(net.IP{})))
	assert.False(t, decodable(reflect.TypeOf([]string{})))
	assert.False(t, decodable(reflect.TypeOf(map[string]int{})))
	assert.False(t, decodable(nil))
}
