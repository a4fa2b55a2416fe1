package result

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Value is one column value tagged with its type. The zero Value is NULL.
type Value struct {
	typ Type
	raw any
}

// Null returns the NULL value.
func Null() Value {
	return Value{typ: TypeNull}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"15:04:05",
}

// NewValue normalizes a raw driver value for a column of type typ. Integers
// become int64, floats float64, and text is parsed when the column is
// numeric, boolean or temporal. TypeUnknown infers the type from raw. A nil
// raw value is NULL whatever the declared type.
func NewValue(typ Type, raw any) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	if typ == TypeUnknown || typ == TypeNull {
		return infer(raw), nil
	}

	var (
		v   any
		err error
	)
	switch typ {
	case TypeInt:
		v, err = toInt(raw)
	case TypeFloat:
		v, err = toFloat(raw)
	case TypeString:
		v, err = toString(raw)
	case TypeBytes:
		v, err = toBytes(raw)
	case TypeBool:
		v, err = toBool(raw)
	case TypeTime:
		v, err = toTime(raw)
	default:
		err = fmt.Errorf("unsupported type %v", typ)
	}
	if err != nil {
		return Value{}, fmt.Errorf("result: cannot convert %T to %v: %w", raw, typ, err)
	}
	return Value{typ: typ, raw: v}, nil
}

func infer(raw any) Value {
	switch raw.(type) {
	case bool:
		return Value{typ: TypeBool, raw: raw}
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		v, _ := toInt(raw)
		return Value{typ: TypeInt, raw: v}
	case float32, float64:
		v, _ := toFloat(raw)
		return Value{typ: TypeFloat, raw: v}
	case string:
		return Value{typ: TypeString, raw: raw}
	case []byte:
		v, _ := toBytes(raw)
		return Value{typ: TypeBytes, raw: v}
	case time.Time:
		return Value{typ: TypeTime, raw: raw}
	}
	return Value{typ: TypeUnknown, raw: raw}
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not integral", v)
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	}
	return 0, fmt.Errorf("unexpected %T", raw)
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	}
	i, err := toInt(raw)
	return float64(i), err
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case int64, float64, bool:
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("unexpected %T", raw)
}

func toBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("unexpected %T", raw)
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	case []byte:
		return strconv.ParseBool(string(v))
	}
	i, err := toInt(raw)
	return i != 0, err
}

func toTime(raw any) (time.Time, error) {
	var s string
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected %T", raw)
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Type returns the value's type; TypeNull for NULL.
func (v Value) Type() Type {
	if v.raw == nil {
		return TypeNull
	}
	return v.typ
}

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool {
	return v.raw == nil
}

// Raw returns the normalized value, or nil for NULL.
func (v Value) Raw() any {
	return v.raw
}

// Int returns the value of an integer column. The second result is false
// for NULL and for every other type.
func (v Value) Int() (int64, bool) {
	i, ok := v.raw.(int64)
	return i, ok && v.typ == TypeInt
}

// Float returns float columns, and integer columns widened to float64.
func (v Value) Float() (float64, bool) {
	switch x := v.raw.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), v.typ == TypeInt
	}
	return 0, false
}

// Text returns the value of a string column.
func (v Value) Text() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// Bytes returns the value of a bytes column. The slice is owned by the
// value and must not be modified.
func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.raw.([]byte)
	return b, ok
}

// Bool returns the value of a boolean column.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Time returns the value of a time column.
func (v Value) Time() (time.Time, bool) {
	t, ok := v.raw.(time.Time)
	return t, ok
}

// Equal reports whether both values have the same type and content.
func (v Value) Equal(other Value) bool {
	if v.Type() != other.Type() {
		return false
	}
	switch a := v.raw.(type) {
	case nil:
		return true
	case []byte:
		b, _ := other.raw.([]byte)
		return bytes.Equal(a, b)
	case time.Time:
		b, _ := other.raw.(time.Time)
		return a.Equal(b)
	}
	return reflect.DeepEqual(v.raw, other.raw)
}

func (v Value) String() string {
	switch x := v.raw.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("%x", x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v.raw)
}
