package result

import (
	"fmt"
	"time"
)

// Convert returns v as a T. It accepts the Go types a Value can hold plus
// int and float32, converting between numeric and text forms the way
// NewValue does. NULL converts to the zero T only when T is any.
func Convert[T any](v Value) (T, error) {
	var out T
	if direct, ok := v.raw.(T); ok {
		return direct, nil
	}
	if p, ok := any(&out).(*Value); ok {
		*p = v
		return out, nil
	}
	if v.IsNull() {
		if _, ok := any(&out).(*any); ok {
			return out, nil
		}
		return out, fmt.Errorf("result: cannot convert NULL to %T", out)
	}

	var err error
	switch p := any(&out).(type) {
	case *any:
		*p = v.raw
	case *int64:
		*p, err = toInt(v.raw)
	case *int:
		var i int64
		i, err = toInt(v.raw)
		*p = int(i)
	case *float64:
		*p, err = toFloat(v.raw)
	case *float32:
		var f float64
		f, err = toFloat(v.raw)
		*p = float32(f)
	case *string:
		*p, err = toString(v.raw)
	case *[]byte:
		*p, err = toBytes(v.raw)
	case *bool:
		*p, err = toBool(v.raw)
	case *time.Time:
		*p, err = toTime(v.raw)
	default:
		err = fmt.Errorf("unsupported target")
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("result: cannot convert %v value to %T: %w", v.Type(), out, err)
	}
	return out, nil
}
