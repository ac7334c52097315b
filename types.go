package sqlite

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/anyproto/go-sqlite/internal/driver"
)

// Binder converts a domain value into the wire Value used for parameter
// binding. Built-in scalars never go through it; user types implement it to
// become bindable.
type Binder interface {
	BindValue() (Value, error)
}

// Scanner converts a wire Value into a domain value during row extraction.
// The counterpart of Binder.
type Scanner interface {
	ScanValue(v Value) error
}

// Named pairs a parameter marker (prefix character included, e.g. ":name",
// "@name" or "$name") with its value for named binding.
type Named struct {
	Name  string
	Value any
}

// toValue reduces an argument to the wire representation. Time values are
// stored as RFC 3339 text, the format the engine's date functions accept.
func toValue(arg any) (Value, error) {
	switch x := arg.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case int:
		return IntegerValue(int64(x)), nil
	case int8:
		return IntegerValue(int64(x)), nil
	case int16:
		return IntegerValue(int64(x)), nil
	case int32:
		return IntegerValue(int64(x)), nil
	case int64:
		return IntegerValue(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return IntegerValue(int64(x)), nil
	case uint16:
		return IntegerValue(int64(x)), nil
	case uint32:
		return IntegerValue(int64(x)), nil
	case uint64:
		return uintValue(x)
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case bool:
		if x {
			return IntegerValue(1), nil
		}
		return IntegerValue(0), nil
	case string:
		return TextValue(x), nil
	case []byte:
		if x == nil {
			return Null(), nil
		}
		return BlobValue(x), nil
	case time.Time:
		return TextValue(x.Format(time.RFC3339Nano)), nil
	case Binder:
		v, err := x.BindValue()
		if err != nil {
			return Value{}, &ConversionError{Err: err}
		}
		return v, nil
	default:
		return Value{}, &ConversionError{Err: fmt.Errorf("unsupported bind type %T", arg)}
	}
}

func uintValue(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return Value{}, &ConversionError{Err: fmt.Errorf("uint value %d overflows the integer storage class", v)}
	}
	return IntegerValue(int64(v)), nil
}

// bindValue writes one wire value into parameter idx of the raw statement.
// Text destined for the native layer must be NUL-free because it crosses the
// boundary NUL-terminated.
func bindValue(raw *driver.Stmt, idx int, v Value) error {
	switch v.Type() {
	case TypeInteger:
		return raw.BindInt64(idx, v.Int64())
	case TypeFloat:
		return raw.BindDouble(idx, v.Float())
	case TypeText:
		if strings.IndexByte(v.Text(), 0) >= 0 {
			return ErrNulByte
		}
		return raw.BindText(idx, v.Text())
	case TypeBlob:
		return raw.BindBlob(idx, v.Blob())
	default:
		return raw.BindNull(idx)
	}
}

// fromValue converts a wire value into the destination, following native
// coercion rules: integers widen to float, nothing else converts across
// tags. dest must be a pointer; a pointer-to-pointer maps Null to nil and
// allocates on any other tag.
func fromValue(v Value, index int, dest any) error {
	switch d := dest.(type) {
	case *int64:
		if v.Type() != TypeInteger {
			return &ColumnTypeError{Index: index, Type: v.Type()}
		}
		*d = v.Int64()
	case *int:
		if v.Type() != TypeInteger {
			return &ColumnTypeError{Index: index, Type: v.Type()}
		}
		*d = int(v.Int64())
	case *bool:
		if v.Type() != TypeInteger {
			return &ColumnTypeError{Index: index, Type: v.Type()}
		}
		*d = v.Int64() != 0
	case *float64:
		if v.Type() != TypeInteger && v.Type() != TypeFloat {
			return &ColumnTypeError{Index: index, Type: v.Type()}
		}
		*d = v.Float()
	case *string:
		if v.Type() != TypeText {
			return &ColumnTypeError{Index: index, Type: v.Type()}
		}
		*d = v.Text()
	case *[]byte:
		if v.Type() != TypeBlob {
			return &ColumnTypeError{Index: index, Type: v.Type()}
		}
		*d = v.Blob()
	case *time.Time:
		if v.Type() != TypeText {
			return &ColumnTypeError{Index: index, Type: v.Type()}
		}
		t, err := time.Parse(time.RFC3339Nano, v.Text())
		if err != nil {
			return &ConversionError{Err: err}
		}
		*d = t
	case *Value:
		*d = v
	case **int64:
		return fromNullable(v, index, d)
	case **int:
		return fromNullable(v, index, d)
	case **bool:
		return fromNullable(v, index, d)
	case **float64:
		return fromNullable(v, index, d)
	case **string:
		return fromNullable(v, index, d)
	case **[]byte:
		return fromNullable(v, index, d)
	case **time.Time:
		return fromNullable(v, index, d)
	case Scanner:
		if err := d.ScanValue(v); err != nil {
			return &ConversionError{Err: err}
		}
	default:
		return &ConversionError{Err: fmt.Errorf("unsupported scan type %T", dest)}
	}
	return nil
}

func fromNullable[T any](v Value, index int, d **T) error {
	if v.IsNull() {
		*d = nil
		return nil
	}
	var out T
	if err := fromValue(v, index, &out); err != nil {
		return err
	}
	*d = &out
	return nil
}
