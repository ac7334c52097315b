package sqlite

import (
	"fmt"

	"github.com/anyproto/go-sqlite/internal/driver"
)

// Type is the runtime tag of a Value, matching the native storage classes.
type Type uint8

const (
	TypeNull Type = iota + 1
	TypeInteger
	TypeFloat
	TypeText
	TypeBlob
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeText:
		return "text"
	case TypeBlob:
		return "blob"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Value is the closed wire representation exchanged with the engine: every
// parameter is reduced to one of these before binding and every column is
// read as one of these before conversion.
type Value struct {
	typ Type
	n   int64
	f   float64
	s   string
	b   []byte
}

func Null() Value { return Value{typ: TypeNull} }
func IntegerValue(v int64) Value { return Value{typ: TypeInteger, n: v} }
func FloatValue(v float64) Value { return Value{typ: TypeFloat, f: v} }
func TextValue(v string) Value { return Value{typ: TypeText, s: v} }
func BlobValue(v []byte) Value { return Value{typ: TypeBlob, b: v} }

func (v Value) Type() Type { return v.typ }
func (v Value) IsNull() bool { return v.typ == TypeNull || v.typ == 0 }

// Int64 returns the integer payload; zero unless the tag is integer.
func (v Value) Int64() int64 { return v.n }

// Float returns the floating point payload, coercing an integer payload the
// way the engine does. Zero for any other tag.
func (v Value) Float() float64 {
	if v.typ == TypeInteger {
		return float64(v.n)
	}
	return v.f
}

func (v Value) Text() string { return v.s }
func (v Value) Blob() []byte { return v.b }

func (v Value) String() string {
	switch v.typ {
	case TypeInteger:
		return fmt.Sprintf("%d", v.n)
	case TypeFloat:
		return fmt.Sprintf("%g", v.f)
	case TypeText:
		return v.s
	case TypeBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.b))
	default:
		return "null"
	}
}

func columnValue(raw *driver.Stmt, i int) Value {
	switch raw.ColumnType(i) {
	case driver.ColumnInteger:
		return IntegerValue(raw.ColumnInt64(i))
	case driver.ColumnFloat:
		return FloatValue(raw.ColumnDouble(i))
	case driver.ColumnText:
		return TextValue(raw.ColumnText(i))
	case driver.ColumnBlob:
		return BlobValue(raw.ColumnBlob(i))
	default:
		return Null()
	}
}
