package sqlite

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// JSON binds and scans fastjson documents as TEXT columns. A zero JSON
// binds as NULL; a NULL column scans to a zero JSON.
type JSON struct {
	Value *fastjson.Value
}

// NewJSON parses s and returns it as a bindable JSON value.
func NewJSON(s string) (JSON, error) {
	v, err := fastjson.Parse(s)
	if err != nil {
		return JSON{}, err
	}
	return JSON{Value: v}, nil
}

// BindValue implements Binder.
func (j JSON) BindValue() (Value, error) {
	if j.Value == nil {
		return Null(), nil
	}
	return TextValue(string(j.Value.MarshalTo(nil))), nil
}

// ScanValue implements Scanner.
func (j *JSON) ScanValue(v Value) error {
	if v.IsNull() {
		j.Value = nil
		return nil
	}
	if v.Type() != TypeText {
		return &ConversionError{Err: fmt.Errorf("cannot parse %s column as json", v.Type())}
	}
	parsed, err := fastjson.Parse(v.Text())
	if err != nil {
		return &ConversionError{Err: err}
	}
	j.Value = parsed
	return nil
}

// String renders the document, or "null" for a zero JSON.
func (j JSON) String() string {
	if j.Value == nil {
		return "null"
	}
	return string(j.Value.MarshalTo(nil))
}
