package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// ValueKind identifies which scalar a Value holds.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindTime
)

// String returns the lower-case kind name used in logs.
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a single spreadsheet cell. The zero value is null.
type Value struct {
	kind ValueKind
	text string
	num  float64
	b    bool
	t    time.Time
}

// Null returns the empty cell value.
func Null() Value { return Value{} }

// Text returns a text cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time returns a date/time cell.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Kind reports the kind of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the cell is empty.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsText returns the text payload and whether the value is text.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Equal reports exact equality: same kind and same payload.
// Null is never equal to anything, including another null.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// Interface returns the Go value handed to spreadsheet writers; nil for null.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return "<null>"
	}
}

// MarshalJSON encodes the value as its natural JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// ValueOf converts a decoded document scalar into a Value.
// It returns false for composite inputs such as maps and slices.
func ValueOf(x any) (Value, bool) {
	switch t := x.(type) {
	case nil:
		return Null(), true
	case string:
		return Text(t), true
	case bool:
		return Bool(t), true
	case float64:
		return Number(t), true
	case float32:
		return Number(float64(t)), true
	case int:
		return Number(float64(t)), true
	case int64:
		return Number(float64(t)), true
	case uint64:
		return Number(float64(t)), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, false
		}
		return Number(f), true
	case time.Time:
		return Time(t), true
	default:
		return Value{}, false
	}
}
