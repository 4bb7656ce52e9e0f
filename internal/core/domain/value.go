package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

// Value variants.
const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// String returns the variant name.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a field value: a string, a number, a boolean or null.
// The zero Value is null. Numbers are held as exact decimals so that
// equality and overshoot arithmetic never suffer float rounding.
type Value struct {
	kind ValueKind
	str  string
	num  decimal.Decimal
	b    bool
}

// NullValue returns the null value.
func NullValue() Value {
	return Value{}
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue wraps a decimal number.
func NumberValue(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// IntValue wraps an integer.
func IntValue(n int64) Value {
	return NumberValue(decimal.NewFromInt(n))
}

// FloatValue wraps a float. NaN and infinities are not representable and
// yield null.
func FloatValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NullValue()
	}
	return NumberValue(decimal.NewFromFloat(f))
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ValueOf converts a decoded scalar (from JSON, YAML or Go code) into a Value.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return v, nil
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case int32:
		return IntValue(int64(v)), nil
	case int64:
		return IntValue(v), nil
	case uint:
		return NumberValue(decimal.NewFromUint64(uint64(v))), nil
	case uint64:
		return NumberValue(decimal.NewFromUint64(v)), nil
	case float32:
		return FloatValue(float64(v)), nil
	case float64:
		return FloatValue(v), nil
	case decimal.Decimal:
		return NumberValue(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return NullValue(), fmt.Errorf("number %q: %w", v, ErrInvalidArgument)
		}
		return NumberValue(d), nil
	default:
		return NullValue(), fmt.Errorf("unsupported value type %T: %w", x, ErrInvalidArgument)
	}
}

// Kind returns the variant held.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the string held, if any.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the number held, if any.
func (v Value) AsNumber() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean held, if any.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Equal compares two values variant by variant. Values of different
// variants are never equal; two nulls are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num.Equal(o.num)
	case KindBool:
		return v.b == o.b
	default:
		return false
	}
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// Interface returns the value as a plain Go scalar. Integers that fit are
// returned as int64, other numbers as float64 when exact, otherwise as
// their decimal string.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.num.IsInteger() && v.num.Cmp(minInt64) >= 0 && v.num.Cmp(maxInt64) <= 0 {
			return v.num.IntPart()
		}
		f, exact := v.num.Float64()
		if exact {
			return f
		}
		return v.num.String()
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// String renders the value for humans.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}

// MarshalJSON encodes numbers as bare JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value: %w", ErrInvalidArgument)
	}
	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return fmt.Errorf("malformed value %q: %w", data, ErrInvalidArgument)
		}
		*v = NullValue()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("malformed string value: %w", ErrInvalidArgument)
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("malformed boolean value: %w", ErrInvalidArgument)
		}
		*v = BoolValue(b)
	case '{', '[':
		return fmt.Errorf("value must be a scalar: %w", ErrInvalidArgument)
	default:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return fmt.Errorf("malformed number %q: %w", data, ErrInvalidArgument)
		}
		*v = NumberValue(d)
	}
	return nil
}
