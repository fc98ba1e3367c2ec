package loadplan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueType enumerates the closed set of attribute value types a load plan
// may declare.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeList    ValueType = "list"
)

// Valid reports whether t names a declared value type.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeList:
		return true
	}
	return false
}

// Value is a typed attribute value produced by applying a load plan.
type Value struct {
	Type ValueType
	Str  string
	Num  float64
	Bool bool
	List []string
}

// Typed value constructors
func StringValue(s string) Value {
	return Value{Type: TypeString, Str: s}
}

func NumberValue(f float64) Value {
	return Value{Type: TypeNumber, Num: f}
}

func BoolValue(b bool) Value {
	return Value{Type: TypeBoolean, Bool: b}
}

func ListValue(items []string) Value {
	return Value{Type: TypeList, List: items}
}

// IsEmpty reports whether v carries no usable content. Empty values lose to
// non-empty ones during node attribute merging.
func (v Value) IsEmpty() bool {
	switch v.Type {
	case TypeString:
		return v.Str == ""
	case TypeList:
		return len(v.List) == 0
	case "":
		return true
	}
	return false
}

// Equal reports whether two values have the same type and content.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeString:
		return v.Str == other.Str
	case TypeNumber:
		return v.Num == other.Num
	case TypeBoolean:
		return v.Bool == other.Bool
	case TypeList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != other.List[i] {
				return false
			}
		}
		return true
	}
	return true
}

// String renders the value for logs and reports.
func (v Value) String() string {
	switch v.Type {
	case TypeString:
		return v.Str
	case TypeNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeList:
		return strings.Join(v.List, ";")
	}
	return ""
}

// MarshalJSON emits the bare value so documents serialize the way the
// network repository expects.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case TypeString:
		return json.Marshal(v.Str)
	case TypeNumber:
		return json.Marshal(v.Num)
	case TypeBoolean:
		return json.Marshal(v.Bool)
	case TypeList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	}
	return nil, fmt.Errorf("cannot marshal value of unknown type %q", v.Type)
}

// booleanTokens is the fixed token set accepted for boolean coercion.
var booleanTokens = map[string]bool{
	"true":  true,
	"TRUE":  true,
	"True":  true,
	"1":     true,
	"false": false,
	"FALSE": false,
	"False": false,
	"0":     false,
}

// coerce converts a raw column value to a Value of the declared type. The
// raw value must be non-empty; callers handle empties via defaults.
func coerce(raw string, typ ValueType, delimiter string) (Value, error) {
	switch typ {
	case TypeString:
		return StringValue(raw), nil
	case TypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not numeric", raw)
		}
		return NumberValue(f), nil
	case TypeBoolean:
		b, ok := booleanTokens[raw]
		if !ok {
			return Value{}, fmt.Errorf("%q is not a recognized boolean token", raw)
		}
		return BoolValue(b), nil
	case TypeList:
		if delimiter == "" {
			delimiter = ";"
		}
		parts := strings.Split(raw, delimiter)
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return ListValue(items), nil
	}
	return Value{}, fmt.Errorf("unknown value type %q", typ)
}
