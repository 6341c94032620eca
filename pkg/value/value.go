package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrType           = errors.New("unsupported operand types")
	ErrDivisionByZero = errors.New("division by zero")
	ErrCoercion       = errors.New("invalid literal")
)

type Kind uint8

const (
	Int Kind = iota
	Float
	Str
	Bool
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case Bool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a dynamically typed script value. The zero Value is the integer 0.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
}

func FromInt(i int64) Value     { return Value{Kind: Int, I: i} }
func FromFloat(f float64) Value { return Value{Kind: Float, F: f} }
func FromStr(s string) Value    { return Value{Kind: Str, S: s} }

func FromBool(b bool) Value {
	if b {
		return Value{Kind: Bool, I: 1}
	}
	return Value{Kind: Bool}
}

// String formats v the way the scripting runtime prints it.
func (v Value) String() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Float:
		return FormatFloat(v.F)
	case Bool:
		if v.I != 0 {
			return "True"
		}
		return "False"
	}
	return v.S
}

func (v Value) numeric() bool { return v.Kind != Str }

func (v Value) float() float64 {
	if v.Kind == Float {
		return v.F
	}
	return float64(v.I)
}

func (v Value) Truthy() bool {
	switch v.Kind {
	case Float:
		return v.F != 0
	case Str:
		return v.S != ""
	}
	return v.I != 0
}

// FormatFloat prints shortest round-trip digits, switching to exponent form
// below 1e-4 and from 1e16 upwards. Integral values keep a trailing ".0".
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ToInt mirrors int(): text is parsed after trimming surrounding space,
// floats truncate toward zero.
func (v Value) ToInt() (int64, error) {
	switch v.Kind {
	case Int, Bool:
		return v.I, nil
	case Float:
		if math.IsNaN(v.F) || math.IsInf(v.F, 0) {
			return 0, fmt.Errorf("%w for int(): %s", ErrCoercion, FormatFloat(v.F))
		}
		return int64(v.F), nil
	}
	s := strings.ReplaceAll(strings.TrimSpace(v.S), "_", "")
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w for int() with base 10: %q", ErrCoercion, v.S)
	}
	return i, nil
}

// ToFloat mirrors float().
func (v Value) ToFloat() (float64, error) {
	if v.Kind != Str {
		return v.float(), nil
	}
	s := strings.TrimSpace(v.S)
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "inf", "infinity", "nan":
	default:
		if strings.ContainsAny(s, "xXpP_") {
			return 0, fmt.Errorf("%w for float(): %q", ErrCoercion, v.S)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w for float(): %q", ErrCoercion, v.S)
	}
	return f, nil
}

func (v Value) ToStr() string { return v.String() }

// Coerce converts v to the kind named by a tape type tag.
func Coerce(v Value, tag string) (Value, error) {
	switch tag {
	case "int":
		i, err := v.ToInt()
		if err != nil {
			return Value{}, err
		}
		return FromInt(i), nil
	case "float":
		f, err := v.ToFloat()
		if err != nil {
			return Value{}, err
		}
		return FromFloat(f), nil
	case "str":
		return FromStr(v.ToStr()), nil
	}
	return Value{}, fmt.Errorf("%w: unknown type tag %q", ErrCoercion, tag)
}

func typeError(op string, a, b Value) error {
	return fmt.Errorf("%w for %s: '%s' and '%s'", ErrType, op, a.Kind, b.Kind)
}
