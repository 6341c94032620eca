package value

import (
	"math"
	"strings"
)

func Add(a, b Value) (Value, error) {
	switch {
	case a.Kind == Str && b.Kind == Str:
		return FromStr(a.S + b.S), nil
	case !a.numeric() || !b.numeric():
		return Value{}, typeError("+", a, b)
	case a.Kind == Float || b.Kind == Float:
		return FromFloat(a.float() + b.float()), nil
	}
	return FromInt(a.I + b.I), nil
}

func Sub(a, b Value) (Value, error) {
	switch {
	case !a.numeric() || !b.numeric():
		return Value{}, typeError("-", a, b)
	case a.Kind == Float || b.Kind == Float:
		return FromFloat(a.float() - b.float()), nil
	}
	return FromInt(a.I - b.I), nil
}

func Mul(a, b Value) (Value, error) {
	switch {
	case a.Kind == Str && b.numeric() && b.Kind != Float:
		return repeat(a.S, b.I), nil
	case b.Kind == Str && a.numeric() && a.Kind != Float:
		return repeat(b.S, a.I), nil
	case !a.numeric() || !b.numeric():
		return Value{}, typeError("*", a, b)
	case a.Kind == Float || b.Kind == Float:
		return FromFloat(a.float() * b.float()), nil
	}
	return FromInt(a.I * b.I), nil
}

func repeat(s string, n int64) Value {
	if n <= 0 {
		return FromStr("")
	}
	return FromStr(strings.Repeat(s, int(n)))
}

// Div is true division: the result is always a float.
func Div(a, b Value) (Value, error) {
	if !a.numeric() || !b.numeric() {
		return Value{}, typeError("/", a, b)
	}
	if b.float() == 0 {
		return Value{}, ErrDivisionByZero
	}
	return FromFloat(a.float() / b.float()), nil
}

func FloorDiv(a, b Value) (Value, error) {
	if !a.numeric() || !b.numeric() {
		return Value{}, typeError("//", a, b)
	}
	if b.float() == 0 {
		return Value{}, ErrDivisionByZero
	}
	if a.Kind == Float || b.Kind == Float {
		return FromFloat(math.Floor(a.float() / b.float())), nil
	}
	q := a.I / b.I
	if (a.I%b.I != 0) && ((a.I < 0) != (b.I < 0)) {
		q--
	}
	return FromInt(q), nil
}

// Mod takes the sign of the divisor.
func Mod(a, b Value) (Value, error) {
	if !a.numeric() || !b.numeric() {
		return Value{}, typeError("%", a, b)
	}
	if b.float() == 0 {
		return Value{}, ErrDivisionByZero
	}
	if a.Kind == Float || b.Kind == Float {
		x, y := a.float(), b.float()
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return FromFloat(r), nil
	}
	r := a.I % b.I
	if r != 0 && (r < 0) != (b.I < 0) {
		r += b.I
	}
	return FromInt(r), nil
}

func Pow(a, b Value) (Value, error) {
	if !a.numeric() || !b.numeric() {
		return Value{}, typeError("**", a, b)
	}
	if a.Kind == Float || b.Kind == Float || b.I < 0 {
		if a.float() == 0 && b.float() < 0 {
			return Value{}, ErrDivisionByZero
		}
		return FromFloat(math.Pow(a.float(), b.float())), nil
	}
	result, base := int64(1), a.I
	for e := b.I; e > 0; e >>= 1 {
		if e&1 == 1 {
			result *= base
		}
		base *= base
	}
	return FromInt(result), nil
}

func Neg(a Value) (Value, error) {
	switch a.Kind {
	case Str:
		return Value{}, ErrType
	case Float:
		return FromFloat(-a.F), nil
	}
	return FromInt(-a.I), nil
}

// Equal never fails: values of unrelated kinds are simply unequal.
func Equal(a, b Value) bool {
	if a.numeric() && b.numeric() {
		if a.Kind == Float || b.Kind == Float {
			return a.float() == b.float()
		}
		return a.I == b.I
	}
	if a.Kind == Str && b.Kind == Str {
		return a.S == b.S
	}
	return false
}

// Less orders numbers numerically and text lexicographically.
func Less(a, b Value) (bool, error) {
	switch {
	case a.Kind == Str && b.Kind == Str:
		return a.S < b.S, nil
	case !a.numeric() || !b.numeric():
		return false, typeError("<", a, b)
	case a.Kind == Float || b.Kind == Float:
		return a.float() < b.float(), nil
	}
	return a.I < b.I, nil
}
