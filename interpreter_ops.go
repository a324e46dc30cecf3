// interpreter_ops.go — PRIVATE: operator and value semantics.
//
// Dynamic typing means every operator commits to an explicit tag check at
// evaluation time. The rules:
//
//   - "+" adds numbers or concatenates strings; "-", "*", "/" are numeric
//     only. Division by a zero divisor is a hard error (never Inf/NaN).
//   - "==" / "!=" compare any tags; cross-tag operands are simply unequal.
//     Arrays compare element-wise (same length required).
//   - Ordering ("<", "<=", ">", ">=") is defined for number/number and
//     string/string pairs only; anything else is a type error.
//   - Truthiness: Bool directly; Num iff nonzero; Str iff non-empty; Array
//     iff non-empty; functions truthy; Nil falsy.
//   - Indexing requires an integral index in [0, len); negative indices are
//     out of range (no wraparound).
package asp

import "math"

func tagName(t ValueTag) string {
	switch t {
	case VTNil:
		return "Nil"
	case VTBool:
		return "Boolean"
	case VTNum:
		return "Number"
	case VTStr:
		return "String"
	case VTArray:
		return "Array"
	case VTFun:
		return "Function"
	default:
		return "unknown"
	}
}

func truthy(v Value) bool {
	switch v.Tag {
	case VTNil:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTNum:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTArray:
		return len(v.Data.(*ArrayObject).Elems) > 0
	default:
		return true
	}
}

// valuesEqual implements "==": numeric / content / element-wise equality,
// cross-tag operands unequal. Functions compare by identity.
func valuesEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNil:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTNum:
		return a.Data.(float64) == b.Data.(float64)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTArray:
		xs, ys := a.Data.(*ArrayObject).Elems, b.Data.(*ArrayObject).Elems
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !valuesEqual(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTFun:
		return a.Data.(*Fun) == b.Data.(*Fun)
	default:
		return false
	}
}

func (ip *Interpreter) binop(op string, l, r Value) Value {
	switch op {
	case "==":
		return Bool(valuesEqual(l, r))
	case "!=":
		return Bool(!valuesEqual(l, r))
	case "<", "<=", ">", ">=":
		return ip.compare(op, l, r)
	case "+":
		if l.Tag == VTStr && r.Tag == VTStr {
			return Str(l.Data.(string) + r.Data.(string))
		}
		return Num(ip.numOperands(op, l, r, func(a, b float64) float64 { return a + b }))
	case "-":
		return Num(ip.numOperands(op, l, r, func(a, b float64) float64 { return a - b }))
	case "*":
		return Num(ip.numOperands(op, l, r, func(a, b float64) float64 { return a * b }))
	case "/":
		if r.Tag == VTNum && r.Data.(float64) == 0 {
			ip.failK(ErrDivision, "division by zero")
		}
		return Num(ip.numOperands(op, l, r, func(a, b float64) float64 { return a / b }))
	}
	ip.failK(ErrRuntime, "unknown operator: %s", op)
	return Nil
}

func (ip *Interpreter) numOperands(op string, l, r Value, f func(a, b float64) float64) float64 {
	if l.Tag != VTNum || r.Tag != VTNum {
		ip.failK(ErrType, "operator %q expects numbers, got %s and %s", op, tagName(l.Tag), tagName(r.Tag))
	}
	return f(l.Data.(float64), r.Data.(float64))
}

// compare evaluates each ordering operator directly rather than deriving it
// from "<", so NaN operands compare false under every operator (IEEE-754).
func (ip *Interpreter) compare(op string, l, r Value) Value {
	switch {
	case l.Tag == VTNum && r.Tag == VTNum:
		a, b := l.Data.(float64), r.Data.(float64)
		switch op {
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		default: // ">="
			return Bool(a >= b)
		}
	case l.Tag == VTStr && r.Tag == VTStr:
		a, b := l.Data.(string), r.Data.(string)
		switch op {
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		default:
			return Bool(a >= b)
		}
	}
	ip.failK(ErrType, "cannot order %s and %s", tagName(l.Tag), tagName(r.Tag))
	return Nil
}

func (ip *Interpreter) unop(op string, v Value) Value {
	switch op {
	case "-":
		if v.Tag != VTNum {
			ip.failK(ErrType, "unary '-' expects a number, got %s", tagName(v.Tag))
		}
		return Num(-v.Data.(float64))
	case "not":
		return Bool(!truthy(v))
	}
	ip.failK(ErrRuntime, "unknown unary operator: %s", op)
	return Nil
}

// checkIndex validates the array/index pair and returns the backing store
// and the integral index.
func (ip *Interpreter) checkIndex(arr, idx Value) (*ArrayObject, int) {
	if arr.Tag != VTArray {
		ip.failK(ErrType, "cannot index a %s", tagName(arr.Tag))
	}
	if idx.Tag != VTNum {
		ip.failK(ErrIndex, "array index must be a number, got %s", tagName(idx.Tag))
	}
	f := idx.Data.(float64)
	if math.Trunc(f) != f || math.IsInf(f, 0) || math.IsNaN(f) {
		ip.failK(ErrIndex, "array index must be an integer, got %v", f)
	}
	obj := arr.Data.(*ArrayObject)
	i := int(f)
	if i < 0 || i >= len(obj.Elems) {
		ip.failK(ErrIndex, "array index %d out of range (length %d)", i, len(obj.Elems))
	}
	return obj, i
}

func (ip *Interpreter) index(arr, idx Value) Value {
	obj, i := ip.checkIndex(arr, idx)
	return obj.Elems[i]
}

func (ip *Interpreter) setIndex(arr, idx, v Value) {
	obj, i := ip.checkIndex(arr, idx)
	obj.Elems[i] = v
}
