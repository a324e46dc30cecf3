// printer.go — textual rendering of runtime values and AST nodes.
//
// FormatValue implements the observable `say` rendering: Number without a
// trailing ".0" when integral, String unquoted, Boolean as True/False,
// Array as bracketed comma-joined renderings of its elements, Nil as "Nil".
// FormatSExpr renders an AST node in a compact Lisp style and exists for
// tests and diagnostics.
package asp

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders v the way the `say` statement prints it.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNil:
		return "Nil"
	case VTBool:
		if v.Data.(bool) {
			return "True"
		}
		return "False"
	case VTNum:
		return formatNumber(v.Data.(float64))
	case VTStr:
		return v.Data.(string)
	case VTArray:
		elems := v.Data.(*ArrayObject).Elems
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTFun:
		return "<function " + v.Data.(*Fun).Name + ">"
	default:
		return "<unknown>"
	}
}

// formatNumber drops trailing zeros: integral values render without a
// decimal point ("10", not "10.0"); others use the shortest representation
// that round-trips.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatSExpr renders an AST node as a parenthesized list, e.g.
// (assign 1 (id x) (num 10)).
func FormatSExpr(node any) string {
	switch n := node.(type) {
	case S:
		parts := make([]string, len(n))
		for i, p := range n {
			parts[i] = FormatSExpr(p)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case []string:
		return "[" + strings.Join(n, " ") + "]"
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case bool:
		if n {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprintf("%v", n)
	}
}
