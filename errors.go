// errors.go — user-facing error wrapping with caret snippets.
//
// WrapErrorWithSource turns the engine's structured errors (*LexError,
// *ParseError, *RuntimeError) into readable snippets with a caret pointing
// at the offending column:
//
//	PARSE ERROR at 3:12: expected ')' after arguments
//
//	   2 | x = add(1, 2
//	   3 | say x
//	     |     ^
//
// Runtime errors carry statement-granular lines only; their caret points at
// the start of the offending line. Other error kinds pass through unchanged.
package asp

import (
	"fmt"
	"strings"
)

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. Errors the engine does not recognize are
// returned untouched.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name ("in <name>")
// included in the header.
func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		// Lex/parse Col are 0-based; render as 1-based.
		return fmt.Errorf("%s", snippet(src, "LEXICAL ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "PARSE ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *RuntimeError:
		header := fmt.Sprintf("RUNTIME ERROR (%s)", e.Kind)
		return fmt.Errorf("%s", snippet(src, header, srcName, e.Line, 1, e.Msg))
	default:
		return err
	}
}

// snippet builds the header plus up to one line of context on each side,
// with a caret under the 1-based column. Coordinates are clamped so short
// or empty sources never break rendering.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
