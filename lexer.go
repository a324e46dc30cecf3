// lexer.go — indentation-aware scanner for asx source.
//
// The scanner turns raw source text into a flat token stream. Because asx
// blocks are delimited by indentation (a ':' header followed by a more-deeply
// indented body), the lexer measures leading whitespace on every line and
// emits synthetic INDENT/DEDENT tokens plus a NEWLINE at the end of every
// non-blank line. The parser never looks at whitespace itself.
//
// Comment forms:
//   - "--"  starts a line comment extending to end of line.
//   - "/--" at the start of a line opens a multi-line comment closed by the
//     first "--/" (non-nesting); everything through the closing line is
//     discarded.
//
// Strings are double-quoted, single-line, with escapes \" \\ \n \t \r.
// Numeric literals (integer or decimal form) all become NUMBER (float64).
package asp

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	NEWLINE
	INDENT
	DEDENT

	// Punctuation
	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"
	COLON   // ":"
	COMMA   // ","
	HASH    // "#" (function headers, bridge ids)

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ

	// Literals & identifiers
	ID
	STRING
	NUMBER
	BOOLEAN

	// Keywords
	IF
	ELIF
	ELSE
	WHILE
	RETURN
	NOT
	SAY
	WAIT
	DELETE
	MIXIN // "@mixin"
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int         // 1-based
	Col     int         // 0-based column within line
}

var keywords = map[string]TokenType{
	"if":     IF,
	"elif":   ELIF,
	"else":   ELSE,
	"while":  WHILE,
	"return": RETURN,
	"not":    NOT,
	"say":    SAY,
	"wait":   WAIT,
	"delete": DELETE,
	"True":   BOOLEAN,
	"False":  BOOLEAN,
}

// LexError reports a malformed token or an unterminated literal/comment.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Lexer scans an asx source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	indents       []int // stack of open indentation widths; indents[0] == 0
	atLineStart   bool
	lineHasTokens bool

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:         src,
		line:        1,
		col:         0,
		indents:     []int{0},
		atLineStart: true,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) {
	lex := l.src[l.start:l.cur]
	l.tokens = append(l.tokens, Token{
		Type:    tt,
		Lexeme:  lex,
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	})
	l.start = l.cur
	if tt != NEWLINE && tt != INDENT && tt != DEDENT && tt != EOF {
		l.lineHasTokens = true
	}
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Msg: msg}
}

func (l *Lexer) errAt(line, col int, msg string) error {
	return &LexError{Line: line, Col: col, Msg: msg}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// identStart reports whether the rune at cur begins an identifier.
// ASCII letters and '_' are the common case; any Unicode letter qualifies.
func (l *Lexer) identStart() bool {
	b, ok := l.peek()
	if !ok {
		return false
	}
	if b < utf8.RuneSelf {
		return isAlpha(b)
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
	return unicode.IsLetter(r)
}

// ----- line structure -----

// beginLine consumes leading whitespace, blank lines and comment-only lines,
// then reconciles the indentation width against the indent stack, emitting
// INDENT/DEDENT tokens as needed. On EOF it leaves the cursor at the end.
func (l *Lexer) beginLine() error {
	for {
		width := 0
		for {
			b, ok := l.peek()
			if !ok || (b != ' ' && b != '\t') {
				break
			}
			width++
			l.advance()
		}
		b, ok := l.peek()
		if !ok {
			return nil // EOF handled by caller
		}
		switch {
		case b == '\n' || b == '\r':
			l.advance() // blank line
			continue
		case b == '-' && l.peekByteAfter(1) == '-':
			l.ignoreUntilNewline()
			continue
		case b == '/' && l.peekByteAfter(1) == '-' && l.peekByteAfter(2) == '-':
			if err := l.skipMultilineComment(); err != nil {
				return err
			}
			continue
		}

		top := l.indents[len(l.indents)-1]
		if width > top {
			l.indents = append(l.indents, width)
			l.start = l.cur
			l.tokStartLine, l.tokStartCol = l.line, l.col
			l.addToken(INDENT, nil)
		} else {
			for width < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.start = l.cur
				l.tokStartLine, l.tokStartCol = l.line, l.col
				l.addToken(DEDENT, nil)
			}
			if width != l.indents[len(l.indents)-1] {
				return l.err("inconsistent indentation")
			}
		}
		l.atLineStart = false
		l.start = l.cur
		return nil
	}
}

func (l *Lexer) peekByteAfter(n int) byte {
	b, ok := l.peekN(n)
	if !ok {
		return 0
	}
	return b
}

func (l *Lexer) ignoreUntilNewline() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

// skipMultilineComment consumes "/--" up to and including the first "--/",
// then discards the remainder of the closing line.
func (l *Lexer) skipMultilineComment() error {
	startLine, startCol := l.line, l.col
	l.advance() // '/'
	l.advance() // '-'
	l.advance() // '-'
	for {
		b, ok := l.peek()
		if !ok {
			return l.errAt(startLine, startCol, "multi-line comment was not terminated")
		}
		if b == '-' && l.peekByteAfter(1) == '-' && l.peekByteAfter(2) == '/' {
			l.advance()
			l.advance()
			l.advance()
			l.ignoreUntilNewline()
			return nil
		}
		l.advance()
	}
}

// ----- scanners -----

func (l *Lexer) scanString() (string, error) {
	startLine, startCol := l.line, l.col
	l.advance() // opening quote

	var out []rune
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return "", l.errAt(startLine, startCol, "string was not terminated")
		}
		l.advance()
		if b == '"' {
			return string(out), nil
		}
		if b == '\\' {
			esc, ok := l.peek()
			if !ok {
				return "", l.errAt(startLine, startCol, "string was not terminated")
			}
			l.advance()
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		if b < utf8.RuneSelf {
			out = append(out, rune(b))
			continue
		}
		// non-ASCII: back up one byte and decode the full rune
		l.cur--
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if r == utf8.RuneError && size == 1 {
			return "", l.err("invalid UTF-8 in source")
		}
		out = append(out, r)
		l.cur += size
		l.col += size - 1
	}
}

// scanNumber parses integer or decimal forms; all numbers are float64.
func (l *Lexer) scanNumber() (float64, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance() // '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	lex := l.src[l.start:l.cur]
	f, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return 0, l.err("invalid number literal")
	}
	return f, nil
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok {
			break
		}
		if b < utf8.RuneSelf {
			if !isAlphaNum(b) {
				break
			}
			l.advance()
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.cur += size
		l.col += size
	}
	return l.src[l.start:l.cur]
}

// ----- main scanner -----

func (l *Lexer) scanToken() (done bool, err error) {
	for {
		if l.atLineStart {
			if err := l.beginLine(); err != nil {
				return false, err
			}
		}

		// skip intra-line whitespace
		for {
			b, ok := l.peek()
			if !ok || (b != ' ' && b != '\t' && b != '\r') {
				break
			}
			l.advance()
		}
		l.start = l.cur
		l.tokStartLine = l.line
		l.tokStartCol = l.col

		if l.isAtEnd() {
			if l.lineHasTokens {
				l.addToken(NEWLINE, nil)
				l.lineHasTokens = false
			}
			for len(l.indents) > 1 {
				l.indents = l.indents[:len(l.indents)-1]
				l.addToken(DEDENT, nil)
			}
			l.addToken(EOF, nil)
			return true, nil
		}

		ch, _ := l.advance()

		switch ch {
		case '\n':
			if l.lineHasTokens {
				l.addToken(NEWLINE, nil)
				l.lineHasTokens = false
			}
			l.atLineStart = true
			continue
		case '(':
			l.addToken(LROUND, "(")
			return false, nil
		case ')':
			l.addToken(RROUND, ")")
			return false, nil
		case '[':
			l.addToken(LSQUARE, "[")
			return false, nil
		case ']':
			l.addToken(RSQUARE, "]")
			return false, nil
		case ':':
			l.addToken(COLON, ":")
			return false, nil
		case ',':
			l.addToken(COMMA, ",")
			return false, nil
		case '#':
			l.addToken(HASH, "#")
			return false, nil
		case '+':
			l.addToken(PLUS, "+")
			return false, nil
		case '*':
			l.addToken(MULT, "*")
			return false, nil
		case '/':
			l.addToken(DIV, "/")
			return false, nil
		case '-':
			if b, ok := l.peek(); ok && b == '-' {
				l.ignoreUntilNewline()
				continue
			}
			l.addToken(MINUS, "-")
			return false, nil
		case '=':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				l.addToken(EQ, "==")
				return false, nil
			}
			l.addToken(ASSIGN, "=")
			return false, nil
		case '!':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				l.addToken(NEQ, "!=")
				return false, nil
			}
			return false, l.err("unexpected character: '!'")
		case '<':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				l.addToken(LESS_EQ, "<=")
				return false, nil
			}
			l.addToken(LESS, "<")
			return false, nil
		case '>':
			if b, ok := l.peek(); ok && b == '=' {
				l.advance()
				l.addToken(GREATER_EQ, ">=")
				return false, nil
			}
			l.addToken(GREATER, ">")
			return false, nil
		case '@':
			l.cur = l.start + 1 // keep '@' in the lexeme, scan the word after it
			word := l.scanIdentifierAfterAt()
			if word != "mixin" {
				return false, l.errAt(l.tokStartLine, l.tokStartCol, fmt.Sprintf("unknown annotation: @%s", word))
			}
			l.addToken(MIXIN, "@mixin")
			return false, nil
		case '"':
			l.cur = l.start
			l.col = l.tokStartCol
			text, err := l.scanString()
			if err != nil {
				return false, err
			}
			l.addToken(STRING, text)
			return false, nil
		}

		if isDigit(ch) {
			l.cur = l.start
			l.col = l.tokStartCol
			f, err := l.scanNumber()
			if err != nil {
				return false, err
			}
			l.addToken(NUMBER, f)
			return false, nil
		}
		if ch == '.' {
			if b, ok := l.peek(); ok && isDigit(b) {
				l.cur = l.start
				l.col = l.tokStartCol
				f, err := l.scanNumber()
				if err != nil {
					return false, err
				}
				l.addToken(NUMBER, f)
				return false, nil
			}
			return false, l.err("unexpected character: '.'")
		}

		l.cur = l.start
		l.col = l.tokStartCol
		if l.identStart() {
			lex := l.scanIdentifier()
			if tt, ok := keywords[lex]; ok {
				if tt == BOOLEAN {
					l.addToken(BOOLEAN, lex == "True")
					return false, nil
				}
				l.addToken(tt, lex)
				return false, nil
			}
			l.addToken(ID, lex)
			return false, nil
		}

		l.advance()
		return false, l.err(fmt.Sprintf("unexpected character: %q", ch))
	}
}

func (l *Lexer) scanIdentifierAfterAt() string {
	wordStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[wordStart:l.cur]
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		done, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if done {
			return l.tokens, nil
		}
	}
}
