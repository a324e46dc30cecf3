// parser.go — recursive-descent parser producing compact S-expressions.
//
// The parser consumes the indentation-resolved token stream from lexer.go
// (INDENT/DEDENT/NEWLINE already synthesized) and builds a Lisp-style
// S-expression AST: []any whose first element is a string tag.
//
// Statement nodes carry their 1-based source line as the second element,
// mirroring the pax3 code objects of the original asp parser; expression
// nodes carry no position.
//
//	("block", stmt1, stmt2, ...)
//
// Statements:
//
//	("assign", line, target, value)     // target: ("id", name) | ("idx", obj, i)
//	("say",    line, expr)
//	("wait",   line, expr)
//	("return", line, expr)              // expr is ("nil") when absent
//	("mixin",  line, "Lib#fn")
//	("if",     line, ("pair", cond, block)..., elseBlock?)
//	("while",  line, cond, block)
//	("fun",    line, name, []string{params...}, block)
//	("delete", line, name)
//	("expr",   line, e)                 // bare expression statement
//
// Expressions:
//
//	("num", float64) ("str", string) ("bool", bool) ("nil")
//	("id", name)
//	("array", e1, e2, ...)
//	("idx",   obj, indexExpr)
//	("binop", op, lhs, rhs)             // "+","-","*","/","==","!=","<","<=",">",">="
//	("unop",  op, rhs)                  // "-", "not"
//	("call",  callee, arg1, arg2, ...)
//
// Expression parsing uses precedence climbing: comparisons below additive
// below multiplicative below unary, with call/index binding tightest.
package asp

import "fmt"

// S is the S-expression node type shared by the parser and evaluator.
type S = []any

// L builds an S-expression from a tag and parts.
func L(tag string, parts ...any) S { return append([]any{tag}, parts...) }

// ParseError reports an unexpected token or malformed grammar.
// Incomplete is set when the error is an unterminated construct at EOF,
// which lets REPLs prompt for continuation lines instead of failing.
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err is a ParseError caused by an unterminated
// construct at end of input (open block, missing body).
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.Incomplete
}

// Parse scans and parses a complete asx source string into a program block.
func Parse(src string) (S, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	i    int
}

// ────────────────────────── token basics & helpers ──────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	g := p.peek()
	return Token{}, &ParseError{Line: g.Line, Col: g.Col, Msg: msg, Incomplete: g.Type == EOF}
}

func (p *parser) errHere(msg string) error {
	g := p.peek()
	return &ParseError{Line: g.Line, Col: g.Col, Msg: msg, Incomplete: g.Type == EOF}
}

func (p *parser) skipNewlines() {
	for p.peek().Type == NEWLINE {
		p.i++
	}
}

// endStatement consumes the statement terminator. EOF and DEDENT are valid
// terminators as well (the lexer guarantees a NEWLINE before both, but the
// check keeps the parser robust to pre-built token streams).
func (p *parser) endStatement() error {
	if p.match(NEWLINE) {
		return nil
	}
	if p.peek().Type == EOF || p.peek().Type == DEDENT {
		return nil
	}
	return p.errHere(fmt.Sprintf("unexpected token %q after statement", p.peek().Lexeme))
}

// ──────────────────────────────── program ───────────────────────────────────

func (p *parser) program() (S, error) {
	block := L("block")
	p.skipNewlines()
	for !p.atEnd() {
		if p.peek().Type == DEDENT {
			return nil, p.errHere("unexpected dedent")
		}
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		block = append(block, st)
		p.skipNewlines()
	}
	return block, nil
}

// suite parses the ':'-introduced indented body of a block header.
func (p *parser) suite() (S, error) {
	if _, err := p.need(COLON, "expected ':' after block header"); err != nil {
		return nil, err
	}
	if _, err := p.need(NEWLINE, "expected newline after ':'"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.need(INDENT, "expected an indented block"); err != nil {
		return nil, err
	}
	block := L("block")
	p.skipNewlines()
	for p.peek().Type != DEDENT && !p.atEnd() {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		block = append(block, st)
		p.skipNewlines()
	}
	if _, err := p.need(DEDENT, "expected end of block"); err != nil {
		return nil, err
	}
	return block, nil
}

// ─────────────────────────────── statements ─────────────────────────────────

func (p *parser) statement() (S, error) {
	tok := p.peek()
	switch tok.Type {
	case HASH:
		return p.functionDef()
	case IF:
		return p.ifChain()
	case WHILE:
		return p.whileLoop()
	case SAY:
		p.i++
		e, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return L("say", tok.Line, e), nil
	case WAIT:
		p.i++
		e, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return L("wait", tok.Line, e), nil
	case RETURN:
		p.i++
		var e S = L("nil")
		if p.peek().Type != NEWLINE && p.peek().Type != EOF && p.peek().Type != DEDENT {
			var err error
			e, err = p.expression(0)
			if err != nil {
				return nil, err
			}
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return L("return", tok.Line, e), nil
	case DELETE:
		p.i++
		name, err := p.need(ID, "expected a variable name after 'delete'")
		if err != nil {
			return nil, err
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return L("delete", tok.Line, tokText(name)), nil
	case MIXIN:
		return p.mixinCall()
	}

	// assignment or bare expression
	e, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if p.match(ASSIGN) {
		if !isAssignTarget(e) {
			return nil, &ParseError{Line: tok.Line, Col: tok.Col, Msg: "invalid assignment target"}
		}
		v, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return L("assign", tok.Line, e, v), nil
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return L("expr", tok.Line, e), nil
}

func isAssignTarget(e S) bool {
	if len(e) == 0 {
		return false
	}
	tag, _ := e[0].(string)
	return tag == "id" || tag == "idx"
}

// functionDef parses "#name(a, b):" followed by an indented body.
func (p *parser) functionDef() (S, error) {
	hash := p.peek()
	p.i++
	name, err := p.need(ID, "expected a function name after '#'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	if p.peek().Type != RROUND {
		for {
			param, err := p.need(ID, "expected a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, tokText(param))
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RROUND, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return L("fun", hash.Line, tokText(name), params, body), nil
}

// ifChain parses if/elif/else into a single node with ordered
// (condition, block) pairs and an optional trailing else block.
func (p *parser) ifChain() (S, error) {
	first := p.peek()
	p.i++
	cond, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	blk, err := p.suite()
	if err != nil {
		return nil, err
	}
	node := L("if", first.Line, L("pair", cond, blk))

	for {
		p.skipNewlines()
		if p.match(ELIF) {
			c, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			b, err := p.suite()
			if err != nil {
				return nil, err
			}
			node = append(node, L("pair", c, b))
			continue
		}
		if p.match(ELSE) {
			b, err := p.suite()
			if err != nil {
				return nil, err
			}
			node = append(node, b)
		}
		return node, nil
	}
}

func (p *parser) whileLoop() (S, error) {
	kw := p.peek()
	p.i++
	cond, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return L("while", kw.Line, cond, body), nil
}

// mixinCall parses "@mixin Library#function".
func (p *parser) mixinCall() (S, error) {
	kw := p.peek()
	p.i++
	lib, err := p.need(ID, "expected a library name after '@mixin'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(HASH, "expected '#' in bridge id"); err != nil {
		return nil, err
	}
	fn, err := p.need(ID, "expected a function name after '#'")
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return L("mixin", kw.Line, tokText(lib)+"#"+tokText(fn)), nil
}

// ─────────────────────────────── expressions ────────────────────────────────

func lbp(t TokenType) (int, bool) {
	switch t {
	case EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 40, true
	case PLUS, MINUS:
		return 50, true
	case MULT, DIV:
		return 60, true
	}
	return 0, false
}

const unaryBP = 70

func (p *parser) expression(minBP int) (S, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for {
		// call and index bind tightest, left-to-right
		switch p.peek().Type {
		case LROUND:
			p.i++
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			left = append(L("call", left), args...)
			continue
		case LSQUARE:
			p.i++
			idx, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RSQUARE, "expected ']' after index"); err != nil {
				return nil, err
			}
			left = L("idx", left, idx)
			continue
		}

		bp, ok := lbp(p.peek().Type)
		if !ok || bp <= minBP {
			return left, nil
		}
		op := p.peek().Lexeme
		p.i++
		right, err := p.expression(bp)
		if err != nil {
			return nil, err
		}
		left = L("binop", op, left, right)
	}
}

func (p *parser) prefix() (S, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.i++
		return L("num", tok.Literal.(float64)), nil
	case STRING:
		p.i++
		return L("str", tok.Literal.(string)), nil
	case BOOLEAN:
		p.i++
		return L("bool", tok.Literal.(bool)), nil
	case ID:
		p.i++
		return L("id", tok.Lexeme), nil
	case MINUS:
		p.i++
		rhs, err := p.expression(unaryBP)
		if err != nil {
			return nil, err
		}
		return L("unop", "-", rhs), nil
	case NOT:
		p.i++
		rhs, err := p.expression(unaryBP)
		if err != nil {
			return nil, err
		}
		return L("unop", "not", rhs), nil
	case LROUND:
		p.i++
		e, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "expected ')'"); err != nil {
			return nil, err
		}
		return e, nil
	case LSQUARE:
		p.i++
		arr := L("array")
		if p.peek().Type != RSQUARE {
			for {
				e, err := p.expression(0)
				if err != nil {
					return nil, err
				}
				arr = append(arr, e)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if _, err := p.need(RSQUARE, "expected ']' after array elements"); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, p.errHere(fmt.Sprintf("unexpected token %q", tok.Lexeme))
}

func (p *parser) callArgs() ([]any, error) {
	var args []any
	if p.peek().Type != RROUND {
		for {
			a, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RROUND, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func tokText(t Token) string {
	if s, ok := t.Literal.(string); ok {
		return s
	}
	return t.Lexeme
}
