// interpreter_exec.go — PRIVATE: the tree-walking evaluator.
//
// Evaluation walks the S-expression AST directly; there is no bytecode
// stage. Control flow uses panic-based signals:
//
//   - returnSig unwinds a `return` through nested blocks up to the nearest
//     function-call boundary (or the top-level driver for a program-level
//     return).
//   - rtErr carries a structured runtime failure (kind + statement line) up
//     to the top-level driver, which converts it into a *RuntimeError. The
//     language has no catch construct, so every runtime failure halts the
//     program.
//
// Host bridge callables signal failures through fail(...), which the driver
// surfaces as ErrBridge.
package asp

import (
	"fmt"
	"time"
)

type returnSig struct{ v Value }

type rtErr struct {
	kind ErrKind
	msg  string
	line int
}

// fail signals a host-side bridge failure. Intended for builtin_*.go
// implementations; the evaluator attributes it to the running statement.
func fail(msg string) { panic(rtErr{kind: ErrBridge, msg: msg}) }

// failK signals a runtime failure of the given kind from inside the engine.
func (ip *Interpreter) failK(kind ErrKind, format string, args ...any) {
	panic(rtErr{kind: kind, msg: fmt.Sprintf(format, args...), line: ip.curLine})
}

////////////////////////////////////////////////////////////////////////////////
//                              TOP-LEVEL DRIVER
////////////////////////////////////////////////////////////////////////////////

func (ip *Interpreter) runProgram(prog S, env *Env) (out Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch sig := r.(type) {
			case returnSig:
				out, err = sig.v, nil
			case rtErr:
				line := sig.line
				if line <= 0 {
					line = ip.curLine
				}
				out, err = Nil, &RuntimeError{Kind: sig.kind, Line: line, Msg: sig.msg}
			default:
				out, err = Nil, &RuntimeError{
					Kind: ErrRuntime,
					Line: ip.curLine,
					Msg:  fmt.Sprintf("runtime panic: %v", r),
				}
			}
		}
	}()
	return ip.evalBlock(prog, env), nil
}

////////////////////////////////////////////////////////////////////////////////
//                           BLOCKS AND STATEMENTS
////////////////////////////////////////////////////////////////////////////////

// evalBlock runs the statements of a ("block", ...) node in env and returns
// the value of the last expression statement (Nil when there is none). A
// `return` anywhere inside unwinds past this via returnSig.
func (ip *Interpreter) evalBlock(block S, env *Env) Value {
	last := Nil
	for _, raw := range block[1:] {
		st := raw.(S)
		if v, isExpr := ip.evalStmt(st, env); isExpr {
			last = v
		}
	}
	return last
}

// evalStmt executes one statement. The second result reports whether the
// statement was a bare expression (whose value a REPL wants to echo).
func (ip *Interpreter) evalStmt(st S, env *Env) (Value, bool) {
	tag := st[0].(string)
	ip.curLine = st[1].(int)

	switch tag {
	case "assign":
		ip.evalAssign(st[2].(S), ip.evalExpr(st[3].(S), env), env)
	case "say":
		fmt.Fprintln(ip.Out, FormatValue(ip.evalExpr(st[2].(S), env)))
	case "wait":
		ip.evalWait(st[2].(S), env)
	case "return":
		panic(returnSig{v: ip.evalExpr(st[2].(S), env)})
	case "if":
		ip.evalIf(st, env)
	case "while":
		for truthy(ip.evalExpr(st[2].(S), env)) {
			ip.evalBlock(st[3].(S), NewEnv(env))
		}
	case "fun":
		name := st[2].(string)
		env.Define(name, FunVal(&Fun{
			Name:   name,
			Params: st[3].([]string),
			Body:   st[4].(S),
			Env:    env,
		}))
	case "delete":
		if err := env.Delete(st[2].(string)); err != nil {
			ip.failK(ErrUnboundName, "%s", err.Error())
		}
	case "mixin":
		ip.evalMixin(st[2].(string), env)
	case "expr":
		return ip.evalExpr(st[2].(S), env), true
	default:
		ip.failK(ErrRuntime, "unknown statement node: %s", tag)
	}
	return Nil, false
}

// evalAssign updates the nearest enclosing binding; an unbound name is an
// implicit define in the innermost scope (no declarations in asx).
func (ip *Interpreter) evalAssign(target S, v Value, env *Env) {
	switch target[0].(string) {
	case "id":
		name := target[1].(string)
		if err := env.Set(name, v); err != nil {
			env.Define(name, v)
		}
	case "idx":
		arr := ip.evalExpr(target[1].(S), env)
		idx := ip.evalExpr(target[2].(S), env)
		ip.setIndex(arr, idx, v)
	}
}

func (ip *Interpreter) evalWait(operand S, env *Env) {
	v := ip.evalExpr(operand, env)
	if v.Tag != VTNum {
		ip.failK(ErrType, "wait expects a number of seconds, got %s", tagName(v.Tag))
	}
	secs := v.Data.(float64)
	if secs < 0 {
		ip.failK(ErrType, "wait expects a non-negative duration")
	}
	time.Sleep(time.Duration(secs * float64(time.Second)))
}

// evalIf checks each (condition, block) pair in order and runs the first
// truthy branch in a fresh child scope; siblings never see each other's
// bindings. With no match and no else block it is a no-op.
func (ip *Interpreter) evalIf(st S, env *Env) {
	for _, raw := range st[2:] {
		arm := raw.(S)
		if arm[0].(string) == "pair" {
			if truthy(ip.evalExpr(arm[1].(S), env)) {
				ip.evalBlock(arm[2].(S), NewEnv(env))
				return
			}
			continue
		}
		// trailing else block
		ip.evalBlock(arm, NewEnv(env))
		return
	}
}

// evalMixin invokes a registered bridge callable and rebinds `injection` in
// the caller's scope before the statement completes. The callable's return
// value is the bridge contract; the injection binding is the thin
// compatibility shim the library scripts rely on.
func (ip *Interpreter) evalMixin(id string, env *Env) {
	impl, ok := ip.native[id]
	if !ok {
		ip.failK(ErrBridge, "unknown bridge id: %s", id)
	}
	// fail() panics without a line; stamp the @mixin statement's line here,
	// before any call-boundary defer restores curLine to the call site.
	line := ip.curLine
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(rtErr); ok && e.line == 0 {
				e.line = line
				panic(e)
			}
			panic(r)
		}
	}()
	env.Define("injection", impl(ip, callCtx{ip: ip, env: env}))
}

////////////////////////////////////////////////////////////////////////////////
//                               EXPRESSIONS
////////////////////////////////////////////////////////////////////////////////

func (ip *Interpreter) evalExpr(e S, env *Env) Value {
	switch e[0].(string) {
	case "num":
		return Num(e[1].(float64))
	case "str":
		return Str(e[1].(string))
	case "bool":
		return Bool(e[1].(bool))
	case "nil":
		return Nil
	case "id":
		v, err := env.Get(e[1].(string))
		if err != nil {
			ip.failK(ErrUnboundName, "%s", err.Error())
		}
		return v
	case "array":
		elems := make([]Value, 0, len(e)-1)
		for _, raw := range e[1:] {
			elems = append(elems, ip.evalExpr(raw.(S), env))
		}
		return Arr(elems)
	case "idx":
		arr := ip.evalExpr(e[1].(S), env)
		idx := ip.evalExpr(e[2].(S), env)
		return ip.index(arr, idx)
	case "binop":
		return ip.binop(e[1].(string), ip.evalExpr(e[2].(S), env), ip.evalExpr(e[3].(S), env))
	case "unop":
		return ip.unop(e[1].(string), ip.evalExpr(e[2].(S), env))
	case "call":
		callee := ip.evalExpr(e[1].(S), env)
		args := make([]Value, 0, len(e)-2)
		for _, raw := range e[2:] {
			args = append(args, ip.evalExpr(raw.(S), env))
		}
		return ip.callFunction(callee, args)
	}
	ip.failK(ErrRuntime, "unknown expression node: %v", e[0])
	return Nil
}

// callFunction applies a function value: arguments are already evaluated
// left-to-right by the caller; parameters bind positionally in a fresh child
// of the *captured* defining scope (lexical scoping). A body that falls off
// the end yields Nil.
func (ip *Interpreter) callFunction(callee Value, args []Value) (out Value) {
	if callee.Tag != VTFun {
		ip.failK(ErrType, "%s is not callable", tagName(callee.Tag))
	}
	fn := callee.Data.(*Fun)
	if len(args) != len(fn.Params) {
		ip.failK(ErrArity, "%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	frame := NewEnv(fn.Env)
	for i, p := range fn.Params {
		frame.Define(p, args[i])
	}

	callLine := ip.curLine
	defer func() {
		ip.curLine = callLine
		if r := recover(); r != nil {
			if sig, ok := r.(returnSig); ok {
				out = sig.v
				return
			}
			panic(r)
		}
	}()
	ip.evalBlock(fn.Body, frame)
	return Nil
}

////////////////////////////////////////////////////////////////////////////////
//                             BRIDGE CALL CONTEXT
////////////////////////////////////////////////////////////////////////////////

type callCtx struct {
	ip  *Interpreter
	env *Env
}

func (c callCtx) Env() *Env { return c.env }

func (c callCtx) Arg(name string) (Value, bool) {
	v, err := c.env.Get(name)
	if err != nil {
		return Nil, false
	}
	return v, true
}

func (c callCtx) MustArg(name string) Value {
	v, ok := c.Arg(name)
	if !ok {
		fail(fmt.Sprintf("bridge argument %q is not bound in the calling scope", name))
	}
	return v
}
