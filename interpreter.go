// interpreter.go — public engine surface for the asp interpreter.
//
// The API is intentionally narrow. You can:
//   - Evaluate source in a fresh scope (EvalSource) or persistently in the
//     global scope (EvalPersistentSource, REPL-style).
//   - Register native bridge functions keyed by "Library#function" ids,
//     invoked from scripts via "@mixin Library#function".
//   - Redirect program output (the `say` statement) for embedding and tests.
//
// Everything else — evaluation strategy, control-flow signalling, operator
// dispatch — is private and lives in interpreter_exec.go/interpreter_ops.go.
package asp

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
//                                 VALUES
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates all runtime kinds a Value may hold.
// The tag determines which Go type Value.Data carries.
type ValueTag int

const (
	VTNil   ValueTag = iota // nil / uninitialized (no payload)
	VTBool                  // bool
	VTNum                   // float64
	VTStr                   // string
	VTArray                 // *ArrayObject
	VTFun                   // *Fun
)

// Value is the universal runtime carrier used by the interpreter.
// A Value's tag never changes in place; reassignment replaces the binding.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// String renders a debug representation (strings quoted). For the `say`
// rendering rules see FormatValue in printer.go.
func (v Value) String() string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTBool:
		return fmt.Sprintf("%v", v.Data.(bool))
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTArray:
		return fmt.Sprintf("<array len=%d>", len(v.Data.(*ArrayObject).Elems))
	case VTFun:
		return "<fun>"
	default:
		return "<unknown>"
	}
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: VTNil}

// Primitive constructors.
func Bool(b bool) Value   { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value  { return Value{Tag: VTStr, Data: s} }

// ArrayObject is the shared backing store of an array Value. Assigning an
// array to a second variable shares the same ArrayObject, so element
// mutation through either binding is visible through both.
type ArrayObject struct {
	Elems []Value
}

// Arr wraps a slice into a fresh array Value.
func Arr(xs []Value) Value { return Value{Tag: VTArray, Data: &ArrayObject{Elems: xs}} }

// Fun represents a user-defined function. Functions are first-class Values;
// Env is the lexical scope captured at the definition point (closure).
type Fun struct {
	Name   string
	Params []string
	Body   S
	Env    *Env
}

// FunVal wraps *Fun into a Value (Tag=VTFun).
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

////////////////////////////////////////////////////////////////////////////////
//                               ENVIRONMENT
////////////////////////////////////////////////////////////////////////////////

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward. Use Define to bind in the current frame, Set to update the
// nearest existing binding, Get to retrieve and Delete to unbind.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates a new lexical frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env { return &Env{parent: parent, table: make(map[string]Value)} }

// Define binds name to v in the current frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) { e.table[name] = v }

// Set updates the nearest existing binding of name to v. If no binding
// exists in any visible frame, Set returns an error (it does not define).
func (e *Env) Set(name string, v Value) error {
	if _, ok := e.table[name]; ok {
		e.table[name] = v
		return nil
	}
	if e.parent != nil {
		return e.parent.Set(name, v)
	}
	return fmt.Errorf("undefined variable: %s", name)
}

// Get retrieves the nearest visible binding for name or returns an error.
func (e *Env) Get(name string) (Value, error) {
	if v, ok := e.table[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, fmt.Errorf("undefined variable: %s", name)
}

// Delete removes the nearest visible binding for name or returns an error.
func (e *Env) Delete(name string) error {
	if _, ok := e.table[name]; ok {
		delete(e.table, name)
		return nil
	}
	if e.parent != nil {
		return e.parent.Delete(name)
	}
	return fmt.Errorf("undefined variable: %s", name)
}

////////////////////////////////////////////////////////////////////////////////
//                                 ERRORS
////////////////////////////////////////////////////////////////////////////////

// ErrKind classifies runtime failures.
type ErrKind int

const (
	ErrRuntime     ErrKind = iota // uncategorized runtime failure
	ErrUnboundName                // read or delete of a never-defined name
	ErrType                       // invalid operand tags for an operator
	ErrIndex                      // array index out of range or non-integral
	ErrArity                      // call argument count mismatch
	ErrBridge                     // unknown bridge id or host callable failure
	ErrDivision                   // division by zero
)

func (k ErrKind) String() string {
	switch k {
	case ErrUnboundName:
		return "unbound name"
	case ErrType:
		return "type error"
	case ErrIndex:
		return "index error"
	case ErrArity:
		return "arity error"
	case ErrBridge:
		return "bridge error"
	case ErrDivision:
		return "division error"
	default:
		return "runtime error"
	}
}

// RuntimeError represents an execution-time failure. Positions are
// statement-granular: Line is the 1-based source line of the statement
// that was executing when the failure occurred.
type RuntimeError struct {
	Kind ErrKind
	Line int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR at line %d: %s: %s", e.Line, e.Kind, e.Msg)
}

////////////////////////////////////////////////////////////////////////////////
//                              NATIVE BRIDGE
////////////////////////////////////////////////////////////////////////////////

// CallCtx is passed to native bridge functions. Arg/MustArg read variables
// from the calling scope by name — the documented library convention is that
// a wrapper script binds its inputs (e.g. `data = "..."`) before executing
// the @mixin statement. Env exposes the calling scope itself.
type CallCtx interface {
	Arg(name string) (Value, bool)
	MustArg(name string) Value
	Env() *Env
}

// NativeImpl is the implementation signature for registered bridge functions.
// Implementations return the bridge result Value; the evaluator binds it to
// `injection` in the calling scope when the @mixin statement completes.
// Implementations signal host failures with fail(...).
type NativeImpl func(ip *Interpreter, ctx CallCtx) Value

////////////////////////////////////////////////////////////////////////////////
//                               INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// Interpreter is the entry point for evaluating asx programs.
//
// Construction: NewInterpreter gives a bare engine with no bridge functions;
// NewRuntime (runtime.go) additionally installs the standard host libraries
// (__Utils, __Crypto, __Object).
//
// A single Interpreter is not re-entrant: one program, one goroutine.
type Interpreter struct {
	Global *Env      // persistent program environment (REPL/module state)
	Out    io.Writer // destination of `say` output; defaults to os.Stdout

	native map[string]NativeImpl // bridge registry, read-only after start-up

	curLine int // source line of the statement being executed
}

// NewInterpreter constructs a bare engine with an empty Global scope and an
// empty bridge registry.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		Global: NewEnv(nil),
		Out:    os.Stdout,
		native: map[string]NativeImpl{},
	}
}

// RegisterNative installs a host bridge function under a "Library#function"
// id. Registration happens at start-up, before the first evaluation; the
// registry is treated as read-only afterwards.
func (ip *Interpreter) RegisterNative(id string, impl NativeImpl) {
	if !strings.Contains(id, "#") {
		panic(fmt.Sprintf("asp: invalid bridge id %q (want \"Library#function\")", id))
	}
	ip.native[id] = impl
}

// EvalSource parses and evaluates source in a fresh child of Global.
// Effects land in that ephemeral child; Global is unchanged.
// Returns the program result (the value of the last expression statement, or
// the value of a top-level return) or a *LexError/*ParseError/*RuntimeError.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	ast, err := Parse(src)
	if err != nil {
		return Nil, err
	}
	return ip.runProgram(ast, NewEnv(ip.Global))
}

// EvalPersistentSource parses and evaluates source directly in Global
// (REPL-style); bindings persist across calls.
func (ip *Interpreter) EvalPersistentSource(src string) (Value, error) {
	ast, err := Parse(src)
	if err != nil {
		return Nil, err
	}
	return ip.runProgram(ast, ip.Global)
}

// EvalAST evaluates a pre-parsed program block in the provided environment.
func (ip *Interpreter) EvalAST(ast S, env *Env) (Value, error) {
	return ip.runProgram(ast, env)
}
