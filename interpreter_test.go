// interpreter_test.go
package asp

import (
	"bytes"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func runScript(t *testing.T, src string) (Value, string) {
	t.Helper()
	ip := NewRuntime()
	var out bytes.Buffer
	ip.Out = &out
	v, err := ip.EvalSource(src)
	if err != nil {
		t.Fatalf("EvalSource error: %v\nsource:\n%s", err, src)
	}
	return v, out.String()
}

func evalSrc(t *testing.T, src string) Value {
	t.Helper()
	v, _ := runScript(t, src)
	return v
}

func wantOutput(t *testing.T, src, want string) {
	t.Helper()
	_, out := runScript(t, src)
	if out != want {
		t.Fatalf("\nsource:\n%s\nwant output:\n%q\ngot:\n%q\n", src, want, out)
	}
}

func wantRuntimeError(t *testing.T, src string, kind ErrKind, substr string) (*RuntimeError, string) {
	t.Helper()
	ip := NewRuntime()
	var out bytes.Buffer
	ip.Out = &out
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("want runtime error containing %q, got none\nsource:\n%s", substr, src)
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
	if re.Kind != kind {
		t.Fatalf("want error kind %q, got %q: %v", kind, re.Kind, err)
	}
	if !strings.Contains(re.Msg, substr) {
		t.Fatalf("want error containing %q, got: %v", substr, err)
	}
	return re, out.String()
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNum {
		t.Fatalf("want num %g, got %#v", f, v)
	}
	if got := v.Data.(float64); got != f {
		t.Fatalf("want num %g, got %g", f, got)
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTStr || v.Data.(string) != s {
		t.Fatalf("want str %q, got %#v", s, v)
	}
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %#v", b, v)
	}
}

func wantNil(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTNil {
		t.Fatalf("want nil, got %#v", v)
	}
}

// --- arithmetic & values ---------------------------------------------------

func Test_Eval_Arithmetic(t *testing.T) {
	wantNum(t, evalSrc(t, "1 + 2 * 3"), 7)
	wantNum(t, evalSrc(t, "(1 + 2) * 3"), 9)
	wantNum(t, evalSrc(t, "10 / 4"), 2.5)
	wantNum(t, evalSrc(t, "-5 + 2"), -3)
	// runtime IEEE-754 addition, not a constant-folded 0.3
	wantNum(t, evalSrc(t, "0.1 + 0.2"), 0.30000000000000004)
}

func Test_Eval_DivisionByZero(t *testing.T) {
	wantRuntimeError(t, "say 1 / 0", ErrDivision, "division by zero")
	wantRuntimeError(t, "say 0 / 0", ErrDivision, "division by zero")
}

func Test_Eval_StringConcat(t *testing.T) {
	wantStr(t, evalSrc(t, `"foo" + "bar"`), "foobar")
	wantRuntimeError(t, `say "a" + 1`, ErrType, "expects numbers")
}

func Test_Eval_Comparisons(t *testing.T) {
	wantBool(t, evalSrc(t, "1 < 2"), true)
	wantBool(t, evalSrc(t, "2 <= 1"), false)
	wantBool(t, evalSrc(t, `"abc" < "abd"`), true)
	wantBool(t, evalSrc(t, "1 == 1"), true)
	wantBool(t, evalSrc(t, `1 == "1"`), false) // cross-tag equality is false
	wantBool(t, evalSrc(t, `1 != "1"`), true)
	wantBool(t, evalSrc(t, "[1, 2] == [1, 2]"), true)
	wantBool(t, evalSrc(t, "[1, 2] == [1, 2, 3]"), false)
}

func Test_Eval_CrossTagOrderingFails(t *testing.T) {
	wantRuntimeError(t, `say 1 < "a"`, ErrType, "cannot order")
	wantRuntimeError(t, "say [1] >= [1]", ErrType, "cannot order")
}

func Test_Eval_Truthiness(t *testing.T) {
	wantBool(t, evalSrc(t, "not 0"), true)
	wantBool(t, evalSrc(t, "not 0.5"), false)
	wantBool(t, evalSrc(t, `not ""`), true)
	wantBool(t, evalSrc(t, "not []"), true)
	wantBool(t, evalSrc(t, "not [0]"), false)
	wantBool(t, evalSrc(t, "not False"), true)
}

// --- variables & scoping ---------------------------------------------------

func Test_Eval_NumberCopiedOnAssign(t *testing.T) {
	wantOutput(t, "x = 10\ny = x\nx = 20\nsay y\n", "10\n")
}

func Test_Eval_ArrayAliasing(t *testing.T) {
	src := "a = [1, 2, 3]\nb = a\nb[0] = 99\nsay a[0]\n"
	wantOutput(t, src, "99\n")
}

func Test_Eval_AssignUpdatesEnclosingScope(t *testing.T) {
	src := `total = 0
i = 0
while i < 5:
    total = total + i
    i = i + 1
say total
`
	wantOutput(t, src, "10\n")
}

func Test_Eval_BranchScopeIsDiscarded(t *testing.T) {
	// a binding first defined inside a block does not leak out
	src := `if True:
    inner = 1
say inner
`
	wantRuntimeError(t, src, ErrUnboundName, "undefined variable: inner")
}

func Test_Eval_Delete(t *testing.T) {
	wantRuntimeError(t, "x = 1\ndelete x\nsay x\n", ErrUnboundName, "undefined variable: x")
	wantRuntimeError(t, "delete nothing\n", ErrUnboundName, "undefined variable: nothing")
}

func Test_Eval_UnboundName(t *testing.T) {
	re, _ := wantRuntimeError(t, "x = 1\nsay zzz\n", ErrUnboundName, "undefined variable: zzz")
	if re.Line != 2 {
		t.Fatalf("want error on line 2, got line %d", re.Line)
	}
}

// --- control flow ----------------------------------------------------------

func Test_Eval_IfChainElse(t *testing.T) {
	src := `if 1 == 2:
    say "if"
elif 1 >= 3:
    say "elif"
else:
    say "else"
`
	wantOutput(t, src, "else\n")
}

func Test_Eval_IfChainShortCircuits(t *testing.T) {
	src := `if True:
    say "first"
elif True:
    say "second"
`
	wantOutput(t, src, "first\n")
}

func Test_Eval_IfNoMatchNoElse(t *testing.T) {
	wantOutput(t, "if False:\n    say 1\nsay 2\n", "2\n")
}

func Test_Eval_WhileCountdown(t *testing.T) {
	src := `n = 3
while n > 0:
    say n
    n = n - 1
`
	wantOutput(t, src, "3\n2\n1\n")
}

// --- functions & closures --------------------------------------------------

func Test_Eval_FunctionCall(t *testing.T) {
	src := `#add(a, b):
    return a + b
say add(3, 4)
`
	wantOutput(t, src, "7\n")
}

func Test_Eval_FallOffEndReturnsNil(t *testing.T) {
	src := `#noop():
    x = 1
say noop()
`
	wantOutput(t, src, "Nil\n")
}

func Test_Eval_ReturnUnwindsNestedBlocks(t *testing.T) {
	src := `#pick(n):
    if n > 0:
        if n > 1:
            return "big"
        return "small"
    return "none"
say pick(5)
say pick(1)
say pick(0)
`
	wantOutput(t, src, "big\nsmall\nnone\n")
}

func Test_Eval_ArityMismatch(t *testing.T) {
	src := `#f(a):
    return a
f(1, 2)
`
	wantRuntimeError(t, src, ErrArity, "expects 1 argument(s), got 2")
}

func Test_Eval_CallingNonFunction(t *testing.T) {
	wantRuntimeError(t, "x = 1\nx()\n", ErrType, "not callable")
}

func Test_Eval_ClosureCapture(t *testing.T) {
	src := `#counter():
    n = 0
    #inc():
        n = n + 1
        return n
    return inc
c = counter()
c()
c()
say c()
`
	wantOutput(t, src, "3\n")
}

func Test_Eval_ClosureUsesDefiningScopeNotCallSite(t *testing.T) {
	// x is a parameter of shadowed, so its frame binds x without touching
	// the outer binding; reader must resolve x against its defining scope.
	src := `x = "outer"
#reader():
    return x
#shadowed(x):
    return reader()
say shadowed("inner")
`
	wantOutput(t, src, "outer\n")
}

func Test_Eval_FunctionNamesAreOrdinaryBindings(t *testing.T) {
	src := `#f():
    return 1
g = f
#f():
    return 2
say g()
say f()
`
	wantOutput(t, src, "1\n2\n")
}

// --- arrays ----------------------------------------------------------------

func Test_Eval_ArrayIndexing(t *testing.T) {
	wantNum(t, evalSrc(t, `a = [10, 20, 30]
a[1]
`), 20)
	wantRuntimeError(t, "a = [1]\nsay a[1]\n", ErrIndex, "out of range")
	wantRuntimeError(t, "a = [1]\nsay a[-1]\n", ErrIndex, "out of range")
	wantRuntimeError(t, "a = [1]\nsay a[0.5]\n", ErrIndex, "must be an integer")
	wantRuntimeError(t, `a = [1]
say a["0"]
`, ErrIndex, "must be a number")
	wantRuntimeError(t, "x = 5\nsay x[0]\n", ErrType, "cannot index")
}

func Test_Eval_HeterogeneousArrays(t *testing.T) {
	wantOutput(t, `say [1, "two", True, [3]]`+"\n", "[1, two, True, [3]]\n")
}

// --- say / wait ------------------------------------------------------------

func Test_Eval_SayRendering(t *testing.T) {
	wantOutput(t, "say 10\n", "10\n")
	wantOutput(t, "say 3.25\n", "3.25\n")
	wantOutput(t, `say "hello"`+"\n", "hello\n")
	wantOutput(t, "say True\n", "True\n")
	wantOutput(t, "say 1 == 2\n", "False\n")
}

func Test_Eval_WaitRejectsBadOperand(t *testing.T) {
	wantRuntimeError(t, `wait "soon"`, ErrType, "number of seconds")
	wantRuntimeError(t, "wait -1", ErrType, "non-negative")
}

func Test_Eval_WaitZeroCompletes(t *testing.T) {
	wantOutput(t, "wait 0\nsay \"done\"\n", "done\n")
}

// --- number literal round-trip --------------------------------------------

func Test_Eval_NumberRoundTrip(t *testing.T) {
	for _, lit := range []string{"0", "10", "3.25", "0.001", "12345.6789"} {
		v := evalSrc(t, lit+"\n")
		rendered := FormatValue(v)
		again := evalSrc(t, rendered+"\n")
		if !valuesEqual(v, again) {
			t.Fatalf("round-trip failed for %s: %v -> %s -> %v", lit, v, rendered, again)
		}
	}
}

// --- bridge ----------------------------------------------------------------

func Test_Eval_MixinUnknownIdHaltsProgram(t *testing.T) {
	src := `say "before"
@mixin __Nope#missing
say "after"
`
	re, out := wantRuntimeError(t, src, ErrBridge, "unknown bridge id: __Nope#missing")
	if out != "before\n" {
		t.Fatalf("want output up to the failing statement only, got %q", out)
	}
	if re.Line != 2 {
		t.Fatalf("want error on line 2, got line %d", re.Line)
	}
}

func Test_Eval_MixinBindsInjectionInCallerScope(t *testing.T) {
	ip := NewInterpreter()
	ip.RegisterNative("__Test#answer", func(_ *Interpreter, _ CallCtx) Value {
		return Num(42)
	})
	var out bytes.Buffer
	ip.Out = &out
	src := `#fetch():
    @mixin __Test#answer
    return injection
say fetch()
`
	if _, err := ip.EvalSource(src); err != nil {
		t.Fatalf("EvalSource error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("want 42, got %q", out.String())
	}
}

func Test_Eval_MixinReadsArgsFromCallingScope(t *testing.T) {
	ip := NewInterpreter()
	ip.RegisterNative("__Test#double", func(_ *Interpreter, ctx CallCtx) Value {
		v := ctx.MustArg("value")
		return Num(v.Data.(float64) * 2)
	})
	var out bytes.Buffer
	ip.Out = &out
	src := `value = 21
@mixin __Test#double
say injection
`
	if _, err := ip.EvalSource(src); err != nil {
		t.Fatalf("EvalSource error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("want 42, got %q", out.String())
	}
}

func Test_Eval_MixinMissingArgIsBridgeError(t *testing.T) {
	ip := NewInterpreter()
	ip.RegisterNative("__Test#needy", func(_ *Interpreter, ctx CallCtx) Value {
		return ctx.MustArg("nothere")
	})
	_, err := ip.EvalSource("@mixin __Test#needy\n")
	re, ok := err.(*RuntimeError)
	if !ok || re.Kind != ErrBridge {
		t.Fatalf("want bridge error, got %v", err)
	}
}

// --- persistence -----------------------------------------------------------

func Test_Eval_PersistentScope(t *testing.T) {
	ip := NewRuntime()
	var out bytes.Buffer
	ip.Out = &out
	if _, err := ip.EvalPersistentSource("x = 41\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := ip.EvalPersistentSource("say x + 1\n"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "42\n" {
		t.Fatalf("want 42, got %q", out.String())
	}
}

func Test_Eval_EphemeralScopeDoesNotLeak(t *testing.T) {
	ip := NewRuntime()
	if _, err := ip.EvalSource("x = 1\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := ip.EvalSource("say x\n"); err == nil {
		t.Fatal("want undefined variable error, got none")
	}
}

func Test_Eval_TopLevelReturn(t *testing.T) {
	wantNum(t, evalSrc(t, "return 5\nsay \"unreached\"\n"), 5)
}

func Test_Eval_NaNOrderingIsFalse(t *testing.T) {
	// repeated squaring overflows to Inf; Inf - Inf is NaN, which must
	// compare false under every ordering operator
	src := `x = 100000
i = 0
while i < 6:
    x = x * x
    i = i + 1
nan = x - x
say nan >= 0
say nan > 0
say nan < 0
say nan <= nan
`
	wantOutput(t, src, "False\nFalse\nFalse\nFalse\n")
}

func Test_Eval_ASTReuse(t *testing.T) {
	ast, err := Parse("counter = counter + 1\nsay counter\n")
	if err != nil {
		t.Fatal(err)
	}
	ip := NewRuntime()
	var out bytes.Buffer
	ip.Out = &out
	ip.Global.Define("counter", Num(0))
	for i := 0; i < 2; i++ {
		if _, err := ip.EvalAST(ast, ip.Global); err != nil {
			t.Fatal(err)
		}
	}
	if out.String() != "1\n2\n" {
		t.Fatalf("want counter to advance across runs, got %q", out.String())
	}
}

func Test_Eval_BridgeFailureReportsMixinLine(t *testing.T) {
	ip := NewRuntime()
	// data is unbound, so the md5 bridge fails on line 2; the error must
	// name that line rather than the call site on line 3
	src := `#hash():
    @mixin __Crypto#md5
say hash()
`
	_, err := ip.EvalSource(src)
	re, ok := err.(*RuntimeError)
	if !ok || re.Kind != ErrBridge {
		t.Fatalf("want bridge error, got %v", err)
	}
	if re.Line != 2 {
		t.Fatalf("want error on line 2, got line %d: %v", re.Line, err)
	}
}
