package rpnjit_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rforcen/rpnjit"
	"github.com/rforcen/rpnjit/ir"
	"github.com/rforcen/rpnjit/wasm"
)

type backend struct {
	name string
	opts []rpnjit.CompileOption
}

// backends returns the configurations every evaluation test runs against: a
// session per expression, a shared session, and the interpreter.
func backends(t *testing.T) []backend {
	t.Helper()
	ctx := context.Background()
	s, err := wasm.NewSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close(ctx) })
	return []backend{
		{"wasm", nil},
		{"session", []rpnjit.CompileOption{rpnjit.WithBackend(rpnjit.WASM(s))}},
		{"precise", []rpnjit.CompileOption{rpnjit.WithBackend(rpnjit.Precise(0))}},
	}
}

func compile(t *testing.T, src string, opts ...rpnjit.CompileOption) *rpnjit.Expr {
	t.Helper()
	ctx := context.Background()
	e, err := rpnjit.CompileString(ctx, src, opts...)
	if err != nil {
		t.Fatalf("compiling %q: %v", src, err)
	}
	t.Cleanup(func() { e.Close(ctx) })
	return e
}

func same(a, b float32) bool {
	return a == b || a != a && b != b
}

func TestEvaluate(t *testing.T) {
	nan := float32(math.NaN())
	cases := []struct {
		src  string
		x    float32
		want float32
	}{
		// operand order
		{"5 2 -", 0, 3},
		{"2 5 -", 0, -3},
		{"4 2 /", 0, 2},
		{"2 4 /", 0, 0.5},
		{"2 3 +", 0, 5},
		{"2 3 *", 0, 6},
		{"2 3 ^", 0, 8},
		{"3 2 ^", 0, 9},
		{"x 1 -", 10, 9},
		{"1 x -", 10, -9},
		// variables
		{"x", 7, 7},
		{"t", 7, 7},
		{"x x *", -3, 9},
		{"x 2 ^", 3, 9},
		{"x 2 ^", 4, 16},
		// power
		{"x 1 ^", 3, 3},
		{"x 1 ^", 0.1, 0.1},
		{"2 0 ^", 0, 1},
		{"0 2 - 3 ^", 0, -8},
		{"4 0.5 ^", 0, 2},
		{"2 0 1 - ^", 0, 0.5},
		{"2 200 ^", 0, float32(math.Inf(1))},
		{"2 1e30 ^", 0, float32(math.Inf(1))},
		{"0.5 1e30 ^", 0, 0},
		// ternary
		{"1 10 20 ?", 0, 10},
		{"0 10 20 ?", 0, 20},
		{"x 0 > x 0 x - ?", -3, 3},
		{"x 0 > x 0 x - ?", 2, 2},
		{"x x x - / 1 2 ?", 0, 2},
		// comparisons
		{"3 2 >", 0, 1},
		{"2 3 >", 0, 0},
		{"2 2 >=", 0, 1},
		{"2 3 <", 0, 1},
		{"3 3 <=", 0, 1},
		{"2 3 <>", 0, 1},
		{"2 2 <>", 0, 0},
		{"2 2 =", 0, 1},
		{"x 1 =", nan, 0},
		{"x 1 <>", nan, 0},
		{"x 0.1 =", 0.1, 1},
		{"x 0.1 <>", 0.1, 0},
		// factorial
		{"0 !", 0, 1},
		{"3 !", 0, 6},
		{"2.5 !", 0, 1.875},
		{"x !", 5, 120},
		{"x !", -2, 1},
		// functions and constants
		{"16 sqrt", 0, 4},
		{"2.7 floor", 0, 2},
		{"0 2.5 - fabs", 0, 2.5},
		{"100 log10", 0, 2},
		{"1 exp", 0, float32(math.E)},
		{"0 cos", 0, 1},
		{"x sin", 0, 0},
		{"1 2 3 wave", 0, float32(math.Sin(5))},
		{"pi", 0, float32(math.Pi)},
		{"e", 0, float32(math.E)},
		{"phi", 0, float32(1.61803)},
		{"x sin x sin +", 0, 0},
		// numbers
		{"1e3", 0, 1000},
		{"1.2.3", 0, 1.2},
		{"1e 1 +", 0, 2},
		{"1 0 /", 0, float32(math.Inf(1))},
	}
	for _, b := range backends(t) {
		for _, c := range cases {
			e := compile(t, c.src, b.opts...)
			if !e.OK() {
				t.Errorf("%s: %q not OK", b.name, c.src)
				continue
			}
			if got := e.Evaluate(c.x); !same(got, c.want) {
				t.Errorf("%s: %q at %g: want %g, got %g", b.name, c.src, c.x, c.want, got)
			}
		}
	}
}

func TestOptions(t *testing.T) {
	for _, b := range backends(t) {
		e := compile(t, "phi", append(b.opts, rpnjit.ExactPhi())...)
		if got, want := e.Evaluate(0), float32(math.Phi); got != want {
			t.Errorf("%s: exact phi: want %g, got %g", b.name, want, got)
		}
		e = compile(t, "1e-5", append(b.opts, rpnjit.SignedExponents())...)
		if got, want := e.Evaluate(0), float32(1e-5); got != want {
			t.Errorf("%s: signed exponent: want %g, got %g", b.name, want, got)
		}
		// Without the option, the sign is a separate token: 2 1 - 3 *.
		e = compile(t, "2 1e-3 *", b.opts...)
		if got := e.Evaluate(0); got != 3 {
			t.Errorf("%s: unsigned exponent: want 3, got %g", b.name, got)
		}
	}
}

func TestReuse(t *testing.T) {
	for _, b := range backends(t) {
		e := compile(t, "x x * 1 +", b.opts...)
		for i := 0; i < 100; i++ {
			x := float32(i) / 4
			if got, want := e.Evaluate(x), x*x+1; got != want {
				t.Fatalf("%s: call %d: want %g, got %g", b.name, i, want, got)
			}
		}
	}
}

func TestCompileErrors(t *testing.T) {
	var (
		stack *rpnjit.StackError
		shape *rpnjit.ShapeError
		lex   *rpnjit.LexError
		tok   *rpnjit.TokenError
	)
	cases := []struct {
		src    string
		target any
		pos    int
	}{
		{"+", &stack, 1},
		{"1 +", &stack, 3},
		{"1 2 ?", &stack, 5},
		{"1 2 wave", &stack, 5},
		{"x !  !  *", &stack, 9},
		{"1e-5", &stack, 3},
		{"1 2", &shape, 4},
		{"", &shape, 1},
		{"   ", &shape, 4},
		{"@", &lex, 1},
		{"1 2 + #", &lex, 7},
		{"foo", &tok, 1},
		{"x sinx", &tok, 3},
		{"(", &tok, 1},
		{"1 2 ,", &tok, 5},
		{"1 x :", &tok, 5},
	}
	for _, c := range cases {
		e, err := rpnjit.CompileString(context.Background(), c.src)
		if e == nil {
			t.Fatalf("%q: nil expression", c.src)
		}
		if err == nil || e.OK() || e.Err() != err {
			t.Errorf("%q: want failure, got %v, OK %t", c.src, err, e.OK())
			continue
		}
		if !errors.As(err, c.target) {
			t.Errorf("%q: wrong error type %T: %v", c.src, err, err)
		}
		var ie rpnjit.InputError
		if !errors.As(err, &ie) || ie.Pos() != c.pos {
			t.Errorf("%q: want error at %d, got %v", c.src, c.pos, err)
		}
		if got := e.Evaluate(1); got == got {
			t.Errorf("%q: failed expression evaluated to %g", c.src, got)
		}
		if e.IR() != "" {
			t.Errorf("%q: failed expression has listing %q", c.src, e.IR())
		}
		if _, err := e.Sample(context.Background(), 0, 1, 0.5); err == nil {
			t.Errorf("%q: failed expression sampled", c.src)
		}
		if err := e.Close(context.Background()); err != nil {
			t.Errorf("%q: closing failed expression: %v", c.src, err)
		}
	}
}

func TestStackErrorDetail(t *testing.T) {
	_, err := rpnjit.CompileString(context.Background(), "1 2 wave")
	var se *rpnjit.StackError
	if !errors.As(err, &se) {
		t.Fatalf("want StackError, got %v", err)
	}
	if se.Token != "wave" || se.Have != 2 || se.Want != 3 {
		t.Errorf("wrong detail: %+v", se)
	}
	if got, want := se.Error(), "5: wave needs 3 operands, have 2"; got != want {
		t.Errorf("want message %q, got %q", want, got)
	}
}

type failing struct{}

func (failing) Finalize(ctx context.Context, g *ir.Graph) (rpnjit.Program, error) {
	return nil, errors.New("no")
}

func TestBackendError(t *testing.T) {
	e, err := rpnjit.CompileString(context.Background(), "1 2 +", rpnjit.WithBackend(failing{}))
	var be *rpnjit.BackendError
	if !errors.As(err, &be) || e.OK() {
		t.Fatalf("want BackendError, got %v", err)
	}
	if be.Unwrap() == nil || be.Error() != "backend: no" {
		t.Errorf("wrong error %q", be.Error())
	}
	if e.Graph() == "" {
		t.Error("graph listing missing after backend failure")
	}
}

func TestListings(t *testing.T) {
	e := compile(t, "x sin x sin + 0 >")
	if !strings.Contains(e.IR(), "(func $rpn_func (export \"rpn_func\")") {
		t.Errorf("wasm listing lacks function:\n%s", e.IR())
	}
	if n := strings.Count(e.IR(), "(import \"env\" \"sin\""); n != 1 {
		t.Errorf("want one sin import, got %d:\n%s", n, e.IR())
	}
	g := e.Graph()
	if !strings.Contains(g, "define float @rpn_func(float %x) {") {
		t.Errorf("graph listing lacks definition:\n%s", g)
	}
	if n := strings.Count(g, "declare float @sin(float)"); n != 1 {
		t.Errorf("want one sin declaration, got %d:\n%s", n, g)
	}
	if !strings.Contains(g, "fcmp ogt float") {
		t.Errorf("graph listing lacks comparison:\n%s", g)
	}

	e = compile(t, "x 1 2 ?", rpnjit.WithBackend(rpnjit.Precise(64)))
	if !strings.HasPrefix(e.IR(), "; precision 64 bits\n") {
		t.Errorf("precise listing lacks precision:\n%s", e.IR())
	}
	for _, s := range []string{"then0:", "else0:", "ifcont0:", "phi float"} {
		if !strings.Contains(e.Graph(), s) {
			t.Errorf("graph listing lacks %q:\n%s", s, e.Graph())
		}
	}
}

func TestSample(t *testing.T) {
	e := compile(t, "x 2 *")
	ctx := context.Background()
	pts, err := e.Sample(ctx, 0, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	want := []rpnjit.Point{{0, 0}, {0.5, 1}, {1, 2}, {1.5, 3}}
	if len(pts) != len(want) {
		t.Fatalf("want %v, got %v", want, pts)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d: want %v, got %v", i, want[i], pts[i])
		}
	}
	if pts, err := e.Sample(ctx, 2, 0, 0.5); err != nil || len(pts) != 0 {
		t.Errorf("empty range: got %v, %v", pts, err)
	}
	for _, step := range []float32{0, -1, float32(math.NaN()), 1e-30} {
		if _, err := e.Sample(ctx, 1, 2, step); err == nil {
			t.Errorf("step %g: no error", step)
		}
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	e, err := rpnjit.CompileString(ctx, "x 1 +")
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(ctx); err != nil {
		t.Errorf("second close: %v", err)
	}
	if _, err := e.Call(ctx, 1); !errors.Is(err, rpnjit.ErrClosed) {
		t.Errorf("call after close: want ErrClosed, got %v", err)
	}
	if e.IR() == "" {
		t.Error("listing lost after close")
	}
}
