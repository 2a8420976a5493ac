package rpnjit

import (
	"slices"
	"strings"
	"testing"

	"github.com/rforcen/rpnjit/intrinsics"
	"github.com/rforcen/rpnjit/ir"
)

func TestSymtab(t *testing.T) {
	for s := symNum; s <= symE; s++ {
		info := symtab[s]
		if info.kind == tokenNone {
			t.Errorf("symbol %d has no token kind", s)
		}
		if info.class != classCall {
			continue
		}
		f, ok := intrinsics.Lookup(info.native)
		if !ok {
			t.Errorf("%s: no intrinsic %s", info.text, info.native)
			continue
		}
		if f.Arity() != info.arity {
			t.Errorf("%s: arity %d, intrinsic %s has %d", info.text, info.arity, info.native, f.Arity())
		}
	}
	for name, s := range names {
		if symtab[s].text != name {
			t.Errorf("%s resolves to %q", name, symtab[s].text)
		}
	}
}

func TestFuncs(t *testing.T) {
	want := []string{"acos", "asin", "atan", "cos", "exp", "fabs", "floor", "log", "log10", "sin", "sqrt", "tan", "wave"}
	if got := Funcs(); !slices.Equal(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestFuncsetDeclare(t *testing.T) {
	g := ir.New()
	f := funcset{g: g}
	a := f.declare(symSin)
	b := f.declare(symWave)
	if f.declare(symSin) != a || f.declare(symWave) != b || a == b {
		t.Errorf("wrong declarations %d %d", a, b)
	}
	fns := g.Funcs()
	if len(fns) != 2 || fns[a] != (ir.Func{Native: "sin", Arity: 1}) || fns[b] != (ir.Func{Native: "wave", Arity: 3}) {
		t.Errorf("wrong functions %v", fns)
	}
}

func TestBuildOperandOrder(t *testing.T) {
	cases := []struct {
		src  string
		op   ir.Op
		args [2]ir.Value
	}{
		// The node for x is 0 and the literal is 1.
		{"x 2 -", ir.OpSub, [2]ir.Value{0, 1}},
		{"x 2 /", ir.OpDiv, [2]ir.Value{0, 1}},
		{"x 2 +", ir.OpAdd, [2]ir.Value{1, 0}},
		{"x 2 *", ir.OpMul, [2]ir.Value{1, 0}},
	}
	for _, c := range cases {
		g, err := build(strings.NewReader(c.src), newCompilectx(nil))
		if err != nil {
			t.Fatalf("%q: %v", c.src, err)
		}
		n := g.Node(g.Root())
		if n.Op != c.op || n.Args[0] != c.args[0] || n.Args[1] != c.args[1] {
			t.Errorf("%q: want %v %v, got %+v", c.src, c.op, c.args, n)
		}
	}
}
