// Package interp is a backend that evaluates computation graphs with
// arbitrary-precision arithmetic. It is much slower than the wasm backend and
// is meant as a reference for checking compiled results.
//
// Arithmetic, comparisons, sqrt, fabs, and floor are computed with math/big;
// exp, log, log10, and power with bigfloat; the trigonometric functions and
// wave go through float64 because no arbitrary-precision implementation is
// available. NaN is tracked alongside each value, since big.Float has none.
//
// Literals are rounded to float32 as in the compiled backends, but arithmetic
// on them is not, so a comparison of computed values such as "0.1 0.2 + 0.3 ="
// can differ from a float32 evaluation.
package interp

import (
	"context"
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"

	"github.com/rforcen/rpnjit/ir"
)

// DefaultPrec is the precision in bits used when none is given.
const DefaultPrec = 128

// ErrNaN is returned by EvalBig when the result is not a number.
var ErrNaN = errors.New("interp: result is NaN")

// Backend finalizes graphs for interpretation at a fixed precision.
type Backend struct {
	prec uint
}

// New creates a backend computing with prec bits of mantissa. If prec is 0,
// DefaultPrec is used.
func New(prec uint) *Backend {
	if prec == 0 {
		prec = DefaultPrec
	}
	return &Backend{prec: prec}
}

// Prec returns the precision of calculations.
func (b *Backend) Prec() uint {
	return b.prec
}

// Finalize checks that g is complete and that every declared function is one
// the interpreter implements.
func (b *Backend) Finalize(ctx context.Context, g *ir.Graph) (*Program, error) {
	if g.Root() == ir.NoValue {
		return nil, errors.New("interp: graph has no root")
	}
	for _, f := range g.Funcs() {
		fn, ok := natives[f.Native]
		if !ok || fn.arity != f.Arity {
			return nil, errors.New("interp: no function " + f.Native + " of " + strconv.Itoa(f.Arity) + " arguments")
		}
	}
	return &Program{g: g, prec: b.prec}, nil
}

// Program evaluates one graph. It holds no mutable state and is safe for
// concurrent use.
type Program struct {
	g    *ir.Graph
	prec uint
}

// num is an evaluated value. v is nil iff the value is NaN.
type num struct {
	v *big.Float
}

func (n num) isNaN() bool {
	return n.v == nil
}

// EvalBig evaluates the graph at x with full precision. The result is a new
// value owned by the caller.
func (p *Program) EvalBig(x *big.Float) (*big.Float, error) {
	r := p.eval(num{new(big.Float).SetPrec(p.prec).Set(x)})
	if r.isNaN() {
		return nil, ErrNaN
	}
	return r.v, nil
}

// Call evaluates the graph at x and rounds the result to float32. A NaN
// result is returned as NaN with no error.
func (p *Program) Call(ctx context.Context, x float32) (float32, error) {
	if err := ctx.Err(); err != nil {
		return float32(math.NaN()), err
	}
	var in num
	if x == x {
		in = num{new(big.Float).SetPrec(p.prec).SetFloat64(float64(x))}
	}
	r := p.eval(in)
	if r.isNaN() {
		return float32(math.NaN()), nil
	}
	f, _ := r.v.Float32()
	return f, nil
}

// Listing returns the graph listing annotated with the precision.
func (p *Program) Listing() string {
	return "; precision " + strconv.FormatUint(uint64(p.prec), 10) + " bits\n" + p.g.String()
}

// Close is a no-op; interpreted programs hold no resources.
func (p *Program) Close(ctx context.Context) error {
	return nil
}

// eval computes every node in arena order. Both arms of a branch are
// computed; the merge then picks one.
func (p *Program) eval(x num) num {
	g := p.g
	vals := make([]num, g.Len())
	vals[g.Param()] = x
	for i := 1; i < g.Len(); i++ {
		n := g.Node(ir.Value(i))
		var args [3]num
		for k, a := range n.Operands() {
			args[k] = vals[a]
		}
		vals[i] = p.node(n, args[:n.N])
	}
	return vals[g.Root()]
}

func (p *Program) node(n *ir.Node, args []num) num {
	switch n.Op {
	case ir.OpConst:
		return p.constant(n)
	case ir.OpAdd:
		return p.arith(args, (*big.Float).Add)
	case ir.OpSub:
		return p.arith(args, (*big.Float).Sub)
	case ir.OpMul:
		return p.arith(args, (*big.Float).Mul)
	case ir.OpDiv:
		return p.arith(args, (*big.Float).Quo)
	case ir.OpCmp:
		r := new(big.Float).SetPrec(p.prec)
		if !args[0].isNaN() && !args[1].isNaN() && holds(n.Pred, args[0].v.Cmp(args[1].v)) {
			r.SetInt64(1)
		}
		return num{r}
	case ir.OpCall:
		f := natives[p.g.Funcs()[n.Func].Native]
		for _, a := range args {
			if a.isNaN() {
				return num{}
			}
		}
		return p.call(f, args)
	case ir.OpSelect:
		c := args[0]
		if !c.isNaN() && c.v.Sign() != 0 {
			return args[1]
		}
		return args[2]
	default:
		panic("interp: cannot evaluate node " + n.Op.String())
	}
}

func (p *Program) constant(n *ir.Node) num {
	r := new(big.Float).SetPrec(p.prec)
	switch n.Name {
	case "pi":
		r.Set(bigfloat.Pi(r))
	case "e":
		var one big.Float
		one.SetPrec(p.prec).SetInt64(1)
		r.Set(bigfloat.Exp(r, &one))
	case "":
		// Literals are single precision in every backend.
		r.SetFloat64(float64(float32(n.Const)))
	default:
		r.SetFloat64(n.Const)
	}
	return num{r}
}

func holds(p ir.Pred, c int) bool {
	switch p {
	case ir.PredEQ:
		return c == 0
	case ir.PredNE:
		return c != 0
	case ir.PredGT:
		return c > 0
	case ir.PredGE:
		return c >= 0
	case ir.PredLT:
		return c < 0
	case ir.PredLE:
		return c <= 0
	default:
		panic("interp: invalid predicate " + p.String())
	}
}

// arith applies a big.Float operation, mapping the ErrNaN panics of e.g.
// Inf-Inf and 0/0 to NaN.
func (p *Program) arith(args []num, op func(z, x, y *big.Float) *big.Float) num {
	if args[0].isNaN() || args[1].isNaN() {
		return num{}
	}
	return guard(func(r *big.Float) {
		op(r, args[0].v, args[1].v)
	}, p.prec)
}

// guard runs f on a fresh value. A big.ErrNaN panic makes the result NaN;
// any other panic propagates.
func guard(f func(r *big.Float), prec uint) (n num) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(big.ErrNaN); ok {
			n = num{}
			return
		}
		panic(r)
	}()
	r := new(big.Float).SetPrec(prec)
	f(r)
	return num{r}
}
