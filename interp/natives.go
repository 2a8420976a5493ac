package interp

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// maxFactors bounds the number of factors factorial multiplies. Any input
// that needs more has a product far outside the float64 range and is
// reported as +Inf.
const maxFactors = 1 << 16

type native struct {
	arity int
	// f computes the result into r from non-NaN arguments. It returns false
	// if the result is NaN.
	f func(p *Program, r *big.Float, args []*big.Float) bool
}

var natives = map[string]native{
	"sin":       float64fn(math.Sin),
	"cos":       float64fn(math.Cos),
	"tan":       float64fn(math.Tan),
	"asin":      float64fn(math.Asin),
	"acos":      float64fn(math.Acos),
	"atan":      float64fn(math.Atan),
	"exp":       {1, exp},
	"log":       {1, logE},
	"log10":     {1, log10},
	"sqrt":      {1, sqrt},
	"fabs":      {1, fabs},
	"floor":     {1, floor},
	"power":     {2, power},
	"wave":      {3, wave},
	"factorial": {1, factorial},
}

func (p *Program) call(f native, args []num) num {
	in := make([]*big.Float, len(args))
	for i, a := range args {
		in[i] = a.v
	}
	return guard(func(r *big.Float) {
		if !f.f(p, r, in) {
			panic(big.ErrNaN{})
		}
	}, p.prec)
}

// setFloat64 sets r to v, reporting false for NaN.
func setFloat64(r *big.Float, v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	r.SetFloat64(v)
	return true
}

func float64fn(f func(float64) float64) native {
	return native{1, func(p *Program, r *big.Float, args []*big.Float) bool {
		x, _ := args[0].Float64()
		return setFloat64(r, f(x))
	}}
}

func exp(p *Program, r *big.Float, args []*big.Float) bool {
	r.Set(bigfloat.Exp(r, args[0]))
	return true
}

func logE(p *Program, r *big.Float, args []*big.Float) bool {
	x := args[0]
	switch {
	case x.Sign() < 0:
		return false
	case x.Sign() == 0:
		r.SetInf(true)
	case x.IsInf():
		r.SetInf(false)
	default:
		r.Set(bigfloat.Log(r, x))
	}
	return true
}

func log10(p *Program, r *big.Float, args []*big.Float) bool {
	if !logE(p, r, args) {
		return false
	}
	if r.IsInf() {
		return true
	}
	ten := new(big.Float).SetPrec(p.prec).SetInt64(10)
	ten.Set(bigfloat.Log(ten, ten))
	r.Quo(r, ten)
	return true
}

func sqrt(p *Program, r *big.Float, args []*big.Float) bool {
	if args[0].Sign() < 0 {
		return false
	}
	r.Sqrt(args[0])
	return true
}

func fabs(p *Program, r *big.Float, args []*big.Float) bool {
	r.Abs(args[0])
	return true
}

func floor(p *Program, r *big.Float, args []*big.Float) bool {
	x := args[0]
	if x.IsInf() {
		r.Set(x)
		return true
	}
	i, acc := x.Int(nil)
	if acc == big.Above {
		// Truncation rounded a negative value up.
		i.Sub(i, big.NewInt(1))
	}
	r.SetInt(i)
	return true
}

func power(p *Program, r *big.Float, args []*big.Float) bool {
	x, y := args[0], args[1]
	switch {
	case y.Sign() == 0:
		r.SetInt64(1)
	case x.Sign() == 0:
		if y.Sign() > 0 {
			r.SetInt64(0)
		} else {
			r.SetInf(false)
		}
	case x.Sign() < 0, x.IsInf(), y.IsInf():
		// bigfloat.Pow is defined for positive finite bases only.
		a, _ := x.Float64()
		b, _ := y.Float64()
		return setFloat64(r, math.Pow(a, b))
	default:
		// Results past the big.Float exponent range saturate.
		t := new(big.Float).SetPrec(p.prec)
		t.Set(bigfloat.Log(t, x))
		e, _ := t.Mul(t, y).Float64()
		switch {
		case e > maxLogExp:
			r.SetInf(false)
		case e < minLogExp:
			r.SetInt64(0)
		default:
			r.Set(bigfloat.Pow(r, x, y))
		}
	}
	return true
}

// maxLogExp and minLogExp bound the natural logarithm of a finite nonzero
// big.Float.
const (
	maxLogExp = big.MaxExp * math.Ln2
	minLogExp = big.MinExp * math.Ln2
)

func wave(p *Program, r *big.Float, args []*big.Float) bool {
	amp, hz, phase := args[0], args[1], args[2]
	arg, _ := new(big.Float).SetPrec(p.prec).Add(hz, phase).Float64()
	s := math.Sin(arg)
	if !setFloat64(r, s) {
		return false
	}
	r.Mul(r, amp)
	return true
}

// factorial multiplies f, f-1, f-2, ... while the factor is positive.
func factorial(p *Program, r *big.Float, args []*big.Float) bool {
	f := new(big.Float).SetPrec(p.prec).Set(args[0])
	r.SetInt64(1)
	if f.IsInf() {
		if f.Sign() > 0 {
			r.SetInf(false)
		}
		return true
	}
	one := new(big.Float).SetPrec(p.prec).SetInt64(1)
	for k := 0; f.Sign() > 0; k++ {
		if k == maxFactors {
			r.SetInf(false)
			return true
		}
		r.Mul(r, f)
		f.Sub(f, one)
	}
	return true
}
