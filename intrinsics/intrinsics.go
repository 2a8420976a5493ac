// Package intrinsics is the runtime library reachable by name from compiled
// expressions. Every function takes and returns float32 and is pure, so
// compiled code calling them may be run from any number of goroutines.
package intrinsics

import (
	"math"
	"sort"
)

// Func is an intrinsic of one, two, or three arguments. Exactly one of the
// fields is set.
type Func struct {
	F1 func(float32) float32
	F2 func(float32, float32) float32
	F3 func(float32, float32, float32) float32
}

// Arity returns the number of arguments f takes, or 0 for the zero Func.
func (f Func) Arity() int {
	switch {
	case f.F1 != nil:
		return 1
	case f.F2 != nil:
		return 2
	case f.F3 != nil:
		return 3
	default:
		return 0
	}
}

// Call applies f to args. args must have exactly f.Arity() elements.
func (f Func) Call(args ...float32) float32 {
	switch {
	case f.F1 != nil:
		return f.F1(args[0])
	case f.F2 != nil:
		return f.F2(args[0], args[1])
	case f.F3 != nil:
		return f.F3(args[0], args[1], args[2])
	default:
		panic("intrinsics: call of zero Func")
	}
}

var library = map[string]Func{
	"sin":       {F1: Sin},
	"cos":       {F1: Cos},
	"tan":       {F1: Tan},
	"exp":       {F1: Exp},
	"log":       {F1: Log},
	"log10":     {F1: Log10},
	"floor":     {F1: Floor},
	"sqrt":      {F1: Sqrt},
	"asin":      {F1: Asin},
	"acos":      {F1: Acos},
	"atan":      {F1: Atan},
	"fabs":      {F1: Fabs},
	"factorial": {F1: Factorial},
	"power":     {F2: Power},
	"wave":      {F3: Wave},
}

// Lookup finds an intrinsic by its native name.
func Lookup(name string) (Func, bool) {
	f, ok := library[name]
	return f, ok
}

// Names returns the native names of all intrinsics in sorted order.
func Names() []string {
	r := make([]string, 0, len(library))
	for k := range library {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

func Sin(x float32) float32   { return float32(math.Sin(float64(x))) }
func Cos(x float32) float32   { return float32(math.Cos(float64(x))) }
func Tan(x float32) float32   { return float32(math.Tan(float64(x))) }
func Exp(x float32) float32   { return float32(math.Exp(float64(x))) }
func Log(x float32) float32   { return float32(math.Log(float64(x))) }
func Log10(x float32) float32 { return float32(math.Log10(float64(x))) }
func Floor(x float32) float32 { return float32(math.Floor(float64(x))) }
func Sqrt(x float32) float32  { return float32(math.Sqrt(float64(x))) }
func Asin(x float32) float32  { return float32(math.Asin(float64(x))) }
func Acos(x float32) float32  { return float32(math.Acos(float64(x))) }
func Atan(x float32) float32  { return float32(math.Atan(float64(x))) }
func Fabs(x float32) float32  { return float32(math.Abs(float64(x))) }

// Power returns a**b.
func Power(a, b float32) float32 {
	return float32(math.Pow(float64(a), float64(b)))
}

// Wave returns amp*sin(hz+phase).
func Wave(amp, hz, phase float32) float32 {
	return amp * Sin(hz+phase)
}

// Factorial is the linear recursion f*(f-1)*(f-2)*... stopping at the first
// factor that is not positive, which contributes 1. It is not the gamma
// function: 2.5! is 2.5*1.5*0.5.
//
// Inputs where subtracting one no longer changes the value would recurse
// forever. For those the result is what the product tends to: +Inf, or NaN
// for NaN.
func Factorial(f float32) float32 {
	if f <= 0 {
		return 1
	}
	if f != f {
		return f
	}
	if f >= factorialInf {
		return float32(math.Inf(1))
	}
	return f * Factorial(f-1)
}

// factorialInf bounds the recursion depth. Any product of 40 or more factors
// starting here overflows float32 even when the last factor is the smallest
// positive fraction representable near f.
const factorialInf = 64
