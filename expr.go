package rpnjit

import (
	"context"
	"errors"
	"math"

	"github.com/rforcen/rpnjit/wasm"
)

// Expr is a compiled expression. Its methods are safe for concurrent use
// until Close.
type Expr struct {
	prog  Program
	ir    string
	graph string
	err   error
	// session is the wasm session created for this expression alone, if any.
	session *wasm.Session
}

// Point is one sample of an expression.
type Point struct {
	X, Y float32
}

// ErrClosed is returned when calling an expression after Close.
var ErrClosed = errors.New("rpnjit: expression is closed")

// OK reports whether the expression compiled successfully.
func (e *Expr) OK() bool {
	return e.err == nil
}

// Err returns the reason compilation failed, or nil if it succeeded.
func (e *Expr) Err() error {
	return e.err
}

// Evaluate computes the expression at x. It returns NaN if the expression is
// not OK or evaluation fails.
func (e *Expr) Evaluate(x float32) float32 {
	r, err := e.Call(context.Background(), x)
	if err != nil {
		return float32(math.NaN())
	}
	return r
}

// Call computes the expression at x.
func (e *Expr) Call(ctx context.Context, x float32) (float32, error) {
	if e.err != nil {
		return float32(math.NaN()), e.err
	}
	if e.prog == nil {
		return float32(math.NaN()), ErrClosed
	}
	return e.prog.Call(ctx, x)
}

// IR returns the listing of the generated code, or the empty string if the
// expression is not OK.
func (e *Expr) IR() string {
	return e.ir
}

// Graph returns the listing of the computation graph, independent of the
// backend. It is empty if the expression failed before the graph was
// complete.
func (e *Expr) Graph() string {
	return e.graph
}

// Sample evaluates the expression at from, from+step, and so on, while x is
// less than to. step must be positive and large enough to advance x.
func (e *Expr) Sample(ctx context.Context, from, to, step float32) ([]Point, error) {
	if e.err != nil {
		return nil, e.err
	}
	if !(step > 0) {
		return nil, errors.New("rpnjit: sample step must be positive")
	}
	var r []Point
	for x := from; x < to; x += step {
		if x+step == x {
			return r, errors.New("rpnjit: sample step too small to advance")
		}
		y, err := e.Call(ctx, x)
		if err != nil {
			return r, err
		}
		r = append(r, Point{X: x, Y: y})
	}
	return r, nil
}

// Close releases the compiled program and, if the compile created it, the
// wasm session. It is safe to call Close more than once.
func (e *Expr) Close(ctx context.Context) error {
	var err error
	if e.prog != nil {
		err = e.prog.Close(ctx)
		e.prog = nil
	}
	if e.session != nil {
		if err2 := e.session.Close(ctx); err == nil {
			err = err2
		}
		e.session = nil
	}
	return err
}
