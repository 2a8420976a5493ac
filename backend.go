package rpnjit

import (
	"context"

	"github.com/rforcen/rpnjit/interp"
	"github.com/rforcen/rpnjit/ir"
	"github.com/rforcen/rpnjit/wasm"
)

// Program is an executable compiled function.
type Program interface {
	// Call evaluates the function at x.
	Call(ctx context.Context, x float32) (float32, error)
	// Listing returns a human-readable form of the generated code.
	Listing() string
	// Close releases the program's resources.
	Close(ctx context.Context) error
}

// Backend turns complete computation graphs into programs.
type Backend interface {
	Finalize(ctx context.Context, g *ir.Graph) (Program, error)
}

type wasmBackend struct {
	s *wasm.Session
}

// WASM returns a backend that compiles to WebAssembly in s. Programs remain
// valid until they or the session are closed.
func WASM(s *wasm.Session) Backend {
	return wasmBackend{s}
}

func (b wasmBackend) Finalize(ctx context.Context, g *ir.Graph) (Program, error) {
	p, err := b.s.Finalize(ctx, g)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type preciseBackend struct {
	b *interp.Backend
}

// Precise returns a backend that interprets graphs with prec bits of
// precision, rounding only the final result. If prec is 0, interp.DefaultPrec
// is used.
func Precise(prec uint) Backend {
	return preciseBackend{interp.New(prec)}
}

func (b preciseBackend) Finalize(ctx context.Context, g *ir.Graph) (Program, error) {
	p, err := b.b.Finalize(ctx, g)
	if err != nil {
		return nil, err
	}
	return p, nil
}
