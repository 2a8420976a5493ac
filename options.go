package rpnjit

import "log/slog"

// CompileOption is an option for compiling.
type CompileOption interface {
	compileOption(compilectx) compilectx
}

type (
	backendopt struct{ b Backend }
	loggeropt  struct{ l *slog.Logger }
	phiopt     struct{}
	expopt     struct{}
)

// compilectx holds the settings of one compile.
type compilectx struct {
	// backend finalizes the graph. If nil, the compile creates a wasm session
	// owned by the resulting Expr.
	backend Backend
	log     *slog.Logger
	// phi is the value of the constant phi.
	phi float64
	// signed allows a sign after an exponent marker in numbers.
	signed bool
}

func newCompilectx(opts []CompileOption) compilectx {
	c := compilectx{phi: phi}
	for _, opt := range opts {
		c = opt.compileOption(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// WithBackend sets the backend that turns compiled graphs into programs. The
// caller retains ownership of b. The default is a fresh WASM session per
// expression, closed along with it.
func WithBackend(b Backend) CompileOption {
	return backendopt{b}
}

func (o backendopt) compileOption(c compilectx) compilectx {
	c.backend = o.b
	return c
}

// WithLogger sets the logger for compile diagnostics. The default is
// slog.Default().
func WithLogger(l *slog.Logger) CompileOption {
	return loggeropt{l}
}

func (o loggeropt) compileOption(c compilectx) compilectx {
	c.log = o.l
	return c
}

// ExactPhi makes the constant phi the golden ratio (1+√5)/2 rather than the
// historical 1.61803.
func ExactPhi() CompileOption {
	return phiopt{}
}

func (phiopt) compileOption(c compilectx) compilectx {
	c.phi = 1.6180339887498948482045868343656381
	return c
}

// SignedExponents allows a sign directly after the exponent marker of a
// number, so that "1e-5" is one token. By default the sign ends the number,
// and "1e-5" is the three tokens 1, -, 5.
func SignedExponents() CompileOption {
	return expopt{}
}

func (expopt) compileOption(c compilectx) compilectx {
	c.signed = true
	return c
}
