// Package wasm is a backend that compiles computation graphs to WebAssembly
// and runs them with wazero, which translates the module to native code on
// supported platforms.
package wasm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/rforcen/rpnjit/intrinsics"
	"github.com/rforcen/rpnjit/ir"
)

// Session owns a wazero runtime with the intrinsics instantiated as the
// HostModule. A session can finalize any number of graphs, including
// concurrently.
type Session struct {
	rt  wazero.Runtime
	log *slog.Logger
	n   atomic.Uint64
}

// Option is an option for creating a session.
type Option func(*sessionConfig)

type sessionConfig struct {
	rc  wazero.RuntimeConfig
	log *slog.Logger
}

// WithRuntimeConfig sets the wazero runtime configuration, e.g. to force the
// interpreter with wazero.NewRuntimeConfigInterpreter.
func WithRuntimeConfig(rc wazero.RuntimeConfig) Option {
	return func(c *sessionConfig) {
		c.rc = rc
	}
}

// WithLogger sets the logger for session diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) {
		c.log = l
	}
}

// NewSession creates a runtime and instantiates the intrinsics in it.
func NewSession(ctx context.Context, opts ...Option) (*Session, error) {
	c := sessionConfig{rc: wazero.NewRuntimeConfig(), log: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, c.rc)
	b := rt.NewHostModuleBuilder(HostModule)
	for _, name := range intrinsics.Names() {
		f, _ := intrinsics.Lookup(name)
		types := f32s(f.Arity())
		b.NewFunctionBuilder().
			WithGoFunction(hostFunc(f), types, f32s(1)).
			WithName(name).
			Export(name)
	}
	if _, err := b.Instantiate(ctx); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiating %s: %w", HostModule, err)
	}
	return &Session{rt: rt, log: c.log}, nil
}

func f32s(n int) []api.ValueType {
	r := make([]api.ValueType, n)
	for i := range r {
		r[i] = api.ValueTypeF32
	}
	return r
}

// hostFunc adapts an intrinsic to wazero's stack calling convention.
func hostFunc(f intrinsics.Func) api.GoFunction {
	switch f.Arity() {
	case 1:
		return api.GoFunc(func(ctx context.Context, stack []uint64) {
			stack[0] = api.EncodeF32(f.F1(api.DecodeF32(stack[0])))
		})
	case 2:
		return api.GoFunc(func(ctx context.Context, stack []uint64) {
			stack[0] = api.EncodeF32(f.F2(api.DecodeF32(stack[0]), api.DecodeF32(stack[1])))
		})
	case 3:
		return api.GoFunc(func(ctx context.Context, stack []uint64) {
			stack[0] = api.EncodeF32(f.F3(api.DecodeF32(stack[0]), api.DecodeF32(stack[1]), api.DecodeF32(stack[2])))
		})
	default:
		panic("wasm: intrinsic with arity " + strconv.Itoa(f.Arity()))
	}
}

// Finalize encodes, compiles, and instantiates a graph. The failure cases are
// a graph without a root, a module wazero rejects, and imports of functions
// the session does not provide.
func (s *Session) Finalize(ctx context.Context, g *ir.Graph) (*Program, error) {
	bin, text, err := Encode(g)
	if err != nil {
		return nil, err
	}
	code, err := s.rt.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("wasm: compiling module: %w", err)
	}
	name := "rpn" + strconv.FormatUint(s.n.Add(1), 10)
	mod, err := s.rt.InstantiateModule(ctx, code, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		code.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiating module: %w", err)
	}
	fn := mod.ExportedFunction(ir.FuncName)
	if fn == nil {
		mod.Close(ctx)
		code.Close(ctx)
		return nil, fmt.Errorf("wasm: module does not export %s", ir.FuncName)
	}
	s.log.DebugContext(ctx, "wasm module instantiated", slog.String("module", name), slog.Int("bytes", len(bin)))
	return &Program{code: code, mod: mod, fn: fn, bin: bin, text: text}, nil
}

// Close releases the runtime and every module instantiated from it.
func (s *Session) Close(ctx context.Context) error {
	return s.rt.Close(ctx)
}

// Program is one instantiated compiled function. It is safe for concurrent
// use; calls are serialized because wazero functions are not.
type Program struct {
	mu   sync.Mutex
	code wazero.CompiledModule
	mod  api.Module
	fn   api.Function
	bin  []byte
	text string
}

// Call evaluates the function at x.
func (p *Program) Call(ctx context.Context, x float32) (float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, err := p.fn.Call(ctx, api.EncodeF32(x))
	if err != nil {
		return float32(math.NaN()), err
	}
	return api.DecodeF32(r[0]), nil
}

// Listing returns the text form of the module.
func (p *Program) Listing() string {
	return p.text
}

// Binary returns the encoded module. The result must not be modified.
func (p *Program) Binary() []byte {
	return p.bin
}

// Close releases the module instance and its compiled code.
func (p *Program) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.mod.Close(ctx)
	if err2 := p.code.Close(ctx); err == nil {
		err = err2
	}
	return err
}
