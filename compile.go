package rpnjit

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/rforcen/rpnjit/ir"
	"github.com/rforcen/rpnjit/wasm"
)

// compiler holds the state of one compile. Nothing in it outlives the
// compile.
type compiler struct {
	lex   *lexer
	g     *ir.Graph
	fns   funcset
	stack []ir.Value
	phi   float64
}

// Compile compiles a single RPN expression read from src to its end. The
// result is never nil; if compilation fails, its OK method reports false and
// the error is also returned. Errors from invalid input implement InputError.
func Compile(ctx context.Context, src io.RuneScanner, opts ...CompileOption) (*Expr, error) {
	c := newCompilectx(opts)
	e := &Expr{}
	g, err := build(src, c)
	if err != nil {
		c.log.DebugContext(ctx, "compile failed", slog.Any("err", err))
		e.err = err
		return e, err
	}
	e.graph = g.String()
	b := c.backend
	if b == nil {
		s, err := wasm.NewSession(ctx, wasm.WithLogger(c.log))
		if err != nil {
			e.err = &BackendError{Err: err}
			return e, e.err
		}
		e.session = s
		b = WASM(s)
	}
	p, err := b.Finalize(ctx, g)
	if err != nil {
		c.log.DebugContext(ctx, "finalize failed", slog.Any("err", err))
		if e.session != nil {
			e.session.Close(ctx)
			e.session = nil
		}
		e.err = &BackendError{Err: err}
		return e, e.err
	}
	e.prog = p
	e.ir = p.Listing()
	c.log.DebugContext(ctx, "compiled expression",
		slog.Int("nodes", g.Len()),
		slog.Int("funcs", len(g.Funcs())),
		slog.Int("branches", len(g.Branches())),
	)
	return e, nil
}

// CompileString compiles an RPN expression from a string.
func CompileString(ctx context.Context, src string, opts ...CompileOption) (*Expr, error) {
	return Compile(ctx, strings.NewReader(src), opts...)
}

// build lexes and compiles src into a graph with its root set.
func build(src io.RuneScanner, c compilectx) (*ir.Graph, error) {
	g := ir.New()
	p := compiler{
		lex: lex(src, c.signed),
		g:   g,
		fns: funcset{g: g},
		phi: c.phi,
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *compiler) run() error {
	for {
		tok, err := p.lex.next()
		if err != nil {
			return err
		}
		if tok.kind == tokenEOF {
			if len(p.stack) != 1 {
				return &ShapeError{Col: tok.pos, Depth: len(p.stack)}
			}
			p.g.SetRoot(p.stack[0])
			return nil
		}
		if err := p.apply(tok); err != nil {
			return err
		}
	}
}

func (p *compiler) push(v ir.Value) {
	p.stack = append(p.stack, v)
}

// pop removes the top n values from the stack and returns them in push
// order. The result aliases the stack until the next push.
func (p *compiler) pop(tok lexToken, n int) ([]ir.Value, error) {
	if len(p.stack) < n {
		return nil, &StackError{Col: tok.pos, Token: tok.text, Have: len(p.stack), Want: n}
	}
	k := len(p.stack) - n
	r := p.stack[k:]
	p.stack = p.stack[:k]
	return r, nil
}

func (p *compiler) apply(tok lexToken) error {
	info := &symtab[tok.sym]
	switch info.class {
	case classNum:
		p.push(p.g.Const(tok.val, ""))
	case classVar:
		p.push(p.g.Param())
	case classConst:
		v := info.val
		if tok.sym == symPhi {
			v = p.phi
		}
		p.push(p.g.Const(v, tok.text))
	case classArith:
		args, err := p.pop(tok, 2)
		if err != nil {
			return err
		}
		a, b := args[0], args[1]
		switch info.op {
		case ir.OpAdd, ir.OpMul:
			p.push(p.g.Binary(info.op, b, a))
		default:
			p.push(p.g.Binary(info.op, a, b))
		}
	case classCompare:
		args, err := p.pop(tok, 2)
		if err != nil {
			return err
		}
		p.push(p.g.Compare(info.pred, args[0], args[1]))
	case classCall:
		args, err := p.pop(tok, info.arity)
		if err != nil {
			return err
		}
		fn := p.fns.declare(tok.sym)
		p.push(p.g.Call(fn, args...))
	case classTernary:
		args, err := p.pop(tok, 3)
		if err != nil {
			return err
		}
		p.push(p.g.Branch(args[0], args[1], args[2]))
	default:
		return &TokenError{Col: tok.pos, Token: tok.text}
	}
	return nil
}
