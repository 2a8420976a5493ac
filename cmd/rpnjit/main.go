package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/rforcen/rpnjit"
)

func main() {
	log.SetFlags(0)
	base := span{from: 0, to: 10, step: 1}
	var (
		planname  string
		ir, graph bool
		precise   int
		verbose   bool
	)
	flag.Func("from", "first sample (default 0)", floatFlag(&base.from))
	flag.Func("to", "end of samples, exclusive (default 10)", floatFlag(&base.to))
	flag.Func("step", "distance between samples (default 1)", floatFlag(&base.step))
	flag.StringVar(&planname, "plan", "", "YAML file listing expressions and ranges")
	flag.BoolVar(&ir, "ir", false, "print generated code")
	flag.BoolVar(&graph, "graph", false, "print computation graphs")
	flag.IntVar(&precise, "precise", -1, "interpret with this many bits of precision instead of compiling (0 for the default)")
	flag.BoolVar(&verbose, "v", false, "log compile diagnostics")
	flag.Parse()
	if precise < -1 {
		log.Fatalf("precision (%d) must not be negative", precise)
	}

	plan := &Plan{}
	if planname != "" {
		p, err := LoadPlan(planname)
		if err != nil {
			log.Fatal(err)
		}
		plan = p
	}
	for _, arg := range flag.Args() {
		plan.Plots = append(plan.Plots, Plot{Expr: arg})
	}
	if len(plan.Plots) == 0 {
		log.Fatal("no expressions")
	}

	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	opts := []rpnjit.CompileOption{rpnjit.WithLogger(logger)}
	if precise >= 0 {
		opts = append(opts, rpnjit.WithBackend(rpnjit.Precise(uint(precise))))
	}

	ctx := context.Background()
	failed := false
	for k, pl := range plan.Plots {
		if !run(ctx, os.Stdout, pl.Expr, plan.Span(k, base), ir, graph, opts) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// run compiles and samples one expression, reporting whether it compiled.
func run(ctx context.Context, w io.Writer, src string, s span, ir, graph bool, opts []rpnjit.CompileOption) bool {
	e, err := rpnjit.CompileString(ctx, src, opts...)
	defer e.Close(ctx)
	if err != nil {
		fmt.Fprintf(w, "%s: syntax error: %v\n", src, err)
		return false
	}
	fmt.Fprintf(w, "%s: ok\n", src)
	if graph {
		fmt.Fprint(w, e.Graph())
	}
	if ir {
		fmt.Fprint(w, e.IR())
	}
	pts, err := e.Sample(ctx, s.from, s.to, s.step)
	for _, p := range pts {
		fmt.Fprintf(w, "%g : %g\n", p.X, p.Y)
	}
	if err != nil {
		log.Printf("%s: %v", src, err)
	}
	return true
}

func floatFlag(p *float32) func(string) error {
	return func(s string) error {
		var f float32
		if _, err := fmt.Sscan(s, &f); err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*p = f
		return nil
	}
}
