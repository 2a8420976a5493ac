package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDecodePlan(t *testing.T) {
	const src = `
defaults:
  from: -1
  step: 0.5
plots:
  - expr: x 2 ^
  - expr: x sin
    to: 2
    step: 0.25
`
	p, err := decodePlan(strings.NewReader(src), "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Plots) != 2 || p.Plots[0].Expr != "x 2 ^" || p.Plots[1].Expr != "x sin" {
		t.Fatalf("wrong plots: %+v", p.Plots)
	}
	base := span{from: 0, to: 10, step: 1}
	if got, want := p.Span(0, base), (span{-1, 10, 0.5}); got != want {
		t.Errorf("plot 1: want %v, got %v", want, got)
	}
	if got, want := p.Span(1, base), (span{-1, 2, 0.25}); got != want {
		t.Errorf("plot 2: want %v, got %v", want, got)
	}
}

func TestDecodePlanErrors(t *testing.T) {
	cases := []string{
		"plots:\n  - to: 3\n",
		"plots:\n  - expr: x\n    stride: 3\n",
		"defaults: [1, 2]\n",
	}
	for _, c := range cases {
		if _, err := decodePlan(strings.NewReader(c), "test"); err == nil {
			t.Errorf("%q: no error", c)
		}
	}
	p, err := decodePlan(strings.NewReader(""), "empty")
	if err != nil || len(p.Plots) != 0 {
		t.Errorf("empty plan: got %+v, %v", p, err)
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	var b bytes.Buffer
	if !run(ctx, &b, "x 2 *", span{0, 2, 0.5}, false, false, nil) {
		t.Fatal("compile failed")
	}
	const want = "x 2 *: ok\n0 : 0\n0.5 : 1\n1 : 2\n1.5 : 3\n"
	if b.String() != want {
		t.Errorf("want output\n%s\ngot\n%s", want, b.String())
	}

	b.Reset()
	if run(ctx, &b, "1 +", span{0, 1, 1}, true, true, nil) {
		t.Error("bad expression compiled")
	}
	if !strings.HasPrefix(b.String(), "1 +: syntax error") {
		t.Errorf("wrong failure output %q", b.String())
	}

	b.Reset()
	run(ctx, &b, "x", span{0, 1, 1}, true, true, nil)
	for _, s := range []string{"define float @rpn_func", "(module", "0 : 0\n"} {
		if !strings.Contains(b.String(), s) {
			t.Errorf("output lacks %q:\n%s", s, b.String())
		}
	}
}
