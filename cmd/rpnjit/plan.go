package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a list of expressions to compile and sample, read from YAML:
//
//	defaults:
//	  from: 0
//	  to: 10
//	  step: 0.5
//	plots:
//	  - expr: x 2 ^
//	  - expr: x sin
//	    to: 6.28
//	    step: 0.1
type Plan struct {
	Defaults Range  `yaml:"defaults"`
	Plots    []Plot `yaml:"plots"`
}

// Range is a sampling range. Unset fields take the value from the plan
// defaults, then from the command line.
type Range struct {
	From *float32 `yaml:"from"`
	To   *float32 `yaml:"to"`
	Step *float32 `yaml:"step"`
}

// Plot is one expression in a plan.
type Plot struct {
	Expr  string `yaml:"expr"`
	Range `yaml:",inline"`
}

// span is a resolved sampling range.
type span struct {
	from, to, step float32
}

// over fills the unset fields of r from s.
func (r Range) over(s span) span {
	if r.From != nil {
		s.from = *r.From
	}
	if r.To != nil {
		s.to = *r.To
	}
	if r.Step != nil {
		s.step = *r.Step
	}
	return s
}

// Span resolves the range of p against the plan defaults and base.
func (p *Plan) Span(k int, base span) span {
	return p.Plots[k].over(p.Defaults.over(base))
}

func decodePlan(r io.Reader, name string) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return &p, nil
		}
		return nil, fmt.Errorf("plan: parse %s: %w", name, err)
	}
	for i, pl := range p.Plots {
		if pl.Expr == "" {
			return nil, fmt.Errorf("plan: %s: plot %d has no expr", name, i+1)
		}
	}
	return &p, nil
}

// LoadPlan reads a plan file.
func LoadPlan(path string) (*Plan, error) {
	if path == "" {
		return nil, fmt.Errorf("plan: empty path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodePlan(f, path)
}
