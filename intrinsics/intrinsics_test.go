package intrinsics

import (
	"math"
	"testing"
)

func TestFactorial(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{3, 6},
		{5, 120},
		{2.5, 2.5 * 1.5 * 0.5},
		{0.5, 0.5},
		{float32(math.Inf(1)), float32(math.Inf(1))},
		{40, float32(math.Inf(1))},
		{1e7, float32(math.Inf(1))},
		{1 << 25, float32(math.Inf(1))},
	}
	for _, c := range cases {
		if got := Factorial(c.in); got != c.want {
			t.Errorf("Factorial(%g): want %g, got %g", c.in, c.want, got)
		}
	}
	if got := Factorial(float32(math.NaN())); got == got {
		t.Errorf("Factorial(NaN): want NaN, got %g", got)
	}
}

func TestWave(t *testing.T) {
	cases := []struct {
		amp, hz, phase float32
		want           float32
	}{
		{1, 0, 0, 0},
		{2, math.Pi / 4, math.Pi / 4, 2},
		{3, 0, math.Pi / 2, 3},
		{0, 5, 5, 0},
	}
	for _, c := range cases {
		got := Wave(c.amp, c.hz, c.phase)
		if math.Abs(float64(got-c.want)) > 1e-6 {
			t.Errorf("Wave(%g, %g, %g): want %g, got %g", c.amp, c.hz, c.phase, c.want, got)
		}
	}
}

func TestPower(t *testing.T) {
	if got := Power(2, 3); got != 8 {
		t.Errorf("Power(2, 3): want 8, got %g", got)
	}
	if got := Power(3, 2); got != 9 {
		t.Errorf("Power(3, 2): want 9, got %g", got)
	}
	if got := Power(4, 0.5); got != 2 {
		t.Errorf("Power(4, 0.5): want 2, got %g", got)
	}
}

func TestLookup(t *testing.T) {
	arity := map[string]int{
		"sin": 1, "cos": 1, "tan": 1, "exp": 1, "log": 1, "log10": 1,
		"floor": 1, "sqrt": 1, "asin": 1, "acos": 1, "atan": 1, "fabs": 1,
		"factorial": 1, "power": 2, "wave": 3,
	}
	for name, n := range arity {
		f, ok := Lookup(name)
		if !ok {
			t.Errorf("%s missing", name)
			continue
		}
		if f.Arity() != n {
			t.Errorf("%s: want arity %d, got %d", name, n, f.Arity())
		}
	}
	if len(Names()) != len(arity) {
		t.Errorf("want %d intrinsics, got %v", len(arity), Names())
	}
	if _, ok := Lookup("powf"); ok {
		t.Error("unexpected intrinsic powf")
	}
}

func TestCall(t *testing.T) {
	f, _ := Lookup("fabs")
	if got := f.Call(-2); got != 2 {
		t.Errorf("fabs(-2): want 2, got %g", got)
	}
	f, _ = Lookup("power")
	if got := f.Call(2, 10); got != 1024 {
		t.Errorf("power(2, 10): want 1024, got %g", got)
	}
	f, _ = Lookup("wave")
	if got := f.Call(4, 0, 0); got != 0 {
		t.Errorf("wave(4, 0, 0): want 0, got %g", got)
	}
}
