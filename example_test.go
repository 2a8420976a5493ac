package rpnjit_test

import (
	"context"
	"fmt"

	"github.com/rforcen/rpnjit"
)

func ExampleCompileString() {
	ctx := context.Background()
	e, err := rpnjit.CompileString(ctx, "x 0 > x 2 ^ 0 x - ?")
	if err != nil {
		panic(err)
	}
	defer e.Close(ctx)
	for _, x := range []float32{-2, 0, 3} {
		fmt.Println(x, ":", e.Evaluate(x))
	}

	// Output:
	// -2 : 2
	// 0 : 0
	// 3 : 9
}

func ExampleExpr_Sample() {
	ctx := context.Background()
	e, _ := rpnjit.CompileString(ctx, "x ! 1 +", rpnjit.WithBackend(rpnjit.Precise(0)))
	defer e.Close(ctx)
	pts, err := e.Sample(ctx, 0, 4, 1)
	if err != nil {
		panic(err)
	}
	for _, p := range pts {
		fmt.Println(p.X, ":", p.Y)
	}

	// Output:
	// 0 : 2
	// 1 : 2
	// 2 : 3
	// 3 : 7
}

func ExampleCompile_errors() {
	for _, src := range []string{"1 +", "1 2", "x @", "x y"} {
		e, err := rpnjit.CompileString(context.Background(), src)
		fmt.Println(e.OK(), err)
	}

	// Output:
	// false 3: + needs 2 operands, have 1
	// false 4: expression leaves 2 values
	// false 3: invalid character "@"
	// false 3: cannot use "y"
}
