package program

import (
	"testing"

	"github.com/gocronx/matheval/ast"
	"github.com/gocronx/matheval/registry"
)

// quadratic builds (-b + sqrt(b^2 - 4*a*c)) / (2*a), a representative
// pricing-style expression, directly as a lowered tree so the
// benchmark measures only evaluation, not parsing.
func quadratic() *Program {
	sqrtD, _ := registry.Lookup("sqrt")

	a := ast.VarRef{Index: 0, Name: "a"}
	b := ast.VarRef{Index: 1, Name: "b"}
	c := ast.VarRef{Index: 2, Name: "c"}

	discriminant := ast.BinaryOp{
		Op:   ast.Sub,
		Left: ast.BinaryOp{Op: ast.Pow, Left: b, Right: ast.Literal{Value: 2}},
		Right: ast.BinaryOp{
			Op:   ast.Mul,
			Left: ast.BinaryOp{Op: ast.Mul, Left: ast.Literal{Value: 4}, Right: a},
			Right: c,
		},
	}
	numerator := ast.BinaryOp{
		Op:   ast.Add,
		Left: ast.UnaryMinus{Child: b},
		Right: ast.Call{
			Name: "sqrt",
			Fn:   sqrtD,
			Args: []ast.Node{discriminant},
		},
	}
	tree := ast.BinaryOp{
		Op:    ast.Div,
		Left:  numerator,
		Right: ast.BinaryOp{Op: ast.Mul, Left: ast.Literal{Value: 2}, Right: a},
	}

	return New(tree, []string{"a", "b", "c"})
}

func BenchmarkEval(b *testing.B) {
	p := quadratic()
	ctx := testCtx{"a": 1, "b": -5, "c": 6}
	scratch := make([]float64, len(p.VarNames()))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.EvalInto(ctx, scratch); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvalBatch(b *testing.B) {
	p := quadratic()

	const n = 10_000
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = []float64{1, -5, float64(i%5) + 1}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.EvalBatch(vectors); err != nil {
			b.Fatal(err)
		}
	}
}
