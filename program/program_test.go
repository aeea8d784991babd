package program

import (
	"math"
	"testing"

	"github.com/gocronx/matheval/ast"
	"github.com/gocronx/matheval/registry"
)

// testCtx is a minimal Binder used to exercise Program without
// depending on the matheval root package (which itself depends on
// this one), avoiding an import cycle in tests.
type testCtx map[string]float64

func (c testCtx) Get(name string) (float64, bool) {
	v, ok := c[name]
	return v, ok
}

func TestEvalLiteralAndArith(t *testing.T) {
	// 1 + 2 * 3
	tree := ast.BinaryOp{
		Op:   ast.Add,
		Left: ast.Literal{Value: 1},
		Right: ast.BinaryOp{
			Op:    ast.Mul,
			Left:  ast.Literal{Value: 2},
			Right: ast.Literal{Value: 3},
		},
	}
	p := New(tree, nil)
	got, err := p.Eval(testCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestEvalVariables(t *testing.T) {
	// x + y
	tree := ast.BinaryOp{
		Op:    ast.Add,
		Left:  ast.VarRef{Index: 0, Name: "x"},
		Right: ast.VarRef{Index: 1, Name: "y"},
	}
	p := New(tree, []string{"x", "y"})

	got, err := p.Eval(testCtx{"x": 10, "y": 20})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != 30 {
		t.Fatalf("got %v, want 30", got)
	}
}

func TestEvalUnboundVariable(t *testing.T) {
	tree := ast.BinaryOp{
		Op:    ast.Add,
		Left:  ast.VarRef{Index: 0, Name: "x"},
		Right: ast.VarRef{Index: 1, Name: "y"},
	}
	p := New(tree, []string{"x", "y"})

	_, err := p.Eval(testCtx{"x": 10})
	if err == nil {
		t.Fatalf("expected an error for the missing 'y' binding")
	}
	unbound, ok := err.(*UnboundVariableError)
	if !ok {
		t.Fatalf("expected *UnboundVariableError, got %T", err)
	}
	if unbound.Name != "y" {
		t.Fatalf("expected the unbound name to be 'y', got %q", unbound.Name)
	}
}

func TestEvalCall(t *testing.T) {
	maxD, _ := registry.Lookup("max")
	minD, _ := registry.Lookup("min")

	// max(1, 2, 3) + min(4, 5)
	tree := ast.BinaryOp{
		Op: ast.Add,
		Left: ast.Call{
			Name: "max",
			Fn:   maxD,
			Args: []ast.Node{ast.Literal{Value: 1}, ast.Literal{Value: 2}, ast.Literal{Value: 3}},
		},
		Right: ast.Call{
			Name: "min",
			Fn:   minD,
			Args: []ast.Node{ast.Literal{Value: 4}, ast.Literal{Value: 5}},
		},
	}
	p := New(tree, nil)
	got, err := p.Eval(testCtx{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestEvalDivisionByZeroIsIEEE754(t *testing.T) {
	tree := ast.BinaryOp{Op: ast.Div, Left: ast.Literal{Value: 1}, Right: ast.Literal{Value: 0}}
	p := New(tree, nil)
	got, err := p.Eval(testCtx{})
	if err != nil {
		t.Fatalf("division by zero must not be an error, got %s", err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf, got %v", got)
	}
}

func TestEvalBatch(t *testing.T) {
	// x * 2 + y
	tree := ast.BinaryOp{
		Op:   ast.Add,
		Left: ast.BinaryOp{Op: ast.Mul, Left: ast.VarRef{Index: 0, Name: "x"}, Right: ast.Literal{Value: 2}},
		Right: ast.VarRef{Index: 1, Name: "y"},
	}
	p := New(tree, []string{"x", "y"})

	results, err := p.EvalBatch([][]float64{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []float64{4, 10, 16}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %v, want %v", i, results[i], want[i])
		}
	}
}

func TestEvalBatchEmpty(t *testing.T) {
	p := New(ast.Literal{Value: 1}, nil)
	results, err := p.EvalBatch(nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected an empty slice, got %v", results)
	}
}

func TestEvalBatchArityMismatch(t *testing.T) {
	tree := ast.BinaryOp{
		Op:   ast.Add,
		Left: ast.BinaryOp{Op: ast.Mul, Left: ast.VarRef{Index: 0, Name: "x"}, Right: ast.Literal{Value: 2}},
		Right: ast.VarRef{Index: 1, Name: "y"},
	}
	p := New(tree, []string{"x", "y"})

	_, err := p.EvalBatch([][]float64{{1.0}})
	if err == nil {
		t.Fatalf("expected an ArityError")
	}
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("expected *ArityError, got %T", err)
	}
}

// EvalBatch results must match looping Eval one binding at a time —
// the parallel batch path must not change the numbers it produces.
func TestEvalBatchMatchesEval(t *testing.T) {
	tree := ast.BinaryOp{
		Op:   ast.Add,
		Left: ast.BinaryOp{Op: ast.Mul, Left: ast.VarRef{Index: 0, Name: "x"}, Right: ast.Literal{Value: 2}},
		Right: ast.VarRef{Index: 1, Name: "y"},
	}
	p := New(tree, []string{"x", "y"})

	vectors := make([][]float64, 500)
	for i := range vectors {
		vectors[i] = []float64{float64(i), float64(i) * 0.5}
	}

	batch, err := p.EvalBatch(vectors)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	for i, v := range vectors {
		want, err := p.Eval(testCtx{"x": v[0], "y": v[1]})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if batch[i] != want {
			t.Fatalf("batch[%d] = %v, want %v", i, batch[i], want)
		}
	}
}

func TestVarNamesIsDefensiveCopy(t *testing.T) {
	p := New(ast.Literal{Value: 1}, []string{"x", "y"})
	names := p.VarNames()
	names[0] = "mutated"

	if p.VarNames()[0] != "x" {
		t.Fatalf("mutating the returned slice must not affect the Program")
	}
}
