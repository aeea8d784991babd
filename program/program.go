// Package program holds the compiled, immutable artifact produced by
// lowering — Program — and its tree-walking evaluator.
//
// A Program is safe to share and evaluate concurrently across
// goroutines: it is read-only from the moment it leaves the compiler.
package program

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/gocronx/matheval/ast"
)

// Binder supplies a variable's value by name. *matheval.Context
// implements this interface; program does not import matheval
// directly so that Context (caller-owned) and Program (immutable,
// shareable) stay decoupled.
type Binder interface {
	Get(name string) (float64, bool)
}

// UnboundVariableError is returned by Eval/EvalInto when a Program's
// free variable has no binding in the supplied Binder.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}

// ArityError is returned by EvalBatch when a binding vector's length
// does not match the Program's variable count.
type ArityError struct {
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("binding vector has %d entries, want %d", e.Got, e.Want)
}

// Program is the compiled, immutable form of a source expression.
type Program struct {
	tree     ast.Node
	varNames []string
}

// New constructs a Program from an already-lowered tree (VarRef
// indices resolved, Call.Fn handles resolved) and its ordered free
// variable list. It is called only by the compiler package.
func New(tree ast.Node, varNames []string) *Program {
	// copy defensively: the compiler's slice must not be mutable by
	// the caller after the Program is built.
	names := make([]string, len(varNames))
	copy(names, varNames)
	return &Program{tree: tree, varNames: names}
}

// VarNames returns the Program's free variables, in first-appearance
// order. The returned slice is a fresh copy; mutating it does not
// affect the Program.
func (p *Program) VarNames() []string {
	out := make([]string, len(p.varNames))
	copy(out, p.varNames)
	return out
}

// Eval evaluates the Program against ctx, looking up each free
// variable by name. Missing bindings fail with *UnboundVariableError.
func (p *Program) Eval(ctx Binder) (float64, error) {
	return p.EvalInto(ctx, nil)
}

// EvalInto behaves like Eval but lets the caller supply the scratch
// binding-vector slice, so repeated evaluations against Programs with
// the same variable count can avoid the per-call binding-vector
// allocation. If scratch's capacity is too small a new slice is
// allocated in its place; pass nil to always allocate. Function calls
// in the tree still allocate their argument slices (see evalNode).
func (p *Program) EvalInto(ctx Binder, scratch []float64) (float64, error) {
	n := len(p.varNames)
	if cap(scratch) < n {
		scratch = make([]float64, n)
	}
	scratch = scratch[:n]

	for i, name := range p.varNames {
		v, ok := ctx.Get(name)
		if !ok {
			return 0, &UnboundVariableError{Name: name}
		}
		scratch[i] = v
	}

	return evalNode(p.tree, scratch), nil
}

// EvalBatch evaluates the Program once per binding vector in vectors,
// returning results aligned positionally with the input. Every vector
// must have exactly len(p.VarNames()) entries; on mismatch the whole
// call fails with *ArityError and no partial results are returned. An
// empty batch returns an empty, non-nil slice without error.
//
// Evaluation of distinct vectors is independent; this implementation
// parallelises across GOMAXPROCS workers, but the observable contract
// is synchronous and ordered — callers never see a goroutine.
func (p *Program) EvalBatch(vectors [][]float64) ([]float64, error) {
	n := len(p.varNames)
	for _, v := range vectors {
		if len(v) != n {
			return nil, &ArityError{Want: n, Got: len(v)}
		}
	}

	out := make([]float64, len(vectors))
	if len(vectors) == 0 {
		return out, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(vectors) {
		workers = len(vectors)
	}
	if workers <= 1 {
		for i, v := range vectors {
			out[i] = evalNode(p.tree, v)
		}
		return out, nil
	}

	var wg sync.WaitGroup
	chunk := (len(vectors) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(vectors) {
			break
		}
		end := start + chunk
		if end > len(vectors) {
			end = len(vectors)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = evalNode(p.tree, vectors[i])
			}
		}(start, end)
	}
	wg.Wait()

	return out, nil
}

// evalNode walks tree, resolving VarRef against binding by index.
// Operand and argument evaluation order is left-to-right throughout,
// which matters only for NaN propagation through max/min. Each Call
// node allocates a fresh argument slice every time it is evaluated.
func evalNode(n ast.Node, binding []float64) float64 {
	switch v := n.(type) {
	case ast.Literal:
		return v.Value

	case ast.VarRef:
		return binding[v.Index]

	case ast.UnaryMinus:
		return -evalNode(v.Child, binding)

	case ast.BinaryOp:
		l := evalNode(v.Left, binding)
		r := evalNode(v.Right, binding)
		return applyBinOp(v.Op, l, r)

	case ast.Call:
		args := make([]float64, len(v.Args))
		for i, a := range v.Args {
			args[i] = evalNode(a, binding)
		}
		return v.Fn.Call(args)

	default:
		panic(fmt.Sprintf("program: unhandled node type %T", n))
	}
}

func applyBinOp(op ast.BinOp, l, r float64) float64 {
	switch op {
	case ast.Add:
		return l + r
	case ast.Sub:
		return l - r
	case ast.Mul:
		return l * r
	case ast.Div:
		return l / r
	case ast.Pow:
		return math.Pow(l, r)
	default:
		panic("program: unhandled operator")
	}
}
