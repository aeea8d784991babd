// The compiler-package contains the core of our compiler.
//
// In brief we go through a three-step process:
//
//  1.  Parse the expression into an IR tree (the parser package's job).
//
//  2.  Lower that tree: intern every free variable to a dense index,
//      and resolve every function call to a direct handle from the
//      registry package. Unknown functions and arity mismatches are
//      caught here.
//
//  3.  Optionally fold variable-free subtrees down to a single
//      constant, using a small postfix stack machine (the
//      instructions and internal/stack packages).
//
// The result is a *program.Program: an immutable tree plus the ordered
// list of free variable names, ready to be evaluated many times.
package compiler

import (
	"fmt"

	"github.com/gocronx/matheval/ast"
	"github.com/gocronx/matheval/parser"
	"github.com/gocronx/matheval/program"
	"github.com/gocronx/matheval/registry"
)

// UnknownFunctionError is returned by Compile when a call site names
// a function absent from the registry.
type UnknownFunctionError struct {
	Name string
	Pos  int
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q at %d", e.Name, e.Pos)
}

// ArityError is returned by Compile when a call site's argument count
// falls outside its function's declared arity range.
type ArityError struct {
	Name     string
	Got      int
	MinArity int
	MaxArity int
	Pos      int
}

func (e *ArityError) Error() string {
	if e.MaxArity < 0 {
		return fmt.Sprintf("%s() takes at least %d argument(s), got %d (at %d)", e.Name, e.MinArity, e.Got, e.Pos)
	}
	if e.MinArity == e.MaxArity {
		return fmt.Sprintf("%s() takes exactly %d argument(s), got %d (at %d)", e.Name, e.MinArity, e.Got, e.Pos)
	}
	return fmt.Sprintf("%s() takes between %d and %d arguments, got %d (at %d)", e.Name, e.MinArity, e.MaxArity, e.Got, e.Pos)
}

// Compiler holds our object-state.
type Compiler struct {

	// expression holds the mathematical expression we're compiling.
	expression string

	// foldConstants decides whether variable-free subtrees are
	// collapsed to a single Literal after lowering. Off by default;
	// it changes nothing about the evaluator's observable results,
	// only whether some nodes arrive at evaluation time pre-computed.
	foldConstants bool
}

// New creates a new compiler, given the expression in the constructor.
func New(input string) *Compiler {
	return &Compiler{expression: input}
}

// SetConstantFolding turns the optional constant-folding pass on or
// off for subsequent calls to Compile.
func (c *Compiler) SetConstantFolding(val bool) {
	c.foldConstants = val
}

// Compile turns the input expression into a *program.Program, or
// returns the first error encountered. Errors are one of
// *lexer.LexError, *parser.ParseError, *UnknownFunctionError, or
// *ArityError.
func (c *Compiler) Compile() (*program.Program, error) {
	tree, err := parser.Parse(c.expression)
	if err != nil {
		return nil, err
	}

	lowered, names, err := lower(tree)
	if err != nil {
		return nil, err
	}

	if c.foldConstants {
		lowered = fold(lowered)
	}

	return program.New(lowered, names), nil
}

// lowering carries the variable-interning state across one post-order
// walk of the tree.
type lowering struct {
	names []string
	index map[string]int
}

// lower walks tree once, replacing every Variable with a VarRef (dense
// index, first-appearance order) and every Call's name with a
// resolved *registry.Descriptor. It returns the lowered tree and the
// ordered list of free variable names.
func lower(tree ast.Node) (ast.Node, []string, error) {
	lw := &lowering{index: make(map[string]int)}
	out, err := lw.walk(tree)
	if err != nil {
		return nil, nil, err
	}
	return out, lw.names, nil
}

func (lw *lowering) walk(n ast.Node) (ast.Node, error) {
	switch v := n.(type) {
	case ast.Literal:
		return v, nil

	case ast.Variable:
		idx, ok := lw.index[v.Name]
		if !ok {
			idx = len(lw.names)
			lw.index[v.Name] = idx
			lw.names = append(lw.names, v.Name)
		}
		return ast.VarRef{Index: idx, Name: v.Name}, nil

	case ast.UnaryMinus:
		child, err := lw.walk(v.Child)
		if err != nil {
			return nil, err
		}
		return ast.UnaryMinus{Child: child}, nil

	case ast.BinaryOp:
		left, err := lw.walk(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := lw.walk(v.Right)
		if err != nil {
			return nil, err
		}
		return ast.BinaryOp{Op: v.Op, Left: left, Right: right}, nil

	case ast.Call:
		desc, ok := registry.Lookup(v.Name)
		if !ok {
			return nil, &UnknownFunctionError{Name: v.Name, Pos: v.Pos}
		}
		if !desc.Accepts(len(v.Args)) {
			return nil, &ArityError{
				Name: v.Name, Got: len(v.Args),
				MinArity: desc.MinArity, MaxArity: desc.MaxArity, Pos: v.Pos,
			}
		}

		args := make([]ast.Node, len(v.Args))
		for i, a := range v.Args {
			la, err := lw.walk(a)
			if err != nil {
				return nil, err
			}
			args[i] = la
		}
		return ast.Call{Name: v.Name, Args: args, Fn: desc, Pos: v.Pos}, nil

	default:
		panic(fmt.Sprintf("compiler: unhandled node type %T", n))
	}
}
