package compiler

import (
	"math"
	"strconv"

	"github.com/gocronx/matheval/ast"
	"github.com/gocronx/matheval/instructions"
	"github.com/gocronx/matheval/internal/stack"
)

// fold walks a lowered tree bottom-up, replacing every subtree that
// contains no VarRef with a single Literal. It is the optional pass
// spec'd as not changing the evaluator's observable results: a folded
// Program and an unfolded one evaluate to the same values, the folded
// one just arrives with some arithmetic already done.
func fold(n ast.Node) ast.Node {
	switch v := n.(type) {
	case ast.Literal:
		return v

	case ast.VarRef:
		return v

	case ast.UnaryMinus:
		child := fold(v.Child)
		folded := ast.UnaryMinus{Child: child}
		return collapseIfConstant(folded)

	case ast.BinaryOp:
		left := fold(v.Left)
		right := fold(v.Right)
		folded := ast.BinaryOp{Op: v.Op, Left: left, Right: right}
		return collapseIfConstant(folded)

	case ast.Call:
		args := make([]ast.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = fold(a)
		}
		folded := ast.Call{Name: v.Name, Args: args, Fn: v.Fn, Pos: v.Pos}
		return collapseIfConstant(folded)

	default:
		return n
	}
}

// collapseIfConstant evaluates node via the postfix instruction list
// and internal/stack if (and only if) no VarRef remains beneath it.
func collapseIfConstant(node ast.Node) ast.Node {
	if hasVarRef(node) {
		return node
	}
	value, ok := evalConstant(node)
	if !ok {
		return node
	}
	return ast.Literal{Value: value}
}

func hasVarRef(n ast.Node) bool {
	switch v := n.(type) {
	case ast.VarRef:
		return true
	case ast.Literal:
		return false
	case ast.UnaryMinus:
		return hasVarRef(v.Child)
	case ast.BinaryOp:
		return hasVarRef(v.Left) || hasVarRef(v.Right)
	case ast.Call:
		for _, a := range v.Args {
			if hasVarRef(a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// evalConstant flattens node into postfix form and runs it through a
// small stack machine, interpreting the instruction stream directly
// rather than assembling it.
func evalConstant(node ast.Node) (float64, bool) {
	instrs := instructions.Flatten(node)
	st := stack.New()

	for _, ins := range instrs {
		switch ins.Type {
		case instructions.Push:
			v, err := strconv.ParseFloat(ins.Value, 64)
			if err != nil {
				return 0, false
			}
			st.Push(v)

		case instructions.LoadVar:
			// hasVarRef already rules this out; defensive only.
			return 0, false

		case instructions.Negate:
			v, err := st.Pop()
			if err != nil {
				return 0, false
			}
			st.Push(-v)

		case instructions.Plus, instructions.Minus, instructions.Multiply, instructions.Divide, instructions.Power:
			r, err := st.Pop()
			if err != nil {
				return 0, false
			}
			l, err := st.Pop()
			if err != nil {
				return 0, false
			}
			st.Push(applyBinInstr(ins.Type, l, r))

		case instructions.Call:
			args := make([]float64, ins.Argc)
			for i := ins.Argc - 1; i >= 0; i-- {
				v, err := st.Pop()
				if err != nil {
					return 0, false
				}
				args[i] = v
			}
			if ins.Fn == nil {
				return 0, false
			}
			st.Push(ins.Fn.Call(args))

		default:
			return 0, false
		}
	}

	if st.Len() != 1 {
		return 0, false
	}
	v, err := st.Pop()
	return v, err == nil
}

func applyBinInstr(t instructions.InstructionType, l, r float64) float64 {
	switch t {
	case instructions.Plus:
		return l + r
	case instructions.Minus:
		return l - r
	case instructions.Multiply:
		return l * r
	case instructions.Divide:
		return l / r
	case instructions.Power:
		return math.Pow(l, r)
	default:
		return math.NaN()
	}
}
