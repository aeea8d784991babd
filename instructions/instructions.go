// Package instructions flattens an ast.Node expression tree into a
// linear, stack-machine-shaped instruction list.
//
// Two things consume this flat form: the compiler package's constant
// folder, which runs a variable-free subtree through stack.Stack to
// collapse it to a single Literal, and the CLI's "-dump" flag, which
// prints a parsed (not yet lowered) tree in the same postfix notation
// a human reading a disassembly would expect.
package instructions

import (
	"fmt"
	"strconv"

	"github.com/gocronx/matheval/ast"
	"github.com/gocronx/matheval/registry"
)

// InstructionType holds the type of the instruction.
type InstructionType byte

const (
	// Push pushes a constant value onto the stack.
	Push InstructionType = 'p'

	// LoadVar pushes the value of a bound variable onto the stack.
	LoadVar InstructionType = 'v'

	// Plus pops two items and pushes their sum.
	Plus InstructionType = '+'

	// Minus pops two items and pushes their difference.
	Minus InstructionType = '-'

	// Multiply pops two items and pushes their product.
	Multiply InstructionType = '*'

	// Divide pops two items and pushes their quotient.
	Divide InstructionType = '/'

	// Power pops two items and pushes the first raised to the power
	// of the second.
	Power InstructionType = '^'

	// Negate pops one item and pushes its negation.
	Negate InstructionType = 'n'

	// Call pops Argc items and pushes the result of invoking the
	// named function on them.
	Call InstructionType = 'f'
)

// Instruction is a single flattened step. Value holds a literal's
// text, Name holds a variable's or function's name, Argc holds a Call
// instruction's argument count, and Fn carries the already-resolved
// function handle for a Call produced from a lowered tree (nil for a
// Call flattened before lowering, e.g. for a pre-lowering dump).
type Instruction struct {
	Type  InstructionType
	Value string
	Name  string
	Argc  int
	Fn    *registry.Descriptor
}

// String renders the instruction the way a human disassembly would:
// one mnemonic per line, in the postfix order it was flattened.
func (i Instruction) String() string {
	switch i.Type {
	case Push:
		return fmt.Sprintf("push %s", i.Value)
	case LoadVar:
		return fmt.Sprintf("load %s", i.Name)
	case Plus:
		return "add"
	case Minus:
		return "sub"
	case Multiply:
		return "mul"
	case Divide:
		return "div"
	case Power:
		return "pow"
	case Negate:
		return "neg"
	case Call:
		return fmt.Sprintf("call %s/%d", i.Name, i.Argc)
	default:
		return "???"
	}
}

// Flatten performs a post-order walk of tree, emitting one
// Instruction per node. node must be built from this package's sibling
// ast package; VarRef nodes flatten to LoadVar, unresolved Variable
// nodes flatten the same way (by name) so the dump is readable before
// lowering too.
func Flatten(node ast.Node) []Instruction {
	var out []Instruction
	flatten(node, &out)
	return out
}

func flatten(node ast.Node, out *[]Instruction) {
	switch n := node.(type) {
	case ast.Literal:
		*out = append(*out, Instruction{Type: Push, Value: strconv.FormatFloat(n.Value, 'g', -1, 64)})

	case ast.Variable:
		*out = append(*out, Instruction{Type: LoadVar, Name: n.Name})

	case ast.VarRef:
		*out = append(*out, Instruction{Type: LoadVar, Name: n.Name})

	case ast.UnaryMinus:
		flatten(n.Child, out)
		*out = append(*out, Instruction{Type: Negate})

	case ast.BinaryOp:
		flatten(n.Left, out)
		flatten(n.Right, out)
		*out = append(*out, Instruction{Type: binOpInstr(n.Op)})

	case ast.Call:
		for _, a := range n.Args {
			flatten(a, out)
		}
		*out = append(*out, Instruction{Type: Call, Name: n.Name, Argc: len(n.Args), Fn: n.Fn})

	default:
		panic(fmt.Sprintf("instructions: unhandled node type %T", node))
	}
}

func binOpInstr(op ast.BinOp) InstructionType {
	switch op {
	case ast.Add:
		return Plus
	case ast.Sub:
		return Minus
	case ast.Mul:
		return Multiply
	case ast.Div:
		return Divide
	case ast.Pow:
		return Power
	default:
		panic("instructions: unhandled operator")
	}
}
