// Package registry holds the fixed table of built-in functions that
// calls in an expression resolve against. The table is built once,
// at package initialisation, and is read-only thereafter — concurrent
// lookups from many goroutines are safe.
package registry

import "math"

// Descriptor describes one built-in function: its name (as it appears
// in source), its arity range, and the computation itself.
type Descriptor struct {
	Name     string
	MinArity int
	MaxArity int // -1 means unbounded (variadic)
	Call     func(args []float64) float64
}

// Accepts reports whether n arguments satisfy this descriptor's arity.
func (d *Descriptor) Accepts(n int) bool {
	if n < d.MinArity {
		return false
	}
	if d.MaxArity >= 0 && n > d.MaxArity {
		return false
	}
	return true
}

var table = map[string]*Descriptor{}

func register(d *Descriptor) {
	table[d.Name] = d
}

// Lookup returns the descriptor for name, or (nil, false) if no
// built-in by that name exists.
func Lookup(name string) (*Descriptor, bool) {
	d, ok := table[name]
	return d, ok
}

func init() {
	register(&Descriptor{Name: "max", MinArity: 1, MaxArity: -1, Call: maxFn})
	register(&Descriptor{Name: "min", MinArity: 1, MaxArity: -1, Call: minFn})
	register(&Descriptor{Name: "sqrt", MinArity: 1, MaxArity: 1, Call: unary(math.Sqrt)})
	register(&Descriptor{Name: "abs", MinArity: 1, MaxArity: 1, Call: unary(math.Abs)})
	register(&Descriptor{Name: "sin", MinArity: 1, MaxArity: 1, Call: unary(math.Sin)})
	register(&Descriptor{Name: "cos", MinArity: 1, MaxArity: 1, Call: unary(math.Cos)})
	register(&Descriptor{Name: "tan", MinArity: 1, MaxArity: 1, Call: unary(math.Tan)})
	register(&Descriptor{Name: "exp", MinArity: 1, MaxArity: 1, Call: unary(math.Exp)})
	register(&Descriptor{Name: "log", MinArity: 1, MaxArity: 1, Call: unary(math.Log)})
	register(&Descriptor{Name: "floor", MinArity: 1, MaxArity: 1, Call: unary(math.Floor)})
	register(&Descriptor{Name: "ceil", MinArity: 1, MaxArity: 1, Call: unary(math.Ceil)})
	register(&Descriptor{Name: "pow", MinArity: 2, MaxArity: 2, Call: func(args []float64) float64 {
		return math.Pow(args[0], args[1])
	}})
}

// unary lifts a single-argument math.* function into the
// []float64 -> float64 shape every descriptor carries.
func unary(f func(float64) float64) func([]float64) float64 {
	return func(args []float64) float64 {
		return f(args[0])
	}
}

// maxFn returns the greatest argument, scanning left-to-right so that
// a NaN operand propagates in evaluation order rather than being
// silently skipped.
func maxFn(args []float64) float64 {
	best := args[0]
	for _, v := range args[1:] {
		if math.IsNaN(best) {
			return best
		}
		if v > best || math.IsNaN(v) {
			best = v
		}
	}
	return best
}

// minFn returns the least argument, with the same left-to-right NaN
// propagation as maxFn.
func minFn(args []float64) float64 {
	best := args[0]
	for _, v := range args[1:] {
		if math.IsNaN(best) {
			return best
		}
		if v < best || math.IsNaN(v) {
			best = v
		}
	}
	return best
}
