// Package matheval is a compiled expression engine: it parses a
// human-written arithmetic formula once into a *program.Program, and
// that Program can then be evaluated many times against varying
// variable bindings at near-native speed.
//
// Typical use:
//
//	p, err := matheval.Compile("(-b + sqrt(b^2 - 4*a*c)) / (2*a)")
//	ctx := matheval.NewContext()
//	ctx.Set("a", 1)
//	ctx.Set("b", -5)
//	ctx.Set("c", 6)
//	root, err := p.Eval(ctx)
//
// Language bindings, packaging, and the choice of random-number
// source for simulation callers are deliberately left to the host
// application; this package is the compile/evaluate core only.
package matheval

import (
	"github.com/gocronx/matheval/compiler"
	"github.com/gocronx/matheval/program"
)

// Program is the compiled, immutable form of a source expression,
// re-exported here so callers need only import the root package.
type Program = program.Program

// Compile parses and lowers source into a Program, or returns the
// first error encountered: *lexer.LexError, *parser.ParseError,
// *compiler.UnknownFunctionError, or *compiler.ArityError.
func Compile(source string) (*Program, error) {
	return compiler.New(source).Compile()
}

// Context is a mutable name-to-value table supplied by the caller for
// single evaluation. It carries no knowledge of any Program; the same
// Context may be reused across Programs whose variable sets overlap.
// A Context is single-owner — sharing one across goroutines is the
// caller's responsibility.
type Context struct {
	values map[string]float64
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{values: make(map[string]float64)}
}

// Set binds name to value, overwriting any previous binding.
func (c *Context) Set(name string, value float64) {
	c.values[name] = value
}

// Get returns name's bound value, or (0, false) if name is unbound.
func (c *Context) Get(name string) (float64, bool) {
	v, ok := c.values[name]
	return v, ok
}
