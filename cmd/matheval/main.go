// This is the main-driver for matheval: a small CLI that compiles one
// expression and either evaluates it once, runs it over a batch of
// bindings read from a CSV file, dumps its parsed form as postfix
// instructions (without lowering or folding), or drives a
// throughput benchmark from a TOML config.
//
// None of this is part of the core engine's contract (package
// matheval) — it is a thin, replaceable front-end. Language bindings,
// packaging, and the choice of random-number source for simulation
// callers are left to the host application, not baked in here.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gocronx/matheval"
	"github.com/gocronx/matheval/compiler"
	"github.com/gocronx/matheval/instructions"
	"github.com/gocronx/matheval/parser"
)

// varFlags collects repeated "-var name=value" flags into a slice.
type varFlags []string

func (v *varFlags) String() string { return strings.Join(*v, ",") }
func (v *varFlags) Set(s string) error {
	*v = append(*v, s)
	return nil
}

func main() {
	expr := flag.String("expr", "", "The expression to compile.")
	batch := flag.String("batch", "", "Path to a CSV file of binding vectors, one per line, to evaluate in batch.")
	bench := flag.String("bench", "", "Path to a TOML bench config; runs a throughput benchmark instead of evaluating once.")
	dump := flag.Bool("dump", false, "Print the parsed expression's postfix instruction listing instead of evaluating it.")
	fold := flag.Bool("fold", false, "Enable constant folding at compile time.")

	var vars varFlags
	flag.Var(&vars, "var", "A name=value variable binding; may be repeated.")

	flag.Parse()

	if *bench != "" {
		if err := runBench(*bench); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	if *expr == "" {
		fmt.Fprintf(os.Stderr, "Usage: matheval -expr 'expression' [-var name=value ...] [-batch file.csv] [-dump] [-fold]\n")
		os.Exit(1)
	}

	if *dump {
		tree, err := parser.Parse(*expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing %q: %s\n", *expr, err)
			os.Exit(1)
		}
		for _, ins := range instructions.Flatten(tree) {
			fmt.Println(ins.String())
		}
		return
	}

	c := compiler.New(*expr)
	c.SetConstantFolding(*fold)

	prog, err := c.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling %q: %s\n", *expr, err)
		os.Exit(1)
	}

	if *batch != "" {
		if err := runBatch(prog, *batch); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	ctx := matheval.NewContext()
	for _, kv := range vars {
		name, value, err := parseVarFlag(kv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		ctx.Set(name, value)
	}

	result, err := prog.Eval(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating %q: %s\n", *expr, err)
		os.Exit(1)
	}
	fmt.Printf("%g\n", result)
}

func parseVarFlag(kv string) (string, float64, error) {
	parts := strings.SplitN(kv, "=", 2)
	if len(parts) != 2 {
		return "", 0, errors.Errorf("malformed -var %q, expected name=value", kv)
	}
	v, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, errors.Wrapf(err, "malformed -var %q", kv)
	}
	return parts[0], v, nil
}

// runBatch reads one comma-separated binding vector per line of path
// and prints the corresponding result, one per line.
func runBatch(prog *matheval.Program, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening batch file %q", path)
	}
	defer f.Close()

	var vectors [][]float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		vec := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return errors.Wrapf(err, "parsing batch line %q", line)
			}
			vec[i] = v
		}
		vectors = append(vectors, vec)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "reading batch file %q", path)
	}

	results, err := prog.EvalBatch(vectors)
	if err != nil {
		return errors.Wrap(err, "evaluating batch")
	}
	for _, r := range results {
		fmt.Printf("%g\n", r)
	}
	return nil
}

// runBench compiles cfg's expression once and evaluates it
// cfg.Iterations times against uniformly-random bindings within each
// variable's configured range, reporting total time and a per-call
// average.
func runBench(path string) error {
	cfg, err := loadBenchConfig(path)
	if err != nil {
		return err
	}

	prog, err := matheval.Compile(cfg.Expression)
	if err != nil {
		return errors.Wrapf(err, "compiling %q", cfg.Expression)
	}

	names := prog.VarNames()
	ranges := make([][2]float64, len(names))
	for i, n := range names {
		r, ok := cfg.Variables[n]
		if !ok {
			return errors.Errorf("bench config is missing a range for variable %q", n)
		}
		ranges[i] = r
	}

	rng := rand.New(rand.NewSource(1))
	vectors := make([][]float64, cfg.Iterations)
	for i := range vectors {
		vec := make([]float64, len(names))
		for j, r := range ranges {
			vec[j] = r[0] + rng.Float64()*(r[1]-r[0])
		}
		vectors[i] = vec
	}

	start := time.Now()
	results, err := prog.EvalBatch(vectors)
	elapsed := time.Since(start)
	if err != nil {
		return errors.Wrap(err, "evaluating batch")
	}

	fmt.Printf("expression:   %s\n", cfg.Expression)
	fmt.Printf("iterations:   %d\n", len(results))
	fmt.Printf("total time:   %s\n", elapsed)
	fmt.Printf("per-call avg: %s\n", elapsed/time.Duration(len(results)))
	return nil
}
