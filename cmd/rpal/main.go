// Command rpal runs the RPAL interpreter over a single source file.
//
// Grounded on the teacher's cmd/msg/main.go: flag-based subcommand shape,
// os.ReadFile then parse-then-run, non-zero exit codes with a stderr
// diagnostic, and the same ANSI-coloring approach for diagnostics (only a
// red helper is defined here). The teacher's REPL (peterh/liner, history file, banner) is
// deliberately not ported — an interactive REPL is an explicit non-goal
// (spec.md §1), so this CLI only ever evaluates a file and exits.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/neerajrao/rpal-interpreter"
)

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("rpal", flag.ContinueOnError)
	printSource := fs.Bool("l", false, "print the source verbatim before evaluation")
	printAST := fs.Bool("ast", false, "print the surface AST and exit without evaluating")
	printST := fs.Bool("st", false, "print the standardized AST and exit without evaluating")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rpal [-l] [-ast] [-st] <input-file>\n")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	file := fs.Arg(0)

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", "rpal", file, err)
		return 1
	}
	source := string(src)

	if *printSource {
		fmt.Println(source)
	}

	root, err := parseProgram(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(rpal.WrapErrorWithSource(err, source)))
		return 1
	}
	if *printAST {
		fmt.Print(rpal.FormatAST(root))
		return 0
	}

	if err := rpal.Standardize(root); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	if *printST {
		fmt.Print(rpal.FormatAST(root))
		return 0
	}

	prim := rpal.NewPrimitiveEnvironment()
	delta0 := rpal.BuildControl(root, prim)

	result, err := rpal.Run(delta0)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	_ = result // the program's printed output (via Print) is the visible result
	return 0
}

func parseProgram(source string) (*rpal.ASTNode, error) {
	tokens, err := rpal.NewLexer(source).Scan()
	if err != nil {
		return nil, err
	}
	root, err := rpal.NewParser(tokens).ParseProgram()
	if err != nil {
		return nil, err
	}
	return root, nil
}
