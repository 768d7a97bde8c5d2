// Package compiler ties the front end (lexer, parser) to the back end
// (the per-architecture code generator) into the single public Compile
// entry point.
//
// The pipeline mirrors the teacher's three-step shape (tokenize, lower
// to an internal form, emit) generalized from "one RPN expression, one
// architecture" to "a parsed syntax tree, two architectures, two
// object-file conventions": parse the whole source into an *ast.Program,
// then walk it once per spec §4.4, seeding globals into the symbol table
// before any function body is generated and resetting the table back to
// just those globals between functions.
package compiler

import (
	"github.com/skx/subc/ast"
	"github.com/skx/subc/parser"
)

// Compiler holds the state needed to turn one source file into assembly
// text for a given Target.
type Compiler struct {
	source string
	target Target

	// debug, if set, inserts a breakpoint trap at the start of every
	// generated function body - this mirrors the teacher's -debug flag
	// (math-compiler's "int 03" insertion) and is not part of spec's
	// CLI surface; it is a development aid, wired to the CLI's --debug
	// flag.
	debug bool

	// shortCircuit selects the spec §9 "fixed" lowering for && / || -
	// branch before evaluating the right operand, so a false left-hand
	// side of && (or true left-hand side of ||) skips the right operand
	// entirely. When false (the default) the generator reproduces the
	// spec's documented as-is behavior: both sides are always evaluated,
	// and only the boolean combination observes short-circuit rules.
	shortCircuit bool
}

// New creates a Compiler over source, targeting target.
func New(source string, target Target) *Compiler {
	return &Compiler{source: source, target: target}
}

// SetDebug toggles emission of a debug breakpoint at each function entry.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// SetShortCircuit selects the spec §9 "fixed" (branch-before-evaluating)
// lowering for && and ||. The default, false, keeps the spec's
// documented as-is behavior (evaluate-both-sides).
func (c *Compiler) SetShortCircuit(val bool) {
	c.shortCircuit = val
}

// Parse parses the source into a syntax tree without generating code -
// exposed so callers (main, jsonast) can walk the tree without forcing a
// target-specific compile, per spec §6's --dump-ast mode.
func (c *Compiler) Parse() (*ast.Program, error) {
	return parser.Parse(c.source)
}

// Compile parses the source and generates assembly text for c's target.
func (c *Compiler) Compile() (string, error) {
	prog, err := c.Parse()
	if err != nil {
		return "", err
	}

	gen := newGenerator(c.target, c.debug, c.shortCircuit)
	return gen.Generate(prog)
}
