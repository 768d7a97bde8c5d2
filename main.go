// Command subc compiles a single source file to native assembly for one
// of two instruction-set families, optionally invoking the system
// toolchain to assemble and link it into an executable (spec §6).
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skx/subc/compiler"
	cerrors "github.com/skx/subc/errors"
	"github.com/skx/subc/jsonast"
)

var (
	outputPath   string
	stopAtAsm    bool
	dumpAST      bool
	debugTraps   bool
	shortCircuit bool
)

var rootCmd = &cobra.Command{
	Use:   "subc INPUT",
	Short: "subc compiles a restricted C dialect to native assembly",
	Long: `subc is a self-contained compiler for a restricted dialect of a
C-like imperative language. It lexes, parses, and resolves a single
source file and either emits native assembly text for the host's
instruction-set family and object-file convention, or, with
--dump-ast, a JSON serialization of the parsed syntax tree.

By default the generated assembly is assembled and linked into an
executable by invoking the system toolchain ("cc"). Pass -S to stop
after assembly generation.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path (default: input stem)")
	rootCmd.Flags().BoolVarP(&stopAtAsm, "S", "S", false, "stop after generating assembly; do not assemble/link")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "emit the parsed syntax tree as JSON and exit before code generation")
	rootCmd.Flags().BoolVar(&debugTraps, "debug", false, "insert a debug trap at the start of every generated function")
	rootCmd.Flags().BoolVar(&shortCircuit, "short-circuit-fix", false, "use the branch-before-evaluating-right lowering for && and || (see spec §9)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", formatTopLevelError(err))
		os.Exit(1)
	}
}

// formatTopLevelError renders err for the diagnostic stream. CompileErrors
// already carry spec §7's exact wire format; anything else (I/O failures,
// toolchain failures) has no source position by construction and is
// reported as a plain "Error: <message>" line.
func formatTopLevelError(err error) string {
	if _, ok := err.(*cerrors.CompileError); ok {
		return err.Error()
	}
	return fmt.Sprintf("Error: %s", err)
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("cannot open input %q: %w", inputPath, err)
	}

	comp := compiler.New(string(source), compiler.DetectTarget())
	comp.SetDebug(debugTraps)
	comp.SetShortCircuit(shortCircuit)

	stem := stemOf(inputPath)

	if dumpAST {
		prog, err := comp.Parse()
		if err != nil {
			return err
		}
		out := jsonast.Dump(prog)
		return writeDumpOutput(out)
	}

	asm, err := comp.Compile()
	if err != nil {
		return err
	}

	if stopAtAsm {
		asmPath := outputPath
		if asmPath == "" {
			asmPath = stem + ".s"
		}
		return os.WriteFile(asmPath, []byte(asm), 0644)
	}

	asmPath := stem + ".s"
	if err := os.WriteFile(asmPath, []byte(asm), 0644); err != nil {
		return fmt.Errorf("cannot write %q: %w", asmPath, err)
	}

	exePath := outputPath
	if exePath == "" {
		exePath = stem
	}
	return link(asmPath, exePath)
}

// writeDumpOutput writes the --dump-ast JSON to -o if given, stdout
// otherwise, per spec §6.
func writeDumpOutput(out string) error {
	if outputPath == "" {
		_, err := fmt.Fprintln(os.Stdout, out)
		return err
	}
	return os.WriteFile(outputPath, []byte(out+"\n"), 0644)
}

// link is the one trivial external collaborator spec §1 excludes from the
// core: it shells out to the system toolchain, exactly the invocation
// spec §6 specifies.
func link(asmPath, exePath string) error {
	cc := exec.Command("cc", "-o", exePath, asmPath, "-lc")
	cc.Stdout = os.Stdout
	cc.Stderr = os.Stderr
	if err := cc.Run(); err != nil {
		return fmt.Errorf("assemble/link failed: %w", err)
	}
	return nil
}

// stemOf returns the input path's filename without its extension, per
// spec §6's "default output base is the input file's stem".
func stemOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}
