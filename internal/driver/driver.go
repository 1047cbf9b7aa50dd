// Package driver orchestrates the four-stage compiler pipeline end to
// end: it shells out to an external preprocessor and assembler/linker
// around the pure compiler stages, optionally stopping after a named
// stage. The driver owns no long-lived handles -- every temp file it
// creates is removed on both success and failure, unless
// Config.KeepTemps is set, in which case the temp files are left on
// disk.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arnvindr/subcc/internal/ast"
	"github.com/arnvindr/subcc/internal/codegen"
	"github.com/arnvindr/subcc/internal/config"
	"github.com/arnvindr/subcc/internal/lexer"
	"github.com/arnvindr/subcc/internal/source"
	"github.com/arnvindr/subcc/internal/tacky"
	"github.com/arnvindr/subcc/internal/token"
)

// Stage names a point in the pipeline the driver can stop after.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageTacky   Stage = "tacky"
	StageCodegen Stage = "codegen"
)

// StageError wraps an underlying stage failure with the name of the
// stage that produced it, matching the diagnostic format described
// for the CLI: a stage name plus the error.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options configures a single compilation run.
type Options struct {
	// SourcePath is the .c file to compile.
	SourcePath string

	// StopAfter, if non-empty, ends the run successfully right after
	// the named stage instead of continuing to assembly text /
	// linking.
	StopAfter Stage

	// AssemblyOnly corresponds to -S: emit the .s file but do not
	// assemble or link it into an executable.
	AssemblyOnly bool

	// OutputPath names the produced executable (or, with
	// AssemblyOnly, the produced .s file). Empty means derive it from
	// SourcePath.
	OutputPath string

	Config config.Config
}

// Result carries whatever intermediate representations were produced
// before the run stopped, plus the final assembly text when the
// pipeline ran to completion.
type Result struct {
	Tokens   []token.Token
	Program  *ast.Program
	IR       *tacky.Program
	Assembly *codegen.Program
	AsmText  string

	// ExecutablePath is set when a binary was actually linked.
	ExecutablePath string
}

// Run executes the pipeline described by opts.
func Run(opts Options) (*Result, error) {
	if !strings.HasSuffix(opts.SourcePath, ".c") {
		return nil, &StageError{Stage: "driver", Err: fmt.Errorf("source file %q must end in .c", opts.SourcePath)}
	}

	preprocessed, cleanup, err := preprocess(opts.Config, opts.SourcePath, opts.Config.KeepTemps)
	if err != nil {
		return nil, &StageError{Stage: "preprocess", Err: err}
	}
	defer cleanup()

	text, err := source.Read(preprocessed)
	if err != nil {
		return nil, &StageError{Stage: "read", Err: err}
	}

	return compileText(text, opts)
}

// compileText runs the pure compiler stages (lex through printing)
// over already-preprocessed source text, then -- unless the run
// stopped early -- hands the result to the external assembler/linker.
// Splitting this out of Run lets the pipeline stages be exercised
// without shelling out to a real preprocessor.
func compileText(text string, opts Options) (*Result, error) {
	result := &Result{}

	toks, err := lexer.Lex(text)
	if err != nil {
		return nil, &StageError{Stage: "lex", Err: err}
	}
	result.Tokens = toks
	if opts.StopAfter == StageLex {
		return result, nil
	}

	prog, err := ast.Parse(toks)
	if err != nil {
		return nil, &StageError{Stage: "parse", Err: err}
	}
	result.Program = prog
	if opts.StopAfter == StageParse {
		return result, nil
	}

	ir, err := tacky.Lower(prog)
	if err != nil {
		return nil, &StageError{Stage: "tacky", Err: err}
	}
	result.IR = ir
	if opts.StopAfter == StageTacky {
		return result, nil
	}

	abstractAsm, err := codegen.Select(ir)
	if err != nil {
		return nil, &StageError{Stage: "codegen", Err: err}
	}
	abstractAsm = codegen.ReplacePseudoRegisters(abstractAsm)
	abstractAsm = codegen.Legalize(abstractAsm)
	result.Assembly = abstractAsm
	if opts.StopAfter == StageCodegen {
		return result, nil
	}

	asmText, err := codegen.Print(abstractAsm)
	if err != nil {
		return nil, &StageError{Stage: "print", Err: err}
	}
	result.AsmText = asmText

	asmPath := opts.OutputPath
	if opts.AssemblyOnly {
		if asmPath == "" {
			asmPath = withExt(opts.SourcePath, ".s")
		}
		if err := os.WriteFile(asmPath, []byte(asmText), 0o644); err != nil {
			return nil, &StageError{Stage: "write", Err: err}
		}
		return result, nil
	}

	tmpAsm, cleanupAsm, err := writeTempAsm(asmText, opts.Config.KeepTemps)
	if err != nil {
		return nil, &StageError{Stage: "write", Err: err}
	}
	defer cleanupAsm()

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = withoutExt(opts.SourcePath)
	}
	if err := assemble(opts.Config, tmpAsm, outPath); err != nil {
		return nil, &StageError{Stage: "assemble", Err: err}
	}
	result.ExecutablePath = outPath

	return result, nil
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func withoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// preprocess runs `CC -E -P src -o tmp.i`, returning the temp file
// path and a cleanup func. The temp file is only kept when keep is
// true (useful while debugging a failing compile).
func preprocess(cfg config.Config, srcPath string, keep bool) (string, func(), error) {
	tmp, err := os.CreateTemp("", "subcc-*.i")
	if err != nil {
		return "", func() {}, err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	cleanup := func() {
		if !keep {
			os.Remove(tmpPath)
		}
	}

	cmd := exec.Command(cfg.CC, "-E", "-P", srcPath, "-o", tmpPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		return "", func() {}, err
	}

	return tmpPath, cleanup, nil
}

func writeTempAsm(asmText string, keep bool) (string, func(), error) {
	tmp, err := os.CreateTemp("", "subcc-*.s")
	if err != nil {
		return "", func() {}, err
	}
	defer tmp.Close()

	path := tmp.Name()
	cleanup := func() {
		if !keep {
			os.Remove(path)
		}
	}

	if _, err := tmp.WriteString(asmText); err != nil {
		cleanup()
		return "", func() {}, err
	}

	return path, cleanup, nil
}

// assemble runs `CC asmPath -o outPath`, turning the generated
// assembly into a runnable ELF binary.
func assemble(cfg config.Config, asmPath, outPath string) error {
	cmd := exec.Command(cfg.CC, asmPath, "-o", outPath)
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
