// Package cmd wires the compiler driver into a cobra CLI: a single
// positional <file>.c argument plus the stage-stop flags described for
// the driver (--lex, --parse, --tacky, --codegen, -S).
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arnvindr/subcc/internal/config"
	"github.com/arnvindr/subcc/internal/driver"
)

var (
	flagLex     bool
	flagParse   bool
	flagTacky   bool
	flagCodegen bool
	flagAsmOnly bool
	flagOutput  string
	flagConfig  string
)

// Root is the top-level `subcc` command.
var Root = &cobra.Command{
	Use:   "subcc <file.c>",
	Short: "subcc compiles a small subset of C to x86-64 assembly",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	Root.Flags().BoolVar(&flagLex, "lex", false, "stop after lexing")
	Root.Flags().BoolVar(&flagParse, "parse", false, "stop after parsing")
	Root.Flags().BoolVar(&flagTacky, "tacky", false, "stop after TAC lowering")
	Root.Flags().BoolVar(&flagCodegen, "codegen", false, "stop after assembly generation")
	Root.Flags().BoolVarP(&flagAsmOnly, "assembly-only", "S", false, "emit assembly but do not assemble/link")
	Root.Flags().StringVarP(&flagOutput, "output", "o", "", "output file path")
	Root.Flags().StringVar(&flagConfig, "config", ".subccrc.toml", "path to a project config file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	stage, err := stopStageFromFlags()
	if err != nil {
		return err
	}

	output := flagOutput
	if output == "" && !flagAsmOnly {
		output = defaultOutputName(sourcePath, cfg)
	}

	_, err = driver.Run(driver.Options{
		SourcePath:   sourcePath,
		StopAfter:    stage,
		AssemblyOnly: flagAsmOnly,
		OutputPath:   output,
		Config:       cfg,
	})
	return err
}

// stopStageFromFlags enforces that at most one stage-stop flag was
// given; cobra does not itself model mutually exclusive booleans with
// a custom validation message, so this is checked explicitly.
func stopStageFromFlags() (driver.Stage, error) {
	set := 0
	var stage driver.Stage

	check := func(flag bool, s driver.Stage) {
		if flag {
			set++
			stage = s
		}
	}
	check(flagLex, driver.StageLex)
	check(flagParse, driver.StageParse)
	check(flagTacky, driver.StageTacky)
	check(flagCodegen, driver.StageCodegen)

	if set > 1 {
		return "", fmt.Errorf("at most one of --lex, --parse, --tacky, --codegen may be given")
	}
	return stage, nil
}

func defaultOutputName(sourcePath string, cfg config.Config) string {
	base := filepath.Base(sourcePath)
	trimmed := base[:len(base)-len(filepath.Ext(base))]
	if trimmed == "" {
		return cfg.OutputName
	}
	return trimmed
}
