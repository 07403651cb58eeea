package cli

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"
	"github.com/spf13/cobra"

	"github.com/ashwinstar/gpdb/internal/codegen"
	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config string
	N      uint32
}

// RunResult is the success payload of the run command.
type RunResult struct {
	Function string `json:"function"`
	Input    uint32 `json:"input"`
	Output   uint32 `json:"output"`
	OptLevel string `json:"opt_level"`
}

// String renders the text form of the result.
func (r RunResult) String() string {
	return fmt.Sprintf("%s(%d) = %d [opt=%s]", r.Function, r.Input, r.Output, r.OptLevel)
}

// NewRunCommand creates the run command: generate, compile and execute a
// demonstration function end to end.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and execute a demonstration function",
		Long: `Run exercises the full lifecycle: it generates a recursive factorial,
optimizes and compiles the module, then executes the compiled function.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "YAML config path")
	cmd.Flags().Uint32VarP(&opts.N, "n", "n", 7, "factorial argument")

	return cmd
}

func runRun(opts *RunOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := DefaultConfig()
	if opts.Config != "" {
		var err error
		if cfg, err = LoadConfig(opts.Config); err != nil {
			formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid config", err)
		}
	}

	codegen.InitGlobal()
	g := codegen.NewGenerator("factorial_demo")
	buildFactorial(g)
	formatter.VerboseLog("Generated module:\n%s", g.DumpIR())

	if cfg.VerifyOnly {
		if err := g.Optimize(cfg.Level(), codegen.VerifyOnly()); err != nil {
			formatter.Error(ErrCodeCompile, err.Error(), nil)
			return WrapExitError(ExitFailure, "verification failed", err)
		}
		return formatter.Success("module verified")
	}

	prep := codegen.WithOptimizeOptions(codegen.WithSizeLevel(cfg.Size()))
	if err := g.PrepareForExecution(cfg.Level(), prep); err != nil {
		formatter.Error(ErrCodeCompile, err.Error(), nil)
		return WrapExitError(ExitFailure, "compilation failed", err)
	}
	factorial, ok := codegen.Bind[func(uint32) uint32](g, "factorial")
	if !ok {
		formatter.Error(ErrCodeCompile, "factorial did not survive compilation", nil)
		return WrapExitError(ExitFailure, "missing function", nil)
	}

	return formatter.Success(RunResult{
		Function: "factorial",
		Input:    opts.N,
		Output:   factorial(opts.N),
		OptLevel: cfg.OptLevel,
	})
}

// buildFactorial emits the classic recursive factorial over u32.
func buildFactorial(g *codegen.Generator) {
	sig := nativetype.FuncOf(nativetype.UInt32(), nativetype.UInt32())
	f := g.CreateFunction("factorial", sig)
	n := f.Params[0]

	entry := g.CreateBlock("entry", f)
	base := g.CreateBlock("base", f)
	recurse := g.CreateBlock("recurse", f)

	g.SetInsertPoint(entry)
	g.CondBr(g.ICmp(enum.IPredEQ, n, g.Constant(uint32(0))), base, recurse)

	g.SetInsertPoint(base)
	g.Ret(g.Constant(uint32(1)))

	g.SetInsertPoint(recurse)
	prev := g.Call(f, g.Sub(n, g.Constant(uint32(1))))
	g.Ret(g.Mul(n, prev))
}
