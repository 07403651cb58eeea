package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/cobra"

	"github.com/ashwinstar/gpdb/internal/codegen"
	"github.com/ashwinstar/gpdb/internal/nativetype"
	"github.com/ashwinstar/gpdb/internal/schema"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Layout string // layout name inside the CUE file
	Config string // optional YAML config path
	Report bool   // print the module report instead of textual IR
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <layout.cue>",
		Short: "Generate member accessors from a layout schema and print the IR",
		Long: `Dump parses a CUE struct layout, generates one accessor function per
scalar member (pure address arithmetic plus a single load), optimizes the
module and prints it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Layout, "layout", "l", "", "layout name (default: first top-level field)")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "YAML config path")
	cmd.Flags().BoolVar(&opts.Report, "report", false, "print the module report instead of IR")

	return cmd
}

func runDump(opts *DumpOptions, path string, cmd *cobra.Command) error {
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

	layout, err := loadLayout(path, opts.Layout)
	if err != nil {
		formatter.Error(ErrCodeSchema, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid layout schema", err)
	}
	formatter.VerboseLog("Loaded layout %s with %d members", layout.Name, len(layout.Fields))

	codegen.InitGlobal()
	g := codegen.NewGenerator(layout.Name + "_accessors")
	if err := buildAccessors(g, layout); err != nil {
		formatter.Error(ErrCodeSchema, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot generate accessors", err)
	}
	optOpts := []codegen.OptimizeOption{codegen.WithSizeLevel(cfg.Size())}
	if cfg.VerifyOnly {
		optOpts = append(optOpts, codegen.VerifyOnly())
	}
	if err := g.Optimize(cfg.Level(), optOpts...); err != nil {
		formatter.Error(ErrCodeCompile, err.Error(), nil)
		return WrapExitError(ExitFailure, "optimization failed", err)
	}

	if opts.Report {
		return formatter.Success(g.Report())
	}
	return formatter.Success(g.DumpIR())
}

// loadLayout parses the named layout from a CUE file, defaulting to the
// first top-level field.
func loadLayout(path, name string) (*schema.Layout, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v := cuecontext.New().CompileBytes(src)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		if !iter.Next() {
			return nil, fmt.Errorf("%s defines no layouts", path)
		}
		return schema.ParseLayout(iter.Value())
	}
	return schema.ParseLayout(v.LookupPath(cue.ParsePath(name)))
}

// buildAccessors defines get_<member> for every scalar member reachable
// from the layout root, including nested ones.
func buildAccessors(g *codegen.Generator, layout *schema.Layout) error {
	base := nativetype.PointerTo(nativetype.Struct(layout.Name))
	return walkMembers(layout, "", nil, func(path string, offsets []int64, d *nativetype.Desc) error {
		f := g.CreateFunction("get_"+path, nativetype.FuncOf(d, base))
		g.SetInsertPoint(g.CreateBlock("entry", f))
		addr := g.PointerToMember(f.Params[0], d, offsets...)
		g.Ret(g.Load(g.IRType(d), addr))
		return nil
	})
}

// walkMembers visits every scalar member depth-first with its flattened
// name and offset chain.
func walkMembers(l *schema.Layout, prefix string, offsets []int64, visit func(string, []int64, *nativetype.Desc) error) error {
	for _, f := range l.Fields {
		name := f.Name
		if prefix != "" {
			name = prefix + "_" + f.Name
		}
		chain := append(append([]int64(nil), offsets...), f.Offset)
		if f.Nested != nil {
			if err := walkMembers(f.Nested, name, chain, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(name, chain, f.Type); err != nil {
			return err
		}
	}
	return nil
}
