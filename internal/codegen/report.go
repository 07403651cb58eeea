package codegen

import (
	"fmt"
	"sort"
	"strings"
)

// Report renders a stable, human-oriented summary of the module: every
// function with its signature and inferred attributes, external bindings
// and pointer placeholders. Unlike DumpIR the layout is owned here, so it
// is safe to compare against golden files.
func (g *Generator) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", g.name)

	names := make([]string, 0, len(g.mod.Funcs))
	byName := make(map[string]int, len(g.mod.Funcs))
	for i, f := range g.mod.Funcs {
		names = append(names, f.Name())
		byName[f.Name()] = i
	}
	sort.Strings(names)

	for _, name := range names {
		f := g.mod.Funcs[byName[name]]
		kind := "define"
		if len(f.Blocks) == 0 {
			kind = "declare"
		}
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Type().LLString()
		}
		fmt.Fprintf(&b, "  %s %s @%s(%s)", kind, f.Sig.RetType.LLString(), name, strings.Join(params, ", "))
		if hasReadNone(f) {
			b.WriteString(" readnone")
		}
		if len(f.Blocks) > 0 {
			insts := 0
			for _, blk := range f.Blocks {
				insts += len(blk.Insts) + 1
			}
			fmt.Fprintf(&b, " blocks=%d insts=%d", len(f.Blocks), insts)
		}
		b.WriteByte('\n')
	}

	globals := make([]string, 0, len(g.ptrAddrs))
	for name := range g.ptrAddrs {
		globals = append(globals, name)
	}
	sort.Strings(globals)
	for _, name := range globals {
		fmt.Fprintf(&b, "  anchor @%s\n", name)
	}
	return b.String()
}
