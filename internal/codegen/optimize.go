package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
)

// OptLevel selects how aggressively PrepareForExecution rewrites the
// module before linking it.
type OptLevel int

const (
	// OptNone verifies the module and changes nothing.
	OptNone OptLevel = iota

	// OptLess removes dead instructions.
	OptLess

	// OptDefault additionally inlines trivial callees and infers the
	// readnone attribute on pure functions.
	OptDefault

	// OptAggressive re-runs the default pipeline to a fixpoint.
	OptAggressive
)

// String returns the config-file spelling of the level.
func (l OptLevel) String() string {
	switch l {
	case OptNone:
		return "none"
	case OptLess:
		return "less"
	case OptDefault:
		return "default"
	case OptAggressive:
		return "aggressive"
	}
	return "unknown"
}

// ParseOptLevel maps a config-file spelling to its level.
func ParseOptLevel(s string) (OptLevel, bool) {
	switch s {
	case "none":
		return OptNone, true
	case "less":
		return OptLess, true
	case "default":
		return OptDefault, true
	case "aggressive":
		return OptAggressive, true
	}
	return OptNone, false
}

// SizeLevel trades code speed for module size. It only restricts what the
// speed pipeline would otherwise do.
type SizeLevel int

const (
	// SizeNone applies no size pressure.
	SizeNone SizeLevel = iota

	// SizeLess inlines only the smallest callees.
	SizeLess

	// SizeAggressive disables inlining entirely.
	SizeAggressive
)

// inlineBudget is the callee instruction count the inliner accepts at each
// size level.
func (s SizeLevel) inlineBudget() int {
	switch s {
	case SizeLess:
		return 2
	case SizeAggressive:
		return 0
	}
	return 16
}

type optConfig struct {
	size       SizeLevel
	verifyOnly bool
}

// OptimizeOption adjusts a single Optimize run.
type OptimizeOption func(*optConfig)

// WithSizeLevel sets the size pressure for the run.
func WithSizeLevel(size SizeLevel) OptimizeOption {
	return func(c *optConfig) { c.size = size }
}

// VerifyOnly restricts the run to structural verification; the module is
// left untouched even on success.
func VerifyOnly() OptimizeOption {
	return func(c *optConfig) { c.verifyOnly = true }
}

// Optimize verifies the module and runs the rewrite pipeline for level.
// A verification failure leaves the module untouched.
func (g *Generator) Optimize(level OptLevel, opts ...OptimizeOption) error {
	g.mustBuild("Optimize")
	var cfg optConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := g.verify(); err != nil {
		return err
	}
	if cfg.verifyOnly {
		g.log.Debug("module verified")
		return nil
	}
	if level >= OptLess {
		g.removeDeadInstructions()
	}
	if level >= OptDefault {
		rounds := 1
		if level >= OptAggressive {
			rounds = 3
		}
		for i := 0; i < rounds; i++ {
			changed := g.inlineTrivialCalls(cfg.size.inlineBudget())
			g.removeDeadInstructions()
			if !changed {
				break
			}
		}
		g.inferReadNone()
	}
	g.log.Debug("module optimized", "level", level.String(), "size_level", int(cfg.size))
	return nil
}

// verify performs the structural checks the execution engine relies on:
// defined functions have terminated blocks, phi nodes lead their block and
// carry exactly one incoming per actual predecessor.
func (g *Generator) verify() error {
	for _, f := range g.mod.Funcs {
		if len(f.Blocks) == 0 {
			if _, bound := g.bindings[f.Name()]; !bound {
				return newVerifyError(f.Name(), "function has no body and no external binding")
			}
			continue
		}
		preds := make(map[*ir.Block][]*ir.Block)
		for _, b := range f.Blocks {
			if b.Term == nil {
				return newVerifyError(f.Name(), "block %q has no terminator", b.Name())
			}
			for _, t := range blockTargets(b.Term) {
				preds[t] = append(preds[t], b)
			}
		}
		for _, b := range f.Blocks {
			seenNonPhi := false
			for _, inst := range b.Insts {
				phi, ok := inst.(*ir.InstPhi)
				if !ok {
					seenNonPhi = true
					continue
				}
				if seenNonPhi {
					return newVerifyError(f.Name(), "phi after non-phi instruction in block %q", b.Name())
				}
				if err := checkIncomings(f.Name(), b, phi, preds[b]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkIncomings verifies that phi's incoming set matches the block's
// predecessor set exactly.
func checkIncomings(fn string, b *ir.Block, phi *ir.InstPhi, preds []*ir.Block) error {
	if len(phi.Incs) != len(preds) {
		return newVerifyError(fn, "phi in block %q has %d incomings, block has %d predecessors",
			b.Name(), len(phi.Incs), len(preds))
	}
	for _, inc := range phi.Incs {
		found := false
		for _, p := range preds {
			if targetBlock(inc.Pred) == p {
				found = true
				break
			}
		}
		if !found {
			return newVerifyError(fn, "phi in block %q has an incoming from a non-predecessor", b.Name())
		}
	}
	return nil
}

// removeDeadInstructions drops effect-free instructions whose results are
// never read, iterating until nothing changes.
func (g *Generator) removeDeadInstructions() {
	for _, f := range g.mod.Funcs {
		for {
			used := make(map[value.Value]bool)
			for _, b := range f.Blocks {
				for _, inst := range b.Insts {
					for _, op := range instOperands(inst) {
						used[*op] = true
					}
				}
				for _, op := range termOperands(b.Term) {
					used[*op] = true
				}
			}
			removed := false
			for _, b := range f.Blocks {
				kept := b.Insts[:0]
				for _, inst := range b.Insts {
					if effectFree(inst) && !used[inst.(value.Value)] {
						removed = true
						continue
					}
					kept = append(kept, inst)
				}
				b.Insts = kept
			}
			if !removed {
				return
			}
		}
	}
}

// inlineTrivialCalls splices calls to defined single-block callees whose
// body is pure arithmetic ending in a value return, up to budget
// instructions per callee. Reports whether any call was inlined.
func (g *Generator) inlineTrivialCalls(budget int) bool {
	changed := false
	for _, f := range g.mod.Funcs {
		for _, b := range f.Blocks {
			kept := make([]ir.Instruction, 0, len(b.Insts))
			for _, inst := range b.Insts {
				call, ok := inst.(*ir.InstCall)
				if !ok {
					kept = append(kept, inst)
					continue
				}
				callee, ok := call.Callee.(*ir.Func)
				if !ok || callee == f || !trivialCallee(callee, budget) {
					kept = append(kept, inst)
					continue
				}
				clones, result := cloneBody(callee, call.Args)
				kept = append(kept, clones...)
				replaceUses(f, call, result)
				changed = true
			}
			b.Insts = kept
		}
	}
	return changed
}

// trivialCallee reports whether callee is a defined single-block function
// of at most budget effect-free instructions returning a value.
func trivialCallee(callee *ir.Func, budget int) bool {
	if len(callee.Blocks) != 1 {
		return false
	}
	b := callee.Blocks[0]
	if len(b.Insts) > budget {
		return false
	}
	ret, ok := b.Term.(*ir.TermRet)
	if !ok || ret.X == nil {
		return false
	}
	for _, inst := range b.Insts {
		if _, isPhi := inst.(*ir.InstPhi); isPhi {
			return false
		}
		if !effectFree(inst) {
			return false
		}
	}
	return true
}

// cloneBody copies callee's single block with parameters substituted by
// args, returning the cloned instructions and the value standing in for
// the callee's return.
func cloneBody(callee *ir.Func, args []value.Value) ([]ir.Instruction, value.Value) {
	subst := make(map[value.Value]value.Value, len(args))
	for i, p := range callee.Params {
		subst[p] = args[i]
	}
	b := callee.Blocks[0]
	clones := make([]ir.Instruction, 0, len(b.Insts))
	for _, inst := range b.Insts {
		clone := cloneInst(inst)
		for _, op := range instOperands(clone) {
			if repl, ok := subst[*op]; ok {
				*op = repl
			}
		}
		subst[inst.(value.Value)] = clone.(value.Value)
		clones = append(clones, clone)
	}
	ret := b.Term.(*ir.TermRet).X
	if repl, ok := subst[ret]; ok {
		return clones, repl
	}
	return clones, ret
}

// replaceUses rewrites every operand of f that references old to new.
func replaceUses(f *ir.Func, old, new value.Value) {
	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			for _, op := range instOperands(inst) {
				if *op == old {
					*op = new
				}
			}
		}
		for _, op := range termOperands(b.Term) {
			if *op == old {
				*op = new
			}
		}
	}
}

// inferReadNone tags functions that touch nothing but their arguments,
// propagating through calls to already-tagged callees until a fixpoint.
func (g *Generator) inferReadNone() {
	for {
		changed := false
		for _, f := range g.mod.Funcs {
			if len(f.Blocks) == 0 || hasReadNone(f) {
				continue
			}
			if functionIsPure(f) {
				f.FuncAttrs = append(f.FuncAttrs, enum.FuncAttrReadNone)
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func functionIsPure(f *ir.Func) bool {
	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			switch in := inst.(type) {
			case *ir.InstLoad, *ir.InstStore:
				return false
			case *ir.InstCall:
				callee, ok := in.Callee.(*ir.Func)
				if !ok || (callee != f && !hasReadNone(callee)) {
					return false
				}
			}
		}
	}
	return true
}

func hasReadNone(f *ir.Func) bool {
	for _, attr := range f.FuncAttrs {
		if a, ok := attr.(enum.FuncAttr); ok && a == enum.FuncAttrReadNone {
			return true
		}
	}
	return false
}

// effectFree reports whether removing inst cannot change observable
// behavior, provided its result is unused.
func effectFree(inst ir.Instruction) bool {
	switch inst.(type) {
	case *ir.InstStore, *ir.InstCall:
		return false
	}
	return true
}
