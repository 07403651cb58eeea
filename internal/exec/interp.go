package exec

import (
	"fmt"
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// frame holds the SSA values of one function activation, keyed on value
// identity.
type frame struct {
	vals map[value.Value]uint64
}

// run executes fn to completion and returns its result word (0 for void).
// External functions dispatch straight to their Go binding.
func (e *Engine) run(fn *ir.Func, args []uint64) uint64 {
	if len(fn.Blocks) == 0 {
		impl, ok := e.externs[fn]
		if !ok {
			panic(fmt.Sprintf("exec: external %s escaped linking", fn.Name()))
		}
		return e.callGo(impl, args)
	}
	fr := &frame{vals: make(map[value.Value]uint64)}
	for i, p := range fn.Params {
		fr.vals[p] = maskType(args[i], p.Type())
	}
	block := fn.Blocks[0]
	var prev *ir.Block
	for {
		e.runPhis(fr, block, prev)
		for _, inst := range block.Insts {
			e.step(fr, inst)
		}
		switch term := block.Term.(type) {
		case *ir.TermRet:
			if term.X == nil {
				return 0
			}
			return e.eval(fr, term.X)
		case *ir.TermBr:
			prev, block = block, asBlock(term.Target)
		case *ir.TermCondBr:
			next := asBlock(term.TargetFalse)
			if e.eval(fr, term.Cond)&1 != 0 {
				next = asBlock(term.TargetTrue)
			}
			prev, block = block, next
		case *ir.TermSwitch:
			x := e.eval(fr, term.X)
			next := asBlock(term.TargetDefault)
			for _, c := range term.Cases {
				if e.eval(fr, c.X) == x {
					next = asBlock(c.Target)
					break
				}
			}
			prev, block = block, next
		default:
			panic(fmt.Sprintf("exec: unsupported terminator %T in %s", block.Term, fn.Name()))
		}
	}
}

// runPhis resolves the leading phi instructions of a block. All incomings
// are read before any phi result is written, so mutually referencing phis
// see the values from the previous iteration.
func (e *Engine) runPhis(fr *frame, block, prev *ir.Block) {
	var phis []*ir.InstPhi
	var words []uint64
	for _, inst := range block.Insts {
		phi, ok := inst.(*ir.InstPhi)
		if !ok {
			break
		}
		w, found := uint64(0), false
		for _, inc := range phi.Incs {
			if asBlock(inc.Pred) == prev {
				w, found = e.eval(fr, inc.X), true
				break
			}
		}
		if !found {
			panic(fmt.Sprintf("exec: phi in %s has no incoming for predecessor", block.Name()))
		}
		phis = append(phis, phi)
		words = append(words, w)
	}
	for i, phi := range phis {
		fr.vals[phi] = words[i]
	}
}

// step executes a single non-phi, non-terminator instruction.
func (e *Engine) step(fr *frame, inst ir.Instruction) {
	switch in := inst.(type) {
	case *ir.InstPhi:
		// Resolved at block entry.
	case *ir.InstAdd:
		fr.vals[in] = maskType(e.eval(fr, in.X)+e.eval(fr, in.Y), in.Type())
	case *ir.InstSub:
		fr.vals[in] = maskType(e.eval(fr, in.X)-e.eval(fr, in.Y), in.Type())
	case *ir.InstMul:
		fr.vals[in] = maskType(e.eval(fr, in.X)*e.eval(fr, in.Y), in.Type())
	case *ir.InstUDiv:
		fr.vals[in] = maskType(e.eval(fr, in.X)/e.eval(fr, in.Y), in.Type())
	case *ir.InstSDiv:
		bits := in.Type().(*types.IntType).BitSize
		q := int64(sext(e.eval(fr, in.X), bits)) / int64(sext(e.eval(fr, in.Y), bits))
		fr.vals[in] = mask(uint64(q), bits)
	case *ir.InstURem:
		fr.vals[in] = maskType(e.eval(fr, in.X)%e.eval(fr, in.Y), in.Type())
	case *ir.InstSRem:
		bits := in.Type().(*types.IntType).BitSize
		r := int64(sext(e.eval(fr, in.X), bits)) % int64(sext(e.eval(fr, in.Y), bits))
		fr.vals[in] = mask(uint64(r), bits)
	case *ir.InstAnd:
		fr.vals[in] = e.eval(fr, in.X) & e.eval(fr, in.Y)
	case *ir.InstOr:
		fr.vals[in] = e.eval(fr, in.X) | e.eval(fr, in.Y)
	case *ir.InstXor:
		fr.vals[in] = maskType(e.eval(fr, in.X)^e.eval(fr, in.Y), in.Type())
	case *ir.InstFAdd:
		fr.vals[in] = e.fbin(fr, in.Type(), in.X, in.Y, func(a, b float64) float64 { return a + b })
	case *ir.InstFSub:
		fr.vals[in] = e.fbin(fr, in.Type(), in.X, in.Y, func(a, b float64) float64 { return a - b })
	case *ir.InstFMul:
		fr.vals[in] = e.fbin(fr, in.Type(), in.X, in.Y, func(a, b float64) float64 { return a * b })
	case *ir.InstFDiv:
		fr.vals[in] = e.fbin(fr, in.Type(), in.X, in.Y, func(a, b float64) float64 { return a / b })
	case *ir.InstICmp:
		fr.vals[in] = e.icmp(fr, in)
	case *ir.InstFCmp:
		fr.vals[in] = e.fcmp(fr, in)
	case *ir.InstCall:
		callee, ok := in.Callee.(*ir.Func)
		if !ok {
			panic(fmt.Sprintf("exec: indirect call through %T", in.Callee))
		}
		args := make([]uint64, len(in.Args))
		for i, a := range in.Args {
			args[i] = e.eval(fr, a)
		}
		fr.vals[in] = e.run(callee, args)
	case *ir.InstLoad:
		fr.vals[in] = loadWord(e.eval(fr, in.Src), in.ElemType)
	case *ir.InstStore:
		storeWord(e.eval(fr, in.Dst), e.eval(fr, in.Src), in.Src.Type())
	case *ir.InstGetElementPtr:
		if len(in.Indices) != 1 {
			panic("exec: only single-index address arithmetic is generated")
		}
		base := e.eval(fr, in.Src)
		idx := in.Indices[0]
		off := int64(sext(e.eval(fr, idx), idx.Type().(*types.IntType).BitSize))
		fr.vals[in] = base + uint64(off*SizeOf(in.ElemType))
	case *ir.InstBitCast:
		fr.vals[in] = e.eval(fr, in.From)
	case *ir.InstPtrToInt:
		fr.vals[in] = maskType(e.eval(fr, in.From), in.To)
	case *ir.InstIntToPtr:
		fr.vals[in] = e.eval(fr, in.From)
	case *ir.InstTrunc:
		fr.vals[in] = maskType(e.eval(fr, in.From), in.To)
	case *ir.InstZExt:
		fr.vals[in] = e.eval(fr, in.From)
	case *ir.InstSExt:
		from := in.From.Type().(*types.IntType).BitSize
		fr.vals[in] = maskType(sext(e.eval(fr, in.From), from), in.To)
	default:
		panic(fmt.Sprintf("exec: unsupported instruction %T", inst))
	}
}

func (e *Engine) icmp(fr *frame, in *ir.InstICmp) uint64 {
	x, y := e.eval(fr, in.X), e.eval(fr, in.Y)
	if it, ok := in.X.Type().(*types.IntType); ok {
		switch in.Pred {
		case enum.IPredSGT, enum.IPredSGE, enum.IPredSLT, enum.IPredSLE:
			sx, sy := int64(sext(x, it.BitSize)), int64(sext(y, it.BitSize))
			return b2w(in.Pred == enum.IPredSGT && sx > sy ||
				in.Pred == enum.IPredSGE && sx >= sy ||
				in.Pred == enum.IPredSLT && sx < sy ||
				in.Pred == enum.IPredSLE && sx <= sy)
		}
	}
	switch in.Pred {
	case enum.IPredEQ:
		return b2w(x == y)
	case enum.IPredNE:
		return b2w(x != y)
	case enum.IPredUGT:
		return b2w(x > y)
	case enum.IPredUGE:
		return b2w(x >= y)
	case enum.IPredULT:
		return b2w(x < y)
	case enum.IPredULE:
		return b2w(x <= y)
	}
	panic(fmt.Sprintf("exec: unsupported integer predicate %v", in.Pred))
}

func (e *Engine) fcmp(fr *frame, in *ir.InstFCmp) uint64 {
	x := e.fval(fr, in.X.Type(), in.X)
	y := e.fval(fr, in.X.Type(), in.Y)
	ordered := !math.IsNaN(x) && !math.IsNaN(y)
	switch in.Pred {
	case enum.FPredOEQ:
		return b2w(ordered && x == y)
	case enum.FPredONE:
		return b2w(ordered && x != y)
	case enum.FPredOGT:
		return b2w(x > y)
	case enum.FPredOGE:
		return b2w(x >= y)
	case enum.FPredOLT:
		return b2w(x < y)
	case enum.FPredOLE:
		return b2w(x <= y)
	case enum.FPredORD:
		return b2w(ordered)
	case enum.FPredUNO:
		return b2w(!ordered)
	case enum.FPredUEQ:
		return b2w(!ordered || x == y)
	case enum.FPredUNE:
		return b2w(!ordered || x != y)
	}
	panic(fmt.Sprintf("exec: unsupported float predicate %v", in.Pred))
}

// fbin applies a binary float op, keeping float32 semantics for the float
// type by narrowing after the operation.
func (e *Engine) fbin(fr *frame, t types.Type, xv, yv value.Value, op func(a, b float64) float64) uint64 {
	x, y := e.fval(fr, t, xv), e.fval(fr, t, yv)
	r := op(x, y)
	if isFloat32(t) {
		return uint64(math.Float32bits(float32(r)))
	}
	return math.Float64bits(r)
}

// fval decodes a word as the float value of type t.
func (e *Engine) fval(fr *frame, t types.Type, v value.Value) float64 {
	w := e.eval(fr, v)
	if isFloat32(t) {
		return float64(math.Float32frombits(uint32(w)))
	}
	return math.Float64frombits(w)
}

func isFloat32(t types.Type) bool {
	ft, ok := t.(*types.FloatType)
	return ok && ft.Kind == types.FloatKindFloat
}

// eval resolves a value reference to its word: frame-local SSA results and
// parameters first, then module-level constants.
func (e *Engine) eval(fr *frame, v value.Value) uint64 {
	if w, ok := fr.vals[v]; ok {
		return w
	}
	switch c := v.(type) {
	case *constant.Int:
		var w uint64
		if c.X.Sign() < 0 {
			w = uint64(c.X.Int64())
		} else {
			w = c.X.Uint64()
		}
		return maskType(w, c.Typ)
	case *constant.Float:
		return e.floatWord(c)
	case *constant.Null:
		return 0
	case *constant.ExprBitCast:
		return e.eval(fr, c.From)
	case *ir.Global:
		addr, ok := e.globalAddr[c]
		if !ok {
			panic(fmt.Sprintf("exec: global %s has no host address", c.Name()))
		}
		return addr
	}
	panic(fmt.Sprintf("exec: cannot evaluate %T", v))
}

// floatWord decodes a float constant, preferring an exact recorded bit
// pattern over the decimal representation.
func (e *Engine) floatWord(c *constant.Float) uint64 {
	if w, ok := e.floatBits[c]; ok {
		return w
	}
	if c.NaN || c.X == nil {
		if isFloat32(c.Typ) {
			return uint64(math.Float32bits(float32(math.NaN())))
		}
		return math.Float64bits(math.NaN())
	}
	if isFloat32(c.Typ) {
		f, _ := c.X.Float32()
		return uint64(math.Float32bits(f))
	}
	f, _ := c.X.Float64()
	return math.Float64bits(f)
}

func asBlock(v value.Value) *ir.Block {
	b, ok := v.(*ir.Block)
	if !ok {
		panic(fmt.Sprintf("exec: branch target is %T, not a block", v))
	}
	return b
}

func b2w(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
