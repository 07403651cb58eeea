package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// instOperands returns pointers to every value operand slot of inst, so
// passes can inspect and rewrite uses in place. The set of cases matches
// what the builder can emit.
func instOperands(inst ir.Instruction) []*value.Value {
	switch in := inst.(type) {
	case *ir.InstAdd:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstSub:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstMul:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstSDiv:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstUDiv:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstSRem:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstURem:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstAnd:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstOr:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstXor:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstFAdd:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstFSub:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstFMul:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstFDiv:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstICmp:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstFCmp:
		return []*value.Value{&in.X, &in.Y}
	case *ir.InstCall:
		ops := make([]*value.Value, len(in.Args))
		for i := range in.Args {
			ops[i] = &in.Args[i]
		}
		return ops
	case *ir.InstLoad:
		return []*value.Value{&in.Src}
	case *ir.InstStore:
		return []*value.Value{&in.Src, &in.Dst}
	case *ir.InstGetElementPtr:
		ops := []*value.Value{&in.Src}
		for i := range in.Indices {
			ops = append(ops, &in.Indices[i])
		}
		return ops
	case *ir.InstBitCast:
		return []*value.Value{&in.From}
	case *ir.InstPtrToInt:
		return []*value.Value{&in.From}
	case *ir.InstIntToPtr:
		return []*value.Value{&in.From}
	case *ir.InstTrunc:
		return []*value.Value{&in.From}
	case *ir.InstZExt:
		return []*value.Value{&in.From}
	case *ir.InstSExt:
		return []*value.Value{&in.From}
	case *ir.InstPhi:
		ops := make([]*value.Value, len(in.Incs))
		for i := range in.Incs {
			ops[i] = &in.Incs[i].X
		}
		return ops
	}
	panic(fmt.Sprintf("codegen: no operand model for %T", inst))
}

// termOperands returns pointers to the value operand slots of a
// terminator; branch targets are not values and are excluded.
func termOperands(term ir.Terminator) []*value.Value {
	switch t := term.(type) {
	case *ir.TermRet:
		if t.X == nil {
			return nil
		}
		return []*value.Value{&t.X}
	case *ir.TermBr:
		return nil
	case *ir.TermCondBr:
		return []*value.Value{&t.Cond}
	case *ir.TermSwitch:
		return []*value.Value{&t.X}
	}
	panic(fmt.Sprintf("codegen: no operand model for %T", term))
}

// blockTargets returns the successor blocks of a terminator.
func blockTargets(term ir.Terminator) []*ir.Block {
	switch t := term.(type) {
	case *ir.TermRet:
		return nil
	case *ir.TermBr:
		return []*ir.Block{targetBlock(t.Target)}
	case *ir.TermCondBr:
		return []*ir.Block{targetBlock(t.TargetTrue), targetBlock(t.TargetFalse)}
	case *ir.TermSwitch:
		targets := []*ir.Block{targetBlock(t.TargetDefault)}
		for _, c := range t.Cases {
			targets = append(targets, targetBlock(c.Target))
		}
		return targets
	}
	panic(fmt.Sprintf("codegen: no successor model for %T", term))
}

func targetBlock(v value.Value) *ir.Block {
	b, ok := v.(*ir.Block)
	if !ok {
		panic(fmt.Sprintf("codegen: branch target is %T, not a block", v))
	}
	return b
}

// cloneInst builds a fresh instruction of the same shape as inst,
// initially sharing its operands. Callers substitute operands afterwards.
func cloneInst(inst ir.Instruction) ir.Instruction {
	switch in := inst.(type) {
	case *ir.InstAdd:
		return ir.NewAdd(in.X, in.Y)
	case *ir.InstSub:
		return ir.NewSub(in.X, in.Y)
	case *ir.InstMul:
		return ir.NewMul(in.X, in.Y)
	case *ir.InstSDiv:
		return ir.NewSDiv(in.X, in.Y)
	case *ir.InstUDiv:
		return ir.NewUDiv(in.X, in.Y)
	case *ir.InstSRem:
		return ir.NewSRem(in.X, in.Y)
	case *ir.InstURem:
		return ir.NewURem(in.X, in.Y)
	case *ir.InstAnd:
		return ir.NewAnd(in.X, in.Y)
	case *ir.InstOr:
		return ir.NewOr(in.X, in.Y)
	case *ir.InstXor:
		return ir.NewXor(in.X, in.Y)
	case *ir.InstFAdd:
		return ir.NewFAdd(in.X, in.Y)
	case *ir.InstFSub:
		return ir.NewFSub(in.X, in.Y)
	case *ir.InstFMul:
		return ir.NewFMul(in.X, in.Y)
	case *ir.InstFDiv:
		return ir.NewFDiv(in.X, in.Y)
	case *ir.InstICmp:
		return ir.NewICmp(in.Pred, in.X, in.Y)
	case *ir.InstFCmp:
		return ir.NewFCmp(in.Pred, in.X, in.Y)
	case *ir.InstLoad:
		return ir.NewLoad(in.ElemType, in.Src)
	case *ir.InstGetElementPtr:
		return ir.NewGetElementPtr(in.ElemType, in.Src, in.Indices...)
	case *ir.InstBitCast:
		return ir.NewBitCast(in.From, in.To)
	case *ir.InstPtrToInt:
		return ir.NewPtrToInt(in.From, in.To)
	case *ir.InstIntToPtr:
		return ir.NewIntToPtr(in.From, in.To)
	case *ir.InstTrunc:
		return ir.NewTrunc(in.From, in.To)
	case *ir.InstZExt:
		return ir.NewZExt(in.From, in.To)
	case *ir.InstSExt:
		return ir.NewSExt(in.From, in.To)
	}
	panic(fmt.Sprintf("codegen: cannot clone %T", inst))
}
