package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Instruction emission. Every method appends at the current insert point
// and is a contract violation once the generator is compiled or while no
// insert point is set.

func (g *Generator) Add(x, y value.Value) value.Value {
	return g.at("Add").NewAdd(x, y)
}

func (g *Generator) Sub(x, y value.Value) value.Value {
	return g.at("Sub").NewSub(x, y)
}

func (g *Generator) Mul(x, y value.Value) value.Value {
	return g.at("Mul").NewMul(x, y)
}

func (g *Generator) SDiv(x, y value.Value) value.Value {
	return g.at("SDiv").NewSDiv(x, y)
}

func (g *Generator) UDiv(x, y value.Value) value.Value {
	return g.at("UDiv").NewUDiv(x, y)
}

func (g *Generator) FAdd(x, y value.Value) value.Value {
	return g.at("FAdd").NewFAdd(x, y)
}

func (g *Generator) FSub(x, y value.Value) value.Value {
	return g.at("FSub").NewFSub(x, y)
}

func (g *Generator) FMul(x, y value.Value) value.Value {
	return g.at("FMul").NewFMul(x, y)
}

func (g *Generator) FDiv(x, y value.Value) value.Value {
	return g.at("FDiv").NewFDiv(x, y)
}

func (g *Generator) ICmp(pred enum.IPred, x, y value.Value) value.Value {
	return g.at("ICmp").NewICmp(pred, x, y)
}

func (g *Generator) FCmp(pred enum.FPred, x, y value.Value) value.Value {
	return g.at("FCmp").NewFCmp(pred, x, y)
}

// Call emits a direct call. The callee may be defined in this module or a
// registered external declaration.
func (g *Generator) Call(callee *ir.Func, args ...value.Value) value.Value {
	if callee.Parent != g.mod {
		violate("Call", "callee %q belongs to another module", callee.Name())
	}
	return g.at("Call").NewCall(callee, args...)
}

// Load reads a value of elem type through src.
func (g *Generator) Load(elem types.Type, src value.Value) value.Value {
	if _, ok := src.Type().(*types.PointerType); !ok {
		violate("Load", "source is %v, not a pointer", src.Type())
	}
	return g.at("Load").NewLoad(elem, src)
}

// Store writes src through dst.
func (g *Generator) Store(src, dst value.Value) {
	if _, ok := dst.Type().(*types.PointerType); !ok {
		violate("Store", "destination is %v, not a pointer", dst.Type())
	}
	g.at("Store").NewStore(src, dst)
}

// Br terminates the current block with an unconditional branch and leaves
// the insert point unset.
func (g *Generator) Br(target *ir.Block) {
	g.at("Br").NewBr(target)
	g.cur = nil
}

// CondBr terminates the current block with a two-way branch.
func (g *Generator) CondBr(cond value.Value, ifTrue, ifFalse *ir.Block) {
	g.at("CondBr").NewCondBr(cond, ifTrue, ifFalse)
	g.cur = nil
}

// Switch terminates the current block with a multi-way branch.
func (g *Generator) Switch(x value.Value, fallback *ir.Block, cases ...*ir.Case) {
	g.at("Switch").NewSwitch(x, fallback, cases...)
	g.cur = nil
}

// Ret terminates the current block returning x; pass nil for void.
func (g *Generator) Ret(x value.Value) {
	g.at("Ret").NewRet(x)
	g.cur = nil
}

// Phi starts a phi node of the given type in the current block. Phi nodes
// must lead their block, so emitting one after any other instruction is a
// contract violation. Incomings are attached with AddIncoming once the
// predecessors exist.
func (g *Generator) Phi(t types.Type) *ir.InstPhi {
	block := g.at("Phi")
	for _, inst := range block.Insts {
		if _, ok := inst.(*ir.InstPhi); !ok {
			violate("Phi", "block %q already has non-phi instructions", block.Name())
		}
	}
	phi := &ir.InstPhi{Typ: t}
	block.Insts = append(block.Insts, phi)
	return phi
}

// AddIncoming attaches one (value, predecessor) edge to phi.
func (g *Generator) AddIncoming(phi *ir.InstPhi, x value.Value, pred *ir.Block) {
	g.mustBuild("AddIncoming")
	phi.Incs = append(phi.Incs, ir.NewIncoming(x, pred))
}

// GEP computes an element address from a base pointer and indices, with
// the inbounds flag set.
func (g *Generator) GEP(elem types.Type, src value.Value, indices ...value.Value) value.Value {
	if _, ok := src.Type().(*types.PointerType); !ok {
		violate("GEP", "base is %v, not a pointer", src.Type())
	}
	gep := g.at("GEP").NewGetElementPtr(elem, src, indices...)
	gep.InBounds = true
	return gep
}

// PtrToInt reinterprets a pointer as an integer of type to.
func (g *Generator) PtrToInt(x value.Value, to *types.IntType) value.Value {
	if _, ok := x.Type().(*types.PointerType); !ok {
		violate("PtrToInt", "operand is %v, not a pointer", x.Type())
	}
	return g.at("PtrToInt").NewPtrToInt(x, to)
}

// BitCast reinterprets x as type to without changing bits.
func (g *Generator) BitCast(x value.Value, to types.Type) value.Value {
	return g.at("BitCast").NewBitCast(x, to)
}
