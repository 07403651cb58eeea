package codegen

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/ashwinstar/gpdb/internal/exec"
	"github.com/ashwinstar/gpdb/internal/nativetype"
)

var (
	globalMu    sync.Mutex
	globalReady bool
)

// InitGlobal performs the process-wide setup shared by all generators.
// It is idempotent; every call after the first is a no-op that still
// reports success. NewGenerator requires it to have run.
func InitGlobal() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalReady = true
	return true
}

// globalInitialized reports whether InitGlobal has run.
func globalInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalReady
}

// genState tracks the one-way generator lifecycle.
type genState int

const (
	stateBuilding genState = iota
	stateCompiled
)

// Generator owns one module through its build-optimize-compile-execute
// lifecycle. A Generator is not safe for concurrent use; each query worker
// builds against its own.
type Generator struct {
	id   uuid.UUID
	name string
	log  *slog.Logger

	state genState
	mod   *ir.Module
	tr    *nativetype.Translator
	cur   *ir.Block // insert point; nil until SetInsertPoint

	// externals maps callable identity to its declaration, making
	// RegisterExternalFunction idempotent per callable.
	externals map[uintptr]*ir.Func
	bindings  map[string]reflect.Value
	extSeq    int

	// ptrGlobals interns one placeholder global per distinct host address.
	ptrGlobals map[uintptr]*ir.Global
	ptrAddrs   map[string]uintptr
	ptrSeq     int

	// floatBits records the exact bit pattern of each float constant so
	// execution never depends on a decimal round-trip.
	floatBits map[*constant.Float]uint64

	eng *exec.Engine
}

// GeneratorOption allows configuration of generator parameters.
type GeneratorOption func(*Generator)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.log = log
	}
}

// NewGenerator creates a Generator with an empty module named after the
// owning consumer (for example "slot_deform_1234"). InitGlobal must have
// run first.
func NewGenerator(name string, opts ...GeneratorOption) *Generator {
	if !globalInitialized() {
		violate("NewGenerator", "InitGlobal has not run")
	}
	g := &Generator{
		id:         uuid.Must(uuid.NewV7()),
		name:       name,
		log:        slog.Default(),
		mod:        ir.NewModule(),
		tr:         nativetype.NewTranslator(),
		externals:  make(map[uintptr]*ir.Func),
		bindings:   make(map[string]reflect.Value),
		ptrGlobals: make(map[uintptr]*ir.Global),
		ptrAddrs:   make(map[string]uintptr),
		floatBits:  make(map[*constant.Float]uint64),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("generator", g.id.String(), "module", name)
	g.log.Debug("generator created")
	return g
}

// ID returns the unique identity of this generator instance.
func (g *Generator) ID() uuid.UUID { return g.id }

// Name returns the consumer-chosen module name.
func (g *Generator) Name() string { return g.name }

// Module exposes the module under construction. After PrepareForExecution
// the module belongs to the execution engine and Module returns nil.
func (g *Generator) Module() *ir.Module {
	if g.state == stateCompiled {
		return nil
	}
	return g.mod
}

// DumpIR renders the module in its textual form. Works in both lifecycle
// states; the compiled module is rendered as it was linked.
func (g *Generator) DumpIR() string {
	return g.mod.String()
}

// IRType translates a host type descriptor to its IR type.
func (g *Generator) IRType(d *nativetype.Desc) types.Type {
	return g.tr.IRType(d)
}

// AnnotatedType translates a host type descriptor, keeping the host-side
// properties the IR type alone cannot express.
func (g *Generator) AnnotatedType(d *nativetype.Desc) nativetype.Annotated {
	return g.tr.AnnotatedType(d)
}

// mustBuild panics unless the generator is still building.
func (g *Generator) mustBuild(op string) {
	if g.state == stateCompiled {
		violate(op, "generator %s is already compiled", g.name)
	}
}

// CreateFunction defines an empty function in the module. sig must be a
// function descriptor; the name must be unused.
func (g *Generator) CreateFunction(name string, sig *nativetype.Desc) *ir.Func {
	g.mustBuild("CreateFunction")
	if sig.Kind != nativetype.KindFunc {
		violate("CreateFunction", "descriptor %s is not a function type", sig)
	}
	for _, f := range g.mod.Funcs {
		if f.Name() == name {
			violate("CreateFunction", "function %q already exists", name)
		}
	}
	params := make([]*ir.Param, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = ir.NewParam(fmt.Sprintf("arg%d", i), g.tr.IRType(p))
	}
	return g.mod.NewFunc(name, g.tr.IRType(sig.Ret), params...)
}

// CreateBlock appends a labeled block to fn. fn must be defined in this
// module and must not be an external declaration.
func (g *Generator) CreateBlock(name string, fn *ir.Func) *ir.Block {
	g.mustBuild("CreateBlock")
	if fn.Parent != g.mod {
		violate("CreateBlock", "function %q belongs to another module", fn.Name())
	}
	if g.isExternal(fn) {
		violate("CreateBlock", "function %q is an external declaration", fn.Name())
	}
	return fn.NewBlock(name)
}

// SetInsertPoint positions the builder at the end of block.
func (g *Generator) SetInsertPoint(block *ir.Block) {
	g.mustBuild("SetInsertPoint")
	g.cur = block
}

// InsertPoint returns the block the builder currently appends to, or nil.
func (g *Generator) InsertPoint() *ir.Block { return g.cur }

// at returns the current insert point, panicking if none is set.
func (g *Generator) at(op string) *ir.Block {
	g.mustBuild(op)
	if g.cur == nil {
		violate(op, "no insert point set")
	}
	return g.cur
}

func (g *Generator) isExternal(fn *ir.Func) bool {
	if len(fn.Blocks) > 0 {
		return false
	}
	_, ok := g.bindings[fn.Name()]
	return ok
}
