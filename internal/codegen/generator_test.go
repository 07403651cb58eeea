package codegen

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinstar/gpdb/internal/nativetype"
)

// newTestGenerator builds a quiet generator for tests.
func newTestGenerator(t *testing.T, name string) *Generator {
	t.Helper()
	require.True(t, InitGlobal())
	return NewGenerator(name, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// expectViolation asserts that fn panics with a ContractViolation for op.
func expectViolation(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected contract violation for %s", op)
		cv, ok := r.(*ContractViolation)
		require.True(t, ok, "panic payload is %T, not a contract violation", r)
		assert.Equal(t, op, cv.Op)
	}()
	fn()
}

func TestInitGlobalIdempotent(t *testing.T) {
	assert.True(t, InitGlobal())
	assert.True(t, InitGlobal())
}

func TestNewGeneratorIdentity(t *testing.T) {
	a := newTestGenerator(t, "ident")
	b := newTestGenerator(t, "ident")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "ident", a.Name())
	require.NotNil(t, a.Module())
}

func TestTrivialConstantFunction(t *testing.T) {
	g := newTestGenerator(t, "trivial")
	f := g.CreateFunction("answer", nativetype.FuncOf(nativetype.Int32()))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	g.Ret(g.Constant(int32(42)))

	require.NoError(t, g.PrepareForExecution(OptNone))
	answer, ok := Bind[func() int32](g, "answer")
	require.True(t, ok)
	assert.Equal(t, int32(42), answer())
}

func TestDuplicateFunctionName(t *testing.T) {
	g := newTestGenerator(t, "dup")
	g.CreateFunction("f", nativetype.FuncOf(nativetype.Int32()))
	expectViolation(t, "CreateFunction", func() {
		g.CreateFunction("f", nativetype.FuncOf(nativetype.Int32()))
	})
}

func TestCreateFunctionRejectsNonFuncDescriptor(t *testing.T) {
	g := newTestGenerator(t, "badsig")
	expectViolation(t, "CreateFunction", func() {
		g.CreateFunction("f", nativetype.Int32())
	})
}

func TestEmissionRequiresInsertPoint(t *testing.T) {
	g := newTestGenerator(t, "nopoint")
	expectViolation(t, "Ret", func() {
		g.Ret(nil)
	})
}

func TestCompiledGeneratorIsSealed(t *testing.T) {
	g := newTestGenerator(t, "sealed")
	f := g.CreateFunction("one", nativetype.FuncOf(nativetype.Int64()))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	g.Ret(g.Constant(int64(1)))
	require.NoError(t, g.PrepareForExecution(OptNone))

	assert.Nil(t, g.Module(), "compiled module must not be reachable for mutation")
	assert.True(t, g.Compiled())
	expectViolation(t, "CreateFunction", func() {
		g.CreateFunction("two", nativetype.FuncOf(nativetype.Int64()))
	})
	expectViolation(t, "Constant", func() {
		g.Constant(int64(2))
	})
}

func TestPrepareFailureKeepsBuildingState(t *testing.T) {
	g := newTestGenerator(t, "fixable")
	f := g.CreateFunction("broken", nativetype.FuncOf(nativetype.Int32()))
	g.CreateBlock("entry", f) // never terminated

	err := g.PrepareForExecution(OptNone)
	require.Error(t, err)
	assert.True(t, IsVerifyError(err))
	assert.False(t, g.Compiled())

	// Fix the module and retry.
	g.SetInsertPoint(f.Blocks[0])
	g.Ret(g.Constant(int32(7)))
	require.NoError(t, g.PrepareForExecution(OptNone))
	seven, ok := Bind[func() int32](g, "broken")
	require.True(t, ok)
	assert.Equal(t, int32(7), seven())
}

func TestFunctionHandleMissingName(t *testing.T) {
	g := newTestGenerator(t, "missing")
	f := g.CreateFunction("present", nativetype.FuncOf(nativetype.Int32()))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	g.Ret(g.Constant(int32(0)))
	require.NoError(t, g.PrepareForExecution(OptNone))

	_, ok := g.FunctionHandle("absent", nativetype.FuncOf(nativetype.Int32()))
	assert.False(t, ok)
	_, ok = Bind[func() int32](g, "absent")
	assert.False(t, ok)
}

func TestFunctionHandleSignatureMismatch(t *testing.T) {
	g := newTestGenerator(t, "mismatch")
	f := g.CreateFunction("narrow", nativetype.FuncOf(nativetype.Int32()))
	g.SetInsertPoint(g.CreateBlock("entry", f))
	g.Ret(g.Constant(int32(0)))
	require.NoError(t, g.PrepareForExecution(OptNone))

	expectViolation(t, "FunctionHandle", func() {
		Bind[func() int64](g, "narrow")
	})
}

func TestFunctionHandleBeforeCompile(t *testing.T) {
	g := newTestGenerator(t, "early")
	expectViolation(t, "FunctionHandle", func() {
		g.FunctionHandle("f", nativetype.FuncOf(nativetype.Int32()))
	})
}
