// Package codegen builds and runs specialized functions at query time.
//
// ARCHITECTURE:
//
// A Generator owns exactly one module and walks a one-way lifecycle:
//
//	building ──PrepareForExecution──▶ compiled
//
// While building, callers create functions and blocks, position an insert
// point and emit instructions through the gated builder methods. Host
// values cross into the module in exactly three ways:
//
//  1. Constants. Constant derives the IR type from the Go value and
//     materializes it losslessly; non-nil pointers become external global
//     placeholders resolved at link time, never literal addresses baked
//     into the IR.
//  2. External functions. RegisterExternalFunction declares a host Go
//     callable inside the module; registration is idempotent per callable.
//  3. Member addressing. PointerToMember computes typed interior pointers
//     from byte offsets without ever dereferencing the base.
//
// PrepareForExecution verifies, optimizes and links the module into an
// exec.Engine, after which the module is sealed: Module returns nil and
// every mutating method is a contract violation. Handles obtained through
// FunctionHandle or Bind stay valid for the life of the generator.
//
// ERRORS:
//
// Failures split into two tiers. Breaking the API contract (emitting after
// compilation, registering an unsupported callable, addressing members off
// a non-pointer) is a programming bug and panics with *ContractViolation.
// Conditions the caller cannot rule out up front (verification failure,
// unresolved symbols, a function name that was never defined) come back as
// error or ok-bool returns.
package codegen
