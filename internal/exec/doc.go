// Package exec executes a finalized IR module in-process.
//
// ARCHITECTURE:
//
// The engine is the terminal stage of the code-generation lifecycle. It
// receives a module whose external symbols have all been resolved: external
// functions bind to Go callables, global placeholders bind to host
// addresses. From that point the module is immutable and the engine owns it.
//
// Execution model:
//  1. Every defined function runs as a block interpreter over the IR.
//  2. Values are machine words (uint64); floats travel as their IEEE 754
//     bit patterns, pointers as addresses.
//  3. Loads and stores hit real host memory through unsafe, which is what
//     makes generated accessors over host structs work.
//  4. Calls dispatch either to other IR functions or, for externals, to the
//     bound Go callable via reflect.
//
// Evaluation is synchronous and CPU-bound. Nothing here suspends, blocks on
// I/O, or is cancellable; a caller abandons execution by discarding the
// owning generator. Function handles stay valid exactly as long as the
// engine (and therefore the generator that owns it) is alive.
package exec
