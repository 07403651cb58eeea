// Package nativetype maps host-language type descriptors to LLVM IR types.
//
// This package contains the descriptor data model and the translator only.
// All other internal packages import nativetype; nativetype imports nothing
// internal. This keeps the type layer foundational with no circular
// dependencies.
//
// The IR type system deliberately discards several properties of the host
// type system: signedness, the long/long long distinction, const and
// volatile qualification, and the pointer/reference distinction. Those
// properties still matter when calling back into host code, so every
// translation can also produce an Annotated record that carries them
// alongside the IR type.
//
// Key design constraints:
//   - Pointers to user-defined structs and to void translate to the opaque
//     byte pointer (i8*). Host struct layout is never modeled in IR.
//   - Two descriptors with the same physical shape translate to the same
//     IR type instance (interning), so type identity checks are pointer
//     comparisons downstream.
package nativetype
