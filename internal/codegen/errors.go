package codegen

import (
	"errors"
	"fmt"
)

// ContractViolation is the panic payload for API misuse: emitting into a
// compiled generator, registering an unsupported callable, binding a
// function handle with a mismatched signature. These are programming bugs,
// not runtime conditions, so they are not returned as errors.
type ContractViolation struct {
	// Op names the method whose contract was broken.
	Op string

	// Message describes the violated precondition.
	Message string
}

// Error implements the error interface so recovered payloads compose with
// errors.As in test helpers.
func (e *ContractViolation) Error() string {
	return fmt.Sprintf("codegen: %s: %s", e.Op, e.Message)
}

// violate panics with a ContractViolation for op.
func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Message: fmt.Sprintf(format, args...)})
}

// CompileError represents a recoverable failure while finalizing a module.
//
// Compile errors include:
//   - Verification: a function or block is structurally invalid
//   - Linking: an external symbol has no host binding
//
// CompileError includes structured fields for diagnostics.
type CompileError struct {
	// Code identifies the error category.
	Code CompileErrorCode

	// Message is a human-readable description.
	Message string

	// Symbol identifies the offending function or global, when known.
	Symbol string
}

// CompileErrorCode categorizes compile errors.
type CompileErrorCode string

const (
	// ErrCodeVerifyFailed indicates the module failed structural verification.
	ErrCodeVerifyFailed CompileErrorCode = "VERIFY_FAILED"

	// ErrCodeLinkFailed indicates an external reference could not be resolved.
	ErrCodeLinkFailed CompileErrorCode = "LINK_FAILED"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %s (symbol=%s)", e.Code, e.Message, e.Symbol)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsVerifyError returns true if the error is a verification failure.
// Uses errors.As to handle wrapped errors.
func IsVerifyError(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeVerifyFailed
	}
	return false
}

// IsLinkError returns true if the error is a link failure.
// Uses errors.As to handle wrapped errors.
func IsLinkError(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeLinkFailed
	}
	return false
}

// newVerifyError creates a CompileError for a verification failure.
func newVerifyError(symbol, format string, args ...any) *CompileError {
	return &CompileError{
		Code:    ErrCodeVerifyFailed,
		Message: fmt.Sprintf(format, args...),
		Symbol:  symbol,
	}
}
