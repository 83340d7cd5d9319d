package domain

import (
	"errors"
	"fmt"
	"strings"
)

// RuleViolationError is returned when a catalog operation is not allowed in
// the current state. Its reasons are safe to show to users.
type RuleViolationError struct {
	Op      string
	Reasons []string
}

// Error implements the error interface for RuleViolationError
func (e *RuleViolationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// Is allows proper error type checking with errors.Is()
func (e *RuleViolationError) Is(target error) bool {
	_, ok := target.(*RuleViolationError)
	return ok
}

// ProductNotFoundError is returned when a referenced product does not exist
type ProductNotFoundError struct {
	ProductID uint
}

// Error implements the error interface for ProductNotFoundError
func (e *ProductNotFoundError) Error() string {
	return "Product not found"
}

// Is allows proper error type checking with errors.Is()
func (e *ProductNotFoundError) Is(target error) bool {
	_, ok := target.(*ProductNotFoundError)
	return ok
}

// SystemFailureError wraps an unexpected storage or infrastructure failure.
// The message never carries the cause; Unwrap exposes it for logging.
type SystemFailureError struct {
	Op  string
	Err error
}

// Error implements the error interface for SystemFailureError
func (e *SystemFailureError) Error() string {
	return fmt.Sprintf("failed to %s", e.Op)
}

// Unwrap returns the underlying cause
func (e *SystemFailureError) Unwrap() error {
	return e.Err
}

// Is allows proper error type checking with errors.Is()
func (e *SystemFailureError) Is(target error) bool {
	_, ok := target.(*SystemFailureError)
	return ok
}

// NewRuleViolation creates a RuleViolationError with one or more reasons
func NewRuleViolation(op string, reasons ...string) error {
	return &RuleViolationError{Op: op, Reasons: reasons}
}

// NewProductNotFoundError creates a new ProductNotFoundError
func NewProductNotFoundError(productID uint) error {
	return &ProductNotFoundError{ProductID: productID}
}

// NewSystemFailure creates a new SystemFailureError
func NewSystemFailure(op string, err error) error {
	return &SystemFailureError{Op: op, Err: err}
}

// IsRuleViolation checks if an error is an expected, user-facing rejection.
// A missing product counts as one.
func IsRuleViolation(err error) bool {
	var rv *RuleViolationError
	return errors.As(err, &rv) || IsProductNotFound(err)
}

// IsProductNotFound checks if an error is a ProductNotFoundError
func IsProductNotFound(err error) bool {
	var pnf *ProductNotFoundError
	return errors.As(err, &pnf)
}

// IsSystemFailure checks if an error is a SystemFailureError
func IsSystemFailure(err error) bool {
	var sf *SystemFailureError
	return errors.As(err, &sf)
}

// Reasons extracts user-facing reasons from a rule violation
func Reasons(err error) []string {
	var rv *RuleViolationError
	if errors.As(err, &rv) {
		return rv.Reasons
	}
	if IsProductNotFound(err) {
		return []string{err.Error()}
	}
	return nil
}
