package internal

import (
	"errors"
	"fmt"
)

// ErrCircularDependency is the panic value raised when a computed re-enters
// its own evaluation, directly or through other computeds.
var ErrCircularDependency = errors.New("microsig: circular dependency detected")

// ErrRunawayFlush is reported when a single Tick runs more microtasks than
// allowed, which usually means effects keep re-triggering each other.
var ErrRunawayFlush = errors.New("microsig: too many microtasks in one tick")

// EvaluatorError wraps a value recovered from a panicking evaluator.
type EvaluatorError struct {
	Value any
}

func NewEvaluatorError(v any) *EvaluatorError {
	if err, ok := v.(*EvaluatorError); ok {
		return err
	}
	return &EvaluatorError{Value: v}
}

func (e *EvaluatorError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "microsig: evaluator failed: " + err.Error()
	}
	return fmt.Sprintf("microsig: evaluator panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *EvaluatorError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
