package lv2

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContractViolation is returned when a caller invariant is broken:
	// an empty predicate, a port index out of range, or a cardinality
	// expectation that the data does not meet.
	ErrContractViolation = errors.New("contract violation")

	// ErrEngineFailure is returned when the query engine could not execute
	// a request. It is distinct from an empty result.
	ErrEngineFailure = errors.New("engine failure")
)

// ErrorKind classifies a ResolutionError
type ErrorKind string

const (
	// KindContractViolation marks a broken caller invariant
	KindContractViolation ErrorKind = "contract_violation"
	// KindEngineFailure marks a failed query execution
	KindEngineFailure ErrorKind = "engine_failure"
)

// ResolutionError describes a failed attribute resolution
type ResolutionError struct {
	// Kind is the error classification
	Kind ErrorKind `json:"kind"`
	// Op is the accessor that failed, e.g. "LatencyPortIndex"
	Op string `json:"op"`
	// Plugin is the subject plugin URI, if known
	Plugin string `json:"plugin,omitempty"`
	// Predicate is the queried predicate, if any
	Predicate string `json:"predicate,omitempty"`
	// Err is the underlying cause
	Err error `json:"-"`
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("lv2: ")
	b.WriteString(e.Op)
	if e.Plugin != "" {
		fmt.Fprintf(&b, " <%s>", e.Plugin)
	}
	if e.Predicate != "" {
		fmt.Fprintf(&b, " %s", e.Predicate)
	}
	b.WriteString(": ")
	b.WriteString(e.sentinel().Error())
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *ResolutionError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ResolutionError) sentinel() error {
	if e.Kind == KindEngineFailure {
		return ErrEngineFailure
	}
	return ErrContractViolation
}

func contractViolation(op, plugin, predicate string, format string, args ...interface{}) error {
	return &ResolutionError{
		Kind:      KindContractViolation,
		Op:        op,
		Plugin:    plugin,
		Predicate: predicate,
		Err:       fmt.Errorf(format, args...),
	}
}

func engineFailure(op, plugin, predicate string, err error) error {
	return &ResolutionError{
		Kind:      KindEngineFailure,
		Op:        op,
		Plugin:    plugin,
		Predicate: predicate,
		Err:       err,
	}
}
