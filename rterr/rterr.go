// Package rterr defines the closed error taxonomy shared by every
// ray-tracing component, so a caller can classify a failure without
// string matching.
package rterr

import "fmt"

// Kind is the closed vocabulary of failures the ray-tracing pipeline can
// report.
type Kind uint8

const (
	// Configuration is a missing required field, an unknown quantity name,
	// or contradictory tuning. Raised at Scenery construction; aborts the
	// run.
	Configuration Kind = iota + 1
	// CoordinateKindUnsupported means a component does not support the
	// active coordinate kind. Raised at first use; terminates the pixel
	// and, by policy, the run.
	CoordinateKindUnsupported
	// GridIndexOutOfRange means tabulated emitter indexing overflowed
	// beyond a tolerance of one cell.
	GridIndexOutOfRange
	// IntegratorStalled means an adaptive step shrank below DeltaMin
	// without meeting tolerance.
	IntegratorStalled
	// HorizonReached is a terminal, non-fatal integrator event.
	HorizonReached
	// EscapeReached is a terminal, non-fatal integrator event.
	EscapeReached
	// DataIO is a malformed or missing tabular extension/metadata.
	DataIO
	// Invariant is an internal consistency violation. Aborts the run.
	Invariant
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "Configuration"
	case CoordinateKindUnsupported:
		return "CoordinateKindUnsupported"
	case GridIndexOutOfRange:
		return "GridIndexOutOfRange"
	case IntegratorStalled:
		return "IntegratorStalled"
	case HorizonReached:
		return "HorizonReached"
	case EscapeReached:
		return "EscapeReached"
	case DataIO:
		return "DataIO"
	case Invariant:
		return "Invariant"
	}
	return "UnknownKind"
}

// Error is the typed error every package in this module returns instead of
// panicking on a recognized failure mode.
type Error struct {
	Kind    Kind
	Subsys  string // e.g. "metric", "astrobj", "photon"
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Subsys, e.Message)
}

// New builds an Error.
func New(kind Kind, subsys, message string, args ...interface{}) *Error {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &Error{Kind: kind, Subsys: subsys, Message: message}
}

// Fatal reports whether this Kind aborts the whole run as opposed to
// terminating only the pixel that raised it (spec §7 propagation policy).
func (k Kind) Fatal() bool {
	switch k {
	case Configuration, DataIO, Invariant, CoordinateKindUnsupported:
		return true
	default:
		return false
	}
}
