package platform

import (
	"errors"
	"fmt"
)

// ProbeErrorKind classifies shell probe failures.
type ProbeErrorKind int

const (
	// ShellNotFound means no shell or tray container could be located.
	ShellNotFound ProbeErrorKind = iota + 1
	// GeometryUnavailable means the shell exists but its rectangles could not be read.
	GeometryUnavailable
)

func (k ProbeErrorKind) String() string {
	switch k {
	case ShellNotFound:
		return "shell not found"
	case GeometryUnavailable:
		return "geometry unavailable"
	default:
		return "probe error"
	}
}

// ProbeError is returned by ShellProbe implementations. Both kinds are
// retried on the next tick.
type ProbeError struct {
	Kind ProbeErrorKind
	Err  error
}

var (
	ErrShellNotFound       = &ProbeError{Kind: ShellNotFound}
	ErrGeometryUnavailable = &ProbeError{Kind: GeometryUnavailable}
)

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Is matches any ProbeError of the same kind.
func (e *ProbeError) Is(target error) bool {
	pe, ok := target.(*ProbeError)
	return ok && pe.Kind == e.Kind
}

// NewProbeError wraps err with kind.
func NewProbeError(kind ProbeErrorKind, format string, args ...any) *ProbeError {
	return &ProbeError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ErrApply is matched by every ApplyError.
var ErrApply = errors.New("apply failed")

// ApplyError reports a failed window mutation. The field that failed is
// retried on the next reconciliation pass.
type ApplyError struct {
	Field string
	Err   error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s: %v", e.Field, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

func (e *ApplyError) Is(target error) bool { return target == ErrApply }
