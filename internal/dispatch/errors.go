package dispatch

import (
	"strings"

	"classd/pkg/types"
)

// allBackendsFailedError signals that no classifier produced a score for
// the request, so there is nothing to combine.
type allBackendsFailedError struct {
	failures []types.BackendFailure
}

func (e allBackendsFailedError) Error() string {
	if len(e.failures) == 0 {
		return "all backends failed"
	}
	parts := make([]string, 0, len(e.failures))
	for _, f := range e.failures {
		parts = append(parts, f.Model+": "+f.Reason)
	}
	return "all backends failed: " + strings.Join(parts, "; ")
}

// Failures exposes the per-backend annotations behind the error.
func (e allBackendsFailedError) Failures() []types.BackendFailure {
	return append([]types.BackendFailure(nil), e.failures...)
}

// ErrAllBackendsFailed constructs an allBackendsFailedError.
func ErrAllBackendsFailed(failures []types.BackendFailure) error {
	return allBackendsFailedError{failures: failures}
}

// IsAllBackendsFailed reports whether err means zero backends succeeded.
func IsAllBackendsFailed(err error) bool {
	_, ok := err.(allBackendsFailedError)
	return ok
}

// emptyModeError signals a request whose mode selection named no usable
// classifier, either because it was blank or because every name was
// unknown.
type emptyModeError struct {
	unknown []string
}

func (e emptyModeError) Error() string {
	if len(e.unknown) == 0 {
		return "no classifiers requested"
	}
	return "no valid classifiers requested, unknown: " + strings.Join(e.unknown, ", ")
}

// ErrEmptyMode constructs an emptyModeError, optionally naming the
// unknown modes that were requested.
func ErrEmptyMode(unknown ...string) error { return emptyModeError{unknown: unknown} }

// IsEmptyMode reports whether err indicates an empty classifier selection.
func IsEmptyMode(err error) bool {
	_, ok := err.(emptyModeError)
	return ok
}
