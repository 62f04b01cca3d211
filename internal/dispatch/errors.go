package dispatch

import "fmt"

// wrappedErr pairs a typed scouterr sentinel with the exact user-facing
// message the tool/resource boundary should show — Error() is the
// literal display text, Unwrap() is the sentinel errors.Is/scouterr.Kind
// classify against.
type wrappedErr struct {
	sentinel error
	msg      string
}

func (e *wrappedErr) Error() string { return e.msg }
func (e *wrappedErr) Unwrap() error { return e.sentinel }

func wrap(sentinel error, format string, args ...any) error {
	return &wrappedErr{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}

// ResourceError is what the resource boundary raises for any non-
// ResourceNotFound failure (spec §7: "other exceptions are converted to
// ResourceError carrying the cause").
type ResourceError struct {
	Cause error
}

func (e *ResourceError) Error() string { return e.Cause.Error() }
func (e *ResourceError) Unwrap() error { return e.Cause }

// ResourceNotFound is raised when a matched pattern's underlying object
// does not exist (spec §7 ResourceNotFound).
type ResourceNotFound struct {
	Cause error
}

func (e *ResourceNotFound) Error() string { return e.Cause.Error() }
func (e *ResourceNotFound) Unwrap() error { return e.Cause }
