// Package errors provides the coded error taxonomy shared by the router
// packages and the pagerouter CLI.
//
// Each error code (e.g. "R002") maps to a registered template carrying a
// category, a short message, a longer explanation and a documentation URL.
// Errors compare by code, so a wrapped instance still satisfies errors.Is
// against the sentinel built from the same code:
//
//	var ErrContentLoad = errors.New("R002")
//
//	err := errors.New("R002").WithDetail("status code 404").Wrap(cause)
//	stderrors.Is(err, ErrContentLoad) // true
//
// Only argument and configuration errors are returned to callers. Content
// and guard failures are logged and turned into state transitions; their
// codes exist so log lines and metrics stay greppable.
package errors
