package router

import rerrors "github.com/vango-dev/pagerouter/internal/errors"

// Errors returned or logged by the router. Compare with errors.Is.
var (
	// ErrInvalidState is returned by GoToPage and ReplacePage when the
	// state option is not nil or a string-keyed map.
	ErrInvalidState = rerrors.New("R001")

	// ErrGuardRedirectLoop is logged when a redirect chain revisits a
	// target. The navigation is treated as blocked.
	ErrGuardRedirectLoop = rerrors.New("R004")

	// ErrGuardFailed is logged when a guard errors or panics. The
	// navigation is treated as blocked.
	ErrGuardFailed = rerrors.New("R005")

	// ErrInvalidMode is returned by SetRoutingMode and ParseMode.
	ErrInvalidMode = rerrors.New("R006")
)
