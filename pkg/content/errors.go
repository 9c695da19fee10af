package content

import rerrors "github.com/vango-dev/pagerouter/internal/errors"

// Errors logged by content loading and mounting. Compare with errors.Is.
var (
	ErrLoadFailed          = rerrors.New("R002")
	ErrRenderFailed        = rerrors.New("R003")
	ErrModuleNotRegistered = rerrors.New("R007")
)
