package realtime

import "errors"

var (
	ErrNoUserID  = errors.New("realtime: user id is required")
	ErrNoHandler = errors.New("realtime: handler is required")
)
