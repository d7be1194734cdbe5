package relay

import "errors"

var (
	ErrInvalidChannel   = errors.New("invalid channel")
	ErrChannelForbidden = errors.New("channel forbidden")
)
