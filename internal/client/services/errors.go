package services

import "errors"

var (
	ErrTitleRequired = errors.New("title is required")
	ErrStartRequired = errors.New("start date is required")
	// ErrMissingID means the backend answered a write without an entry id.
	ErrMissingID = errors.New("response has no journal id")
	ErrNoUserID  = errors.New("cannot determine user id")
)
