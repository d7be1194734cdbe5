package prefs

import "errors"

var ErrInvalidValue = errors.New("invalid preference value")
