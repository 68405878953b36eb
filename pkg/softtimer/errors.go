package softtimer

import "errors"

var (
	ErrLimitExceeded    = errors.New("softtimer: timer limit exceeded")
	ErrNoSuchTimer      = errors.New("softtimer: no such timer")
	ErrInvalidParameter = errors.New("softtimer: invalid parameter")
	ErrNotRegistered    = errors.New("softtimer: timer not registered")
	ErrInvalidCapacity  = errors.New("softtimer: capacity must be at least 1")
)
