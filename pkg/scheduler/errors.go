package scheduler

import "errors"

var (
	ErrLimitExceeded    = errors.New("scheduler: task limit exceeded")
	ErrNoSuchTaskID     = errors.New("scheduler: no such task id")
	ErrInvalidParameter = errors.New("scheduler: invalid parameter")
	ErrInvalidCapacity  = errors.New("scheduler: capacity must be at least 1")
)
