package history

import "errors"

var (
	ErrNoMoreElements   = errors.New("no more runs with an analysis result available")
	ErrUnknownMode      = errors.New("unknown evaluation mode")
	ErrUnknownGateType  = errors.New("unknown quality gate type")
	ErrInvalidThreshold = errors.New("quality gate threshold must be positive")
)
