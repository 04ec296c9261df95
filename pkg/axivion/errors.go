package axivion

import "errors"

var (
	ErrUnknownKind     = errors.New("unknown issue kind")
	ErrMalformedRow    = errors.New("malformed issue row")
	ErrInvalidResponse = errors.New("invalid dashboard response")
)
