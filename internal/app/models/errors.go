package models

import "errors"

// Domain specific errors shared across panels, dispatch and REST glue.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownAction   = errors.New("unknown frontend action")
	ErrUnknownPanel    = errors.New("unknown panel")
	ErrPayloadShape    = errors.New("payload does not match expected shape")
	ErrInvalidDateSpan = errors.New("endDate must be on or after startDate")
)
