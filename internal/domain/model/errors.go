package model

import "errors"

// Sentinel kinds for board domain errors. Expected business-rule violations
// (WIP exceeded, illegal transition, not-found) are branched on with
// errors.Is and surfaced to callers as structured results, not panics.
var (
	ErrBoardNotFound     = errors.New("board not found")
	ErrCardNotFound      = errors.New("card not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrSwimlaneNotFound  = errors.New("swimlane not found")
	ErrDuplicateBoard    = errors.New("board already exists")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrWipLimitExceeded  = errors.New("wip limit exceeded")
	ErrValidation        = errors.New("validation error")
)
