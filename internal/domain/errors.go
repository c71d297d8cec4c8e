package domain

import "errors"

// Domain errors
var (
	ErrInvalidPhase       = errors.New("invalid action for current phase")
	ErrNotAuthorized      = errors.New("caller is not the aux holder")
	ErrUnknownTarget      = errors.New("vote target is not in the roster")
	ErrUnknownParticipant = errors.New("participant not found")
	ErrAlreadyRated       = errors.New("already rated this round")
	ErrNotRated           = errors.New("no rating to remove")
	ErrInvalidDecision    = errors.New("rating must be keep or pass")
)
