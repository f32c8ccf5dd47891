package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrInvalidPosition = errors.New("invalid grid position")
	ErrInvalidPlayerID = errors.New("player id is required")
	ErrInvalidFleet    = errors.New("invalid fleet layout")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameTaken  = errors.New("username is already taken")
	ErrEmailTaken     = errors.New("email is already registered")

	// Match errors
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchNotJoinable   = errors.New("match is not waiting for an opponent")
	ErrCannotJoinOwnMatch = errors.New("cannot join your own match")
	ErrMatchNotInProgress = errors.New("match is not in progress")
	ErrMatchFinished      = errors.New("match is already finished")
	ErrNotParticipant     = errors.New("player is not a participant in this match")
	ErrNotMatchCreator    = errors.New("player did not create this match")

	// Fire errors
	ErrNotYourTurn  = errors.New("not this player's turn")
	ErrAlreadyFired = errors.New("already fired at this position")

	// Fleet errors
	ErrFleetExists        = errors.New("fleet already exists")
	ErrPlacementExhausted = errors.New("fleet placement exhausted its retry budget")

	// Concurrency errors
	ErrConflict    = errors.New("concurrent update conflict")
	ErrLockTimeout = errors.New("timed out waiting for match lock")
)

// ErrorKind groups errors by how callers should react to them
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindIllegalMove        ErrorKind = "illegal_move"
	KindPlacementExhausted ErrorKind = "placement_exhausted"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
)

var errorKinds = map[ErrorKind][]error{
	KindValidation:         {ErrInvalidPosition, ErrInvalidPlayerID, ErrInvalidFleet},
	KindNotFound:           {ErrPlayerNotFound, ErrMatchNotFound},
	KindIllegalMove:        {ErrNotYourTurn, ErrAlreadyFired, ErrMatchNotJoinable, ErrCannotJoinOwnMatch, ErrMatchNotInProgress, ErrMatchFinished, ErrNotParticipant, ErrNotMatchCreator},
	KindPlacementExhausted: {ErrPlacementExhausted},
	KindConflict:           {ErrConflict, ErrFleetExists, ErrLockTimeout, ErrUsernameTaken, ErrEmailTaken},
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for kind, errs := range errorKinds {
		for _, target := range errs {
			if errors.Is(err, target) {
				return kind
			}
		}
	}
	return KindInternal
}
