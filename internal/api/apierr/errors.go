package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/auth"
	"github.com/mcoot/battleship/internal/services/bot"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPosition    = "INVALID_POSITION"
	CodeInvalidFleet       = "INVALID_FLEET"
	CodeUnknownStrategy    = "UNKNOWN_STRATEGY"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeMatchNotFound      = "MATCH_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeNotParticipant     = "NOT_PARTICIPANT"
	CodeNotMatchCreator    = "NOT_MATCH_CREATOR"
	CodeAlreadyFired       = "ALREADY_FIRED"
	CodeMatchNotJoinable   = "MATCH_NOT_JOINABLE"
	CodeCannotJoinOwn      = "CANNOT_JOIN_OWN_MATCH"
	CodeMatchNotInProgress = "MATCH_NOT_IN_PROGRESS"
	CodeMatchFinished      = "MATCH_FINISHED"
	CodeIllegalMove        = "ILLEGAL_MOVE"
	CodeConflict           = "CONFLICT"
	CodePlacementExhausted = "PLACEMENT_EXHAUSTED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err would be written with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, "Target must be within the 10x10 grid"}}
	case errors.Is(err, model.ErrInvalidFleet):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidFleet, "Invalid fleet layout"}}
	case errors.Is(err, bot.ErrUnknownStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownStrategy, "Unknown bot strategy"}}
	case errors.Is(err, auth.ErrWeakPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeWeakPassword, err.Error()}}
	case errors.Is(err, auth.ErrMissingUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	// Not found
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}}

	// Illegal moves: acting out of turn or without the right seat is forbidden,
	// acting against the match's current state is a conflict
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrNotParticipant):
		return &httpError{http.StatusForbidden, APIError{CodeNotParticipant, "You are not playing in this match"}}
	case errors.Is(err, model.ErrNotMatchCreator):
		return &httpError{http.StatusForbidden, APIError{CodeNotMatchCreator, "Only the match creator can do this"}}
	case errors.Is(err, model.ErrAlreadyFired):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyFired, "Already fired at this position"}}
	case errors.Is(err, model.ErrMatchNotJoinable):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotJoinable, "Match is not waiting for an opponent"}}
	case errors.Is(err, model.ErrCannotJoinOwnMatch):
		return &httpError{http.StatusConflict, APIError{CodeCannotJoinOwn, "Cannot join your own match"}}
	case errors.Is(err, model.ErrMatchNotInProgress):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotInProgress, "Match is not in progress"}}
	case errors.Is(err, model.ErrMatchFinished):
		return &httpError{http.StatusConflict, APIError{CodeMatchFinished, "Match is already finished"}}

	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists), errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, model.ErrEmailTaken):
		return &httpError{http.StatusConflict, APIError{CodeEmailTaken, "Email is already registered"}}
	}

	switch model.KindOf(err) {
	case model.KindValidation:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case model.KindNotFound:
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}
	case model.KindIllegalMove:
		return &httpError{http.StatusConflict, APIError{CodeIllegalMove, err.Error()}}
	case model.KindConflict:
		return &httpError{http.StatusConflict, APIError{CodeConflict, "The match changed underneath this request, try again"}}
	case model.KindPlacementExhausted:
		return &httpError{http.StatusInternalServerError, APIError{CodePlacementExhausted, "Could not place a fleet"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
