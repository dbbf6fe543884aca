package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/whamageddon/internal/model"
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
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeIdentityRequired  = "IDENTITY_REQUIRED"
	CodeGroupNotFound     = "GROUP_NOT_FOUND"
	CodeGroupNameMissing  = "GROUP_NAME_MISSING"
	CodeWrongPassword     = "WRONG_PASSWORD"
	CodeNotGroupAdmin     = "NOT_GROUP_ADMIN"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodePlayerNameMissing = "PLAYER_NAME_MISSING"
	CodeInvalidPIN        = "INVALID_PIN"
	CodeAlreadyInGroup    = "ALREADY_IN_GROUP"
	CodeAlreadyWhammed    = "ALREADY_WHAMMED"
	CodeNotWhammed        = "NOT_WHAMMED"
	CodeNotYourPlayer     = "NOT_YOUR_PLAYER"
	CodeProfileNotFound   = "PROFILE_NOT_FOUND"
	CodeRecoveryNoMatch   = "RECOVERY_NO_MATCH"
	CodeRecoveryAmbiguous = "RECOVERY_AMBIGUOUS"
	CodeInternalError     = "INTERNAL_ERROR"
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

// Status returns the HTTP status an error maps to
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
	// Group errors
	case errors.Is(err, model.ErrGroupNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGroupNotFound, "Group not found"}}
	case errors.Is(err, model.ErrGroupNameMissing):
		return &httpError{http.StatusBadRequest, APIError{CodeGroupNameMissing, "Group name is required"}}
	case errors.Is(err, model.ErrWrongPassword):
		return &httpError{http.StatusForbidden, APIError{CodeWrongPassword, "Wrong group password"}}
	case errors.Is(err, model.ErrNotGroupAdmin):
		return &httpError{http.StatusForbidden, APIError{CodeNotGroupAdmin, "Only the group creator can do that"}}

	// Player errors
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrPlayerNameMissing):
		return &httpError{http.StatusBadRequest, APIError{CodePlayerNameMissing, "Name is required"}}
	case errors.Is(err, model.ErrInvalidPIN):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPIN, "PIN must be four digits"}}
	case errors.Is(err, model.ErrAlreadyInGroup):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInGroup, "Already joined this group"}}
	case errors.Is(err, model.ErrAlreadyWhammed):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyWhammed, "Player is already out"}}
	case errors.Is(err, model.ErrNotWhammed):
		return &httpError{http.StatusConflict, APIError{CodeNotWhammed, "Player is still in"}}
	case errors.Is(err, model.ErrNotYourPlayer):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourPlayer, "That player belongs to someone else"}}

	// Profile and recovery errors
	case errors.Is(err, model.ErrIdentityRequired):
		return &httpError{http.StatusUnauthorized, APIError{CodeIdentityRequired, "User id required"}}
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "No profile for this user"}}
	case errors.Is(err, model.ErrRecoveryNoMatch):
		return &httpError{http.StatusNotFound, APIError{CodeRecoveryNoMatch, "No player matches that name and PIN"}}
	case errors.Is(err, model.ErrRecoveryAmbiguous):
		return &httpError{http.StatusConflict, APIError{CodeRecoveryAmbiguous, "Name and PIN match more than one user"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewIdentityRequiredError creates an error for requests missing a user id
func NewIdentityRequiredError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeIdentityRequired, "User id required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
