package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
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
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeInvalidSide             = "INVALID_SIDE"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInvalidSession          = "INVALID_SESSION"
	CodeAddressClaimed          = "ADDRESS_CLAIMED"
	CodeForbidden               = "FORBIDDEN"
	CodeNotYourTurn             = "NOT_YOUR_TURN"
	CodeNotSelf                 = "NOT_SELF"
	CodeWrongState              = "WRONG_STATE"
	CodePlayersFull             = "PLAYERS_FULL"
	CodeAlreadyRegistered       = "ALREADY_REGISTERED"
	CodeAlreadyInitialized      = "ALREADY_INITIALIZED"
	CodeBattleNotFound          = "BATTLE_NOT_FOUND"
	CodeUnknownActor            = "UNKNOWN_ACTOR"
	CodeUnsupportedRequest      = "UNSUPPORTED_REQUEST"
	CodeUnexpectedReply         = "UNEXPECTED_REPLY"
	CodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	CodeUnavailable             = "UNAVAILABLE"
	CodeTimeout                 = "TIMEOUT"
	CodeNotFound                = "NOT_FOUND"
	CodeInternalError           = "INTERNAL_ERROR"
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

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Session errors
	case errors.Is(err, model.ErrBattleNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeBattleNotFound, "Battle has not been initialized"}}
	case errors.Is(err, model.ErrAlreadyInitialized):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInitialized, "Battle is already initialized"}}
	case errors.Is(err, model.ErrWrongState):
		return &httpError{http.StatusConflict, APIError{CodeWrongState, "Battle is not in the required state"}}
	case errors.Is(err, model.ErrPlayersFull):
		return &httpError{http.StatusConflict, APIError{CodePlayersFull, "Battle already has two players"}}
	case errors.Is(err, model.ErrEntityAlreadyRegistered):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyRegistered, "Entity is already registered"}}
	case errors.Is(err, model.ErrProgramStopped):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "Battle program is stopped"}}

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid address or secret"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidSession, "Session is invalid or expired"}}
	case errors.Is(err, auth.ErrAddressReserved):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Address is reserved"}}
	case errors.Is(err, auth.ErrInvalidSecret):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Secret must be between 8 and 72 bytes"}}
	case errors.Is(err, auth.ErrInvalidAddress):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Address is required"}}
	case errors.Is(err, model.ErrAddressClaimed):
		return &httpError{http.StatusConflict, APIError{CodeAddressClaimed, "Address is already claimed"}}

	// Authorization errors
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "You are not in the game or it is not your turn"}}
	case errors.Is(err, model.ErrNotSelf):
		return &httpError{http.StatusForbidden, APIError{CodeNotSelf, "Only the program itself can perform this action"}}

	// Request errors
	case errors.Is(err, model.ErrInvalidSide):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSide, "Side must be LEFT or RIGHT"}}
	case errors.Is(err, model.ErrInvalidEntity):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Entity id is required"}}
	case errors.Is(err, model.ErrUnknownRequest):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Unknown request kind"}}

	// Collaborator errors
	case errors.Is(err, model.ErrUnknownActor):
		return &httpError{http.StatusNotFound, APIError{CodeUnknownActor, "No endpoint known for actor"}}
	case errors.Is(err, model.ErrUnsupportedRequest):
		return &httpError{http.StatusBadRequest, APIError{CodeUnsupportedRequest, "Request is not supported"}}
	case errors.Is(err, model.ErrUnexpectedReply):
		return &httpError{http.StatusBadGateway, APIError{CodeUnexpectedReply, "Collaborator replied with an unexpected message"}}
	case errors.Is(err, model.ErrCollaboratorUnavailable):
		return &httpError{http.StatusBadGateway, APIError{CodeCollaboratorUnavailable, "Collaborator is unavailable"}}
	case errors.Is(err, model.ErrRandomUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "Randomness source is unavailable"}}

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &httpError{http.StatusGatewayTimeout, APIError{CodeTimeout, "Request was abandoned before the reply arrived"}}

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
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Bearer session token required"}}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
