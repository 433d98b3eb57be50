package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrBattleNotFound          = errors.New("battle not found")
	ErrAlreadyInitialized      = errors.New("battle is already initialized")
	ErrWrongState              = errors.New("battle is not in the required state")
	ErrPlayersFull             = errors.New("battle already has two players")
	ErrEntityAlreadyRegistered = errors.New("entity is already registered in this battle")
	ErrProgramStopped          = errors.New("battle program is stopped")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAddressClaimed  = errors.New("address is already claimed")

	// Authorization errors
	ErrNotYourTurn = errors.New("you are not in the game or it is not your turn")
	ErrNotSelf     = errors.New("only the program itself can perform this action")

	// Request errors
	ErrInvalidSide    = errors.New("side must be LEFT or RIGHT")
	ErrInvalidEntity  = errors.New("entity id is required")
	ErrUnknownRequest = errors.New("unknown request kind")

	// Collaborator errors
	ErrUnexpectedReply         = errors.New("collaborator replied with an unexpected message")
	ErrCollaboratorUnavailable = errors.New("collaborator is unavailable")
	ErrUnknownActor            = errors.New("no endpoint known for actor")
	ErrUnsupportedRequest      = errors.New("collaborator does not support this request")

	// Randomness errors
	ErrRandomUnavailable = errors.New("randomness source is unavailable")
)
