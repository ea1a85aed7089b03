package services

import (
	"errors"
	"fmt"
)

// Ошибки движка турниров. Операции оборачивают их через fmt.Errorf("%w: ...").
var (
	ErrNotFound            = errors.New("not found")
	ErrTournamentNotFound  = fmt.Errorf("tournament %w", ErrNotFound)
	ErrMatchNotFound       = fmt.Errorf("match %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)

	ErrInvalidState        = errors.New("operation not valid in the current state")
	ErrAlreadyRegistered   = errors.New("participant is already registered")
	ErrPaymentRequired     = errors.New("entry fee has not been paid")
	ErrInsufficientPlayers = errors.New("not enough checked-in players to start")
	ErrUnauthorized        = errors.New("caller is not allowed to perform this operation")
	ErrInvalidConfig       = errors.New("invalid tournament configuration")
	ErrValidationFailed    = errors.New("validation failed")

	// ErrInternal marks an invariant violation; the operation is aborted and nothing is committed.
	ErrInternal = errors.New("internal tournament engine error")
)

// IsNotFound reports whether err is any of the not-found kinds; each of them
// wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
