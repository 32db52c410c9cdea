package domain

import "errors"

// Business errors returned by the service and repository layers.
// Handlers classify these with errors.Is and map them to transport
// codes; anything unrecognized is treated as a database failure.
var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerBanned        = errors.New("customer is banned")
	ErrNoPendingRequest      = errors.New("no pending queue request")
	ErrQueueNotFound         = errors.New("queue entry not found")
	ErrQueueNotAvailable     = errors.New("queue entry not available")
	ErrOfficialNotFound      = errors.New("official not found")
	ErrMaxSessionsReached    = errors.New("official has reached max sessions")
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionAlreadyEnded   = errors.New("session already ended")
	ErrNotSessionParticipant = errors.New("user is not a session participant")
	ErrInternal              = errors.New("internal error")
)
