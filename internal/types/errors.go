package types

import "errors"

// Domain outcomes the caller is expected to branch on. These are returned
// as values, never panics; match with errors.Is.
var (
	// ErrNotFound means the entity id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a status precondition did not hold anymore
	// (0-rows-affected on a conditional update, double-open interval, ...).
	ErrConflict = errors.New("conflict")

	// ErrInvalid means malformed input (negative quantity, missing id, ...).
	ErrInvalid = errors.New("invalid")

	// ErrMachineUnavailable is the acquire-specific conflict: the machine
	// exists but is not available.
	ErrMachineUnavailable = errors.New("machine unavailable")

	// ErrMachineBusy rejects admin status changes while an order holds the machine.
	ErrMachineBusy = errors.New("machine busy")

	// ErrStorageUnavailable wraps I/O or connectivity faults. Nothing committed.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
