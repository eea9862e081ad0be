package protocol

import (
	"errors"

	"deminer.ai/internal/sim/world"
)

const (
	// Contract violations while building entities.
	ErrInvalidState = "E_INVALID_STATE"
	// Placement exhausted its retry budget or the config is out of range.
	ErrConfigInfeasible = "E_CONFIG_INFEASIBLE"
	// A robot found no legal heading for a tick. Soft diagnostic.
	ErrAgentStuck = "E_AGENT_STUCK"

	// Transport validation.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrInvalidState:     {},
	ErrConfigInfeasible: {},
	ErrAgentStuck:       {},
	ErrBadRequest:       {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeFor maps an error to its wire code. nil maps to "".
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, world.ErrInvalidState):
		return ErrInvalidState
	case errors.Is(err, world.ErrConfigurationInfeasible):
		return ErrConfigInfeasible
	case errors.Is(err, world.ErrStuckAgent):
		return ErrAgentStuck
	default:
		return ErrInternal
	}
}

// ErrorResponse is the JSON body of a failed HTTP request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Code: CodeFor(err), Message: err.Error()}
}
