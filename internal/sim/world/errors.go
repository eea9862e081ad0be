package world

import "errors"

var (
	// ErrInvalidState marks a contract violation when building an entity,
	// e.g. an Indication marker without a direction.
	ErrInvalidState = errors.New("invalid state")

	// ErrConfigurationInfeasible is returned by New when the requested
	// population cannot be placed within the retry budget.
	ErrConfigurationInfeasible = errors.New("configuration infeasible")

	// ErrStuckAgent is a soft diagnostic: a robot found no legal heading
	// within its retry cap and stayed in place for the tick.
	ErrStuckAgent = errors.New("agent stuck")
)
