package settlement

import (
	"errors"
	"fmt"
)

var (
	// No committed node has an unreserved connector, a re-rooted phase cannot start
	ErrNoOpenSlot = errors.New("settlement: no node with an open slot")
	// The search returned no placement to commit
	ErrEmptyRoute = errors.New("settlement: empty route")
	// Consecutive route nodes are not parent and child, or a slot is already taken
	ErrBrokenRoute = errors.New("settlement: broken route")
	// A route node overlaps a committed structure
	ErrCollision = errors.New("settlement: structures collide")
	// A fresh phase needs at least one root structure name
	ErrNoRootStructure = errors.New("settlement: no root structure")
)

// Fatal error of a single phase, with the state it was raised in
type PhaseError struct {
	Phase string
	State string
	Err   error
}

func (e *PhaseError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("phase %q: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("phase %q: %v (state: %s)", e.Phase, e.Err, e.State)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
