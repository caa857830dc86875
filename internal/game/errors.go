package game

import "fmt"

// ConfigurationError reports a rule step with no registered part. The
// engine logs it and treats the step as a no-op rather than corrupting the
// game.
type ConfigurationError struct {
	RuleID int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("game: no rule part registered for rule %d", e.RuleID)
}

// InvariantViolationError reports a game definition that broke an engine
// invariant, such as shuffling together items that are not equally visible
// to every viewer.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "game: invariant violation: " + e.Reason
}

// RuntimeLoopError reports a consequence chain that did not settle within
// the configured fuse. It aborts the move instead of spinning forever on a
// buggy rule part.
type RuntimeLoopError struct {
	Fuse int
}

func (e *RuntimeLoopError) Error() string {
	return fmt.Sprintf("game: consequences still flowing after %d moves, aborting", e.Fuse)
}
