package game

import (
	"strconv"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

// The game memory stores rule bookkeeping that is not carried by the items
// themselves: round counters, pending choices, per-player flags. Values
// must be JSON-shaped, the memory serializes with the rest of the state.

// Memorize stores a value under a key.
func (s *State) Memorize(key string, value any) {
	if s.Memory == nil {
		s.Memory = map[string]any{}
	}
	s.Memory[key] = material.CloneValue(value)
}

// Remind returns the value stored under a key.
func (s *State) Remind(key string) (any, bool) {
	v, ok := s.Memory[key]
	return v, ok
}

// Forget removes a key.
func (s *State) Forget(key string) {
	delete(s.Memory, key)
}

// MemorizePlayer stores a value under a key for one player.
func (s *State) MemorizePlayer(key string, player int, value any) {
	if s.Memory == nil {
		s.Memory = map[string]any{}
	}
	perPlayer, ok := s.Memory[key].(map[string]any)
	if !ok {
		perPlayer = map[string]any{}
		s.Memory[key] = perPlayer
	}
	perPlayer[strconv.Itoa(player)] = material.CloneValue(value)
}

// RemindPlayer returns the value stored under a key for one player.
func (s *State) RemindPlayer(key string, player int) (any, bool) {
	perPlayer, ok := s.Memory[key].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := perPlayer[strconv.Itoa(player)]
	return v, ok
}

// ForgetPlayer removes the value stored under a key for one player.
func (s *State) ForgetPlayer(key string, player int) {
	if perPlayer, ok := s.Memory[key].(map[string]any); ok {
		delete(perPlayer, strconv.Itoa(player))
		if len(perPlayer) == 0 {
			delete(s.Memory, key)
		}
	}
}
