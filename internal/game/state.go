// Package game drives a deterministic, replayable state machine over a
// material store: rule steps decide the legal and automatic moves, the
// engine plays moves and drains their consequences, the visibility layer
// derives per-player views, and the undo policy tells which recorded
// actions can still be taken back.
package game

import (
	"github.com/gamepark/rules-server-go/internal/game/material"
)

// State is the complete, serializable state of one game.
type State struct {
	Players []int                   `json:"players"`
	Items   map[int][]material.Item `json:"items"`
	Rule    *RuleStep               `json:"rule,omitempty"`
	Memory  map[string]any          `json:"memory,omitempty"`
}

// RuleStep is the currently active step of the state machine. Player is set
// during a single-player turn, Players during a simultaneous phase.
type RuleStep struct {
	ID           int           `json:"id"`
	Player       *int          `json:"player,omitempty"`
	Players      []int         `json:"players,omitempty"`
	Interleaving *Interleaving `json:"interleaving,omitempty"`
}

// Interleaving is the frozen slot allocation record of a simultaneous
// phase. Players holds the participants sorted ascending, AvailableIndexes
// the per-item-type free slot list captured when the phase started. It
// never changes while the phase is open, not even when players finish
// their turn or items are created or deleted.
type Interleaving struct {
	Players          []int         `json:"players"`
	AvailableIndexes map[int][]int `json:"availableIndexes"`
}

// NewState builds an empty state for the given players.
func NewState(players []int) *State {
	return &State{
		Players: append([]int(nil), players...),
		Items:   map[int][]material.Item{},
		Memory:  map[string]any{},
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := &State{
		Players: append([]int(nil), s.Players...),
		Items:   make(map[int][]material.Item, len(s.Items)),
	}
	for typ, items := range s.Items {
		copied := make([]material.Item, len(items))
		for i, it := range items {
			copied[i] = it.Clone()
		}
		c.Items[typ] = copied
	}
	c.Rule = s.Rule.Clone()
	if s.Memory != nil {
		c.Memory = material.CloneValue(s.Memory).(map[string]any)
	}
	return c
}

// Clone returns a deep copy of the rule step.
func (r *RuleStep) Clone() *RuleStep {
	if r == nil {
		return nil
	}
	c := &RuleStep{ID: r.ID}
	if r.Player != nil {
		p := *r.Player
		c.Player = &p
	}
	if r.Players != nil {
		c.Players = append([]int(nil), r.Players...)
	}
	if r.Interleaving != nil {
		inter := &Interleaving{
			Players:          append([]int(nil), r.Interleaving.Players...),
			AvailableIndexes: make(map[int][]int, len(r.Interleaving.AvailableIndexes)),
		}
		for typ, indexes := range r.Interleaving.AvailableIndexes {
			inter.AvailableIndexes[typ] = append([]int(nil), indexes...)
		}
		c.Interleaving = inter
	}
	return c
}

// IsActive reports whether the player may act in the current rule step.
func (r *RuleStep) IsActive(player int) bool {
	if r == nil {
		return false
	}
	if r.Player != nil && *r.Player == player {
		return true
	}
	for _, p := range r.Players {
		if p == player {
			return true
		}
	}
	return false
}
