package game

import (
	"github.com/gamepark/rules-server-go/internal/game/material"
)

// RulePart implements the behavior of one rule step. Parts are stateless
// values registered per rule identifier in the Definition, every call
// receives the state explicitly.
type RulePart interface {
	// IsTurnToPlay reports whether the player may act in this step.
	IsTurnToPlay(g *State, player int) bool
	// GetLegalMoves lists the moves the player may submit.
	GetLegalMoves(g *State, player int) []material.Move
	// GetAutomaticMoves lists the moves the engine plays on its own when
	// the consequence queue runs dry.
	GetAutomaticMoves(g *State) []material.Move
	// OnRuleStart runs when the step becomes active. previous is the step
	// that was active before, nil at game start.
	OnRuleStart(g *State, mv material.Move, previous *RuleStep) []material.Move
	// OnRuleEnd runs on the outgoing step before a rule change applies.
	OnRuleEnd(g *State, mv material.Move) []material.Move
	// BeforeItemMove runs before an item move of any type mutates the
	// store.
	BeforeItemMove(g *State, mv material.Move) []material.Move
	// AfterItemMove runs after an item move of any type mutated the store.
	AfterItemMove(g *State, mv material.Move) []material.Move
	// OnCustomMove handles game-specific moves.
	OnCustomMove(g *State, mv material.CustomMove) []material.Move
}

// SimultaneousPart is implemented by the parts of simultaneous phases.
type SimultaneousPart interface {
	RulePart
	// OnPlayerTurnEnd runs when a player ends their turn in the phase.
	OnPlayerTurnEnd(g *State, player int) []material.Move
	// MovesAfterPlayersDone runs once every player has ended their turn,
	// and is expected to move the game to its next step.
	MovesAfterPlayersDone(g *State) []material.Move
}

// BasePart is an embeddable no-op implementation of RulePart.
type BasePart struct{}

func (BasePart) IsTurnToPlay(*State, int) bool { return false }

func (BasePart) GetLegalMoves(*State, int) []material.Move { return nil }

func (BasePart) GetAutomaticMoves(*State) []material.Move { return nil }
func (BasePart) OnRuleStart(*State, material.Move, *RuleStep) []material.Move {
	return nil
}

func (BasePart) OnRuleEnd(*State, material.Move) []material.Move { return nil }

func (BasePart) BeforeItemMove(*State, material.Move) []material.Move { return nil }

func (BasePart) AfterItemMove(*State, material.Move) []material.Move { return nil }

func (BasePart) OnCustomMove(*State, material.CustomMove) []material.Move {
	return nil
}

// PlayerTurnPart is the base of steps where the single player recorded in
// the rule step acts.
type PlayerTurnPart struct {
	BasePart
}

func (PlayerTurnPart) IsTurnToPlay(g *State, player int) bool {
	return g.Rule != nil && g.Rule.Player != nil && *g.Rule.Player == player
}

// SimultaneousBase is the base of simultaneous phase parts: every player
// still listed in the rule step may act.
type SimultaneousBase struct {
	BasePart
}

func (SimultaneousBase) IsTurnToPlay(g *State, player int) bool {
	if g.Rule == nil {
		return false
	}
	for _, p := range g.Rule.Players {
		if p == player {
			return true
		}
	}
	return false
}

func (SimultaneousBase) OnPlayerTurnEnd(*State, int) []material.Move { return nil }
