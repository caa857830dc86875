package game

import (
	"github.com/gamepark/rules-server-go/internal/game/material"
)

// Setup builds the initial state of a game by playing setup moves onto an
// empty state. The material views it hands out apply every built move
// immediately, so the setup code reads like the rules code.
type Setup struct {
	engine *Engine
}

// NewSetup starts a setup for the given players.
func NewSetup(def *Definition, players []int, opts ...Option) *Setup {
	return &Setup{engine: New(def, NewState(players), opts...)}
}

// Game returns the state under construction.
func (s *Setup) Game() *State { return s.engine.Game() }

// Engine returns the engine playing on the state under construction.
func (s *Setup) Engine() *Engine { return s.engine }

// PlayMove applies one move to the state, randomizing it first so that
// setup shuffles and rolls resolve. Consequences are dropped, no rule part
// runs before the first rule starts.
func (s *Setup) PlayMove(mv material.Move) {
	mv = s.engine.Randomize(mv, nil)
	s.engine.Play(mv, nil)
}

// Material returns a view over the items of one type whose move builders
// apply immediately.
func (s *Setup) Material(itemType int) material.Material {
	return s.engine.Material(itemType).WithProcess(s.PlayMove)
}

// Memorize stores a value in the game memory.
func (s *Setup) Memorize(key string, value any) {
	s.Game().Memorize(key, value)
}

// MemorizePlayer stores a value in the game memory for one player.
func (s *Setup) MemorizePlayer(key string, player int, value any) {
	s.Game().MemorizePlayer(key, player, value)
}

// StartPlayerTurn starts the game on a single-player rule step.
func (s *Setup) StartPlayerTurn(ruleID, player int) {
	s.PlayMove(material.StartPlayerTurn{RuleID: ruleID, Player: material.IntPtr(player)})
}

// StartSimultaneousRule starts the game on a simultaneous phase. Without an
// explicit list every player is activated.
func (s *Setup) StartSimultaneousRule(ruleID int, players ...int) {
	mv := material.StartSimultaneousRule{RuleID: ruleID}
	if len(players) > 0 {
		mv.Players = players
	}
	s.PlayMove(mv)
}

// StartRule starts the game on a rule step with no active player.
func (s *Setup) StartRule(ruleID int) {
	s.PlayMove(material.StartRule{RuleID: ruleID})
}
