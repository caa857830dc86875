package game

import (
	"github.com/gamepark/rules-server-go/internal/game/material"
)

// CanUndo reports whether the stored action may still be taken back.
// consecutive holds the actions played after it, most recent first.
//
// An action cannot be undone once somebody else became active because of a
// later action, or once its own author played anything further. Selection
// changes are the exception: a selection followed only by the same
// player's selections stays undoable. The action itself is out of reach
// when it activated a player, rolled dice, disclosed hidden information,
// or closed a simultaneous phase, since other players may have acted on
// what they saw.
func (e *Engine) CanUndo(action *Action, consecutive []*Action) bool {
	for _, c := range consecutive {
		if e.consecutiveActionBlocksUndo(c, action) {
			return false
		}
	}
	return !e.actionBlocksUndo(action)
}

func (e *Engine) consecutiveActionBlocksUndo(consecutive, action *Action) bool {
	if activatesPlayer(consecutive) {
		return true
	}
	if consecutive.Player != action.Player {
		return false
	}
	// selection changes undo freely among themselves, anything else by the
	// same player commits
	_, laterIsSelect := consecutive.Move.(material.SelectItem)
	_, undoneIsSelect := action.Move.(material.SelectItem)
	return !laterIsSelect || !undoneIsSelect
}

func (e *Engine) actionBlocksUndo(action *Action) bool {
	if e.moveBlocksUndo(action.Move) {
		return true
	}
	for _, c := range action.Consequences {
		if e.moveBlocksUndo(c) {
			return true
		}
	}
	return false
}

func (e *Engine) moveBlocksUndo(mv material.Move) bool {
	if moveActivatesPlayer(mv) {
		return true
	}
	switch move := mv.(type) {
	case material.RollItem:
		return true
	case material.MoveItem:
		return move.Reveal != nil
	case material.MoveItemsAtOnce:
		return move.Reveal != nil
	case material.EndPlayerTurn:
		// once the phase closed, the end of the turn triggered moves the
		// other players may already have seen
		rule := e.game.Rule
		return rule == nil || rule.Interleaving == nil || len(rule.Players) == 0
	}
	return false
}

func activatesPlayer(action *Action) bool {
	if moveActivatesPlayer(action.Move) {
		return true
	}
	for _, c := range action.Consequences {
		if moveActivatesPlayer(c) {
			return true
		}
	}
	return false
}

func moveActivatesPlayer(mv material.Move) bool {
	switch mv.(type) {
	case material.StartPlayerTurn, material.StartSimultaneousRule:
		return true
	}
	return false
}
