package game

import (
	"github.com/gamepark/rules-server-go/internal/game/material"
)

// Randomize completes the random part of a move right before it is played:
// shuffles draw their permutation, rolls draw their rotation. On games with
// hidden information, an item move that will reveal something to somebody
// is stamped with an empty reveal patch, so that the stored move keeps the
// trace that information leaked even though the per-viewer patches only
// exist in the views.
func (e *Engine) Randomize(mv material.Move, actor *int) material.Move {
	switch move := mv.(type) {
	case material.Shuffle:
		move.NewIndexes = e.permute(move.Indexes)
		return move
	case material.RollItem:
		location := move.Location.Clone()
		location.Rotation = e.rollRotation(move)
		move.Location = location
		return move
	case material.MoveItem:
		if actor != nil && len(e.def.Hiding) > 0 && move.Reveal == nil && e.moveRevealsSomething(move) {
			patch := material.Patch{}
			move.Reveal = &patch
		}
		return move
	case material.MoveItemsAtOnce:
		if actor != nil && len(e.def.Hiding) > 0 && move.Reveal == nil && e.moveAtOnceRevealsSomething(move) {
			reveal := material.RevealMap{}
			move.Reveal = &reveal
		}
		return move
	}
	return mv
}

func (e *Engine) permute(indexes []int) []int {
	perm := e.rand.Perm(len(indexes))
	out := make([]int, len(indexes))
	for i, p := range perm {
		out[i] = indexes[p]
	}
	return out
}

func (e *Engine) rollRotation(mv material.RollItem) any {
	if e.def.Roll != nil {
		return e.def.Roll(mv)
	}
	return e.rand.Intn(6)
}
