package game

import (
	"go.uber.org/zap"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

// hiddenPaths returns the expanded field paths of the item hidden from the
// viewer, given where the item currently sits.
func (e *Engine) hiddenPaths(itemType int, item material.Item, viewer *int) []string {
	strategies := e.def.Hiding[itemType]
	if strategies == nil {
		return nil
	}
	strategy := strategies[item.Location.Type]
	if strategy == nil {
		return nil
	}
	return material.ExpandPaths(item, strategy(item, viewer))
}

// GetView derives the state as the viewer is allowed to see it. A nil
// viewer is a spectator. Hiding the same view twice yields the same
// result, a view can safely be recomputed from a view.
func (e *Engine) GetView(viewer *int) *State {
	view := e.game.Clone()
	for itemType := range e.def.Hiding {
		items := view.Items[itemType]
		for i := range items {
			if items[i].IsTombstone() {
				continue
			}
			paths := e.hiddenPaths(itemType, items[i], viewer)
			if len(paths) > 0 {
				items[i] = material.HidePaths(items[i], paths)
			}
		}
	}
	return view
}

// concealItems re-hides the items of the type from the engine's viewer.
// Client engines call it after each item move so that information moving
// out of the viewer's sight leaves the view again.
func (e *Engine) concealItems(itemType int) {
	if e.def.Hiding[itemType] == nil {
		return
	}
	items := e.game.Items[itemType]
	for i := range items {
		if items[i].IsTombstone() {
			continue
		}
		paths := e.hiddenPaths(itemType, items[i], e.viewer)
		if len(paths) > 0 {
			items[i] = material.HidePaths(items[i], paths)
		}
	}
}

// GetMoveView derives the move as the viewer is allowed to see it: created
// items are hidden the way the state view hides them, moves into or out of
// hidden locations carry the exact fields the viewer discovers, and
// shuffle permutations are stripped unless the viewer sees the shuffled
// items entirely.
func (e *Engine) GetMoveView(mv material.Move, viewer *int) material.Move {
	switch move := mv.(type) {
	case material.CreateItem:
		view := move.Clone().(material.CreateItem)
		paths := e.hiddenPaths(move.ItemType, view.Item, viewer)
		if len(paths) > 0 {
			view.Item = material.HidePaths(view.Item, paths)
		}
		return view
	case material.CreateItemsAtOnce:
		view := move.Clone().(material.CreateItemsAtOnce)
		for i := range view.Items {
			paths := e.hiddenPaths(move.ItemType, view.Items[i], viewer)
			if len(paths) > 0 {
				view.Items[i] = material.HidePaths(view.Items[i], paths)
			}
		}
		return view
	case material.MoveItem:
		view := move.Clone().(material.MoveItem)
		view.Reveal = nil
		if patch := e.revealPatch(move, viewer); patch != nil {
			view.Reveal = patch
		}
		return view
	case material.MoveItemsAtOnce:
		view := move.Clone().(material.MoveItemsAtOnce)
		view.Reveal = nil
		reveal := material.RevealMap{}
		for _, idx := range move.Indexes {
			single := material.MoveItem{ItemType: move.ItemType, ItemIndex: idx, Location: move.Location}
			if patch := e.revealPatch(single, viewer); patch != nil {
				reveal[idx] = *patch
			}
		}
		if len(reveal) > 0 {
			view.Reveal = &reveal
		}
		return view
	case material.Shuffle:
		return e.shuffleView(move, viewer)
	default:
		return mv.Clone()
	}
}

// revealPatch computes what the viewer discovers when the move applies:
// the paths hidden before and no longer hidden after, valued from the
// current item.
func (e *Engine) revealPatch(mv material.MoveItem, viewer *int) *material.Patch {
	items := e.game.Items[mv.ItemType]
	if mv.ItemIndex < 0 || mv.ItemIndex >= len(items) {
		return nil
	}
	item := items[mv.ItemIndex]
	before := e.hiddenPaths(mv.ItemType, item, viewer)
	if len(before) == 0 {
		return nil
	}
	stripped := mv
	stripped.Reveal = nil
	after := e.Mutator(mv.ItemType, nil).ItemAfterMove(stripped)
	hiddenAfter := map[string]struct{}{}
	for _, path := range e.hiddenPaths(mv.ItemType, after, viewer) {
		hiddenAfter[path] = struct{}{}
	}
	patch := material.Patch{}
	for _, path := range before {
		if _, still := hiddenAfter[path]; still {
			continue
		}
		if value, ok := material.GetPath(item, path); ok {
			material.SetPatchPath(patch, path, value)
		}
	}
	if len(patch) == 0 {
		return nil
	}
	return &patch
}

// shuffleView strips the permutation unless the viewer sees every shuffled
// item entirely. Shuffling together items of mixed visibility is a game
// definition bug: the engine logs it and redacts conservatively.
func (e *Engine) shuffleView(mv material.Shuffle, viewer *int) material.Move {
	view := mv.Clone().(material.Shuffle)
	items := e.game.Items[mv.ItemType]
	visible, hidden := 0, 0
	for _, idx := range mv.Indexes {
		if idx < 0 || idx >= len(items) {
			continue
		}
		if len(e.hiddenPaths(mv.ItemType, items[idx], viewer)) == 0 {
			visible++
		} else {
			hidden++
		}
	}
	if hidden == 0 {
		return view
	}
	if visible > 0 {
		e.logError("shuffle view redacted",
			zap.Error(&InvariantViolationError{Reason: "shuffled items are not equally visible to the viewer"}),
			zap.Int("itemType", mv.ItemType))
	}
	view.NewIndexes = nil
	return view
}

// moveRevealsSomething reports whether the move discloses hidden fields to
// at least one player or to spectators.
func (e *Engine) moveRevealsSomething(mv material.MoveItem) bool {
	if e.revealPatch(mv, nil) != nil {
		return true
	}
	for _, player := range e.game.Players {
		p := player
		if e.revealPatch(mv, &p) != nil {
			return true
		}
	}
	return false
}

func (e *Engine) moveAtOnceRevealsSomething(mv material.MoveItemsAtOnce) bool {
	for _, idx := range mv.Indexes {
		single := material.MoveItem{ItemType: mv.ItemType, ItemIndex: idx, Location: mv.Location}
		if e.moveRevealsSomething(single) {
			return true
		}
	}
	return false
}

// IsUnpredictableMove reports whether the player's client cannot compute
// the outcome of the move on its own and must wait for the server: rolls,
// moves that disclose information to the player, creations and shuffles of
// hidden items, and rule changes while a simultaneous phase is open, since
// those depend on the hidden progress of the other players.
func (e *Engine) IsUnpredictableMove(mv material.Move, player int) bool {
	if mv.Kind() == material.MoveKindRule {
		if _, end := mv.(material.EndPlayerTurn); end {
			return false
		}
		return e.game.Rule != nil && e.game.Rule.Interleaving != nil
	}
	switch move := mv.(type) {
	case material.RollItem:
		return true
	case material.MoveItem:
		return e.revealPatch(move, &player) != nil
	case material.MoveItemsAtOnce:
		for _, idx := range move.Indexes {
			single := material.MoveItem{ItemType: move.ItemType, ItemIndex: idx, Location: move.Location}
			if e.revealPatch(single, &player) != nil {
				return true
			}
		}
		return false
	case material.CreateItem:
		return len(e.hiddenPaths(move.ItemType, move.Item, &player)) > 0
	case material.CreateItemsAtOnce:
		for _, it := range move.Items {
			if len(e.hiddenPaths(move.ItemType, it, &player)) > 0 {
				return true
			}
		}
		return false
	case material.Shuffle:
		items := e.game.Items[move.ItemType]
		for _, idx := range move.Indexes {
			if idx >= 0 && idx < len(items) && len(e.hiddenPaths(move.ItemType, items[idx], &player)) > 0 {
				return true
			}
		}
		return false
	}
	return false
}
