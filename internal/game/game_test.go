package game

import (
	"fmt"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

// The test game: cards are drafted from a hidden deck into hands, tokens
// are laid on the board during a simultaneous phase.

const (
	cardType  = 1
	tokenType = 2
)

const (
	locDeck  = 1
	locHand  = 2
	locBoard = 3
)

const (
	ruleDraft = 1
	rulePlay  = 2
	ruleScore = 3
)

type draftPart struct {
	SimultaneousBase
}

func (draftPart) GetLegalMoves(g *State, player int) []material.Move {
	tokens := material.FromItems(tokenType, g.Items[tokenType])
	return []material.Move{
		tokens.CreateItem(boardToken(player, tokens.Player(player).Length())),
		material.EndPlayerTurn{Player: player},
	}
}

func (draftPart) MovesAfterPlayersDone(g *State) []material.Move {
	return []material.Move{material.StartRule{RuleID: ruleScore}}
}

type playPart struct {
	PlayerTurnPart
}

func (playPart) GetLegalMoves(g *State, player int) []material.Move {
	deck := material.FromItems(cardType, g.Items[cardType]).Location(locDeck)
	if deck.Length() == 0 {
		return nil
	}
	hand := material.Location{Type: locHand, Player: material.IntPtr(player)}
	return []material.Move{deck.MoveItem(hand)}
}

type scorePart struct {
	BasePart
}

func boardToken(player, sequence int) material.Item {
	return material.Item{
		ID:       fmt.Sprintf("%d-%d", player, sequence),
		Location: material.Location{Type: locBoard, Player: material.IntPtr(player)},
	}
}

func testDef() *Definition {
	hideAll := func(material.Item, *int) []string { return []string{"id"} }
	hideFromOthers := func(item material.Item, viewer *int) []string {
		if viewer != nil && item.Location.Player != nil && *viewer == *item.Location.Player {
			return nil
		}
		return []string{"id"}
	}
	return &Definition{
		Parts: map[int]RulePart{
			ruleDraft: draftPart{},
			rulePlay:  playPart{},
			ruleScore: scorePart{},
		},
		Hiding: map[int]map[int]HidingStrategy{
			cardType: {locDeck: hideAll, locHand: hideFromOthers},
		},
	}
}

// deckState builds a state with a face-down deck of the given size.
func deckState(cards int, players ...int) *State {
	g := NewState(players)
	items := make([]material.Item, cards)
	for i := range items {
		items[i] = material.Item{
			ID:       fmt.Sprintf("card-%d", i),
			Location: material.Location{Type: locDeck, X: material.FloatPtr(float64(i))},
		}
	}
	g.Items[cardType] = items
	return g
}
