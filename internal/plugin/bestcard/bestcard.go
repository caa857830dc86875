// Package bestcard registers a small built-in game: each player is dealt a
// hand from a shuffled face-down deck and plays one card face up, highest
// card wins. It doubles as a reference for wiring a game into the server.
package bestcard

import (
	"github.com/gamepark/rules-server-go/internal/game"
	"github.com/gamepark/rules-server-go/internal/game/material"
	"github.com/gamepark/rules-server-go/internal/plugin"
	"github.com/gamepark/rules-server-go/internal/server"
)

const cardType = 1

const (
	locDeck  = 1
	locHand  = 2
	locTable = 3
)

const rulePlay = 1

const handSize = 3

func init() {
	plugin.Register("bestcard", server.GameType{
		Definition: definition(),
		Setup:      setupGame,
	})
}

func definition() *game.Definition {
	hideAll := func(material.Item, *int) []string { return []string{"id"} }
	hideFromOthers := func(item material.Item, viewer *int) []string {
		if viewer != nil && item.Location.Player != nil && *viewer == *item.Location.Player {
			return nil
		}
		return []string{"id"}
	}
	return &game.Definition{
		Parts: map[int]game.RulePart{
			rulePlay: playPart{},
		},
		Hiding: map[int]map[int]game.HidingStrategy{
			cardType: {locDeck: hideAll, locHand: hideFromOthers},
		},
		Score: func(g *game.State, player int) (int, bool) {
			score, found := 0, false
			for _, item := range g.Items[cardType] {
				if item.Location.Type == locTable && item.Location.Player != nil && *item.Location.Player == player {
					score += cardValue(item)
					found = true
				}
			}
			return score, found
		},
	}
}

func setupGame(s *game.Setup) {
	players := s.Game().Players
	total := handSize*len(players) + 2
	cards := s.Material(cardType)
	for v := 1; v <= total; v++ {
		cards.CreateItem(material.Item{
			ID:       v,
			Location: material.Location{Type: locDeck, X: material.FloatPtr(float64(v - 1))},
		})
	}
	s.Material(cardType).Location(locDeck).Shuffle()
	for _, p := range players {
		for k := 0; k < handSize; k++ {
			s.Material(cardType).Location(locDeck).Sort(deckOrder).
				MoveItem(material.Location{Type: locHand, Player: material.IntPtr(p)})
		}
	}
	s.StartSimultaneousRule(rulePlay)
}

type playPart struct {
	game.SimultaneousBase
}

func (playPart) GetLegalMoves(g *game.State, player int) []material.Move {
	hand := material.FromItems(cardType, g.Items[cardType]).Location(locHand).Player(player)
	return hand.MoveItems(material.Location{Type: locTable, Player: material.IntPtr(player)})
}

// AfterItemMove closes the player's turn once the card lands on the table.
func (playPart) AfterItemMove(g *game.State, mv material.Move) []material.Move {
	move, ok := mv.(material.MoveItem)
	if !ok || move.Location.Type != locTable || move.Location.Player == nil {
		return nil
	}
	return []material.Move{material.EndPlayerTurn{Player: *move.Location.Player}}
}

func (playPart) MovesAfterPlayersDone(g *game.State) []material.Move {
	return []material.Move{material.EndGame{}}
}

func deckOrder(item material.Item) float64 {
	if item.Location.X == nil {
		return 0
	}
	return *item.Location.X
}

// cardValue tolerates ids decoded from JSON, where numbers come back as
// float64.
func cardValue(item material.Item) int {
	switch v := item.ID.(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
