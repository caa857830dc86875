package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

func drawMove(player int) material.MoveItem {
	return material.MoveItem{
		ItemType:  cardType,
		ItemIndex: 0,
		Location:  material.Location{Type: locHand, Player: material.IntPtr(player)},
	}
}

func TestViewHidesDeckCards(t *testing.T) {
	g := deckState(3, 1, 2)
	e := New(testDef(), g)

	view := e.GetView(material.IntPtr(1))
	for _, it := range view.Items[cardType] {
		assert.Nil(t, it.ID)
		assert.Equal(t, locDeck, it.Location.Type)
	}
	// the full state is untouched
	assert.Equal(t, "card-0", g.Items[cardType][0].ID)
}

func TestViewHidesHandsFromOtherPlayers(t *testing.T) {
	g := deckState(2, 1, 2)
	e := New(testDef(), g)
	e.Play(drawMove(1), nil)

	owner := e.GetView(material.IntPtr(1))
	assert.Equal(t, "card-0", owner.Items[cardType][0].ID)

	other := e.GetView(material.IntPtr(2))
	assert.Nil(t, other.Items[cardType][0].ID)

	spectator := e.GetView(nil)
	assert.Nil(t, spectator.Items[cardType][0].ID)
}

func TestViewIsIdempotent(t *testing.T) {
	g := deckState(3, 1, 2)
	e := New(testDef(), g)
	e.Play(drawMove(1), nil)

	viewer := material.IntPtr(2)
	view := e.GetView(viewer)
	again := New(testDef(), view, WithClientView(viewer)).GetView(viewer)

	viewJSON, _ := json.Marshal(view)
	againJSON, _ := json.Marshal(again)
	assert.JSONEq(t, string(viewJSON), string(againJSON))
}

func TestMoveViewRevealsExactlyWhatTheViewerLearns(t *testing.T) {
	g := deckState(2, 1, 2)
	e := New(testDef(), g)
	mv := drawMove(1)

	ownerView := e.GetMoveView(mv, material.IntPtr(1)).(material.MoveItem)
	require.NotNil(t, ownerView.Reveal)
	assert.True(t, material.JSONEqual(material.Patch{"id": "card-0"}, *ownerView.Reveal))

	otherView := e.GetMoveView(mv, material.IntPtr(2)).(material.MoveItem)
	assert.Nil(t, otherView.Reveal)

	spectatorView := e.GetMoveView(mv, nil).(material.MoveItem)
	assert.Nil(t, spectatorView.Reveal)
}

func TestMoveViewStripsStoredMarker(t *testing.T) {
	g := deckState(2, 1, 2)
	e := New(testDef(), g)
	marker := material.Patch{}
	mv := drawMove(1)
	mv.Reveal = &marker

	otherView := e.GetMoveView(mv, material.IntPtr(2)).(material.MoveItem)
	assert.Nil(t, otherView.Reveal)
}

func TestRevealedMoveRebuildsTheViewState(t *testing.T) {
	g := deckState(2, 1, 2)
	server := New(testDef(), g)
	viewer := material.IntPtr(1)
	clientState := server.GetView(viewer)
	client := New(testDef(), clientState, WithClientView(viewer))

	mv := drawMove(1)
	view := server.GetMoveView(mv, viewer)
	server.Play(mv, material.IntPtr(1))
	client.Play(view, material.IntPtr(1))

	serverView := server.GetView(viewer)
	serverJSON, _ := json.Marshal(serverView)
	clientJSON, _ := json.Marshal(clientState)
	assert.JSONEq(t, string(serverJSON), string(clientJSON))
}

func TestCreateViewHidesHiddenFields(t *testing.T) {
	g := deckState(0, 1, 2)
	e := New(testDef(), g)
	mv := material.CreateItem{
		ItemType: cardType,
		Item:     material.Item{ID: "card-9", Location: material.Location{Type: locDeck}},
	}
	view := e.GetMoveView(mv, material.IntPtr(1)).(material.CreateItem)
	assert.Nil(t, view.Item.ID)
}

func TestShuffleViewStripsPermutationOfHiddenItems(t *testing.T) {
	g := deckState(3, 1, 2)
	e := New(testDef(), g)
	mv := material.Shuffle{ItemType: cardType, Indexes: []int{0, 1, 2}, NewIndexes: []int{2, 0, 1}}

	view := e.GetMoveView(mv, material.IntPtr(1)).(material.Shuffle)
	assert.Equal(t, []int{0, 1, 2}, view.Indexes)
	assert.Nil(t, view.NewIndexes)
}

func TestShuffleViewKeepsPermutationOfVisibleItems(t *testing.T) {
	g := NewState([]int{1, 2})
	g.Items[tokenType] = []material.Item{
		boardToken(1, 0), boardToken(1, 1), boardToken(1, 2),
	}
	e := New(testDef(), g)
	mv := material.Shuffle{ItemType: tokenType, Indexes: []int{0, 1, 2}, NewIndexes: []int{1, 2, 0}}

	view := e.GetMoveView(mv, material.IntPtr(2)).(material.Shuffle)
	assert.Equal(t, []int{1, 2, 0}, view.NewIndexes)
}

func TestRandomizeStampsRevealingMoves(t *testing.T) {
	g := deckState(2, 1, 2)
	e := New(testDef(), g)

	stamped := e.Randomize(drawMove(1), material.IntPtr(1)).(material.MoveItem)
	require.NotNil(t, stamped.Reveal)
	assert.Empty(t, *stamped.Reveal)

	// moving a card within the deck reveals nothing
	inDeck := material.MoveItem{ItemType: cardType, ItemIndex: 0, Location: material.Location{Type: locDeck, X: material.FloatPtr(9)}}
	plain := e.Randomize(inDeck, material.IntPtr(1)).(material.MoveItem)
	assert.Nil(t, plain.Reveal)
}

func TestUnpredictableMoves(t *testing.T) {
	g := deckState(2, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartSimultaneousRule{RuleID: ruleDraft}, nil)

	assert.True(t, e.IsUnpredictableMove(material.RollItem{ItemType: tokenType, ItemIndex: 0}, 1))
	assert.True(t, e.IsUnpredictableMove(drawMove(1), 1))
	assert.False(t, e.IsUnpredictableMove(drawMove(1), 2))
	assert.True(t, e.IsUnpredictableMove(material.Shuffle{ItemType: cardType, Indexes: []int{0, 1}}, 1))

	// while the phase is open, rule changes depend on the other players
	assert.True(t, e.IsUnpredictableMove(material.StartRule{RuleID: ruleScore}, 1))
	assert.False(t, e.IsUnpredictableMove(material.EndPlayerTurn{Player: 1}, 1))

	e.Play(material.StartPlayerTurn{RuleID: rulePlay, Player: material.IntPtr(1)}, nil)
	assert.False(t, e.IsUnpredictableMove(material.StartRule{RuleID: ruleScore}, 1))
}
