package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

func TestPlayActionStoresRandomizedMove(t *testing.T) {
	g := deckState(5, 1, 2)
	e := New(testDef(), g, WithRand(rand.New(rand.NewSource(42))))

	action, err := e.PlayAction(material.Shuffle{ItemType: cardType, Indexes: []int{0, 1, 2, 3, 4}}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, action.ID)

	shuffle, ok := action.Move.(material.Shuffle)
	require.True(t, ok)
	assert.Len(t, shuffle.NewIndexes, 5)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, shuffle.NewIndexes)
}

func TestReplayRebuildsTheSameState(t *testing.T) {
	initial := deckState(5, 1, 2)
	e := New(testDef(), initial.Clone(), WithRand(rand.New(rand.NewSource(7))))

	var actions []*Action
	play := func(mv material.Move, player int) {
		action, err := e.PlayAction(mv, player)
		require.NoError(t, err)
		actions = append(actions, action)
	}
	play(material.Shuffle{ItemType: cardType, Indexes: []int{0, 1, 2, 3, 4}}, 1)
	play(material.StartSimultaneousRule{RuleID: ruleDraft}, 1)
	play(material.CreateItem{ItemType: tokenType, Item: boardToken(2, 0)}, 2)
	play(material.EndPlayerTurn{Player: 1}, 1)
	play(material.EndPlayerTurn{Player: 2}, 2)

	replayed := New(testDef(), initial.Clone())
	replayed.ReplayActions(actions)

	want, _ := json.Marshal(e.Game())
	got, _ := json.Marshal(replayed.Game())
	assert.JSONEq(t, string(want), string(got))
}

func TestActionJSONRoundTrip(t *testing.T) {
	marker := material.Patch{}
	action := &Action{
		ID:     "0b5deb86-8d4e-4713-a4ce-f0e4b3e2a2fb",
		Player: 2,
		Move:   material.MoveItem{ItemType: cardType, ItemIndex: 1, Location: material.Location{Type: locHand, Player: material.IntPtr(2)}, Reveal: &marker},
		Consequences: []material.Move{
			material.EndPlayerTurn{Player: 2},
			material.StartRule{RuleID: ruleScore},
		},
	}
	data, err := json.Marshal(action)
	require.NoError(t, err)

	var decoded Action
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, action.ID, decoded.ID)
	assert.Equal(t, action.Player, decoded.Player)
	assert.True(t, material.JSONEqual(action.Move, decoded.Move))
	require.Len(t, decoded.Consequences, 2)
	assert.True(t, material.JSONEqual(action.Consequences[1], decoded.Consequences[1]))

	mv, ok := decoded.Move.(material.MoveItem)
	require.True(t, ok)
	require.NotNil(t, mv.Reveal)
	assert.Empty(t, *mv.Reveal)
}

func TestPlayActionWithViewsDisclosesPerRecipient(t *testing.T) {
	g := deckState(2, 1, 2)
	e := New(testDef(), g)

	result, err := e.PlayActionWithViews(drawMove(1), 1)
	require.NoError(t, err)

	// stored action carries the marker, not the card
	stored, ok := result.Action.Move.(material.MoveItem)
	require.True(t, ok)
	require.NotNil(t, stored.Reveal)
	assert.Empty(t, *stored.Reveal)

	require.Len(t, result.Views, 3)
	byRecipient := map[int]material.MoveItem{}
	var spectator material.MoveItem
	for _, view := range result.Views {
		assert.Equal(t, result.Action.ID, view.Action.ID)
		mv := view.Action.Move.(material.MoveItem)
		if view.Recipient == nil {
			spectator = mv
		} else {
			byRecipient[*view.Recipient] = mv
		}
	}
	require.NotNil(t, byRecipient[1].Reveal)
	assert.True(t, material.JSONEqual(material.Patch{"id": "card-0"}, *byRecipient[1].Reveal))
	assert.Nil(t, byRecipient[2].Reveal)
	assert.Nil(t, spectator.Reveal)

	// the state advanced once, with the full information
	assert.Equal(t, "card-0", g.Items[cardType][0].ID)
	assert.Equal(t, locHand, g.Items[cardType][0].Location.Type)
}

func TestViewsRebuildEveryClientState(t *testing.T) {
	initial := deckState(3, 1, 2)
	server := New(testDef(), initial.Clone())

	clients := map[string]*Engine{}
	viewers := map[string]*int{"p1": material.IntPtr(1), "p2": material.IntPtr(2), "spectator": nil}
	for name, viewer := range viewers {
		clients[name] = New(testDef(), server.GetView(viewer), WithClientView(viewer))
	}

	moves := []struct {
		mv     material.Move
		player int
	}{
		{drawMove(1), 1},
		{drawMove(2), 2},
	}
	for _, step := range moves {
		result, err := server.PlayActionWithViews(step.mv, step.player)
		require.NoError(t, err)
		for _, view := range result.Views {
			name := "spectator"
			if view.Recipient != nil {
				if *view.Recipient == 1 {
					name = "p1"
				} else {
					name = "p2"
				}
			}
			clients[name].ReplayAction(&view.Action)
		}
	}

	for name, viewer := range viewers {
		want, _ := json.Marshal(server.GetView(viewer))
		got, _ := json.Marshal(clients[name].Game())
		assert.JSONEq(t, string(want), string(got), "client %s diverged", name)
	}
}
