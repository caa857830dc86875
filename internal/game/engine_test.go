package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

func TestStartPlayerTurnActivatesPlayer(t *testing.T) {
	g := deckState(3, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartPlayerTurn{RuleID: rulePlay, Player: material.IntPtr(2)}, nil)

	require.NotNil(t, g.Rule)
	assert.Equal(t, rulePlay, g.Rule.ID)
	assert.True(t, e.IsTurnToPlay(2))
	assert.False(t, e.IsTurnToPlay(1))
	assert.Equal(t, []int{2}, e.GetActivePlayers())
}

func TestStartRuleKeepsActivePlayer(t *testing.T) {
	g := deckState(3, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartPlayerTurn{RuleID: rulePlay, Player: material.IntPtr(1)}, nil)
	e.Play(material.StartRule{RuleID: ruleScore}, nil)

	assert.Equal(t, ruleScore, g.Rule.ID)
	require.NotNil(t, g.Rule.Player)
	assert.Equal(t, 1, *g.Rule.Player)
}

func TestEndGameClearsRule(t *testing.T) {
	g := deckState(0, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartRule{RuleID: ruleScore}, nil)
	assert.False(t, e.IsOver())
	e.Play(material.EndGame{}, nil)
	assert.True(t, e.IsOver())
	assert.Nil(t, e.GetActivePlayers())
}

type endingPart struct {
	BasePart
}

func (endingPart) OnRuleStart(*State, material.Move, *RuleStep) []material.Move {
	return []material.Move{
		material.EndGame{},
		material.StartRule{RuleID: ruleScore},
	}
}

func TestConsequencesAfterEndGameAreDropped(t *testing.T) {
	def := testDef()
	def.Parts[9] = endingPart{}
	g := deckState(0, 1, 2)
	e := New(def, g)

	consequences := e.Play(material.StartRule{RuleID: 9}, nil)
	require.Len(t, consequences, 1)
	assert.IsType(t, material.EndGame{}, consequences[0])
}

func TestMissingRulePartIsNoOp(t *testing.T) {
	g := deckState(0, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartRule{RuleID: 99}, nil)

	assert.Equal(t, 99, g.Rule.ID)
	assert.Nil(t, e.GetLegalMoves(1))
	assert.False(t, e.IsTurnToPlay(1))
	// the game survives further moves
	e.Play(material.StartRule{RuleID: ruleScore}, nil)
	assert.Equal(t, ruleScore, g.Rule.ID)
}

type loopingPart struct {
	BasePart
}

func (loopingPart) GetAutomaticMoves(*State) []material.Move {
	return []material.Move{material.CustomMove{Type: 1}}
}

func TestConsequenceFuseAborts(t *testing.T) {
	def := testDef()
	def.Parts[8] = loopingPart{}
	g := deckState(0, 1, 2)
	e := New(def, g, WithFuse(10))

	_, err := e.PlayAction(material.StartRule{RuleID: 8}, 1)
	require.Error(t, err)
	var loopErr *RuntimeLoopError
	assert.True(t, errors.As(err, &loopErr))
	assert.Equal(t, 10, loopErr.Fuse)
}

func TestEndPlayerTurnForInactivePlayerIsIgnored(t *testing.T) {
	g := deckState(0, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartSimultaneousRule{RuleID: ruleDraft}, nil)

	e.Play(material.EndPlayerTurn{Player: 3}, material.IntPtr(3))
	assert.Equal(t, []int{1, 2}, g.Rule.Players)

	e.Play(material.EndPlayerTurn{Player: 1}, material.IntPtr(1))
	e.Play(material.EndPlayerTurn{Player: 1}, material.IntPtr(1))
	assert.Equal(t, []int{2}, g.Rule.Players)
}

func TestPhaseClosesWhenLastPlayerDone(t *testing.T) {
	g := deckState(0, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartSimultaneousRule{RuleID: ruleDraft}, nil)

	first, err := e.PlayAction(material.EndPlayerTurn{Player: 1}, 1)
	require.NoError(t, err)
	assert.Empty(t, first.Consequences)
	assert.Equal(t, ruleDraft, g.Rule.ID)

	second, err := e.PlayAction(material.EndPlayerTurn{Player: 2}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, second.Consequences)
	assert.Equal(t, material.StartRule{RuleID: ruleScore}, second.Consequences[0])
	assert.Equal(t, ruleScore, g.Rule.ID)
	assert.Nil(t, g.Rule.Interleaving)
}

func TestIsLegalMoveComparesWireForm(t *testing.T) {
	g := deckState(3, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartPlayerTurn{RuleID: rulePlay, Player: material.IntPtr(1)}, nil)

	legal := material.MoveItem{
		ItemType:  cardType,
		ItemIndex: 0,
		Location:  material.Location{Type: locHand, Player: material.IntPtr(1)},
	}
	assert.True(t, e.IsLegalMove(1, legal))
	assert.False(t, e.IsLegalMove(2, legal))
	assert.False(t, e.IsLegalMove(1, material.DeleteItem{ItemType: cardType, ItemIndex: 0}))
}

func TestMemoryRoundTrip(t *testing.T) {
	g := NewState([]int{1, 2})
	g.Memorize("round", 3)
	g.MemorizePlayer("coins", 1, 5)

	v, ok := g.Remind("round")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	v, ok = g.RemindPlayer("coins", 1)
	require.True(t, ok)
	assert.Equal(t, 5, v)
	_, ok = g.RemindPlayer("coins", 2)
	assert.False(t, ok)

	g.ForgetPlayer("coins", 1)
	_, ok = g.Remind("coins")
	assert.False(t, ok)

	g.Forget("round")
	_, ok = g.Remind("round")
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	g := deckState(2, 1, 2)
	e := New(testDef(), g)
	e.Play(material.StartSimultaneousRule{RuleID: ruleDraft}, nil)
	g.Memorize("round", map[string]any{"n": 1})

	clone := g.Clone()
	clone.Items[cardType][0].ID = "changed"
	clone.Rule.Players = clone.Rule.Players[:1]
	clone.Memory["round"].(map[string]any)["n"] = 2

	assert.Equal(t, "card-0", g.Items[cardType][0].ID)
	assert.Equal(t, []int{1, 2}, g.Rule.Players)
	assert.Equal(t, 1, g.Memory["round"].(map[string]any)["n"])
}
