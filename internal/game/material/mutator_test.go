package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testType = 1

	locDeck    = 1
	locHand    = 2
	locBoard   = 3
	locDiscard = 4
)

func deckItem(id any) Item {
	return Item{ID: id, Location: Location{Type: locDeck}}
}

func TestCreateAppendsToEnd(t *testing.T) {
	m := NewMutator(testType, nil, nil, false, nil, nil)
	m.Apply(CreateItem{ItemType: testType, Item: deckItem("a")})
	m.Apply(CreateItem{ItemType: testType, Item: deckItem("b")})
	items := m.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
}

func TestCreateReusesTombstones(t *testing.T) {
	m := NewMutator(testType, []Item{deckItem("a"), deckItem("b")}, nil, false, nil, nil)
	m.Apply(DeleteItem{ItemType: testType, ItemIndex: 0})
	require.True(t, m.Items()[0].IsTombstone())

	m.Apply(CreateItem{ItemType: testType, Item: deckItem("c")})
	items := m.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID)
}

func TestCreateMergesIdenticalItems(t *testing.T) {
	m := NewMutator(testType, nil, nil, true, nil, nil)
	gold := Item{ID: "gold", Location: Location{Type: locBoard}}
	m.Apply(CreateItem{ItemType: testType, Item: gold})
	m.Apply(CreateItem{ItemType: testType, Item: gold})
	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty())

	three := gold
	three.Quantity = IntPtr(3)
	m.Apply(CreateItem{ItemType: testType, Item: three})
	items = m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Qty())
}

func TestMoveMergesQuantities(t *testing.T) {
	player := 1
	hand := Location{Type: locHand, Player: &player}
	items := []Item{
		{ID: "gold", Location: hand, Quantity: IntPtr(2)},
		{ID: "gold", Location: Location{Type: locBoard}, Quantity: IntPtr(3)},
	}
	m := NewMutator(testType, items, nil, true, nil, nil)
	m.Apply(MoveItem{ItemType: testType, ItemIndex: 1, Location: hand, Quantity: 3})

	result := m.Items()
	assert.Equal(t, 5, result[0].Qty())
	assert.True(t, result[1].IsTombstone())
}

func TestMoveSplitsQuantities(t *testing.T) {
	items := []Item{{ID: "gold", Location: Location{Type: locBoard}, Quantity: IntPtr(3)}}
	m := NewMutator(testType, items, nil, true, nil, nil)
	player := 2
	m.Apply(MoveItem{ItemType: testType, ItemIndex: 0, Location: Location{Type: locHand, Player: &player}})

	result := m.Items()
	require.Len(t, result, 2)
	assert.Equal(t, 2, result[0].Qty())
	assert.Equal(t, 1, result[1].Qty())
	assert.Equal(t, locHand, result[1].Location.Type)
	// no unit appeared or vanished
	assert.Equal(t, 3, result[0].Qty()+result[1].Qty())
}

func TestMoveToOccupiedLocationIsIgnored(t *testing.T) {
	board := Location{Type: locBoard}
	items := []Item{{ID: "gold", Location: board, Quantity: IntPtr(2)}}
	m := NewMutator(testType, items, nil, true, nil, nil)
	m.Apply(MoveItem{ItemType: testType, ItemIndex: 0, Location: board})

	result := m.Items()
	require.Len(t, result, 1)
	assert.Equal(t, 2, result[0].Qty())
}

func TestPartialLocationMergesOntoCurrent(t *testing.T) {
	player := 1
	items := []Item{{ID: "tile", Location: Location{Type: locBoard, Player: &player, X: FloatPtr(2)}}}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(MoveItem{ItemType: testType, ItemIndex: 0, Location: Location{Rotation: "flipped"}})

	loc := m.Items()[0].Location
	assert.Equal(t, locBoard, loc.Type)
	require.NotNil(t, loc.X)
	assert.Equal(t, 2.0, *loc.X)
	assert.Equal(t, "flipped", loc.Rotation)
}

func TestFullLocationReplacesCurrent(t *testing.T) {
	items := []Item{{ID: "tile", Location: Location{Type: locBoard, X: FloatPtr(2), Rotation: "flipped"}}}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(MoveItem{ItemType: testType, ItemIndex: 0, Location: Location{Type: locDiscard}})

	loc := m.Items()[0].Location
	assert.Equal(t, locDiscard, loc.Type)
	assert.Nil(t, loc.X)
	assert.Nil(t, loc.Rotation)
}

func TestMoveKeepsSelection(t *testing.T) {
	items := []Item{{ID: "card", Location: Location{Type: locHand}, Selected: IntPtr(1)}}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(MoveItem{ItemType: testType, ItemIndex: 0, Location: Location{Type: locBoard}})
	moved := m.Items()[0]
	assert.Equal(t, locBoard, moved.Location.Type)
	require.NotNil(t, moved.Selected)
	assert.Equal(t, 1, *moved.Selected)
}

func TestMoveAtOnceKeepsSelection(t *testing.T) {
	items := []Item{
		{ID: "a", Location: Location{Type: locHand}, Selected: IntPtr(1)},
		{ID: "b", Location: Location{Type: locHand}},
	}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(MoveItemsAtOnce{ItemType: testType, Indexes: []int{0, 1}, Location: Location{Type: locBoard}})
	assert.NotNil(t, m.Items()[0].Selected)
	assert.Nil(t, m.Items()[1].Selected)
}

func TestDeletePastQuantityClamps(t *testing.T) {
	items := []Item{{ID: "gold", Location: Location{Type: locBoard}, Quantity: IntPtr(2)}}
	m := NewMutator(testType, items, nil, true, nil, nil)
	m.Apply(DeleteItem{ItemType: testType, ItemIndex: 0, Quantity: 5})
	assert.True(t, m.Items()[0].IsTombstone())
}

func TestDeleteAtOnceKillsSlots(t *testing.T) {
	items := []Item{deckItem("a"), deckItem("b"), deckItem("c")}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(DeleteItemsAtOnce{ItemType: testType, Indexes: []int{0, 2}})
	result := m.Items()
	assert.True(t, result[0].IsTombstone())
	assert.False(t, result[1].IsTombstone())
	assert.True(t, result[2].IsTombstone())
}

func TestShuffleKeepsSlotLocations(t *testing.T) {
	items := []Item{
		{ID: "a", Location: Location{Type: locDeck, X: FloatPtr(0)}},
		{ID: "b", Location: Location{Type: locDeck, X: FloatPtr(1)}},
		{ID: "c", Location: Location{Type: locDeck, X: FloatPtr(2)}},
	}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(Shuffle{ItemType: testType, Indexes: []int{0, 1, 2}, NewIndexes: []int{2, 0, 1}})

	result := m.Items()
	assert.Equal(t, "b", result[0].ID)
	assert.Equal(t, "c", result[1].ID)
	assert.Equal(t, "a", result[2].ID)
	for i, it := range result {
		require.NotNil(t, it.Location.X)
		assert.Equal(t, float64(i), *it.Location.X)
	}
}

func TestShuffleWithoutPermutationDoesNothing(t *testing.T) {
	items := []Item{deckItem("a"), deckItem("b")}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(Shuffle{ItemType: testType, Indexes: []int{0, 1}})
	assert.Equal(t, "a", m.Items()[0].ID)
	assert.Equal(t, "b", m.Items()[1].ID)
}

func TestSelectAndUnselect(t *testing.T) {
	items := []Item{{ID: "gold", Location: Location{Type: locBoard}, Quantity: IntPtr(3)}}
	m := NewMutator(testType, items, nil, true, nil, nil)

	m.Apply(SelectItem{ItemType: testType, ItemIndex: 0, Quantity: 2})
	require.NotNil(t, m.Items()[0].Selected)
	assert.Equal(t, 2, *m.Items()[0].Selected)

	m.Apply(SelectItem{ItemType: testType, ItemIndex: 0, Unselect: true})
	assert.Nil(t, m.Items()[0].Selected)
}

func TestRollReplacesLocation(t *testing.T) {
	items := []Item{{ID: "die", Location: Location{Type: locHand}}}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(RollItem{ItemType: testType, ItemIndex: 0, Location: Location{Type: locBoard, Rotation: 4.0}})
	assert.Equal(t, locBoard, m.Items()[0].Location.Type)
	assert.Equal(t, 4.0, m.Items()[0].Location.Rotation)
}

func TestRollRunsLocationStrategies(t *testing.T) {
	items := []Item{
		{ID: "die", Location: Location{Type: locBoard}},
		handItem("a", FloatPtr(0)),
	}
	m := NewMutator(testType, items, strategies(PositiveSequenceStrategy{Axis: AxisX}), false, nil, nil)
	m.Apply(RollItem{ItemType: testType, ItemIndex: 0, Location: Location{Type: locHand, Rotation: 2.0}})

	rolled := m.Items()[0]
	assert.Equal(t, 2.0, rolled.Location.Rotation)
	require.NotNil(t, rolled.Location.X)
	assert.Equal(t, 1.0, *rolled.Location.X)
}

func TestOutOfRangeIndexIsIgnored(t *testing.T) {
	items := []Item{deckItem("a")}
	m := NewMutator(testType, items, nil, false, nil, nil)
	m.Apply(MoveItem{ItemType: testType, ItemIndex: 5, Location: Location{Type: locBoard}})
	m.Apply(DeleteItem{ItemType: testType, ItemIndex: -1})
	require.Len(t, m.Items(), 1)
	assert.Equal(t, "a", m.Items()[0].ID)
}

func TestInterleavedCreationSkipsOtherPlayersSlots(t *testing.T) {
	// second of three players, no free slot at phase start
	ctx := &SimultaneousContext{AvailableIndexes: []int{0}, PlayerRank: 1, PlayerCount: 3}
	m := NewMutator(testType, nil, nil, false, ctx, nil)

	assert.Equal(t, 1, m.ItemCreationIndex(deckItem("a")))
	m.Apply(CreateItem{ItemType: testType, Item: deckItem("a")})

	items := m.Items()
	require.Len(t, items, 2)
	assert.True(t, items[0].IsTombstone(), "the slot reserved for the first player must be padded")
	assert.Equal(t, "a", items[1].ID)

	assert.Equal(t, 4, m.ItemCreationIndex(deckItem("b")))
	m.Apply(CreateItem{ItemType: testType, Item: deckItem("b")})
	items = m.Items()
	require.Len(t, items, 5)
	assert.Equal(t, "b", items[4].ID)
}

func TestInterleavedCreationConsumesFrozenTombstones(t *testing.T) {
	// slots 1 and 3 were dead when the phase started, array length was 4
	items := []Item{deckItem("a"), Tombstone(), deckItem("b"), Tombstone()}
	ctx := &SimultaneousContext{AvailableIndexes: []int{1, 3, 4}, PlayerRank: 0, PlayerCount: 2}
	m := NewMutator(testType, items, nil, false, ctx, nil)

	m.Apply(CreateItem{ItemType: testType, Item: deckItem("x")})
	assert.Equal(t, "x", m.Items()[1].ID)
	// rank 0, second creation: position 2 is past the two frozen
	// tombstones, lands at 4 + (2 - 2)
	m.Apply(CreateItem{ItemType: testType, Item: deckItem("y")})
	require.Len(t, m.Items(), 5)
	assert.Equal(t, "y", m.Items()[4].ID)
}

func TestInterleavedCreationSkipsConsumedSlots(t *testing.T) {
	// no frozen tombstone and a frozen length of 2: rank 1 of 2 owns the
	// odd offsets past the frozen end
	items := []Item{deckItem("a"), deckItem("b")}
	ctx := &SimultaneousContext{AvailableIndexes: []int{2}, PlayerRank: 1, PlayerCount: 2}
	m := NewMutator(testType, items, nil, false, ctx, nil)

	assert.Equal(t, 3, m.ItemCreationIndex(deckItem("c")))
	m.Apply(CreateItem{ItemType: testType, Item: deckItem("c")})
	require.Len(t, m.Items(), 4)
	assert.True(t, m.Items()[2].IsTombstone())
	assert.Equal(t, "c", m.Items()[3].ID)
}
