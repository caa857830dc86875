package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPathsIntoLeaves(t *testing.T) {
	item := Item{
		ID:       map[string]any{"front": "king", "back": map[string]any{"color": "red"}},
		Location: Location{Type: locDeck},
	}
	assert.Equal(t, []string{"id.back.color", "id.front"}, ExpandPaths(item, []string{"id"}))
	// a path with no value stays as given
	assert.Equal(t, []string{"selected"}, ExpandPaths(item, []string{"selected"}))
}

func TestHidePathsIsIdempotent(t *testing.T) {
	item := Item{
		ID:       map[string]any{"front": "king", "back": "blue"},
		Location: Location{Type: locDeck, Rotation: "faceDown"},
	}
	hidden := HidePaths(item, []string{"id.front", "location.rotation"})
	id, ok := hidden.ID.(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, id, "front")
	assert.Equal(t, "blue", id["back"])
	assert.Nil(t, hidden.Location.Rotation)

	again := HidePaths(hidden, []string{"id.front", "location.rotation"})
	assert.True(t, JSONEqual(hidden, again))
	// the source item is untouched
	assert.Equal(t, "king", item.ID.(map[string]any)["front"])
}

func TestHideWholeIdentifier(t *testing.T) {
	item := Item{ID: "king", Location: Location{Type: locDeck}}
	hidden := HidePaths(item, []string{"id"})
	assert.Nil(t, hidden.ID)
}

func TestPatchRebuildsHiddenFields(t *testing.T) {
	patch := Patch{}
	SetPatchPath(patch, "id.front", "king")
	SetPatchPath(patch, "location.rotation", "faceUp")

	item := Item{ID: map[string]any{"back": "blue"}, Location: Location{Type: locHand}}
	MergePatch(&item, patch)

	id := item.ID.(map[string]any)
	assert.Equal(t, "king", id["front"])
	assert.Equal(t, "blue", id["back"])
	assert.Equal(t, "faceUp", item.Location.Rotation)
}

func TestPatchRestoresScalarIdentifier(t *testing.T) {
	patch := Patch{}
	SetPatchPath(patch, "id", "king")
	item := Item{Location: Location{Type: locHand}}
	MergePatch(&item, patch)
	assert.Equal(t, "king", item.ID)
}

func TestGetPathOnLocationFields(t *testing.T) {
	player := 2
	item := Item{Location: Location{Type: locHand, Player: &player, X: FloatPtr(1)}}
	v, ok := GetPath(item, "location.player")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = GetPath(item, "location.x")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = GetPath(item, "location.y")
	assert.False(t, ok)
}
