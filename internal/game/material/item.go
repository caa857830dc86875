// Package material holds the item store of a game: the items themselves,
// their locations, the moves that act on them and the mutator that applies
// those moves to the store.
package material

import (
	"bytes"
	"encoding/json"
)

// Item is one physical piece of game content: a card, a token, a tile.
// A nil Quantity means a single unit. A Quantity pointing at zero marks a
// tombstone: the slot is dead but keeps its index so that references from
// recorded moves stay valid.
type Item struct {
	ID       any      `json:"id,omitempty"`
	Location Location `json:"location"`
	Quantity *int     `json:"quantity,omitempty"`
	Selected *int     `json:"selected,omitempty"`
}

// Qty returns the effective quantity of the item (1 when unspecified).
func (i Item) Qty() int {
	if i.Quantity == nil {
		return 1
	}
	return *i.Quantity
}

// IsTombstone reports whether the slot is dead (explicit quantity zero).
func (i Item) IsTombstone() bool {
	return i.Quantity != nil && *i.Quantity == 0
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	c := Item{
		ID:       CloneValue(i.ID),
		Location: i.Location.Clone(),
	}
	if i.Quantity != nil {
		q := *i.Quantity
		c.Quantity = &q
	}
	if i.Selected != nil {
		s := *i.Selected
		c.Selected = &s
	}
	return c
}

// Tombstone returns a dead placeholder slot.
func Tombstone() Item {
	zero := 0
	return Item{Quantity: &zero}
}

// IntPtr is a small helper for the many optional int fields of this package.
func IntPtr(n int) *int { return &n }

// FloatPtr is the coordinate counterpart of IntPtr.
func FloatPtr(f float64) *float64 { return &f }

// CloneValue deep-copies an arbitrary JSON-shaped value: maps, slices and
// scalars. Item identifiers and rotations decoded from the wire are made of
// exactly these shapes.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(val))
		for k, sub := range val {
			c[k] = CloneValue(sub)
		}
		return c
	case []any:
		c := make([]any, len(val))
		for i, sub := range val {
			c[i] = CloneValue(sub)
		}
		return c
	default:
		return v
	}
}

// JSONEqual compares two values through their canonical JSON form.
// encoding/json sorts map keys and renders int 5 and float64 5 identically,
// so values that round-tripped through the wire compare equal to values
// built in code.
func JSONEqual(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

// sameQuantityless reports whether two items are identical once quantity is
// ignored. This is the merge criterion: same id, same location, same
// selection state.
func sameQuantityless(a, b Item) bool {
	a.Quantity = nil
	b.Quantity = nil
	return JSONEqual(a, b)
}
