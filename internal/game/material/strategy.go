package material

// LocationStrategy keeps the coordinates of a location area consistent as
// items come and go. The mutator invokes the hooks with a view over the
// live items of the area and the item being placed or removed. For a move
// inside the area the view still holds the moved item at its pre-move
// state under its slot index, so the hook can read the position it leaves.
// Hooks adjust siblings through the view, which aliases the store.
type LocationStrategy interface {
	OnAddItem(siblings Material, item *Item)
	OnMoveItem(siblings Material, item *Item, index int)
	OnRemoveItem(siblings Material, item *Item)
}

// NoStrategy is an embeddable no-op base for strategies that only need some
// of the hooks.
type NoStrategy struct{}

func (NoStrategy) OnAddItem(Material, *Item) {}

func (NoStrategy) OnMoveItem(Material, *Item, int) {}

func (NoStrategy) OnRemoveItem(Material, *Item) {}

// FillGapStrategy assigns the first free non-negative position on the axis
// to items placed without one. Removals leave a gap that the next arrival
// fills.
type FillGapStrategy struct {
	NoStrategy
	Axis Axis
}

func (s FillGapStrategy) OnAddItem(siblings Material, item *Item) {
	if item.Location.Coord(s.Axis) != nil {
		return
	}
	sorted := siblings.Sort(func(it Item) float64 {
		if c := it.Location.Coord(s.Axis); c != nil {
			return *c
		}
		return 0
	})
	position := 0.0
	for _, e := range sorted.Entries() {
		c := e.Item.Location.Coord(s.Axis)
		if c == nil || *c != position {
			break
		}
		position++
	}
	item.Location.SetCoord(s.Axis, position)
}

func (s FillGapStrategy) OnMoveItem(siblings Material, item *Item, index int) {
	s.OnAddItem(siblings.Filter(func(_ Item, i int) bool { return i != index }), item)
}

// PositiveSequenceStrategy keeps the area positions contiguous from zero:
// arrivals without a position go to the end, an arrival with one pushes the
// positions at and above it up, a move inside the area shifts the siblings
// between the old and new positions, removals shift the positions above the
// freed one down.
type PositiveSequenceStrategy struct {
	NoStrategy
	Axis Axis
}

func (s PositiveSequenceStrategy) OnAddItem(siblings Material, item *Item) {
	x := item.Location.Coord(s.Axis)
	if x == nil {
		item.Location.SetCoord(s.Axis, float64(siblings.Length()))
		return
	}
	for _, e := range siblings.Entries() {
		if c := e.Item.Location.Coord(s.Axis); c != nil && *c >= *x {
			e.Item.Location.SetCoord(s.Axis, *c+1)
		}
	}
}

func (s PositiveSequenceStrategy) OnMoveItem(siblings Material, item *Item, index int) {
	newX := item.Location.Coord(s.Axis)
	if newX == nil {
		end := float64(siblings.Length() - 1)
		item.Location.SetCoord(s.Axis, end)
		newX = &end
	}
	var oldX *float64
	for _, e := range siblings.Entries() {
		if e.Index == index {
			oldX = e.Item.Location.Coord(s.Axis)
			break
		}
	}
	if oldX == nil || *oldX == *newX {
		return
	}
	for _, e := range siblings.Entries() {
		if e.Index == index {
			continue
		}
		c := e.Item.Location.Coord(s.Axis)
		if c == nil {
			continue
		}
		switch {
		case *oldX < *newX && *c > *oldX && *c <= *newX:
			e.Item.Location.SetCoord(s.Axis, *c-1)
		case *newX < *oldX && *newX <= *c && *c < *oldX:
			e.Item.Location.SetCoord(s.Axis, *c+1)
		}
	}
}

func (s PositiveSequenceStrategy) OnRemoveItem(siblings Material, item *Item) {
	removed := item.Location.Coord(s.Axis)
	if removed == nil {
		return
	}
	for _, e := range siblings.Entries() {
		if c := e.Item.Location.Coord(s.Axis); c != nil && *c > *removed {
			e.Item.Location.SetCoord(s.Axis, *c-1)
		}
	}
}

// StackingStrategy stacks items sharing the same x and y, running a
// positive sequence on z inside each column.
type StackingStrategy struct {
	NoStrategy
}

func (s StackingStrategy) column(siblings Material, loc Location) Material {
	return siblings.Filter(func(it Item, _ int) bool {
		return sameFloatPtr(it.Location.X, loc.X) && sameFloatPtr(it.Location.Y, loc.Y)
	})
}

func (s StackingStrategy) OnAddItem(siblings Material, item *Item) {
	seq := PositiveSequenceStrategy{Axis: AxisZ}
	seq.OnAddItem(s.column(siblings, item.Location), item)
}

func (s StackingStrategy) OnMoveItem(siblings Material, item *Item, index int) {
	seq := PositiveSequenceStrategy{Axis: AxisZ}
	var source *Item
	for _, e := range siblings.Entries() {
		if e.Index == index {
			source = e.Item
			break
		}
	}
	if source == nil {
		seq.OnAddItem(s.column(siblings, item.Location), item)
		return
	}
	if sameFloatPtr(source.Location.X, item.Location.X) && sameFloatPtr(source.Location.Y, item.Location.Y) {
		seq.OnMoveItem(s.column(siblings, item.Location), item, index)
		return
	}
	oldColumn := s.column(siblings, source.Location).Filter(func(_ Item, i int) bool { return i != index })
	seq.OnRemoveItem(oldColumn, source)
	seq.OnAddItem(s.column(siblings, item.Location), item)
}

func (s StackingStrategy) OnRemoveItem(siblings Material, item *Item) {
	seq := PositiveSequenceStrategy{Axis: AxisZ}
	seq.OnRemoveItem(s.column(siblings, item.Location), item)
}

func sameFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
