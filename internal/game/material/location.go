package material

// Location describes where an item sits. Type identifies the location area
// (hand, deck, board...). Games use positive type values: the zero value
// marks an unspecified type in partial move locations, which are merged
// onto the item's current location when applied.
type Location struct {
	Type     int      `json:"type,omitempty"`
	ID       any      `json:"id,omitempty"`
	Player   *int     `json:"player,omitempty"`
	Parent   *int     `json:"parent,omitempty"`
	Rotation any      `json:"rotation,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Z        *float64 `json:"z,omitempty"`
}

// Axis selects one of the three location coordinates.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Clone returns a deep copy of the location.
func (l Location) Clone() Location {
	c := Location{
		Type:     l.Type,
		ID:       CloneValue(l.ID),
		Rotation: CloneValue(l.Rotation),
	}
	if l.Player != nil {
		p := *l.Player
		c.Player = &p
	}
	if l.Parent != nil {
		p := *l.Parent
		c.Parent = &p
	}
	if l.X != nil {
		x := *l.X
		c.X = &x
	}
	if l.Y != nil {
		y := *l.Y
		c.Y = &y
	}
	if l.Z != nil {
		z := *l.Z
		c.Z = &z
	}
	return c
}

// Coord returns a pointer to the coordinate on the given axis, nil when the
// coordinate is unset.
func (l *Location) Coord(axis Axis) *float64 {
	switch axis {
	case AxisX:
		return l.X
	case AxisY:
		return l.Y
	default:
		return l.Z
	}
}

// SetCoord sets the coordinate on the given axis.
func (l *Location) SetCoord(axis Axis, value float64) {
	v := value
	switch axis {
	case AxisX:
		l.X = &v
	case AxisY:
		l.Y = &v
	default:
		l.Z = &v
	}
}

// SameArea reports whether two locations belong to the same location area:
// same type, same id, same player, same parent. Coordinates and rotation do
// not take part, two slots of the same area only differ by those.
func SameArea(a, b Location) bool {
	return a.Type == b.Type &&
		JSONEqual(a.ID, b.ID) &&
		equalIntPtr(a.Player, b.Player) &&
		equalIntPtr(a.Parent, b.Parent)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// mergeLocation overlays the fields present in the partial location onto the
// base location. A partial location has no type: every set field replaces
// the corresponding base field, unset fields keep the base value.
func mergeLocation(base, partial Location) Location {
	merged := base.Clone()
	if partial.ID != nil {
		merged.ID = CloneValue(partial.ID)
	}
	if partial.Player != nil {
		p := *partial.Player
		merged.Player = &p
	}
	if partial.Parent != nil {
		p := *partial.Parent
		merged.Parent = &p
	}
	if partial.Rotation != nil {
		merged.Rotation = CloneValue(partial.Rotation)
	}
	if partial.X != nil {
		x := *partial.X
		merged.X = &x
	}
	if partial.Y != nil {
		y := *partial.Y
		merged.Y = &y
	}
	if partial.Z != nil {
		z := *partial.Z
		merged.Z = &z
	}
	return merged
}
