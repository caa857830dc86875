package material

import (
	"sort"
	"strings"
)

// Item field paths drive the hidden information engine. A path addresses a
// field of an item ("id", "location.rotation") and may descend into
// object-valued identifiers ("id.front"). Paths use dots as separators.

// GetPath returns the value addressed by path on the item, and whether the
// path resolves to a value.
func GetPath(it Item, path string) (any, bool) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "id":
		return descend(it.ID, parts[1:])
	case "quantity":
		if it.Quantity == nil {
			return nil, false
		}
		return *it.Quantity, len(parts) == 1
	case "selected":
		if it.Selected == nil {
			return nil, false
		}
		return *it.Selected, len(parts) == 1
	case "location":
		if len(parts) == 1 {
			return it.Location, true
		}
		return locationGet(it.Location, parts[1:])
	}
	return nil, false
}

func descend(v any, parts []string) (any, bool) {
	for _, p := range parts {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

func locationGet(l Location, parts []string) (any, bool) {
	var v any
	switch parts[0] {
	case "type":
		v = l.Type
	case "id":
		v = l.ID
	case "player":
		if l.Player == nil {
			return nil, false
		}
		v = *l.Player
	case "parent":
		if l.Parent == nil {
			return nil, false
		}
		v = *l.Parent
	case "rotation":
		v = l.Rotation
	case "x":
		if l.X == nil {
			return nil, false
		}
		v = *l.X
	case "y":
		if l.Y == nil {
			return nil, false
		}
		v = *l.Y
	case "z":
		if l.Z == nil {
			return nil, false
		}
		v = *l.Z
	default:
		return nil, false
	}
	if v == nil {
		return nil, false
	}
	return descend(v, parts[1:])
}

// UnsetPath removes the value addressed by path from the item, in place.
func UnsetPath(it *Item, path string) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "id":
		if len(parts) == 1 {
			it.ID = nil
			return
		}
		unsetIn(it.ID, parts[1:])
	case "quantity":
		it.Quantity = nil
	case "selected":
		it.Selected = nil
	case "location":
		if len(parts) == 1 {
			it.Location = Location{}
			return
		}
		locationUnset(&it.Location, parts[1:])
	}
}

func unsetIn(v any, parts []string) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	for _, p := range parts[:len(parts)-1] {
		v, ok = m[p]
		if !ok {
			return
		}
		m, ok = v.(map[string]any)
		if !ok {
			return
		}
	}
	delete(m, parts[len(parts)-1])
}

func locationUnset(l *Location, parts []string) {
	if len(parts) == 1 {
		switch parts[0] {
		case "id":
			l.ID = nil
		case "player":
			l.Player = nil
		case "parent":
			l.Parent = nil
		case "rotation":
			l.Rotation = nil
		case "x":
			l.X = nil
		case "y":
			l.Y = nil
		case "z":
			l.Z = nil
		}
		return
	}
	switch parts[0] {
	case "id":
		unsetIn(l.ID, parts[1:])
	case "rotation":
		unsetIn(l.Rotation, parts[1:])
	}
}

// ExpandPaths replaces each path that resolves to an object value with one
// path per leaf of that object, so that hiding and revealing always act on
// scalar leaves. Paths that resolve to nothing are kept as given. Children
// are emitted in sorted key order to keep views deterministic.
func ExpandPaths(it Item, paths []string) []string {
	var out []string
	for _, path := range paths {
		out = appendExpanded(out, it, path)
	}
	return out
}

func appendExpanded(out []string, it Item, path string) []string {
	v, ok := GetPath(it, path)
	if !ok {
		return append(out, path)
	}
	m, isMap := v.(map[string]any)
	if !isMap {
		return append(out, path)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = appendExpanded(out, it, path+"."+k)
	}
	return out
}

// HidePaths returns a deep copy of the item with every given path removed.
func HidePaths(it Item, paths []string) Item {
	hidden := it.Clone()
	for _, path := range paths {
		UnsetPath(&hidden, path)
	}
	return hidden
}

// SetPatchPath records a value at a dotted path inside a patch, creating
// intermediate objects as needed.
func SetPatchPath(p Patch, path string, value any) {
	parts := strings.Split(path, ".")
	m := map[string]any(p)
	for _, part := range parts[:len(parts)-1] {
		sub, ok := m[part].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[part] = sub
		}
		m = sub
	}
	m[parts[len(parts)-1]] = CloneValue(value)
}

// MergePatch applies a reveal patch onto the item, restoring the fields the
// patch carries.
func MergePatch(it *Item, p Patch) {
	for key, value := range p {
		switch key {
		case "id":
			it.ID = mergeValue(it.ID, value)
		case "quantity":
			if n, ok := asInt(value); ok {
				it.Quantity = &n
			}
		case "selected":
			if n, ok := asInt(value); ok {
				it.Selected = &n
			}
		case "location":
			if sub, ok := value.(map[string]any); ok {
				mergeLocationPatch(&it.Location, sub)
			}
		}
	}
}

func mergeValue(existing, patch any) any {
	patchMap, patchIsMap := patch.(map[string]any)
	if !patchIsMap {
		return CloneValue(patch)
	}
	existingMap, existingIsMap := existing.(map[string]any)
	if !existingIsMap {
		existingMap = map[string]any{}
	}
	for k, v := range patchMap {
		existingMap[k] = mergeValue(existingMap[k], v)
	}
	return existingMap
}

func mergeLocationPatch(l *Location, patch map[string]any) {
	for key, value := range patch {
		switch key {
		case "type":
			if n, ok := asInt(value); ok {
				l.Type = n
			}
		case "id":
			l.ID = mergeValue(l.ID, value)
		case "player":
			if n, ok := asInt(value); ok {
				l.Player = &n
			}
		case "parent":
			if n, ok := asInt(value); ok {
				l.Parent = &n
			}
		case "rotation":
			l.Rotation = mergeValue(l.Rotation, value)
		case "x":
			if f, ok := asFloat(value); ok {
				l.X = &f
			}
		case "y":
			if f, ok := asFloat(value); ok {
				l.Y = &f
			}
		case "z":
			if f, ok := asFloat(value); ok {
				l.Z = &f
			}
		}
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
