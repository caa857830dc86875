package material

import "sort"

// PreconditionError reports a move builder used on an empty selection. The
// builders panic with it: building a move out of nothing is a programming
// error in the game rules, not a runtime condition to handle.
type PreconditionError struct {
	Op string
}

func (e *PreconditionError) Error() string {
	return "material: " + e.Op + " on empty selection"
}

// Entry pairs an item with its slot index in the store. The item pointer
// aliases the store so that location strategies can adjust siblings in
// place.
type Entry struct {
	Index int
	Item  *Item
}

// Material is a filterable view over the items of one type, and the builder
// of the moves that act on them. Filters return narrowed copies, the
// underlying items are shared.
type Material struct {
	typ     int
	entries []Entry
	process func(Move)
}

// New builds a material view over the given entries.
func New(typ int, entries []Entry) Material {
	return Material{typ: typ, entries: entries}
}

// FromItems builds a material view over a full item slice, skipping
// tombstones.
func FromItems(typ int, items []Item) Material {
	entries := make([]Entry, 0, len(items))
	for i := range items {
		if items[i].IsTombstone() {
			continue
		}
		entries = append(entries, Entry{Index: i, Item: &items[i]})
	}
	return Material{typ: typ, entries: entries}
}

// WithProcess returns a view whose builders also hand every built move to
// fn. Game setup uses this to apply moves as they are built.
func (m Material) WithProcess(fn func(Move)) Material {
	m.process = fn
	return m
}

// Type returns the item type of the view.
func (m Material) Type() int { return m.typ }

// Length returns the number of selected entries.
func (m Material) Length() int { return len(m.entries) }

// Entries returns the selected entries.
func (m Material) Entries() []Entry { return m.entries }

// Items returns copies of the selected items.
func (m Material) Items() []Item {
	items := make([]Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = *e.Item
	}
	return items
}

// ItemIndexes returns the slot indexes of the selected entries.
func (m Material) ItemIndexes() []int {
	indexes := make([]int, len(m.entries))
	for i, e := range m.entries {
		indexes[i] = e.Index
	}
	return indexes
}

// GetItem returns the first selected item.
func (m Material) GetItem() (Item, bool) {
	if len(m.entries) == 0 {
		return Item{}, false
	}
	return *m.entries[0].Item, true
}

// GetIndex returns the slot index of the first selected item, -1 when the
// selection is empty.
func (m Material) GetIndex() int {
	if len(m.entries) == 0 {
		return -1
	}
	return m.entries[0].Index
}

// Quantity sums the quantities of the selected items.
func (m Material) Quantity() int {
	total := 0
	for _, e := range m.entries {
		total += e.Item.Qty()
	}
	return total
}

// Filter narrows the selection with an arbitrary predicate.
func (m Material) Filter(pred func(it Item, index int) bool) Material {
	kept := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if pred(*e.Item, e.Index) {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return m
}

// ID keeps the items with the given identifier.
func (m Material) ID(id any) Material {
	return m.Filter(func(it Item, _ int) bool { return JSONEqual(it.ID, id) })
}

// Location keeps the items in the given location type.
func (m Material) Location(locType int) Material {
	return m.Filter(func(it Item, _ int) bool { return it.Location.Type == locType })
}

// LocationID keeps the items whose location has the given identifier.
func (m Material) LocationID(id any) Material {
	return m.Filter(func(it Item, _ int) bool { return JSONEqual(it.Location.ID, id) })
}

// Player keeps the items in a location owned by the given player.
func (m Material) Player(player int) Material {
	return m.Filter(func(it Item, _ int) bool {
		return it.Location.Player != nil && *it.Location.Player == player
	})
}

// Parent keeps the items whose location points at the given parent slot.
func (m Material) Parent(parent int) Material {
	return m.Filter(func(it Item, _ int) bool {
		return it.Location.Parent != nil && *it.Location.Parent == parent
	})
}

// Index keeps the item at the given slot index.
func (m Material) Index(index int) Material {
	return m.Filter(func(_ Item, i int) bool { return i == index })
}

// Indexes keeps the items at the given slot indexes.
func (m Material) Indexes(indexes []int) Material {
	set := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		set[i] = struct{}{}
	}
	return m.Filter(func(_ Item, i int) bool {
		_, ok := set[i]
		return ok
	})
}

// Selected keeps the items currently bearing a selection mark.
func (m Material) Selected() Material {
	return m.Filter(func(it Item, _ int) bool { return it.Selected != nil })
}

// Sort returns the selection ordered by the selector, ascending. The sort
// is stable so that equal items keep their slot order.
func (m Material) Sort(selector func(Item) float64) Material {
	entries := append([]Entry(nil), m.entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return selector(*entries[i].Item) < selector(*entries[j].Item)
	})
	m.entries = entries
	return m
}

// MaxBy keeps the items maximizing the selector.
func (m Material) MaxBy(selector func(Item) float64) Material {
	if len(m.entries) == 0 {
		return m
	}
	max := selector(*m.entries[0].Item)
	for _, e := range m.entries[1:] {
		if v := selector(*e.Item); v > max {
			max = v
		}
	}
	return m.Filter(func(it Item, _ int) bool { return selector(it) == max })
}

func (m Material) built(mv Move) {
	if m.process != nil {
		m.process(mv)
	}
}

// CreateItem builds the move creating one item of this type.
func (m Material) CreateItem(it Item) CreateItem {
	mv := CreateItem{ItemType: m.typ, Item: it}
	m.built(mv)
	return mv
}

// CreateItems builds the move creating several items of this type at once.
func (m Material) CreateItems(items []Item) CreateItemsAtOnce {
	mv := CreateItemsAtOnce{ItemType: m.typ, Items: items}
	m.built(mv)
	return mv
}

// MoveItem builds the move relocating the first selected item.
func (m Material) MoveItem(location Location) MoveItem {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "moveItem"})
	}
	mv := MoveItem{ItemType: m.typ, ItemIndex: m.entries[0].Index, Location: location}
	m.built(mv)
	return mv
}

// MoveItemQuantity builds the move relocating part of the first selected
// item.
func (m Material) MoveItemQuantity(location Location, quantity int) MoveItem {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "moveItem"})
	}
	mv := MoveItem{ItemType: m.typ, ItemIndex: m.entries[0].Index, Location: location, Quantity: quantity}
	m.built(mv)
	return mv
}

// MoveItems builds one relocation move per selected item.
func (m Material) MoveItems(location Location) []Move {
	moves := make([]Move, len(m.entries))
	for i, e := range m.entries {
		mv := MoveItem{ItemType: m.typ, ItemIndex: e.Index, Location: location.Clone()}
		m.built(mv)
		moves[i] = mv
	}
	return moves
}

// MoveItemsAtOnce builds a single move relocating every selected item.
func (m Material) MoveItemsAtOnce(location Location) MoveItemsAtOnce {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "moveItemsAtOnce"})
	}
	mv := MoveItemsAtOnce{ItemType: m.typ, Indexes: m.ItemIndexes(), Location: location}
	m.built(mv)
	return mv
}

// DeleteItem builds the move deleting one unit of the first selected item.
func (m Material) DeleteItem() DeleteItem {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "deleteItem"})
	}
	mv := DeleteItem{ItemType: m.typ, ItemIndex: m.entries[0].Index}
	m.built(mv)
	return mv
}

// DeleteItemQuantity builds the move deleting part of the first selected
// item.
func (m Material) DeleteItemQuantity(quantity int) DeleteItem {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "deleteItem"})
	}
	mv := DeleteItem{ItemType: m.typ, ItemIndex: m.entries[0].Index, Quantity: quantity}
	m.built(mv)
	return mv
}

// DeleteItems builds one deletion move per selected item.
func (m Material) DeleteItems() []Move {
	moves := make([]Move, len(m.entries))
	for i, e := range m.entries {
		mv := DeleteItem{ItemType: m.typ, ItemIndex: e.Index}
		m.built(mv)
		moves[i] = mv
	}
	return moves
}

// DeleteItemsAtOnce builds a single move deleting every selected item.
func (m Material) DeleteItemsAtOnce() DeleteItemsAtOnce {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "deleteItemsAtOnce"})
	}
	mv := DeleteItemsAtOnce{ItemType: m.typ, Indexes: m.ItemIndexes()}
	m.built(mv)
	return mv
}

// Shuffle builds the move permuting the selected slots. The permutation
// itself is drawn when the move is played.
func (m Material) Shuffle() Shuffle {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "shuffle"})
	}
	mv := Shuffle{ItemType: m.typ, Indexes: m.ItemIndexes()}
	m.built(mv)
	return mv
}

// SelectItem builds the move marking the first selected item.
func (m Material) SelectItem() SelectItem {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "selectItem"})
	}
	mv := SelectItem{ItemType: m.typ, ItemIndex: m.entries[0].Index}
	m.built(mv)
	return mv
}

// UnselectItem builds the move clearing the mark of the first selected
// item.
func (m Material) UnselectItem() SelectItem {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "unselectItem"})
	}
	mv := SelectItem{ItemType: m.typ, ItemIndex: m.entries[0].Index, Unselect: true}
	m.built(mv)
	return mv
}

// RollItem builds the move relocating the first selected item with a
// randomized rotation.
func (m Material) RollItem(location Location) RollItem {
	if len(m.entries) == 0 {
		panic(&PreconditionError{Op: "rollItem"})
	}
	mv := RollItem{ItemType: m.typ, ItemIndex: m.entries[0].Index, Location: location}
	m.built(mv)
	return mv
}
