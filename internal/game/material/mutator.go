package material

import "go.uber.org/zap"

// SimultaneousContext makes item creation order-independent while several
// players act at the same time. It is frozen when the simultaneous phase
// starts: AvailableIndexes holds the tombstone indexes of the item type in
// ascending order followed by the array length at that time, PlayerRank is
// the acting player's position in the sorted active player list.
//
// The k-th creation of a player lands on the slot derived from position
// k*PlayerCount+PlayerRank: positions below the frozen tombstone count map
// to frozen tombstones, positions above map past the frozen array end. The
// slots reserved for a player are thus disjoint from every other player's,
// whatever the order their moves arrive in.
type SimultaneousContext struct {
	AvailableIndexes []int
	PlayerRank       int
	PlayerCount      int
}

func (c *SimultaneousContext) indexAt(position int) int {
	available := c.AvailableIndexes
	if len(available) == 0 {
		available = []int{0}
	}
	tombstones := len(available) - 1
	if position < tombstones {
		return available[position]
	}
	return available[tombstones] + (position - tombstones)
}

// Mutator applies item moves of one item type to a working copy of the
// store. A fresh mutator is built for every move played, so it always sees
// the current occupancy. Call Items after applying to collect the result.
type Mutator struct {
	typ        int
	items      []Item
	strategies map[int]LocationStrategy
	canMerge   bool
	ctx        *SimultaneousContext
	log        *zap.Logger
}

// NewMutator builds a mutator over the given items. The slice is used in
// place. strategies maps location types to their strategy, ctx is non-nil
// while a simultaneous phase is open for the acting player.
func NewMutator(typ int, items []Item, strategies map[int]LocationStrategy, canMerge bool, ctx *SimultaneousContext, log *zap.Logger) *Mutator {
	return &Mutator{typ: typ, items: items, strategies: strategies, canMerge: canMerge, ctx: ctx, log: log}
}

// Items returns the item slice after the applied moves.
func (m *Mutator) Items() []Item { return m.items }

// Apply executes one item move. Misuses are logged and skipped, a recorded
// game must stay replayable even when a move was built against a stale
// state.
func (m *Mutator) Apply(mv Move) {
	switch move := mv.(type) {
	case CreateItem:
		m.create(move.Item)
	case CreateItemsAtOnce:
		for _, it := range move.Items {
			m.addItem(it.Clone())
		}
	case MoveItem:
		m.move(move)
	case MoveItemsAtOnce:
		m.moveAtOnce(move)
	case DeleteItem:
		m.delete(move)
	case DeleteItemsAtOnce:
		m.deleteAtOnce(move)
	case RollItem:
		m.roll(move)
	case SelectItem:
		m.selectItem(move)
	case Shuffle:
		m.shuffle(move)
	default:
		m.logError("unsupported item move", zap.Any("move", mv))
	}
}

func (m *Mutator) create(item Item) {
	item = item.Clone()
	if item.Quantity != nil && *item.Quantity != 0 && !m.canMerge {
		m.logError("quantity used on an item type that cannot merge", zap.Int("itemType", m.typ))
	}
	if mergeIndex := m.FindMergeIndex(item); mergeIndex >= 0 {
		target := &m.items[mergeIndex]
		target.Quantity = IntPtr(target.Qty() + item.Qty())
		return
	}
	m.addItem(item)
}

// FindMergeIndex returns the index of the live item identical to the given
// one once quantity is ignored, -1 when none exists or the type cannot
// merge.
func (m *Mutator) FindMergeIndex(item Item) int {
	if !m.canMerge || item.IsTombstone() {
		return -1
	}
	for i := range m.items {
		if m.items[i].IsTombstone() {
			continue
		}
		if sameQuantityless(m.items[i], item) {
			return i
		}
	}
	return -1
}

// ItemCreationIndex predicts the slot the given item would land on if
// created now, without touching the store.
func (m *Mutator) ItemCreationIndex(item Item) int {
	if mergeIndex := m.FindMergeIndex(item); mergeIndex >= 0 {
		return mergeIndex
	}
	if m.ctx != nil {
		return m.nextInterleavedIndex()
	}
	if idx := m.firstTombstone(); idx >= 0 {
		return idx
	}
	return len(m.items)
}

func (m *Mutator) addItem(item Item) {
	if strategy := m.strategies[item.Location.Type]; strategy != nil {
		strategy.OnAddItem(m.areaSiblings(item.Location), &item)
	}
	if m.ctx != nil {
		m.placeAt(m.nextInterleavedIndex(), item)
		return
	}
	if idx := m.firstTombstone(); idx >= 0 {
		m.items[idx] = item
		return
	}
	m.items = append(m.items, item)
}

// nextInterleavedIndex walks the acting player's reserved slot sequence and
// returns the first one that is still free.
func (m *Mutator) nextInterleavedIndex() int {
	for k := 0; ; k++ {
		idx := m.ctx.indexAt(k*m.ctx.PlayerCount + m.ctx.PlayerRank)
		if idx >= len(m.items) || m.items[idx].IsTombstone() {
			return idx
		}
	}
}

// placeAt stores the item at the given slot, padding the gap with
// tombstones when the slot lies past the current end. The padding keeps
// other players' reserved slots stable whatever order the moves arrive in.
func (m *Mutator) placeAt(idx int, item Item) {
	for len(m.items) < idx {
		m.items = append(m.items, Tombstone())
	}
	if idx == len(m.items) {
		m.items = append(m.items, item)
		return
	}
	m.items[idx] = item
}

func (m *Mutator) firstTombstone() int {
	for i := range m.items {
		if m.items[i].IsTombstone() {
			return i
		}
	}
	return -1
}

func (m *Mutator) move(mv MoveItem) {
	if !m.checkIndex(mv.ItemIndex, "move") {
		return
	}
	quantity := 1
	if mv.Quantity > 0 {
		quantity = mv.Quantity
	}
	after := m.ItemAfterMove(mv)
	if mergeIndex := m.FindMergeIndex(after); mergeIndex >= 0 {
		if mergeIndex == mv.ItemIndex {
			m.logWarn("item moved to the location it already occupies",
				zap.Int("itemType", m.typ), zap.Int("itemIndex", mv.ItemIndex))
			return
		}
		target := &m.items[mergeIndex]
		target.Quantity = IntPtr(target.Qty() + after.Qty())
		m.removeQuantity(mv.ItemIndex, quantity)
		return
	}
	source := &m.items[mv.ItemIndex]
	if source.Quantity != nil && *source.Quantity > quantity {
		*source.Quantity -= quantity
		m.addItem(after)
		return
	}
	m.relocate(mv.ItemIndex, after)
}

// ItemAfterMove computes the item as it will exist once the move applies:
// the moved item with the target location, revealed fields merged in.
// Selection marks survive a move, the quantity only carries when the move
// names one.
func (m *Mutator) ItemAfterMove(mv MoveItem) Item {
	after := m.items[mv.ItemIndex].Clone()
	after.Location = m.locationAfterMove(after.Location, mv.Location)
	if mv.Reveal != nil {
		MergePatch(&after, *mv.Reveal)
	}
	if mv.Quantity > 0 {
		after.Quantity = IntPtr(mv.Quantity)
	} else {
		after.Quantity = nil
	}
	return after
}

// locationAfterMove merges a partial target location (no type) onto the
// current one, or replaces the location entirely when a type is given.
func (m *Mutator) locationAfterMove(current, target Location) Location {
	if target.Type != 0 {
		return target.Clone()
	}
	return mergeLocation(current, target)
}

func (m *Mutator) relocate(idx int, after Item) {
	old := m.items[idx]
	if SameArea(old.Location, after.Location) {
		if strategy := m.strategies[after.Location.Type]; strategy != nil {
			// the store still holds the pre-move item at idx, so the
			// siblings view lets the strategy read the vacated position
			strategy.OnMoveItem(m.areaSiblings(after.Location), &after, idx)
		}
		m.items[idx] = after
		return
	}
	if strategy := m.strategies[after.Location.Type]; strategy != nil {
		strategy.OnAddItem(m.areaSiblings(after.Location, idx), &after)
	}
	m.items[idx] = after
	if strategy := m.strategies[old.Location.Type]; strategy != nil {
		strategy.OnRemoveItem(m.areaSiblings(old.Location, idx), &old)
	}
}

func (m *Mutator) moveAtOnce(mv MoveItemsAtOnce) {
	for _, idx := range mv.Indexes {
		if !m.checkIndex(idx, "moveAtOnce") {
			continue
		}
		after := m.items[idx].Clone()
		after.Location = m.locationAfterMove(after.Location, mv.Location)
		if mv.Reveal != nil {
			if patch, ok := (*mv.Reveal)[idx]; ok {
				MergePatch(&after, patch)
			}
		}
		m.relocate(idx, after)
	}
}

func (m *Mutator) delete(mv DeleteItem) {
	if !m.checkIndex(mv.ItemIndex, "delete") {
		return
	}
	quantity := 1
	if mv.Quantity > 0 {
		quantity = mv.Quantity
	}
	m.removeQuantity(mv.ItemIndex, quantity)
}

func (m *Mutator) deleteAtOnce(mv DeleteItemsAtOnce) {
	for _, idx := range mv.Indexes {
		if !m.checkIndex(idx, "deleteAtOnce") {
			continue
		}
		m.removeQuantity(idx, m.items[idx].Qty())
	}
}

// removeQuantity lowers the quantity of a slot, turning it into a tombstone
// when it reaches zero. Deleting past the recorded quantity is a logged
// misuse and clamps to zero.
func (m *Mutator) removeQuantity(idx, quantity int) {
	item := &m.items[idx]
	remaining := item.Qty() - quantity
	if remaining < 0 {
		m.logWarn("deleting more units than the slot holds",
			zap.Int("itemType", m.typ), zap.Int("itemIndex", idx),
			zap.Int("quantity", quantity), zap.Int("held", item.Qty()))
		remaining = 0
	}
	item.Quantity = IntPtr(remaining)
	if remaining == 0 {
		old := *item
		if strategy := m.strategies[old.Location.Type]; strategy != nil {
			strategy.OnRemoveItem(m.areaSiblings(old.Location, idx), &old)
		}
	}
}

func (m *Mutator) roll(mv RollItem) {
	if !m.checkIndex(mv.ItemIndex, "roll") {
		return
	}
	after := m.items[mv.ItemIndex].Clone()
	after.Location = mv.Location.Clone()
	m.relocate(mv.ItemIndex, after)
}

func (m *Mutator) selectItem(mv SelectItem) {
	if !m.checkIndex(mv.ItemIndex, "select") {
		return
	}
	item := &m.items[mv.ItemIndex]
	if mv.Unselect {
		item.Selected = nil
		return
	}
	selected := 1
	if mv.Quantity > 0 {
		selected = mv.Quantity
	}
	if selected > item.Qty() {
		m.logWarn("selecting more units than the slot holds",
			zap.Int("itemType", m.typ), zap.Int("itemIndex", mv.ItemIndex),
			zap.Int("selected", selected), zap.Int("held", item.Qty()))
	}
	item.Selected = IntPtr(selected)
}

// shuffle permutes the contents of the listed slots: the item of
// Indexes[i] lands on slot NewIndexes[i] and takes over that slot's
// location. A move without NewIndexes has not been randomized yet and does
// nothing.
func (m *Mutator) shuffle(mv Shuffle) {
	if mv.NewIndexes == nil {
		return
	}
	if len(mv.NewIndexes) != len(mv.Indexes) {
		m.logError("shuffle permutation does not match the shuffled slots",
			zap.Int("itemType", m.typ))
		return
	}
	sources := make([]Item, len(mv.Indexes))
	for i, idx := range mv.Indexes {
		if !m.checkIndex(idx, "shuffle") {
			return
		}
		sources[i] = m.items[idx].Clone()
	}
	slots := make([]Location, len(mv.NewIndexes))
	for i, idx := range mv.NewIndexes {
		if !m.checkIndex(idx, "shuffle") {
			return
		}
		slots[i] = m.items[idx].Location.Clone()
	}
	for i, idx := range mv.NewIndexes {
		item := sources[i]
		item.Location = slots[i]
		m.items[idx] = item
	}
}

// areaSiblings returns the live items sharing the given location area,
// excluding the given slots.
func (m *Mutator) areaSiblings(loc Location, exclude ...int) Material {
	return FromItems(m.typ, m.items).Filter(func(it Item, idx int) bool {
		for _, e := range exclude {
			if idx == e {
				return false
			}
		}
		return SameArea(it.Location, loc)
	})
}

func (m *Mutator) checkIndex(idx int, op string) bool {
	if idx < 0 || idx >= len(m.items) {
		m.logError("item index out of range",
			zap.String("op", op), zap.Int("itemType", m.typ), zap.Int("itemIndex", idx))
		return false
	}
	return true
}

func (m *Mutator) logWarn(msg string, fields ...zap.Field) {
	if m.log != nil {
		m.log.Warn(msg, fields...)
	}
}

func (m *Mutator) logError(msg string, fields ...zap.Field) {
	if m.log != nil {
		m.log.Error(msg, fields...)
	}
}
