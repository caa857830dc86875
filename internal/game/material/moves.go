package material

// MoveKind splits the move space in three families. The numeric values are
// part of the wire format and must not change.
type MoveKind int

const (
	MoveKindItem   MoveKind = 1
	MoveKindRule   MoveKind = 2
	MoveKindCustom MoveKind = 3
)

// ItemMoveType identifies the operation of an item move on the wire.
type ItemMoveType int

const (
	ItemCreate ItemMoveType = iota
	ItemMoveTo
	ItemShuffle
	ItemDelete
	ItemRoll
	ItemSelect
	ItemMoveAtOnce
	ItemCreateAtOnce
	ItemDeleteAtOnce
)

// RuleMoveType identifies the operation of a rule move on the wire.
type RuleMoveType int

const (
	RuleStartPlayerTurn RuleMoveType = iota
	RuleStartSimultaneousRule
	RuleEndPlayerTurn
	RuleStartRule
	RuleEndGame
)

// Move is the union of everything that can change a game state. Concrete
// moves are plain structs, the interface only carries the family tag and
// deep copying.
type Move interface {
	Kind() MoveKind
	Clone() Move
}

// Patch is a nested partial item: the keys are item fields, object values
// recurse into object-valued fields. A reveal patch restores fields that
// were hidden from a viewer. A non-nil empty patch is meaningful on a
// stored move: it marks the move as revealing without embedding any
// viewer-specific content.
type Patch map[string]any

// Clone returns a deep copy of the patch.
func (p Patch) Clone() Patch {
	if p == nil {
		return nil
	}
	c := make(Patch, len(p))
	for k, v := range p {
		c[k] = CloneValue(v)
	}
	return c
}

func clonePatchPtr(p *Patch) *Patch {
	if p == nil {
		return nil
	}
	c := p.Clone()
	if c == nil {
		c = Patch{}
	}
	return &c
}

// RevealMap carries one reveal patch per moved item index.
type RevealMap map[int]Patch

func cloneRevealMapPtr(r *RevealMap) *RevealMap {
	if r == nil {
		return nil
	}
	c := make(RevealMap, len(*r))
	for idx, p := range *r {
		c[idx] = p.Clone()
	}
	return &c
}

// CreateItem adds one item, merging into an identical mergeable item when
// one exists.
type CreateItem struct {
	ItemType int
	Item     Item
}

func (CreateItem) Kind() MoveKind { return MoveKindItem }
func (m CreateItem) Clone() Move  { m.Item = m.Item.Clone(); return m }

// CreateItemsAtOnce adds several items in a single move.
type CreateItemsAtOnce struct {
	ItemType int
	Items    []Item
}

func (CreateItemsAtOnce) Kind() MoveKind { return MoveKindItem }
func (m CreateItemsAtOnce) Clone() Move {
	items := make([]Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = it.Clone()
	}
	m.Items = items
	return m
}

// MoveItem relocates all or part of the item at ItemIndex. A zero Quantity
// moves a single unit. Reveal carries the fields the viewer discovers when
// the move is applied to a view.
type MoveItem struct {
	ItemType  int
	ItemIndex int
	Location  Location
	Quantity  int
	Reveal    *Patch
}

func (MoveItem) Kind() MoveKind { return MoveKindItem }
func (m MoveItem) Clone() Move {
	m.Location = m.Location.Clone()
	m.Reveal = clonePatchPtr(m.Reveal)
	return m
}

// MoveItemsAtOnce relocates several items to the same location in a single
// move.
type MoveItemsAtOnce struct {
	ItemType int
	Indexes  []int
	Location Location
	Reveal   *RevealMap
}

func (MoveItemsAtOnce) Kind() MoveKind { return MoveKindItem }
func (m MoveItemsAtOnce) Clone() Move {
	m.Indexes = append([]int(nil), m.Indexes...)
	m.Location = m.Location.Clone()
	m.Reveal = cloneRevealMapPtr(m.Reveal)
	return m
}

// DeleteItem removes all or part of the item at ItemIndex. A zero Quantity
// deletes a single unit.
type DeleteItem struct {
	ItemType  int
	ItemIndex int
	Quantity  int
}

func (DeleteItem) Kind() MoveKind { return MoveKindItem }
func (m DeleteItem) Clone() Move  { return m }

// DeleteItemsAtOnce removes several items entirely in a single move.
type DeleteItemsAtOnce struct {
	ItemType int
	Indexes  []int
}

func (DeleteItemsAtOnce) Kind() MoveKind { return MoveKindItem }
func (m DeleteItemsAtOnce) Clone() Move {
	m.Indexes = append([]int(nil), m.Indexes...)
	return m
}

// RollItem relocates an item with a randomized rotation. The rotation is
// drawn when the move is played, so the move is unpredictable until then.
type RollItem struct {
	ItemType  int
	ItemIndex int
	Location  Location
}

func (RollItem) Kind() MoveKind { return MoveKindItem }
func (m RollItem) Clone() Move  { m.Location = m.Location.Clone(); return m }

// SelectItem marks the item at ItemIndex as selected, with an optional
// count. Unselect clears the mark instead.
type SelectItem struct {
	ItemType  int
	ItemIndex int
	Quantity  int
	Unselect  bool
}

func (SelectItem) Kind() MoveKind { return MoveKindItem }
func (m SelectItem) Clone() Move  { return m }

// Shuffle permutes the contents of the listed slots. NewIndexes is empty
// until the move is played server-side, and stripped again from views that
// must not learn the permutation.
type Shuffle struct {
	ItemType   int
	Indexes    []int
	NewIndexes []int
}

func (Shuffle) Kind() MoveKind { return MoveKindItem }
func (m Shuffle) Clone() Move {
	m.Indexes = append([]int(nil), m.Indexes...)
	m.NewIndexes = append([]int(nil), m.NewIndexes...)
	return m
}

// StartPlayerTurn switches to a rule step where a single player is active.
type StartPlayerTurn struct {
	RuleID int
	Player *int
}

func (StartPlayerTurn) Kind() MoveKind { return MoveKindRule }
func (m StartPlayerTurn) Clone() Move {
	if m.Player != nil {
		p := *m.Player
		m.Player = &p
	}
	return m
}

// StartSimultaneousRule opens a phase where several players act at the same
// time. A nil Players list activates every player of the game.
type StartSimultaneousRule struct {
	RuleID  int
	Players []int
}

func (StartSimultaneousRule) Kind() MoveKind { return MoveKindRule }
func (m StartSimultaneousRule) Clone() Move {
	if m.Players != nil {
		m.Players = append([]int(nil), m.Players...)
	}
	return m
}

// EndPlayerTurn removes one player from the active list of a simultaneous
// phase.
type EndPlayerTurn struct {
	Player int
}

func (EndPlayerTurn) Kind() MoveKind { return MoveKindRule }
func (m EndPlayerTurn) Clone() Move  { return m }

// StartRule switches to a rule step keeping the current active player.
type StartRule struct {
	RuleID int
}

func (StartRule) Kind() MoveKind { return MoveKindRule }
func (m StartRule) Clone() Move  { return m }

// EndGame closes the game: no rule step remains active.
type EndGame struct{}

func (EndGame) Kind() MoveKind { return MoveKindRule }
func (m EndGame) Clone() Move  { return m }

// CustomMove carries game-specific intent that does not act on items or
// rule steps directly. Its meaning is entirely up to the rule parts.
type CustomMove struct {
	Type int
	Data any
}

func (CustomMove) Kind() MoveKind { return MoveKindCustom }
func (m CustomMove) Clone() Move  { m.Data = CloneValue(m.Data); return m }

// CloneMoves deep-copies a move list.
func CloneMoves(moves []Move) []Move {
	if moves == nil {
		return nil
	}
	c := make([]Move, len(moves))
	for i, m := range moves {
		c[i] = m.Clone()
	}
	return c
}

// ItemTypeOf returns the item type of an item move.
func ItemTypeOf(m Move) (int, bool) {
	switch mv := m.(type) {
	case CreateItem:
		return mv.ItemType, true
	case CreateItemsAtOnce:
		return mv.ItemType, true
	case MoveItem:
		return mv.ItemType, true
	case MoveItemsAtOnce:
		return mv.ItemType, true
	case DeleteItem:
		return mv.ItemType, true
	case DeleteItemsAtOnce:
		return mv.ItemType, true
	case RollItem:
		return mv.ItemType, true
	case SelectItem:
		return mv.ItemType, true
	case Shuffle:
		return mv.ItemType, true
	}
	return 0, false
}
