package material

import (
	"encoding/json"
	"fmt"
)

// wireMove is the flat wire envelope shared by every move. Which fields are
// populated depends on kind and type.
type wireMove struct {
	Kind       MoveKind        `json:"kind"`
	Type       int             `json:"type"`
	ItemType   int             `json:"itemType,omitempty"`
	ItemIndex  *int            `json:"itemIndex,omitempty"`
	Item       *Item           `json:"item,omitempty"`
	Items      []Item          `json:"items,omitempty"`
	Indexes    []int           `json:"indexes,omitempty"`
	NewIndexes []int           `json:"newIndexes,omitempty"`
	Location   *Location       `json:"location,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	Reveal     json.RawMessage `json:"reveal,omitempty"`
	Selected   *bool           `json:"selected,omitempty"`
	ID         int             `json:"id,omitempty"`
	Player     *int            `json:"player,omitempty"`
	Players    []int           `json:"players,omitempty"`
	Data       any             `json:"data,omitempty"`
}

func marshalWire(w wireMove) ([]byte, error) { return json.Marshal(w) }

func (m CreateItem) MarshalJSON() ([]byte, error) {
	item := m.Item
	return marshalWire(wireMove{Kind: MoveKindItem, Type: int(ItemCreate), ItemType: m.ItemType, Item: &item})
}

func (m CreateItemsAtOnce) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindItem, Type: int(ItemCreateAtOnce), ItemType: m.ItemType, Items: m.Items})
}

func (m MoveItem) MarshalJSON() ([]byte, error) {
	loc := m.Location
	w := wireMove{Kind: MoveKindItem, Type: int(ItemMoveTo), ItemType: m.ItemType, ItemIndex: IntPtr(m.ItemIndex), Location: &loc, Quantity: m.Quantity}
	if m.Reveal != nil {
		raw, err := json.Marshal(*m.Reveal)
		if err != nil {
			return nil, err
		}
		w.Reveal = raw
	}
	return marshalWire(w)
}

func (m MoveItemsAtOnce) MarshalJSON() ([]byte, error) {
	loc := m.Location
	w := wireMove{Kind: MoveKindItem, Type: int(ItemMoveAtOnce), ItemType: m.ItemType, Indexes: m.Indexes, Location: &loc}
	if m.Reveal != nil {
		raw, err := json.Marshal(*m.Reveal)
		if err != nil {
			return nil, err
		}
		w.Reveal = raw
	}
	return marshalWire(w)
}

func (m DeleteItem) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindItem, Type: int(ItemDelete), ItemType: m.ItemType, ItemIndex: IntPtr(m.ItemIndex), Quantity: m.Quantity})
}

func (m DeleteItemsAtOnce) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindItem, Type: int(ItemDeleteAtOnce), ItemType: m.ItemType, Indexes: m.Indexes})
}

func (m RollItem) MarshalJSON() ([]byte, error) {
	loc := m.Location
	return marshalWire(wireMove{Kind: MoveKindItem, Type: int(ItemRoll), ItemType: m.ItemType, ItemIndex: IntPtr(m.ItemIndex), Location: &loc})
}

func (m SelectItem) MarshalJSON() ([]byte, error) {
	w := wireMove{Kind: MoveKindItem, Type: int(ItemSelect), ItemType: m.ItemType, ItemIndex: IntPtr(m.ItemIndex), Quantity: m.Quantity}
	if m.Unselect {
		f := false
		w.Selected = &f
	}
	return marshalWire(w)
}

func (m Shuffle) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindItem, Type: int(ItemShuffle), ItemType: m.ItemType, Indexes: m.Indexes, NewIndexes: m.NewIndexes})
}

func (m StartPlayerTurn) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindRule, Type: int(RuleStartPlayerTurn), ID: m.RuleID, Player: m.Player})
}

func (m StartSimultaneousRule) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindRule, Type: int(RuleStartSimultaneousRule), ID: m.RuleID, Players: m.Players})
}

func (m EndPlayerTurn) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindRule, Type: int(RuleEndPlayerTurn), Player: IntPtr(m.Player)})
}

func (m StartRule) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindRule, Type: int(RuleStartRule), ID: m.RuleID})
}

func (m EndGame) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindRule, Type: int(RuleEndGame)})
}

func (m CustomMove) MarshalJSON() ([]byte, error) {
	return marshalWire(wireMove{Kind: MoveKindCustom, Type: m.Type, Data: m.Data})
}

// DecodeMove parses a move from its wire form.
func DecodeMove(data []byte) (Move, error) {
	var w wireMove
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode move: %w", err)
	}
	switch w.Kind {
	case MoveKindItem:
		return decodeItemMove(w)
	case MoveKindRule:
		return decodeRuleMove(w)
	case MoveKindCustom:
		return CustomMove{Type: w.Type, Data: w.Data}, nil
	default:
		return nil, fmt.Errorf("decode move: unsupported kind %d", w.Kind)
	}
}

func decodeItemMove(w wireMove) (Move, error) {
	index := 0
	if w.ItemIndex != nil {
		index = *w.ItemIndex
	}
	location := Location{}
	if w.Location != nil {
		location = *w.Location
	}
	switch ItemMoveType(w.Type) {
	case ItemCreate:
		if w.Item == nil {
			return nil, fmt.Errorf("decode move: create without item")
		}
		return CreateItem{ItemType: w.ItemType, Item: *w.Item}, nil
	case ItemCreateAtOnce:
		return CreateItemsAtOnce{ItemType: w.ItemType, Items: w.Items}, nil
	case ItemMoveTo:
		m := MoveItem{ItemType: w.ItemType, ItemIndex: index, Location: location, Quantity: w.Quantity}
		if w.Reveal != nil {
			var p Patch
			if err := json.Unmarshal(w.Reveal, &p); err != nil {
				return nil, fmt.Errorf("decode move: reveal: %w", err)
			}
			if p == nil {
				p = Patch{}
			}
			m.Reveal = &p
		}
		return m, nil
	case ItemMoveAtOnce:
		m := MoveItemsAtOnce{ItemType: w.ItemType, Indexes: w.Indexes, Location: location}
		if w.Reveal != nil {
			var r RevealMap
			if err := json.Unmarshal(w.Reveal, &r); err != nil {
				return nil, fmt.Errorf("decode move: reveal: %w", err)
			}
			if r == nil {
				r = RevealMap{}
			}
			m.Reveal = &r
		}
		return m, nil
	case ItemDelete:
		return DeleteItem{ItemType: w.ItemType, ItemIndex: index, Quantity: w.Quantity}, nil
	case ItemDeleteAtOnce:
		return DeleteItemsAtOnce{ItemType: w.ItemType, Indexes: w.Indexes}, nil
	case ItemRoll:
		return RollItem{ItemType: w.ItemType, ItemIndex: index, Location: location}, nil
	case ItemSelect:
		return SelectItem{ItemType: w.ItemType, ItemIndex: index, Quantity: w.Quantity, Unselect: w.Selected != nil && !*w.Selected}, nil
	case ItemShuffle:
		return Shuffle{ItemType: w.ItemType, Indexes: w.Indexes, NewIndexes: w.NewIndexes}, nil
	default:
		return nil, fmt.Errorf("decode move: unsupported item move type %d", w.Type)
	}
}

func decodeRuleMove(w wireMove) (Move, error) {
	switch RuleMoveType(w.Type) {
	case RuleStartPlayerTurn:
		return StartPlayerTurn{RuleID: w.ID, Player: w.Player}, nil
	case RuleStartSimultaneousRule:
		return StartSimultaneousRule{RuleID: w.ID, Players: w.Players}, nil
	case RuleEndPlayerTurn:
		if w.Player == nil {
			return nil, fmt.Errorf("decode move: end player turn without player")
		}
		return EndPlayerTurn{Player: *w.Player}, nil
	case RuleStartRule:
		return StartRule{RuleID: w.ID}, nil
	case RuleEndGame:
		return EndGame{}, nil
	default:
		return nil, fmt.Errorf("decode move: unsupported rule move type %d", w.Type)
	}
}
