package game

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

// Action is one submitted move with everything that followed from it: the
// randomized move as stored, and the recorded consequence chain. Replaying
// the actions of a game in order rebuilds the exact same state.
type Action struct {
	ID           string          `json:"id,omitempty"`
	Player       int             `json:"player"`
	Move         material.Move   `json:"move"`
	Consequences []material.Move `json:"consequences,omitempty"`
}

// ActionView is the action as one recipient is allowed to see it. A nil
// recipient is the spectator channel.
type ActionView struct {
	Recipient *int   `json:"recipient,omitempty"`
	Action    Action `json:"action"`
}

// ActionWithViews pairs the stored action with its per-recipient views.
type ActionWithViews struct {
	Action *Action
	Views  []ActionView
}

// UnmarshalJSON decodes the action, dispatching each move through the wire
// envelope.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           string            `json:"id"`
		Player       int               `json:"player"`
		Move         json.RawMessage   `json:"move"`
		Consequences []json.RawMessage `json:"consequences"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}
	a.ID = raw.ID
	a.Player = raw.Player
	a.Consequences = nil
	if raw.Move != nil {
		mv, err := material.DecodeMove(raw.Move)
		if err != nil {
			return fmt.Errorf("decode action %s: %w", raw.ID, err)
		}
		a.Move = mv
	}
	for _, rawMove := range raw.Consequences {
		mv, err := material.DecodeMove(rawMove)
		if err != nil {
			return fmt.Errorf("decode action %s: %w", raw.ID, err)
		}
		a.Consequences = append(a.Consequences, mv)
	}
	return nil
}

// PlayAction randomizes and plays one submitted move, drains its
// consequence chain and returns the stored action. The state reflects the
// action even when the chain hit the fuse, the error then reports the
// abort.
func (e *Engine) PlayAction(mv material.Move, player int) (*Action, error) {
	action := &Action{ID: uuid.NewString(), Player: player}
	record := func(m material.Move) {
		if action.Move == nil {
			action.Move = m
		} else {
			action.Consequences = append(action.Consequences, m)
		}
	}
	err := e.playRecorded(mv, player, record)
	return action, err
}

// PlayActionWithViews plays one submitted move like PlayAction and also
// derives, move by move, the action as each player and the spectator
// channel may see it. Views are computed against the state right before
// each move applies, which is when the revealed fields are still known.
func (e *Engine) PlayActionWithViews(mv material.Move, player int) (*ActionWithViews, error) {
	id := uuid.NewString()
	action := &Action{ID: id, Player: player}
	views := make([]ActionView, 0, len(e.game.Players)+1)
	for _, p := range e.game.Players {
		recipient := p
		views = append(views, ActionView{Recipient: &recipient, Action: Action{ID: id, Player: player}})
	}
	views = append(views, ActionView{Action: Action{ID: id, Player: player}})
	record := func(m material.Move) {
		for i := range views {
			view := e.GetMoveView(m, views[i].Recipient)
			if views[i].Action.Move == nil {
				views[i].Action.Move = view
			} else {
				views[i].Action.Consequences = append(views[i].Action.Consequences, view)
			}
		}
		if action.Move == nil {
			action.Move = m
		} else {
			action.Consequences = append(action.Consequences, m)
		}
	}
	err := e.playRecorded(mv, player, record)
	return &ActionWithViews{Action: action, Views: views}, err
}

func (e *Engine) playRecorded(mv material.Move, player int, record func(material.Move)) error {
	mv = e.Randomize(mv, &player)
	record(mv)
	consequences := e.Play(mv.Clone(), &player)
	return e.ApplyConsequences(consequences, record, &player)
}

// ReplayAction applies a stored action to the state: the recorded moves
// are played as they were stored, nothing is randomized or derived again.
func (e *Engine) ReplayAction(a *Action) {
	player := a.Player
	e.Play(a.Move.Clone(), &player)
	for _, c := range a.Consequences {
		e.Play(c.Clone(), &player)
	}
}

// ReplayActions rebuilds a state by applying stored actions in order.
func (e *Engine) ReplayActions(actions []*Action) {
	for _, a := range actions {
		e.ReplayAction(a)
	}
}
