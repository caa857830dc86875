package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gamepark/rules-server-go/internal/game"
)

// ActionRepository reads and writes the action history of games. Actions
// are kept in play order, replaying them onto the stored setup rebuilds
// the current state.
type ActionRepository struct {
	db *DB
}

// NewActionRepository builds an action repository over the database.
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Insert appends one action to the history of a game.
func (r *ActionRepository) Insert(ctx context.Context, gameID string, action *game.Action) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal action %s: %w", action.ID, err)
	}
	_, err = r.db.pool.Exec(ctx,
		`INSERT INTO actions (id, game_id, player, payload) VALUES ($1, $2, $3, $4)`,
		action.ID, gameID, action.Player, payload)
	if err != nil {
		return fmt.Errorf("insert action %s of game %s: %w", action.ID, gameID, err)
	}
	return nil
}

// List returns the actions of a game in play order.
func (r *ActionRepository) List(ctx context.Context, gameID string) ([]*game.Action, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT payload FROM actions WHERE game_id = $1 ORDER BY position`, gameID)
	if err != nil {
		return nil, fmt.Errorf("select actions of game %s: %w", gameID, err)
	}
	defer rows.Close()

	var actions []*game.Action
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan action of game %s: %w", gameID, err)
		}
		action := &game.Action{}
		if err := json.Unmarshal(payload, action); err != nil {
			return nil, fmt.Errorf("unmarshal action of game %s: %w", gameID, err)
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions of game %s: %w", gameID, err)
	}
	return actions, nil
}

// Delete removes one action, the undo path deletes the undone action and
// replays the rest.
func (r *ActionRepository) Delete(ctx context.Context, gameID, actionID string) error {
	tag, err := r.db.pool.Exec(ctx,
		`DELETE FROM actions WHERE game_id = $1 AND id = $2`, gameID, actionID)
	if err != nil {
		return fmt.Errorf("delete action %s of game %s: %w", actionID, gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
