package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("repository: not found")

// StoredGame is one persisted game: its players and the state it started
// from. The current state is recomputed from the setup and the actions.
type StoredGame struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Players   []int           `json:"players"`
	Setup     json.RawMessage `json:"setup"`
	CreatedAt time.Time       `json:"createdAt"`
}

// GameRepository reads and writes games.
type GameRepository struct {
	db *DB
}

// NewGameRepository builds a game repository over the database.
func NewGameRepository(db *DB) *GameRepository {
	return &GameRepository{db: db}
}

// Create persists a new game.
func (r *GameRepository) Create(ctx context.Context, g *StoredGame) error {
	players, err := json.Marshal(g.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	_, err = r.db.pool.Exec(ctx,
		`INSERT INTO games (id, name, players, setup) VALUES ($1, $2, $3, $4)`,
		g.ID, g.Name, players, g.Setup)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

// Get loads one game by id.
func (r *GameRepository) Get(ctx context.Context, id string) (*StoredGame, error) {
	var (
		g       StoredGame
		players []byte
	)
	err := r.db.pool.QueryRow(ctx,
		`SELECT id, name, players, setup, created_at FROM games WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &players, &g.Setup, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select game %s: %w", id, err)
	}
	if err := json.Unmarshal(players, &g.Players); err != nil {
		return nil, fmt.Errorf("unmarshal players of game %s: %w", id, err)
	}
	return &g, nil
}

// Delete removes a game and its action history.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
