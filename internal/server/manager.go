// Package server exposes games over websocket: clients join a game as a
// player or spectator, submit moves and receive the per-recipient view of
// every action. All calls touching one game are serialized through its
// runtime.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gamepark/rules-server-go/internal/config"
	"github.com/gamepark/rules-server-go/internal/game"
	"github.com/gamepark/rules-server-go/internal/game/material"
	"github.com/gamepark/rules-server-go/internal/repository"
)

var (
	// ErrUnknownGameType is returned when no game type is registered under
	// the requested name.
	ErrUnknownGameType = errors.New("server: unknown game type")
	// ErrGameNotFound is returned when the requested game does not exist.
	ErrGameNotFound = errors.New("server: game not found")
	// ErrIllegalMove is returned when the move is not in the player's legal
	// moves for the current state.
	ErrIllegalMove = errors.New("server: illegal move")
	// ErrCannotUndo is returned when the undo policy forbids taking the
	// action back.
	ErrCannotUndo = errors.New("server: action can no longer be undone")
)

// GameType binds a registered game: its definition and the setup playing
// the initial moves.
type GameType struct {
	Definition *game.Definition
	Setup      func(s *game.Setup)
}

// Manager owns the live game runtimes. Each runtime serializes every call
// on its game, the engine itself is not safe for concurrent use.
type Manager struct {
	types   map[string]GameType
	games   *repository.GameRepository
	actions *repository.ActionRepository
	cfg     config.EngineConfig
	log     *zap.Logger

	mu       sync.Mutex
	runtimes map[string]*runtime
}

type runtime struct {
	mu     sync.Mutex
	typeID string
	engine *game.Engine
}

// NewManager builds a manager over the registered game types and the
// persistence layer.
func NewManager(types map[string]GameType, games *repository.GameRepository, actions *repository.ActionRepository, cfg config.EngineConfig, log *zap.Logger) *Manager {
	for _, gt := range types {
		if gt.Definition.TieBreakerDepth == 0 {
			gt.Definition.TieBreakerDepth = cfg.TieBreakerDepth
		}
	}
	return &Manager{
		types:    types,
		games:    games,
		actions:  actions,
		cfg:      cfg,
		log:      log,
		runtimes: map[string]*runtime{},
	}
}

// CreateGame sets up and persists a new game of the given type.
func (m *Manager) CreateGame(ctx context.Context, typeID string, players []int) (*repository.StoredGame, error) {
	gt, ok := m.types[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameType, typeID)
	}
	setup := game.NewSetup(gt.Definition, players, m.engineOptions()...)
	if gt.Setup != nil {
		gt.Setup(setup)
	}
	state, err := json.Marshal(setup.Game())
	if err != nil {
		return nil, fmt.Errorf("marshal setup of new %s game: %w", typeID, err)
	}
	stored := &repository.StoredGame{
		ID:      uuid.NewString(),
		Name:    typeID,
		Players: append([]int(nil), players...),
		Setup:   state,
	}
	if err := m.games.Create(ctx, stored); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.runtimes[stored.ID] = &runtime{typeID: typeID, engine: setup.Engine()}
	m.mu.Unlock()

	m.log.Info("game created",
		zap.String("game_id", stored.ID),
		zap.String("game_type", typeID),
		zap.Ints("players", players),
	)
	return stored, nil
}

// Play checks the move against the player's legal moves, plays it, derives
// the per-recipient views and persists the stored action.
func (m *Manager) Play(ctx context.Context, gameID string, player int, mv material.Move) (*game.ActionWithViews, error) {
	rt, err := m.runtime(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if !rt.engine.IsLegalMove(player, mv) {
		return nil, ErrIllegalMove
	}
	result, err := rt.engine.PlayActionWithViews(mv, player)
	if err != nil {
		return nil, fmt.Errorf("play action in game %s: %w", gameID, err)
	}
	if err := m.actions.Insert(ctx, gameID, result.Action); err != nil {
		return nil, err
	}
	return result, nil
}

// Undo takes back one of the player's actions when the undo policy allows
// it, then rebuilds the state by replaying the remaining history.
func (m *Manager) Undo(ctx context.Context, gameID string, player int, actionID string) error {
	rt, err := m.runtime(ctx, gameID)
	if err != nil {
		return err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	history, err := m.actions.List(ctx, gameID)
	if err != nil {
		return err
	}
	target := -1
	for i, a := range history {
		if a.ID == actionID {
			target = i
			break
		}
	}
	if target < 0 || history[target].Player != player {
		return ErrCannotUndo
	}
	if !rt.engine.CanUndo(history[target], history[target+1:]) {
		return ErrCannotUndo
	}
	if err := m.actions.Delete(ctx, gameID, actionID); err != nil {
		return err
	}
	remaining := append(append([]*game.Action(nil), history[:target]...), history[target+1:]...)
	engine, err := m.rebuild(ctx, gameID, rt.typeID, remaining)
	if err != nil {
		return err
	}
	rt.engine = engine
	m.log.Info("action undone",
		zap.String("game_id", gameID),
		zap.String("action_id", actionID),
		zap.Int("player", player),
	)
	return nil
}

// View returns the state of a game as the viewer may see it.
func (m *Manager) View(ctx context.Context, gameID string, viewer *int) (*game.State, error) {
	rt, err := m.runtime(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.engine.GetView(viewer), nil
}

// Players returns the seats of a game.
func (m *Manager) Players(ctx context.Context, gameID string) ([]int, error) {
	rt, err := m.runtime(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]int(nil), rt.engine.Game().Players...), nil
}

// runtime returns the live runtime of a game, loading it from the store on
// first use.
func (m *Manager) runtime(ctx context.Context, gameID string) (*runtime, error) {
	m.mu.Lock()
	if rt, ok := m.runtimes[gameID]; ok {
		m.mu.Unlock()
		return rt, nil
	}
	m.mu.Unlock()

	stored, err := m.games.Get(ctx, gameID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}
	history, err := m.actions.List(ctx, gameID)
	if err != nil {
		return nil, err
	}
	engine, err := m.replay(stored, history)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.runtimes[gameID]; ok {
		// lost the race against another loader
		return rt, nil
	}
	rt := &runtime{typeID: stored.Name, engine: engine}
	m.runtimes[gameID] = rt
	return rt, nil
}

// rebuild replays a history onto the stored setup of a game.
func (m *Manager) rebuild(ctx context.Context, gameID, typeID string, history []*game.Action) (*game.Engine, error) {
	stored, err := m.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	stored.Name = typeID
	return m.replay(stored, history)
}

func (m *Manager) replay(stored *repository.StoredGame, history []*game.Action) (*game.Engine, error) {
	gt, ok := m.types[stored.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameType, stored.Name)
	}
	state := &game.State{}
	if err := json.Unmarshal(stored.Setup, state); err != nil {
		return nil, fmt.Errorf("unmarshal setup of game %s: %w", stored.ID, err)
	}
	engine := game.New(gt.Definition, state, m.engineOptions()...)
	engine.ReplayActions(history)
	return engine, nil
}

func (m *Manager) engineOptions() []game.Option {
	opts := []game.Option{game.WithLogger(m.log)}
	if m.cfg.ConsequenceFuse > 0 {
		opts = append(opts, game.WithFuse(m.cfg.ConsequenceFuse))
	}
	return opts
}
