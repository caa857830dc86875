package game

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gamepark/rules-server-go/internal/game/material"
)

// HidingStrategy returns the item field paths hidden from the viewer. A nil
// viewer is a spectator. Strategies of games without secret per-player
// information ignore the viewer.
type HidingStrategy func(item material.Item, viewer *int) []string

// Definition wires one game into the engine: its rule parts, its location
// strategies, its hidden information and the optional capabilities the
// engine consults when present.
type Definition struct {
	// Parts maps rule identifiers to their behavior.
	Parts map[int]RulePart
	// Strategies maps item types to their per-location-type strategy.
	Strategies map[int]map[int]material.LocationStrategy
	// Hiding maps item types to their per-location-type hiding strategy.
	// An item type with no entry is fully visible and may merge.
	Hiding map[int]map[int]HidingStrategy
	// CanMerge overrides the default merge rule (mergeable unless hidden).
	CanMerge func(itemType int) bool
	// BeforeItemMove and AfterItemMove run around every item move, before
	// the rule part hooks.
	BeforeItemMove func(g *State, mv material.Move) []material.Move
	AfterItemMove  func(g *State, mv material.Move) []material.Move
	// OnCustomMove handles custom moves before the rule part does.
	OnCustomMove func(g *State, mv material.CustomMove) []material.Move
	// Roll draws the rotation of a rolled item. Defaults to a six-sided
	// die.
	Roll func(mv material.RollItem) any
	// Score and TieBreaker feed the competitive ranking. TieBreakerDepth
	// bounds the tie breaking recursion, ten levels when zero.
	Score           func(g *State, player int) (int, bool)
	TieBreaker      func(g *State, depth int, player int) (float64, bool)
	TieBreakerDepth int
}

// ItemsCanMerge reports whether identical items of the type collapse into a
// single slot with a quantity.
func (d *Definition) ItemsCanMerge(itemType int) bool {
	if d.CanMerge != nil {
		return d.CanMerge(itemType)
	}
	return len(d.Hiding[itemType]) == 0
}

// DefaultFuse bounds the consequence chain of a single submitted move.
const DefaultFuse = 1000

// Engine plays moves onto one game state.
type Engine struct {
	def  *Definition
	game *State
	log  *zap.Logger
	fuse int
	rand *rand.Rand
	// client is set on engines replaying a per-player view instead of the
	// full state.
	client bool
	viewer *int
}

// Option configures an engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithFuse bounds the consequence chain of one submitted move.
func WithFuse(fuse int) Option {
	return func(e *Engine) { e.fuse = fuse }
}

// WithRand sets the randomness source, tests inject a seeded one.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithClientView marks the engine as replaying the view of the given
// viewer (nil for a spectator) rather than the full state.
func WithClientView(viewer *int) Option {
	return func(e *Engine) {
		e.client = true
		e.viewer = viewer
	}
}

// New builds an engine over the given state.
func New(def *Definition, g *State, opts ...Option) *Engine {
	e := &Engine{def: def, game: g, fuse: DefaultFuse}
	for _, opt := range opts {
		opt(e)
	}
	if e.rand == nil {
		e.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// Game returns the state the engine plays on.
func (e *Engine) Game() *State { return e.game }

// IsOver reports whether the game has ended.
func (e *Engine) IsOver() bool { return e.game.Rule == nil }

// GetActivePlayers lists the players that may act right now.
func (e *Engine) GetActivePlayers() []int {
	rule := e.game.Rule
	if rule == nil {
		return nil
	}
	if rule.Player != nil {
		return []int{*rule.Player}
	}
	return append([]int(nil), rule.Players...)
}

// IsTurnToPlay reports whether the player may act in the current step.
func (e *Engine) IsTurnToPlay(player int) bool {
	p := e.part()
	if p == nil {
		return false
	}
	return p.IsTurnToPlay(e.game, player)
}

// GetLegalMoves lists the moves the player may submit right now.
func (e *Engine) GetLegalMoves(player int) []material.Move {
	p := e.part()
	if p == nil {
		return nil
	}
	return p.GetLegalMoves(e.game, player)
}

// IsLegalMove reports whether the player may submit the move right now.
// Moves compare through their wire form, a move decoded from a client
// matches the same move built by the rules.
func (e *Engine) IsLegalMove(player int, mv material.Move) bool {
	if !e.IsTurnToPlay(player) {
		return false
	}
	for _, legal := range e.GetLegalMoves(player) {
		if material.JSONEqual(legal, mv) {
			return true
		}
	}
	return false
}

// Material returns a view over the live items of one type.
func (e *Engine) Material(itemType int) material.Material {
	return material.FromItems(itemType, e.game.Items[itemType])
}

// Play applies one move to the state and returns its direct consequences.
// The consequences are not played, ApplyConsequences drains them.
func (e *Engine) Play(mv material.Move, actor *int) []material.Move {
	var consequences []material.Move
	switch mv.Kind() {
	case material.MoveKindItem:
		consequences = e.playItemMove(mv, actor)
	case material.MoveKindRule:
		consequences = e.playRuleMove(mv)
	case material.MoveKindCustom:
		consequences = e.playCustomMove(mv.(material.CustomMove))
	default:
		e.logError("unsupported move kind", zap.Int("kind", int(mv.Kind())))
	}
	// nothing happens after the end of the game
	for i, c := range consequences {
		if _, over := c.(material.EndGame); over {
			return consequences[:i+1]
		}
	}
	return consequences
}

func (e *Engine) playItemMove(mv material.Move, actor *int) []material.Move {
	itemType, ok := material.ItemTypeOf(mv)
	if !ok {
		e.logError("item move without item type", zap.Any("move", mv))
		return nil
	}
	var consequences []material.Move
	if e.def.BeforeItemMove != nil {
		consequences = append(consequences, e.def.BeforeItemMove(e.game, mv)...)
	}
	if p := e.part(); p != nil {
		consequences = append(consequences, p.BeforeItemMove(e.game, mv)...)
	}
	mutator := e.Mutator(itemType, actor)
	mutator.Apply(mv)
	e.game.Items[itemType] = mutator.Items()
	if e.client {
		// fields that just moved out of the viewer's sight disappear from
		// the view, the way a revealed card shuffled back becomes unknown
		e.concealItems(itemType)
	}
	if e.def.AfterItemMove != nil {
		consequences = append(consequences, e.def.AfterItemMove(e.game, mv)...)
	}
	if p := e.part(); p != nil {
		consequences = append(consequences, p.AfterItemMove(e.game, mv)...)
	}
	return consequences
}

// Mutator builds a fresh mutator for one item type, carrying the
// simultaneous phase slot allocation of the acting player when one is
// open.
func (e *Engine) Mutator(itemType int, actor *int) *material.Mutator {
	if e.game.Items == nil {
		e.game.Items = map[int][]material.Item{}
	}
	return material.NewMutator(
		itemType,
		e.game.Items[itemType],
		e.def.Strategies[itemType],
		e.def.ItemsCanMerge(itemType),
		e.simultaneousContext(itemType, actor),
		e.log,
	)
}

func (e *Engine) simultaneousContext(itemType int, actor *int) *material.SimultaneousContext {
	if actor == nil || e.game.Rule == nil || e.game.Rule.Interleaving == nil {
		return nil
	}
	inter := e.game.Rule.Interleaving
	rank := -1
	for i, p := range inter.Players {
		if p == *actor {
			rank = i
			break
		}
	}
	if rank < 0 {
		return nil
	}
	available, frozen := inter.AvailableIndexes[itemType]
	if !frozen {
		// the item type did not exist when the phase started
		available = []int{0}
	}
	return &material.SimultaneousContext{
		AvailableIndexes: available,
		PlayerRank:       rank,
		PlayerCount:      len(inter.Players),
	}
}

func (e *Engine) playRuleMove(mv material.Move) []material.Move {
	if end, ok := mv.(material.EndPlayerTurn); ok {
		return e.endPlayerTurn(end.Player)
	}
	return e.changeRule(mv)
}

func (e *Engine) endPlayerTurn(player int) []material.Move {
	rule := e.game.Rule
	if rule == nil || !containsInt(rule.Players, player) {
		e.logWarn("player turn ended for an inactive player", zap.Int("player", player))
		return nil
	}
	rule.Players = removeInt(rule.Players, player)
	part, simultaneous := e.part().(SimultaneousPart)
	var consequences []material.Move
	if simultaneous {
		consequences = append(consequences, part.OnPlayerTurnEnd(e.game, player)...)
	}
	if len(rule.Players) == 0 && simultaneous {
		consequences = append(consequences, part.MovesAfterPlayersDone(e.game)...)
	}
	return consequences
}

func (e *Engine) changeRule(mv material.Move) []material.Move {
	var consequences []material.Move
	if p := e.part(); p != nil {
		consequences = append(consequences, p.OnRuleEnd(e.game, mv)...)
	}
	previous := e.game.Rule
	switch move := mv.(type) {
	case material.StartPlayerTurn:
		step := &RuleStep{ID: move.RuleID}
		if move.Player != nil {
			p := *move.Player
			step.Player = &p
		}
		e.game.Rule = step
	case material.StartSimultaneousRule:
		players := move.Players
		if players == nil {
			players = e.game.Players
		}
		players = append([]int(nil), players...)
		e.game.Rule = &RuleStep{
			ID:           move.RuleID,
			Players:      players,
			Interleaving: e.freezeInterleaving(players),
		}
	case material.StartRule:
		step := &RuleStep{ID: move.RuleID}
		if previous != nil && previous.Player != nil {
			p := *previous.Player
			step.Player = &p
		}
		e.game.Rule = step
	case material.EndGame:
		e.game.Rule = nil
	default:
		e.logError("unsupported rule move", zap.Any("move", mv))
		return consequences
	}
	if p := e.part(); p != nil {
		consequences = append(consequences, p.OnRuleStart(e.game, mv, previous)...)
	}
	return consequences
}

// freezeInterleaving captures the slot allocation record of a starting
// simultaneous phase: the participants sorted ascending and, per item
// type, the tombstone indexes in ascending order followed by the array
// length.
func (e *Engine) freezeInterleaving(players []int) *Interleaving {
	sorted := append([]int(nil), players...)
	sort.Ints(sorted)
	available := make(map[int][]int, len(e.game.Items))
	for itemType, items := range e.game.Items {
		indexes := make([]int, 0, 1)
		for i := range items {
			if items[i].IsTombstone() {
				indexes = append(indexes, i)
			}
		}
		available[itemType] = append(indexes, len(items))
	}
	return &Interleaving{Players: sorted, AvailableIndexes: available}
}

func (e *Engine) playCustomMove(mv material.CustomMove) []material.Move {
	var consequences []material.Move
	if e.def.OnCustomMove != nil {
		consequences = append(consequences, e.def.OnCustomMove(e.game, mv)...)
	}
	if p := e.part(); p != nil {
		consequences = append(consequences, p.OnCustomMove(e.game, mv)...)
	}
	return consequences
}

// automaticMoves asks the current rule part what to play next when the
// consequence queue runs dry. A simultaneous phase with every player done
// yields its closing moves instead.
func (e *Engine) automaticMoves() []material.Move {
	p := e.part()
	if p == nil {
		return nil
	}
	if sp, ok := p.(SimultaneousPart); ok {
		if len(e.game.Rule.Players) == 0 {
			return sp.MovesAfterPlayersDone(e.game)
		}
		return p.GetAutomaticMoves(e.game)
	}
	return p.GetAutomaticMoves(e.game)
}

// ApplyConsequences drains a move queue: each move is randomized, handed to
// record, played, and its own consequences are pushed to the front of the
// queue. When the queue runs dry the current rule part may feed more
// automatic moves. The fuse aborts chains that never settle.
func (e *Engine) ApplyConsequences(queue []material.Move, record func(material.Move), actor *int) error {
	remaining := e.fuse
	for {
		if len(queue) == 0 {
			queue = e.automaticMoves()
			if len(queue) == 0 {
				return nil
			}
		}
		mv := queue[0]
		queue = queue[1:]
		mv = e.Randomize(mv, actor)
		if record != nil {
			record(mv)
		}
		consequences := e.Play(mv.Clone(), actor)
		if len(consequences) > 0 {
			queue = append(append([]material.Move(nil), consequences...), queue...)
		}
		if remaining == 0 {
			err := &RuntimeLoopError{Fuse: e.fuse}
			e.logError("consequence chain aborted", zap.Error(err))
			return err
		}
		remaining--
	}
}

func (e *Engine) part() RulePart {
	if e.game.Rule == nil {
		return nil
	}
	p, ok := e.def.Parts[e.game.Rule.ID]
	if !ok {
		e.logError("rule part missing", zap.Error(&ConfigurationError{RuleID: e.game.Rule.ID}))
		return nil
	}
	return p
}

func (e *Engine) logWarn(msg string, fields ...zap.Field) {
	if e.log != nil {
		e.log.Warn(msg, fields...)
	}
}

func (e *Engine) logError(msg string, fields ...zap.Field) {
	if e.log != nil {
		e.log.Error(msg, fields...)
	}
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func removeInt(list []int, v int) []int {
	out := make([]int, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
