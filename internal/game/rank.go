package game

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

const defaultTieBreakerDepth = 10

// RankPlayers compares two players for the final ranking: a negative
// result ranks a before b. Scores compare first, then the tie breakers
// depth by depth. A player with a score or tie breaker always ranks before
// one without.
func (e *Engine) RankPlayers(a, b int) float64 {
	if e.def.Score != nil {
		scoreA, okA := e.def.Score(e.game, a)
		scoreB, okB := e.def.Score(e.game, b)
		switch {
		case okA && okB && scoreA != scoreB:
			return float64(scoreB - scoreA)
		case okA && !okB:
			return math.Inf(-1)
		case okB && !okA:
			return math.Inf(1)
		}
	}
	if e.def.TieBreaker == nil {
		return 0
	}
	depth := e.def.TieBreakerDepth
	if depth == 0 {
		depth = defaultTieBreakerDepth
	}
	for d := 1; d <= depth; d++ {
		tieA, okA := e.def.TieBreaker(e.game, d, a)
		tieB, okB := e.def.TieBreaker(e.game, d, b)
		switch {
		case okA && okB:
			if tieA != tieB {
				return tieB - tieA
			}
		case okA:
			return math.Inf(-1)
		case okB:
			return math.Inf(1)
		default:
			return 0
		}
	}
	e.logError("tie breaker depth exhausted without settling the tie",
		zap.Int("depth", depth), zap.Int("playerA", a), zap.Int("playerB", b))
	return 0
}

// RankedPlayers returns the players ordered by final ranking, best first.
// Players that compare equal keep their seating order.
func (e *Engine) RankedPlayers() []int {
	ranked := append([]int(nil), e.game.Players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return e.RankPlayers(ranked[i], ranked[j]) < 0
	})
	return ranked
}
