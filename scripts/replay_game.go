// Command replay_game rebuilds a stored game from its action history and
// prints the resulting state, a debugging aid for reported games.
//
// Usage: go run scripts/replay_game.go <game-id> [database-url]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamepark/rules-server-go/internal/game"
	"github.com/gamepark/rules-server-go/internal/game/material"
	"github.com/gamepark/rules-server-go/internal/plugin"
	_ "github.com/gamepark/rules-server-go/internal/plugin/bestcard" // Import to register game types
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <game-id> [database-url]", os.Args[0])
	}
	gameID := os.Args[1]

	dbURL := "postgres://localhost:5432/rules?sslmode=disable"
	if len(os.Args) > 2 {
		dbURL = os.Args[2]
	} else if env := os.Getenv("DATABASE_URL"); env != "" {
		dbURL = env
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	var (
		name    string
		setup   []byte
		created time.Time
	)
	err = pool.QueryRow(ctx,
		"SELECT name, setup, created_at FROM games WHERE id = $1", gameID).
		Scan(&name, &setup, &created)
	if err != nil {
		log.Fatalf("Failed to load game %s: %v", gameID, err)
	}

	gt, ok := plugin.Types()[name]
	if !ok {
		log.Fatalf("Game type %q is not registered", name)
	}

	state := &game.State{}
	if err := json.Unmarshal(setup, state); err != nil {
		log.Fatalf("Failed to decode setup: %v", err)
	}
	engine := game.New(gt.Definition, state)

	fmt.Println("=== Game Replay ===")
	fmt.Printf("Game:    %s (%s)\n", gameID, name)
	fmt.Printf("Created: %s\n", created.Format(time.RFC3339))

	rows, err := pool.Query(ctx,
		"SELECT payload FROM actions WHERE game_id = $1 ORDER BY position", gameID)
	if err != nil {
		log.Fatalf("Failed to load actions: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			log.Fatalf("Failed to scan action: %v", err)
		}
		action := &game.Action{}
		if err := json.Unmarshal(payload, action); err != nil {
			log.Fatalf("Failed to decode action %d: %v", count+1, err)
		}
		engine.ReplayAction(action)
		count++
		fmt.Printf("  %3d. player %d: %s (+%d consequences)\n",
			count, action.Player, moveSummary(action.Move), len(action.Consequences))
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to iterate actions: %v", err)
	}

	fmt.Printf("Replayed %d actions\n", count)
	if engine.IsOver() {
		fmt.Printf("Game over, ranking: %v\n", engine.RankedPlayers())
	} else {
		fmt.Printf("Active players: %v\n", engine.GetActivePlayers())
	}

	dump, err := json.MarshalIndent(engine.Game(), "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode state: %v", err)
	}
	fmt.Println(string(dump))
}

func moveSummary(mv material.Move) string {
	data, err := json.Marshal(mv)
	if err != nil {
		return "?"
	}
	return string(data)
}
