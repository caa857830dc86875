// Package plugin holds the registry of game types the server can host.
// Game implementations register themselves from an init function, the
// entrypoint imports them for the side effect.
package plugin

import (
	"fmt"

	"github.com/gamepark/rules-server-go/internal/server"
)

var registry = map[string]server.GameType{}

// Register adds a game type under a unique name. It panics on duplicates,
// registration happens at init time.
func Register(name string, gt server.GameType) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("plugin: game type %q registered twice", name))
	}
	registry[name] = gt
}

// Types returns the registered game types.
func Types() map[string]server.GameType {
	out := make(map[string]server.GameType, len(registry))
	for name, gt := range registry {
		out[name] = gt
	}
	return out
}
