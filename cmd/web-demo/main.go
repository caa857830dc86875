// Command web-demo serves registered game types over websocket without a
// database, for trying out a client against the rules engine. Games live in
// memory and vanish on restart.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gamepark/rules-server-go/internal/game"
	"github.com/gamepark/rules-server-go/internal/game/material"
	"github.com/gamepark/rules-server-go/internal/plugin"
	_ "github.com/gamepark/rules-server-go/internal/plugin/bestcard" // Import to register game types
	"github.com/gamepark/rules-server-go/internal/server"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for demo
	},
}

type demoGame struct {
	mu     sync.Mutex
	engine *game.Engine
}

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	player *int
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	games      map[string]*demoGame
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		games:      make(map[string]*demoGame),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) createGame(gameType string, players []int) (string, error) {
	gt, ok := plugin.Types()[gameType]
	if !ok {
		return "", server.ErrUnknownGameType
	}
	if len(players) == 0 {
		players = []int{1, 2}
	}
	setup := game.NewSetup(gt.Definition, players)
	if gt.Setup != nil {
		gt.Setup(setup)
	}
	id := uuid.NewString()
	h.mu.Lock()
	h.games[id] = &demoGame{engine: setup.Engine()}
	h.mu.Unlock()
	log.Printf("Game created: %s (%s, players %v)", id, gameType, players)
	return id, nil
}

func (h *Hub) game(id string) *demoGame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.games[id]
}

func (h *Hub) handleMessage(client *Client, msg server.ClientMessage) {
	switch msg.Type {
	case server.MsgCreate:
		id, err := h.createGame(msg.GameType, msg.Players)
		if err != nil {
			h.sendError(client, "unknown game type")
			return
		}
		h.reply(client, server.ServerMessage{Type: server.MsgGameCreated, GameID: id})

	case server.MsgJoin:
		g := h.game(msg.GameID)
		if g == nil {
			h.sendError(client, "game not found")
			return
		}
		client.gameID = msg.GameID
		client.player = msg.Player
		g.mu.Lock()
		view := g.engine.GetView(client.player)
		g.mu.Unlock()
		h.reply(client, server.ServerMessage{Type: server.MsgGameState, GameID: msg.GameID, State: view})

	case server.MsgPlay:
		g := h.game(client.gameID)
		if g == nil || client.player == nil {
			h.sendError(client, "join a game as a player first")
			return
		}
		mv, err := material.DecodeMove(msg.Move)
		if err != nil {
			h.sendError(client, "malformed move")
			return
		}
		g.mu.Lock()
		if !g.engine.IsLegalMove(*client.player, mv) {
			g.mu.Unlock()
			h.sendError(client, "illegal move")
			return
		}
		result, err := g.engine.PlayActionWithViews(mv, *client.player)
		g.mu.Unlock()
		if err != nil {
			h.sendError(client, "internal error")
			return
		}
		h.broadcastAction(client.gameID, result)

	case server.MsgSync:
		g := h.game(client.gameID)
		if g == nil {
			h.sendError(client, "join a game first")
			return
		}
		g.mu.Lock()
		view := g.engine.GetView(client.player)
		g.mu.Unlock()
		h.reply(client, server.ServerMessage{Type: server.MsgGameState, GameID: client.gameID, State: view})

	default:
		h.sendError(client, "unknown message type")
	}
}

func (h *Hub) broadcastAction(gameID string, result *game.ActionWithViews) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.gameID != gameID {
			continue
		}
		for i := range result.Views {
			if !sameRecipient(result.Views[i].Recipient, client.player) {
				continue
			}
			action := result.Views[i].Action
			h.reply(client, server.ServerMessage{Type: server.MsgGameAction, GameID: gameID, Action: &action})
			break
		}
	}
}

func (h *Hub) reply(client *Client, msg server.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) sendError(client *Client, message string) {
	h.reply(client, server.ServerMessage{Type: server.MsgError, Error: message})
}

func sameRecipient(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg server.ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		hub.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}

func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump(hub)
}

func main() {
	hub := newHub()
	go hub.run()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, w, r)
	})

	log.Println("🚀 Demo server starting on :8080")
	log.Println("📡 WebSocket endpoint: ws://localhost:8080/ws")
	for name := range plugin.Types() {
		log.Printf("🎮 Game type available: %s", name)
	}

	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
