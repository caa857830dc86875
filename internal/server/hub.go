package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gamepark/rules-server-go/internal/config"
	"github.com/gamepark/rules-server-go/internal/game"
	"github.com/gamepark/rules-server-go/internal/game/material"
)

// Client is one websocket connection. A client watches at most one game, as
// a seated player or as a spectator when player is nil.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	player *int
}

// Hub tracks the connected clients and fans the per-recipient action views
// out to them.
type Hub struct {
	cfg     config.ServerConfig
	manager *Manager
	log     *zap.Logger

	upgrader websocket.Upgrader

	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub builds a hub over the game manager.
func NewHub(cfg config.ServerConfig, manager *Manager, log *zap.Logger) *Hub {
	allowed := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		if origin != "" {
			allowed[origin] = true
		}
	}
	return &Hub{
		cfg:     cfg,
		manager: manager,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run owns the client set until the context ends.
func (h *Hub) Run(ctx context.Context) {
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

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) readPump(client *Client) {
	defer func() {
		h.unregister <- client
		client.conn.Close()
	}()
	client.conn.SetReadLimit(h.cfg.MaxMessageBytes)
	client.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(client, "", "malformed message")
			continue
		}
		h.handleMessage(client, msg)
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()
	for {
		select {
		case data, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) handleMessage(client *Client, msg ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.WriteTimeout)
	defer cancel()

	switch msg.Type {
	case MsgCreate:
		stored, err := h.manager.CreateGame(ctx, msg.GameType, msg.Players)
		if err != nil {
			h.sendError(client, "", err.Error())
			return
		}
		h.reply(client, ServerMessage{Type: MsgGameCreated, GameID: stored.ID})

	case MsgJoin:
		view, err := h.manager.View(ctx, msg.GameID, msg.Player)
		if err != nil {
			h.sendError(client, msg.GameID, err.Error())
			return
		}
		client.gameID = msg.GameID
		client.player = msg.Player
		h.reply(client, ServerMessage{Type: MsgGameState, GameID: msg.GameID, State: view})

	case MsgPlay:
		if client.gameID == "" || client.player == nil {
			h.sendError(client, "", "join a game as a player first")
			return
		}
		mv, err := material.DecodeMove(msg.Move)
		if err != nil {
			h.sendError(client, client.gameID, "malformed move")
			return
		}
		result, err := h.manager.Play(ctx, client.gameID, *client.player, mv)
		if err != nil {
			h.sendError(client, client.gameID, playErrorMessage(err))
			return
		}
		h.broadcastAction(client.gameID, result)

	case MsgUndo:
		if client.gameID == "" || client.player == nil {
			h.sendError(client, "", "join a game as a player first")
			return
		}
		if err := h.manager.Undo(ctx, client.gameID, *client.player, msg.ActionID); err != nil {
			h.sendError(client, client.gameID, playErrorMessage(err))
			return
		}
		h.broadcastState(ctx, client.gameID)

	case MsgSync:
		if client.gameID == "" {
			h.sendError(client, "", "join a game first")
			return
		}
		view, err := h.manager.View(ctx, client.gameID, client.player)
		if err != nil {
			h.sendError(client, client.gameID, err.Error())
			return
		}
		h.reply(client, ServerMessage{Type: MsgGameState, GameID: client.gameID, State: view})

	default:
		h.sendError(client, "", "unknown message type")
	}
}

// broadcastAction delivers to every client of the game the action view of
// its recipient.
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
			h.reply(client, ServerMessage{Type: MsgGameAction, GameID: gameID, Action: &action})
			break
		}
	}
}

// broadcastState resends each client of the game its fresh state view, the
// undo path uses it after the history changed.
func (h *Hub) broadcastState(ctx context.Context, gameID string) {
	h.mu.RLock()
	clients := make([]*Client, 0)
	for client := range h.clients {
		if client.gameID == gameID {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		view, err := h.manager.View(ctx, gameID, client.player)
		if err != nil {
			h.sendError(client, gameID, err.Error())
			continue
		}
		h.reply(client, ServerMessage{Type: MsgGameState, GameID: gameID, State: view})
	}
}

func (h *Hub) reply(client *Client, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal server message", zap.Error(err))
		return
	}
	select {
	case client.send <- data:
	default:
		// slow client, drop the message rather than block the game
		h.log.Warn("client send buffer full", zap.String("game_id", client.gameID))
	}
}

func (h *Hub) sendError(client *Client, gameID, message string) {
	h.reply(client, ServerMessage{Type: MsgError, GameID: gameID, Error: message})
}

func sameRecipient(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// playErrorMessage keeps internal details out of client-facing errors.
func playErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrIllegalMove):
		return "illegal move"
	case errors.Is(err, ErrCannotUndo):
		return "action can no longer be undone"
	case errors.Is(err, ErrGameNotFound):
		return "game not found"
	case errors.Is(err, ErrUnknownGameType):
		return "unknown game type"
	default:
		return "internal error"
	}
}
