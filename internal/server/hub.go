package server

import (
	"encoding/json"
	"sync"

	"github.com/gelaws-hub/board-game/internal/database"
	"github.com/gelaws-hub/board-game/internal/events"
	"github.com/gelaws-hub/board-game/internal/game"
	"github.com/gelaws-hub/board-game/internal/protocol"
	"github.com/gelaws-hub/board-game/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// clientMessage pairs an incoming message with the connection it came from.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

// Hub owns every WebSocket connection, maps player identities onto them and
// dispatches client messages to the registry. All state changes fan out as
// one personalized view per bound player.
type Hub struct {
	registry *game.Registry
	conns    *PlayerConnections
	results  *database.Service
	events   *events.Publisher
	log      *zap.SugaredLogger

	clientMu   sync.RWMutex
	clients    map[string]*Client // connection ID -> client
	clientGame map[string]string  // connection ID -> game ID, for disconnect cleanup

	register       chan *Client
	unregister     chan *Client
	processMessage chan clientMessage
}

// NewHub creates a hub. results and publisher may be nil-behaving (a closed
// database or a disabled publisher); gameplay never depends on them.
func NewHub(registry *game.Registry, results *database.Service, publisher *events.Publisher, log *zap.SugaredLogger) *Hub {
	return &Hub{
		registry:       registry,
		conns:          NewPlayerConnections(),
		results:        results,
		events:         publisher,
		log:            log,
		clients:        make(map[string]*Client),
		clientGame:     make(map[string]string),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		processMessage: make(chan clientMessage),
	}
}

// Connections exposes the player-connection mapping, used by tests and the
// REST layer to check reachability.
func (h *Hub) Connections() *PlayerConnections {
	return h.conns
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientMu.Lock()
			h.clients[client.ID] = client
			h.clientMu.Unlock()
			h.log.Infow("client connected", "conn_id", client.ID)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case clientMsg := <-h.processMessage:
			h.handleMessage(clientMsg.client, clientMsg.message)
		}
	}
}

func (h *Hub) handleDisconnect(client *Client) {
	h.clientMu.Lock()
	_, known := h.clients[client.ID]
	gameID := h.clientGame[client.ID]
	if known {
		delete(h.clients, client.ID)
		delete(h.clientGame, client.ID)
		close(client.send)
	}
	h.clientMu.Unlock()
	if !known {
		return
	}

	h.log.Infow("client disconnected", "conn_id", client.ID)

	playerID, bound := h.conns.Unbind(client.ID)
	if !bound || gameID == "" {
		return
	}

	// The seat stays in the game; the player is simply unreachable until
	// they reconnect.
	if err := h.registry.SetPlayerConnectedByID(gameID, playerID, false); err != nil {
		return
	}
	h.sendViews(gameID)
}

// handleMessage dispatches one client message.
func (h *Hub) handleMessage(client *Client, msg protocol.Message) {
	switch msg.Type {
	case "create_game":
		h.handleCreateGame(client, msg)
	case "join_game":
		h.handleJoinGame(client, msg)
	case "player_ready":
		h.handlePlayerReady(client, msg)
	case "start_game":
		h.handleStartGame(client, msg)
	case "play_card":
		h.handlePlayCard(client, msg)
	case "draw_card":
		h.handleDrawCard(client, msg)
	case "end_turn":
		h.handleEndTurn(client, msg)
	case "reconnect":
		h.handleReconnect(client, msg)
	case "list_games":
		h.BroadcastGameList()
	case "ping":
		pongMsg, _ := protocol.NewMessage("pong", nil)
		h.sendToConn(client.ID, pongMsg)
	default:
		h.log.Warnw("unknown message type", "type", msg.Type, "conn_id", client.ID)
		h.sendError(client.ID, "Unknown message type.")
	}
}

func (h *Hub) handleCreateGame(client *Client, msg protocol.Message) {
	var payload protocol.CreateGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid create_game message.")
		return
	}
	if payload.Username == "" || payload.GameName == "" {
		h.sendError(client.ID, "Username and game name are required.")
		return
	}

	user := shared.User{ID: uuid.NewString(), Username: payload.Username}
	g := h.registry.CreateGame(user, payload.GameName)

	h.bindToGame(client, g.Leader.ID, g.ID)

	created, _ := protocol.NewMessage("game_created", protocol.GameCreatedPayload{
		GameID:   g.ID,
		GameName: g.Name,
		PlayerID: g.Leader.ID,
	})
	h.sendToConn(client.ID, created)

	h.events.Publish(events.GameCreated, map[string]string{
		"game_id": g.ID, "name": g.Name, "leader": payload.Username,
	})
	h.BroadcastGameList()
	h.sendViews(g.ID)
}

func (h *Hub) handleJoinGame(client *Client, msg protocol.Message) {
	var payload protocol.JoinGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid join_game message.")
		return
	}
	if payload.Username == "" {
		h.sendError(client.ID, "Username is required.")
		return
	}

	user := shared.User{ID: uuid.NewString(), Username: payload.Username}
	player, err := h.registry.AddPlayerToGame(payload.GameID, user)
	if err != nil {
		h.sendError(client.ID, err.Error())
		return
	}

	h.bindToGame(client, player.ID, payload.GameID)

	joined, _ := protocol.NewMessage("player_joined", protocol.PlayerJoinedPayload{
		GameID:   payload.GameID,
		PlayerID: player.ID,
		Username: player.User.Username,
	})
	h.sendToGame(payload.GameID, joined)

	h.BroadcastGameList()
	h.sendViews(payload.GameID)
}

func (h *Hub) handlePlayerReady(client *Client, msg protocol.Message) {
	var payload protocol.PlayerReadyPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid player_ready message.")
		return
	}

	allReady, err := h.registry.SetPlayerReady(payload.GameID, payload.Username)
	if err != nil {
		h.sendError(client.ID, err.Error())
		return
	}

	ready, _ := protocol.NewMessage("player_ready", protocol.PlayerReadyInfoPayload{
		GameID:   payload.GameID,
		Username: payload.Username,
	})
	h.sendToGame(payload.GameID, ready)

	if allReady {
		allMsg, _ := protocol.NewMessage("all_players_ready", protocol.AllPlayersReadyPayload{
			GameID: payload.GameID,
		})
		h.sendToGame(payload.GameID, allMsg)
	}
	h.sendViews(payload.GameID)
}

func (h *Hub) handleStartGame(client *Client, msg protocol.Message) {
	var payload protocol.StartGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid start_game message.")
		return
	}

	if err := h.registry.StartGame(payload.GameID, payload.Username, payload.InitialCards); err != nil {
		h.sendError(client.ID, err.Error())
		return
	}

	h.events.Publish(events.GameStarted, map[string]string{"game_id": payload.GameID})
	h.BroadcastGameList()
	h.sendViews(payload.GameID)
}

func (h *Hub) handlePlayCard(client *Client, msg protocol.Message) {
	var payload protocol.PlayCardPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid play_card message.")
		return
	}
	if !shared.ValidSuit(payload.Suit) || !shared.ValidRank(payload.Rank) {
		h.sendError(client.ID, "Unknown card.")
		return
	}

	card := shared.Card{Suit: payload.Suit, Rank: payload.Rank}
	finished, err := h.registry.PlayCard(payload.GameID, payload.Username, card)
	if err != nil {
		h.sendError(client.ID, err.Error())
		return
	}

	h.sendViews(payload.GameID)

	if finished {
		h.recordResult(payload.GameID)
		h.BroadcastGameList()
	}
}

func (h *Hub) handleDrawCard(client *Client, msg protocol.Message) {
	var payload protocol.DrawCardPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid draw_card message.")
		return
	}

	card, err := h.registry.DrawCard(payload.GameID, payload.Username)
	if err != nil {
		h.sendError(client.ID, err.Error())
		return
	}

	// The drawn card is private; everyone else just sees the hand count
	// change in their next view.
	if playerID, ok := h.conns.LookupPlayer(client.ID); ok {
		drawn, _ := protocol.NewMessage("card_drawn", protocol.CardDrawnPayload{
			PlayerID: playerID,
			Card:     *card,
		})
		h.sendToConn(client.ID, drawn)
	}
	h.sendViews(payload.GameID)
}

func (h *Hub) handleEndTurn(client *Client, msg protocol.Message) {
	var payload protocol.EndTurnPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid end_turn message.")
		return
	}

	if err := h.registry.EndTurn(payload.GameID, payload.Username); err != nil {
		h.sendError(client.ID, err.Error())
		return
	}
	h.sendViews(payload.GameID)
}

// handleReconnect rebinds an existing seat to a fresh connection and replays
// nothing: the full current view is authoritative.
func (h *Hub) handleReconnect(client *Client, msg protocol.Message) {
	var payload protocol.ReconnectPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(client.ID, "Invalid reconnect message.")
		return
	}

	player, err := h.registry.SetPlayerConnected(payload.GameID, payload.Username, true)
	if err != nil {
		h.sendError(client.ID, err.Error())
		return
	}

	h.bindToGame(client, player.ID, payload.GameID)

	view, err := h.registry.BuildViewFor(payload.GameID, payload.Username)
	if err != nil {
		h.sendError(client.ID, err.Error())
		return
	}
	viewMsg, _ := protocol.NewMessage("personal_game_view", view.Payload)
	h.sendToConn(client.ID, viewMsg)

	h.log.Infow("player reconnected", "game_id", payload.GameID, "username", payload.Username)
	h.sendViews(payload.GameID)
}

// ExpireGame removes an idle game: deletes it from the registry, releases
// the connection bindings of its seats and refreshes the lobby listing.
// Called from the reaper.
func (h *Hub) ExpireGame(gameID string) {
	playerIDs, _ := h.registry.PlayerIDs(gameID)
	if !h.registry.DeleteGame(gameID) {
		return
	}

	notice, _ := protocol.NewMessage("error", protocol.ErrorPayload{
		Message: "Game expired due to inactivity.",
	})
	for _, playerID := range playerIDs {
		connID, ok := h.conns.Lookup(playerID)
		if !ok {
			continue
		}
		h.sendToConn(connID, notice)
		h.conns.Unbind(connID)
		h.clientMu.Lock()
		delete(h.clientGame, connID)
		h.clientMu.Unlock()
	}

	h.events.Publish(events.GameExpired, map[string]string{"game_id": gameID})
	h.BroadcastGameList()
}

// BroadcastGameList pushes the lobby listing to every connected client.
func (h *Hub) BroadcastGameList() {
	msg, err := protocol.NewMessage("available_games", protocol.AvailableGamesPayload{
		Games: h.registry.GameSummaries(),
	})
	if err != nil {
		h.log.Errorw("building game list", "error", err)
		return
	}

	h.clientMu.RLock()
	targets := make([]string, 0, len(h.clients))
	for connID := range h.clients {
		targets = append(targets, connID)
	}
	h.clientMu.RUnlock()

	for _, connID := range targets {
		h.sendToConn(connID, msg)
	}
}

// --- plumbing ---

// bindToGame associates the connection with a seat and a table.
func (h *Hub) bindToGame(client *Client, playerID, gameID string) {
	h.conns.Bind(playerID, client.ID)
	h.clientMu.Lock()
	h.clientGame[client.ID] = gameID
	h.clientMu.Unlock()
}

// sendViews fans one personalized view out to every seat with a live
// connection. Seats without one are silently skipped.
func (h *Hub) sendViews(gameID string) {
	views, err := h.registry.BuildViews(gameID)
	if err != nil {
		return
	}
	for _, view := range views {
		connID, ok := h.conns.Lookup(view.PlayerID)
		if !ok {
			continue
		}
		msg, err := protocol.NewMessage("personal_game_view", view.Payload)
		if err != nil {
			h.log.Errorw("building view", "game_id", gameID, "error", err)
			continue
		}
		h.sendToConn(connID, msg)
	}
}

// sendToGame delivers one message to every seat of a game with a live
// connection.
func (h *Hub) sendToGame(gameID string, message []byte) {
	playerIDs, err := h.registry.PlayerIDs(gameID)
	if err != nil {
		return
	}
	for _, playerID := range playerIDs {
		if connID, ok := h.conns.Lookup(playerID); ok {
			h.sendToConn(connID, message)
		}
	}
}

// sendToConn delivers a message without ever blocking the caller: a full
// channel marks the connection dead and schedules its cleanup. The read lock
// is held across the send; handleDisconnect closes the channel under the
// write lock, so a send can never race the close. Callers run on the hub,
// reaper and HTTP handler goroutines alike.
func (h *Hub) sendToConn(connID string, message []byte) {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}

	select {
	case client.send <- message:
	default:
		h.log.Warnw("send channel saturated, dropping client", "conn_id", connID)
		go func() {
			h.clientMu.RLock()
			_, still := h.clients[connID]
			h.clientMu.RUnlock()
			if still {
				h.unregister <- client
			}
		}()
	}
}

func (h *Hub) sendError(connID, message string) {
	msg, err := protocol.NewMessage("error", protocol.ErrorPayload{Message: message})
	if err != nil {
		h.log.Errorw("building error message", "error", err)
		return
	}
	h.sendToConn(connID, msg)
}

// recordResult writes the finished game to the results store, when one is
// configured. Failures never affect gameplay.
func (h *Hub) recordResult(gameID string) {
	result, ok := h.registry.FinishedResult(gameID)
	if !ok {
		return
	}
	h.events.Publish(events.GameFinished, map[string]string{
		"game_id": result.GameID, "winner": result.Winner,
	})
	if h.results == nil {
		return
	}
	if err := h.results.Insert(database.NewGameResult(result.GameID, result.GameName, result.Winner, result.Players)); err != nil {
		h.log.Errorw("recording game result", "game_id", gameID, "error", err)
	}
}
