package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client represents a websocket connection with its server-assigned ID
type Client struct {
	conn     *websocket.Conn
	clientID string
	writeMu  sync.Mutex // Serialize writes to WebSocket (required by gorilla/websocket)
}

// Hub owns all websocket connections and the per-game rooms used for
// session broadcasts. It implements Emitter for the orchestrator.
type Hub struct {
	clients    map[string]*Client            // clientID -> connection
	rooms      map[string]map[string]*Client // gameID -> clientID -> connection
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
	wg         sync.WaitGroup

	orch *Orchestrator // set after construction, before run()
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// stop signals the hub goroutine to exit and waits for it to finish
func (h *Hub) stop() {
	close(h.done)
	h.wg.Wait()
}

var hub = newHub()

func (h *Hub) run() {
	h.wg.Add(1)
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.clientID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected (%s). Total: %d", client.clientID, total)
			h.send(client, EvWelcome, welcomePayload{PlayerID: client.clientID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.clientID]; ok {
				delete(h.clients, client.clientID)
				for _, room := range h.rooms {
					delete(room, client.clientID)
				}
				client.conn.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected (%s). Total: %d", client.clientID, total)
			// Run the implicit leave outside the hub lock: it broadcasts,
			// which needs the read lock.
			h.orch.Disconnect(client.clientID)
		}
	}
}

func encodeServerMessage(event string, data any) []byte {
	raw, err := json.Marshal(ServerMessage{Event: event, Data: data})
	if err != nil {
		logError("encodeServerMessage: marshal "+event, err)
		return nil
	}
	return raw
}

func (h *Hub) send(client *Client, event string, data any) {
	raw := encodeServerMessage(event, data)
	if raw == nil {
		return
	}
	LogWSMessage("OUT", client.clientID, string(raw))

	client.writeMu.Lock()
	err := client.conn.WriteMessage(websocket.TextMessage, raw)
	client.writeMu.Unlock()

	if err != nil {
		log.Printf("WebSocket write error to client %s: %v", client.clientID, err)
	}
}

// ToClient sends an event to a single connection.
func (h *Hub) ToClient(clientID, event string, data any) {
	h.mu.RLock()
	client, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.send(client, event, data)
}

// ToSession broadcasts an event to every connection in a game's room.
func (h *Hub) ToSession(gameID, event string, data any) {
	raw := encodeServerMessage(event, data)
	if raw == nil {
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[gameID]))
	for _, client := range h.rooms[gameID] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		LogWSMessage("OUT", client.clientID, string(raw))
		client.writeMu.Lock()
		err := client.conn.WriteMessage(websocket.TextMessage, raw)
		client.writeMu.Unlock()
		if err != nil {
			log.Printf("WebSocket write error to client %s: %v", client.clientID, err)
		}
	}
}

// Subscribe adds a connection to a game's room.
func (h *Hub) Subscribe(clientID, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[clientID]
	if !ok {
		return
	}
	room := h.rooms[gameID]
	if room == nil {
		room = make(map[string]*Client)
		h.rooms[gameID] = room
	}
	room[clientID] = client
}

// Unsubscribe removes a connection from a game's room.
func (h *Hub) Unsubscribe(clientID, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[gameID]
	if !ok {
		return
	}
	delete(room, clientID)
	if len(room) == 0 {
		delete(h.rooms, gameID)
	}
}

// handleMessage dispatches a decoded client frame to the orchestrator.
// A panic in an intent path is contained here: it runs on the connection's
// reader goroutine, so an unrecovered panic would take down the whole
// process rather than one session.
func (h *Hub) handleMessage(client *Client, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			logError("handleMessage: panic from client "+client.clientID, fmt.Errorf("%v", r))
			h.send(client, EvError, errorPayload{Message: "Internal server error"})
		}
	}()
	LogWSMessage("IN", client.clientID, string(raw))

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.send(client, EvError, errorPayload{Message: "Invalid message format"})
		return
	}

	switch msg.Event {
	case EvCreateGame:
		h.orch.CreateGame(client.clientID, msg.GameID, msg.PlayerName)
	case EvJoinGame:
		h.orch.JoinGame(client.clientID, msg.GameID, msg.PlayerName)
	case EvStartGame:
		h.orch.StartGame(client.clientID, msg.GameID)
	case EvNightAction:
		h.orch.SubmitNightAction(client.clientID, msg.GameID, msg.Action, msg.TargetID)
	case EvNightConfirm:
		h.orch.ConfirmNightAction(client.clientID, msg.GameID)
	case EvVote:
		h.orch.SubmitVote(client.clientID, msg.GameID, msg.TargetID)
	case EvReturnToLobby:
		h.orch.ReturnToLobby(client.clientID, msg.GameID)
	case EvLeaveGame:
		h.orch.LeaveGame(client.clientID, msg.GameID)
	default:
		h.send(client, EvError, errorPayload{Message: "Unknown event type"})
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Capture globals at entry to avoid race conditions in parallel tests
	currentHub := hub

	var upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // clients connect from arbitrary origins
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{conn: conn, clientID: uuid.NewString()}
	DebugLog("handleWebSocket", "WebSocket upgraded, assigned client ID %s", client.clientID)
	currentHub.register <- client

	// Handle messages and disconnection
	go func() {
		defer func() {
			currentHub.unregister <- client
		}()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}
			currentHub.handleMessage(client, message)
		}
	}()
}
