package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type receivedMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// recvEvent reads frames until one with the wanted event arrives, skipping
// unrelated broadcasts in between.
func recvEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		var msg receivedMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if msg.Event == event {
			return msg.Data
		}
	}
}

func sendEvent(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("send %s: %v", msg.Event, err)
	}
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketLobbyFlow(t *testing.T) {
	prev := hub
	h := newHub()
	h.orch = newOrchestrator(h, nil, defaultSettings())
	hub = h
	go h.run()
	defer func() {
		h.stop()
		hub = prev
	}()

	srv := httptest.NewServer(http.HandlerFunc(handleWebSocket))
	defer srv.Close()

	host := dialWS(t, srv)
	var welcome welcomePayload
	if err := json.Unmarshal(recvEvent(t, host, EvWelcome), &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.PlayerID == "" {
		t.Fatal("welcome carried no player ID")
	}

	sendEvent(t, host, ClientMessage{Event: EvCreateGame, GameID: "ws1", PlayerName: "Alice"})
	var created gamePayload
	if err := json.Unmarshal(recvEvent(t, host, EvGameCreated), &created); err != nil {
		t.Fatalf("decode game-created: %v", err)
	}
	if created.Game.GameID != "WS1" || len(created.Game.Players) != 1 {
		t.Fatalf("created game = %+v", created.Game)
	}

	guest := dialWS(t, srv)
	recvEvent(t, guest, EvWelcome)
	sendEvent(t, guest, ClientMessage{Event: EvJoinGame, GameID: "WS1", PlayerName: "Bob"})

	// Both room members see the join.
	var joined gamePayload
	if err := json.Unmarshal(recvEvent(t, host, EvPlayerJoined), &joined); err != nil {
		t.Fatalf("decode player-joined: %v", err)
	}
	if len(joined.Game.Players) != 2 {
		t.Fatalf("players after join = %d, want 2", len(joined.Game.Players))
	}
	recvEvent(t, guest, EvPlayerJoined)

	sendEvent(t, guest, ClientMessage{Event: "make-coffee"})
	var oops errorPayload
	if err := json.Unmarshal(recvEvent(t, guest, EvError), &oops); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if oops.Message != "Unknown event type" {
		t.Errorf("unknown event error = %q", oops.Message)
	}

	// Closing the guest's socket is an implicit leave.
	guest.Close()
	var gone playerGonePayload
	if err := json.Unmarshal(recvEvent(t, host, EvPlayerDisconnected), &gone); err != nil {
		t.Fatalf("decode player-disconnected: %v", err)
	}
	if gone.PlayerName != "Bob" || len(gone.Players) != 1 {
		t.Fatalf("departure = %+v, want Bob out with 1 player left", gone)
	}
}

func TestIntentPanicDoesNotKillConnection(t *testing.T) {
	prev := hub
	h := newHub()
	o := newOrchestrator(h, nil, defaultSettings())
	h.orch = o
	hub = h
	go h.run()
	defer func() {
		h.stop()
		hub = prev
	}()

	// A session with no game state makes the night-action path
	// dereference nil on the connection's reader goroutine.
	o.mu.Lock()
	o.sessions["BOOM"] = &session{}
	o.mu.Unlock()

	srv := httptest.NewServer(http.HandlerFunc(handleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv)
	recvEvent(t, conn, EvWelcome)

	sendEvent(t, conn, ClientMessage{Event: EvNightAction, GameID: "BOOM", Action: "kill", TargetID: "x"})
	var oops errorPayload
	if err := json.Unmarshal(recvEvent(t, conn, EvError), &oops); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if oops.Message != "Internal server error" {
		t.Errorf("panic surfaced as %q, want Internal server error", oops.Message)
	}

	// The connection keeps serving after the contained panic.
	sendEvent(t, conn, ClientMessage{Event: "make-coffee"})
	if err := json.Unmarshal(recvEvent(t, conn, EvError), &oops); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if oops.Message != "Unknown event type" {
		t.Errorf("post-panic error = %q", oops.Message)
	}
}
