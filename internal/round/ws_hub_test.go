package round

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestWSHub_BroadcastReachesClients(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	// Give the handler a moment to register the client with the hub.
	time.Sleep(100 * time.Millisecond)
	hub.Broadcast(WSMessage{Type: "round_settled", ClubID: "club1", Amount: "250"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var got WSMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "round_settled" || got.ClubID != "club1" {
		t.Fatalf("message = %+v", got)
	}
}

func TestWSHub_BroadcastWithChurningClients(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	stay := dialHub(t, srv)
	defer stay.Close()
	go func() {
		// Drain so writes to the surviving client never block.
		for {
			if _, _, err := stay.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := dialHub(t, srv)
			time.Sleep(10 * time.Millisecond)
			conn.Close() // broadcasts now hit a dead connection
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				hub.Broadcast(WSMessage{Type: "round_created", ClubID: "club1"})
				time.Sleep(time.Millisecond)
			}
		}()
	}
	wg.Wait()
}
