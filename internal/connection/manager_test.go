package connection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func testManagerConfig(server *httptest.Server) ManagerConfig {
	cfg := DefaultManagerConfig()
	cfg.WSURL = wsURL(server) + "/"
	cfg.BufferSize = 100
	return cfg
}

func TestDialURL(t *testing.T) {
	got, err := DialURL("ws://127.0.0.1:8001/", "XBTSX.BTC:USD", "1.19.42")
	if err != nil {
		t.Fatalf("DialURL failed: %v", err)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	q := u.Query()
	if q.Get("resource") != "book" {
		t.Errorf("resource = %q, want book", q.Get("resource"))
	}
	if q.Get("pair") != "XBTSX.BTC:USD" {
		t.Errorf("pair = %q, want XBTSX.BTC:USD", q.Get("pair"))
	}
	if q.Get("contract") != "1.19.42" {
		t.Errorf("contract = %q, want 1.19.42", q.Get("contract"))
	}
}

func TestManager_ConnectAndSend(t *testing.T) {
	var (
		mu       sync.Mutex
		query    url.Values
		received [][]byte
	)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		query = r.URL.Query()
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			received = append(received, msg)
			mu.Unlock()
		}
	}))
	defer server.Close()

	m := NewManager(testManagerConfig(server), nil)
	ctx := context.Background()

	if err := m.Connect(ctx, "BTS_USD", "1.0.0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer m.Close()

	if err := m.Send(NewBookRequest("BTS_USD", "1.0.0")); err != nil {
		t.Fatalf("Send book failed: %v", err)
	}
	if err := m.Send(NewBlocknumRequest()); err != nil {
		t.Fatalf("Send blocknum failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if query.Get("pair") != "BTS_USD" || query.Get("contract") != "1.0.0" {
		t.Errorf("dial query = %v, want pair=BTS_USD contract=1.0.0", query)
	}
	if len(received) != 2 {
		t.Fatalf("received %d messages, want 2", len(received))
	}
	if string(received[0]) != `{"resource":"book","pair":"BTS_USD","contract":"1.0.0"}` {
		t.Errorf("first message = %s", received[0])
	}
	if string(received[1]) != `{"resource":"blocknum"}` {
		t.Errorf("second message = %s", received[1])
	}

	stats := m.Stats()
	if !stats.Connected {
		t.Error("Stats.Connected = false")
	}
	if stats.RequestsSent != 2 {
		t.Errorf("Stats.RequestsSent = %d, want 2", stats.RequestsSent)
	}
}

func TestManager_ConnectTwice(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	m := NewManager(testManagerConfig(server), nil)
	ctx := context.Background()

	if err := m.Connect(ctx, "BTS_USD", "1.0.0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer m.Close()

	if err := m.Connect(ctx, "BTS_USD", "1.0.0"); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect error = %v, want ErrAlreadyConnected", err)
	}
}

func TestManager_SendBeforeConnect(t *testing.T) {
	m := NewManager(DefaultManagerConfig(), nil)

	if err := m.Send(NewTickerRequest("BTS_USD", "1.0.0")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send error = %v, want ErrNotConnected", err)
	}
	if m.Messages() != nil {
		t.Error("Messages() should be nil before Connect")
	}
	if got := m.Stats().SendErrors; got != 1 {
		t.Errorf("SendErrors = %d, want 1", got)
	}
}

func TestManager_ReceivesMessages(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"resource":"blocknum","payload":123}`))
		time.Sleep(time.Second)
	})
	defer server.Close()

	m := NewManager(testManagerConfig(server), nil)
	if err := m.Connect(context.Background(), "BTS_USD", "1.0.0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer m.Close()

	select {
	case msg := <-m.Messages():
		if string(msg.Data) != `{"resource":"blocknum","payload":123}` {
			t.Errorf("message = %s", msg.Data)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}
