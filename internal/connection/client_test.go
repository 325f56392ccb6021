package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer runs handler for every upgraded connection.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testClientConfig(server *httptest.Server) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.URL = wsURL(server)
	cfg.BufferSize = 16
	return cfg
}

// drain reads until the peer goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestClient_ConnectClose(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	c := NewClient(testClientConfig(server), nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := c.Connect(context.Background()); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestClient_DialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := NewClient(testClientConfig(server), nil)
	err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect to a plain HTTP handler succeeded")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("error = %v, want the handshake status", err)
	}
}

func TestClient_SendRoundTrip(t *testing.T) {
	got := make(chan string, 1)
	server := mockWSServer(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		got <- string(msg)
		drain(conn)
	})
	defer server.Close()

	c := NewClient(testClientConfig(server), nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	want := `{"resource":"blocknum"}`
	if err := c.Send([]byte(want)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case msg := <-got:
		if msg != want {
			t.Errorf("server received %q, want %q", msg, want)
		}
	case <-time.After(time.Second):
		t.Fatal("server received nothing")
	}
}

func TestClient_SendNotConnected(t *testing.T) {
	c := NewClient(ClientConfig{URL: "ws://127.0.0.1:1", BufferSize: 1}, nil)

	if err := c.Send([]byte("{}")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send = %v, want ErrNotConnected", err)
	}
}

func TestClient_SlowConsumerLosesNothing(t *testing.T) {
	const n = 20
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for i := 0; i < n; i++ {
			msg, _ := json.Marshal(map[string]int{"payload": i})
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
		drain(conn)
	})
	defer server.Close()

	cfg := testClientConfig(server)
	cfg.BufferSize = 1
	c := NewClient(cfg, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	time.Sleep(50 * time.Millisecond)

	for i := 0; i < n; i++ {
		select {
		case msg := <-c.Messages():
			var got struct{ Payload int }
			if err := json.Unmarshal(msg.Data, &got); err != nil {
				t.Fatalf("message %d: %v", i, err)
			}
			if got.Payload != i {
				t.Fatalf("message %d carried %d", i, got.Payload)
			}
			if msg.ReceivedAt.IsZero() {
				t.Error("ReceivedAt is zero")
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout after %d of %d messages", i, n)
		}
	}
}

func TestClient_TerminalErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(*ClientConfig)
		server  func(*websocket.Conn)
		wantErr error
	}{
		{
			name: "server closes normally",
			server: func(conn *websocket.Conn) {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
					time.Now().Add(time.Second))
				drain(conn)
			},
			wantErr: ErrClosedByServer,
		},
		{
			name: "silent server goes stale",
			cfg:  func(c *ClientConfig) { c.PingTimeout = 100 * time.Millisecond },
			server: func(conn *websocket.Conn) {
				// never reads, so pings are never answered
				time.Sleep(time.Second)
			},
			wantErr: ErrStaleConnection,
		},
		{
			name: "frame over read limit",
			cfg:  func(c *ClientConfig) { c.ReadLimit = 64 },
			server: func(conn *websocket.Conn) {
				conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 1024)))
				drain(conn)
			},
			wantErr: websocket.ErrReadLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockWSServer(t, tt.server)
			defer server.Close()

			cfg := testClientConfig(server)
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			c := NewClient(cfg, nil)
			if err := c.Connect(context.Background()); err != nil {
				t.Fatalf("Connect failed: %v", err)
			}
			defer c.Close()

			select {
			case err := <-c.Errors():
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("no terminal error")
			}
			if c.IsConnected() {
				t.Error("IsConnected() = true after a terminal error")
			}
		})
	}
}

func TestClient_TrafficKeepsConnectionAlive(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// blocknum every 20ms and no pong handling
		for i := 0; i < 15; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"resource":"blocknum","payload":1}`)); err != nil {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
	})
	defer server.Close()

	cfg := testClientConfig(server)
	cfg.PingTimeout = 100 * time.Millisecond
	c := NewClient(cfg, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	deadline := time.After(250 * time.Millisecond)
	for {
		select {
		case <-c.Messages():
		case err := <-c.Errors():
			t.Fatalf("unexpected terminal error: %v", err)
		case <-deadline:
			return
		}
	}
}

func TestClient_AnswersServerPing(t *testing.T) {
	pong := make(chan string, 1)
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.SetPongHandler(func(data string) error {
			pong <- data
			return nil
		})
		if err := conn.WriteControl(websocket.PingMessage, []byte("hb"), time.Now().Add(time.Second)); err != nil {
			return
		}
		drain(conn)
	})
	defer server.Close()

	c := NewClient(testClientConfig(server), nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	select {
	case data := <-pong:
		if data != "hb" {
			t.Errorf("pong payload = %q, want hb", data)
		}
	case <-time.After(time.Second):
		t.Fatal("no pong")
	}
}

func TestRequests_Encoding(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "book",
			req:  NewBookRequest("BTS_USD", "1.0.0"),
			want: `{"resource":"book","pair":"BTS_USD","contract":"1.0.0"}`,
		},
		{
			name: "ticker",
			req:  NewTickerRequest("XBTSX.BTC:USD", "1.19.42"),
			want: `{"resource":"ticker","pair":"XBTSX.BTC:USD","contract":"1.19.42"}`,
		},
		{
			name: "candles",
			req:  NewCandlesRequest(DefaultChartType, DefaultCandleSize, "BTS_USD", "1.0.0"),
			want: `{"resource":"candles","chart_type":"line","candle_size":"c86400","contract":"1.0.0","pair":"BTS_USD"}`,
		},
		{
			name: "blocknum",
			req:  NewBlocknumRequest(),
			want: `{"resource":"blocknum"}`,
		},
		{
			name: "list_assets",
			req: ListAssetsRequest{
				Res:         ResourceListAssets,
				Search:      "USD",
				AssetA:      "BTC",
				UseMPA:      true,
				FirstChoice: true,
			},
			want: `{"resource":"list_assets","search":"USD","assetA":"BTC","useMPA":true,"useLPT":false,"useUIA":false,"usePool":false,"firstChoice":true,"useBTS":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.req)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s, want %s", data, tt.want)
			}
		})
	}
}

func TestDefaultConfigs(t *testing.T) {
	clientCfg := DefaultClientConfig()
	if clientCfg.PingTimeout != 60*time.Second {
		t.Errorf("PingTimeout = %v, want 60s", clientCfg.PingTimeout)
	}
	if clientCfg.ReadLimit != DefaultReadLimit {
		t.Errorf("ReadLimit = %d, want %d", clientCfg.ReadLimit, DefaultReadLimit)
	}

	mgrCfg := DefaultManagerConfig()
	if mgrCfg.WSURL != "ws://127.0.0.1:8001/" {
		t.Errorf("WSURL = %q, want ws://127.0.0.1:8001/", mgrCfg.WSURL)
	}
	if mgrCfg.WriteTimeout != 5*time.Second {
		t.Errorf("WriteTimeout = %v, want 5s", mgrCfg.WriteTimeout)
	}
}
