package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/leta-relay/internal/auth"
	"github.com/vovakirdan/leta-relay/internal/config"
	"github.com/vovakirdan/leta-relay/internal/core"
	"github.com/vovakirdan/leta-relay/internal/proto"
)

const testSecret = "test-secret"

// testConfig returns defaults with pings off so tests never race the ticker.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.PingInterval = 0
	return &cfg
}

func testJWTConfig() *auth.JWTConfig {
	return &auth.JWTConfig{
		Secret: []byte(testSecret),
		TTL:    time.Hour,
	}
}

func startTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	hub := core.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	logger := zerolog.Nop()
	server := NewServer(hub, cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return ts
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func dial(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close(websocket.StatusNormalClosure, "done")
	})
	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func read(ctx context.Context, t *testing.T, conn *websocket.Conn) outbound {
	t.Helper()

	var out outbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return out
}

// readEvent reads until an event named name arrives and decodes its data.
func readEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, name string, into any) {
	t.Helper()

	for {
		out := read(ctx, t, conn)
		if out.Type == proto.OutboundTypeError {
			t.Fatalf("waiting for %s, got error %+v", name, out.Error)
		}
		if out.Event != name {
			continue
		}
		if err := json.Unmarshal(out.Data, into); err != nil {
			t.Fatalf("unmarshal %s: %v", name, err)
		}
		return
	}
}

func readError(ctx context.Context, t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()

	out := read(ctx, t, conn)
	if out.Type != proto.OutboundTypeError || out.Error == nil {
		t.Fatalf("expected error, got %s %s", out.Type, out.Event)
	}
	return out.Error
}

// barrier waits until the hub has processed everything conn sent so far.
func barrier(ctx context.Context, t *testing.T, conn *websocket.Conn) {
	t.Helper()

	send(ctx, t, conn, proto.InboundTypeGetRoomUsers, proto.GetRoomUsersData{RoomID: "__barrier__"})
	var users proto.EventRoomUsers
	readEvent(ctx, t, conn, proto.EventNameRoomUsers, &users)
}

func identify(ctx context.Context, t *testing.T, conn *websocket.Conn, id, name, role string) {
	t.Helper()

	send(ctx, t, conn, proto.InboundTypeIdentify, proto.IdentifyData{IdentityID: id, DisplayName: name, Role: role})
	barrier(ctx, t, conn)
}

// newTestRouter serves GET / behind mw with role preset in the context.
func newTestRouter(mw gin.HandlerFunc, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		c.Set(ContextKeyRole, role)
		c.Next()
	}, mw, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}
