package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/leta-relay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	identity := flag.String("identity", "smoke-1", "identity id to identify with")
	name := flag.String("name", "Smoke Tester", "display name")
	role := flag.String("role", "customer", "role (customer, vendor, rider, admin)")
	token := flag.String("token", "", "role-claim token, when the server requires one")
	room := flag.String("room", "smoke-room", "room id")
	body := flag.String("body", "hello from smoke test", "message body to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	steps := []struct {
		typ  string
		data any
	}{
		{proto.InboundTypeIdentify, proto.IdentifyData{IdentityID: *identity, DisplayName: *name, Role: *role, Token: *token}},
		{proto.InboundTypeJoinRoom, proto.RoomData{RoomID: *room, IdentityID: *identity, DisplayName: *name}},
		{proto.InboundTypeSendMessage, proto.SendMessageData{RoomID: *room, SenderID: *identity, SenderName: *name, Body: *body}},
	}
	for _, step := range steps {
		if err := send(step.typ, step.data); err != nil {
			return err
		}
	}

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		if outbound.Error != nil {
			fmt.Printf(" error=%s: %s\n", outbound.Error.Code, outbound.Error.Message)
			return fmt.Errorf("server error: %s", outbound.Error.Code)
		}
		fmt.Printf(" data=%s\n", outbound.Data)

		if outbound.Event != proto.EventNewMessage {
			continue
		}
		var msg proto.EventMessage
		if err := json.Unmarshal(outbound.Data, &msg); err != nil {
			return fmt.Errorf("decode new_message: %w", err)
		}
		if msg.SenderID == *identity && msg.Body == *body {
			fmt.Printf("Smoke test passed: message %s echoed in %s\n", msg.ID, msg.RoomID)
			return nil
		}
	}
}
