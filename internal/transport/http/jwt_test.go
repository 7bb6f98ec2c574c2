package http

import (
	"testing"

	"github.com/vovakirdan/leta-relay/internal/auth"
	"github.com/vovakirdan/leta-relay/internal/core"
	"github.com/vovakirdan/leta-relay/internal/proto"
)

func TestIdentifyRequiresToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = testSecret
	cfg.JWTRequired = true
	ts := startTestServer(t, cfg)
	ctx := testContext(t)

	conn := dial(ctx, t, ts)
	send(ctx, t, conn, proto.InboundTypeIdentify, proto.IdentifyData{IdentityID: "a1", Role: "admin"})
	perr := readError(ctx, t, conn)
	if perr.Code != core.ErrCodeUnauthorized {
		t.Fatalf("expected unauthorized without token, got %+v", perr)
	}

	send(ctx, t, conn, proto.InboundTypeIdentify, proto.IdentifyData{IdentityID: "a1", Token: "garbage"})
	if perr := readError(ctx, t, conn); perr.Code != core.ErrCodeUnauthorized {
		t.Fatalf("expected unauthorized for bad token, got %+v", perr)
	}
}

func TestIdentifyTokenClaimsWin(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = testSecret
	cfg.JWTRequired = true
	ts := startTestServer(t, cfg)
	ctx := testContext(t)

	token, err := auth.GenerateToken(testJWTConfig(), "a1", "Ada", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	conn := dial(ctx, t, ts)
	// Payload fields disagree with the token; the claims are what counts.
	send(ctx, t, conn, proto.InboundTypeIdentify, proto.IdentifyData{IdentityID: "x", Role: "customer", Token: token})
	barrier(ctx, t, conn)

	send(ctx, t, conn, proto.InboundTypeGetRoomUsers, proto.GetRoomUsersData{RoomID: core.OversightRoom})
	var roster proto.EventRoomUsers
	readEvent(ctx, t, conn, proto.EventNameRoomUsers, &roster)
	if len(roster.Users) != 1 {
		t.Fatalf("expected admin in oversight room, got %+v", roster)
	}
	got := roster.Users[0]
	if got.IdentityID != "a1" || got.DisplayName != "Ada" || got.Role != "admin" {
		t.Fatalf("unexpected roster entry: %+v", got)
	}
}

func TestIdentifyOptionalToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = testSecret
	ts := startTestServer(t, cfg)
	ctx := testContext(t)

	conn := dial(ctx, t, ts)
	// Tokens are optional: a bare identify is trusted as is.
	identify(ctx, t, conn, "c1", "Cara", "customer")

	send(ctx, t, conn, proto.InboundTypeIdentify, proto.IdentifyData{IdentityID: "c1", Token: "garbage"})
	if perr := readError(ctx, t, conn); perr.Code != core.ErrCodeUnauthorized {
		t.Fatalf("a presented token must still verify, got %+v", perr)
	}
}
