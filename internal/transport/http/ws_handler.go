package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/leta-relay/internal/config"
	"github.com/vovakirdan/leta-relay/internal/core"
	"github.com/vovakirdan/leta-relay/internal/proto"
	"github.com/vovakirdan/leta-relay/internal/utils"
)

// maxCloseReason is the most a close frame reason may carry.
const maxCloseReason = 123

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub    *core.Hub
	cfg    *config.Config
	mapper *inboundMapper
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:    hub,
		cfg:    cfg,
		mapper: &inboundMapper{jwt: jwtConfig(cfg), jwtRequired: cfg.JWTRequired},
		log:    logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, acceptOptions(h.cfg.AllowedOrigins))
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := core.NewClient(utils.NewID(), h.cfg.ClientBuffer)
	logger := h.log.With().Str("conn_id", client.ID).Logger()
	logger.Debug().Str("remote", r.RemoteAddr).Msg("ws connected")

	h.hub.RegisterClient(client)
	reason := "transport close"
	defer func() {
		h.hub.UnregisterClient(client, reason)
	}()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return h.readLoop(ctx, conn, client, &logger) })
	g.Go(func() error { return h.writeLoop(ctx, conn, client, &logger) })
	g.Go(func() error { return h.pingLoop(ctx, conn) })
	err = g.Wait()
	reason = disconnectReason(err)

	status := websocket.StatusNormalClosure
	closeMsg := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			closeMsg = truncate(err.Error(), maxCloseReason)
			logger.Warn().Err(err).Msg("ws connection closed with error")
		}
	}
	logger.Debug().Str("reason", reason).Msg("ws disconnected")

	conn.Close(status, closeMsg)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	limiter := newRateLimiter(h.cfg.RateLimitPerMinute)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			logger.Debug().Err(err).Msg("undecodable inbound frame")
			if writeErr := h.writeError(ctx, conn, &proto.Error{Code: core.ErrCodeMalformedEvent, Message: "invalid json envelope"}); writeErr != nil {
				return writeErr
			}
			continue
		}

		if !limiter.allow() {
			logger.Debug().Str("type", inbound.Type).Msg("inbound event rate limited")
			if writeErr := h.writeError(ctx, conn, &proto.Error{Code: core.ErrCodeRateLimited, Message: "too many events"}); writeErr != nil {
				return writeErr
			}
			continue
		}

		cmd, protoErr := h.mapper.toCommand(inbound)
		if protoErr != nil {
			logger.Debug().Str("type", inbound.Type).Str("code", protoErr.Code).Msg(protoErr.Message)
			if writeErr := h.writeError(ctx, conn, protoErr); writeErr != nil {
				return writeErr
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				logger.Error().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pingLoop drops connections whose peer stops answering pings.
func (h *WSHandler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	if h.cfg.PingInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.cfg.PingTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("ping timeout: %w", err)
			}
		}
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, protoErr *proto.Error) error {
	return wsjson.Write(ctx, conn, proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: protoErr,
	})
}

func acceptOptions(origins []string) *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, origin := range origins {
		if origin == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
	}
	opts.OriginPatterns = origins
	return opts
}

func disconnectReason(err error) string {
	switch {
	case err == nil:
		return "server closed"
	case errors.Is(err, io.EOF):
		return "client closed"
	}
	if s := websocket.CloseStatus(err); s != -1 {
		return "client closed: " + s.String()
	}
	if errors.Is(err, context.Canceled) {
		return "server shutdown"
	}
	return err.Error()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
