package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/leta-relay/internal/core"
	"github.com/vovakirdan/leta-relay/internal/proto"
)

// RoomHandlers serves room rosters to operators.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ListUsers returns the identities currently in a room.
// GET /api/rooms/:roomId/users
func (h *RoomHandlers) ListUsers(c *gin.Context) {
	roomID := c.Param("roomId")

	users, err := h.hub.RoomUsers(c.Request.Context(), roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list room users")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	c.JSON(http.StatusOK, proto.EventRoomUsers{
		RoomID: roomID,
		Users:  roomUsersToProto(users),
	})
}
