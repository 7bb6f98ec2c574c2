package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vovakirdan/leta-relay/internal/auth"
	"github.com/vovakirdan/leta-relay/internal/core"
	"github.com/vovakirdan/leta-relay/internal/proto"
)

// isoMillis matches JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so errors read like the payload the client sent.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// inboundMapper decodes and validates inbound envelopes into core commands.
// Nothing malformed reaches the hub.
type inboundMapper struct {
	jwt         *auth.JWTConfig
	jwtRequired bool
}

func (m *inboundMapper) toCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeIdentify:
		var data proto.IdentifyData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		if m.jwt != nil && (m.jwtRequired || data.Token != "") {
			claims, err := auth.ValidateToken(m.jwt, data.Token)
			if err != nil {
				return nil, &proto.Error{Code: core.ErrCodeUnauthorized, Message: "invalid token"}
			}
			data.IdentityID = claims.Subject
			data.DisplayName = claims.Name
			data.Role = claims.Role
		}
		if perr := check(&data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind: core.CommandIdentify,
			User: data.IdentityID,
			Name: data.DisplayName,
			Role: core.Role(data.Role),
		}, nil
	case proto.InboundTypeJoinRoom, proto.InboundTypeLeaveRoom:
		var data proto.RoomData
		if perr := decodeAndCheck(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		kind := core.CommandJoinRoom
		if inbound.Type == proto.InboundTypeLeaveRoom {
			kind = core.CommandLeaveRoom
		}
		return &core.Command{
			Kind: kind,
			Room: data.RoomID,
			User: data.IdentityID,
			Name: data.DisplayName,
		}, nil
	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if perr := decodeAndCheck(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: data.RoomID,
			User: data.SenderID,
			Message: core.Message{
				// ID and timestamp are assigned by the hub.
				Room:           data.RoomID,
				SenderID:       data.SenderID,
				SenderName:     data.SenderName,
				SenderImageURL: data.SenderImageURL,
				Body:           data.Body,
				Type:           data.Type,
				Metadata:       data.Metadata,
			},
		}, nil
	case proto.InboundTypeTyping:
		var data proto.TypingData
		if perr := decodeAndCheck(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandTyping,
			Room:     data.RoomID,
			User:     data.IdentityID,
			Name:     data.DisplayName,
			IsTyping: data.IsTyping,
		}, nil
	case proto.InboundTypeMarkRead:
		var data proto.MarkReadData
		if perr := decodeAndCheck(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:      core.CommandMarkRead,
			Room:      data.RoomID,
			User:      data.ReaderID,
			MessageID: data.MessageID,
		}, nil
	case proto.InboundTypeJoinGlobal:
		var data proto.JoinGlobalData
		if perr := decodeAndCheck(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandJoinGlobal,
			RoomType: data.RoomType,
			User:     data.IdentityID,
			Name:     data.DisplayName,
		}, nil
	case proto.InboundTypeAdminJoin:
		var data proto.AdminJoinData
		if perr := decodeAndCheck(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind: core.CommandAdminJoin,
			Room: data.RoomID,
			User: data.AdminID,
			Name: data.AdminName,
		}, nil
	case proto.InboundTypeGetRoomUsers:
		var data proto.GetRoomUsersData
		if perr := decodeAndCheck(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind: core.CommandRoomUsers,
			Room: data.RoomID,
		}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeUnknownEvent, Message: fmt.Sprintf("unknown event type %q", inbound.Type)}
	}
}

func decodeAndCheck(raw json.RawMessage, v any) *proto.Error {
	if perr := decode(raw, v); perr != nil {
		return perr
	}
	return check(v)
}

func decode(raw json.RawMessage, v any) *proto.Error {
	if len(raw) == 0 {
		return &proto.Error{Code: core.ErrCodeMalformedEvent, Message: "data is required"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &proto.Error{Code: core.ErrCodeMalformedEvent, Message: "invalid payload: " + err.Error()}
	}
	return nil
}

func check(v any) *proto.Error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	msg := "invalid payload"
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			msg = fe.Field() + " is required"
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			msg = fe.Field() + " is invalid"
		}
	}
	return &proto.Error{Code: core.ErrCodeMalformedEvent, Message: msg}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserJoined, core.EventUserLeft:
		name := proto.EventUserJoined
		if event.Kind == core.EventUserLeft {
			name = proto.EventUserLeft
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: name,
			Data: proto.EventPresence{
				RoomID:      event.Room,
				IdentityID:  event.User,
				DisplayName: event.Name,
				Timestamp:   isoTime(event.At),
			},
		}
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data:  messageToProto(event.Message),
		}
	case core.EventAdminMonitor:
		msg := messageToProto(event.Message)
		msg.RoomID = event.Room
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventAdminMonitor,
			Data:  msg,
		}
	case core.EventUserTyping:
		snapshot := event.Typing
		if snapshot == nil {
			snapshot = []string{}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserTyping,
			Data: proto.EventTyping{
				RoomID:         event.Room,
				IdentityID:     event.User,
				DisplayName:    event.Name,
				IsTyping:       event.IsTyping,
				TypingSnapshot: snapshot,
			},
		}
	case core.EventMessageRead:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMessageRead,
			Data: proto.EventMessageRead{
				MessageID: event.MessageID,
				RoomID:    event.Room,
				ReadBy:    event.User,
				ReadAt:    isoTime(event.At),
			},
		}
	case core.EventGlobalUserJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameGlobalUserJoined,
			Data: proto.EventGlobalUserJoined{
				RoomType:    event.RoomType,
				IdentityID:  event.User,
				DisplayName: event.Name,
				Timestamp:   isoTime(event.At),
			},
		}
	case core.EventRoomUsers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameRoomUsers,
			Data: proto.EventRoomUsers{
				RoomID: event.Room,
				Users:  roomUsersToProto(event.Users),
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Message: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Message: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func messageToProto(msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		ID:             msg.ID,
		RoomID:         msg.Room,
		SenderID:       msg.SenderID,
		SenderName:     msg.SenderName,
		SenderImageURL: msg.SenderImageURL,
		Body:           msg.Body,
		Type:           msg.Type,
		Metadata:       msg.Metadata,
		IsRead:         msg.IsRead,
		CreatedAt:      isoTime(msg.CreatedAt),
	}
}

func roomUsersToProto(members []core.Member) []proto.RoomUser {
	users := make([]proto.RoomUser, 0, len(members))
	for _, m := range members {
		users = append(users, proto.RoomUser{
			IdentityID:  m.ID,
			DisplayName: m.Name,
			Role:        string(m.Role),
		})
	}
	return users
}

func isoTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
