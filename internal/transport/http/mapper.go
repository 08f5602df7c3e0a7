package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/vovakirdan/guildchat/internal/core"
	"github.com/vovakirdan/guildchat/internal/proto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoinChat:
		var join proto.JoinChatData
		if perr := decode(inbound.Data, &join); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandJoinChat, Username: join.Username}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if perr := decode(inbound.Data, &msg); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:      core.CommandSendMessage,
			Username:  msg.User,
			Text:      msg.Text,
			ServerID:  msg.ServerID,
			ChannelID: msg.ChannelID,
		}, nil
	case proto.InboundTypeGetUsers:
		return &core.Command{Kind: core.CommandGetUsers}, nil
	case proto.InboundTypeGetMessages, proto.InboundTypeSwitchChannel:
		var ch proto.ChannelData
		if perr := decode(inbound.Data, &ch); perr != nil {
			return nil, perr
		}
		kind := core.CommandGetMessages
		if inbound.Type == proto.InboundTypeSwitchChannel {
			kind = core.CommandSwitchChannel
		}
		return &core.Command{Kind: kind, ServerID: ch.ServerID, ChannelID: ch.ChannelID}, nil
	case proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var typing proto.TypingData
		if perr := decode(inbound.Data, &typing); perr != nil {
			return nil, perr
		}
		kind := core.CommandTypingStart
		if inbound.Type == proto.InboundTypeTypingStop {
			kind = core.CommandTypingStop
		}
		return &core.Command{
			Kind:      kind,
			Username:  typing.Username,
			ServerID:  typing.ServerID,
			ChannelID: typing.ChannelID,
		}, nil
	case proto.InboundTypeUpdateStatus:
		var status proto.UpdateStatusData
		if perr := decode(inbound.Data, &status); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandUpdateStatus, Username: status.Username, Status: status.Status}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeValidation, Message: fmt.Sprintf("unknown message type %q", inbound.Type)}
	}
}

// decode unmarshals and validates a payload. A missing payload decodes as {}.
func decode[T any](raw json.RawMessage, dst *T) *proto.Error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &proto.Error{Code: core.ErrCodeValidation, Message: "malformed payload"}
	}
	if err := validate.Struct(dst); err != nil {
		return &proto.Error{Code: core.ErrCodeValidation, Message: validationMessage(err)}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid payload"
	}
	parts := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	})
	return "invalid payload: " + strings.Join(parts, ", ")
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserConnected:
		return eventOutbound(event, proto.EventUserConnected{Message: "Connected to server"})
	case core.EventUserJoined, core.EventUserLeft, core.EventSessionSuperseded:
		return eventOutbound(event, proto.EventUser{Username: string(event.User)})
	case core.EventUsersUpdate:
		return eventOutbound(event, proto.EventUsersUpdate{Users: identities(event.Users)})
	case core.EventServersData:
		return eventOutbound(event, proto.EventServersData{
			Servers: lo.SliceToMap(event.Servers, func(s core.Server) (string, proto.ServerInfo) {
				return s.ID, serverInfo(s)
			}),
		})
	case core.EventUserPermissions:
		return eventOutbound(event, proto.EventUserPermissions{
			AccessibleServers: lo.Map(event.Servers, func(s core.Server, _ int) string { return s.ID }),
		})
	case core.EventNewMessage:
		return eventOutbound(event, proto.EventNewMessage{Message: messageData(event.Message)})
	case core.EventMessagesHistory:
		return eventOutbound(event, proto.EventMessagesHistory{
			Messages:  messagesData(event.Messages),
			ServerID:  event.ServerID,
			ChannelID: event.ChannelID,
		})
	case core.EventTypingStart, core.EventTypingStop:
		return eventOutbound(event, proto.EventTyping{
			Username:  string(event.User),
			ServerID:  event.ServerID,
			ChannelID: event.ChannelID,
		})
	case core.EventUserStatusUpdate:
		return eventOutbound(event, proto.EventUserStatus{Username: string(event.User), Status: string(event.Status)})
	case core.EventChannelSwitched:
		return eventOutbound(event, proto.EventChannelSwitched{ServerID: event.ServerID, ChannelID: event.ChannelID})
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

func eventOutbound(event *core.Event, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: event.Kind.String(), Data: data}
}

func identities(ids []core.Identity) []string {
	return lo.Map(ids, func(id core.Identity, _ int) string { return string(id) })
}

func serverInfo(s core.Server) proto.ServerInfo {
	return proto.ServerInfo{
		ID:       s.ID,
		Name:     s.Name,
		Icon:     s.Icon,
		Channels: channelsInfo(s.Channels),
	}
}

func channelsInfo(channels []core.Channel) []proto.ChannelInfo {
	return lo.Map(channels, func(ch core.Channel, _ int) proto.ChannelInfo {
		return proto.ChannelInfo{ID: ch.ID, Name: ch.Name, Type: string(ch.Type)}
	})
}

func messageData(msg core.Message) proto.MessageData {
	return proto.MessageData{
		ID:        msg.ID,
		User:      string(msg.Author),
		Text:      msg.Text,
		Timestamp: msg.CreatedAt,
		ServerID:  msg.ServerID,
		ChannelID: msg.ChannelID,
	}
}

func messagesData(msgs []core.Message) []proto.MessageData {
	return lo.Map(msgs, func(msg core.Message, _ int) proto.MessageData { return messageData(msg) })
}
