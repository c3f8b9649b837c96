package http

import (
	"time"

	"github.com/chatify/chatify-server/internal/core"
	"github.com/chatify/chatify-server/internal/proto"
	"github.com/chatify/chatify-server/internal/store"
)

func userPayload(u *store.User) proto.UserPayload {
	return proto.UserPayload{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}

func messagePayload(m *store.Message) proto.MessagePayload {
	return proto.MessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		Image:      m.ImageURL,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}

// outboundFromEvent maps a core event to its wire representation. The
// switch is exhaustive over core.EventKind.
func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventOnlineUsers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventOnlineUsersChanged,
			Data:  ev.OnlineUserIDs,
		}
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data:  messagePayload(ev.Message),
		}
	case core.EventMessagesDeleted:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessagesDeleted,
			Data: proto.MessagesDeletedPayload{
				MessageIDs: ev.DeletedMessageIDs,
				DeletedBy:  ev.DeletedBy,
			},
		}
	case core.EventUserUpdated:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserProfileUpdated,
			Data:  userPayload(ev.Profile),
		}
	default:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: "internal", Msg: "unknown event kind"},
		}
	}
}
