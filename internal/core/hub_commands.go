package core

import (
	"fmt"
	"strings"
)

func (h *Hub) connect(c *Client) {
	h.router.Attach(c)
	h.rec.ConnectionOpened()
	h.log.Debug().Str("client_id", string(c.ID)).Msg("client connected")
	h.router.Send(c.ID, &Event{Kind: EventUserConnected})
}

// disconnect removes the session, its router membership and its typing state
// in one step, then tells everyone the identity left.
func (h *Hub) disconnect(c *Client) {
	id, joined := h.registry.Unregister(c.ID)
	h.router.Detach(c.ID)
	h.rec.ConnectionClosed()
	if !joined {
		h.log.Debug().Str("client_id", string(c.ID)).Msg("client disconnected before joining")
		return
	}

	h.purgeTyping(id)
	h.rec.SessionEnded()
	h.log.Info().Str("client_id", string(c.ID)).Str("user", string(id)).Msg("user left")

	h.router.Broadcast(GlobalScope(), &Event{Kind: EventUserLeft, User: id})
	h.router.Broadcast(GlobalScope(), h.usersUpdate())
}

func (h *Hub) dispatch(c *Client, cmd *Command) error {
	switch cmd.Kind {
	case CommandJoinChat:
		return h.joinChat(c, cmd)
	case CommandGetUsers:
		h.router.Send(c.ID, h.usersUpdate())
		return nil
	}

	sess, ok := h.registry.Lookup(c.ID)
	if !ok {
		return fmt.Errorf("%w: join the chat first", ErrNotRegistered)
	}
	if cmd.Username != "" && Canonical(cmd.Username) != sess.Identity {
		return fmt.Errorf("%w: username does not match the session", ErrValidation)
	}

	switch cmd.Kind {
	case CommandSendMessage:
		return h.sendMessage(sess, cmd)
	case CommandGetMessages:
		return h.getMessages(sess, cmd)
	case CommandTypingStart, CommandTypingStop:
		return h.typing(sess, cmd)
	case CommandUpdateStatus:
		return h.updateStatus(sess, cmd)
	case CommandSwitchChannel:
		return h.switchChannel(sess, cmd)
	default:
		return fmt.Errorf("%w: unknown command", ErrValidation)
	}
}

func (h *Hub) joinChat(c *Client, cmd *Command) error {
	id := Canonical(cmd.Username)
	if id == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if sess, ok := h.registry.Lookup(c.ID); ok {
		return fmt.Errorf("%w: connection is already joined as %s", ErrAlreadyJoined, sess.Identity)
	}

	servers := h.acl.AccessibleServers(id)
	if len(servers) == 0 {
		return ErrNoAccess
	}
	if _, live := h.registry.Get(id); live && h.policy == PolicyReject {
		return fmt.Errorf("%w: %s is connected elsewhere", ErrAlreadyJoined, id)
	}

	sess, superseded, err := h.registry.Register(id, c.ID)
	if err != nil {
		return err
	}
	if superseded != nil {
		h.evict(*superseded)
	} else {
		h.rec.SessionStarted()
	}
	h.router.Join(c.ID, sess.ServerID, sess.ChannelID)

	h.log.Info().
		Str("client_id", string(c.ID)).
		Str("user", string(id)).
		Str("server_id", sess.ServerID).
		Int("servers", len(servers)).
		Msg("user joined")

	h.router.Broadcast(GlobalScope(), &Event{Kind: EventUserJoined, User: id})
	h.router.Broadcast(GlobalScope(), h.usersUpdate())
	h.router.Send(c.ID, &Event{Kind: EventServersData, Servers: servers})
	h.router.Send(c.ID, &Event{Kind: EventUserPermissions, Servers: servers})
	return nil
}

// evict detaches a superseded session's connection from its rooms. The
// connection stays attached and may join again.
func (h *Hub) evict(prev Session) {
	h.router.LeaveAll(prev.Conn)
	h.purgeTyping(prev.Identity)
	h.log.Info().Str("client_id", string(prev.Conn)).Str("user", string(prev.Identity)).Msg("session superseded")
	h.router.Send(prev.Conn, &Event{Kind: EventSessionSuperseded, User: prev.Identity})
}

func (h *Hub) sendMessage(sess Session, cmd *Command) error {
	ref, err := h.resolve(sess, cmd.ServerID, cmd.ChannelID)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if !h.acl.CanPost(sess.Identity, ref.ServerID, ref.ChannelID) {
		return fmt.Errorf("%w: you cannot post in %s/%s", ErrAccessDenied, ref.ServerID, ref.ChannelID)
	}

	msg := h.store.Append(ref.ServerID, ref.ChannelID, sess.Identity, text)
	h.rec.MessageStored(ref.ServerID)
	h.router.Broadcast(ChannelScope(ref.ServerID, ref.ChannelID), &Event{
		Kind:      EventNewMessage,
		User:      sess.Identity,
		ServerID:  ref.ServerID,
		ChannelID: ref.ChannelID,
		Message:   msg,
	})
	return nil
}

func (h *Hub) getMessages(sess Session, cmd *Command) error {
	ref, err := h.resolve(sess, cmd.ServerID, cmd.ChannelID)
	if err != nil {
		return err
	}
	h.router.Send(sess.Conn, &Event{
		Kind:      EventMessagesHistory,
		ServerID:  ref.ServerID,
		ChannelID: ref.ChannelID,
		Messages:  h.store.History(ref.ServerID, ref.ChannelID),
	})
	return nil
}

func (h *Hub) typing(sess Session, cmd *Command) error {
	ref, err := h.resolve(sess, cmd.ServerID, cmd.ChannelID)
	if err != nil {
		return err
	}

	kind := EventTypingStart
	var changed bool
	if cmd.Kind == CommandTypingStart {
		if !h.acl.CanPost(sess.Identity, ref.ServerID, ref.ChannelID) {
			return fmt.Errorf("%w: you cannot post in %s/%s", ErrAccessDenied, ref.ServerID, ref.ChannelID)
		}
		changed = h.presence.Start(sess.Identity, ref.ServerID, ref.ChannelID)
	} else {
		kind = EventTypingStop
		changed = h.presence.Stop(sess.Identity, ref.ServerID, ref.ChannelID)
	}
	if changed {
		h.router.Broadcast(ChannelScope(ref.ServerID, ref.ChannelID), &Event{
			Kind:      kind,
			User:      sess.Identity,
			ServerID:  ref.ServerID,
			ChannelID: ref.ChannelID,
		})
	}
	return nil
}

func (h *Hub) updateStatus(sess Session, cmd *Command) error {
	status, err := ParseStatus(cmd.Status)
	if err != nil {
		return err
	}
	status, err = h.registry.SetStatus(sess.Identity, status)
	if err != nil {
		return err
	}
	h.router.Broadcast(GlobalScope(), &Event{Kind: EventUserStatusUpdate, User: sess.Identity, Status: status})
	return nil
}

func (h *Hub) switchChannel(sess Session, cmd *Command) error {
	if cmd.ServerID == "" || cmd.ChannelID == "" {
		return fmt.Errorf("%w: serverId and channelId are required", ErrValidation)
	}
	to, err := h.resolve(sess, cmd.ServerID, cmd.ChannelID)
	if err != nil {
		return err
	}

	from := sess.Location()
	if from != to {
		h.router.SwitchRoom(sess.Conn, from.ServerID, from.ChannelID, to.ServerID, to.ChannelID)
		if err := h.registry.UpdateLocation(sess.Identity, to.ServerID, to.ChannelID); err != nil {
			return err
		}
		if h.presence.Stop(sess.Identity, from.ServerID, from.ChannelID) {
			h.router.Broadcast(ChannelScope(from.ServerID, from.ChannelID), &Event{
				Kind:      EventTypingStop,
				User:      sess.Identity,
				ServerID:  from.ServerID,
				ChannelID: from.ChannelID,
			})
		}
	}

	h.router.Send(sess.Conn, &Event{
		Kind:      EventChannelSwitched,
		User:      sess.Identity,
		ServerID:  to.ServerID,
		ChannelID: to.ChannelID,
	})
	return nil
}

// resolve fills in the session's location for omitted ids and checks that the
// server exists, the identity belongs to it, and the channel exists.
func (h *Hub) resolve(sess Session, serverID, channelID string) (ChannelRef, error) {
	switch {
	case serverID == "" && channelID == "":
		serverID, channelID = sess.ServerID, sess.ChannelID
	case serverID == "":
		serverID = sess.ServerID
	}

	srv, ok := h.acl.Server(serverID)
	if !ok {
		return ChannelRef{}, fmt.Errorf("%w: server %q", ErrNotFound, serverID)
	}
	if !h.acl.HasAccess(sess.Identity, serverID) {
		return ChannelRef{}, fmt.Errorf("%w: no access to server %q", ErrAccessDenied, serverID)
	}
	if channelID == "" {
		channelID = defaultChannel(srv)
	}
	if _, err := h.acl.Channel(serverID, channelID); err != nil {
		return ChannelRef{}, err
	}
	return ChannelRef{ServerID: serverID, ChannelID: channelID}, nil
}

func (h *Hub) purgeTyping(id Identity) {
	for _, ref := range h.presence.PurgeIdentity(id) {
		h.router.Broadcast(ChannelScope(ref.ServerID, ref.ChannelID), &Event{
			Kind:      EventTypingStop,
			User:      id,
			ServerID:  ref.ServerID,
			ChannelID: ref.ChannelID,
		})
	}
}

func (h *Hub) usersUpdate() *Event {
	return &Event{Kind: EventUsersUpdate, Users: h.registry.ListOnline()}
}
