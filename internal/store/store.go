// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the single source of truth for conversation state.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/palaver-tui/internal/model"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the single mutable structure of the chat core. All mutation
// methods are synchronous and atomic: an observer never sees a half-applied
// change. Notifications fire after the lock is released so observers may
// call back into the store.
type Store struct {
	mu sync.Mutex

	viewerID string

	conversations map[string]*model.Conversation
	byPeer        map[string]string // peer id -> conversation id
	pendingSends  map[string]string // temp message id -> conversation id

	focusedID string
	seq       uint64

	subs    map[int]func(Event)
	nextSub int
}

// SendOutcome is the authoritative result of a send attempt, produced by
// the transport.
type SendOutcome struct {
	ServerID  string
	Timestamp time.Time
	MediaRef  string
	Err       error
}

// New creates an empty store for the given viewer.
func New(viewerID string) *Store {
	return &Store{
		viewerID:      viewerID,
		conversations: make(map[string]*model.Conversation),
		byPeer:        make(map[string]string),
		pendingSends:  make(map[string]string),
		subs:          make(map[int]func(Event)),
	}
}

// ViewerID returns the identity the store was built for.
func (s *Store) ViewerID() string {
	return s.viewerID
}

// =============================================================================
// OBSERVERS
// =============================================================================

// Subscribe registers a change observer and returns an unsubscribe func.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notify delivers events after the caller released the lock.
func (s *Store) notify(events []Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// =============================================================================
// OPTIMISTIC SEND / RECONCILIATION
// =============================================================================

// ApplyOptimisticSend appends a pending message for the intent, creating the
// conversation if this is the first message to that peer. It returns the
// temporary record so the caller can reconcile later.
func (s *Store) ApplyOptimisticSend(intent model.SendIntent) *model.Message {
	s.mu.Lock()

	conv, created := s.conversationForIntent(intent)

	msg := model.NewPendingMessage(conv.ID, s.viewerID, conv.Peer.ID, intent.Kind, intent.Body)
	msg.ReplyTo = intent.ReplyTo
	if intent.Attachment != nil {
		msg.Duration = intent.Attachment.Duration
	}
	s.seq++
	msg.Seq = s.seq
	conv.AddMessage(msg)
	s.pendingSends[msg.ID] = conv.ID

	events := make([]Event, 0, 2)
	if created {
		events = append(events, Event{Kind: EventConversationAdded, ConversationID: conv.ID})
	}
	events = append(events, Event{Kind: EventMessageAdded, ConversationID: conv.ID, MessageID: msg.ID})
	s.mu.Unlock()

	s.notify(events)
	return msg
}

// ReconcileSend resolves an optimistic send by its temporary id. Success
// swaps in the permanent identity in place (same record, re-sorted if the
// server timestamp moved it); failure marks the record failed in place. A
// temp id no longer present — e.g. discarded locally — is a no-op.
func (s *Store) ReconcileSend(tempID string, outcome SendOutcome) {
	s.mu.Lock()

	convID, ok := s.pendingSends[tempID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pendingSends, tempID)

	conv := s.conversations[convID]
	if conv == nil {
		s.mu.Unlock()
		return
	}
	msg := conv.MessageByID(tempID)
	if msg == nil {
		s.mu.Unlock()
		return
	}

	var events []Event
	switch {
	case outcome.Err != nil:
		msg.AdvanceDelivery(model.DeliveryFailed)
		events = append(events, Event{Kind: EventMessageUpdated, ConversationID: convID, MessageID: tempID})

	case conv.MessageByID(outcome.ServerID) != nil:
		// The broadcast beat the acknowledgement; the confirmed record is
		// already present. Drop the temp so the message never duplicates.
		conv.RemoveMessage(tempID)
		events = append(events, Event{Kind: EventMessageRemoved, ConversationID: convID, MessageID: tempID})

	default:
		msg.ID = outcome.ServerID
		msg.Pending = false
		if !outcome.Timestamp.IsZero() {
			msg.CreatedAt = outcome.Timestamp
		}
		if outcome.MediaRef != "" {
			msg.MediaRef = outcome.MediaRef
		}
		msg.AdvanceDelivery(model.DeliverySent)
		conv.Resort()
		events = append(events, Event{Kind: EventMessageUpdated, ConversationID: convID, MessageID: msg.ID})
	}

	s.mu.Unlock()
	s.notify(events)
}

// RetryFailed removes a failed message and returns an equivalent intent for
// re-submission. Returns false when the id is not a failed local send.
func (s *Store) RetryFailed(messageID string) (model.SendIntent, bool) {
	s.mu.Lock()

	conv, msg := s.findMessage(messageID)
	if msg == nil || msg.Delivery != model.DeliveryFailed || msg.Sender != s.viewerID {
		s.mu.Unlock()
		return model.SendIntent{}, false
	}

	intent := model.SendIntent{
		ConversationID: conv.ID,
		Receiver:       msg.Receiver,
		Kind:           msg.Kind,
		Body:           msg.Body,
		ReplyTo:        msg.ReplyTo,
	}
	conv.RemoveMessage(messageID)
	events := []Event{{Kind: EventMessageRemoved, ConversationID: conv.ID, MessageID: messageID}}
	s.mu.Unlock()

	s.notify(events)
	return intent, true
}

// DiscardFailed drops a failed local send the user chose not to retry.
func (s *Store) DiscardFailed(messageID string) bool {
	s.mu.Lock()
	conv, msg := s.findMessage(messageID)
	if msg == nil || msg.Delivery != model.DeliveryFailed {
		s.mu.Unlock()
		return false
	}
	conv.RemoveMessage(messageID)
	events := []Event{{Kind: EventMessageRemoved, ConversationID: conv.ID, MessageID: messageID}}
	s.mu.Unlock()

	s.notify(events)
	return true
}

// =============================================================================
// INBOUND EVENTS
// =============================================================================

// ApplyInbound appends a message delivered by the transport, creating the
// owning conversation for an unseen peer. Unread count bumps unless the
// conversation is focused. Redelivery of a known id is a no-op.
func (s *Store) ApplyInbound(msg *model.Message) {
	if msg == nil {
		return
	}
	s.mu.Lock()

	conv := s.conversations[msg.ConversationID]
	created := false
	if conv == nil {
		peerID := msg.Sender
		if peerID == s.viewerID {
			peerID = msg.Receiver
		}
		if id, ok := s.byPeer[peerID]; ok {
			conv = s.conversations[id]
			// Adopt the server's conversation id for a locally-created chat.
			delete(s.conversations, conv.ID)
			conv.ID = msg.ConversationID
			s.conversations[conv.ID] = conv
			s.byPeer[peerID] = conv.ID
			s.reindexPending(conv)
		} else {
			conv = model.NewConversation(model.Peer{ID: peerID, Name: peerID})
			conv.ID = msg.ConversationID
			s.conversations[conv.ID] = conv
			s.byPeer[peerID] = conv.ID
			created = true
		}
	}

	if conv.MessageByID(msg.ID) != nil {
		s.mu.Unlock()
		return
	}

	s.seq++
	msg.Seq = s.seq
	conv.AddMessage(msg)

	events := make([]Event, 0, 3)
	if created {
		events = append(events, Event{Kind: EventConversationAdded, ConversationID: conv.ID})
	}
	events = append(events, Event{Kind: EventMessageAdded, ConversationID: conv.ID, MessageID: msg.ID})

	if msg.Sender != s.viewerID && s.focusedID != conv.ID {
		conv.UnreadCount++
		events = append(events, Event{Kind: EventUnreadChanged, ConversationID: conv.ID})
	}
	s.mu.Unlock()

	s.notify(events)
}

// ApplyReaction upserts a (user, emoji) pair on the target message.
func (s *Store) ApplyReaction(messageID, userID, emoji string) {
	s.mu.Lock()
	conv, msg := s.findMessage(messageID)
	if msg == nil {
		s.mu.Unlock()
		return
	}
	msg.SetReaction(userID, emoji)
	events := []Event{{Kind: EventMessageUpdated, ConversationID: conv.ID, MessageID: messageID}}
	s.mu.Unlock()

	s.notify(events)
}

// ApplyEdit mutates a message body in place. Position and timestamp are
// unchanged; only the edited flag flips.
func (s *Store) ApplyEdit(messageID, newBody string) {
	s.mu.Lock()
	conv, msg := s.findMessage(messageID)
	if msg == nil || msg.Body == newBody {
		s.mu.Unlock()
		return
	}
	msg.Body = newBody
	msg.IsEdited = true
	events := []Event{{Kind: EventMessageUpdated, ConversationID: conv.ID, MessageID: messageID}}
	s.mu.Unlock()

	s.notify(events)
}

// ApplyDelete removes a message from its conversation. Messages replying to
// it are not touched; their references dangle and render as unavailable.
func (s *Store) ApplyDelete(messageID string) {
	s.mu.Lock()
	conv, msg := s.findMessage(messageID)
	if msg == nil {
		s.mu.Unlock()
		return
	}
	conv.RemoveMessage(messageID)
	delete(s.pendingSends, messageID)
	events := []Event{{Kind: EventMessageRemoved, ConversationID: conv.ID, MessageID: messageID}}
	s.mu.Unlock()

	s.notify(events)
}

// ApplyReceipt advances delivery state for a message the viewer sent.
func (s *Store) ApplyReceipt(messageID string, state model.DeliveryState) {
	s.mu.Lock()
	conv, msg := s.findMessage(messageID)
	if msg == nil || msg.Sender != s.viewerID || !msg.AdvanceDelivery(state) {
		s.mu.Unlock()
		return
	}
	events := []Event{{Kind: EventMessageUpdated, ConversationID: conv.ID, MessageID: messageID}}
	s.mu.Unlock()

	s.notify(events)
}

// SetTyping sets the transient typing flag. The timeout that clears a stale
// flag is owned by the layer feeding this method, not by the store.
func (s *Store) SetTyping(conversationID string, typing bool) {
	s.mu.Lock()
	conv := s.conversations[conversationID]
	if conv == nil || conv.IsTyping == typing {
		s.mu.Unlock()
		return
	}
	conv.IsTyping = typing
	events := []Event{{Kind: EventTypingChanged, ConversationID: conversationID}}
	s.mu.Unlock()

	s.notify(events)
}

// SetPresence updates a peer's online state and last-active time.
func (s *Store) SetPresence(peerID string, online bool, lastActive time.Time) {
	s.mu.Lock()
	convID, ok := s.byPeer[peerID]
	if !ok {
		s.mu.Unlock()
		return
	}
	conv := s.conversations[convID]
	conv.Peer.Online = online
	if !lastActive.IsZero() {
		conv.Peer.LastActive = lastActive
	}
	events := []Event{{Kind: EventPresenceChanged, ConversationID: convID}}
	s.mu.Unlock()

	s.notify(events)
}

// RemoveConversation drops a conversation once the service acknowledged its
// deletion. Local state never hard-deletes on its own.
func (s *Store) RemoveConversation(conversationID string) {
	s.mu.Lock()
	conv := s.conversations[conversationID]
	if conv == nil {
		s.mu.Unlock()
		return
	}
	delete(s.conversations, conversationID)
	delete(s.byPeer, conv.Peer.ID)
	for tempID, cid := range s.pendingSends {
		if cid == conversationID {
			delete(s.pendingSends, tempID)
		}
	}
	if s.focusedID == conversationID {
		s.focusedID = ""
	}
	events := []Event{{Kind: EventConversationRemoved, ConversationID: conversationID}}
	s.mu.Unlock()

	s.notify(events)
}

// =============================================================================
// FOCUS / VIEW STATE
// =============================================================================

// Focus marks a conversation as the one on screen and resets its unread
// count. Historical per-message delivery states are receiver-reported and
// not rewritten here.
func (s *Store) Focus(conversationID string) {
	s.mu.Lock()
	conv := s.conversations[conversationID]
	if conv == nil {
		s.mu.Unlock()
		return
	}
	s.focusedID = conversationID
	var events []Event
	if conv.UnreadCount != 0 {
		conv.UnreadCount = 0
		events = append(events, Event{Kind: EventUnreadChanged, ConversationID: conversationID})
	}
	s.mu.Unlock()

	s.notify(events)
}

// Blur clears the focused conversation.
func (s *Store) Blur() {
	s.mu.Lock()
	s.focusedID = ""
	s.mu.Unlock()
}

// FocusedID returns the focused conversation id, or "".
func (s *Store) FocusedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusedID
}

// SetMuted flips the local mute preference.
func (s *Store) SetMuted(conversationID string, muted bool) {
	s.mu.Lock()
	if conv := s.conversations[conversationID]; conv != nil {
		conv.IsMuted = muted
	}
	s.mu.Unlock()
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Conversation returns a conversation by id, or nil.
func (s *Store) Conversation(id string) *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations[id]
}

// ConversationForPeer returns the conversation with a peer, or nil.
func (s *Store) ConversationForPeer(peerID string) *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPeer[peerID]; ok {
		return s.conversations[id]
	}
	return nil
}

// Conversations returns all conversations, most recently active first.
func (s *Store) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// TotalUnread sums unread counts across unmuted conversations.
func (s *Store) TotalUnread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, conv := range s.conversations {
		if !conv.IsMuted {
			total += conv.UnreadCount
		}
	}
	return total
}

// =============================================================================
// HELPERS
// =============================================================================

// conversationForIntent resolves or creates the conversation a send intent
// targets. Caller holds the lock.
func (s *Store) conversationForIntent(intent model.SendIntent) (*model.Conversation, bool) {
	if intent.ConversationID != "" {
		if conv := s.conversations[intent.ConversationID]; conv != nil {
			return conv, false
		}
	}
	if id, ok := s.byPeer[intent.Receiver]; ok {
		return s.conversations[id], false
	}
	conv := model.NewConversation(model.Peer{ID: intent.Receiver, Name: intent.Receiver})
	s.conversations[conv.ID] = conv
	s.byPeer[intent.Receiver] = conv.ID
	return conv, true
}

// findMessage locates a message across conversations. Caller holds the lock.
func (s *Store) findMessage(messageID string) (*model.Conversation, *model.Message) {
	for _, conv := range s.conversations {
		if msg := conv.MessageByID(messageID); msg != nil {
			return conv, msg
		}
	}
	return nil, nil
}

// reindexPending rewrites pending-send entries after a conversation id
// changed. Caller holds the lock.
func (s *Store) reindexPending(conv *model.Conversation) {
	for tempID := range s.pendingSends {
		if conv.MessageByID(tempID) != nil {
			s.pendingSends[tempID] = conv.ID
		}
	}
}
