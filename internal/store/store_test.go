// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the single source of truth for conversation state.
package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/palaver-tui/internal/model"
)

// sendText runs an optimistic send and returns the pending record.
func sendText(s *Store, peer, body string) *model.Message {
	return s.ApplyOptimisticSend(model.SendIntent{
		Receiver: peer,
		Kind:     model.KindText,
		Body:     body,
	})
}

// =============================================================================
// OPTIMISTIC SEND TESTS
// =============================================================================

func TestApplyOptimisticSend_CreatesConversation(t *testing.T) {
	s := New("me")

	msg := sendText(s, "maria", "hola")
	require.True(t, msg.Pending)
	require.True(t, model.IsTempID(msg.ID))
	require.Equal(t, model.DeliverySending, msg.Delivery)

	conv := s.ConversationForPeer("maria")
	require.NotNil(t, conv)
	require.Equal(t, 1, conv.MessageCount())
	require.Same(t, msg, conv.Messages[0])

	// Second send reuses the conversation.
	sendText(s, "maria", "que tal")
	require.Len(t, s.Conversations(), 1)
	require.Equal(t, 2, conv.MessageCount())
}

func TestReconcileSend_Success(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")
	tempID := msg.ID

	serverTime := time.Now().Add(time.Second)
	s.ReconcileSend(tempID, SendOutcome{ServerID: "msg_1", Timestamp: serverTime})

	conv := s.ConversationForPeer("maria")
	require.Nil(t, conv.MessageByID(tempID), "temp id must be gone")

	got := conv.MessageByID("msg_1")
	require.NotNil(t, got)
	require.Same(t, msg, got, "identity swaps in place, no new record")
	require.False(t, got.Pending)
	require.Equal(t, model.DeliverySent, got.Delivery)
	require.True(t, got.CreatedAt.Equal(serverTime))
	require.Equal(t, 1, conv.MessageCount(), "never duplicates")
}

func TestReconcileSend_Failure(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")

	s.ReconcileSend(msg.ID, SendOutcome{Err: errors.New("boom")})

	conv := s.ConversationForPeer("maria")
	got := conv.MessageByID(msg.ID)
	require.NotNil(t, got, "failed message stays visible")
	require.Equal(t, model.DeliveryFailed, got.Delivery)
	require.Equal(t, "hola", got.Body, "content unchanged")
	require.Equal(t, 1, conv.MessageCount())
}

func TestReconcileSend_UnknownTempIDIsNoOp(t *testing.T) {
	s := New("me")
	sendText(s, "maria", "hola")

	// A confirmation for a message we never tracked (or already discarded)
	// must not touch anything.
	s.ReconcileSend("tmp_unknown", SendOutcome{ServerID: "msg_9"})

	conv := s.ConversationForPeer("maria")
	require.Equal(t, 1, conv.MessageCount())
	require.Nil(t, conv.MessageByID("msg_9"))
}

func TestReconcileSend_BroadcastBeatsAck(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")
	conv := s.ConversationForPeer("maria")

	// The server's broadcast of our own message lands before the ack.
	s.ApplyInbound(&model.Message{
		ID:             "msg_1",
		ConversationID: conv.ID,
		Sender:         "me",
		Receiver:       "maria",
		Kind:           model.KindText,
		Body:           "hola",
		Delivery:       model.DeliverySent,
		CreatedAt:      time.Now(),
	})
	require.Equal(t, 2, conv.MessageCount())

	s.ReconcileSend(msg.ID, SendOutcome{ServerID: "msg_1"})

	require.Equal(t, 1, conv.MessageCount(), "temp dropped, confirmed kept")
	require.NotNil(t, conv.MessageByID("msg_1"))
	require.Nil(t, conv.MessageByID(msg.ID))
}

func TestReconcileSend_AfterDiscardIsNoOp(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")
	s.ReconcileSend(msg.ID, SendOutcome{Err: errors.New("boom")})
	require.True(t, s.DiscardFailed(msg.ID))

	// Late confirmation for the discarded temp does nothing.
	s.ReconcileSend(msg.ID, SendOutcome{ServerID: "msg_1"})
	require.Equal(t, 0, s.ConversationForPeer("maria").MessageCount())
}

// =============================================================================
// RETRY / DISCARD TESTS
// =============================================================================

func TestRetryFailed(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")
	s.ReconcileSend(msg.ID, SendOutcome{Err: errors.New("boom")})

	intent, ok := s.RetryFailed(msg.ID)
	require.True(t, ok)
	require.Equal(t, "hola", intent.Body)
	require.Equal(t, "maria", intent.Receiver)
	require.Equal(t, 0, s.ConversationForPeer("maria").MessageCount(), "failed record removed for re-send")

	// Only failed local sends can be retried.
	other := sendText(s, "maria", "otra")
	_, ok = s.RetryFailed(other.ID)
	require.False(t, ok, "still-sending message is not retryable")
}

func TestDiscardFailed_OnlyFailed(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")

	require.False(t, s.DiscardFailed(msg.ID), "pending message cannot be discarded")

	s.ReconcileSend(msg.ID, SendOutcome{Err: errors.New("boom")})
	require.True(t, s.DiscardFailed(msg.ID))
	require.False(t, s.DiscardFailed(msg.ID), "second discard is a no-op")
}

// =============================================================================
// ORDERING TESTS
// =============================================================================

func TestOrdering_ServerTimestampMovesMessage(t *testing.T) {
	s := New("me")
	base := time.Now()

	first := sendText(s, "maria", "first")
	second := sendText(s, "maria", "second")
	conv := s.ConversationForPeer("maria")

	// Server stamps the first send after the second.
	s.ReconcileSend(second.ID, SendOutcome{ServerID: "msg_2", Timestamp: base.Add(time.Second)})
	s.ReconcileSend(first.ID, SendOutcome{ServerID: "msg_1", Timestamp: base.Add(2 * time.Second)})

	require.Equal(t, "msg_2", conv.Messages[0].ID)
	require.Equal(t, "msg_1", conv.Messages[1].ID)
}

func TestOrdering_StableForEqualTimestamps(t *testing.T) {
	s := New("me")
	ts := time.Now()

	a := sendText(s, "maria", "a")
	b := sendText(s, "maria", "b")
	conv := s.ConversationForPeer("maria")

	s.ReconcileSend(a.ID, SendOutcome{ServerID: "msg_a", Timestamp: ts})
	s.ReconcileSend(b.ID, SendOutcome{ServerID: "msg_b", Timestamp: ts})

	require.Equal(t, "msg_a", conv.Messages[0].ID, "insertion order breaks the tie")
	require.Equal(t, "msg_b", conv.Messages[1].ID)
}

// =============================================================================
// INBOUND TESTS
// =============================================================================

func TestApplyInbound_NewPeerCreatesConversation(t *testing.T) {
	s := New("me")

	s.ApplyInbound(&model.Message{
		ID:             "msg_1",
		ConversationID: "conv_srv",
		Sender:         "maria",
		Receiver:       "me",
		Kind:           model.KindText,
		Body:           "hola",
		CreatedAt:      time.Now(),
	})

	conv := s.Conversation("conv_srv")
	require.NotNil(t, conv)
	require.Equal(t, "maria", conv.Peer.ID)
	require.Equal(t, 1, conv.UnreadCount)
}

func TestApplyInbound_RedeliveryIsNoOp(t *testing.T) {
	s := New("me")
	msg := &model.Message{
		ID: "msg_1", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "hola", CreatedAt: time.Now(),
	}
	s.ApplyInbound(msg)
	s.ApplyInbound(msg)

	conv := s.Conversation("conv_srv")
	require.Equal(t, 1, conv.MessageCount())
	require.Equal(t, 1, conv.UnreadCount, "redelivery must not bump unread")
}

func TestApplyInbound_AdoptsServerConversationID(t *testing.T) {
	s := New("me")
	pending := sendText(s, "maria", "hola")
	local := s.ConversationForPeer("maria")
	localID := local.ID

	// First inbound for the peer carries the server's conversation id.
	s.ApplyInbound(&model.Message{
		ID: "msg_1", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "hola tu", CreatedAt: time.Now(),
	})

	require.Nil(t, s.Conversation(localID), "local id replaced")
	conv := s.Conversation("conv_srv")
	require.NotNil(t, conv)
	require.Equal(t, 2, conv.MessageCount())

	// Reconciliation still finds the pending send after the adoption.
	s.ReconcileSend(pending.ID, SendOutcome{ServerID: "msg_2"})
	require.NotNil(t, conv.MessageByID("msg_2"))
	require.Nil(t, conv.MessageByID(pending.ID))
}

// =============================================================================
// REACTION / EDIT / DELETE TESTS
// =============================================================================

func TestApplyReaction(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")
	s.ReconcileSend(msg.ID, SendOutcome{ServerID: "msg_1"})

	s.ApplyReaction("msg_1", "maria", "👍")
	require.Equal(t, "👍", msg.ReactionFor("maria"))

	// Unknown target is ignored.
	s.ApplyReaction("msg_missing", "maria", "👍")
}

func TestApplyEdit_KeepsPositionAndTimestamp(t *testing.T) {
	s := New("me")
	base := time.Now()
	a := sendText(s, "maria", "first")
	b := sendText(s, "maria", "second")
	conv := s.ConversationForPeer("maria")
	s.ReconcileSend(a.ID, SendOutcome{ServerID: "msg_a", Timestamp: base})
	s.ReconcileSend(b.ID, SendOutcome{ServerID: "msg_b", Timestamp: base.Add(time.Second)})

	s.ApplyEdit("msg_a", "first (fixed)")

	got := conv.MessageByID("msg_a")
	require.Equal(t, "first (fixed)", got.Body)
	require.True(t, got.IsEdited)
	require.True(t, got.CreatedAt.Equal(base), "edit never re-dates")
	require.Equal(t, "msg_a", conv.Messages[0].ID, "edit never re-orders")
}

func TestApplyDelete_LeavesRepliesDangling(t *testing.T) {
	s := New("me")
	a := sendText(s, "maria", "original")
	s.ReconcileSend(a.ID, SendOutcome{ServerID: "msg_a"})
	conv := s.ConversationForPeer("maria")

	reply := s.ApplyOptimisticSend(model.SendIntent{
		Receiver: "maria", Kind: model.KindText, Body: "re", ReplyTo: "msg_a",
	})
	s.ReconcileSend(reply.ID, SendOutcome{ServerID: "msg_b"})

	s.ApplyDelete("msg_a")

	require.Nil(t, conv.MessageByID("msg_a"))
	got := conv.MessageByID("msg_b")
	require.NotNil(t, got, "replying message survives")
	require.Equal(t, "msg_a", got.ReplyTo, "reference dangles, not cleared")
}

// =============================================================================
// RECEIPT TESTS
// =============================================================================

func TestApplyReceipt(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")
	s.ReconcileSend(msg.ID, SendOutcome{ServerID: "msg_1"})

	s.ApplyReceipt("msg_1", model.DeliveryRead)
	require.Equal(t, model.DeliveryRead, msg.Delivery)

	// Regression ignored.
	s.ApplyReceipt("msg_1", model.DeliveryDelivered)
	require.Equal(t, model.DeliveryRead, msg.Delivery)
}

func TestApplyReceipt_OnlyOwnMessages(t *testing.T) {
	s := New("me")
	s.ApplyInbound(&model.Message{
		ID: "msg_1", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "hola", CreatedAt: time.Now(),
	})

	s.ApplyReceipt("msg_1", model.DeliveryRead)
	got := s.Conversation("conv_srv").MessageByID("msg_1")
	require.NotEqual(t, model.DeliveryRead, got.Delivery, "peer messages keep their state")
}

// =============================================================================
// UNREAD / FOCUS TESTS
// =============================================================================

func TestUnread_FocusedConversationNeverAccumulates(t *testing.T) {
	s := New("me")
	s.ApplyInbound(&model.Message{
		ID: "msg_1", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "uno", CreatedAt: time.Now(),
	})
	require.Equal(t, 1, s.TotalUnread())

	s.Focus("conv_srv")
	require.Equal(t, 0, s.TotalUnread(), "focusing clears unread")

	s.ApplyInbound(&model.Message{
		ID: "msg_2", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "dos", CreatedAt: time.Now(),
	})
	require.Equal(t, 0, s.TotalUnread(), "focused conversation stays read")

	s.Blur()
	s.ApplyInbound(&model.Message{
		ID: "msg_3", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "tres", CreatedAt: time.Now(),
	})
	require.Equal(t, 1, s.TotalUnread())
}

func TestTotalUnread_SkipsMuted(t *testing.T) {
	s := New("me")
	s.ApplyInbound(&model.Message{
		ID: "msg_1", ConversationID: "conv_a",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "a", CreatedAt: time.Now(),
	})
	s.ApplyInbound(&model.Message{
		ID: "msg_2", ConversationID: "conv_b",
		Sender: "jo", Receiver: "me",
		Kind: model.KindText, Body: "b", CreatedAt: time.Now(),
	})
	require.Equal(t, 2, s.TotalUnread())

	s.SetMuted("conv_a", true)
	require.Equal(t, 1, s.TotalUnread())
}

// =============================================================================
// TYPING / PRESENCE TESTS
// =============================================================================

func TestSetTyping(t *testing.T) {
	s := New("me")
	s.ApplyInbound(&model.Message{
		ID: "msg_1", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "hola", CreatedAt: time.Now(),
	})

	var events []Event
	unsub := s.Subscribe(func(ev Event) { events = append(events, ev) })
	defer unsub()

	s.SetTyping("conv_srv", true)
	require.True(t, s.Conversation("conv_srv").IsTyping)
	require.Len(t, events, 1)

	// Same value again is silent.
	s.SetTyping("conv_srv", true)
	require.Len(t, events, 1)

	s.SetTyping("conv_srv", false)
	require.False(t, s.Conversation("conv_srv").IsTyping)
}

func TestSetPresence(t *testing.T) {
	s := New("me")
	s.ApplyInbound(&model.Message{
		ID: "msg_1", ConversationID: "conv_srv",
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "hola", CreatedAt: time.Now(),
	})

	at := time.Now().Add(-time.Minute)
	s.SetPresence("maria", true, at)

	conv := s.Conversation("conv_srv")
	require.True(t, conv.Peer.Online)
	require.True(t, conv.Peer.LastActive.Equal(at))

	// Unknown peer is ignored.
	s.SetPresence("nobody", true, at)
}

// =============================================================================
// REMOVE CONVERSATION TESTS
// =============================================================================

func TestRemoveConversation(t *testing.T) {
	s := New("me")
	msg := sendText(s, "maria", "hola")
	conv := s.ConversationForPeer("maria")
	s.Focus(conv.ID)

	s.RemoveConversation(conv.ID)

	require.Nil(t, s.Conversation(conv.ID))
	require.Nil(t, s.ConversationForPeer("maria"))
	require.Equal(t, "", s.FocusedID())

	// Late ack for the orphaned pending send is dropped.
	s.ReconcileSend(msg.ID, SendOutcome{ServerID: "msg_1"})
	require.Empty(t, s.Conversations())
}

// =============================================================================
// OBSERVER TESTS
// =============================================================================

func TestSubscribe_EventsAndUnsubscribe(t *testing.T) {
	s := New("me")
	var kinds []EventKind
	unsub := s.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	sendText(s, "maria", "hola")
	require.Equal(t, []EventKind{EventConversationAdded, EventMessageAdded}, kinds)

	unsub()
	sendText(s, "maria", "que tal")
	require.Len(t, kinds, 2, "unsubscribed observer stays silent")
}

func TestNotify_ObserverMayReenterStore(t *testing.T) {
	s := New("me")
	done := make(chan struct{})
	var unsub func()
	unsub = s.Subscribe(func(ev Event) {
		if ev.Kind == EventMessageAdded {
			// Re-entering the store from an observer must not deadlock.
			_ = s.TotalUnread()
			close(done)
			unsub()
		}
	})

	sendText(s, "maria", "hola")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("observer could not re-enter the store")
	}
}

// =============================================================================
// END-TO-END SCENARIO
// =============================================================================

// TestSendReplyReactScenario walks a full exchange: optimistic send,
// confirmation, inbound reply referencing the confirmed id, reaction, edit,
// and a delete that leaves the reply dangling.
func TestSendReplyReactScenario(t *testing.T) {
	s := New("me")

	// 1. Viewer sends; record is pending with a temp id.
	pending := sendText(s, "maria", "¿Cómo se dice 'apple'?")
	conv := s.ConversationForPeer("maria")
	require.True(t, pending.Pending)

	// 2. Server confirms with permanent id and timestamp.
	confirmedAt := time.Now()
	s.ReconcileSend(pending.ID, SendOutcome{ServerID: "msg_q", Timestamp: confirmedAt})
	require.False(t, pending.Pending)
	require.Equal(t, "msg_q", pending.ID)

	// 3. Peer replies, quoting the confirmed id.
	s.ApplyInbound(&model.Message{
		ID: "msg_r", ConversationID: conv.ID,
		Sender: "maria", Receiver: "me",
		Kind: model.KindText, Body: "Se dice 'manzana'",
		ReplyTo:   "msg_q",
		CreatedAt: confirmedAt.Add(time.Second),
	})
	require.Equal(t, 2, conv.MessageCount())
	require.Equal(t, 1, conv.UnreadCount)

	// 4. Viewer reacts to the reply.
	s.ApplyReaction("msg_r", "me", "🙏")
	require.Equal(t, "🙏", conv.MessageByID("msg_r").ReactionFor("me"))

	// 5. Peer edits the reply in place.
	s.ApplyEdit("msg_r", "Se dice 'manzana' 🍎")
	reply := conv.MessageByID("msg_r")
	require.True(t, reply.IsEdited)
	require.Equal(t, "msg_r", conv.Messages[1].ID, "position unchanged")

	// 6. Original question deleted; the reply's reference dangles.
	s.ApplyDelete("msg_q")
	require.Nil(t, conv.MessageByID("msg_q"))
	require.Equal(t, "msg_q", reply.ReplyTo)
}
