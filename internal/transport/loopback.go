// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport defines the collaborator contract with the remote service.
package transport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/palaver-tui/internal/model"
)

// =============================================================================
// LOOPBACK TRANSPORT
// =============================================================================

// Loopback is an in-process Transport used by offline mode and the tests.
// Sends are confirmed locally after an optional simulated latency, and an
// optional echo peer answers each text message so the client can be
// exercised without a backend.
//
// The outbound rate limiter mirrors the production client: a burst of quick
// sends is fine, sustained flooding is not.
type Loopback struct {
	mu sync.Mutex

	// Simulated behavior
	latency  time.Duration
	failNext int  // fail this many upcoming sends
	echoPeer bool // synthesize a reply for each text send

	limiter *rate.Limiter

	subscriber func(Event)
	closed     bool
}

// NewLoopback creates a loopback transport. With echoPeer set, every text
// send produces a typing burst and a reply from the receiver.
func NewLoopback(latency time.Duration, echoPeer bool) *Loopback {
	return &Loopback{
		latency:  latency,
		echoPeer: echoPeer,
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// FailNext makes the next n SendMessage calls fail with ErrSendRejected.
// Used by tests and the demo to exercise the failed-send path.
func (l *Loopback) FailNext(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = n
}

// =============================================================================
// OUTBOUND
// =============================================================================

// SendMessage confirms the intent locally with a generated id.
func (l *Loopback) SendMessage(ctx context.Context, intent model.SendIntent) (Confirmation, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Confirmation{}, err
	}
	if err := l.sleep(ctx); err != nil {
		return Confirmation{}, err
	}

	l.mu.Lock()
	if l.failNext > 0 {
		l.failNext--
		l.mu.Unlock()
		return Confirmation{}, ErrSendRejected
	}
	echo := l.echoPeer
	l.mu.Unlock()

	conf := Confirmation{
		MessageID:      "msg_" + uuid.NewString(),
		ConversationID: intent.ConversationID,
		Timestamp:      time.Now(),
		MediaRef:       intent.MediaRef, // handle minted by UploadMedia
	}

	if echo && intent.Kind == model.KindText {
		go l.echoReply(intent, conf)
	}
	return conf, nil
}

// SendEdit accepts every edit.
func (l *Loopback) SendEdit(ctx context.Context, intent model.EditIntent) error {
	return l.sleep(ctx)
}

// SendReaction accepts every reaction.
func (l *Loopback) SendReaction(ctx context.Context, conversationID, messageID, emoji string) error {
	return l.sleep(ctx)
}

// SendTyping drops typing signals; the echo peer has its own.
func (l *Loopback) SendTyping(ctx context.Context, conversationID string, typing bool) error {
	return nil
}

// SendRead accepts read reports.
func (l *Loopback) SendRead(ctx context.Context, conversationID string) error {
	return nil
}

// DeleteMessage acknowledges the delete by emitting a DeleteEvent, the same
// shape a real backend broadcast has.
func (l *Loopback) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	if err := l.sleep(ctx); err != nil {
		return err
	}
	l.emit(DeleteEvent{ConversationID: conversationID, MessageID: messageID})
	return nil
}

// UploadMedia fabricates an opaque ref for the local path.
func (l *Loopback) UploadMedia(ctx context.Context, path string) (string, error) {
	if err := l.sleep(ctx); err != nil {
		return "", err
	}
	return "loopback://" + path, nil
}

// =============================================================================
// INBOUND
// =============================================================================

// Subscribe registers the single event consumer. Delivery stops when the
// context is cancelled.
func (l *Loopback) Subscribe(ctx context.Context, onEvent func(Event)) error {
	l.mu.Lock()
	l.subscriber = onEvent
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		l.subscriber = nil
		l.mu.Unlock()
	}()
	return nil
}

// Inject delivers an arbitrary event to the subscriber. Tests use this to
// simulate the remote side.
func (l *Loopback) Inject(ev Event) {
	l.emit(ev)
}

// Close tears the loopback down.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.subscriber = nil
	return nil
}

// =============================================================================
// ECHO PEER
// =============================================================================

// echoReply synthesizes the remote side of a conversation: presence, a
// typing burst, then a reply referencing the confirmed message.
func (l *Loopback) echoReply(intent model.SendIntent, conf Confirmation) {
	convID := conf.ConversationID

	l.emit(PresenceEvent{PeerID: intent.Receiver, Online: true, LastActive: time.Now()})
	l.emit(TypingEvent{ConversationID: convID, PeerID: intent.Receiver, Typing: true})
	time.Sleep(600 * time.Millisecond)
	l.emit(TypingEvent{ConversationID: convID, PeerID: intent.Receiver, Typing: false})

	reply := &model.Message{
		ID:             "msg_" + uuid.NewString(),
		ConversationID: convID,
		Sender:         intent.Receiver,
		Kind:           model.KindText,
		Body:           echoBody(intent.Body),
		ReplyTo:        conf.MessageID,
		Delivery:       model.DeliveryDelivered,
		CreatedAt:      time.Now(),
	}
	l.emit(MessageEvent{Message: reply})
}

// echoBody produces a vaguely conversational echo.
func echoBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return "?"
	}
	return "«" + body + "» — got it!"
}

// =============================================================================
// HELPERS
// =============================================================================

func (l *Loopback) emit(ev Event) {
	l.mu.Lock()
	sub := l.subscriber
	l.mu.Unlock()
	if sub != nil {
		sub(ev)
	}
}

func (l *Loopback) sleep(ctx context.Context) error {
	if l.latency <= 0 {
		return nil
	}
	t := time.NewTimer(l.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
