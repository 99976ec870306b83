// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/frontlinehq/frontline/internal/models"
)

// fakeClient registers a hub client without a real websocket connection.
func fakeClient(h *Hub) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  h,
		send: make(chan Message, 256),
	}
}

func runHub(t *testing.T, h *Hub) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("hub did not stop")
		}
	})
	return cancel
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	h := NewHub()
	runHub(t, h)

	c1 := fakeClient(h)
	c2 := fakeClient(h)
	h.Register <- c1
	h.Register <- c2

	event := &models.Event{
		ID:          "evt-1",
		Type:        models.EventMissileIntercept,
		Title:       "Intercept over Tel Aviv",
		ThreatLevel: models.ThreatHigh,
	}
	h.BroadcastEvent(event)

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypeEvent {
				t.Errorf("message type = %q, want %q", msg.Type, MessageTypeEvent)
			}
			got, ok := msg.Data.(*models.Event)
			if !ok {
				t.Fatalf("unexpected data type %T", msg.Data)
			}
			if got.ID != "evt-1" {
				t.Errorf("event ID = %q", got.ID)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	h := NewHub()
	runHub(t, h)

	c := fakeClient(h)
	h.Register <- c
	h.Unregister <- c

	// The hub closes the send channel on unregister.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed channel, got message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	if n := h.GetClientCount(); n != 0 {
		t.Errorf("client count = %d, want 0", n)
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	h := NewHub()
	runHub(t, h)

	slow := &Client{id: clientIDCounter.Add(1), hub: h, send: make(chan Message)} // unbuffered, never read
	fast := fakeClient(h)
	h.Register <- slow
	h.Register <- fast

	alert := &models.Alert{ID: "a-1", Area: "תל אביב", Threat: "ירי רקטות", Active: true}
	h.BroadcastAlert(alert)

	select {
	case msg := <-fast.send:
		if msg.Type != MessageTypeAlert {
			t.Errorf("message type = %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("fast client did not receive broadcast")
	}

	deadline := time.Now().Add(time.Second)
	for h.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("slow client not dropped, count = %d", h.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNotifierForwardsEventsToHub(t *testing.T) {
	h := NewHub()
	runHub(t, h)

	c := fakeClient(h)
	h.Register <- c

	n := NewNotifier(h)
	defer func() { _ = n.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = n.Serve(ctx) }()

	// Give the subscriber a moment to attach before publishing.
	time.Sleep(20 * time.Millisecond)

	event := &models.Event{
		ID:          "evt-pub",
		Type:        models.EventAirRaidAlert,
		Title:       "Air raid alert",
		ThreatLevel: models.ThreatCritical,
	}
	if err := n.PublishEvent(event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-c.send:
		got, ok := msg.Data.(*models.Event)
		if !ok {
			t.Fatalf("unexpected data type %T", msg.Data)
		}
		if got.ID != "evt-pub" || got.Type != models.EventAirRaidAlert {
			t.Errorf("got event %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded to the hub")
	}
}
