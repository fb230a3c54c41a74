package pubsub

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// loopback is an upstream that echoes every published event back, like a
// JetStream subject with a single instance attached
type loopback struct {
	mu        sync.Mutex
	published []Event
	out       chan Event
}

func newLoopback() *loopback {
	return &loopback{out: make(chan Event, 16)}
}

func (l *loopback) Publish(e Event) {
	l.mu.Lock()
	l.published = append(l.published, e)
	l.mu.Unlock()
	l.out <- e
}

func (l *loopback) Subscribe() chan Event  { return l.out }
func (l *loopback) Unsubscribe(chan Event) {}

func (l *loopback) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.published)
}

func receive(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func expectNothing(t *testing.T, ch chan Event) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewEvent("alice", EventBoardSet, map[string]interface{}{"round": 3})

	if e.ID == "" {
		t.Error("event ID should be set")
	}
	if e.UserID != "alice" || e.Type != EventBoardSet {
		t.Errorf("event = %+v", e)
	}
	if e.At.Before(before) {
		t.Errorf("At = %v, want >= %v", e.At, before)
	}
	if other := NewEvent("alice", EventBoardSet, nil); other.ID == e.ID {
		t.Error("event IDs should be unique")
	}
}

func TestSubscriberCount(t *testing.T) {
	ps := New()
	if ps.SubscriberCount() != 0 {
		t.Fatalf("new PubSub has %d subscribers", ps.SubscriberCount())
	}

	chans := []chan Event{ps.Subscribe(), ps.Subscribe(), ps.Subscribe()}
	if ps.SubscriberCount() != 3 {
		t.Errorf("SubscriberCount() = %d, want 3", ps.SubscriberCount())
	}

	ps.Unsubscribe(chans[1])
	if ps.SubscriberCount() != 2 {
		t.Errorf("SubscriberCount() = %d, want 2", ps.SubscriberCount())
	}
	if _, ok := <-chans[1]; ok {
		t.Error("unsubscribed channel should be closed")
	}

	// The remaining subscribers still receive
	ps.Publish(NewEvent("alice", EventBoardReset, nil))
	for _, i := range []int{0, 2} {
		if e := receive(t, chans[i]); e.Type != EventBoardReset {
			t.Errorf("subscriber %d got %v", i, e.Type)
		}
	}
}

func TestUnsubscribeUnknownChannel(t *testing.T) {
	ps := New()
	ps.Subscribe()

	ps.Unsubscribe(make(chan Event))
	if ps.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", ps.SubscriberCount())
	}
}

func TestPublishFanOut(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		payload string
	}{
		{"board set", NewEvent("alice", EventBoardSet, map[string]interface{}{"round": 1, "playerName": "Josh Allen"}), "playerName"},
		{"target added", NewEvent("bob", EventTargetAdd, map[string]interface{}{"playerName": "Justin Jefferson"}), "playerName"},
		{"theme", NewEvent("alice", EventThemeChange, map[string]interface{}{"theme": "dark"}), "theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := New()
			a, b := ps.Subscribe(), ps.Subscribe()

			ps.Publish(tt.event)
			for _, ch := range []chan Event{a, b} {
				got := receive(t, ch)
				if got.ID != tt.event.ID || got.UserID != tt.event.UserID {
					t.Errorf("got %+v, want %+v", got, tt.event)
				}
				if _, ok := got.Payload[tt.payload]; !ok {
					t.Errorf("payload missing %q: %v", tt.payload, got.Payload)
				}
			}
		})
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	ps := New()
	// Should not block or panic
	ps.Publish(NewEvent("alice", EventAppReset, nil))
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 25; i++ {
			ps.Publish(NewEvent("alice", EventBoardSet, map[string]interface{}{"round": i}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	if n := len(ch); n != cap(ch) {
		t.Errorf("buffered %d events, want %d", n, cap(ch))
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	ps := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := ps.Subscribe()
			time.Sleep(time.Millisecond)
			ps.Unsubscribe(ch)
		}()
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				ps.Publish(NewEvent("alice", EventBoardSet, map[string]interface{}{"round": i}))
			}
		}(i)
	}
	wg.Wait()

	if ps.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d after all unsubscribed", ps.SubscriberCount())
	}
}

func TestPublishWithUpstream(t *testing.T) {
	up := newLoopback()
	ps := NewWithUpstream(up)
	t.Cleanup(func() { close(up.out) })

	ch := ps.Subscribe()
	e := NewEvent("alice", EventBoardClear, map[string]interface{}{"round": 4})
	ps.Publish(e)

	if got := receive(t, ch); got.ID != e.ID {
		t.Errorf("got %+v", got)
	}
	// Delivered once, through the upstream only
	expectNothing(t, ch)
	if up.count() != 1 {
		t.Errorf("upstream saw %d events, want 1", up.count())
	}
}

func TestUpstreamEventsReachLocalSubscribers(t *testing.T) {
	up := newLoopback()
	ps := NewWithUpstream(up)
	t.Cleanup(func() { close(up.out) })

	ch := ps.Subscribe()

	// Published by another instance
	remote := NewEvent("bob", EventTargetRemove, map[string]interface{}{"playerName": "Justin Tucker"})
	up.out <- remote

	if got := receive(t, ch); got.ID != remote.ID || got.UserID != "bob" {
		t.Errorf("got %+v, want %+v", got, remote)
	}
	if up.count() != 0 {
		t.Error("remote events should not be republished")
	}
}

func TestEventWireFormat(t *testing.T) {
	e := NewEvent("alice", EventBoardSet, map[string]interface{}{
		"round":       2,
		"composition": map[string]int{"QB": 1, "RB": 0},
	})

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var wire map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	for _, key := range []string{"id", "type", "userId", "at", "payload"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("wire format missing %q: %s", key, data)
		}
	}
	if wire["type"] != "board:set" {
		t.Errorf("type = %v", wire["type"])
	}

	empty, _ := json.Marshal(NewEvent("alice", EventAppReset, nil))
	var m map[string]interface{}
	json.Unmarshal(empty, &m)
	if _, ok := m["payload"]; ok {
		t.Errorf("nil payload should be omitted: %s", empty)
	}
}
