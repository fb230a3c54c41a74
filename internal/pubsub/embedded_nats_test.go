package pubsub

import (
	"fmt"
	"sync"
	"testing"

	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
)

func init() {
	// Initialize logger for tests
	logger.Init()
}

func startEmbedded(t *testing.T, opts EmbeddedNATSOptions) *EmbeddedNATSPubSub {
	t.Helper()
	ps, err := NewEmbeddedNATSPubSub(opts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	return ps
}

func TestEmbeddedNATSLifecycle(t *testing.T) {
	ps := startEmbedded(t, DefaultEmbeddedNATSOptions())

	if ps.server == nil || ps.nc == nil || ps.js == nil {
		t.Fatal("server, connection and JetStream context should all be set")
	}
	if ps.GetServerURL() == "" {
		t.Error("server URL should not be empty")
	}
	if err := ps.Healthy(); err != nil {
		t.Errorf("Healthy() = %v", err)
	}

	kept, dropped := ps.Subscribe(), ps.Subscribe()
	ps.Unsubscribe(dropped)
	if ps.GetSubscriberCount() != 1 {
		t.Errorf("GetSubscriberCount() = %d, want 1", ps.GetSubscriberCount())
	}
	if _, ok := <-dropped; ok {
		t.Error("unsubscribed channel should be closed")
	}

	ps.Close()

	if ps.Healthy() == nil {
		t.Error("Healthy() should fail after Close()")
	}
	select {
	case _, ok := <-kept:
		if ok {
			t.Error("subscriber channel should be closed after Close()")
		}
	default:
		t.Error("subscriber channel should be closed and readable")
	}
}

func TestDefaultEmbeddedNATSOptions(t *testing.T) {
	opts := DefaultEmbeddedNATSOptions()

	if opts.Port != -1 {
		t.Errorf("expected port -1 (random), got %d", opts.Port)
	}
	if opts.Subject != "draftkit.events" {
		t.Errorf("expected subject draftkit.events, got %s", opts.Subject)
	}
	if opts.StreamName != DefaultStreamName {
		t.Errorf("expected stream name %s, got %s", DefaultStreamName, opts.StreamName)
	}
	if opts.StoreDir != "" {
		t.Errorf("expected empty store dir, got %s", opts.StoreDir)
	}
}

func TestEmbeddedNATSFileStorage(t *testing.T) {
	ps := startEmbedded(t, EmbeddedNATSOptions{
		Port:       -1,
		Subject:    "draftkit.test.events",
		StreamName: "DRAFTKIT_TEST",
		StoreDir:   t.TempDir(),
	})
	defer ps.Close()

	if ps.subject != "draftkit.test.events" {
		t.Errorf("subject = %s", ps.subject)
	}

	ch := ps.Subscribe()
	ps.Publish(NewEvent("alice", EventBoardReset, nil))
	if e := receive(t, ch); e.Type != EventBoardReset {
		t.Errorf("got %+v", e)
	}
}

func TestEmbeddedNATSBoardEventPayload(t *testing.T) {
	ps := startEmbedded(t, DefaultEmbeddedNATSOptions())
	defer ps.Close()

	ch := ps.Subscribe()
	sent := NewEvent("alice", EventBoardSet, map[string]interface{}{
		"round":       5,
		"playerName":  "Justin Jefferson",
		"composition": map[string]int{"QB": 0, "RB": 1, "WR": 1, "TE": 0, "K": 0, "DST": 0},
	})
	ps.Publish(sent)

	got := receive(t, ch)
	if got.ID != sent.ID || got.UserID != "alice" || got.Type != EventBoardSet {
		t.Fatalf("got %+v", got)
	}
	// Numbers come back as float64 after the JSON hop
	if got.Payload["round"] != 5.0 || got.Payload["playerName"] != "Justin Jefferson" {
		t.Errorf("payload = %v", got.Payload)
	}
	comp, ok := got.Payload["composition"].(map[string]interface{})
	if !ok || comp["WR"] != 1.0 || len(comp) != 6 {
		t.Errorf("composition = %v", got.Payload["composition"])
	}
	if !got.At.Equal(sent.At) {
		t.Errorf("At = %v, want %v", got.At, sent.At)
	}
}

func TestEmbeddedNATSOrderPerUser(t *testing.T) {
	ps := startEmbedded(t, DefaultEmbeddedNATSOptions())
	defer ps.Close()

	ch := ps.Subscribe()

	users := []string{"alice", "bob", "carol"}
	const perUser = 8

	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for round := 1; round <= perUser; round++ {
				ps.Publish(NewEvent(user, EventBoardSet, map[string]interface{}{"round": round}))
			}
		}(user)
	}
	wg.Wait()

	last := make(map[string]float64)
	for i := 0; i < len(users)*perUser; i++ {
		e := receive(t, ch)
		round, _ := e.Payload["round"].(float64)
		if round <= last[e.UserID] {
			t.Fatalf("%s: round %v delivered after %v", e.UserID, round, last[e.UserID])
		}
		last[e.UserID] = round
	}
	for _, user := range users {
		if last[user] != perUser {
			t.Errorf("%s: last round %v, want %d", user, last[user], perUser)
		}
	}
}

func TestEmbeddedNATSAsUpstream(t *testing.T) {
	embedded := startEmbedded(t, DefaultEmbeddedNATSOptions())
	defer embedded.Close()

	ps := NewWithUpstream(embedded)
	ch := ps.Subscribe()

	e := NewEvent("alice", EventThemeChange, map[string]interface{}{"theme": "dark"})
	ps.Publish(e)

	if got := receive(t, ch); got.ID != e.ID {
		t.Errorf("got %+v", got)
	}
	expectNothing(t, ch)
}

func TestRemoteNATSReceivesEmbeddedEvents(t *testing.T) {
	embedded := startEmbedded(t, DefaultEmbeddedNATSOptions())
	defer embedded.Close()

	remote, err := NewNATSPubSub(embedded.GetServerURL(), "draftkit.events")
	if err != nil {
		t.Fatalf("Failed to connect second instance: %v", err)
	}
	defer remote.Close()

	ch := remote.Subscribe()
	embedded.Publish(NewEvent("alice", EventTargetAdd, map[string]interface{}{"playerName": "Travis Kelce"}))

	got := receive(t, ch)
	if got.UserID != "alice" || got.Type != EventTargetAdd {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestEmbeddedNATSHostsKeyValueBucket(t *testing.T) {
	ps := startEmbedded(t, DefaultEmbeddedNATSOptions())
	defer ps.Close()

	store, err := kv.NewNATSStore(ps.JetStream(), "PUBSUB_TEST")
	if err != nil {
		t.Fatalf("NewNATSStore() failed: %v", err)
	}

	for i, user := range []string{"alice", "bob"} {
		scoped := kv.WithNamespace(store, user)
		value := fmt.Sprintf(`{"1":"Player %d"}`, i)
		if err := scoped.Set("draftBoard", value); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		v, ok, err := scoped.Get("draftBoard")
		if err != nil || !ok || v != value {
			t.Errorf("%s: Get() = %q, %v, %v", user, v, ok, err)
		}
	}
}
