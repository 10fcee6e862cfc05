package notify

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

// mockConn records what it receives; sendErr simulates a dead connection.
type mockConn struct {
	mu       sync.Mutex
	received []Event
	sendErr  error
}

func (c *mockConn) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.received = append(c.received, event)
	return nil
}

func (c *mockConn) events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.received...)
}

func TestRegistry_PublishReachesAllSubscribersOfDocument(t *testing.T) {
	registry := NewRegistry()
	connA := &mockConn{}
	connB := &mockConn{}
	other := &mockConn{}

	registry.Join("doc-1", connA)
	registry.Join("doc-1", connB)
	registry.Join("doc-2", other)

	registry.Publish("doc-1", Event{Stage: StageExtracting, Progress: 20})

	if len(connA.events()) != 1 || len(connB.events()) != 1 {
		t.Errorf("Both doc-1 subscribers should get the event, got %d and %d",
			len(connA.events()), len(connB.events()))
	}
	if len(other.events()) != 0 {
		t.Error("doc-2 subscriber must not receive doc-1 events")
	}
}

func TestRegistry_NoReplayForLateSubscriber(t *testing.T) {
	registry := NewRegistry()

	// Progress happens before anyone watches
	registry.Publish("doc-1", Event{Stage: StageExtracting, Progress: 20})
	registry.Publish("doc-1", Event{Stage: StageClassifying, Progress: 35})

	late := &mockConn{}
	registry.Join("doc-1", late)

	if len(late.events()) != 0 {
		t.Errorf("Late subscriber should see nothing from before it joined, got %d events", len(late.events()))
	}

	registry.Publish("doc-1", Event{Stage: StageChunking, Progress: 50})
	events := late.events()
	if len(events) != 1 || events[0].Stage != StageChunking {
		t.Errorf("Late subscriber should only get live events, got %v", events)
	}
}

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	conn := &mockConn{}

	registry.Join("doc-1", conn)
	registry.Join("doc-1", conn)

	if count := registry.SubscriberCount("doc-1"); count != 1 {
		t.Errorf("Double join of the same connection should count once, got %d", count)
	}

	registry.Publish("doc-1", Event{Stage: StageComplete, Progress: 100})
	if len(conn.events()) != 1 {
		t.Errorf("Expected exactly 1 delivery, got %d", len(conn.events()))
	}
}

func TestRegistry_LeaveUnknownIsNoOp(t *testing.T) {
	registry := NewRegistry()
	conn := &mockConn{}

	registry.Leave("ghost-doc", conn)

	registry.Join("doc-1", conn)
	registry.Leave("doc-1", &mockConn{}) //different connection, same doc

	if count := registry.SubscriberCount("doc-1"); count != 1 {
		t.Errorf("Leave of an unregistered connection must not touch others, got count %d", count)
	}
}

func TestRegistry_FailedSendRemovesSubscriber(t *testing.T) {
	registry := NewRegistry()
	dead := &mockConn{sendErr: errors.New("broken pipe")}
	alive := &mockConn{}

	registry.Join("doc-1", dead)
	registry.Join("doc-1", alive)

	registry.Publish("doc-1", Event{Stage: StageEmbedding, Progress: 70})

	if len(alive.events()) != 1 {
		t.Error("Healthy subscriber should still receive the event")
	}
	if count := registry.SubscriberCount("doc-1"); count != 1 {
		t.Errorf("Dead subscriber should have been dropped, count is %d", count)
	}

	registry.Publish("doc-1", Event{Stage: StageStoring, Progress: 85})
	if len(alive.events()) != 2 {
		t.Error("Second publish should still reach the healthy subscriber")
	}
}

func TestRegistry_EmptyDocumentEntryIsDropped(t *testing.T) {
	registry := NewRegistry()
	conn := &mockConn{}

	registry.Join("doc-1", conn)
	registry.Leave("doc-1", conn)

	if count := registry.SubscriberCount("doc-1"); count != 0 {
		t.Errorf("Expected 0 subscribers after leave, got %d", count)
	}
	// Publishing to the now-empty document must not panic or deliver
	registry.Publish("doc-1", Event{Stage: StageComplete, Progress: 100})
	if len(conn.events()) != 0 {
		t.Error("A connection that left must not receive events")
	}
}

func TestRegistry_ConcurrentJoinLeavePublish(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := &mockConn{}
			registry.Join("doc-1", conn)
			registry.Publish("doc-1", Event{Stage: StageChunking, Progress: 50})
			registry.Leave("doc-1", conn)
		}()
	}
	wg.Wait()

	if count := registry.SubscriberCount("doc-1"); count != 0 {
		t.Errorf("All subscribers left, count should be 0, got %d", count)
	}
}

func TestPublisher_EventWireShape(t *testing.T) {
	registry := NewRegistry()
	conn := &mockConn{}
	registry.Join("doc-1", conn)

	publisher := NewPublisher(registry)

	t.Run("success event carries null error", func(t *testing.T) {
		publisher.Notify("doc-1", StageEmbedding, 70, nil)

		events := conn.events()
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		payload, err := json.Marshal(events[0])
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(payload), `"error":null`) {
			t.Errorf("Wire payload must carry error explicitly as null, got %s", payload)
		}
	})

	t.Run("failed event reports progress 0 with message", func(t *testing.T) {
		publisher.Notify("doc-1", StageFailed, 0, errors.New("extraction blew up"))

		events := conn.events()
		last := events[len(events)-1]
		if last.Stage != StageFailed || last.Progress != 0 {
			t.Errorf("Failed event should be {failed, 0}, got {%s, %d}", last.Stage, last.Progress)
		}
		if last.Error == nil || *last.Error != "extraction blew up" {
			t.Error("Failed event should carry the error message")
		}
	})
}
