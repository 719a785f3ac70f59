package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestClient() *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   uuid.New(),
		send:     make(chan []byte, 4),
		channels: make(map[string]bool),
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatal("expected a queued payload")
		return nil
	}
}

func TestBroadcastReachesSubscribersOnly(t *testing.T) {
	hub := NewHub()
	subscriber := newTestClient()
	bystander := newTestClient()

	hub.addClient(subscriber)
	hub.addClient(bystander)
	hub.subscribeToChannel(subscriber, "channel:conversation:x")

	hub.Broadcast("channel:conversation:x", []byte("hello"))

	if got := receive(t, subscriber); string(got) != "hello" {
		t.Errorf("want %q, got %q", "hello", got)
	}
	select {
	case msg := <-bystander.send:
		t.Errorf("bystander should receive nothing, got %q", msg)
	default:
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := newTestClient()

	hub.addClient(client)
	hub.subscribeToChannel(client, "channel:conversation:x")
	hub.unsubscribeFromChannel(client, "channel:conversation:x")

	hub.Broadcast("channel:conversation:x", []byte("hello"))

	select {
	case msg := <-client.send:
		t.Errorf("unsubscribed client should receive nothing, got %q", msg)
	default:
	}
	if count := hub.SubscriberCount("channel:conversation:x"); count != 0 {
		t.Errorf("empty channel should be dropped, got %d subscribers", count)
	}
}

func TestRemoveClientCleansSubscriptions(t *testing.T) {
	hub := NewHub()
	client := newTestClient()

	hub.addClient(client)
	hub.subscribeToChannel(client, "channel:conversation:x")
	hub.subscribeToChannel(client, "channel:conversation:y")
	hub.removeClient(client)

	if count := hub.ClientCount(); count != 0 {
		t.Errorf("want 0 clients, got %d", count)
	}
	for _, channel := range []string{"channel:conversation:x", "channel:conversation:y"} {
		if count := hub.SubscriberCount(channel); count != 0 {
			t.Errorf("channel %s should be empty, got %d", channel, count)
		}
	}
	// The send channel is closed so the write loop terminates.
	if _, open := <-client.send; open {
		t.Error("send channel should be closed")
	}
}

// A subscribe queued behind a disconnect must not re-add the client after
// removeClient has closed its send channel; broadcasting afterwards would
// panic on the closed channel.
func TestSubscribeAfterRemovalIsIgnored(t *testing.T) {
	hub := NewHub()
	client := newTestClient()

	hub.addClient(client)
	hub.removeClient(client)
	hub.subscribeToChannel(client, "channel:conversation:x")

	if count := hub.SubscriberCount("channel:conversation:x"); count != 0 {
		t.Fatalf("removed client should not be subscribed, got %d", count)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("broadcast panicked: %v", r)
		}
	}()
	hub.Broadcast("channel:conversation:x", []byte("hello"))
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	client := newTestClient()
	for i := 0; i < cap(client.send)+3; i++ {
		client.Enqueue([]byte("payload"))
	}
	if got := len(client.send); got != cap(client.send) {
		t.Errorf("want %d buffered payloads, got %d", cap(client.send), got)
	}
}

func TestHubRunLoop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient()
	hub.Register(client)
	hub.Subscribe(client, "channel:conversation:x")

	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount("channel:conversation:x") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription was not processed")
		}
		time.Sleep(time.Millisecond)
	}

	hub.Broadcast("channel:conversation:x", []byte("hello"))
	select {
	case msg := <-client.send:
		if string(msg) != "hello" {
			t.Errorf("want %q, got %q", "hello", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast did not arrive")
	}
}
