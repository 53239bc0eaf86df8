package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestHub_PerUserConnectionCap(t *testing.T) {
	hub := NewHub()

	clients := make([]*Client, 0, maxConnsPerUser)
	for i := 0; i < maxConnsPerUser; i++ {
		c, err := hub.Register(10, false, nil)
		assert.NoError(t, err)
		clients = append(clients, c)
	}

	_, err := hub.Register(10, false, nil)
	assert.Error(t, err)

	// Another user is not affected by the first user's cap.
	other, err := hub.Register(11, false, nil)
	assert.NoError(t, err)

	hub.UnregisterClient(other)
	for _, c := range clients {
		hub.UnregisterClient(c)
	}
}

func TestHub_BroadcastReachesAllUserConnections(t *testing.T) {
	hub := NewHub()

	a, _ := hub.Register(10, false, nil)
	b, _ := hub.Register(10, false, nil)
	other, _ := hub.Register(11, false, nil)

	hub.Broadcast(10, []byte("hello"))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "hello", string(msg))
		default:
			t.Error("expected message in send buffer")
		}
	}
	select {
	case <-other.Send:
		t.Error("other user should not receive the message")
	default:
	}

	hub.UnregisterClient(a)
	hub.UnregisterClient(b)
	hub.UnregisterClient(other)
}

func TestHub_BroadcastModeratorsFiltersByRole(t *testing.T) {
	hub := NewHub()

	admin, _ := hub.Register(1, true, nil)
	member, _ := hub.Register(2, false, nil)

	hub.BroadcastModerators([]byte("report filed"))

	select {
	case msg := <-admin.Send:
		assert.Equal(t, "report filed", string(msg))
	default:
		t.Error("admin should receive moderation broadcasts")
	}
	select {
	case <-member.Send:
		t.Error("non-admin should not receive moderation broadcasts")
	default:
	}

	hub.UnregisterClient(admin)
	hub.UnregisterClient(member)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(10, false, nil)
	assert.NoError(t, err)

	hub.UnregisterClient(c)
	// A second unregister of the same client must not panic or double-close.
	hub.UnregisterClient(c)
}

func TestHub_WiringRoutesUserChannels(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	client, err := hub.Register(42, false, nil)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = hub.StartWiring(ctx, notifier)
	}()

	// Give the pattern subscriber a moment to attach before publishing.
	deadline := time.After(time.Second)
	for {
		if err := notifier.PublishUser(context.Background(), 42, `{"type":"offer_received"}`); err == nil {
			select {
			case msg := <-client.Send:
				assert.Contains(t, string(msg), "offer_received")
				hub.UnregisterClient(client)
				return
			default:
			}
		}
		select {
		case <-deadline:
			t.Skip("pattern subscriber did not attach in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
