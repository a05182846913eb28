package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"decidely-be/internal/model"
	"decidely-be/internal/pkg/logger"
	"decidely-be/pkg/relay"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authorizerFunc func(threadID, userID uuid.UUID) (bool, error)

func (f authorizerFunc) IsParticipant(_ context.Context, threadID, userID uuid.UUID) (bool, error) {
	return f(threadID, userID)
}

func startHub(t *testing.T, authz ThreadAuthorizer) *Hub {
	t.Helper()
	hub := NewHub(nil, authz, Options{InstanceID: "test", SendBuffer: 4}, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func connect(t *testing.T, hub *Hub, userID uuid.UUID) *Client {
	t.Helper()
	c := newClient(hub, nil, userID)
	hub.register <- c
	return c
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case frame, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.send:
		t.Fatalf("unexpected frame %s", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_JoinRequiresParticipant(t *testing.T) {
	thread := uuid.New()
	member := uuid.New()
	hub := startHub(t, authorizerFunc(func(threadID, userID uuid.UUID) (bool, error) {
		return threadID == thread && userID == member, nil
	}))

	ok := connect(t, hub, member)
	outsider := connect(t, hub, uuid.New())

	require.NoError(t, hub.Join(context.Background(), ok, thread))
	assert.ErrorIs(t, hub.Join(context.Background(), outsider, thread), ErrNotParticipant)
	assert.True(t, hub.IsJoined(ok, thread))
	assert.False(t, hub.IsJoined(outsider, thread))
	assert.Equal(t, 1, hub.RoomSize(thread))
}

func TestHub_JoinPropagatesAuthorizerError(t *testing.T) {
	hub := startHub(t, authorizerFunc(func(uuid.UUID, uuid.UUID) (bool, error) {
		return false, errors.New("db down")
	}))
	c := connect(t, hub, uuid.New())

	err := hub.Join(context.Background(), c, uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotParticipant)
}

func TestHub_PublishSkipsSender(t *testing.T) {
	hub := startHub(t, nil)
	thread := uuid.New()

	alice := connect(t, hub, uuid.New())
	bob := connect(t, hub, uuid.New())
	outsider := connect(t, hub, uuid.New())
	require.NoError(t, hub.Join(context.Background(), alice, thread))
	require.NoError(t, hub.Join(context.Background(), bob, thread))

	hub.Publish(alice, thread, []byte(`{"type":"receive-message"}`))

	assert.JSONEq(t, `{"type":"receive-message"}`, string(receive(t, bob)))
	assertSilent(t, alice)
	assertSilent(t, outsider)
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := startHub(t, nil)
	thread := uuid.New()
	alice := connect(t, hub, uuid.New())
	bob := connect(t, hub, uuid.New())
	require.NoError(t, hub.Join(context.Background(), alice, thread))
	require.NoError(t, hub.Join(context.Background(), bob, thread))

	hub.Leave(bob, thread)
	hub.Publish(alice, thread, []byte("x"))

	assertSilent(t, bob)
	assert.Equal(t, 1, hub.RoomSize(thread))
}

func TestHub_NotifyUserReachesEveryDevice(t *testing.T) {
	hub := startHub(t, nil)
	user := uuid.New()
	phone := connect(t, hub, user)
	laptop := connect(t, hub, user)
	other := connect(t, hub, uuid.New())

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[user]) == 2
	}, time.Second, 10*time.Millisecond)

	hub.NotifyUser(user, []byte("ping"))

	assert.Equal(t, "ping", string(receive(t, phone)))
	assert.Equal(t, "ping", string(receive(t, laptop)))
	assertSilent(t, other)
}

func TestHub_SendEncodesNotificationFrame(t *testing.T) {
	hub := startHub(t, nil)
	user := uuid.New()
	c := connect(t, hub, user)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[user]) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Send(user, model.Notification{ID: uuid.New(), UserID: user, Title: "Level Up"})

	frame, err := relay.Decode(receive(t, c))
	require.NoError(t, err)
	assert.Equal(t, relay.TypeNotification, frame.Type)

	var n model.Notification
	require.NoError(t, json.Unmarshal(frame.Payload, &n))
	assert.Equal(t, "Level Up", n.Title)
}

func TestHub_UnregisterClosesAndCleansRooms(t *testing.T) {
	hub := startHub(t, nil)
	thread := uuid.New()
	c := connect(t, hub, uuid.New())
	require.NoError(t, hub.Join(context.Background(), c, thread))

	hub.unregister <- c

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Zero(t, hub.RoomSize(thread))
	assert.ErrorIs(t, hub.Join(context.Background(), c, thread), ErrNotJoined)

	// a second unregister is a no-op
	hub.remove(c)
}

func TestHub_ClusterMessages(t *testing.T) {
	hub := startHub(t, nil)
	thread := uuid.New()
	user := uuid.New()
	member := connect(t, hub, user)
	require.NoError(t, hub.Join(context.Background(), member, thread))

	own, _ := json.Marshal(clusterEnvelope{OriginInstance: "test", ThreadID: thread.String(), Message: json.RawMessage(`"own"`)})
	hub.handleClusterMessage(own)
	assertSilent(t, member)

	peerRoom, _ := json.Marshal(clusterEnvelope{OriginInstance: "peer", ThreadID: thread.String(), Message: json.RawMessage(`"room"`)})
	hub.handleClusterMessage(peerRoom)
	assert.Equal(t, `"room"`, string(receive(t, member)))

	peerUser, _ := json.Marshal(clusterEnvelope{OriginInstance: "peer", TargetUserID: user.String(), Message: json.RawMessage(`"direct"`)})
	hub.handleClusterMessage(peerUser)
	assert.Equal(t, `"direct"`, string(receive(t, member)))

	peerAll, _ := json.Marshal(clusterEnvelope{OriginInstance: "peer", TargetUserID: "*", Message: json.RawMessage(`"all"`)})
	hub.handleClusterMessage(peerAll)
	assert.Equal(t, `"all"`, string(receive(t, member)))

	hub.handleClusterMessage([]byte("garbage"))
	assertSilent(t, member)
}

func TestHub_FullBufferDropsFrames(t *testing.T) {
	hub := startHub(t, nil)
	thread := uuid.New()
	sender := connect(t, hub, uuid.New())
	slow := connect(t, hub, uuid.New())
	require.NoError(t, hub.Join(context.Background(), sender, thread))
	require.NoError(t, hub.Join(context.Background(), slow, thread))

	for i := 0; i < 10; i++ {
		hub.Publish(sender, thread, []byte("x"))
	}
	assert.Len(t, slow.send, 4)
}
