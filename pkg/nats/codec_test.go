package nats

import (
	"testing"
	"time"

	"decidely-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RestoresTypeAndTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	userID := uuid.New()
	event := events.NewLevelUp(userID, 4, at)

	data, err := encode(event)
	require.NoError(t, err)

	decoded, err := decode(SubjectPrefix+event.EventType(), data)
	require.NoError(t, err)

	assert.Equal(t, events.TypeLevelUp, decoded.EventType())
	assert.True(t, at.Equal(decoded.Timestamp()))
	assert.Equal(t, userID.String(), decoded.Payload()["user_id"])
	assert.EqualValues(t, 4, decoded.Payload()["level"])
	_, leaked := decoded.Payload()[occurredAtKey]
	assert.False(t, leaked)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := decode("events.LEVEL_UP", []byte("{nope"))
	assert.Error(t, err)
}

func TestEncode_DoesNotMutateEventPayload(t *testing.T) {
	event := events.NewStreakMilestone(uuid.New(), 7, time.Now())
	_, err := encode(event)
	require.NoError(t, err)
	_, ok := event.Payload()[occurredAtKey]
	assert.False(t, ok)
}
