package service

import (
	"context"
	"net/http"
	"testing"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/pkg/relay"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_SendCreatesOneThreadPerPair(t *testing.T) {
	f := newTestFactory(t)
	alice := seedUser(t, f, email("alice"))
	bob := seedUser(t, f, email("bob"))
	notifier := &fakeNotifier{}
	svc := NewChatService(f, newTestCache(), notifier, nopLogger())
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: bob.Id, Content: "hi bob"})
	require.NoError(t, err)
	reply, err := svc.SendMessage(ctx, bob.Id, &dto.SendMessageRequest{RecipientId: alice.Id, Content: "hey alice"})
	require.NoError(t, err)

	assert.Equal(t, first.ThreadId, reply.ThreadId)
	assert.Equal(t, "text", first.Message.Type)
	assert.Equal(t, []uuid.UUID{alice.Id}, first.Message.ReadBy)

	aliceList, err := svc.ListThreads(ctx, alice.Id)
	require.NoError(t, err)
	bobList, err := svc.ListThreads(ctx, bob.Id)
	require.NoError(t, err)

	require.Len(t, aliceList.Threads, 1)
	require.Len(t, bobList.Threads, 1)
	assert.Equal(t, aliceList.Threads[0].Id, bobList.Threads[0].Id)
	assert.Equal(t, 1, aliceList.TotalUnread)
	assert.Equal(t, 1, bobList.TotalUnread)
	assert.Equal(t, "hey alice", aliceList.Threads[0].LastMessage.Content)
	require.NotNil(t, aliceList.Threads[0].OtherUser)
	assert.Equal(t, bob.Id, aliceList.Threads[0].OtherUser.Id)

	assert.Equal(t, 1, notifier.count(bob.Id))
	assert.Equal(t, 1, notifier.count(alice.Id))

	frame, err := relay.Decode(notifier.frames[bob.Id][0])
	require.NoError(t, err)
	assert.Equal(t, relay.TypeReceiveMessage, frame.Type)
	assert.Equal(t, first.ThreadId.String(), frame.ThreadID)
}

func TestChatService_UnreadCountsAndMarkRead(t *testing.T) {
	f := newTestFactory(t)
	alice := seedUser(t, f, email("alice"))
	bob := seedUser(t, f, email("bob"))
	svc := NewChatService(f, newTestCache(), nil, nopLogger())
	ctx := context.Background()

	var threadID uuid.UUID
	for _, text := range []string{"one", "two", "three"} {
		res, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: bob.Id, Content: text})
		require.NoError(t, err)
		threadID = res.ThreadId
	}

	bobList, err := svc.ListThreads(ctx, bob.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, bobList.TotalUnread)

	aliceList, err := svc.ListThreads(ctx, alice.Id)
	require.NoError(t, err)
	assert.Zero(t, aliceList.TotalUnread)

	marked, err := svc.MarkRead(ctx, bob.Id, threadID)
	require.NoError(t, err)
	assert.Equal(t, 3, marked.Updated)

	again, err := svc.MarkRead(ctx, bob.Id, threadID)
	require.NoError(t, err)
	assert.Zero(t, again.Updated)

	detail, err := svc.GetThread(ctx, bob.Id, threadID)
	require.NoError(t, err)
	assert.Zero(t, detail.UnreadCount)
	require.Len(t, detail.Messages, 3)
	assert.Equal(t, "one", detail.Messages[0].Content)
	for _, m := range detail.Messages {
		assert.ElementsMatch(t, []uuid.UUID{alice.Id, bob.Id}, m.ReadBy)
	}
}

func TestChatService_ThreadAccessRules(t *testing.T) {
	f := newTestFactory(t)
	alice := seedUser(t, f, email("alice"))
	bob := seedUser(t, f, email("bob"))
	mallory := seedUser(t, f, email("mallory"))
	svc := NewChatService(f, newTestCache(), nil, nopLogger())
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: bob.Id, Content: "private"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code int
	}{
		{"outsider reads thread", func() error { _, err := svc.GetThread(ctx, mallory.Id, sent.ThreadId); return err }, http.StatusForbidden},
		{"outsider marks read", func() error { _, err := svc.MarkRead(ctx, mallory.Id, sent.ThreadId); return err }, http.StatusForbidden},
		{"unknown thread", func() error { _, err := svc.GetThread(ctx, alice.Id, uuid.New()); return err }, http.StatusNotFound},
		{"message to self", func() error {
			_, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: alice.Id, Content: "me"})
			return err
		}, http.StatusBadRequest},
		{"empty message", func() error {
			_, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: bob.Id, Content: "   "})
			return err
		}, http.StatusBadRequest},
		{"unknown recipient", func() error {
			_, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: uuid.New(), Content: "hello?"})
			return err
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *serverutils.AppError
			require.ErrorAs(t, tt.call(), &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}

	access := NewThreadAccess(f)
	ok, err := access.IsParticipant(ctx, sent.ThreadId, bob.Id)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = access.IsParticipant(ctx, sent.ThreadId, mallory.Id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChatService_SharedScenarioAndAttachment(t *testing.T) {
	f := newTestFactory(t)
	alice := seedUser(t, f, email("alice"))
	bob := seedUser(t, f, email("bob"))
	challenge := seedScenario(t, f, &entity.Scenario{
		Title:      "Phishing drill",
		Type:       entity.ScenarioTypeDailyChallenge,
		ActiveDate: "2024-05-01",
		XpReward:   25,
	})
	svc := NewChatService(f, newTestCache(), nil, nopLogger())
	ctx := context.Background()

	shared, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: bob.Id, ScenarioId: &challenge.Id})
	require.NoError(t, err)
	assert.Equal(t, string(entity.MessageTypeChallenge), shared.Message.Type)
	require.NotNil(t, shared.Message.SharedScenario)
	assert.Equal(t, "Phishing drill", shared.Message.SharedScenario.Title)

	file, err := svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{
		RecipientId: bob.Id,
		Attachment:  &dto.AttachmentRequest{FileUrl: "https://cdn.test/a.pdf", FileName: "a.pdf", FileType: "application/pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.MessageTypeFile), file.Message.Type)

	list, err := svc.ListThreads(ctx, bob.Id)
	require.NoError(t, err)
	require.Len(t, list.Threads, 1)
	assert.Equal(t, "Attachment: a.pdf", list.Threads[0].LastMessage.Content)

	missing := uuid.New()
	_, err = svc.SendMessage(ctx, alice.Id, &dto.SendMessageRequest{RecipientId: bob.Id, ScenarioId: &missing})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}
