package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
)

type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) Publish(ctx context.Context, channel string, event *entities.TriageAlertEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func newSession(t *testing.T, opts services.ChatSessionOptions) *services.ChatSession {
	t.Helper()
	s := services.NewChatSession("s1", "u1", newMatcher(t), opts)
	s.Start()
	return s
}

func roles(history []entities.ChatMessage) []entities.ChatRole {
	out := make([]entities.ChatRole, len(history))
	for i, m := range history {
		out[i] = m.Role
	}
	return out
}

func TestChatSession_Start(t *testing.T) {
	s := services.NewChatSession("s1", "u1", newMatcher(t), services.ChatSessionOptions{})
	assert.Equal(t, services.ChatStateIdle, s.State())
	assert.Empty(t, s.History())

	s.Start()
	s.Start()

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, entities.ChatRoleAssistant, history[0].Role)
	assert.Equal(t, services.ChatGreeting, history[0].Text)
	assert.Equal(t, services.ChatStateAwaitingInput, s.State())
}

func TestChatSession_Submit(t *testing.T) {
	t.Run("appends user message and classified reply", func(t *testing.T) {
		s := newSession(t, services.ChatSessionOptions{})

		reply, err := s.Submit(context.Background(), "I have heartburn")
		require.NoError(t, err)
		assert.Equal(t, entities.ChatRoleAssistant, reply.Role)
		require.NotNil(t, reply.Classification)
		assert.Equal(t, entities.ClassificationRemedy, reply.Classification.Kind)

		history := s.History()
		assert.Equal(t, []entities.ChatRole{
			entities.ChatRoleAssistant, entities.ChatRoleUser, entities.ChatRoleAssistant,
		}, roles(history))
		assert.Equal(t, "I have heartburn", history[1].Text)
		assert.Equal(t, services.ChatStateAwaitingInput, s.State())
	})

	t.Run("blank message rejected", func(t *testing.T) {
		s := newSession(t, services.ChatSessionOptions{})
		_, err := s.Submit(context.Background(), "   ")
		assert.ErrorIs(t, err, services.ErrBlankMessage)
		assert.Len(t, s.History(), 1)
	})

	t.Run("idle session starts on first message", func(t *testing.T) {
		s := services.NewChatSession("s1", "u1", newMatcher(t), services.ChatSessionOptions{})
		_, err := s.Submit(context.Background(), "hello")
		require.NoError(t, err)
		assert.Len(t, s.History(), 3)
	})
}

func TestChatSession_RejectsOverlappingSubmission(t *testing.T) {
	s := newSession(t, services.ChatSessionOptions{ReplyDelay: 100 * time.Millisecond})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = s.Submit(context.Background(), "message A")
	}()

	require.Eventually(t, s.Busy, time.Second, time.Millisecond)

	_, err := s.Submit(context.Background(), "message B")
	assert.ErrorIs(t, err, services.ErrSessionBusy)

	wg.Wait()
	require.NoError(t, firstErr)

	_, err = s.Submit(context.Background(), "message B")
	require.NoError(t, err)

	history := s.History()
	require.Len(t, history, 5)
	assert.Equal(t, "message A", history[1].Text)
	assert.Equal(t, entities.ChatRoleAssistant, history[2].Role)
	assert.Equal(t, "message B", history[3].Text)
	assert.Equal(t, entities.ChatRoleAssistant, history[4].Role)
}

func TestChatSession_CloseDiscardsPendingReply(t *testing.T) {
	s := newSession(t, services.ChatSessionOptions{ReplyDelay: time.Minute})

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "heartburn")
		done <- err
	}()

	require.Eventually(t, s.Busy, time.Second, time.Millisecond)
	s.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, services.ErrSessionClosed)
	case <-time.After(time.Second):
		t.Fatal("submission did not observe teardown")
	}

	assert.Empty(t, s.History())
	assert.Equal(t, services.ChatStateClosed, s.State())

	_, err := s.Submit(context.Background(), "anyone there?")
	assert.ErrorIs(t, err, services.ErrSessionClosed)
}

func TestChatSession_CallerCancelSkipsDelay(t *testing.T) {
	s := newSession(t, services.ChatSessionOptions{ReplyDelay: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	reply, err := s.Submit(ctx, "fatigue")
	require.NoError(t, err)
	assert.Equal(t, entities.ClassificationRemedy, reply.Classification.Kind)
	assert.Len(t, s.History(), 3)
}

func TestChatSession_PublishesAlerts(t *testing.T) {
	publisher := new(MockAlertPublisher)
	publisher.On("Publish", mock.Anything, providers.EventChannelTriageAlerts, mock.AnythingOfType("*entities.TriageAlertEvent")).Return(nil).Once()
	publisher.On("Publish", mock.Anything, providers.GetUserChannel("u1"), mock.AnythingOfType("*entities.TriageAlertEvent")).Return(assert.AnError).Once()

	s := newSession(t, services.ChatSessionOptions{Alerts: publisher})

	reply, err := s.Submit(context.Background(), "I have a severe headache and blurred vision")
	require.NoError(t, err, "publish failures do not fail the reply")
	assert.Equal(t, entities.ClassificationAlert, reply.Classification.Kind)
	assert.Equal(t, []entities.ConditionName{"preeclampsia", "gestationalDiabetes"}, reply.Classification.MatchedConditions)
	assert.Contains(t, reply.Text, "preeclampsia")

	publisher.AssertExpectations(t)
	event := publisher.Calls[0].Arguments.Get(2).(*entities.TriageAlertEvent)
	assert.Equal(t, "s1", event.SessionID)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, []string{"severe headache", "blurred vision", "blurred vision"}, event.MatchedPhrases)
}

func TestChatSession_HistoryIsACopy(t *testing.T) {
	s := newSession(t, services.ChatSessionOptions{})

	reply, err := s.Submit(context.Background(), "I have a severe headache and blurred vision")
	require.NoError(t, err)
	reply.Classification.MatchedConditions[0] = "anemia"

	history := s.History()
	require.Len(t, history, 3)
	history[2].Classification.Kind = entities.ClassificationGeneral
	history[2].Classification.MatchedConditions[0] = "uti"

	stored := s.History()[2].Classification
	require.NotNil(t, stored)
	assert.Equal(t, entities.ClassificationAlert, stored.Kind)
	assert.Equal(t, []entities.ConditionName{"preeclampsia", "gestationalDiabetes"}, stored.MatchedConditions)
}

func TestChatSession_RemedyDoesNotPublish(t *testing.T) {
	publisher := new(MockAlertPublisher)
	s := newSession(t, services.ChatSessionOptions{Alerts: publisher})

	_, err := s.Submit(context.Background(), "leg cramps at night")
	require.NoError(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
