package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawless-studio/studio-api/internal/actions"
	"github.com/dawless-studio/studio-api/internal/llm"
	"github.com/dawless-studio/studio-api/internal/models"
)

func newDemoService() *Service {
	factory := llm.NewProviderFactory("", "", true)
	return NewService(factory, actions.NewRegistry(), "gpt-4o-mini")
}

func demoInput(sessionID, message string) ChatInput {
	return ChatInput{
		SessionID: sessionID,
		Message:   message,
		State: models.ProjectState{
			Tempo: 120,
			Instruments: []models.Instrument{
				{ID: "bass-1", Type: "synth", Role: "bass"},
			},
		},
	}
}

func TestSendMessageDemoMode(t *testing.T) {
	svc := newDemoService()

	result, err := svc.SendMessage(context.Background(), demoInput("s1", "make the bass darker"))
	require.NoError(t, err)

	assert.Equal(t, "offline", result.Provider)
	assert.Equal(t, llm.DemoMessage, result.Response.Message)
	assert.Empty(t, result.Response.Actions)
	assert.Zero(t, result.Response.Metadata.Confidence)
	assert.Equal(t, models.ModeJamBuddy, result.Response.Metadata.Mode)
}

func TestSendMessageRecordsCompletedTurns(t *testing.T) {
	svc := newDemoService()

	_, err := svc.SendMessage(context.Background(), demoInput("s1", "first"))
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), demoInput("s1", "second"))
	require.NoError(t, err)

	turns := svc.Sessions().Get("s1").Snapshot()
	require.Len(t, turns, 4) // two user turns, two assistant turns
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, roleAssistant, turns[1].Role)
	assert.Equal(t, "second", turns[2].Content)
}

func TestSendMessageSessionsAreIsolated(t *testing.T) {
	svc := newDemoService()

	_, err := svc.SendMessage(context.Background(), demoInput("s1", "hello"))
	require.NoError(t, err)

	assert.Zero(t, svc.Sessions().Get("s2").Len())
}

func TestStreamMessageDemoMode(t *testing.T) {
	svc := newDemoService()

	var events []llm.StreamEvent
	callback := func(event llm.StreamEvent) error {
		events = append(events, event)
		return nil
	}

	result, err := svc.StreamMessage(context.Background(), demoInput("s1", "stream please"), callback)
	require.NoError(t, err)

	assert.Equal(t, llm.DemoMessage, result.Response.Message)
	require.NotEmpty(t, events)
	assert.Equal(t, "completed", events[len(events)-1].Type)

	// The completed turn enters history
	assert.Equal(t, 2, svc.Sessions().Get("s1").Len())
}

func TestClearSession(t *testing.T) {
	svc := newDemoService()

	_, err := svc.SendMessage(context.Background(), demoInput("s1", "hello"))
	require.NoError(t, err)

	svc.ClearSession("s1")
	assert.Zero(t, svc.Sessions().Get("s1").Len())
}
