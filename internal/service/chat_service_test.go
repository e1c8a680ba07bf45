package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/internal/pkg/serverutils"
	"ai-chatbot/pkg/chat"
	"ai-chatbot/pkg/events"
	"ai-chatbot/pkg/llm"
	"ai-chatbot/pkg/llm/gemini"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
	lastOptions llm.Options
}

func (m *MockProvider) Chat(ctx context.Context, history []llm.Message, turn []llm.Part, opts ...llm.Option) (string, error) {
	m.lastOptions = llm.ApplyOptions(llm.Options{}, opts...)
	args := m.Called(ctx, history, turn)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Name() string {
	return "mock"
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func newTestChatService(provider llm.LLMProvider, publisher IPublisherService, timeout time.Duration) IChatService {
	return NewChatService(provider, publisher, logger.NewNopLogger(), ChatServiceConfig{
		SystemInstruction: constant.DefaultSystemInstruction,
		MaxOutputTokens:   256,
		UpstreamTimeout:   timeout,
	})
}

func TestRelayMapsHistoryRoles(t *testing.T) {
	provider := new(MockProvider)
	publisher := &recordingPublisher{}
	svc := newTestChatService(provider, publisher, time.Second)

	wantHistory := []llm.Message{
		{Role: chat.RoleUser, Parts: []llm.Part{llm.TextPart("hi")}},
		{Role: chat.RoleAssistant, Parts: []llm.Part{llm.TextPart("hello")}},
	}
	wantTurn := []llm.Part{llm.TextPart("2+2?")}
	provider.On("Chat", mock.Anything, wantHistory, wantTurn).Return("4", nil).Once()

	res, err := svc.Relay(context.Background(), "req-1", &dto.ChatRequest{
		Message: "2+2?",
		History: []dto.HistoryEntry{{Role: "user", Text: "hi"}, {Role: "bot", Text: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "4", res.Reply)

	provider.AssertExpectations(t)
	assert.Equal(t, constant.DefaultSystemInstruction, provider.lastOptions.SystemInstruction)
	assert.Equal(t, 256, provider.lastOptions.MaxTokens)
	assert.Equal(t, []string{constant.EventTypeChatRelay}, publisher.types())
}

func TestRelayPutsAttachmentBeforeText(t *testing.T) {
	provider := new(MockProvider)
	svc := newTestChatService(provider, nil, time.Second)

	data := []byte("%PDF-1.4 fake")
	wantTurn := []llm.Part{llm.BlobPart("application/pdf", data), llm.TextPart("summarize")}
	provider.On("Chat", mock.Anything, []llm.Message{}, wantTurn).Return("a summary", nil)

	res, err := svc.Relay(context.Background(), "req-2", &dto.ChatRequest{
		Message: "summarize",
		File: &dto.FilePayload{
			Data:     base64.StdEncoding.EncodeToString(data),
			MimeType: "application/pdf",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "a summary", res.Reply)
	provider.AssertExpectations(t)
}

func TestRelayUpstreamFailure(t *testing.T) {
	provider := new(MockProvider)
	publisher := &recordingPublisher{}
	svc := newTestChatService(provider, publisher, time.Second)

	provider.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("quota exceeded")).Once()

	_, err := svc.Relay(context.Background(), "req-3", &dto.ChatRequest{Message: "hi"})
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.Code)
	assert.Equal(t, constant.ErrGenerateFailed, appErr.Message)
	assert.Equal(t, "quota exceeded", appErr.Details)
	assert.Equal(t, []string{constant.EventTypeChatFailed}, publisher.types())

	provider.AssertNumberOfCalls(t, "Chat", 1)
}

func TestRelayEmptyReplyIsFailure(t *testing.T) {
	provider := new(MockProvider)
	svc := newTestChatService(provider, nil, time.Second)
	provider.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("  ", nil)

	_, err := svc.Relay(context.Background(), "req-4", &dto.ChatRequest{Message: "hi"})

	var appErr *serverutils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.Code)
}

func TestRelayTimeout(t *testing.T) {
	provider := new(MockProvider)
	svc := newTestChatService(provider, nil, 20*time.Millisecond)

	provider.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)

	_, err := svc.Relay(context.Background(), "req-5", &dto.ChatRequest{Message: "hang"})

	var appErr *serverutils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 504, appErr.Code)
	assert.Equal(t, constant.ErrUpstreamTimeout, appErr.Message)
}

func TestRelayRejectsUnknownRoleWithoutCallingProvider(t *testing.T) {
	provider := new(MockProvider)
	svc := newTestChatService(provider, nil, time.Second)

	_, err := svc.Relay(context.Background(), "req-6", &dto.ChatRequest{
		Message: "hi",
		History: []dto.HistoryEntry{{Role: "narrator", Text: "once upon a time"}},
	})

	var appErr *serverutils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Code)
	assert.Contains(t, appErr.Message, "history[0]")
	provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildTurnParts(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		file      *dto.FilePayload
		wantParts int
		wantErr   string
	}{
		{name: "text only", message: "hi", wantParts: 1},
		{name: "whitespace only", message: "   ", wantErr: constant.ErrMessageOrFileRequired},
		{name: "nothing", wantErr: constant.ErrMessageOrFileRequired},
		{
			name:      "file only",
			file:      &dto.FilePayload{Data: base64.StdEncoding.EncodeToString([]byte("x")), MimeType: "text/plain"},
			wantParts: 1,
		},
		{
			name:    "bad base64",
			file:    &dto.FilePayload{Data: "!!", MimeType: "text/plain"},
			wantErr: "file.data must be base64 encoded",
		},
		{
			name: "oversized file",
			file: &dto.FilePayload{
				Data:     base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", constant.MaxAttachmentBytes+1))),
				MimeType: "text/plain",
			},
			wantErr: "file exceeds the 5 MB limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := BuildTurnParts(tt.message, tt.file)
			if tt.wantErr != "" {
				var appErr *serverutils.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, 400, appErr.Code)
				assert.Equal(t, tt.wantErr, appErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Len(t, parts, tt.wantParts)
		})
	}
}

func TestBuildHistoryFillsBlankText(t *testing.T) {
	history, err := BuildHistory([]dto.HistoryEntry{
		{Role: "user", Text: ""},
		{Role: "bot", Text: "hello"},
		{Role: "user", Text: "  "},
	})
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, constant.EmptyHistoryTextPlaceholder, history[0].Text())
	assert.Equal(t, "hello", history[1].Text())
	assert.Equal(t, constant.EmptyHistoryTextPlaceholder, history[2].Text())

	contents, err := gemini.ToContents(history)
	require.NoError(t, err)
	for i, content := range contents {
		require.Len(t, content.Parts, 1)
		assert.NotEqual(t, genai.Text(""), content.Parts[0], "content %d has an empty part", i)
	}
}
