package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/internal/pkg/serverutils"
	"ai-chatbot/pkg/chat"
	"ai-chatbot/pkg/events"
	"ai-chatbot/pkg/llm"
)

type IChatService interface {
	Relay(ctx context.Context, requestID string, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type ChatServiceConfig struct {
	SystemInstruction string
	MaxOutputTokens   int
	UpstreamTimeout   time.Duration
}

type chatService struct {
	provider  llm.LLMProvider
	publisher IPublisherService
	logger    logger.ILogger
	cfg       ChatServiceConfig
}

func NewChatService(
	provider llm.LLMProvider,
	publisher IPublisherService,
	log logger.ILogger,
	cfg ChatServiceConfig,
) IChatService {
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = constant.DefaultUpstreamTimeout
	}
	return &chatService{
		provider:  provider,
		publisher: publisher,
		logger:    log,
		cfg:       cfg,
	}
}

// Relay forwards one turn plus caller-supplied history to the provider. Nothing
// is kept between calls.
func (s *chatService) Relay(ctx context.Context, requestID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	history, err := BuildHistory(req.History)
	if err != nil {
		return nil, err
	}

	turn, err := BuildTurnParts(req.Message, req.File)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	details := map[string]interface{}{
		"request_id":     requestID,
		"provider":       s.provider.Name(),
		"history_length": len(history),
		"has_attachment": req.File != nil,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	reply, err := s.provider.Chat(callCtx, history, turn,
		llm.WithSystemInstruction(s.cfg.SystemInstruction),
		llm.WithMaxTokens(s.cfg.MaxOutputTokens),
	)
	details["latency_ms"] = time.Since(start).Milliseconds()

	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty reply from generation API")
	}

	if err != nil {
		details["error"] = err.Error()
		s.logger.Error("ChatService", "Error communicating with generation API", details)
		s.publish(ctx, constant.EventTypeChatFailed, details)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, serverutils.NewTimeoutError(constant.ErrUpstreamTimeout, err)
		}
		return nil, serverutils.NewUpstreamError(constant.ErrGenerateFailed, err)
	}

	s.logger.Info("ChatService", "Relayed chat turn", details)
	s.publish(ctx, constant.EventTypeChatRelay, details)

	return &dto.ChatResponse{Reply: reply}, nil
}

func (s *chatService) publish(ctx context.Context, eventType string, details map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	// The request context may already be past its deadline.
	if err := s.publisher.Publish(context.WithoutCancel(ctx), events.NewEvent(eventType, details)); err != nil {
		s.logger.Warn("ChatService", "Failed to publish chat event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

// BuildHistory maps every history entry onto the shared role enumeration.
// Entries are never dropped or given a default role; blank text becomes a
// placeholder.
func BuildHistory(entries []dto.HistoryEntry) ([]llm.Message, error) {
	history := make([]llm.Message, 0, len(entries))
	for i, entry := range entries {
		role, err := chat.ParseRole(entry.Role)
		if err != nil {
			return nil, serverutils.NewValidationError(fmt.Sprintf("history[%d]: %v", i, err))
		}
		text := entry.Text
		if strings.TrimSpace(text) == "" {
			// Attachment-only turns arrive without text; providers reject empty parts.
			text = constant.EmptyHistoryTextPlaceholder
		}
		history = append(history, llm.Message{
			Role:  role,
			Parts: []llm.Part{llm.TextPart(text)},
		})
	}
	return history, nil
}

// BuildTurnParts puts the attachment before the text.
func BuildTurnParts(message string, file *dto.FilePayload) ([]llm.Part, error) {
	parts := make([]llm.Part, 0, 2)

	if file != nil {
		data, err := base64.StdEncoding.DecodeString(file.Data)
		if err != nil {
			return nil, serverutils.NewValidationError("file.data must be base64 encoded")
		}
		if len(data) == 0 {
			return nil, serverutils.NewValidationError("file.data is empty")
		}
		if len(data) > constant.MaxAttachmentBytes {
			return nil, serverutils.NewValidationError(
				fmt.Sprintf("file exceeds the %d MB limit", constant.MaxAttachmentBytes/(1024*1024)),
			)
		}
		parts = append(parts, llm.BlobPart(file.MimeType, data))
	}

	if strings.TrimSpace(message) != "" {
		parts = append(parts, llm.TextPart(message))
	}

	if len(parts) == 0 {
		return nil, serverutils.NewValidationError(constant.ErrMessageOrFileRequired)
	}
	return parts, nil
}
