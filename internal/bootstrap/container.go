package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-chatbot/internal/config"
	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/controller"
	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/internal/repository/contract"
	"ai-chatbot/internal/repository/implementation"
	"ai-chatbot/internal/repository/memory"
	"ai-chatbot/internal/service"
	"ai-chatbot/pkg/llm/factory"

	pktNats "ai-chatbot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	UsageService service.IUsageService

	closers []func() error
}

// NewContainer wires the relay. Only the generation provider is mandatory;
// NATS and Redis are used when configured and skipped with a warning otherwise.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	// Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NopLogger{},
	)
	c.closers = append(c.closers, pubSub.Close)

	var sink service.EventSink
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS, events stay in-process", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			sink = natsPub
			c.closers = append(c.closers, func() error {
				natsPub.Close()
				return nil
			})
		}
	}

	usageRepo := newUsageRepository(ctx, cfg, sysLogger, c)

	baseURL, apiKey := cfg.ProviderEndpoint()
	llmProvider, err := factory.NewLLMProvider(ctx, cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	if closer, ok := llmProvider.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}
	sysLogger.Info("Bootstrap", "Using LLM provider", map[string]interface{}{
		"provider": llmProvider.Name(),
		"model":    cfg.Ai.LLMModel,
	})

	publisherService := service.NewPublisherService(constant.ChatEventsTopic, pubSub, sink, sysLogger)
	chatService := service.NewChatService(llmProvider, publisherService, sysLogger, service.ChatServiceConfig{
		SystemInstruction: cfg.Ai.SystemInstruction,
		MaxOutputTokens:   cfg.Ai.MaxOutputTokens,
		UpstreamTimeout:   cfg.Ai.UpstreamTimeout,
	})
	c.UsageService = service.NewUsageService(pubSub, constant.ChatEventsTopic, usageRepo, sysLogger)

	c.ChatController = controller.NewChatController(chatService, c.UsageService)

	return c, nil
}

func newUsageRepository(ctx context.Context, cfg *config.Config, log logger.ILogger, c *Container) contract.UsageRepository {
	if cfg.App.RedisURL == "" {
		return memory.NewUsageRepository()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Bootstrap", "Failed to connect to Redis, counting in memory", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return memory.NewUsageRepository()
	}

	c.closers = append(c.closers, rdb.Close)
	return implementation.NewUsageRepository(rdb)
}

// Close releases infrastructure in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("Bootstrap", "Failed to release resource", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	c.closers = nil
	_ = c.Logger.Sync()
}
