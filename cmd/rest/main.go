package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-chatbot/internal/bootstrap"
	"ai-chatbot/internal/config"
	"ai-chatbot/internal/server"
	"ai-chatbot/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	defer container.Close()

	// 3. Initialize Tracer
	shutdownTracer := tracer.InitTracer(container.Logger)
	defer shutdownTracer(context.Background())

	// 4. Start Background Services
	if err := container.UsageService.Consume(ctx); err != nil {
		container.Logger.Warn("Main", "Usage counters disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	// 6. Run until signalled
	select {
	case err := <-errCh:
		if err != nil {
			container.Logger.Error("Main", "Server stopped", map[string]interface{}{"error": err.Error()})
		}
	case <-ctx.Done():
		container.Logger.Info("Main", "Shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			container.Logger.Error("Main", "Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
