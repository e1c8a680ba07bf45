package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-chatbot/internal/client/session"
	"ai-chatbot/internal/client/transport"
	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/internal/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	server       string
	pollInterval time.Duration
	countdown    int
	skipWakeUp   bool
	logFile      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "chat",
		Short:        "Terminal client for the AI chatbot relay",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	defaultServer := "http://localhost:5000"
	if v, ok := os.LookupEnv("CHAT_SERVER_URL"); ok && v != "" {
		defaultServer = v
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", defaultServer, "relay base URL (env CHAT_SERVER_URL)")
	flags.DurationVar(&opts.pollInterval, "poll-interval", constant.DefaultPollInterval, "how often to probe a sleeping relay")
	flags.IntVar(&opts.countdown, "countdown", constant.DefaultCountdownStart, "seconds shown on the wake-up countdown")
	flags.BoolVar(&opts.skipWakeUp, "skip-wakeup", false, "open the chat without probing the relay first")
	flags.StringVar(&opts.logFile, "log-file", "logs/chat.log", "client log file")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	// stdout belongs to the UI, so the client only logs to file.
	log := logger.NewIsolatedLogger(opts.logFile)
	defer log.Sync()

	log.Info("Main", "Starting chat client", map[string]interface{}{
		"server":        opts.server,
		"poll_interval": opts.pollInterval.String(),
		"skip_wakeup":   opts.skipWakeUp,
	})

	store := session.NewStore(session.WithDefaultGreeting())
	client := transport.New(opts.server, transport.WithLogger(log))

	app := ui.New(client, store, log, ui.Config{
		PollInterval: opts.pollInterval,
		Countdown:    opts.countdown,
		SkipWakeUp:   opts.skipWakeUp,
	})
	return app.Run(ctx)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
