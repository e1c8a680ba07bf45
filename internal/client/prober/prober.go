// Package prober waits for a sleeping relay to come up before the chat opens.
package prober

import (
	"context"
	"time"

	"ai-chatbot/internal/client/session"
	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/internal/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) (*dto.PingResponse, error)
}

type Prober struct {
	pinger        Pinger
	store         *session.Store
	logger        logger.ILogger
	interval      time.Duration
	countdownFrom int
	countdownStep time.Duration
	onReady       func()
	onCountdown   func(remaining int)
}

type Option func(p *Prober)

func WithInterval(interval time.Duration) Option {
	return func(p *Prober) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

func WithCountdown(from int) Option {
	return func(p *Prober) {
		if from >= 0 {
			p.countdownFrom = from
		}
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(p *Prober) {
		p.logger = log
	}
}

// OnReady is called once, from Run's goroutine, when the relay answers ok.
func OnReady(fn func()) Option {
	return func(p *Prober) {
		p.onReady = fn
	}
}

// OnCountdown receives the cosmetic countdown from its own goroutine.
func OnCountdown(fn func(remaining int)) Option {
	return func(p *Prober) {
		p.onCountdown = fn
	}
}

func New(pinger Pinger, store *session.Store, opts ...Option) *Prober {
	p := &Prober{
		pinger:        pinger,
		store:         store,
		logger:        logger.NewNopLogger(),
		interval:      constant.DefaultPollInterval,
		countdownFrom: constant.DefaultCountdownStart,
		countdownStep: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run probes immediately, then once per interval, until the relay reports
// ok or ctx is done. It returns nil once ready and ctx.Err() on teardown.
// No timer or goroutine it started outlives the call.
func (p *Prober) Run(ctx context.Context) error {
	p.store.Dispatch(session.SetConnectivity{Status: session.ConnectivityProbing})

	countdownCtx, stopCountdown := context.WithCancel(ctx)
	countdownDone := make(chan struct{})
	go p.countdown(countdownCtx, countdownDone)
	defer func() {
		stopCountdown()
		<-countdownDone
	}()

	if p.probe(ctx) {
		return p.ready()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Prober", "Probing stopped", map[string]interface{}{"reason": ctx.Err().Error()})
			return ctx.Err()
		case <-ticker.C:
			if p.probe(ctx) {
				return p.ready()
			}
		}
	}
}

func (p *Prober) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	res, err := p.pinger.Ping(probeCtx)
	if err != nil {
		p.logger.Debug("Prober", "Relay not reachable yet", map[string]interface{}{"error": err.Error()})
		return false
	}
	if res.Status != constant.PingStatusOK {
		p.logger.Debug("Prober", "Relay not ready yet", map[string]interface{}{"status": res.Status})
		return false
	}
	return true
}

func (p *Prober) ready() error {
	p.store.Dispatch(session.SetConnectivity{Status: session.ConnectivityReady})
	p.logger.Info("Prober", "Relay is ready", nil)
	if p.onReady != nil {
		p.onReady()
	}
	return nil
}

// countdown counts down to zero once and stops there. Polling is unaffected.
func (p *Prober) countdown(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	remaining := p.countdownFrom
	p.reportCountdown(remaining)
	if remaining == 0 {
		return
	}

	ticker := time.NewTicker(p.countdownStep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining--
			p.reportCountdown(remaining)
			if remaining == 0 {
				return
			}
		}
	}
}

func (p *Prober) reportCountdown(remaining int) {
	if p.onCountdown != nil {
		p.onCountdown(remaining)
	}
}
