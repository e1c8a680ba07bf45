// Package ui is the terminal front end: a wake-up screen shown while the relay
// starts, then the conversation view.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"ai-chatbot/internal/client/prober"
	"ai-chatbot/internal/client/session"
	"ai-chatbot/internal/client/transport"
	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/pkg/chat"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	pageWakeUp = "wakeup"
	pageChat   = "chat"
)

type Config struct {
	PollInterval time.Duration
	Countdown    int
	SkipWakeUp   bool
}

type App struct {
	app    *tview.Application
	pages  *tview.Pages
	store  *session.Store
	client *transport.Client
	logger logger.ILogger
	cfg    Config
	screen tcell.Screen

	// redraw coalesces render requests; the draw loop is its only reader.
	redraw    chan struct{}
	countdown atomic.Int64
	chatShown bool
	stop      context.CancelFunc

	wakeUpView   *tview.TextView
	conversation *tview.TextView
	banner       *tview.TextView
	status       *tview.TextView
	input        *tview.InputField
}

func New(client *transport.Client, store *session.Store, log logger.ILogger, cfg Config) *App {
	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		store:  store,
		client: client,
		logger: log,
		cfg:    cfg,
		redraw: make(chan struct{}, 1),
	}
	a.countdown.Store(int64(cfg.Countdown))
	a.app.EnablePaste(true)

	a.wakeUpView = initWakeUpView()
	a.conversation = initConversationView()
	a.banner = tview.NewTextView().SetDynamicColors(true)
	a.status = tview.NewTextView().SetDynamicColors(true)
	a.input = initChatInput()

	chatLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.conversation, 0, 1, false).
		AddItem(a.banner, 1, 0, false).
		AddItem(a.status, 1, 0, false).
		AddItem(a.input, 3, 0, true)

	a.pages.
		AddPage(pageWakeUp, createModal(a.wakeUpView, 64, 9), true, true).
		AddPage(pageChat, chatLayout, true, false)

	a.setInputCapture()
	return a
}

func initWakeUpView() *tview.TextView {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetWordWrap(true)
	view.SetTitle("Connecting").SetBorder(true)
	return view
}

func initConversationView() *tview.TextView {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true)
	view.SetTitle("Conversation").SetBorder(true)
	return view
}

func initChatInput() *tview.InputField {
	input := tview.NewInputField().
		SetLabel("> ").
		SetPlaceholder("Type a message, /attach <path>, /detach or /quit")
	input.SetTitle("Message").SetBorder(true)
	return input
}

func createModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

// Run blocks until the user quits or ctx is done. Nothing it starts outlives
// the call: the draw loop exits before the application is stopped.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.stop = cancel

	unsubscribe := a.store.Subscribe(func(session.State) {
		a.requestRedraw()
	})
	defer unsubscribe()

	drawDone := make(chan struct{})
	go a.drawLoop(ctx, drawDone)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		<-drawDone
		a.app.Stop()
	}()

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			cancel()
			return nil
		}
		return event
	})

	var proberDone chan struct{}
	if a.cfg.SkipWakeUp {
		a.store.Dispatch(session.SetConnectivity{Status: session.ConnectivityReady})
	} else {
		proberDone = make(chan struct{})
		go func() {
			defer close(proberDone)
			a.wakeUp(ctx)
		}()
	}

	if a.screen != nil {
		a.app.SetScreen(a.screen)
	}
	a.render()
	err := a.app.SetRoot(a.pages, true).Run()

	cancel()
	if err != nil {
		// The event loop never ran; a queued draw can't complete.
		return err
	}
	<-stopped
	if proberDone != nil {
		<-proberDone
	}
	return nil
}

// drawLoop forwards redraw requests to the event loop until ctx is done.
// QueueUpdateDraw waits for the event loop, so the application is only
// stopped after this returns.
func (a *App) drawLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.redraw:
			a.app.QueueUpdateDraw(a.render)
		}
	}
}

// requestRedraw never blocks; pending requests collapse into one.
func (a *App) requestRedraw() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

func (a *App) wakeUp(ctx context.Context) {
	p := prober.New(a.client, a.store,
		prober.WithInterval(a.cfg.PollInterval),
		prober.WithCountdown(a.cfg.Countdown),
		prober.WithLogger(a.logger),
		prober.OnCountdown(func(remaining int) {
			a.countdown.Store(int64(remaining))
			a.requestRedraw()
		}),
	)
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("UI", "Wake-up probing ended", map[string]interface{}{"error": err.Error()})
	}
}

func (a *App) showChat() {
	a.chatShown = true
	a.pages.SwitchToPage(pageChat)
	a.app.SetFocus(a.input)
}

func (a *App) setInputCapture() {
	a.input.SetChangedFunc(func(text string) {
		a.store.Dispatch(session.SetPendingText{Text: text})
	})

	a.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			a.store.Dispatch(session.SetError{})
			return nil
		case tcell.KeyEnter:
			a.submit(a.input.GetText())
			return nil
		}
		return event
	})
}

func (a *App) submit(content string) {
	trimmed := strings.TrimSpace(content)

	switch {
	case trimmed == "/quit":
		if a.stop != nil {
			a.stop()
		}
		return
	case trimmed == "/detach":
		a.store.Dispatch(session.SetPendingAttachment{})
		a.input.SetText("")
		return
	case strings.HasPrefix(trimmed, "/attach "):
		path := strings.TrimSpace(strings.TrimPrefix(trimmed, "/attach "))
		if err := transport.SelectAttachment(a.store, path); err != nil {
			a.logger.Warn("UI", "Attachment rejected", map[string]interface{}{"path": path, "error": err.Error()})
		}
		a.input.SetText("")
		return
	}

	state := a.store.Snapshot()
	if state.Loading || (trimmed == "" && state.PendingAttachment == nil) {
		return
	}

	attachment := state.PendingAttachment
	a.input.SetText("")
	go func() {
		err := a.client.SendTurn(context.Background(), a.store, trimmed, attachment)
		if err != nil && !errors.Is(err, transport.ErrSendInFlight) {
			a.logger.Debug("UI", "Send failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func (a *App) renderCountdown(remaining int) {
	a.wakeUpView.Clear()
	fmt.Fprintf(a.wakeUpView, "\nWaking up the server at [yellow]%s[-]\n", tview.Escape(a.client.BaseURL()))
	fmt.Fprintln(a.wakeUpView, "Free hosts sleep when idle; the first start can take a while.")
	if remaining > 0 {
		fmt.Fprintf(a.wakeUpView, "\nEstimated wait: [::b]%d s[::-]", remaining)
	} else {
		fmt.Fprint(a.wakeUpView, "\nAlmost there...")
	}
}

// render redraws both pages from the current store snapshot. It runs on
// the event loop.
func (a *App) render() {
	state := a.store.Snapshot()

	if state.Connectivity == session.ConnectivityReady {
		if !a.chatShown {
			a.showChat()
		}
	} else {
		a.renderCountdown(int(a.countdown.Load()))
	}

	a.conversation.Clear()
	for _, turn := range state.Turns {
		fmt.Fprint(a.conversation, formatTurn(turn))
	}
	if state.Loading {
		fmt.Fprint(a.conversation, "[gray::i]Assistant is typing...[-::-]\n")
	}
	a.conversation.ScrollToEnd()

	a.banner.Clear()
	if state.Error != "" {
		fmt.Fprintf(a.banner, "[white:red] %s [-:-] [gray](Esc to dismiss)[-]", tview.Escape(state.Error))
	}

	a.status.Clear()
	if state.PendingAttachment != nil {
		fmt.Fprintf(a.status, "[gray]Attached: %s (%s)[-]",
			tview.Escape(state.PendingAttachment.Name), state.PendingAttachment.MIMEType)
	}

	a.input.SetDisabled(state.Loading)
}

func formatTurn(turn session.Turn) string {
	var b strings.Builder

	switch {
	case turn.Role == chat.RoleUser:
		b.WriteString("[green::b]You:[-::-]\n")
	case turn.Local && turn.Role == chat.RoleAssistant && strings.HasPrefix(turn.Text, "⚠️"):
		b.WriteString("[red::b]Assistant:[-::-]\n")
	default:
		b.WriteString("[blue::b]Assistant:[-::-]\n")
	}

	if turn.AttachmentName != "" {
		fmt.Fprintf(&b, "[gray]📎 %s[-]\n", tview.Escape(turn.AttachmentName))
	}
	if turn.Text != "" {
		b.WriteString(tview.Escape(turn.Text))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
