package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"ai-chatbot/internal/client/session"
	"ai-chatbot/internal/dto"
	"ai-chatbot/internal/pkg/logger"
	"ai-chatbot/pkg/chat"
)

const (
	// The relay bounds its own upstream call; this only guards against a
	// relay that stops answering altogether.
	defaultRequestTimeout = 90 * time.Second
	maxResponseBytes      = 4 * 1024 * 1024
	errorTurnPrefix       = "⚠️ "
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.ILogger
	inFlight   atomic.Bool
}

type Option func(c *Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(c *Client) {
		c.logger = log
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendTurn posts one user turn with the conversation so far and records the
// outcome in store. Blank input without an attachment is ignored.
func (c *Client) SendTurn(ctx context.Context, store *session.Store, text string, attachment *Attachment) error {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return nil
	}

	if store.Snapshot().Loading || !c.inFlight.CompareAndSwap(false, true) {
		return ErrSendInFlight
	}
	defer c.inFlight.Store(false)

	// Context is captured before the new turn is appended.
	req := dto.ChatRequest{
		Message: text,
		History: store.History(),
	}
	userTurn := session.NewTurn(chat.RoleUser, text)
	if attachment != nil {
		req.File = &dto.FilePayload{
			Data:     base64.StdEncoding.EncodeToString(attachment.Data),
			MimeType: attachment.MIMEType,
		}
		userTurn.AttachmentName = attachment.Name
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode chat request: %w", err)
	}

	store.Dispatch(session.SetError{})
	store.Dispatch(session.AppendTurn{Turn: userTurn})
	store.Dispatch(session.ClearPending{})
	store.Dispatch(session.SetLoading{Loading: true})
	defer store.Dispatch(session.SetLoading{Loading: false})

	start := time.Now()
	reply, err := c.postChat(ctx, body)
	if err != nil {
		c.logger.Warn("Transport", "Chat request failed", map[string]interface{}{
			"history_length": len(req.History),
			"has_attachment": attachment != nil,
			"error":          err.Error(),
		})
		store.Dispatch(session.SetError{Message: err.Error()})
		store.Dispatch(session.AppendTurn{Turn: session.NewLocalTurn(chat.RoleAssistant, errorTurnPrefix+err.Error())})
		return err
	}

	c.logger.Info("Transport", "Chat reply received", map[string]interface{}{
		"history_length": len(req.History),
		"latency_ms":     time.Since(start).Milliseconds(),
	})
	store.Dispatch(session.AppendTurn{Turn: session.NewTurn(chat.RoleAssistant, reply)})
	return nil
}

func (c *Client) postChat(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	status, raw, err := c.do(httpReq)
	if err != nil {
		return "", err
	}

	var res dto.ChatResponse
	if err := json.Unmarshal(raw, &res); err != nil || res.Reply == "" {
		return "", &Error{
			Kind:    KindMalformed,
			Status:  status,
			Message: "Received an unreadable reply from the server",
			Err:     err,
		}
	}
	return res.Reply, nil
}

// Ping asks the relay whether it is up.
func (c *Client) Ping(ctx context.Context) (*dto.PingResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	status, raw, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var res dto.PingResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &Error{Kind: KindMalformed, Status: status, Message: "Received an unreadable ping response", Err: err}
	}
	return &res, nil
}

// do sends req and returns the body of a 2xx response. Everything else is
// converted to *Error.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return 0, nil, ctxErr
		}
		return 0, nil, &Error{
			Kind:    KindUnreachable,
			Message: fmt.Sprintf("Could not connect to the server at %s. Make sure the relay is running.", c.baseURL),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, &Error{
			Kind:    KindMalformed,
			Status:  resp.StatusCode,
			Message: "Failed to read the server response",
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody dto.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			return resp.StatusCode, nil, &Error{
				Kind:    KindServer,
				Status:  resp.StatusCode,
				Message: errBody.Error,
				Details: errBody.Details,
			}
		}
		statusText := http.StatusText(resp.StatusCode)
		if statusText == "" {
			statusText = resp.Status
		}
		return resp.StatusCode, nil, &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: "Server error: " + statusText,
		}
	}

	return resp.StatusCode, raw, nil
}
