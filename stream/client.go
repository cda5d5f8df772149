package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentdesk/agentdesk/domain"
)

// Auth modes for the invocation endpoint.
const (
	// AuthModeUser sends the caller's own bearer token.
	AuthModeUser = "user"
	// AuthModeMachine sends a machine-user bearer token and names the end
	// user in the request body via targetUserId.
	AuthModeMachine = "machine"
)

// Config holds the invocation client configuration.
type Config struct {
	// Endpoint is the base URL of the agent runtime.
	Endpoint string
	// AppendInvocations selects POST {Endpoint}/invocations instead of
	// posting to the endpoint itself (managed-runtime targets).
	AppendInvocations bool
	// AuthMode is AuthModeUser or AuthModeMachine.
	AuthMode string
	// BearerToken is the token for the selected auth mode.
	BearerToken string
	// TargetUserID is the end user a machine-mode call acts for.
	TargetUserID string
	// SessionIDHeader names the session header. Defaults to X-Session-Id.
	SessionIDHeader string
	// TraceHeader, when set, is attached with a fresh id per request.
	// Managed-runtime targets require it; leave empty otherwise.
	TraceHeader string
	// Timeout bounds a whole invocation including the streamed body.
	Timeout time.Duration
}

// Client invokes agents on the runtime and streams their NDJSON events.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new invocation client.
func NewClient(cfg Config) *Client {
	if cfg.SessionIDHeader == "" {
		cfg.SessionIDHeader = "X-Session-Id"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute // Long timeout for streaming
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type invokeRequest struct {
	Prompt       string `json:"prompt"`
	TargetUserID string `json:"targetUserId,omitempty"`
}

// Stream is a live invocation. Consume it with Next; Close cancels the
// underlying request and tears down the socket, so a consumer abandoning
// the stream early does not leak the connection.
type Stream struct {
	// SessionID is the session the invocation ran under, generated when the
	// caller did not supply one.
	SessionID string

	queue     *EventQueue
	cancel    context.CancelFunc
	body      io.ReadCloser
	closeOnce sync.Once
}

// InvokeStream POSTs the prompt and returns the live event stream. A missing
// sessionID is replaced with a fresh one, available on the returned Stream.
func (c *Client) InvokeStream(ctx context.Context, prompt, sessionID string) (*Stream, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt must not be empty")
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	reqBody := invokeRequest{Prompt: prompt}
	if c.cfg.AuthMode == AuthModeMachine {
		reqBody.TargetUserID = c.cfg.TargetUserID
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL(), bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(c.cfg.SessionIDHeader, sessionID)
	if c.cfg.TraceHeader != "" {
		httpReq.Header.Set(c.cfg.TraceHeader, uuid.New().String())
	}
	if c.cfg.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to invoke agent: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := decodeHTTPError(resp)
		resp.Body.Close()
		cancel()
		return nil, err
	}
	if resp.Body == http.NoBody {
		cancel()
		return nil, errors.New("invocation returned no body: endpoint is not a streaming target")
	}

	s := &Stream{
		SessionID: sessionID,
		queue:     NewEventQueue(),
		cancel:    cancel,
		body:      resp.Body,
	}
	go s.readLoop()
	return s, nil
}

// Next returns the next protocol event. io.EOF signals a clean end of
// stream; any other error is a transport failure or a propagated Fail.
func (s *Stream) Next(ctx context.Context) (domain.AgentStreamEvent, error) {
	return s.queue.Next(ctx)
}

// Close cancels the invocation and closes the response body. Safe to call
// more than once and after the stream has ended.
func (s *Stream) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

// readLoop drives the response body through the chunk decoder into the
// queue. It owns the body and always closes it.
func (s *Stream) readLoop() {
	defer s.body.Close()

	var dec ChunkDecoder
	buf := make([]byte, 4096)
	for {
		n, err := s.body.Read(buf)
		if n > 0 {
			for _, line := range dec.Write(buf[:n]) {
				s.pushLine(line)
			}
		}
		if err != nil {
			if line, ok := dec.Flush(); ok {
				s.pushLine(line)
			}
			if err == io.EOF {
				s.queue.End()
			} else {
				s.queue.Fail(fmt.Errorf("failed to read stream: %w", err))
			}
			return
		}
	}
}

// pushLine decodes one NDJSON line. Malformed lines are dropped with a
// diagnostic; the stream continues.
func (s *Stream) pushLine(line string) {
	ev, err := decodeStreamEvent([]byte(line))
	if err != nil {
		log.Printf("WARN: dropping malformed stream line: %v", err)
		return
	}
	s.queue.Push(ev)
}

func decodeStreamEvent(line []byte) (domain.AgentStreamEvent, error) {
	var ev domain.AgentStreamEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return domain.AgentStreamEvent{}, fmt.Errorf("failed to parse event: %w", err)
	}
	if ev.Type == "" {
		return domain.AgentStreamEvent{}, errors.New("event has no type")
	}
	ev.Raw = append(json.RawMessage(nil), line...)
	return ev, nil
}

// InvokeResult is the folded outcome of a buffered invocation.
type InvokeResult struct {
	SessionID   string                     `json:"session_id"`
	LastMessage string                     `json:"last_message,omitempty"`
	Metadata    *domain.CompletionMetadata `json:"metadata,omitempty"`
}

// Invoke runs InvokeStream to completion and folds the sequence into one
// result: the text of the last afterModelCallEvent message (parts without
// text are filtered out) and the completion metadata. A serverErrorEvent
// aborts with the server's message. Callers that need incremental output
// must use InvokeStream directly.
func (c *Client) Invoke(ctx context.Context, prompt, sessionID string) (*InvokeResult, error) {
	s, err := c.InvokeStream(ctx, prompt, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	result := &InvokeResult{SessionID: s.SessionID}
	for {
		ev, err := s.Next(ctx)
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, err
		}

		switch ev.Type {
		case domain.EventAfterModelCall:
			if ev.Message == nil {
				continue
			}
			var parts []string
			for _, p := range ev.Message.Content {
				if p.Text != "" {
					parts = append(parts, p.Text)
				}
			}
			result.LastMessage = strings.Join(parts, "")
		case domain.EventServerCompletion:
			result.Metadata = ev.Metadata
		case domain.EventServerError:
			if ev.Error != nil {
				return nil, fmt.Errorf("agent error: %s", ev.Error.Message)
			}
			return nil, errors.New("agent error: no message provided")
		}
	}
}

// PingResponse is the runtime's ping payload.
type PingResponse struct {
	Status           string `json:"status"`
	TimeOfLastUpdate int64  `json:"time_of_last_update"`
}

// ServiceInfo is the runtime's root service descriptor.
type ServiceInfo struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
	Status    string   `json:"status"`
}

// ConnectionReport combines both health probes with their joint latency.
type ConnectionReport struct {
	Ping    *PingResponse `json:"ping"`
	Info    *ServiceInfo  `json:"info"`
	Latency time.Duration `json:"latency"`
}

// Ping checks runtime liveness.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	var out PingResponse
	if err := c.getJSON(ctx, c.baseURL()+"/ping", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetServiceInfo fetches the runtime's service descriptor.
func (c *Client) GetServiceInfo(ctx context.Context) (*ServiceInfo, error) {
	var out ServiceInfo
	if err := c.getJSON(ctx, c.baseURL()+"/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestConnection issues Ping and GetServiceInfo concurrently and reports the
// combined latency. This is the only concurrent request pair in the client.
func (c *Client) TestConnection(ctx context.Context) (*ConnectionReport, error) {
	start := time.Now()
	report := &ConnectionReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ping, err := c.Ping(gctx)
		report.Ping = ping
		return err
	})
	g.Go(func() error {
		info, err := c.GetServiceInfo(gctx)
		report.Info = info
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	report.Latency = time.Since(start)
	return report, nil
}

func (c *Client) baseURL() string {
	return strings.TrimSuffix(c.cfg.Endpoint, "/")
}

func (c *Client) invokeURL() string {
	if c.cfg.AppendInvocations {
		return c.baseURL() + "/invocations"
	}
	return c.cfg.Endpoint
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.cfg.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeHTTPError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// decodeHTTPError builds an error embedding the status code and, when the
// body carries a JSON message or error field, the server's own message.
func decodeHTTPError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("agent runtime returned status %d: %s", resp.StatusCode, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("agent runtime returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
	}
	return fmt.Errorf("agent runtime returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
