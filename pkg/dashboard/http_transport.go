package dashboard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tallyhq/abacus/pkg/config"
)

const (
	logPath       = "/api/v1/reconciliation-log"
	configPath    = "/api/v1/config"
	subscribePath = "/api/v1/config/subscribe"
)

// HTTPTransport talks to a real dashboard endpoint over HTTP. The
// configuration subscription uses a server-sent-events stream; log posting
// and configuration fetching are plain JSON requests.
type HTTPTransport struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPTransport creates a transport for the given endpoint and API key.
// The endpoint is the dashboard base URL without a trailing slash.
//
// No timeout is set on the underlying client: per-attempt timeouts for
// post/fetch come from the caller's context, and the subscription stream
// must be allowed to live indefinitely.
func NewHTTPTransport(endpoint, apiKey string) *HTTPTransport {
	return &HTTPTransport{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

// PostLog implements Transport.
func (t *HTTPTransport) PostLog(ctx context.Context, entry *LogEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+logPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	t.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp)
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// FetchConfig implements Transport.
func (t *HTTPTransport) FetchConfig(ctx context.Context) (config.Configuration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+configPath, nil)
	if err != nil {
		return config.Configuration{}, fmt.Errorf("failed to create request: %w", err)
	}
	t.setHeaders(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return config.Configuration{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return config.Configuration{}, newStatusError(resp)
	}

	var cfg config.Configuration
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return config.Configuration{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}

// OpenStream implements Transport. The stream stays open until the given
// context is cancelled or the server closes the connection.
func (t *HTTPTransport) OpenStream(ctx context.Context) (Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+subscribePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	t.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Endpoint: t.endpoint, Message: "stream request failed", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &ConnectionError{
			Endpoint: t.endpoint,
			Message:  fmt.Sprintf("stream rejected with status %d %s", resp.StatusCode, resp.Status),
		}
	}

	return &sseStream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

func (t *HTTPTransport) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Accept", "application/json")
}

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Body:       strings.TrimSpace(string(body)),
	}
}

// sseStream reads configuration-update events off a server-sent-events
// response body. Only "data:" lines are meaningful; each carries a full
// Configuration JSON document.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

// Next implements Stream.
func (s *sseStream) Next(ctx context.Context) (config.Configuration, error) {
	if s.closed {
		return config.Configuration{}, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return config.Configuration{}, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return config.Configuration{}, fmt.Errorf("failed to read stream: %w", err)
			}
			return config.Configuration{}, io.EOF
		}

		line := s.scanner.Text()
		if line == "" {
			continue
		}
		// Skip comments, event names and other non-data fields.
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var cfg config.Configuration
		if err := json.Unmarshal([]byte(data), &cfg); err != nil {
			return config.Configuration{}, fmt.Errorf("failed to parse configuration event: %w", err)
		}
		return cfg, nil
	}
}

// Close implements Stream.
func (s *sseStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
