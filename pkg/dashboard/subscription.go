package dashboard

import (
	"context"
	"errors"
	"io"
)

// State identifies where the configuration subscription currently is in
// its lifecycle.
type State int

const (
	// StateUnsubscribed means no subscription resources exist.
	StateUnsubscribed State = iota

	// StateAttemptingStream means a streaming connection is being opened.
	StateAttemptingStream

	// StateStreamActive means configuration updates arrive over a live
	// server-push stream.
	StateStreamActive

	// StatePolling means the stream could not be established and
	// configuration is fetched periodically instead.
	StatePolling
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnsubscribed:
		return "unsubscribed"
	case StateAttemptingStream:
		return "attempting-stream"
	case StateStreamActive:
		return "stream-active"
	case StatePolling:
		return "polling"
	default:
		return "unknown"
	}
}

// State returns the current subscription state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Subscribe starts the configuration subscription: it attempts a streaming
// connection and falls back to periodic polling when the stream cannot be
// established within the handshake timeout. Updates are delivered through
// the OnConfigUpdate callback.
//
// Subscribe is idempotent: calling it while already subscribed is a no-op,
// so at most one stream or polling timer exists per client.
func (c *Client) Subscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return // already subscribed
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateAttemptingStream

	go c.run(ctx, c.done)
}

// Unsubscribe stops the subscription, closing any open stream and
// cancelling any polling timer, and waits for the subscription goroutine
// to exit. It is idempotent and safe to call concurrently.
func (c *Client) Unsubscribe() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	if cancel == nil {
		return // not subscribed
	}

	cancel()
	<-done
}

// run is the subscription goroutine. It owns all stream and timer
// resources; ctx cancellation is the only way to stop it.
func (c *Client) run(ctx context.Context, done chan struct{}) {
	defer func() {
		c.setState(StateUnsubscribed)
		close(done)
	}()

	for {
		c.setState(StateAttemptingStream)

		stream, err := c.openStream(ctx)
		if ctx.Err() != nil {
			if stream != nil {
				stream.Close()
			}
			return
		}
		if err != nil {
			c.logger.Warn("configuration stream unavailable, falling back to polling",
				"endpoint", c.endpoint,
				"error", err,
			)
			c.poll(ctx)
			return
		}

		c.setState(StateStreamActive)
		c.logger.Info("configuration stream established", "endpoint", c.endpoint)

		c.consume(ctx, stream)
		stream.Close()

		if ctx.Err() != nil {
			return
		}

		// Stream closed while still subscribed: reconnect after a fixed
		// delay.
		c.logger.Info("configuration stream closed, reconnecting", "delay", reconnectDelay)
		if err := c.sleep(ctx, reconnectDelay); err != nil {
			return
		}
	}
}

// openStream opens the push stream, bounding the handshake with
// openTimeout. On timeout the in-flight attempt is cancelled and any
// stream it still manages to produce is closed.
func (c *Client) openStream(ctx context.Context) (Stream, error) {
	type result struct {
		stream Stream
		err    error
	}

	streamCtx, cancel := context.WithCancel(ctx)
	resCh := make(chan result, 1)

	go func() {
		stream, err := c.transport.OpenStream(streamCtx)
		resCh <- result{stream, err}
	}()

	// The handshake deadline goes through c.sleep so tests can drive it.
	timeout := make(chan struct{})
	go func() {
		if c.sleep(ctx, openTimeout) == nil {
			close(timeout)
		}
	}()

	// Closes whatever stream the cancelled attempt still produces.
	reap := func() {
		go func() {
			if res := <-resCh; res.stream != nil {
				res.stream.Close()
			}
		}()
	}

	select {
	case res := <-resCh:
		if res.err != nil {
			cancel()
			return nil, res.err
		}
		return res.stream, nil

	case <-timeout:
		cancel()
		reap()
		return nil, &ConnectionError{Endpoint: c.endpoint, Message: "stream open timed out"}

	case <-ctx.Done():
		cancel()
		reap()
		return nil, ctx.Err()
	}
}

// consume reads configuration updates off the stream until it ends or the
// context is cancelled. Every update replaces the engine configuration via
// the typed callback.
func (c *Client) consume(ctx context.Context, stream Stream) {
	for {
		cfg, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			c.logger.Warn("configuration stream error", "error", err)
			return
		}

		c.logger.Debug("configuration update received", "models", len(cfg.Models))
		c.onUpdate(cfg)
	}
}

// poll fetches the configuration immediately and then on every tick until
// the subscription is cancelled. Fetch failures are logged and leave the
// current configuration in place.
func (c *Client) poll(ctx context.Context) {
	c.setState(StatePolling)
	c.logger.Info("configuration polling started", "interval", pollInterval)

	c.pollOnce(ctx)

	for {
		if err := c.sleep(ctx, pollInterval); err != nil {
			return
		}
		c.pollOnce(ctx)
	}
}

// pollOnce performs a single configuration fetch (with the standard retry
// policy) and applies the result.
func (c *Client) pollOnce(ctx context.Context) {
	cfg, err := c.FetchConfig(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("configuration poll failed", "error", err)
		return
	}

	c.onUpdate(cfg)
}
