package dashboard

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"tallyhq/abacus/pkg/config"
)

// manualSleep blocks every delay request until the test releases it (or the
// context ends), so protocol timers fire only when the test says so.
type manualSleep struct {
	mu      sync.Mutex
	waiters []*sleepWaiter
}

type sleepWaiter struct {
	d        time.Duration
	release  chan struct{}
	released bool
}

func (m *manualSleep) sleep(ctx context.Context, d time.Duration) error {
	w := &sleepWaiter{d: d, release: make(chan struct{})}
	m.mu.Lock()
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.release:
		return nil
	}
}

// elapse waits for a pending delay of the given duration and releases it.
func (m *manualSleep) elapse(t *testing.T, d time.Duration) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		for _, w := range m.waiters {
			if w.d == d && !w.released {
				w.released = true
				close(w.release)
				m.mu.Unlock()
				return
			}
		}
		m.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no pending delay of %v to elapse", d)
}

// fakeStream delivers pushed configurations and reports io.EOF once the
// test simulates a server-side close.
type fakeStream struct {
	updates chan config.Configuration
	done    chan struct{}
	once    sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		updates: make(chan config.Configuration),
		done:    make(chan struct{}),
	}
}

func (s *fakeStream) Next(ctx context.Context) (config.Configuration, error) {
	select {
	case cfg := <-s.updates:
		return cfg, nil
	case <-s.done:
		return config.Configuration{}, io.EOF
	case <-ctx.Done():
		return config.Configuration{}, ctx.Err()
	}
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *fakeStream) serverClose() {
	s.once.Do(func() { close(s.done) })
}

func newSubscribedClient(t *testing.T, ft *fakeTransport) (*Client, *manualSleep, chan config.Configuration) {
	t.Helper()
	updates := make(chan config.Configuration, 16)
	c := NewClient(ClientConfig{
		Endpoint:  "https://dash.test",
		APIKey:    "key",
		Transport: ft,
		OnConfigUpdate: func(cfg config.Configuration) {
			updates <- cfg
		},
	})
	ms := &manualSleep{}
	c.sleep = ms.sleep
	t.Cleanup(c.Unsubscribe)
	return c, ms, updates
}

func waitForState(t *testing.T, c *Client, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", c.State(), want)
}

func waitForUpdate(t *testing.T, updates chan config.Configuration) config.Configuration {
	t.Helper()
	select {
	case cfg := <-updates:
		return cfg
	case <-time.After(2 * time.Second):
		t.Fatal("no configuration update received")
		return config.Configuration{}
	}
}

func TestSubscribe_StreamDeliversUpdates(t *testing.T) {
	stream := newFakeStream()
	ft := &fakeTransport{
		openStream: func(ctx context.Context) (Stream, error) { return stream, nil },
	}
	c, _, updates := newSubscribedClient(t, ft)

	c.Subscribe()
	waitForState(t, c, StateStreamActive)

	pushed := config.Configuration{CreditPerDollar: 2500}
	stream.updates <- pushed

	got := waitForUpdate(t, updates)
	if got.CreditPerDollar != 2500 {
		t.Errorf("CreditPerDollar = %v, want 2500", got.CreditPerDollar)
	}

	c.Unsubscribe()
	if c.State() != StateUnsubscribed {
		t.Errorf("state after Unsubscribe = %v, want unsubscribed", c.State())
	}
}

func TestSubscribe_StreamFailureFallsBackToPolling(t *testing.T) {
	ft := &fakeTransport{
		openStream: func(ctx context.Context) (Stream, error) {
			return nil, &ConnectionError{Endpoint: "https://dash.test", Message: "refused"}
		},
		fetchCfg: config.Configuration{CreditPerDollar: 777},
	}
	c, ms, updates := newSubscribedClient(t, ft)

	c.Subscribe()
	waitForState(t, c, StatePolling)

	// First fetch happens immediately on entering polling mode.
	if got := waitForUpdate(t, updates); got.CreditPerDollar != 777 {
		t.Errorf("CreditPerDollar = %v, want 777", got.CreditPerDollar)
	}

	// Subsequent fetches fire on the poll interval.
	ms.elapse(t, pollInterval)
	waitForUpdate(t, updates)

	if _, fetch, _ := ft.counts(); fetch != 2 {
		t.Errorf("fetch calls = %d, want 2", fetch)
	}
}

func TestSubscribe_HandshakeTimeoutFallsBackToPolling(t *testing.T) {
	ft := &fakeTransport{
		openStream: func(ctx context.Context) (Stream, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		fetchCfg: config.Configuration{CreditPerDollar: 321},
	}
	c, ms, updates := newSubscribedClient(t, ft)

	c.Subscribe()
	waitForState(t, c, StateAttemptingStream)

	ms.elapse(t, openTimeout)
	waitForState(t, c, StatePolling)

	if got := waitForUpdate(t, updates); got.CreditPerDollar != 321 {
		t.Errorf("CreditPerDollar = %v, want 321", got.CreditPerDollar)
	}
}

func TestSubscribe_ReconnectsAfterServerClose(t *testing.T) {
	first := newFakeStream()
	second := newFakeStream()
	streams := make(chan *fakeStream, 2)
	streams <- first
	streams <- second

	ft := &fakeTransport{
		openStream: func(ctx context.Context) (Stream, error) { return <-streams, nil },
	}
	c, ms, updates := newSubscribedClient(t, ft)

	c.Subscribe()
	waitForState(t, c, StateStreamActive)

	first.serverClose()
	ms.elapse(t, reconnectDelay)

	// The unbuffered send succeeds only once the second stream is being
	// consumed, which proves the reconnect happened.
	select {
	case second.updates <- config.Configuration{CreditPerDollar: 42}:
	case <-time.After(2 * time.Second):
		t.Fatal("second stream never consumed after reconnect")
	}
	if got := waitForUpdate(t, updates); got.CreditPerDollar != 42 {
		t.Errorf("CreditPerDollar = %v, want 42", got.CreditPerDollar)
	}

	if _, _, open := ft.counts(); open != 2 {
		t.Errorf("OpenStream calls = %d, want 2", open)
	}
}

func TestSubscribe_Idempotent(t *testing.T) {
	stream := newFakeStream()
	ft := &fakeTransport{
		openStream: func(ctx context.Context) (Stream, error) { return stream, nil },
	}
	c, _, _ := newSubscribedClient(t, ft)

	c.Subscribe()
	c.Subscribe()
	waitForState(t, c, StateStreamActive)

	// A second Subscribe while active must not open another stream.
	time.Sleep(50 * time.Millisecond)
	if _, _, open := ft.counts(); open != 1 {
		t.Errorf("OpenStream calls = %d, want exactly 1", open)
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	stream := newFakeStream()
	ft := &fakeTransport{
		openStream: func(ctx context.Context) (Stream, error) { return stream, nil },
	}
	c, _, _ := newSubscribedClient(t, ft)

	// Unsubscribe before Subscribe is a no-op.
	c.Unsubscribe()

	c.Subscribe()
	waitForState(t, c, StateStreamActive)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Unsubscribe()
		}()
	}
	wg.Wait()

	if c.State() != StateUnsubscribed {
		t.Errorf("state = %v, want unsubscribed", c.State())
	}

	// A fresh Subscribe after teardown works again.
	c.Subscribe()
	waitForState(t, c, StateStreamActive)
}
