package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nextlevelbuilder/pairline/internal/metrics"
	"github.com/nextlevelbuilder/pairline/internal/rtc"
	"github.com/nextlevelbuilder/pairline/internal/topics"
)

// Lookup errors surfaced by CheckPairing. ErrRequestExpired and
// ErrRequestCancelled carry why a request is gone; all three map to a
// not-found response at the HTTP boundary.
var (
	ErrNotFound         = errors.New("request not found")
	ErrRequestExpired   = errors.New("request expired")
	ErrRequestCancelled = errors.New("request cancelled")
)

// Options configures a new Engine. Topics, Credentials, and Metrics are
// required; zero durations fall back to the package defaults.
type Options struct {
	Topics      *topics.Selector
	Credentials rtc.Provider
	Metrics     *metrics.Metrics

	WaitTimeout     time.Duration
	ChannelDuration time.Duration
	MintTimeout     time.Duration
}

// Engine owns the request registry, the waiting queue, and the channel
// registry. Every mutation runs under one mutex, so no partial state is
// observable across operations.
type Engine struct {
	mu       sync.Mutex
	requests map[string]*ConnectionRequest
	channels map[string]*Channel
	queue    waitQueue
	terminal *lru.Cache[string, State]

	topics  *topics.Selector
	creds   rtc.Provider
	metrics *metrics.Metrics

	waitTimeout     time.Duration
	channelDuration time.Duration
	mintTimeout     time.Duration
}

// NewEngine creates a matchmaking engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Topics == nil {
		return nil, fmt.Errorf("topics selector is required")
	}
	if opts.Credentials == nil {
		return nil, fmt.Errorf("credential provider is required")
	}
	if opts.Metrics == nil {
		return nil, fmt.Errorf("metrics are required")
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.ChannelDuration <= 0 {
		opts.ChannelDuration = DefaultChannelDuration
	}
	if opts.MintTimeout <= 0 {
		opts.MintTimeout = DefaultMintTimeout
	}

	terminal, err := lru.New[string, State](terminalCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal cache: %w", err)
	}

	return &Engine{
		requests:        make(map[string]*ConnectionRequest),
		channels:        make(map[string]*Channel),
		terminal:        terminal,
		topics:          opts.Topics,
		creds:           opts.Credentials,
		metrics:         opts.Metrics,
		waitTimeout:     opts.WaitTimeout,
		channelDuration: opts.ChannelDuration,
		mintTimeout:     opts.MintTimeout,
	}, nil
}

// PairResult is the outcome of a pairing attempt or a status poll.
type PairResult struct {
	RequestID string
	Paired    bool
	ChannelID string
	Topic     string
	Token     string
	Slot      uint32
}

// RequestConnection runs the pairing algorithm for a new caller.
//
// If someone is waiting, the oldest waiting request is matched with this one
// and the result carries the full pairing. Otherwise the new request is
// registered and queued, and the caller is expected to poll CheckPairing.
// An empty callerID gets a generated one.
func (e *Engine) RequestConnection(ctx context.Context, callerID string) *PairResult {
	if callerID == "" {
		callerID = "anon-" + newID()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		wid, ok := e.queue.dequeueOldest()
		if !ok {
			req := &ConnectionRequest{
				ID:        newID(),
				CallerID:  callerID,
				CreatedAt: time.Now(),
				State:     StateWaiting,
			}
			e.requests[req.ID] = req
			e.queue.enqueue(req.ID)

			e.metrics.RequestsCreated.Inc()
			e.metrics.WaitingRequests.Set(float64(e.queue.len()))

			slog.Debug("request queued", "request_id", req.ID, "caller", callerID, "queue_len", e.queue.len())
			return &PairResult{RequestID: req.ID}
		}

		// Re-validate the candidate: a queue entry can outlive its request
		// when cancellation or expiry raced with a previous dequeue. The
		// queue strictly shrinks each iteration, so this loop terminates.
		partner, exists := e.requests[wid]
		if !exists || partner.State != StateWaiting {
			slog.Debug("discarding stale queue entry", "request_id", wid)
			continue
		}

		return e.pairLocked(ctx, partner, callerID)
	}
}

// pairLocked binds the waiting request (slot 1) and a new request for
// callerID (slot 2) into a fresh channel. Caller holds e.mu.
func (e *Engine) pairLocked(ctx context.Context, partner *ConnectionRequest, callerID string) *PairResult {
	now := time.Now()
	ch := &Channel{
		ID:        newID(),
		Topic:     e.topics.Pick(),
		StartedAt: now,
	}

	partnerToken := e.mintToken(ctx, ch.ID, 1)
	callerToken := e.mintToken(ctx, ch.ID, 2)

	req := &ConnectionRequest{
		ID:        newID(),
		CallerID:  callerID,
		CreatedAt: now,
		State:     StatePaired,
		ChannelID: ch.ID,
		Topic:     ch.Topic,
		Token:     callerToken,
		Slot:      2,
	}

	partner.State = StatePaired
	partner.ChannelID = ch.ID
	partner.Topic = ch.Topic
	partner.Token = partnerToken
	partner.Slot = 1

	ch.Participants = [2]string{partner.CallerID, callerID}
	ch.RequestIDs = [2]string{partner.ID, req.ID}

	e.requests[req.ID] = req
	e.channels[ch.ID] = ch

	e.metrics.RequestsCreated.Inc()
	e.metrics.RequestsPaired.Add(2)
	e.metrics.ChannelsCreated.Inc()
	e.metrics.WaitingRequests.Set(float64(e.queue.len()))
	e.metrics.ActiveChannels.Set(float64(len(e.channels)))

	slog.Info("pairing matched",
		"channel", ch.ID,
		"slot1", partner.CallerID,
		"slot2", callerID,
		"topic", ch.Topic,
	)

	return &PairResult{
		RequestID: req.ID,
		Paired:    true,
		ChannelID: ch.ID,
		Topic:     ch.Topic,
		Token:     callerToken,
		Slot:      2,
	}
}

// mintToken calls the credential provider with a bounded timeout. Any
// failure degrades to the deterministic placeholder so pairing completes.
func (e *Engine) mintToken(ctx context.Context, channelID string, slot uint32) string {
	ctx, cancel := context.WithTimeout(ctx, e.mintTimeout)
	defer cancel()

	type mintResult struct {
		token string
		err   error
	}
	done := make(chan mintResult, 1)
	go func() {
		token, err := e.creds.Mint(ctx, channelID, slot)
		done <- mintResult{token, err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			return res.token
		}
		slog.Warn("credential mint failed, using placeholder", "channel", channelID, "slot", slot, "error", res.err)
	case <-ctx.Done():
		slog.Warn("credential mint timed out, using placeholder", "channel", channelID, "slot", slot)
	}

	e.metrics.TokenMintFailures.Inc()
	return rtc.PlaceholderToken(channelID, slot)
}

// CheckPairing reports the current outcome for a request id. For requests
// that are gone, the error says why when the outcome is still cached.
func (e *Engine) CheckPairing(requestID string) (*PairResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, exists := e.requests[requestID]
	if !exists {
		if state, ok := e.terminal.Get(requestID); ok {
			switch state {
			case StateExpired:
				return nil, ErrRequestExpired
			case StateCancelled:
				return nil, ErrRequestCancelled
			}
		}
		return nil, ErrNotFound
	}

	res := &PairResult{RequestID: req.ID}
	if req.State == StatePaired {
		res.Paired = true
		res.ChannelID = req.ChannelID
		res.Topic = req.Topic
		res.Token = req.Token
		res.Slot = req.Slot
	}
	return res, nil
}

// Cancel withdraws a waiting request. Idempotent: cancelling an unknown or
// already-consumed request is a no-op. Paired requests are never cancelled
// individually; their lifetime is the channel's.
func (e *Engine) Cancel(requestID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, exists := e.requests[requestID]
	if !exists || req.State != StateWaiting {
		return
	}

	req.State = StateCancelled
	e.queue.remove(requestID)
	delete(e.requests, requestID)
	e.terminal.Add(requestID, StateCancelled)

	e.metrics.RequestsCancelled.Inc()
	e.metrics.WaitingRequests.Set(float64(e.queue.len()))

	slog.Info("request cancelled", "request_id", requestID, "caller", req.CallerID)
}

// EndChannel tears down a channel and cascades deletion of its two
// requests. Idempotent: ending an unknown channel is a no-op, since the
// caller may race with expiration.
func (e *Engine) EndChannel(channelID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch, exists := e.channels[channelID]
	if !exists {
		return
	}

	e.teardownLocked(ch)
	e.metrics.ChannelsEnded.Inc()
	e.metrics.ChannelDuration.Observe(time.Since(ch.StartedAt).Seconds())

	slog.Info("channel ended", "channel", channelID, "duration", time.Since(ch.StartedAt).Round(time.Second))
}

// teardownLocked removes a channel and both of its requests. Caller holds e.mu.
func (e *Engine) teardownLocked(ch *Channel) {
	delete(e.channels, ch.ID)
	for _, rid := range ch.RequestIDs {
		delete(e.requests, rid)
	}
	e.metrics.ActiveChannels.Set(float64(len(e.channels)))
}

// SweepOnce evicts waiting requests older than the wait timeout and channels
// older than the max duration, as of now. Returns how many of each were
// evicted.
func (e *Engine) SweepOnce(now time.Time) (expiredRequests, expiredChannels int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, req := range e.requests {
		if req.State != StateWaiting || now.Sub(req.CreatedAt) <= e.waitTimeout {
			continue
		}
		req.State = StateExpired
		e.queue.remove(id)
		delete(e.requests, id)
		e.terminal.Add(id, StateExpired)
		expiredRequests++

		slog.Info("waiting request expired", "request_id", id, "caller", req.CallerID, "waited", now.Sub(req.CreatedAt).Round(time.Second))
	}

	for _, ch := range e.channels {
		if !ch.Expired(now, e.channelDuration) {
			continue
		}
		e.teardownLocked(ch)
		e.metrics.ChannelDuration.Observe(now.Sub(ch.StartedAt).Seconds())
		expiredChannels++

		slog.Info("channel expired", "channel", ch.ID, "age", now.Sub(ch.StartedAt).Round(time.Second))
	}

	if expiredRequests > 0 {
		e.metrics.RequestsExpired.Add(float64(expiredRequests))
		e.metrics.WaitingRequests.Set(float64(e.queue.len()))
	}
	if expiredChannels > 0 {
		e.metrics.ChannelsExpired.Add(float64(expiredChannels))
	}
	return expiredRequests, expiredChannels
}

// ChannelSummary describes one active channel for the stats endpoint.
type ChannelSummary struct {
	Name        string
	Users       [2]string
	Topic       string
	Duration    float64 // seconds since the channel started
	MaxDuration float64 // seconds
	Remaining   float64 // seconds until forced expiry, never negative
}

// Snapshot is a point-in-time view of engine state.
type Snapshot struct {
	ActiveChannels  int
	WaitingRequests int
	TotalRequests   int
	Channels        []ChannelSummary
}

// Snapshot reports current counts and per-channel summaries as of now.
func (e *Engine) Snapshot(now time.Time) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		ActiveChannels:  len(e.channels),
		WaitingRequests: e.queue.len(),
		TotalRequests:   len(e.requests),
		Channels:        make([]ChannelSummary, 0, len(e.channels)),
	}
	for _, ch := range e.channels {
		age := now.Sub(ch.StartedAt).Seconds()
		remaining := e.channelDuration.Seconds() - age
		if remaining < 0 {
			remaining = 0
		}
		snap.Channels = append(snap.Channels, ChannelSummary{
			Name:        ch.ID,
			Users:       ch.Participants,
			Topic:       ch.Topic,
			Duration:    age,
			MaxDuration: e.channelDuration.Seconds(),
			Remaining:   remaining,
		})
	}
	return snap
}

// QueueLen returns the current waiting queue length.
func (e *Engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.len()
}
