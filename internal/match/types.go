package match

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a connection request.
type State string

const (
	StateWaiting   State = "waiting"
	StatePaired    State = "paired"
	StateCancelled State = "cancelled"
	StateExpired   State = "expired"
)

// Engine timing defaults.
const (
	// DefaultWaitTimeout is how long an unmatched request may sit in the
	// waiting queue before the sweeper evicts it.
	DefaultWaitTimeout = 5 * time.Minute
	// DefaultChannelDuration is the hard ceiling on a channel's lifetime.
	DefaultChannelDuration = 10 * time.Minute
	// DefaultMintTimeout bounds a single credential provider call.
	DefaultMintTimeout = 2 * time.Second
	// terminalCacheSize bounds the cache of cancelled/expired outcomes kept
	// so status polls can say why a request is gone.
	terminalCacheSize = 4096
)

// ConnectionRequest is one caller's in-flight pairing attempt.
type ConnectionRequest struct {
	ID        string
	CallerID  string
	CreatedAt time.Time
	State     State

	// Populated only when State is StatePaired.
	ChannelID string
	Topic     string
	Token     string
	Slot      uint32 // participant slot: 1 = the waiting side, 2 = the matcher
}

// Channel is an active two-party session.
type Channel struct {
	ID           string
	Participants [2]string // caller ids, ordered by join slot
	RequestIDs   [2]string // originating requests, for cascading cleanup
	Topic        string
	StartedAt    time.Time
}

// Expired reports whether the channel has outlived maxDuration at now.
func (c *Channel) Expired(now time.Time, maxDuration time.Duration) bool {
	return now.Sub(c.StartedAt) > maxDuration
}

// newID generates a time-ordered unique identifier.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
