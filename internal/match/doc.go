// Package match implements the matchmaking and session-lifecycle engine.
//
// Callers submit connection requests; the engine pairs them FIFO into
// two-party channels, assigns each channel a conversation topic, and mints a
// join credential per participant slot. A request is consumed exactly once:
// Waiting transitions to Paired, Cancelled, or Expired and never back.
//
// The caller that completes a match gets the full pairing in the same call.
// The caller that was already waiting is not notified; it learns of its own
// pairing on its next status poll. Polling is therefore the canonical way to
// consume this engine.
//
// All registry and queue mutations — pairing, cancellation, channel teardown,
// sweeping — are serialized behind a single mutex. The only call performed
// while holding it is the credential mint, which is bounded by a timeout and
// degrades to a placeholder token.
package match
