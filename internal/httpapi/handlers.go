package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nextlevelbuilder/pairline/internal/match"
)

// GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// POST /api/request-connection
func (s *Server) handleRequestConnection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if r.Body != nil {
		// Body is optional; an absent or malformed body means an anonymous caller.
		json.NewDecoder(r.Body).Decode(&body)
	}

	res := s.engine.RequestConnection(r.Context(), body.UserID)
	writeOK(w, s.pairingBody(res))
}

// GET /api/check-pairing/{requestID}
func (s *Server) handleCheckPairing(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	res, err := s.engine.CheckPairing(requestID)
	if err != nil {
		switch {
		case errors.Is(err, match.ErrRequestExpired):
			writeError(w, http.StatusNotFound, "request expired")
		case errors.Is(err, match.ErrRequestCancelled):
			writeError(w, http.StatusNotFound, "request cancelled")
		default:
			writeError(w, http.StatusNotFound, "request not found")
		}
		return
	}

	if !res.Paired {
		writeOK(w, map[string]interface{}{
			"paired": false,
			"status": string(match.StateWaiting),
		})
		return
	}
	writeOK(w, s.pairingBody(res))
}

// POST /api/cancel-connection
func (s *Server) handleCancelConnection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RequestID == "" {
		writeError(w, http.StatusBadRequest, "requestId is required")
		return
	}

	s.engine.Cancel(body.RequestID)
	writeOK(w, nil)
}

// POST /api/end-call
func (s *Server) handleEndCall(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChannelName string `json:"channelName"`
		UserID      string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ChannelName == "" {
		writeError(w, http.StatusBadRequest, "channelName is required")
		return
	}

	s.engine.EndChannel(body.ChannelName)
	writeOK(w, nil)
}

// GET /api/active-channels
func (s *Server) handleActiveChannels(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot(time.Now())

	channels := make([]map[string]interface{}, 0, len(snap.Channels))
	for _, ch := range snap.Channels {
		channels = append(channels, map[string]interface{}{
			"channelName": ch.Name,
			"users":       ch.Users,
			"topic":       ch.Topic,
			"duration":    ch.Duration,
			"maxDuration": ch.MaxDuration,
			"remaining":   ch.Remaining,
		})
	}

	writeOK(w, map[string]interface{}{
		"activeChannels": snap.ActiveChannels,
		"waitingUsers":   snap.WaitingRequests,
		"totalRequests":  snap.TotalRequests,
		"channels":       channels,
	})
}

// pairingBody builds the response fields shared by request-connection and
// check-pairing. A paired result carries everything a client needs to join.
func (s *Server) pairingBody(res *match.PairResult) map[string]interface{} {
	body := map[string]interface{}{
		"requestId": res.RequestID,
		"paired":    res.Paired,
	}
	if res.Paired {
		body["token"] = res.Token
		body["channelName"] = res.ChannelID
		body["topic"] = res.Topic
		body["appId"] = s.appID
		body["uid"] = res.Slot
	}
	return body
}
