package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nextlevelbuilder/pairline/internal/match"
	"github.com/nextlevelbuilder/pairline/internal/metrics"
	"github.com/nextlevelbuilder/pairline/internal/rtc"
	"github.com/nextlevelbuilder/pairline/internal/topics"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	engine, err := match.NewEngine(match.Options{
		Topics: topics.NewSelector(),
		Credentials: rtc.ProviderFunc(func(_ context.Context, channelID string, uid uint32) (string, error) {
			return fmt.Sprintf("tok-%s-%d", channelID, uid), nil
		}),
		Metrics: m,
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return NewServer(Config{Address: "127.0.0.1", Port: 0, AppID: "test-app"}, engine, m)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response to %s %s is not JSON: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec.Code, decoded
}

func TestHealth(t *testing.T) {
	router := newTestServer(t).Router()

	code, body := doJSON(t, router, http.MethodGet, "/api/health", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["success"] != true || body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
	if body["timestamp"] == nil {
		t.Error("expected a timestamp")
	}
}

func TestRequestAndPollFlow(t *testing.T) {
	router := newTestServer(t).Router()

	// Alice arrives first and waits.
	code, aliceBody := doJSON(t, router, http.MethodPost, "/api/request-connection", `{"userId":"alice"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if aliceBody["paired"] != false {
		t.Fatalf("expected alice to wait, got %v", aliceBody)
	}
	aliceReq := aliceBody["requestId"].(string)

	// Bob arrives and the match resolves in his response.
	_, bobBody := doJSON(t, router, http.MethodPost, "/api/request-connection", `{"userId":"bob"}`)
	if bobBody["paired"] != true {
		t.Fatalf("expected bob to pair, got %v", bobBody)
	}
	if bobBody["appId"] != "test-app" {
		t.Errorf("expected appId test-app, got %v", bobBody["appId"])
	}
	if bobBody["uid"] != float64(2) {
		t.Errorf("expected bob uid 2, got %v", bobBody["uid"])
	}
	channel := bobBody["channelName"].(string)
	if !strings.HasPrefix(bobBody["token"].(string), "tok-"+channel) {
		t.Errorf("unexpected token %v", bobBody["token"])
	}

	// Alice's poll now reports the same channel and topic.
	code, polled := doJSON(t, router, http.MethodGet, "/api/check-pairing/"+aliceReq, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if polled["paired"] != true {
		t.Fatalf("expected alice paired on poll, got %v", polled)
	}
	if polled["channelName"] != channel {
		t.Errorf("expected channel %s, got %v", channel, polled["channelName"])
	}
	if polled["topic"] != bobBody["topic"] {
		t.Errorf("both sides must share the topic")
	}
	if polled["uid"] != float64(1) {
		t.Errorf("expected alice uid 1, got %v", polled["uid"])
	}

	// Stats reflect one active channel, nobody waiting.
	_, stats := doJSON(t, router, http.MethodGet, "/api/active-channels", "")
	if stats["activeChannels"] != float64(1) || stats["waitingUsers"] != float64(0) || stats["totalRequests"] != float64(2) {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestCheckPairingWaiting(t *testing.T) {
	router := newTestServer(t).Router()

	_, body := doJSON(t, router, http.MethodPost, "/api/request-connection", `{"userId":"alice"}`)
	requestID := body["requestId"].(string)

	code, polled := doJSON(t, router, http.MethodGet, "/api/check-pairing/"+requestID, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if polled["paired"] != false || polled["status"] != "waiting" {
		t.Errorf("expected waiting status, got %v", polled)
	}
}

func TestCheckPairingUnknownRequest(t *testing.T) {
	router := newTestServer(t).Router()

	code, body := doJSON(t, router, http.MethodGet, "/api/check-pairing/nope", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body["success"] != false || body["error"] != "request not found" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestCancelFlow(t *testing.T) {
	router := newTestServer(t).Router()

	_, body := doJSON(t, router, http.MethodPost, "/api/request-connection", `{"userId":"alice"}`)
	requestID := body["requestId"].(string)

	code, ack := doJSON(t, router, http.MethodPost, "/api/cancel-connection", fmt.Sprintf(`{"requestId":%q}`, requestID))
	if code != http.StatusOK || ack["success"] != true {
		t.Fatalf("expected cancel ack, got %d %v", code, ack)
	}

	code, polled := doJSON(t, router, http.MethodGet, "/api/check-pairing/"+requestID, "")
	if code != http.StatusNotFound || polled["error"] != "request cancelled" {
		t.Errorf("expected cancelled 404, got %d %v", code, polled)
	}

	// Cancelling an unknown request still acks.
	code, ack = doJSON(t, router, http.MethodPost, "/api/cancel-connection", `{"requestId":"ghost"}`)
	if code != http.StatusOK || ack["success"] != true {
		t.Errorf("expected idempotent cancel ack, got %d %v", code, ack)
	}
}

func TestCancelRequiresRequestID(t *testing.T) {
	router := newTestServer(t).Router()

	code, body := doJSON(t, router, http.MethodPost, "/api/cancel-connection", `{}`)
	if code != http.StatusBadRequest || body["success"] != false {
		t.Errorf("expected 400 envelope, got %d %v", code, body)
	}
}

func TestEndCallFlow(t *testing.T) {
	router := newTestServer(t).Router()

	_, aliceBody := doJSON(t, router, http.MethodPost, "/api/request-connection", `{"userId":"alice"}`)
	_, bobBody := doJSON(t, router, http.MethodPost, "/api/request-connection", `{"userId":"bob"}`)
	channel := bobBody["channelName"].(string)

	code, ack := doJSON(t, router, http.MethodPost, "/api/end-call",
		fmt.Sprintf(`{"channelName":%q,"userId":"bob"}`, channel))
	if code != http.StatusOK || ack["success"] != true {
		t.Fatalf("expected end-call ack, got %d %v", code, ack)
	}

	// Both requests are gone after teardown.
	for _, body := range []map[string]interface{}{aliceBody, bobBody} {
		rid := body["requestId"].(string)
		code, _ := doJSON(t, router, http.MethodGet, "/api/check-pairing/"+rid, "")
		if code != http.StatusNotFound {
			t.Errorf("expected 404 for %s after end-call, got %d", rid, code)
		}
	}

	// Ending again still acks.
	code, ack = doJSON(t, router, http.MethodPost, "/api/end-call",
		fmt.Sprintf(`{"channelName":%q,"userId":"bob"}`, channel))
	if code != http.StatusOK || ack["success"] != true {
		t.Errorf("expected idempotent end-call ack, got %d %v", code, ack)
	}
}

func TestEndCallRequiresChannelName(t *testing.T) {
	router := newTestServer(t).Router()

	code, body := doJSON(t, router, http.MethodPost, "/api/end-call", `{"userId":"bob"}`)
	if code != http.StatusBadRequest || body["success"] != false {
		t.Errorf("expected 400 envelope, got %d %v", code, body)
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	router := newTestServer(t).Router()

	code, body := doJSON(t, router, http.MethodGet, "/api/no-such-route", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body["success"] != false || body["error"] == nil {
		t.Errorf("expected error envelope, got %v", body)
	}
}

func TestRequestConnectionWithoutBody(t *testing.T) {
	router := newTestServer(t).Router()

	code, body := doJSON(t, router, http.MethodPost, "/api/request-connection", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous request, got %d", code)
	}
	if body["requestId"] == nil || body["paired"] != false {
		t.Errorf("unexpected body: %v", body)
	}
}
