package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

type capturingEngine struct {
	events chan InboundMessage
}

func newCapturingEngine() *capturingEngine {
	return &capturingEngine{events: make(chan InboundMessage, 16)}
}

func (e *capturingEngine) Handle(ctx context.Context, sessionID string, event domain.InboundEvent) error {
	e.events <- InboundMessage{SenderID: sessionID, Event: event}
	return nil
}

func (e *capturingEngine) waitForEvent(t *testing.T) InboundMessage {
	t.Helper()
	select {
	case msg := <-e.events:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("engine never received the event")
		return InboundMessage{}
	}
}

func TestHandler_VerifyAcceptsMatchingToken(t *testing.T) {
	h := NewHandler(newCapturingEngine(), "my-secret")

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=my-secret&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "12345" {
		t.Errorf("body = %q, want the echoed challenge", got)
	}
}

func TestHandler_VerifyRejectsBadToken(t *testing.T) {
	h := NewHandler(newCapturingEngine(), "my-secret")

	tests := []string{
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345",
		"/webhook?hub.mode=unsubscribe&hub.verify_token=my-secret&hub.challenge=12345",
		"/webhook?hub.mode=subscribe&hub.verify_token=my-secret",
	}
	for _, url := range tests {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()

		h.Verify(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("Verify(%s) status = %d, want 403", url, rec.Code)
		}
	}
}

const textNotification = `{
	"entry": [{
		"changes": [{
			"value": {
				"messages": [{
					"from": "5511999990000",
					"type": "text",
					"text": {"body": "oi, quero minha carta"}
				}]
			}
		}]
	}]
}`

func TestHandler_ReceiveDispatchesTextMessage(t *testing.T) {
	engine := newCapturingEngine()
	h := NewHandler(engine, "my-secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(textNotification))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	msg := engine.waitForEvent(t)
	if msg.SenderID != "5511999990000" {
		t.Errorf("SenderID = %q", msg.SenderID)
	}
	if msg.Event.Type != domain.EventText || msg.Event.Text != "oi, quero minha carta" {
		t.Errorf("event = %+v", msg.Event)
	}
}

func TestHandler_ReceiveDispatchesMediaMessage(t *testing.T) {
	engine := newCapturingEngine()
	h := NewHandler(engine, "my-secret")

	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "5511999990000",
						"type": "image",
						"image": {"id": "media-123", "link": "https://cdn.example/img.jpg"}
					}]
				}
			}]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	msg := engine.waitForEvent(t)
	if msg.Event.Type != domain.EventMedia {
		t.Fatalf("event type = %q, want media", msg.Event.Type)
	}
	// The link is preferred over the opaque media id.
	if msg.Event.MediaRef != "https://cdn.example/img.jpg" {
		t.Errorf("MediaRef = %q", msg.Event.MediaRef)
	}
}

func TestHandler_ReceiveAcksUnparseablePayload(t *testing.T) {
	h := NewHandler(newCapturingEngine(), "my-secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	// A 4xx would make the channel redeliver forever.
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 even for garbage", rec.Code)
	}
}

func TestHandler_ReceiveIgnoresStatusOnlyNotification(t *testing.T) {
	engine := newCapturingEngine()
	h := NewHandler(engine, "my-secret")

	payload := `{"entry": [{"changes": [{"value": {"statuses": [{"id": "x", "status": "delivered"}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	select {
	case msg := <-engine.events:
		t.Errorf("unexpected event dispatched: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNormalize_SkipsUnknownTypesAndMissingSender(t *testing.T) {
	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [
						{"from": "111", "type": "sticker"},
						{"from": "", "type": "text", "text": {"body": "anon"}},
						{"from": "222", "type": "text", "text": {"body": "oi"}}
					]
				}
			}]
		}]
	}`

	messages, err := Normalize([]byte(payload))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	if messages[0].SenderID != "222" {
		t.Errorf("SenderID = %q", messages[0].SenderID)
	}
}
