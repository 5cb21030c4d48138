// README: Ticket surface handler tests over a stubbed service.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mensa/internal/http/handlers"
	"mensa/internal/modules/stage"
	"mensa/internal/modules/ticket"
	"mensa/internal/types"
)

// stubTicketService records the last call and replies with canned results.
type stubTicketService struct {
	lastOp    string
	lastActor types.ChatID
	lastID    types.TicketID

	ticket *ticket.Ticket
	err    error
}

func (s *stubTicketService) MakeTicket(_ context.Context, cmd ticket.CreateCommand) (*ticket.Ticket, error) {
	s.lastOp, s.lastActor = "make", cmd.Customer
	return s.ticket, s.err
}

func (s *stubTicketService) CancelTicket(_ context.Context, actor types.ChatID, id types.TicketID) error {
	s.lastOp, s.lastActor, s.lastID = "cancel", actor, id
	return s.err
}

func (s *stubTicketService) NextTicket(_ context.Context, actor types.ChatID, id types.TicketID) error {
	s.lastOp, s.lastActor, s.lastID = "next", actor, id
	return s.err
}

func (s *stubTicketService) ConfirmTicket(_ context.Context, actor types.ChatID, id types.TicketID) error {
	s.lastOp, s.lastActor, s.lastID = "confirm", actor, id
	return s.err
}

func buildRouter(svc *stubTicketService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))

	r := gin.New()
	h := handlers.NewTicketHandler(svc)
	r.POST("/api/tickets", h.Create)
	r.POST("/api/tickets/:id/cancel", h.Cancel)
	r.POST("/api/tickets/:id/next", h.Next)
	r.POST("/api/tickets/:id/confirm", h.Confirm)
	w := handlers.NewWebhookHandler(svc, log)
	r.POST("/telegram/webhook", w.Handle)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestCreateTicket(t *testing.T) {
	svc := &stubTicketService{ticket: &ticket.Ticket{ID: "abc123", Stage: stage.OwnersConfirmation}}
	r := buildRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/tickets", map[string]any{
		"customer_id":       42,
		"node_id":           7,
		"anchor_message_id": 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["ticket_id"] != "abc123" || body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if svc.lastActor != 42 {
		t.Errorf("actor = %d", int64(svc.lastActor))
	}
}

func TestCreateTicketMissingFields(t *testing.T) {
	r := buildRouter(&stubTicketService{})
	w := doRequest(r, http.MethodPost, "/api/tickets", map[string]any{"customer_id": 42})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateTicketValidationTag(t *testing.T) {
	svc := &stubTicketService{err: ticket.ErrMissingAddress}
	r := buildRouter(svc)
	w := doRequest(r, http.MethodPost, "/api/tickets", map[string]any{
		"customer_id":       42,
		"node_id":           7,
		"anchor_message_id": 10,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode(t, w)["status"]; got != "missing_address" {
		t.Errorf("tag = %v", got)
	}
}

func TestActionRouting(t *testing.T) {
	cases := []struct {
		path string
		op   string
	}{
		{"/api/tickets/abc123/cancel", "cancel"},
		{"/api/tickets/abc123/next", "next"},
		{"/api/tickets/abc123/confirm", "confirm"},
	}
	for _, tc := range cases {
		svc := &stubTicketService{}
		r := buildRouter(svc)
		w := doRequest(r, http.MethodPost, tc.path, map[string]any{"actor_id": 500001})
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tc.path, w.Code)
		}
		if svc.lastOp != tc.op || svc.lastActor != 500001 || svc.lastID != "abc123" {
			t.Errorf("%s: call = %s/%d/%s", tc.path, svc.lastOp, int64(svc.lastActor), svc.lastID)
		}
	}
}

func TestActionRejectsMalformedID(t *testing.T) {
	svc := &stubTicketService{}
	r := buildRouter(svc)
	w := doRequest(r, http.MethodPost, "/api/tickets/DROP%20TABLE/cancel", map[string]any{"actor_id": 42})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastOp != "" {
		t.Errorf("service reached with op %q", svc.lastOp)
	}
}

func TestActionConflictStatus(t *testing.T) {
	svc := &stubTicketService{err: ticket.ErrConflict}
	r := buildRouter(svc)
	w := doRequest(r, http.MethodPost, "/api/tickets/abc123/next", map[string]any{"actor_id": 42})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode(t, w)["status"]; got != "conflict" {
		t.Errorf("tag = %v", got)
	}
}

func TestWebhookCallbackDispatch(t *testing.T) {
	svc := &stubTicketService{}
	r := buildRouter(svc)

	w := doRequest(r, http.MethodPost, "/telegram/webhook", map[string]any{
		"callback_query": map[string]any{
			"id":   "cb1",
			"from": map[string]any{"id": 500001},
			"data": "ticket:advance:abc123",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastOp != "next" || svc.lastActor != 500001 || svc.lastID != "abc123" {
		t.Errorf("call = %s/%d/%s", svc.lastOp, int64(svc.lastActor), svc.lastID)
	}
}

func TestWebhookIgnoresForeignUpdates(t *testing.T) {
	svc := &stubTicketService{}
	r := buildRouter(svc)

	// plain message update: acknowledged, never dispatched
	w := doRequest(r, http.MethodPost, "/telegram/webhook", map[string]any{
		"message": map[string]any{"text": "hello"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastOp != "" {
		t.Errorf("service reached with op %q", svc.lastOp)
	}

	// unknown callback namespace
	w = doRequest(r, http.MethodPost, "/telegram/webhook", map[string]any{
		"callback_query": map[string]any{
			"from": map[string]any{"id": 500001},
			"data": "menu:open:5",
		},
	})
	if w.Code != http.StatusOK || svc.lastOp != "" {
		t.Errorf("status = %d, op = %q", w.Code, svc.lastOp)
	}
}

func TestWebhookFailureStaysAcknowledged(t *testing.T) {
	svc := &stubTicketService{err: ticket.ErrConflict}
	r := buildRouter(svc)

	w := doRequest(r, http.MethodPost, "/telegram/webhook", map[string]any{
		"callback_query": map[string]any{
			"from": map[string]any{"id": 42},
			"data": "ticket:cancel:abc123",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 so Telegram stops retrying", w.Code)
	}
	if got := decode(t, w)["status"]; got != "conflict" {
		t.Errorf("tag = %v", got)
	}
}
