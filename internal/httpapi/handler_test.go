package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"dbchat/internal/adapter/llm"
	"dbchat/internal/config"
	"dbchat/internal/db"
	"dbchat/internal/policy"
	"dbchat/internal/query"
	"dbchat/internal/service"
	"dbchat/internal/session"
)

// plainLLM answers everything with a fixed plain-text reply.
type plainLLM struct {
	reply string
}

func (f *plainLLM) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{
			{Message: &llm.ChatMessage{Role: "assistant", Content: f.reply}},
		},
	}, nil
}

func newTestHandler(t *testing.T) (*Handler, *service.Service) {
	t.Helper()

	gormDB, err := db.OpenGorm("sqlite", filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("policy engine: %v", err)
	}

	executor := query.NewExecutor(gormDB, "sqlite", engine, []string{"SELECT"}, time.Second)
	store := session.NewStore(0)
	svc := service.New(store, &plainLLM{reply: "hello!"}, executor, &config.Config{ModelName: "test-model"})
	return NewHandler(svc), svc
}

func postChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestChatReplyFlow(t *testing.T) {
	h, svc := newTestHandler(t)

	rec := postChat(t, h, `{"type":"user_message","id":"m1","session_id":"s1","payload":{"text":"hi"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Type      string `json:"type"`
		ID        string `json:"id"`
		SessionID string `json:"session_id"`
		Payload   struct {
			Text string `json:"text"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != "chat_reply" || resp.ID != "m1" || resp.SessionID != "s1" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Payload.Text != "hello!" {
		t.Fatalf("unexpected reply text: %q", resp.Payload.Text)
	}
	if got := len(svc.HistorySnapshot("s1")); got != 2 {
		t.Fatalf("expected 2 turns, got %d", got)
	}
}

func TestChatMalformedRequest(t *testing.T) {
	h, svc := newTestHandler(t)

	cases := []string{
		`{"type":"user_message","id":"m1","payload":{"text":"hi"}}`,
		`{"type":"bogus","id":"m1","session_id":"s1","payload":{"text":"hi"}}`,
		`{"type":"user_message","id":"m1","session_id":"s1","payload":{"text":"  "}}`,
		`not json at all`,
	}
	for _, body := range cases {
		rec := postChat(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}

	// Rejected before any session mutation.
	if stats := svc.SessionStats(); stats.ActiveCount != 0 || stats.TotalTurns != 0 {
		t.Fatalf("malformed requests must not touch sessions: %+v", stats)
	}
}

func TestSessionHistoryUnknownSession(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/session/nope/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("nope")

	if err := h.SessionHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		SessionID string            `json:"session_id"`
		TurnCount int               `json:"turn_count"`
		History   []json.RawMessage `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TurnCount != 0 || len(resp.History) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	h, _ := newTestHandler(t)

	postChat(t, h, `{"type":"user_message","id":"m1","session_id":"s1","payload":{"text":"hi"}}`)

	for i := 0; i < 2; i++ {
		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/session/s1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("session_id")
		c.SetParamValues("s1")

		if err := h.ClearSession(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("delete %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestSessionStats(t *testing.T) {
	h, _ := newTestHandler(t)

	postChat(t, h, `{"type":"user_message","id":"m1","session_id":"s1","payload":{"text":"hi"}}`)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/session-stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SessionStats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var stats struct {
		ActiveCount int `json:"active_count"`
		TotalTurns  int `json:"total_turns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.ActiveCount != 1 || stats.TotalTurns != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
