package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"dbchat/internal/adapter/llm"
	"dbchat/internal/domain"
	"dbchat/internal/protocol"
	"dbchat/internal/query"
	"dbchat/internal/toolcall"
)

// Chat handles one decoded user message and always produces exactly one
// outbound envelope. Model and executor failures degrade to a chat_reply
// with a framed description; they never surface as transport errors.
func (s *Service) Chat(ctx context.Context, req protocol.ChatRequest) protocol.Envelope {
	s.store.CreateOrGet(req.SessionID)

	if err := s.store.Append(req.SessionID, newTurn(domain.RoleUser, req.Text)); err != nil {
		// Unreachable given the create-or-get discipline above.
		log.Printf("ERROR: append user turn: %v", err)
	}

	history := s.store.History(req.SessionID)
	if n := len(history); n > 0 {
		history = history[:n-1] // the new user turn is passed separately
	}

	schema := s.executor.DescribeSchema(ctx)
	messages := toolcall.BuildMessages(schema, history, req.Text)

	resp, err := s.llmClient.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model:    s.config.ModelName,
		Messages: messages,
	})
	if err != nil {
		log.Printf("WARN: model call failed for session %s: %v", req.SessionID, err)
		return s.failureReply(req, "The language model is unavailable right now. Please try again in a moment.")
	}

	switch decision := toolcall.Parse(resp.FirstContent()).(type) {
	case toolcall.Respond:
		s.appendAssistant(req.SessionID, newTurn(domain.RoleAssistant, decision.Text))
		return protocol.NewChatReply(req.ID, req.SessionID, decision.Text)

	case toolcall.RunQuery:
		result, err := s.executor.Execute(ctx, decision.SQL)
		if err != nil {
			log.Printf("WARN: query failed for session %s: %v", req.SessionID, err)
			return s.failureReply(req, frameQueryFailure(err))
		}

		turn := newTurn(domain.RoleAssistant, summarize(decision.SQL, result))
		turn.Result = result
		s.appendAssistant(req.SessionID, turn)
		return protocol.NewResult(req.ID, req.SessionID, result.Records)

	default:
		return s.failureReply(req, "I could not make sense of the model's response. Please try rephrasing.")
	}
}

// failureReply records a failed assistant turn and emits a chat_reply.
func (s *Service) failureReply(req protocol.ChatRequest, text string) protocol.Envelope {
	turn := newTurn(domain.RoleAssistant, text)
	turn.Failed = true
	s.appendAssistant(req.SessionID, turn)
	return protocol.NewChatReply(req.ID, req.SessionID, text)
}

func (s *Service) appendAssistant(sessionID string, turn domain.Turn) {
	if err := s.store.Append(sessionID, turn); err != nil {
		log.Printf("ERROR: append assistant turn: %v", err)
	}
}

func newTurn(role domain.Role, content string) domain.Turn {
	return domain.Turn{
		TurnID:    uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// frameQueryFailure maps executor errors onto user-facing text without
// leaking raw engine messages unframed.
func frameQueryFailure(err error) string {
	var queryErr *query.QueryError
	switch {
	case errors.Is(err, query.ErrUnsafeStatement):
		return "That statement type is not allowed here, so I did not run it."
	case errors.Is(err, query.ErrQueryTimeout):
		return "The query took too long and was cancelled."
	case errors.As(err, &queryErr):
		return "The database rejected the query: " + queryErr.Message
	default:
		return "The query could not be executed."
	}
}

// summarize phrases a successful result for the session history.
func summarize(sqlStmt string, result *domain.QueryResult) string {
	if result.RowCount() == 0 {
		return "The query was executed successfully but returned no results."
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(sqlStmt)), "select count") {
		for col, val := range result.Records[0] {
			if strings.Contains(strings.ToLower(col), "count") {
				return fmt.Sprintf("The query returned a count of %v.", val)
			}
		}
	}
	return fmt.Sprintf("The query returned %d rows.", result.RowCount())
}
