package toolcall

import (
	"fmt"
	"strings"

	"dbchat/internal/adapter/llm"
	"dbchat/internal/domain"
)

const (
	// historyWindow is how many trailing turns are replayed to the model.
	historyWindow = 10
	// contentLimit truncates long turn contents to keep the prompt small.
	contentLimit = 200
)

const systemPromptFormat = `You are a database assistant with access to exactly one tool.

Database schema:
%s

To run a database query, respond with a single JSON object and nothing else:
{"tool": "%s", "arguments": {"sql": "<one SQL statement>", "rationale": "<why this query answers the user>"}}

For anything that does not need the database, reply in plain conversational text. Never wrap a plain reply in JSON.`

// BuildMessages assembles the model request: a system message carrying the
// schema and the tool convention, the trailing conversation history as
// role-tagged messages, then the new user message.
func BuildMessages(schema string, history []domain.Turn, userText string) []llm.ChatMessage {
	if strings.TrimSpace(schema) == "" {
		schema = "(schema unavailable)"
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(systemPromptFormat, schema, ToolName)},
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, turn := range history {
		messages = append(messages, llm.ChatMessage{
			Role:    string(turn.Role),
			Content: truncateContent(turn.Content),
		})
	}

	return append(messages, llm.ChatMessage{Role: "user", Content: userText})
}

func truncateContent(s string) string {
	runes := []rune(s)
	if len(runes) <= contentLimit {
		return s
	}
	return string(runes[:contentLimit]) + "..."
}
