package llm

import (
	"log"
	"time"
)

// ModeMock selects the offline mock client.
const ModeMock = "mock"

// NewLLMClient creates an LLM client for the configured mode. Mode "mock"
// returns a MockClient; anything else returns the real HTTP client.
func NewLLMClient(mode, baseURL, apiKey string, timeout time.Duration) LLMClient {
	if mode == ModeMock {
		log.Println("CHAT_MODE=mock detected, using mock LLM client")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, timeout)
}
