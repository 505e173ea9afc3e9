// Package service coordinates one chat request end to end: session state,
// the model call, the tool decision and the query execution.
package service

import (
	"dbchat/internal/adapter/llm"
	"dbchat/internal/config"
	"dbchat/internal/query"
	"dbchat/internal/session"
)

type Service struct {
	store     *session.Store
	llmClient llm.LLMClient
	executor  *query.Executor
	config    *config.Config
}

func New(store *session.Store, llmClient llm.LLMClient, executor *query.Executor, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		llmClient: llmClient,
		executor:  executor,
		config:    cfg,
	}
}
