// Package assistant is the conversational core: intent routing, context
// assembly, session history and the dialogue with the LLM backend.
package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vinobot/internal/domain"
)

// apologyReply is returned when the LLM backend fails; the session is
// left untouched so the user can retry the same turn.
const apologyReply = "Извините, произошла ошибка. Попробуйте переформулировать вопрос."

// toolCallFragments are scrubbed from replies: some models leak
// function-call syntax into plain-text answers.
var toolCallFragments = []string{`{"function":`, `"arguments":`}

// Assistant orchestrates one dialogue turn: classify, retrieve context,
// render history, call the backend, update the session.
type Assistant struct {
	provider      domain.Provider
	resolver      *Resolver
	sessions      *Sessions
	logger        *slog.Logger
	llmTimeout    time.Duration
	contextWindow int
}

type Config struct {
	Provider      domain.Provider
	Resolver      *Resolver
	Sessions      *Sessions
	Logger        *slog.Logger
	LLMTimeout    time.Duration
	ContextWindow int // history entries rendered into the prompt
}

func New(cfg Config) *Assistant {
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Assistant{
		provider:      cfg.Provider,
		resolver:      cfg.Resolver,
		sessions:      cfg.Sessions,
		logger:        cfg.Logger.With("component", "assistant"),
		llmTimeout:    cfg.LLMTimeout,
		contextWindow: cfg.ContextWindow,
	}
}

// Respond handles one user message and returns the reply text. Backend
// failures yield a fixed apology and leave the session unchanged: no
// half-written turns.
func (a *Assistant) Respond(ctx context.Context, userID, message string) string {
	intent, query := Classify(message)
	contextText := a.resolver.Resolve(ctx, intent, query)
	history := renderHistory(a.sessions.History(userID), a.contextWindow)

	prompt := buildPrompt(contextText, history, message)

	callCtx, cancel := context.WithTimeout(ctx, a.llmTimeout)
	defer cancel()

	start := time.Now()
	reply, err := a.provider.Generate(callCtx, prompt)
	if err != nil {
		a.logger.Error("llm backend failed",
			"user", userID,
			"intent", string(intent),
			"err", err,
		)
		return apologyReply
	}

	reply = scrubReply(reply)

	a.sessions.Append(userID, RoleUser, message)
	a.sessions.Append(userID, RoleAssistant, reply)
	a.sessions.Truncate(userID, a.sessions.MaxHistory())

	a.logger.Info("turn completed",
		"user", userID,
		"intent", string(intent),
		"context_len", len(contextText),
		"reply_len", len(reply),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply
}

// ClearSession drops the user's conversation history.
func (a *Assistant) ClearSession(userID string) {
	a.sessions.Clear(userID)
}

func scrubReply(reply string) string {
	reply = strings.TrimSpace(reply)
	for _, frag := range toolCallFragments {
		reply = strings.ReplaceAll(reply, frag, "")
	}
	return reply
}
