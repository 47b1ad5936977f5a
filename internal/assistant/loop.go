package assistant

import (
	"context"
	"log/slog"

	"vinobot/internal/domain"
)

const defaultConcurrency = 5

// Loop consumes inbound messages from the bus and answers them through
// the assistant with bounded concurrency. One slow LLM call never
// blocks other users' turns: each message runs in its own goroutine.
type Loop struct {
	assistant   *Assistant
	bus         domain.MessageBus
	logger      *slog.Logger
	concurrency int
}

type LoopConfig struct {
	Assistant   *Assistant
	Bus         domain.MessageBus
	Logger      *slog.Logger
	Concurrency int
}

func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		assistant:   cfg.Assistant,
		bus:         cfg.Bus,
		logger:      cfg.Logger.With("component", "loop"),
		concurrency: cfg.Concurrency,
	}
}

// Run blocks until ctx is cancelled or the bus closes.
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("assistant loop started", "concurrency", l.concurrency)

	sem := make(chan struct{}, l.concurrency)
	inbound := l.bus.Subscribe()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("assistant loop stopping")
			return
		case msg, ok := <-inbound:
			if !ok {
				l.logger.Info("inbound channel closed, assistant loop stopping")
				return
			}
			sem <- struct{}{}
			go func(m domain.InboundMessage) {
				defer func() { <-sem }()
				l.processMessage(ctx, m)
			}(msg)
		}
	}
}

func (l *Loop) processMessage(ctx context.Context, msg domain.InboundMessage) {
	userID := msg.Channel + ":" + msg.SenderID

	if msg.Content == "/clear" {
		l.assistant.ClearSession(userID)
		l.bus.SendOutbound(domain.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: "✨ История диалога очищена",
			Format:  "text",
		})
		return
	}

	reply := l.assistant.Respond(ctx, userID, msg.Content)

	l.bus.SendOutbound(domain.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: reply,
		Format:  "markdown",
	})
}
