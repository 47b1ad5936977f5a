package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"vinobot/internal/domain"
)

// CLI is an interactive terminal transport for talking to the assistant
// without Telegram credentials.
type CLI struct {
	bus    domain.MessageBus
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

type CLIConfig struct {
	Logger *slog.Logger
	In     io.Reader
	Out    io.Writer
}

func NewCLI(cfg CLIConfig) *CLI {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &CLI{
		logger: cfg.Logger.With("component", "cli"),
		in:     cfg.In,
		out:    cfg.Out,
	}
}

func (c *CLI) Name() string { return "cli" }

// Start runs the REPL and blocks until EOF or ctx cancellation.
func (c *CLI) Start(ctx context.Context, bus domain.MessageBus) error {
	c.bus = bus

	replies := make(chan string, 1)
	bus.OnOutbound("cli", func(msg domain.OutboundMessage) {
		replies <- msg.Content
	})

	fmt.Fprintln(c.out, "🍷 Винная Лавка — локальный чат. /clear очищает историю, Ctrl-D выходит.")

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		bus.Publish(domain.InboundMessage{
			Channel:   "cli",
			ChatID:    "local",
			SenderID:  "local",
			Content:   text,
			Timestamp: time.Now(),
		})

		select {
		case reply := <-replies:
			fmt.Fprintln(c.out, reply)
		case <-ctx.Done():
			return nil
		}
	}
}
