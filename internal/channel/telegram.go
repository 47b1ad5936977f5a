// Package channel contains the chat transports: Telegram and a local
// CLI for development without bot credentials.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vinobot/internal/domain"
	"vinobot/internal/knowledge"
)

const (
	telegramMaxMsgLen      = 4000
	telegramMaxSendRetries = 3
)

const startMessage = "🍷 **Добро пожаловать в Винную Лавку!**\n\n" +
	"Я - ваш личный сомелье и консультант по винам.\n\n" +
	"**Я могу помочь вам:**\n" +
	"🔍 Найти идеальное вино по описанию\n" +
	"🌍 Рассказать о винодельческих регионах\n" +
	"🍇 Объяснить особенности сортов винограда\n" +
	"🍽️ Подобрать вино к вашему блюду\n" +
	"💰 Узнать цены\n" +
	"📋 Показать меню\n\n" +
	"Просто напишите, что вас интересует! 🥂"

// WineMenu supplies the wine list for the /menu command. The listing is
// recomputed on every call.
type WineMenu interface {
	WinesList() []domain.WineEntry
}

// Telegram is the bot transport: it delivers inbound messages to the
// bus and renders replies, menus and pagination.
type Telegram struct {
	token     string
	parseMode string
	menu      WineMenu

	bot    *tgbotapi.BotAPI
	bus    domain.MessageBus
	logger *slog.Logger
}

type TelegramConfig struct {
	Token     string
	ParseMode string
	Menu      WineMenu
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.ParseMode == "" {
		cfg.ParseMode = "Markdown"
	}
	return &Telegram{
		token:     cfg.Token,
		parseMode: cfg.ParseMode,
		menu:      cfg.Menu,
		logger:    cfg.Logger.With("component", "telegram"),
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects to Telegram and polls for updates until ctx is done.
func (t *Telegram) Start(ctx context.Context, bus domain.MessageBus) error {
	t.bus = bus

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)

	t.setCommands()

	bus.OnOutbound("telegram", func(msg domain.OutboundMessage) {
		chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
		if err != nil {
			t.logger.Error("invalid chat ID for telegram outbound", "chatID", msg.ChatID, "err", err)
			return
		}
		t.sendMessage(chatID, msg.Content)
	})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	t.logger.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram channel stopping")
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(update)
		}
	}
}

func (t *Telegram) setCommands() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "🍷 Начать работу с ботом"},
		tgbotapi.BotCommand{Command: "menu", Description: "📋 Показать винную карту"},
		tgbotapi.BotCommand{Command: "clear", Description: "🗑 Очистить историю диалога"},
	)
	if _, err := t.bot.Request(cmds); err != nil {
		t.logger.Warn("cannot register bot commands", "err", err)
	}
}

func (t *Telegram) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		t.handleCallback(update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	if update.Message.IsCommand() {
		t.handleCommand(chatID, update.Message)
		return
	}

	t.logger.Info("telegram message received",
		"user_id", update.Message.From.ID,
		"chat_id", chatID,
		"text_len", len(text),
	)

	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = t.bot.Send(typing)

	t.bus.Publish(domain.InboundMessage{
		Channel:   "telegram",
		ChatID:    strconv.FormatInt(chatID, 10),
		SenderID:  strconv.FormatInt(update.Message.From.ID, 10),
		Content:   text,
		Timestamp: time.Unix(int64(update.Message.Date), 0),
	})
}

func (t *Telegram) handleCommand(chatID int64, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		t.sendMessage(chatID, startMessage)
	case "clear":
		t.bus.Publish(domain.InboundMessage{
			Channel:  "telegram",
			ChatID:   strconv.FormatInt(chatID, 10),
			SenderID: strconv.FormatInt(msg.From.ID, 10),
			Content:  "/clear",
		})
	case "menu":
		t.sendMenuPage(chatID, 1)
	default:
		t.sendMessage(chatID, "Неизвестная команда. Напишите вопрос или откройте /menu.")
	}
}

func (t *Telegram) sendMenuPage(chatID int64, page int) {
	wines := t.menu.WinesList()
	if len(wines) == 0 {
		t.sendMessage(chatID, "Меню временно недоступно 😔")
		return
	}

	text, totalPages := knowledge.FormatWinesPage(wines, page)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = t.parseMode
	msg.ReplyMarkup = paginationKeyboard(page, totalPages)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("cannot send menu page", "page", page, "err", err)
	}
}

// handleCallback serves the menu pagination buttons.
func (t *Telegram) handleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	callback := tgbotapi.NewCallback(cq.ID, "")
	_, _ = t.bot.Request(callback)

	if cq.Data == "ignore" || !strings.HasPrefix(cq.Data, "menu_page_") {
		return
	}
	page, err := strconv.Atoi(strings.TrimPrefix(cq.Data, "menu_page_"))
	if err != nil {
		return
	}

	wines := t.menu.WinesList()
	text, totalPages := knowledge.FormatWinesPage(wines, page)

	edit := tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, text)
	edit.ParseMode = t.parseMode
	kb := paginationKeyboard(page, totalPages)
	edit.ReplyMarkup = &kb
	if _, err := t.bot.Send(edit); err != nil {
		t.logger.Error("cannot edit menu page", "page", page, "err", err)
	}
}

func paginationKeyboard(page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton

	if page > 1 {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("menu_page_%d", page-1)))
	}
	buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page, totalPages), "ignore"))
	if page < totalPages {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("Вперёд ➡️", fmt.Sprintf("menu_page_%d", page+1)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
}

// sendMessage splits replies exceeding the Telegram length ceiling and
// delivers the parts in order.
func (t *Telegram) sendMessage(chatID int64, text string) {
	for _, part := range SplitLongMessage(text, telegramMaxMsgLen) {
		t.sendChunk(chatID, part)
	}
}

// sendChunk sends one part with retry and rate-limit handling: Markdown
// first, plain text on parse errors.
func (t *Telegram) sendChunk(chatID int64, text string) {
	for attempt := 0; attempt <= telegramMaxSendRetries; attempt++ {
		msg := tgbotapi.NewMessage(chatID, text)
		if attempt == 0 && t.parseMode != "" {
			msg.ParseMode = t.parseMode
		}

		_, err := t.bot.Send(msg)
		if err == nil {
			return
		}

		errStr := err.Error()
		if strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "429") {
			retryAfter := time.Duration(attempt+1) * 3 * time.Second
			t.logger.Warn("telegram rate limited, backing off",
				"retry_after", retryAfter, "attempt", attempt+1,
			)
			time.Sleep(retryAfter)
			continue
		}

		if attempt == 0 && msg.ParseMode != "" && strings.Contains(errStr, "can't parse entities") {
			continue // retry as plain text
		}

		t.logger.Error("telegram send failed", "chat_id", chatID, "err", err)
		return
	}
}
