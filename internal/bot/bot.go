package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"escrow-bot/internal/config"
	"escrow-bot/internal/escrow"
	"escrow-bot/internal/metrics"
	"escrow-bot/internal/report"
	"escrow-bot/internal/repo"
)

const commandTimeout = 15 * time.Second

// Bot wires the Telegram transport to the escrow service and report engine.
type Bot struct {
	tb      *tb.Bot
	svc     *escrow.Service
	reports *report.Engine
	store   repo.Store
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewClient dials the Telegram API with a long poller. The client is created
// before the escrow service so the badge checker can share it.
func NewClient(cfg *config.Config) (*tb.Bot, error) {
	return tb.NewBot(tb.Settings{
		Token:  cfg.BotToken,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
}

// New registers all handlers on an existing client.
func New(teleBot *tb.Bot, svc *escrow.Service, reports *report.Engine, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *Bot {
	b := &Bot{
		tb:      teleBot,
		svc:     svc,
		reports: reports,
		store:   svc.Store(),
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "bot"),
	}
	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", b.command("start", b.handleStart))
	b.tb.Handle("/help", b.command("help", b.handleHelp))
	b.tb.Handle("/escrowers", b.command("escrowers", b.handleEscrowers))
	b.tb.Handle("/admin", b.command("admin", b.handleAdmin))
	b.tb.Handle("/unadmin", b.command("unadmin", b.handleUnadmin))
	b.tb.Handle("/add", b.command("add", b.handleAdd))
	b.tb.Handle("/cut", b.command("cut", b.handleCut))
	b.tb.Handle("/ext", b.command("ext", b.handleExtend))
	b.tb.Handle("/close", b.command("close", b.handleClose))
	b.tb.Handle("/cancel", b.command("cancel", b.handleCancel))
	b.tb.Handle("/shift", b.command("shift", b.handleShift))
	b.tb.Handle("/rank", b.command("rank", b.handleRank))
	b.tb.Handle("/info", b.command("info", b.handleInfo))
	b.tb.Handle("/dinfo", b.command("dinfo", b.handleDealsInfo))
	b.tb.Handle("/stats", b.command("stats", b.handleStats))
	b.tb.Handle("/gstats", b.command("gstats", b.handleGlobalStats))
	b.tb.Handle("/fees", b.command("fees", b.handleFees))
	b.tb.Handle("/eday", b.command("eday", b.handleEscrowerDay))
	b.tb.Handle("/gday", b.command("gday", b.handleGroupDay))
	b.tb.Handle("/s", b.command("show", b.handleShow))
	b.tb.Handle(tb.OnText, b.command("form_listener", b.handleText))
}

// Start begins long polling. Blocks until Stop is called.
func (b *Bot) Start() {
	b.logger.Info("bot polling started")
	b.tb.Start()
}

// Stop terminates long polling.
func (b *Bot) Stop() {
	b.tb.Stop()
	b.logger.Info("bot polling stopped")
}

// command wraps a handler with a timeout context, metrics and uniform error
// replies.
func (b *Bot) command(name string, fn func(ctx context.Context, m *tb.Message) error) func(*tb.Message) {
	return func(m *tb.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx, m)
		if b.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			b.metrics.CommandsTotal.WithLabelValues(name, outcome).Inc()
			b.metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			b.logger.Warn("command failed", "command", name, "chat_id", chatID(m), "error", err)
			b.reply(m, userMessage(err))
		}
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, escrow.ErrNotAuthorized):
		return "❌ You are not allowed to use this command."
	case errors.Is(err, escrow.ErrValidation):
		return "❌ Invalid input. Check the amount and try again."
	case errors.Is(err, escrow.ErrNotFound):
		return "❌ Deal not found."
	case errors.Is(err, escrow.ErrInvalidState):
		return "❌ This deal is already closed."
	case errors.Is(err, escrow.ErrInsufficientHold):
		return "❌ Cut exceeds remaining hold."
	case errors.Is(err, escrow.ErrPartialCounters):
		return "⚠️ Deal closed, but stats recording failed. Totals may be off."
	default:
		return "❌ Something went wrong, try again later."
	}
}

func (b *Bot) reply(m *tb.Message, text string, options ...interface{}) {
	if _, err := b.tb.Send(m.Chat, text, options...); err != nil {
		b.logger.Warn("send failed", "chat_id", chatID(m), "error", err)
		if b.metrics != nil {
			b.metrics.Errors.WithLabelValues("bot").Inc()
		}
	}
}

func chatID(m *tb.Message) int64 {
	if m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}

func senderID(m *tb.Message) int64 {
	if m.Sender == nil {
		return 0
	}
	return int64(m.Sender.ID)
}

func (b *Bot) isOwner(userID int64) bool {
	return b.cfg.IsOwner(userID)
}

func (b *Bot) isEscrower(ctx context.Context, userID int64) bool {
	_, err := b.store.GetEscrower(ctx, userID)
	return err == nil
}

func (b *Bot) isEscrowerOrOwner(ctx context.Context, userID int64) bool {
	return b.isOwner(userID) || b.isEscrower(ctx, userID)
}

// displayName prefers first+last name, then @username, then the numeric id.
func displayName(u *tb.User) string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return itoa(int64(u.ID))
}
