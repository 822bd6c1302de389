package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	tb "gopkg.in/tucnak/telebot.v2"

	"escrow-bot/internal/escrow"
)

// BioBadgeChecker grants the fee discount to users carrying the configured
// badge token in their Telegram bio. Lookups go through the raw getChat call
// since the high-level API does not expose bios.
type BioBadgeChecker struct {
	bot    *tb.Bot
	token  string
	logger *slog.Logger
}

func NewBioBadgeChecker(bot *tb.Bot, token string, logger *slog.Logger) *BioBadgeChecker {
	return &BioBadgeChecker{bot: bot, token: token, logger: logger.With("component", "badge")}
}

var _ escrow.BadgeChecker = (*BioBadgeChecker)(nil)

// HasBadge reports whether the handle's bio contains the badge token. Any
// lookup failure counts as no badge so a flaky API can only charge the
// standard fee, never undercharge.
func (c *BioBadgeChecker) HasBadge(ctx context.Context, handle string) bool {
	handle = escrow.NormalizeHandle(handle)
	if handle == "" || c.token == "" {
		return false
	}

	data, err := c.bot.Raw("getChat", map[string]string{"chat_id": "@" + handle})
	if err != nil {
		c.logger.Debug("bio lookup failed", "handle", handle, "error", err)
		return false
	}

	var resp struct {
		Result struct {
			Bio string `json:"bio"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Debug("bio decode failed", "handle", handle, "error", err)
		return false
	}

	bio := escrow.CleanText(resp.Result.Bio)
	return strings.Contains(strings.ToLower(bio), strings.ToLower(c.token))
}
