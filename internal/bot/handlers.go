package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	tb "gopkg.in/tucnak/telebot.v2"

	"escrow-bot/internal/escrow"
	"escrow-bot/internal/repo"
)

var dealIDArgRe = regexp.MustCompile(`^(?i)DL-[A-Z0-9]{6}$`)

func (b *Bot) handleStart(ctx context.Context, m *tb.Message) error {
	b.reply(m, "👋 Escrow Bot online. Use /help for commands.")
	return nil
}

func (b *Bot) handleHelp(ctx context.Context, m *tb.Message) error {
	b.reply(m, strings.Join([]string{
		"📖 Help Menu",
		"/escrowers - To get the list of verified admins.",
		"/admin (user_id) (limit) <owner> - Make someone an escrower with a deal limit.",
		"/unadmin (user_id) <owner> - Remove someone who is an escrower.",
		"/add (amount) <escrowers> - Register a deal amount (reply to the deal form).",
		"/cut (amount) <admins/owner> - Deduct partial payment from the main amount.",
		"/ext (amount) <admins/owner> - Extend the main amount.",
		"/close (amount) <admins/owner> - Close the deal and log the message.",
		"/cancel <admins/owner> - Void an active deal (reply to the card).",
		"/shift (deal_id) <admins/owner> - Shift a deal to a new form.",
		"/rank - Top 20 by volume.",
		"/info - Your profile card.",
		"/dinfo - Open deals held by an escrower.",
		"/s (deal_id) - Link back to the original deal form.",
		"/eday - Your closed deals today.",
		"/gday - Per-group totals today.",
		"/stats <owner> - Escrower-wise holdings.",
		"/gstats - Global statistics.",
		"/fees <owner> - Fees earned per escrower.",
	}, "\n"))
	return nil
}

func (b *Bot) handleEscrowers(ctx context.Context, m *tb.Message) error {
	escrowers, err := b.store.ListEscrowers(ctx)
	if err != nil {
		return fmt.Errorf("list escrowers: %w", err)
	}
	if len(escrowers) == 0 {
		b.reply(m, "No verified escrowers yet.")
		return nil
	}
	lines := []string{"✅ Verified Escrowers:", ""}
	for _, e := range escrowers {
		name := e.DisplayName
		if name == "" {
			name = itoa(e.UserID)
		}
		lines = append(lines, fmt.Sprintf("• %s (%d) — limit: %s$", name, e.UserID, trimZero(e.DealLimit)))
	}
	b.reply(m, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) handleAdmin(ctx context.Context, m *tb.Message) error {
	if !b.isOwner(senderID(m)) {
		b.reply(m, "❌ Only owner can use this command.")
		return nil
	}
	fields := strings.Fields(m.Payload)
	if len(fields) != 2 {
		b.reply(m, "Usage: /admin <user_id> <limit>")
		return nil
	}
	userID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.reply(m, "❌ Invalid user id.")
		return nil
	}
	limit, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || limit < 0 {
		b.reply(m, "❌ Invalid limit.")
		return nil
	}

	// Refresh the display name on every /admin run.
	name := itoa(userID)
	if chat, err := b.tb.ChatByID(fields[0]); err == nil {
		name = displayName(&tb.User{
			ID:        chat.ID,
			FirstName: chat.FirstName,
			LastName:  chat.LastName,
			Username:  chat.Username,
		})
	} else if userID == senderID(m) {
		name = displayName(m.Sender)
	}

	if err := b.store.UpsertEscrower(ctx, repo.Escrower{
		UserID:      userID,
		DisplayName: name,
		DealLimit:   limit,
	}); err != nil {
		return fmt.Errorf("upsert escrower: %w", err)
	}
	b.reply(m, fmt.Sprintf("Hence user %d became escrower with a limit of %s$.", userID, trimZero(limit)))
	return nil
}

func (b *Bot) handleUnadmin(ctx context.Context, m *tb.Message) error {
	if !b.isOwner(senderID(m)) {
		b.reply(m, "❌ Only owner can use this command.")
		return nil
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(m.Payload), 10, 64)
	if err != nil {
		b.reply(m, "Usage: /unadmin <user_id>")
		return nil
	}
	deleted, err := b.store.DeleteEscrower(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete escrower: %w", err)
	}
	if deleted {
		b.reply(m, fmt.Sprintf("✅ Removed escrower: %d", userID))
	} else {
		b.reply(m, fmt.Sprintf("❌ User %d is not an escrower.", userID))
	}
	return nil
}

// handleText watches group chatter for deal forms and stores a pending stub
// so the deal is traceable before any amount is registered.
func (b *Bot) handleText(ctx context.Context, m *tb.Message) error {
	if m.Chat == nil || !b.cfg.IsEscrowGroup(m.Chat.ID) {
		return nil
	}
	if !LooksLikeForm(m.Text) {
		return nil
	}
	form, ok := ParseForm(m.Text)
	if !ok {
		return nil
	}
	deal, err := b.svc.RegisterFormStub(ctx, form.BuyerHandle, form.SellerHandle, m.Chat.ID, int64(m.ID))
	if err != nil {
		b.logger.Warn("form stub failed", "chat_id", m.Chat.ID, "error", err)
		return nil
	}
	b.logger.Debug("form observed",
		"deal_id", deal.DealID, "buyer", form.BuyerHandle, "seller", form.SellerHandle)
	return nil
}

func (b *Bot) handleAdd(ctx context.Context, m *tb.Message) error {
	if !b.isEscrower(ctx, senderID(m)) {
		b.reply(m, "❌ Only escrowers can use /add.")
		return nil
	}
	if m.ReplyTo == nil {
		b.reply(m, "❌ You must reply to a deal form with /add.")
		return nil
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.Payload), 64)
	if err != nil {
		b.reply(m, "❌ Invalid amount.")
		return nil
	}
	form, ok := ParseForm(m.ReplyTo.Text)
	if !ok {
		b.reply(m, "❌ Could not extract seller/buyer usernames from the form.")
		return nil
	}

	deal, err := b.svc.CreateDeal(ctx, escrow.CreateParams{
		EscrowerID:    senderID(m),
		EscrowerName:  displayName(m.Sender),
		BuyerHandle:   form.BuyerHandle,
		SellerHandle:  form.SellerHandle,
		MainAmount:    amount,
		FormChatID:    m.ReplyTo.Chat.ID,
		FormMessageID: int64(m.ReplyTo.ID),
	})
	if err != nil {
		return err
	}

	b.reply(m, dealCard(deal), tb.ModeMarkdown)
	return nil
}

func dealCard(d *repo.Deal) string {
	fig := escrow.Recalc(d.MainAmount, d.Fee, d.Remaining)
	return fmt.Sprintf(
		"*Escrow Deal*\n\n"+
			"*ID* - `%s`\n"+
			"*Escrower* - %s\n"+
			"*Seller* - @%s\n"+
			"*Buyer* - @%s\n"+
			"*Amount* - $%.2f\n"+
			"*Total Fees* - $%.2f\n\n"+
			"*$%.2f to be released!*",
		d.DealID, d.EscrowerName, d.SellerHandle, d.BuyerHandle,
		d.MainAmount, d.Fee, fig.Release)
}

// dealIDFromReply pulls the deal id off the replied-to card.
func dealIDFromReply(m *tb.Message) string {
	if m.ReplyTo == nil {
		return ""
	}
	return escrow.ExtractDealID(m.ReplyTo.Text)
}

func (b *Bot) handleCut(ctx context.Context, m *tb.Message) error {
	if !b.isEscrowerOrOwner(ctx, senderID(m)) {
		b.reply(m, "❌ You are not allowed to use this command.")
		return nil
	}
	dealID := dealIDFromReply(m)
	if dealID == "" {
		b.reply(m, "❌ Reply to the Escrow Deal card to use this command.")
		return nil
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.Payload), 64)
	if err != nil {
		b.reply(m, "❌ Invalid amount.")
		return nil
	}

	deal, err := b.svc.Cut(ctx, dealID, amount)
	if err != nil {
		return err
	}
	fig := escrow.Recalc(deal.MainAmount, deal.Fee, deal.Remaining)
	b.reply(m, fmt.Sprintf(
		"✔ Cut %s$ from Deal %s\nRemaining Hold: %.2f$\n\n~ %.2f$ to be released",
		trimZero(amount), deal.DealID, deal.Remaining, fig.Release))
	return nil
}

func (b *Bot) handleExtend(ctx context.Context, m *tb.Message) error {
	if !b.isEscrowerOrOwner(ctx, senderID(m)) {
		b.reply(m, "❌ You are not allowed to use this command.")
		return nil
	}
	dealID := dealIDFromReply(m)
	if dealID == "" {
		b.reply(m, "❌ Reply to the Escrow Deal card to use this command.")
		return nil
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.Payload), 64)
	if err != nil {
		b.reply(m, "❌ Invalid amount.")
		return nil
	}

	deal, err := b.svc.Extend(ctx, dealID, amount)
	if err != nil {
		return err
	}
	fig := escrow.Recalc(deal.MainAmount, deal.Fee, deal.Remaining)
	b.reply(m, fmt.Sprintf(
		"✔ Extended %.2f$ to Deal %s\nNew Hold: %.2f$\n\n~ %.2f$ to be released.",
		amount, deal.DealID, deal.MainAmount, fig.Release))
	return nil
}

func (b *Bot) handleClose(ctx context.Context, m *tb.Message) error {
	if !b.isEscrower(ctx, senderID(m)) {
		b.reply(m, "❌ Only escrowers can use /close.")
		return nil
	}
	dealID := dealIDFromReply(m)
	if dealID == "" {
		b.reply(m, "❌ Reply to the Escrow Deal card with /close <amount>.")
		return nil
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.Payload), 64)
	if err != nil {
		b.reply(m, "❌ Invalid amount.")
		return nil
	}

	deal, closeErr := b.svc.Close(ctx, dealID, senderID(m), amount)
	if closeErr != nil && !errors.Is(closeErr, escrow.ErrPartialCounters) {
		return closeErr
	}

	b.reply(m, fmt.Sprintf(
		"✔ Deal %s has been closed!\n"+
			"~ @%s and @%s are requested to drop the vouch before leave.\n\n"+
			"`Vouch for $%.1f deal, safely escrowed.`",
		deal.DealID, deal.BuyerHandle, deal.SellerHandle, amount), tb.ModeMarkdown)

	b.reports.Invalidate(ctx)
	b.logClosure(ctx, deal, amount)
	return closeErr
}

// logClosure announces the closed deal on the log channel with masked party
// names and records the same facts in the audit table. Failures here never
// undo the closure.
func (b *Bot) logClosure(ctx context.Context, deal *repo.Deal, release float64) {
	stats, err := b.reports.GlobalStats(ctx)
	if err != nil {
		b.logger.Warn("closure stats failed", "deal_id", deal.DealID, "error", err)
	}

	buyerMasked := MaskName(deal.BuyerHandle)
	sellerMasked := MaskName(deal.SellerHandle)
	escrowerName := deal.EscrowerName
	if escrowerName == "" {
		escrowerName = itoa(deal.EscrowerID)
	}

	if b.cfg.LogChannelID != 0 {
		text := fmt.Sprintf(
			"✅ Escrow Deal-Done!\n\n"+
				"ID - %s\n"+
				"Escrower - %s\n"+
				"Buyer - %s\n"+
				"Seller - %s\n"+
				"Amount - %.2f$\n"+
				"Total Worth: %.2f$\n"+
				"Total Escrows: %d",
			deal.DealID, escrowerName, buyerMasked, sellerMasked,
			release, stats.Volume, stats.Deals)
		if _, err := b.tb.Send(tb.ChatID(b.cfg.LogChannelID), text); err != nil {
			b.logger.Warn("closure announce failed", "deal_id", deal.DealID, "error", err)
		}
	}

	entry := repo.ClosureLog{
		ID:           uuid.New().String(),
		DealID:       deal.DealID,
		EscrowerID:   deal.EscrowerID,
		EscrowerName: escrowerName,
		BuyerMasked:  buyerMasked,
		SellerMasked: sellerMasked,
		Amount:       release,
		TotalVolume:  stats.Volume,
		TotalDeals:   stats.Deals,
		CreatedAt:    time.Now().UTC(),
	}
	if err := b.store.InsertClosureLog(ctx, entry); err != nil {
		b.logger.Warn("closure log insert failed", "deal_id", deal.DealID, "error", err)
	}
}

func (b *Bot) handleCancel(ctx context.Context, m *tb.Message) error {
	if !b.isEscrowerOrOwner(ctx, senderID(m)) {
		b.reply(m, "❌ You are not allowed to use this command.")
		return nil
	}
	dealID := dealIDFromReply(m)
	if dealID == "" {
		if arg := strings.ToUpper(strings.TrimSpace(m.Payload)); dealIDArgRe.MatchString(arg) {
			dealID = arg
		}
	}
	if dealID == "" {
		b.reply(m, "❌ Reply to the Escrow Deal card or pass a deal id.")
		return nil
	}

	deal, err := b.svc.Cancel(ctx, dealID)
	if err != nil {
		return err
	}
	b.reply(m, fmt.Sprintf("✔ Deal %s has been cancelled.", deal.DealID))
	return nil
}

func (b *Bot) handleShift(ctx context.Context, m *tb.Message) error {
	if !b.isEscrowerOrOwner(ctx, senderID(m)) {
		b.reply(m, "❌ Only admins/owner can use /shift.")
		return nil
	}
	oldDealID := strings.ToUpper(strings.TrimSpace(m.Payload))
	if !dealIDArgRe.MatchString(oldDealID) {
		b.reply(m, "Usage: /shift <deal_id> (reply to the new form)")
		return nil
	}
	if m.ReplyTo == nil {
		b.reply(m, "❌ Reply to a NEW form with /shift <old_deal_id>.")
		return nil
	}
	buyerMatch := buyerLineRe.FindStringSubmatch(m.ReplyTo.Text)
	if buyerMatch == nil {
		b.reply(m, "❌ Could not parse new buyer username from form.")
		return nil
	}

	_, newDeal, err := b.svc.Shift(ctx, oldDealID, escrow.ShiftParams{
		NewBuyerHandle: buyerMatch[1],
		EscrowerID:     senderID(m),
		EscrowerName:   displayName(m.Sender),
		FormChatID:     m.ReplyTo.Chat.ID,
		FormMessageID:  int64(m.ReplyTo.ID),
	})
	if err != nil {
		return err
	}

	b.reply(m, fmt.Sprintf("🔄 Deal %s has been shifted!\n%s", oldDealID, dealCard(newDeal)), tb.ModeMarkdown)
	return nil
}

func (b *Bot) handleRank(ctx context.Context, m *tb.Message) error {
	top, err := b.reports.TopByVolume(ctx, 20)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	if len(top) == 0 {
		b.reply(m, "No deals found yet.")
		return nil
	}
	lines := []string{"🏆 Top 20 by Escrowed Volume"}
	for _, r := range top {
		lines = append(lines, fmt.Sprintf("%2d. %s — $%.2f", r.Rank, r.Label(), r.Volume))
	}
	b.reply(m, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) handleInfo(ctx context.Context, m *tb.Message) error {
	arg := strings.TrimSpace(m.Payload)

	var (
		userID int64
		handle string
	)
	switch {
	case arg != "" && isDigits(arg):
		userID, _ = strconv.ParseInt(arg, 10, 64)
	case arg != "":
		handle = escrow.NormalizeHandle(arg)
	case m.ReplyTo != nil && m.ReplyTo.Sender != nil:
		userID = int64(m.ReplyTo.Sender.ID)
		handle = escrow.NormalizeHandle(m.ReplyTo.Sender.Username)
	default:
		userID = senderID(m)
		handle = escrow.NormalizeHandle(m.Sender.Username)
	}

	// Keep the identity record fresh for whoever we are looking at.
	if userID != 0 {
		name := ""
		if userID == senderID(m) {
			name = displayName(m.Sender)
		} else if m.ReplyTo != nil && m.ReplyTo.Sender != nil && userID == int64(m.ReplyTo.Sender.ID) {
			name = displayName(m.ReplyTo.Sender)
		}
		if err := b.store.UpsertUser(ctx, userID, handle, name); err != nil {
			b.logger.Warn("user upsert failed", "user_id", userID, "error", err)
		}
	}

	var legacyCount int64
	if userID != 0 {
		if u, err := b.store.GetUserByID(ctx, userID); err == nil {
			legacyCount = u.LegacyCount
			if handle == "" && u.Handle != nil {
				handle = *u.Handle
			}
		}
	}
	if handle == "" {
		b.reply(m, "❌ Could not resolve user.")
		return nil
	}

	sum, err := b.reports.UserSummary(ctx, handle)
	if err != nil {
		return fmt.Errorf("user summary: %w", err)
	}

	name := sum.DisplayName
	if name == "" {
		name = "@" + handle
	}
	b.reply(m, infoCard(userID, name, sum.Deals+legacyCount, sum.Volume, sum.Rank, sum.Ranked))
	return nil
}

// infoCard renders the /info reply. Users with no closed volume get no rank
// line at all.
func infoCard(userID int64, name string, totalDeals int64, volume float64, rank int, ranked bool) string {
	lines := []string{
		"✅ User Info:",
		"",
	}
	if userID != 0 {
		lines = append(lines, fmt.Sprintf("User ID: %d", userID))
	}
	lines = append(lines,
		fmt.Sprintf("Name: %s", name),
		fmt.Sprintf("Total Escrows: %d", totalDeals),
		fmt.Sprintf("Escrowed Amount: %s", CompactUSD(volume)),
	)
	if ranked {
		lines = append(lines, fmt.Sprintf("Rank: %d", rank))
	}
	return strings.Join(lines, "\n")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (b *Bot) handleDealsInfo(ctx context.Context, m *tb.Message) error {
	arg := strings.TrimSpace(m.Payload)
	escrowerID := senderID(m)
	if isDigits(arg) {
		escrowerID, _ = strconv.ParseInt(arg, 10, 64)
	}

	name := itoa(escrowerID)
	if esc, err := b.store.GetEscrower(ctx, escrowerID); err == nil && esc.DisplayName != "" {
		name = esc.DisplayName
	}

	deals, err := b.store.ListOpenDealsByEscrower(ctx, escrowerID)
	if err != nil {
		return fmt.Errorf("open deals: %w", err)
	}

	var totalHold float64
	for _, d := range deals {
		totalHold += d.Remaining
	}

	lines := []string{
		fmt.Sprintf("📊 Deals Info for %s", name),
		"",
		fmt.Sprintf("➥ User ID: %d", escrowerID),
		fmt.Sprintf("➥ Total Hold: %.1f$", totalHold),
		"",
	}
	if len(deals) == 0 {
		lines = append(lines, "➥ Deals: None")
	} else {
		lines = append(lines, "➥ Deals:")
		for _, d := range deals {
			lines = append(lines, fmt.Sprintf("~ Deal ID: `%s` → %.1f$", d.DealID, d.Remaining))
		}
	}
	b.reply(m, strings.Join(lines, "\n"), tb.ModeMarkdown)
	return nil
}

func (b *Bot) handleStats(ctx context.Context, m *tb.Message) error {
	if !b.isOwner(senderID(m)) {
		b.reply(m, "❌ Only owner can use this command.")
		return nil
	}
	holds, err := b.reports.Holdings(ctx)
	if err != nil {
		return fmt.Errorf("holdings: %w", err)
	}
	lines := []string{"✅ Current Escrower-Wise Holdings:", ""}
	for _, h := range holds {
		name := h.EscrowerName
		if name == "" {
			name = itoa(h.EscrowerID)
		}
		lines = append(lines, fmt.Sprintf("%s - %.3f$", name, h.Hold))
	}
	b.reply(m, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) handleGlobalStats(ctx context.Context, m *tb.Message) error {
	stats, err := b.reports.GlobalStats(ctx)
	if err != nil {
		return fmt.Errorf("global stats: %w", err)
	}
	b.reply(m, fmt.Sprintf(
		"📊 Global Statistics:\n\n"+
			"💸 Total Escrowed Amount: $%.2f\n"+
			"📢 Total Escrows: %d\n"+
			"🔰 Average Escrow Amount: $%.2f",
		stats.Volume, stats.Deals, stats.AvgVolume))
	return nil
}

func (b *Bot) handleFees(ctx context.Context, m *tb.Message) error {
	if !b.isOwner(senderID(m)) {
		b.reply(m, "❌ Only owner can use this command.")
		return nil
	}
	rows, err := b.reports.Fees(ctx)
	if err != nil {
		return fmt.Errorf("fees: %w", err)
	}
	if len(rows) == 0 {
		b.reply(m, "No fees recorded yet.")
		return nil
	}
	lines := []string{"💰 Fees Earned (All-time):", ""}
	for _, r := range rows {
		name := r.EscrowerName
		if name == "" {
			name = itoa(r.EscrowerID)
		}
		lines = append(lines, fmt.Sprintf("%s (%d) — $%.2f • %d deals", name, r.EscrowerID, r.TotalFees, r.Deals))
	}
	b.reply(m, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) handleEscrowerDay(ctx context.Context, m *tb.Message) error {
	if !b.isEscrower(ctx, senderID(m)) {
		b.reply(m, "⛔ You are not authorized to use this command.")
		return nil
	}
	escrowerID := senderID(m)
	if arg := strings.TrimPrefix(strings.TrimSpace(m.Payload), "@"); isDigits(arg) {
		escrowerID, _ = strconv.ParseInt(arg, 10, 64)
	}

	sum, err := b.reports.EscrowerDaily(ctx, escrowerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("escrower daily: %w", err)
	}
	b.reply(m, fmt.Sprintf(
		"📅 Escrower Summary (Today)\n"+
			"➥ Escrower ID: %d\n"+
			"➥ Deals Closed: %d\n"+
			"➥ Fees Earned: %.2f$\n"+
			"➥ Main Volume: %.2f$",
		escrowerID, sum.Deals, sum.Fees, sum.Volume))
	return nil
}

func (b *Bot) handleGroupDay(ctx context.Context, m *tb.Message) error {
	if !b.isEscrower(ctx, senderID(m)) {
		b.reply(m, "⛔ You are not authorized to use this command.")
		return nil
	}
	day := escrow.DayBucket(time.Now().UTC(), b.svc.ReportingOffset())
	rows, err := b.reports.GroupDaily(ctx, day)
	if err != nil {
		return fmt.Errorf("group daily: %w", err)
	}
	if len(rows) == 0 {
		b.reply(m, "📊 Group Summary (Today)\n➥ No closed deals today.")
		return nil
	}

	lines := []string{"📊 Group Summary (Today)"}
	var tDeals int64
	var tFees, tMain float64
	for _, r := range rows {
		tDeals += r.Deals
		tFees += r.Fees
		tMain += r.VolumeMain
		lines = append(lines, fmt.Sprintf("→ Deals: %d | Fees: %.2f$ | Volume: %.2f$", r.Deals, r.Fees, r.VolumeMain))
	}
	lines = append(lines, "", fmt.Sprintf("🏁 Total Today: Deals %d | Fees %.2f$ | Volume %.2f$", tDeals, tFees, tMain))
	b.reply(m, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) handleShow(ctx context.Context, m *tb.Message) error {
	dealID := strings.ToUpper(strings.TrimSpace(m.Payload))
	if !dealIDArgRe.MatchString(dealID) {
		b.reply(m, "Usage: /s <deal_id>")
		return nil
	}
	deal, err := b.svc.Get(ctx, dealID)
	if err != nil {
		return err
	}
	if deal.FormChatID == 0 || deal.FormMessageID == 0 {
		b.reply(m, "⚠️ This deal has no form reference stored.")
		return nil
	}

	markup := &tb.ReplyMarkup{
		InlineKeyboard: [][]tb.InlineButton{{
			{Text: "🔗 View Original Form", URL: formLink(deal.FormChatID, deal.FormMessageID)},
		}},
	}
	b.reply(m, fmt.Sprintf(
		"📄 Deal `%s`\n➥ Amount: %.1f$\n➥ Escrower: %s",
		deal.DealID, deal.Amount, deal.EscrowerName), markup, tb.ModeMarkdown)
	return nil
}
