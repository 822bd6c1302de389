package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"escrow-bot/internal/metrics"
	"escrow-bot/internal/repo"
)

// DefaultReportingOffset is the fixed timezone offset used solely for
// bucketing daily counters (UTC+5:30), independent of storage timezone.
const DefaultReportingOffset = 5*time.Hour + 30*time.Minute

const dealIDRetries = 5

// Config carries tunables for the deal service.
type Config struct {
	// ReportingOffset shifts closure timestamps before truncating to a day
	// bucket. Zero means DefaultReportingOffset.
	ReportingOffset time.Duration
}

// Service owns the deal lifecycle: creation, mutation, status transitions and
// the exactly-once counters ledger. All cross-invocation coordination is
// delegated to the store's atomic single-row operations.
type Service struct {
	store   repo.Store
	badges  BadgeChecker
	metrics *metrics.Metrics
	logger  *slog.Logger
	offset  time.Duration
}

// NewService wires a deal service. A nil badge checker disables discounts.
func NewService(store repo.Store, badges BadgeChecker, m *metrics.Metrics, logger *slog.Logger, cfg Config) *Service {
	if badges == nil {
		badges = NoBadge
	}
	offset := cfg.ReportingOffset
	if offset == 0 {
		offset = DefaultReportingOffset
	}
	return &Service{
		store:   store,
		badges:  badges,
		metrics: m,
		logger:  logger.With("component", "escrow"),
		offset:  offset,
	}
}

// Store exposes the underlying store for read-side collaborators.
func (s *Service) Store() repo.Store { return s.store }

// ReportingOffset returns the configured day-bucket offset.
func (s *Service) ReportingOffset() time.Duration { return s.offset }

// CreateParams carries the input of a deal registration.
type CreateParams struct {
	EscrowerID    int64
	EscrowerName  string
	BuyerHandle   string
	SellerHandle  string
	MainAmount    float64
	FormChatID    int64
	FormMessageID int64
}

// CreateDeal registers a new active deal: computes the fee from the parties'
// badges, enforces the escrower's deal limit, persists the deal (retrying on
// the unlikely id collision) and records both parties as known users.
func (s *Service) CreateDeal(ctx context.Context, p CreateParams) (*repo.Deal, error) {
	if p.MainAmount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	buyer := NormalizeHandle(p.BuyerHandle)
	seller := NormalizeHandle(p.SellerHandle)
	if buyer == "" || seller == "" {
		return nil, fmt.Errorf("%w: buyer and seller handles are required", ErrValidation)
	}

	esc, err := s.store.GetEscrower(ctx, p.EscrowerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d is not an escrower", ErrNotAuthorized, p.EscrowerID)
		}
		return nil, err
	}
	if esc.DealLimit > 0 && p.MainAmount > esc.DealLimit {
		return nil, fmt.Errorf("%w: amount %.2f exceeds deal limit %.2f", ErrValidation, p.MainAmount, esc.DealLimit)
	}
	// The stored escrower name wins so /admin renames propagate to new cards.
	name := esc.DisplayName
	if name == "" {
		name = p.EscrowerName
	}

	fee := ComputeFee(s.badges.HasBadge(ctx, buyer), s.badges.HasBadge(ctx, seller))

	deal := repo.Deal{
		EscrowerID:    p.EscrowerID,
		EscrowerName:  name,
		BuyerHandle:   buyer,
		SellerHandle:  seller,
		Amount:        Round2(p.MainAmount + fee),
		MainAmount:    p.MainAmount,
		Fee:           fee,
		Remaining:     p.MainAmount,
		Status:        repo.StatusActive,
		FormChatID:    p.FormChatID,
		FormMessageID: p.FormMessageID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.insertWithFreshID(ctx, &deal); err != nil {
		return nil, err
	}

	for _, h := range []string{buyer, seller} {
		if err := s.store.EnsureUserByHandle(ctx, h); err != nil {
			s.logger.Warn("failed registering user", "handle", h, "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.DealsCreated.Inc()
	}
	s.logger.Info("deal created",
		"deal_id", deal.DealID, "escrower_id", deal.EscrowerID,
		"main_amount", deal.MainAmount, "fee", deal.Fee)
	return &deal, nil
}

// RegisterFormStub stores a minimal pending placeholder when a deal form is
// observed before any amount has been registered. Carries no fee.
func (s *Service) RegisterFormStub(ctx context.Context, buyerHandle, sellerHandle string, chatID int64, messageID int64) (*repo.Deal, error) {
	buyer := NormalizeHandle(buyerHandle)
	seller := NormalizeHandle(sellerHandle)
	if buyer == "" || seller == "" {
		return nil, fmt.Errorf("%w: buyer and seller handles are required", ErrValidation)
	}
	deal := repo.Deal{
		BuyerHandle:   buyer,
		SellerHandle:  seller,
		Status:        repo.StatusPending,
		FormChatID:    chatID,
		FormMessageID: messageID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.insertWithFreshID(ctx, &deal); err != nil {
		return nil, err
	}
	for _, h := range []string{buyer, seller} {
		if err := s.store.EnsureUserByHandle(ctx, h); err != nil {
			s.logger.Warn("failed registering user", "handle", h, "error", err)
		}
	}
	return &deal, nil
}

func (s *Service) insertWithFreshID(ctx context.Context, deal *repo.Deal) error {
	for attempt := 0; attempt < dealIDRetries; attempt++ {
		deal.DealID = NewDealID()
		err := s.store.InsertDeal(ctx, *deal)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return err
		}
	}
	return fmt.Errorf("insert deal: exhausted %d id attempts", dealIDRetries)
}

// Get retrieves a deal by id.
func (s *Service) Get(ctx context.Context, dealID string) (*repo.Deal, error) {
	d, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

// Cut deducts a partial release from the deal's remaining hold. The store
// rejects the cut server-side when it would overdraw, so two racing cuts can
// never take the hold negative.
func (s *Service) Cut(ctx context.Context, dealID string, amount float64) (*repo.Deal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	d, err := s.store.CutDeal(ctx, dealID, amount)
	if err == nil {
		return d, nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, s.explainRejectedMutation(ctx, dealID, amount)
	}
	return nil, err
}

// explainRejectedMutation turns a zero-row conditional update into the
// precise rejection reason.
func (s *Service) explainRejectedMutation(ctx context.Context, dealID string, amount float64) error {
	d, err := s.store.GetDeal(ctx, dealID)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !d.Open() {
		return fmt.Errorf("deal %s is %s: %w", dealID, d.Status, ErrInvalidState)
	}
	return fmt.Errorf("cut %.2f exceeds remaining %.2f: %w", amount, d.Remaining, ErrInsufficientHold)
}

// Extend grows the principal and the remaining hold. The fee is unaffected:
// extension is pure principal growth.
func (s *Service) Extend(ctx context.Context, dealID string, amount float64) (*repo.Deal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	d, err := s.store.ExtendDeal(ctx, dealID, amount)
	if err == nil {
		return d, nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		if _, getErr := s.store.GetDeal(ctx, dealID); errors.Is(getErr, repo.ErrNotFound) {
			return nil, fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
		}
		return nil, fmt.Errorf("deal %s is not open: %w", dealID, ErrInvalidState)
	}
	return nil, err
}

// Close transitions an open deal to closed, releasing the given amount
// (remaining is clamped at zero, never negative), then applies the counters
// ledger exactly once. A counters failure does not roll the closure back: the
// deal is returned alongside ErrPartialCounters.
func (s *Service) Close(ctx context.Context, dealID string, closedBy int64, releaseAmount float64) (*repo.Deal, error) {
	if releaseAmount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	current, err := s.Get(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !current.Open() {
		return nil, fmt.Errorf("deal %s is %s: %w", dealID, current.Status, ErrInvalidState)
	}
	if closedBy != 0 && current.EscrowerID != 0 && current.EscrowerID != closedBy {
		return nil, fmt.Errorf("deal %s belongs to another escrower: %w", dealID, ErrNotAuthorized)
	}

	d, err := s.store.CloseDeal(ctx, dealID, releaseAmount, closedBy, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Lost the race to another transition between the read and
			// the conditional write.
			return nil, fmt.Errorf("deal %s: %w", dealID, ErrInvalidState)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DealsClosed.Inc()
	}
	s.logger.Info("deal closed",
		"deal_id", d.DealID, "escrower_id", d.EscrowerID,
		"release", releaseAmount, "remaining", d.Remaining)

	if err := s.ApplyClosedDeal(ctx, d); err != nil {
		return d, err
	}
	return d, nil
}

// Cancel voids an active deal. No counter effect.
func (s *Service) Cancel(ctx context.Context, dealID string) (*repo.Deal, error) {
	d, err := s.store.CancelDeal(ctx, dealID)
	if err == nil {
		return d, nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		existing, getErr := s.store.GetDeal(ctx, dealID)
		if errors.Is(getErr, repo.ErrNotFound) {
			return nil, fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
		}
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("deal %s is %s: %w", dealID, existing.Status, ErrInvalidState)
	}
	return nil, err
}

// ShiftParams carries the input of a deal shift.
type ShiftParams struct {
	NewBuyerHandle string
	EscrowerID     int64
	EscrowerName   string
	FormChatID     int64
	FormMessageID  int64
}

// Shift transfers an open deal's hold to a new buyer under a successor deal.
// The fee is recomputed for the new pairing plus a flat surcharge; the old
// deal's hold is not released, it carries over in full.
func (s *Service) Shift(ctx context.Context, oldDealID string, p ShiftParams) (oldDeal, newDeal *repo.Deal, err error) {
	newBuyer := NormalizeHandle(p.NewBuyerHandle)
	if newBuyer == "" {
		return nil, nil, fmt.Errorf("%w: new buyer handle is required", ErrValidation)
	}

	old, err := s.Get(ctx, oldDealID)
	if err != nil {
		return nil, nil, err
	}
	if !old.Open() {
		return nil, nil, fmt.Errorf("deal %s is %s: %w", oldDealID, old.Status, ErrInvalidState)
	}

	fee := ComputeFee(s.badges.HasBadge(ctx, newBuyer), s.badges.HasBadge(ctx, old.SellerHandle)) + ShiftSurcharge

	succ := repo.Deal{
		EscrowerID:    p.EscrowerID,
		EscrowerName:  p.EscrowerName,
		BuyerHandle:   newBuyer,
		SellerHandle:  old.SellerHandle,
		Amount:        Round2(old.MainAmount + fee),
		MainAmount:    old.MainAmount,
		Fee:           fee,
		Remaining:     old.Remaining,
		Status:        repo.StatusActive,
		FormChatID:    p.FormChatID,
		FormMessageID: p.FormMessageID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.insertWithFreshID(ctx, &succ); err != nil {
		return nil, nil, err
	}

	if err := s.store.MarkShifted(ctx, old.DealID, succ.DealID); err != nil {
		// The old deal raced to a terminal state; void the orphaned
		// successor so the hold is not double-counted.
		if _, cancelErr := s.store.CancelDeal(ctx, succ.DealID); cancelErr != nil {
			s.logger.Error("failed voiding orphaned shift successor",
				"deal_id", succ.DealID, "error", cancelErr)
		}
		return nil, nil, fmt.Errorf("deal %s: %w", oldDealID, ErrInvalidState)
	}

	if err := s.store.EnsureUserByHandle(ctx, newBuyer); err != nil {
		s.logger.Warn("failed registering user", "handle", newBuyer, "error", err)
	}

	shifted, err := s.Get(ctx, old.DealID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("deal shifted", "old_deal_id", old.DealID, "new_deal_id", succ.DealID)
	return shifted, &succ, nil
}
