package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escrow-bot/internal/repo"
)

// DayBucket maps a UTC instant to its reporting-day bucket: the timestamp is
// shifted by the reporting offset and truncated to a date (kept in UTC).
func DayBucket(t time.Time, offset time.Duration) time.Time {
	shifted := t.UTC().Add(offset)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow returns the UTC instants [from, to) covering the reporting day
// that contains t.
func DayWindow(t time.Time, offset time.Duration) (from, to time.Time) {
	from = DayBucket(t, offset).Add(-offset)
	return from, from.Add(24 * time.Hour)
}

// ApplyClosedDeal counts a closed deal into every aggregate view at most
// once, no matter how many times or how concurrently it is invoked. The sole
// concurrency gate is a single conditional write flipping counters_applied;
// the loser of the race returns immediately with no effect.
//
// When the gate commits but an increment fails, the miss is surfaced as
// ErrPartialCounters and NOT retried here: the closure is authoritative and
// final regardless of counter bookkeeping.
func (s *Service) ApplyClosedDeal(ctx context.Context, deal *repo.Deal) error {
	if deal == nil || deal.Status != repo.StatusClosed {
		return nil
	}

	won, err := s.store.ClaimCounters(ctx, deal.DealID)
	if err != nil {
		return fmt.Errorf("counters gate for %s: %w", deal.DealID, err)
	}
	if !won {
		if s.metrics != nil {
			s.metrics.CounterApplies.WithLabelValues("duplicate").Inc()
		}
		return nil
	}

	closedAt := time.Now().UTC()
	if deal.ClosedAt != nil {
		closedAt = *deal.ClosedAt
	}
	delta := repo.CounterDelta{
		Day:        DayBucket(closedAt, s.offset),
		GroupID:    deal.FormChatID,
		EscrowerID: deal.EscrowerID,
		VolumeMain: deal.MainAmount,
		Fees:       deal.Fee,
	}

	if err := s.store.IncrementCounters(ctx, delta); err != nil {
		if s.metrics != nil {
			s.metrics.CounterApplies.WithLabelValues("failed").Inc()
		}
		s.logger.Error("counter increments failed after gate commit",
			"deal_id", deal.DealID, "error", err)
		return fmt.Errorf("deal %s: %v: %w", deal.DealID, err, ErrPartialCounters)
	}

	if s.metrics != nil {
		s.metrics.CounterApplies.WithLabelValues("applied").Inc()
	}
	return nil
}

// BackfillCounters applies the ledger to closed deals that were never
// counted, up to limit. Returns how many were applied.
func (s *Service) BackfillCounters(ctx context.Context, limit int) (int, error) {
	deals, err := s.store.ListClosedUncounted(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list uncounted deals: %w", err)
	}

	applied := 0
	var firstErr error
	for i := range deals {
		if err := s.ApplyClosedDeal(ctx, &deals[i]); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if !errors.Is(err, ErrPartialCounters) {
				continue
			}
		}
		applied++
	}
	return applied, firstErr
}
