package report

import (
	"context"
	"fmt"
	"time"

	"escrow-bot/internal/escrow"
	"escrow-bot/internal/repo"
)

// Cache is the small slice of the redis cache the engine needs. A nil Cache
// disables caching entirely.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

const (
	cacheKeyLeaderboard = "report:leaderboard"
	cacheKeyGlobalStats = "report:gstats"

	cacheTTL = 2 * time.Minute
)

// Config carries the imported historical baselines that predate the
// bookkeeping tables. They are added on top of live totals in GlobalStats.
type Config struct {
	BaseVolume float64
	BaseCount  int64
	// Offset shifts timestamps before truncating to a day bucket. Zero
	// means escrow.DefaultReportingOffset. Must match the service's offset
	// or daily reads will miss the ledger's buckets.
	Offset time.Duration
}

// Engine produces leaderboards and aggregate statistics from the store.
type Engine struct {
	store repo.Store
	cache Cache
	cfg   Config
}

func NewEngine(store repo.Store, cache Cache, cfg Config) *Engine {
	if cfg.Offset == 0 {
		cfg.Offset = escrow.DefaultReportingOffset
	}
	return &Engine{store: store, cache: cache, cfg: cfg}
}

// GlobalStats is the all-time summary shown by /gstats.
type GlobalStats struct {
	Deals     int64   `json:"deals"`
	Volume    float64 `json:"volume"`
	Fees      float64 `json:"fees"`
	AvgVolume float64 `json:"avg_volume"`
}

// GlobalStats reads the global counters row and folds in the imported
// baselines. When the counters row is missing or empty it falls back to a
// live aggregation over closed deals.
func (e *Engine) GlobalStats(ctx context.Context) (GlobalStats, error) {
	var stats GlobalStats
	if e.cache != nil {
		if ok, err := e.cache.GetJSON(ctx, cacheKeyGlobalStats, &stats); err == nil && ok {
			return stats, nil
		}
	}

	totals, err := e.store.GlobalCounters(ctx)
	if err != nil {
		return GlobalStats{}, fmt.Errorf("global counters: %w", err)
	}
	if totals.Deals == 0 {
		live, err := e.store.ClosedTotals(ctx)
		if err != nil {
			return GlobalStats{}, fmt.Errorf("closed totals: %w", err)
		}
		totals.Deals = live.Deals
		totals.VolumeMain = live.VolumeMain
		totals.Fees = live.Fees
	}

	stats = GlobalStats{
		Deals:  totals.Deals + e.cfg.BaseCount,
		Volume: totals.VolumeMain + e.cfg.BaseVolume,
		Fees:   totals.Fees,
	}
	if stats.Deals > 0 {
		stats.AvgVolume = stats.Volume / float64(stats.Deals)
	}
	if e.cache != nil {
		_ = e.cache.SetJSON(ctx, cacheKeyGlobalStats, stats, cacheTTL)
	}
	return stats, nil
}

// Invalidate drops cached report payloads. Callers invoke it after any deal
// closure or counter application so the next read recomputes.
func (e *Engine) Invalidate(ctx context.Context) {
	if e.cache == nil {
		return
	}
	_ = e.cache.Del(ctx, cacheKeyLeaderboard, cacheKeyGlobalStats)
}

// Holdings returns the open-deal escrow held per escrower, largest first.
func (e *Engine) Holdings(ctx context.Context) ([]repo.EscrowerHolding, error) {
	return e.store.HoldingsByEscrower(ctx)
}

// Fees returns accumulated closed-deal fees per escrower, largest first.
func (e *Engine) Fees(ctx context.Context) ([]repo.EscrowerFees, error) {
	return e.store.FeesByEscrower(ctx)
}

// UserSummary is the per-participant view shown by /info and /dinfo.
type UserSummary struct {
	Handle      string
	DisplayName string
	Deals       int64
	Volume      float64
	Rank        int
	Ranked      bool
}

// UserSummary merges a handle's closed-deal stats with any imported legacy
// record and resolves the dense rank on the merged leaderboard.
func (e *Engine) UserSummary(ctx context.Context, handle string) (UserSummary, error) {
	stats, err := e.store.UserClosedStats(ctx, handle)
	if err != nil {
		return UserSummary{}, fmt.Errorf("user closed stats: %w", err)
	}
	sum := UserSummary{Handle: handle, Deals: stats.Deals, Volume: stats.VolumeMain}

	rows, err := e.mergedVolumes(ctx)
	if err != nil {
		return UserSummary{}, err
	}
	for _, r := range rows {
		if r.Handle == handle {
			sum.Rank = r.Rank
			sum.Ranked = true
			sum.Volume = r.Volume
			if r.DisplayName != "" {
				sum.DisplayName = r.DisplayName
			}
			break
		}
	}
	return sum, nil
}

// EscrowerDay is the per-escrower daily summary shown by /eday.
type EscrowerDay struct {
	EscrowerID int64
	Day        time.Time
	Deals      int64
	Volume     float64
	Fees       float64
}

// EscrowerDaily summarises the escrower's closed deals for the reporting day
// containing now. Counters bucket first; when it is empty (deals closed
// before the ledger existed, or never counted) it falls back to a live scan
// of the day's window, mirroring GlobalStats.
func (e *Engine) EscrowerDaily(ctx context.Context, escrowerID int64, now time.Time) (EscrowerDay, error) {
	day := escrow.DayBucket(now, e.cfg.Offset)
	totals, err := e.store.EscrowerDailyCounters(ctx, escrowerID, day)
	if err != nil {
		return EscrowerDay{}, fmt.Errorf("escrower daily counters: %w", err)
	}
	if totals.Deals == 0 {
		from, to := escrow.DayWindow(now, e.cfg.Offset)
		live, err := e.EscrowerRange(ctx, escrowerID, from, to)
		if err != nil {
			return EscrowerDay{}, err
		}
		totals.Deals = live.Deals
		totals.VolumeMain = live.VolumeMain
		totals.Fees = live.Fees
	}
	return EscrowerDay{
		EscrowerID: escrowerID,
		Day:        day,
		Deals:      totals.Deals,
		Volume:     totals.VolumeMain,
		Fees:       totals.Fees,
	}, nil
}

// GroupDaily reads the per-group counters buckets for the given day.
func (e *Engine) GroupDaily(ctx context.Context, day time.Time) ([]repo.GroupDailyTotals, error) {
	return e.store.DailyCountersByGroup(ctx, day)
}

// EscrowerRange aggregates an escrower's closed deals inside [from, to).
// Unlike EscrowerDaily it scans the deals table directly, so it works for
// windows that predate the counters ledger.
func (e *Engine) EscrowerRange(ctx context.Context, escrowerID int64, from, to time.Time) (repo.DealSummary, error) {
	sum, err := e.store.EscrowerClosedBetween(ctx, escrowerID, from, to)
	if err != nil {
		return repo.DealSummary{}, fmt.Errorf("escrower closed between: %w", err)
	}
	return *sum, nil
}
