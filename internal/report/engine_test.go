package report

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"escrow-bot/internal/escrow"
	"escrow-bot/internal/repo"
	"escrow-bot/migrations"
)

func newTestEngine(t *testing.T, cfg Config) (*Engine, repo.Store, *escrow.Service) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := repo.NewSQLite(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if err := store.UpsertEscrower(ctx, repo.Escrower{UserID: 111, DisplayName: "Esc One"}); err != nil {
		t.Fatalf("seed escrower: %v", err)
	}

	svc := escrow.NewService(store, nil, nil, logger, escrow.Config{})
	return NewEngine(store, nil, cfg), store, svc
}

func closeDeal(t *testing.T, svc *escrow.Service, buyer, seller string, amount float64) {
	t.Helper()
	ctx := context.Background()
	deal, err := svc.CreateDeal(ctx, escrow.CreateParams{
		EscrowerID:   111,
		BuyerHandle:  buyer,
		SellerHandle: seller,
		MainAmount:   amount,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	if _, err := svc.Close(ctx, deal.DealID, 111, amount); err != nil {
		t.Fatalf("close deal: %v", err)
	}
}

func TestTopByVolumeRanksMergedParticipants(t *testing.T) {
	engine, _, svc := newTestEngine(t, Config{})
	ctx := context.Background()

	// alice appears in two deals, bob and carol in one each.
	closeDeal(t, svc, "alice", "bob", 100)
	closeDeal(t, svc, "alice", "carol", 50)

	top, err := engine.TopByVolume(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("len(top) = %d, want 3", len(top))
	}
	if top[0].Handle != "alice" || top[0].Rank != 1 {
		t.Fatalf("top[0] = %+v", top[0])
	}
	// alice closed 100+2 and 50+2 in display amounts.
	if top[0].Volume != 154 {
		t.Fatalf("alice volume = %v, want 154", top[0].Volume)
	}
	if top[1].Handle != "bob" || top[1].Rank != 2 {
		t.Fatalf("top[1] = %+v", top[1])
	}
	if top[2].Handle != "carol" || top[2].Rank != 3 {
		t.Fatalf("top[2] = %+v", top[2])
	}
}

func TestTopByVolumeIncludesLegacyUsers(t *testing.T) {
	engine, store, svc := newTestEngine(t, Config{})
	ctx := context.Background()

	closeDeal(t, svc, "alice", "bob", 100)

	// dave never closed a live deal but carries imported volume.
	if err := store.UpsertUser(ctx, 77, "dave", "Dave"); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	if err := store.SetLegacyStats(ctx, "dave", 5000, 12); err != nil {
		t.Fatalf("set legacy: %v", err)
	}

	top, err := engine.TopByVolume(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if top[0].Handle != "dave" || top[0].Volume != 5000 {
		t.Fatalf("top[0] = %+v, want dave at 5000", top[0])
	}
}

func TestGlobalStatsAddsBaselines(t *testing.T) {
	engine, _, svc := newTestEngine(t, Config{BaseVolume: 1000, BaseCount: 10})
	ctx := context.Background()

	closeDeal(t, svc, "alice", "bob", 100)

	stats, err := engine.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("global stats: %v", err)
	}
	if stats.Deals != 11 {
		t.Fatalf("deals = %d, want 11", stats.Deals)
	}
	if stats.Volume != 1100 {
		t.Fatalf("volume = %v, want 1100", stats.Volume)
	}
	if stats.AvgVolume != 100 {
		t.Fatalf("avg = %v, want 100", stats.AvgVolume)
	}
}

func TestGlobalStatsFallsBackToLiveAggregation(t *testing.T) {
	engine, store, _ := newTestEngine(t, Config{})
	ctx := context.Background()

	// A closed deal inserted directly never touches the counters ledger, so
	// the counters row stays empty and the live fallback must kick in.
	now := time.Now().UTC()
	if err := store.InsertDeal(ctx, repo.Deal{
		DealID:       "DL-TEST01",
		EscrowerID:   111,
		BuyerHandle:  "alice",
		SellerHandle: "bob",
		Amount:       102,
		MainAmount:   100,
		Fee:          2,
		Status:       repo.StatusClosed,
		CreatedAt:    now,
		ClosedAt:     &now,
	}); err != nil {
		t.Fatalf("insert deal: %v", err)
	}

	stats, err := engine.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("global stats: %v", err)
	}
	if stats.Deals != 1 || stats.Volume != 100 {
		t.Fatalf("stats = %+v, want live fallback totals", stats)
	}
}

func TestUserSummaryMergesLegacyVolume(t *testing.T) {
	engine, store, svc := newTestEngine(t, Config{})
	ctx := context.Background()

	closeDeal(t, svc, "alice", "bob", 100)
	if err := store.UpsertUser(ctx, 42, "alice", "Alice"); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	if err := store.SetLegacyStats(ctx, "alice", 500, 3); err != nil {
		t.Fatalf("set legacy: %v", err)
	}

	sum, err := engine.UserSummary(ctx, "alice")
	if err != nil {
		t.Fatalf("user summary: %v", err)
	}
	if sum.Deals != 1 {
		t.Fatalf("deals = %d, want 1", sum.Deals)
	}
	if sum.Volume != 602 {
		t.Fatalf("volume = %v, want 602 (102 current + 500 legacy)", sum.Volume)
	}
	if !sum.Ranked || sum.Rank != 1 {
		t.Fatalf("rank = %d ranked=%v, want 1", sum.Rank, sum.Ranked)
	}
}

func TestEscrowerDailyReadsCounters(t *testing.T) {
	engine, _, svc := newTestEngine(t, Config{})
	ctx := context.Background()

	closeDeal(t, svc, "alice", "bob", 100)

	sum, err := engine.EscrowerDaily(ctx, 111, time.Now().UTC())
	if err != nil {
		t.Fatalf("escrower daily: %v", err)
	}
	if sum.Deals != 1 || sum.Volume != 100 || sum.Fees != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if want := escrow.DayBucket(time.Now().UTC(), svc.ReportingOffset()); !sum.Day.Equal(want) {
		t.Fatalf("day = %v, want %v", sum.Day, want)
	}
}

func TestEscrowerDailyFallsBackToLiveScan(t *testing.T) {
	engine, store, _ := newTestEngine(t, Config{})
	ctx := context.Background()

	// Closing through the store alone never touches the counters ledger, so
	// the escrower's bucket stays empty and the window scan must kick in.
	now := time.Now().UTC()
	if err := store.InsertDeal(ctx, repo.Deal{
		DealID:       "DL-TEST02",
		EscrowerID:   111,
		BuyerHandle:  "alice",
		SellerHandle: "bob",
		Amount:       102,
		MainAmount:   100,
		Fee:          2,
		Remaining:    100,
		Status:       repo.StatusActive,
		CreatedAt:    now,
	}); err != nil {
		t.Fatalf("insert deal: %v", err)
	}
	if _, err := store.CloseDeal(ctx, "DL-TEST02", 100, 111, now); err != nil {
		t.Fatalf("close via store: %v", err)
	}

	sum, err := engine.EscrowerDaily(ctx, 111, now)
	if err != nil {
		t.Fatalf("escrower daily: %v", err)
	}
	if sum.Deals != 1 || sum.Volume != 100 || sum.Fees != 2 {
		t.Fatalf("summary = %+v, want live window totals", sum)
	}
}
