package repo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"escrow-bot/migrations"
)

func newStore(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewSQLite(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return store
}

func seedDeal(t *testing.T, store *SQLite, dealID string, remaining float64) {
	t.Helper()
	err := store.InsertDeal(context.Background(), Deal{
		DealID:       dealID,
		EscrowerID:   1,
		BuyerHandle:  "buyer",
		SellerHandle: "seller",
		Amount:       remaining + 2,
		MainAmount:   remaining,
		Fee:          2,
		Remaining:    remaining,
		Status:       StatusActive,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert deal: %v", err)
	}
}

func TestInsertDealDuplicateID(t *testing.T) {
	store := newStore(t)
	seedDeal(t, store, "DL-AAAAAA", 100)

	err := store.InsertDeal(context.Background(), Deal{
		DealID:    "DL-AAAAAA",
		Status:    StatusActive,
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestCutDealRejectsOverdrawServerSide(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedDeal(t, store, "DL-AAAAAA", 50)

	if _, err := store.CutDeal(ctx, "DL-AAAAAA", 60); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound from zero-row update", err)
	}

	d, err := store.CutDeal(ctx, "DL-AAAAAA", 50)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if d.Remaining != 0 {
		t.Fatalf("remaining = %v, want 0", d.Remaining)
	}
}

func TestCloseDealOnlyFromOpenStates(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedDeal(t, store, "DL-AAAAAA", 100)

	closed, err := store.CloseDeal(ctx, "DL-AAAAAA", 100, 1, time.Now().UTC())
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Fatalf("status = %q", closed.Status)
	}
	if closed.ClosedAt == nil || closed.ClosedBy == nil || *closed.ClosedBy != 1 {
		t.Fatalf("closure metadata missing: %+v", closed)
	}

	if _, err := store.CloseDeal(ctx, "DL-AAAAAA", 100, 1, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reclose err = %v, want ErrNotFound", err)
	}
}

func TestClaimCountersSingleWinner(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedDeal(t, store, "DL-AAAAAA", 100)
	if _, err := store.CloseDeal(ctx, "DL-AAAAAA", 100, 1, time.Now().UTC()); err != nil {
		t.Fatalf("close: %v", err)
	}

	won, err := store.ClaimCounters(ctx, "DL-AAAAAA")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !won {
		t.Fatal("first claim should win")
	}
	won, err = store.ClaimCounters(ctx, "DL-AAAAAA")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if won {
		t.Fatal("second claim should lose")
	}
}

func TestClaimCountersRequiresClosedDeal(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedDeal(t, store, "DL-AAAAAA", 100)

	won, err := store.ClaimCounters(ctx, "DL-AAAAAA")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if won {
		t.Fatal("open deal must not be claimable")
	}
}

func TestIncrementCountersAccumulates(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		err := store.IncrementCounters(ctx, CounterDelta{
			Day:        day,
			GroupID:    -100500,
			EscrowerID: 7,
			VolumeMain: 100,
			Fees:       2,
		})
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	totals, err := store.GlobalCounters(ctx)
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if totals.Deals != 2 || totals.VolumeMain != 200 || totals.Fees != 4 {
		t.Fatalf("global = %+v", totals)
	}

	daily, err := store.EscrowerDailyCounters(ctx, 7, day)
	if err != nil {
		t.Fatalf("escrower daily: %v", err)
	}
	if daily.Deals != 2 || daily.VolumeMain != 200 {
		t.Fatalf("escrower daily = %+v", daily)
	}

	groups, err := store.DailyCountersByGroup(ctx, day)
	if err != nil {
		t.Fatalf("group daily: %v", err)
	}
	if len(groups) != 1 || groups[0].GroupID != -100500 || groups[0].Deals != 2 {
		t.Fatalf("group daily = %+v", groups)
	}
}

func TestMarkShiftedLinksSuccessor(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedDeal(t, store, "DL-AAAAAA", 100)
	seedDeal(t, store, "DL-BBBBBB", 100)

	if err := store.MarkShifted(ctx, "DL-AAAAAA", "DL-BBBBBB"); err != nil {
		t.Fatalf("mark shifted: %v", err)
	}

	d, err := store.GetDeal(ctx, "DL-AAAAAA")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Status != StatusShifted {
		t.Fatalf("status = %q", d.Status)
	}
	if d.ShiftedTo == nil || *d.ShiftedTo != "DL-BBBBBB" {
		t.Fatalf("shifted_to = %v", d.ShiftedTo)
	}

	if err := store.MarkShifted(ctx, "DL-AAAAAA", "DL-CCCCCC"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("re-shift err = %v, want ErrNotFound", err)
	}
}

func TestEscrowerCRUD(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.UpsertEscrower(ctx, Escrower{UserID: 5, DisplayName: "Five", DealLimit: 100}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpsertEscrower(ctx, Escrower{UserID: 5, DisplayName: "Five Renamed", DealLimit: 200}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	esc, err := store.GetEscrower(ctx, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if esc.DisplayName != "Five Renamed" || esc.DealLimit != 200 {
		t.Fatalf("escrower = %+v", esc)
	}

	deleted, err := store.DeleteEscrower(ctx, 5)
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	deleted, err = store.DeleteEscrower(ctx, 5)
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v", deleted, err)
	}
	if _, err := store.GetEscrower(ctx, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}
