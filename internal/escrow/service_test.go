package escrow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"escrow-bot/internal/repo"
	"escrow-bot/migrations"
)

const (
	testEscrowerID  = int64(111)
	otherEscrowerID = int64(222)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) repo.Store {
	t.Helper()
	ctx := context.Background()
	store, err := repo.NewSQLite(ctx, ":memory:", discardLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return store
}

func newTestService(t *testing.T, badges BadgeChecker) (*Service, repo.Store) {
	t.Helper()
	store := newTestStore(t)
	ctx := context.Background()
	for _, esc := range []repo.Escrower{
		{UserID: testEscrowerID, DisplayName: "Esc One"},
		{UserID: otherEscrowerID, DisplayName: "Esc Two"},
	} {
		if err := store.UpsertEscrower(ctx, esc); err != nil {
			t.Fatalf("seed escrower: %v", err)
		}
	}
	return NewService(store, badges, nil, discardLogger(), Config{}), store
}

func createTestDeal(t *testing.T, svc *Service, amount float64) *repo.Deal {
	t.Helper()
	deal, err := svc.CreateDeal(context.Background(), CreateParams{
		EscrowerID:   testEscrowerID,
		BuyerHandle:  "@buyer",
		SellerHandle: "@seller",
		MainAmount:   amount,
		FormChatID:   -100500,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	return deal
}

func TestCreateDealComputesAmounts(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	if deal.Fee != StandardFee {
		t.Fatalf("fee = %v, want %v", deal.Fee, StandardFee)
	}
	if deal.Amount != 102 {
		t.Fatalf("amount = %v, want 102", deal.Amount)
	}
	if deal.Remaining != 100 {
		t.Fatalf("remaining = %v, want 100", deal.Remaining)
	}
	if deal.Status != repo.StatusActive {
		t.Fatalf("status = %q, want active", deal.Status)
	}
	if deal.BuyerHandle != "buyer" || deal.SellerHandle != "seller" {
		t.Fatalf("handles not normalised: %q / %q", deal.BuyerHandle, deal.SellerHandle)
	}
}

func TestCreateDealDiscountsWhenBothBadged(t *testing.T) {
	badges := BadgeCheckerFunc(func(ctx context.Context, handle string) bool { return true })
	store := newTestStore(t)
	if err := store.UpsertEscrower(context.Background(), repo.Escrower{UserID: testEscrowerID}); err != nil {
		t.Fatalf("seed escrower: %v", err)
	}
	svc := NewService(store, badges, nil, discardLogger(), Config{})

	deal, err := svc.CreateDeal(context.Background(), CreateParams{
		EscrowerID:   testEscrowerID,
		BuyerHandle:  "buyer",
		SellerHandle: "seller",
		MainAmount:   50,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	if deal.Fee != DiscountedFee {
		t.Fatalf("fee = %v, want %v", deal.Fee, DiscountedFee)
	}
	if deal.Amount != 51 {
		t.Fatalf("amount = %v, want 51", deal.Amount)
	}
}

func TestCreateDealRejectsUnknownEscrower(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.CreateDeal(context.Background(), CreateParams{
		EscrowerID:   999,
		BuyerHandle:  "buyer",
		SellerHandle: "seller",
		MainAmount:   10,
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestCreateDealEnforcesDealLimit(t *testing.T) {
	svc, store := newTestService(t, nil)
	if err := store.UpsertEscrower(context.Background(), repo.Escrower{
		UserID:      testEscrowerID,
		DisplayName: "Esc One",
		DealLimit:   50,
	}); err != nil {
		t.Fatalf("update escrower: %v", err)
	}
	_, err := svc.CreateDeal(context.Background(), CreateParams{
		EscrowerID:   testEscrowerID,
		BuyerHandle:  "buyer",
		SellerHandle: "seller",
		MainAmount:   100,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCutReducesRemaining(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	cut, err := svc.Cut(context.Background(), deal.DealID, 30)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if cut.Remaining != 70 {
		t.Fatalf("remaining = %v, want 70", cut.Remaining)
	}
	if cut.MainAmount != 100 {
		t.Fatalf("main amount changed to %v", cut.MainAmount)
	}
}

func TestCutRejectsOverdraw(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	_, err := svc.Cut(context.Background(), deal.DealID, 150)
	if !errors.Is(err, ErrInsufficientHold) {
		t.Fatalf("err = %v, want ErrInsufficientHold", err)
	}
	got, err := svc.Get(context.Background(), deal.DealID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Remaining != 100 {
		t.Fatalf("remaining changed to %v", got.Remaining)
	}
}

func TestCutUnknownDeal(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Cut(context.Background(), "DL-ZZZZZZ", 10)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestExtendGrowsPrincipalAndHold(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	ext, err := svc.Extend(context.Background(), deal.DealID, 50)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if ext.MainAmount != 150 {
		t.Fatalf("main = %v, want 150", ext.MainAmount)
	}
	if ext.Remaining != 150 {
		t.Fatalf("remaining = %v, want 150", ext.Remaining)
	}
	if ext.Amount != 152 {
		t.Fatalf("amount = %v, want 152", ext.Amount)
	}
	if ext.Fee != StandardFee {
		t.Fatalf("fee changed to %v", ext.Fee)
	}
}

func TestCloseAppliesCountersExactlyOnce(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	deal := createTestDeal(t, svc, 100)

	closed, err := svc.Close(ctx, deal.DealID, testEscrowerID, 100)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != repo.StatusClosed {
		t.Fatalf("status = %q, want closed", closed.Status)
	}
	if closed.Remaining != 0 {
		t.Fatalf("remaining = %v, want 0", closed.Remaining)
	}

	totals, err := store.GlobalCounters(ctx)
	if err != nil {
		t.Fatalf("global counters: %v", err)
	}
	if totals.Deals != 1 || totals.VolumeMain != 100 || totals.Fees != StandardFee {
		t.Fatalf("counters = %+v", totals)
	}

	day := DayBucket(time.Now().UTC(), svc.ReportingOffset())
	daily, err := store.EscrowerDailyCounters(ctx, testEscrowerID, day)
	if err != nil {
		t.Fatalf("escrower daily: %v", err)
	}
	if daily.Deals != 1 || daily.VolumeMain != 100 {
		t.Fatalf("escrower daily = %+v", daily)
	}

	if _, err := svc.Close(ctx, deal.DealID, testEscrowerID, 100); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second close err = %v, want ErrInvalidState", err)
	}
	totals, err = store.GlobalCounters(ctx)
	if err != nil {
		t.Fatalf("global counters: %v", err)
	}
	if totals.Deals != 1 {
		t.Fatalf("counters incremented twice: %+v", totals)
	}
}

func TestCloseClampsRemainingAtZero(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	closed, err := svc.Close(context.Background(), deal.DealID, testEscrowerID, 150)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Remaining != 0 {
		t.Fatalf("remaining = %v, want 0", closed.Remaining)
	}
}

func TestCloseRejectsForeignEscrower(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	_, err := svc.Close(context.Background(), deal.DealID, otherEscrowerID, 100)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	cancelled, err := svc.Cancel(context.Background(), deal.DealID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != repo.StatusCancelled {
		t.Fatalf("status = %q, want cancelled", cancelled.Status)
	}
	if _, err := svc.Cancel(context.Background(), deal.DealID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second cancel err = %v, want ErrInvalidState", err)
	}
}

func TestCancelledDealHasNoCounterEffect(t *testing.T) {
	svc, store := newTestService(t, nil)
	deal := createTestDeal(t, svc, 100)

	if _, err := svc.Cancel(context.Background(), deal.DealID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	totals, err := store.GlobalCounters(context.Background())
	if err != nil {
		t.Fatalf("global counters: %v", err)
	}
	if totals.Deals != 0 {
		t.Fatalf("counters = %+v, want zero", totals)
	}
}

func TestShiftCarriesHoldToSuccessor(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	deal := createTestDeal(t, svc, 100)
	if _, err := svc.Cut(ctx, deal.DealID, 25); err != nil {
		t.Fatalf("cut: %v", err)
	}

	old, succ, err := svc.Shift(ctx, deal.DealID, ShiftParams{
		NewBuyerHandle: "@newbuyer",
		EscrowerID:     otherEscrowerID,
		EscrowerName:   "Esc Two",
	})
	if err != nil {
		t.Fatalf("shift: %v", err)
	}

	if old.Status != repo.StatusShifted {
		t.Fatalf("old status = %q, want shifted", old.Status)
	}
	if old.ShiftedTo == nil || *old.ShiftedTo != succ.DealID {
		t.Fatalf("shifted_to = %v, want %s", old.ShiftedTo, succ.DealID)
	}
	if succ.BuyerHandle != "newbuyer" || succ.SellerHandle != "seller" {
		t.Fatalf("successor parties = %q / %q", succ.BuyerHandle, succ.SellerHandle)
	}
	if succ.Fee != StandardFee+ShiftSurcharge {
		t.Fatalf("successor fee = %v, want %v", succ.Fee, StandardFee+ShiftSurcharge)
	}
	if succ.MainAmount != 100 {
		t.Fatalf("successor main = %v, want 100", succ.MainAmount)
	}
	if succ.Remaining != 75 {
		t.Fatalf("successor remaining = %v, want 75", succ.Remaining)
	}
}

func TestShiftRejectsClosedDeal(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	deal := createTestDeal(t, svc, 100)
	if _, err := svc.Close(ctx, deal.DealID, testEscrowerID, 100); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, _, err := svc.Shift(ctx, deal.DealID, ShiftParams{
		NewBuyerHandle: "newbuyer",
		EscrowerID:     testEscrowerID,
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestApplyClosedDealConcurrent(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	deal := createTestDeal(t, svc, 100)

	closed, err := store.CloseDeal(ctx, deal.DealID, 100, testEscrowerID, time.Now().UTC())
	if err != nil {
		t.Fatalf("close via store: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.ApplyClosedDeal(ctx, closed)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	totals, err := store.GlobalCounters(ctx)
	if err != nil {
		t.Fatalf("global counters: %v", err)
	}
	if totals.Deals != 1 || totals.VolumeMain != 100 {
		t.Fatalf("counters applied more than once: %+v", totals)
	}
}

// brokenCounterStore fails every counter increment while delegating the rest
// of the Store to the real backend.
type brokenCounterStore struct {
	repo.Store
}

func (s *brokenCounterStore) IncrementCounters(ctx context.Context, delta repo.CounterDelta) error {
	return errors.New("counters unavailable")
}

func TestClosePartialCounterFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.UpsertEscrower(ctx, repo.Escrower{UserID: testEscrowerID, DisplayName: "Esc One"}); err != nil {
		t.Fatalf("seed escrower: %v", err)
	}
	svc := NewService(&brokenCounterStore{Store: store}, nil, nil, discardLogger(), Config{})
	deal := createTestDeal(t, svc, 100)

	closed, err := svc.Close(ctx, deal.DealID, testEscrowerID, 100)
	if !errors.Is(err, ErrPartialCounters) {
		t.Fatalf("err = %v, want ErrPartialCounters", err)
	}
	if closed == nil || closed.Status != repo.StatusClosed {
		t.Fatalf("closure must stand despite the counter failure, got %+v", closed)
	}

	// The gate is spent: the deal is invisible to the backfill and the
	// missed increments are never retried.
	applied, err := svc.BackfillCounters(ctx, 10)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if applied != 0 {
		t.Fatalf("backfill applied = %d, want 0", applied)
	}
	totals, err := store.GlobalCounters(ctx)
	if err != nil {
		t.Fatalf("global counters: %v", err)
	}
	if totals.Deals != 0 {
		t.Fatalf("counters = %+v, want untouched", totals)
	}
}

func TestBackfillCounters(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		deal := createTestDeal(t, svc, 100)
		if _, err := store.CloseDeal(ctx, deal.DealID, 100, testEscrowerID, time.Now().UTC()); err != nil {
			t.Fatalf("close via store: %v", err)
		}
	}

	applied, err := svc.BackfillCounters(ctx, 10)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if applied != 3 {
		t.Fatalf("applied = %d, want 3", applied)
	}

	totals, err := store.GlobalCounters(ctx)
	if err != nil {
		t.Fatalf("global counters: %v", err)
	}
	if totals.Deals != 3 || totals.VolumeMain != 300 {
		t.Fatalf("counters = %+v", totals)
	}

	applied, err = svc.BackfillCounters(ctx, 10)
	if err != nil {
		t.Fatalf("second backfill: %v", err)
	}
	if applied != 0 {
		t.Fatalf("second backfill applied = %d, want 0", applied)
	}
}
