package repo

import (
	"context"
	"errors"
	"io/fs"
	"time"
)

// Sentinel errors shared by both store implementations.
var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on a uniqueness-constraint violation,
	// e.g. a deal id collision. Callers may retry with a fresh id.
	ErrDuplicate = errors.New("duplicate key")
)

// Store defines the persistence interface for deals, escrowers, users,
// counters and the closure audit log. Implemented for Postgres and SQLite.
type Store interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error

	// Deals
	InsertDeal(ctx context.Context, deal Deal) error
	GetDeal(ctx context.Context, dealID string) (*Deal, error)
	CutDeal(ctx context.Context, dealID string, amount float64) (*Deal, error)
	ExtendDeal(ctx context.Context, dealID string, amount float64) (*Deal, error)
	CloseDeal(ctx context.Context, dealID string, release float64, closedBy int64, closedAt time.Time) (*Deal, error)
	CancelDeal(ctx context.Context, dealID string) (*Deal, error)
	MarkShifted(ctx context.Context, oldDealID, newDealID string) error
	ListOpenDealsByEscrower(ctx context.Context, escrowerID int64) ([]Deal, error)
	ListClosedUncounted(ctx context.Context, limit int) ([]Deal, error)

	// Counters
	ClaimCounters(ctx context.Context, dealID string) (bool, error)
	IncrementCounters(ctx context.Context, delta CounterDelta) error
	GlobalCounters(ctx context.Context) (*CounterTotals, error)
	DailyCountersByGroup(ctx context.Context, day time.Time) ([]GroupDailyTotals, error)
	EscrowerDailyCounters(ctx context.Context, escrowerID int64, day time.Time) (*CounterTotals, error)

	// Escrowers
	UpsertEscrower(ctx context.Context, esc Escrower) error
	DeleteEscrower(ctx context.Context, userID int64) (bool, error)
	GetEscrower(ctx context.Context, userID int64) (*Escrower, error)
	ListEscrowers(ctx context.Context) ([]Escrower, error)

	// Users
	EnsureUserByHandle(ctx context.Context, handle string) error
	UpsertUser(ctx context.Context, userID int64, handle, displayName string) error
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	SetLegacyStats(ctx context.Context, handle string, volume float64, count int64) error
	ListLegacyUsers(ctx context.Context) ([]User, error)

	// Reporting
	ClosedVolumesByParticipant(ctx context.Context) ([]ParticipantVolume, error)
	ClosedTotals(ctx context.Context) (*DealSummary, error)
	HoldingsByEscrower(ctx context.Context) ([]EscrowerHolding, error)
	FeesByEscrower(ctx context.Context) ([]EscrowerFees, error)
	UserClosedStats(ctx context.Context, handle string) (*DealSummary, error)
	EscrowerClosedBetween(ctx context.Context, escrowerID int64, from, to time.Time) (*DealSummary, error)

	// Audit
	InsertClosureLog(ctx context.Context, entry ClosureLog) error
}
