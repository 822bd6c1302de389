package repo

import "time"

// Deal statuses. pending means a form was seen but no amount registered yet;
// closed, cancelled and shifted are terminal.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
	StatusShifted   = "shifted"
)

// Deal represents a row in the deals table.
type Deal struct {
	DealID          string
	EscrowerID      int64
	EscrowerName    string
	BuyerHandle     string
	SellerHandle    string
	Amount          float64
	MainAmount      float64
	Fee             float64
	Remaining       float64
	Status          string
	ShiftedTo       *string
	CountersApplied bool
	FormChatID      int64
	FormMessageID   int64
	CreatedAt       time.Time
	ClosedAt        *time.Time
	ClosedBy        *int64
}

// Open reports whether the deal still holds funds and accepts mutations.
func (d *Deal) Open() bool {
	return d.Status == StatusPending || d.Status == StatusActive
}

// Escrower represents a privileged identity allowed to register deals.
type Escrower struct {
	UserID      int64
	DisplayName string
	DealLimit   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User is a lightweight identity record used to resolve handles for ranking.
// Legacy fields carry imported pre-migration aggregates.
type User struct {
	UserID       *int64
	Handle       *string
	DisplayName  *string
	LegacyVolume float64
	LegacyCount  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Counter scopes.
const (
	ScopeGlobal        = "global"
	ScopeDaily         = "daily"
	ScopeGroupDaily    = "group_daily"
	ScopeEscrowerDaily = "escrower_daily"
)

// CounterTotals holds the running sums of one counter document.
type CounterTotals struct {
	Deals      int64
	VolumeMain float64
	Fees       float64
}

// CounterDelta describes one closed deal's contribution to the counters.
// GroupID and EscrowerID of zero skip the corresponding scoped increment.
type CounterDelta struct {
	Day        time.Time
	GroupID    int64
	EscrowerID int64
	VolumeMain float64
	Fees       float64
}

// GroupDailyTotals is one per-group daily counter row.
type GroupDailyTotals struct {
	GroupID int64
	CounterTotals
}

// ParticipantVolume is the summed closed-deal volume for one handle, with the
// resolved user identity when the handle is known in the users table.
type ParticipantVolume struct {
	Handle      string
	UserID      *int64
	DisplayName string
	Volume      float64
}

// EscrowerHolding is the live exposure of one escrower over open deals.
type EscrowerHolding struct {
	EscrowerID   int64
	EscrowerName string
	Hold         float64
}

// EscrowerFees is the lifetime fee total for one escrower over closed deals.
type EscrowerFees struct {
	EscrowerID   int64
	EscrowerName string
	TotalFees    float64
	Deals        int64
}

// DealSummary is an aggregate over a set of deals.
type DealSummary struct {
	Deals      int64
	Fees       float64
	VolumeMain float64
}

// ClosureLog is one audit row written when a deal closes.
type ClosureLog struct {
	ID           string
	DealID       string
	EscrowerID   int64
	EscrowerName string
	BuyerMasked  string
	SellerMasked string
	Amount       float64
	TotalVolume  float64
	TotalDeals   int64
	CreatedAt    time.Time
}
