package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// Row is one leaderboard entry. Volume merges current closed-deal totals with
// any imported legacy volume.
type Row struct {
	Rank        int
	UserID      *int64
	Handle      string
	DisplayName string
	Volume      float64
}

// Identity keys a participant: the numeric user id when resolved, otherwise
// the normalized handle.
func (r Row) identity() string {
	if r.UserID != nil {
		return "u:" + strconv.FormatInt(*r.UserID, 10)
	}
	return "h:" + r.Handle
}

// Label returns the best human-readable name for the row.
func (r Row) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	if r.Handle != "" {
		return "@" + r.Handle
	}
	if r.UserID != nil {
		return strconv.FormatInt(*r.UserID, 10)
	}
	return "unknown"
}

// mergedVolumes joins current closed-deal volumes with legacy imported
// volumes, keyed by resolved identity, sorted descending with ties broken by
// identity ascending, and dense-ranked.
func (e *Engine) mergedVolumes(ctx context.Context) ([]Row, error) {
	if e.cache != nil {
		var cached []Row
		if ok, err := e.cache.GetJSON(ctx, cacheKeyLeaderboard, &cached); err == nil && ok {
			return cached, nil
		}
	}

	current, err := e.store.ClosedVolumesByParticipant(ctx)
	if err != nil {
		return nil, fmt.Errorf("current volumes: %w", err)
	}
	legacy, err := e.store.ListLegacyUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("legacy volumes: %w", err)
	}

	byIdentity := make(map[string]*Row, len(current)+len(legacy))
	for _, v := range current {
		r := Row{UserID: v.UserID, Handle: v.Handle, DisplayName: v.DisplayName, Volume: v.Volume}
		key := r.identity()
		if existing, ok := byIdentity[key]; ok {
			existing.Volume += v.Volume
		} else {
			byIdentity[key] = &r
		}
	}
	for _, u := range legacy {
		r := Row{UserID: u.UserID, Volume: u.LegacyVolume}
		if u.Handle != nil {
			r.Handle = *u.Handle
		}
		if u.DisplayName != nil {
			r.DisplayName = *u.DisplayName
		}
		key := r.identity()
		if existing, ok := byIdentity[key]; ok {
			existing.Volume += u.LegacyVolume
			if existing.DisplayName == "" {
				existing.DisplayName = r.DisplayName
			}
		} else {
			byIdentity[key] = &r
		}
	}

	rows := make([]Row, 0, len(byIdentity))
	for _, r := range byIdentity {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Volume != rows[j].Volume {
			return rows[i].Volume > rows[j].Volume
		}
		return rows[i].identity() < rows[j].identity()
	})
	denseRank(rows)
	if e.cache != nil {
		_ = e.cache.SetJSON(ctx, cacheKeyLeaderboard, rows, cacheTTL)
	}
	return rows, nil
}

// denseRank assigns ranks over a volume-sorted slice: tied volumes share a
// rank and the next distinct volume advances the rank by exactly one.
func denseRank(rows []Row) {
	rank := 0
	prev := 0.0
	for i := range rows {
		if i == 0 || rows[i].Volume < prev {
			rank++
			prev = rows[i].Volume
		}
		rows[i].Rank = rank
	}
}

// TopByVolume returns the top n leaderboard rows by merged volume.
func (e *Engine) TopByVolume(ctx context.Context, n int) ([]Row, error) {
	rows, err := e.mergedVolumes(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// RankOfUser returns the dense rank and merged volume of a user id.
func (e *Engine) RankOfUser(ctx context.Context, userID int64) (rank int, volume float64, ok bool, err error) {
	rows, err := e.mergedVolumes(ctx)
	if err != nil {
		return 0, 0, false, err
	}
	for _, r := range rows {
		if r.UserID != nil && *r.UserID == userID {
			return r.Rank, r.Volume, true, nil
		}
	}
	return 0, 0, false, nil
}

// RankOfHandle returns the dense rank and merged volume of a handle.
func (e *Engine) RankOfHandle(ctx context.Context, handle string) (rank int, volume float64, ok bool, err error) {
	rows, err := e.mergedVolumes(ctx)
	if err != nil {
		return 0, 0, false, err
	}
	for _, r := range rows {
		if r.Handle == handle {
			return r.Rank, r.Volume, true, nil
		}
	}
	return 0, 0, false, nil
}
