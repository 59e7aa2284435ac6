package leaderboard

import (
	"context"
	"errors"
	"fmt"

	model "boykot-backend/internal/models"
	"boykot-backend/internal/store"
)

// Periods accepted by the listing and ranking operations. Each maps to its own
// score bucket on the leaderboard entry.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAllTime = "all-time"
)

var ErrUnknownPeriod = errors.New("unknown leaderboard period")

var periodFields = map[string]string{
	PeriodWeekly:  "weeklyScore",
	PeriodMonthly: "monthlyScore",
	PeriodAllTime: "allTimeScore",
}

// Service ranks users by their per-period score buckets. Stored ranks are
// never trusted; every listing recomputes them from the sorted result.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// List returns one page of the leaderboard for the given period, highest
// scores first.
func (s *Service) List(ctx context.Context, period string, page store.Page) (model.LeaderboardPage, error) {
	field, ok := periodFields[period]
	if !ok {
		return model.LeaderboardPage{}, ErrUnknownPeriod
	}

	var entries []model.LeaderboardEntry
	next, err := s.store.ListMany(ctx, store.CollLeaderboard, store.Query{
		Sort: &store.Sort{Field: field, Desc: true},
		Page: page,
	}, &entries)
	if err != nil {
		return model.LeaderboardPage{}, fmt.Errorf("list leaderboard: %w", err)
	}

	offset := 0
	if page.Cursor != "" && len(entries) > 0 {
		offset, err = s.countBefore(ctx, field, score(entries[0], period), entries[0].UserID)
		if err != nil {
			return model.LeaderboardPage{}, err
		}
	}
	for i := range entries {
		entries[i].Rank = offset + i + 1
		entries[i].Score = score(entries[i], period)
	}

	return model.LeaderboardPage{Period: period, Entries: entries, NextCursor: next}, nil
}

// Rank computes a user's position for the period by sorting all entries, the
// same way the client renders the full board.
func (s *Service) Rank(ctx context.Context, userID, period string) (model.UserRank, error) {
	field, ok := periodFields[period]
	if !ok {
		return model.UserRank{}, ErrUnknownPeriod
	}

	var entries []model.LeaderboardEntry
	if _, err := s.store.ListMany(ctx, store.CollLeaderboard, store.Query{
		Sort: &store.Sort{Field: field, Desc: true},
	}, &entries); err != nil {
		return model.UserRank{}, fmt.Errorf("rank lookup: %w", err)
	}

	rank := model.UserRank{UserID: userID, TotalUsers: len(entries), Percentile: 100}
	for i, entry := range entries {
		if entry.UserID == userID {
			rank.Rank = i + 1
			rank.Score = score(entry, period)
			break
		}
	}
	if rank.Rank == 0 {
		return model.UserRank{}, store.ErrNotFound
	}
	if rank.TotalUsers > 0 {
		rank.Percentile = float64(rank.Rank) / float64(rank.TotalUsers) * 100
	}
	return rank, nil
}

// AddScore awards points to a user, keeping the per-timeframe buckets
// consistent. Read-modify-write, same as the rest of the app's mutations.
func (s *Service) AddScore(ctx context.Context, userID string, points int) (model.LeaderboardEntry, error) {
	if points <= 0 {
		return model.LeaderboardEntry{}, errors.New("points must be positive")
	}

	var entry model.LeaderboardEntry
	if err := s.store.GetOne(ctx, store.CollLeaderboard, userID, &entry); err != nil {
		return model.LeaderboardEntry{}, err
	}

	var updated model.LeaderboardEntry
	err := s.store.Update(ctx, store.CollLeaderboard, userID, map[string]interface{}{
		"score":        entry.Score + points,
		"weeklyScore":  entry.WeeklyScore + points,
		"monthlyScore": entry.MonthlyScore + points,
		"allTimeScore": entry.AllTimeScore + points,
	}, &updated)
	if err != nil {
		return model.LeaderboardEntry{}, fmt.Errorf("award score: %w", err)
	}
	return updated, nil
}

// countBefore returns how many entries precede the given one in listing order:
// every entry with a higher bucket score, plus tied entries whose primary key
// sorts first. Both clauses mirror the pagination order, so ranks continue
// seamlessly across page boundaries even when a tie spans one.
func (s *Service) countBefore(ctx context.Context, field string, value int, userID string) (int, error) {
	var higher []model.LeaderboardEntry
	if _, err := s.store.ListMany(ctx, store.CollLeaderboard, store.Query{
		Filters: []store.Filter{{Field: field, Op: store.OpGt, Value: value}},
	}, &higher); err != nil {
		return 0, fmt.Errorf("rank offset: %w", err)
	}

	var tied []model.LeaderboardEntry
	if _, err := s.store.ListMany(ctx, store.CollLeaderboard, store.Query{
		Filters: []store.Filter{
			{Field: field, Op: store.OpEq, Value: value},
			{Field: "_id", Op: store.OpLt, Value: userID},
		},
	}, &tied); err != nil {
		return 0, fmt.Errorf("rank offset: %w", err)
	}

	return len(higher) + len(tied), nil
}

func score(entry model.LeaderboardEntry, period string) int {
	switch period {
	case PeriodWeekly:
		return entry.WeeklyScore
	case PeriodMonthly:
		return entry.MonthlyScore
	default:
		return entry.AllTimeScore
	}
}
