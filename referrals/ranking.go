package referrals

import (
	"context"
	"sync"

	"referral-portal-server/models"
)

// Standing is one leaderboard row. Rank positions run 1..N with no gaps:
// colleges are ordered by enabled-student count descending, ties broken by
// account creation time ascending (id as the final, deterministic tiebreak).
type Standing struct {
	Rank         int
	College      models.Account
	EnabledCount int
}

// Dashboard is what a college rep sees: their enabled students in signup
// order, the live counter and their leaderboard position. A college with zero
// enabled students is still ranked.
type Dashboard struct {
	College      *models.Account
	Enabled      []models.Account
	EnabledCount int
	Rank         int
}

// board caches the materialized leaderboard. Every mutation that can move a
// counter marks it stale before the mutating call returns, so the college
// that just enabled a student sees the new order on its next read.
type board struct {
	mu    sync.Mutex
	rows  []Standing
	valid bool
}

func (b *board) invalidate() {
	b.mu.Lock()
	b.valid = false
	b.mu.Unlock()
}

// Leaderboard returns the current standings snapshot, rebuilding it from the
// store if a mutation invalidated the cached copy.
func (s *Service) Leaderboard(ctx context.Context) ([]Standing, error) {
	s.board.mu.Lock()
	defer s.board.mu.Unlock()

	if !s.board.valid {
		var colleges []models.Account
		err := s.db.WithContext(ctx).
			Where("kind = ?", models.KindCollege).
			Order("enabled_count DESC, created_at ASC, id ASC").
			Find(&colleges).Error
		if err != nil {
			return nil, err
		}
		rows := make([]Standing, 0, len(colleges))
		for i, c := range colleges {
			rows = append(rows, Standing{Rank: i + 1, College: c, EnabledCount: c.EnabledCount})
		}
		s.board.rows = rows
		s.board.valid = true
	}

	out := make([]Standing, len(s.board.rows))
	copy(out, s.board.rows)
	return out, nil
}

// RankOf returns a college's leaderboard position.
func (s *Service) RankOf(ctx context.Context, collegeID uint) (int, error) {
	rows, err := s.Leaderboard(ctx)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if row.College.ID == collegeID {
			return row.Rank, nil
		}
	}
	return 0, ErrNotFound
}

// GetDashboard joins the college account, its enabled students (signup order)
// and its rank.
func (s *Service) GetDashboard(ctx context.Context, collegeID uint) (*Dashboard, error) {
	college, err := s.Get(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	if college.Kind != models.KindCollege {
		return nil, ErrNotFound
	}

	enabled, err := s.ListReferred(ctx, collegeID, true)
	if err != nil {
		return nil, err
	}
	rank, err := s.RankOf(ctx, collegeID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		College:      college,
		Enabled:      enabled,
		EnabledCount: college.EnabledCount,
		Rank:         rank,
	}, nil
}

// ListReferred returns the students attributed to a college in signup order,
// optionally narrowed to enabled ones. Removed students never show up.
func (s *Service) ListReferred(ctx context.Context, collegeID uint, onlyEnabled bool) ([]models.Account, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN referrals ON referrals.referred_id = accounts.id").
		Where("referrals.referrer_id = ?", collegeID).
		Order("referrals.id ASC")
	if onlyEnabled {
		q = q.Where("accounts.state = ?", models.StateEnabled)
	} else {
		q = q.Where("accounts.state <> ?", models.StateRemoved)
	}

	var students []models.Account
	if err := q.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
