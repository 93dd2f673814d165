package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccrualTestSuite struct {
	suite.Suite
	purchasedAt time.Time
}

func TestAccrualSuite(t *testing.T) {
	suite.Run(t, new(AccrualTestSuite))
}

func (s *AccrualTestSuite) SetupTest() {
	s.purchasedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// newMiner создает активный пакет на durationDays суток от момента покупки.
func (s *AccrualTestSuite) newMiner(durationDays int32) UserMiner {
	return UserMiner{
		ID:           1,
		UserID:       1,
		MinerID:      1,
		PayoutAmount: decimal.NewFromInt(475),
		MaxPayouts:   durationDays * PayoutsPerDay,
		PurchasedAt:  s.purchasedAt,
		EndsAt:       s.purchasedAt.Add(time.Duration(durationDays) * 24 * time.Hour),
		Active:       true,
	}
}

func (s *AccrualTestSuite) TestNextPayoutAt() {
	m := s.newMiner(20)
	s.Equal(s.purchasedAt.Add(PayoutInterval), m.NextPayoutAt())

	last := s.purchasedAt.Add(36 * time.Hour)
	m.LastPayoutAt = &last
	s.Equal(last.Add(PayoutInterval), m.NextPayoutAt())
}

func (s *AccrualTestSuite) TestDuePayouts() {
	cases := []struct {
		name         string
		lastPayoutAt *time.Duration
		received     int32
		at           time.Duration
		wantCount    int32
		wantBoundary time.Duration
	}{
		{
			name:      "before first boundary",
			at:        11*time.Hour + 59*time.Minute,
			wantCount: 0,
		},
		{
			name:         "exactly at first boundary",
			at:           12 * time.Hour,
			wantCount:    1,
			wantBoundary: 12 * time.Hour,
		},
		{
			name:         "catch up after downtime",
			at:           60 * time.Hour,
			wantCount:    5,
			wantBoundary: 60 * time.Hour,
		},
		{
			name:         "partial catch up from last payout",
			lastPayoutAt: durationPtr(24 * time.Hour),
			received:     2,
			at:           61 * time.Hour,
			wantCount:    3,
			wantBoundary: 60 * time.Hour,
		},
		{
			name:         "capped at max payouts long after expiry",
			at:           100 * 24 * time.Hour,
			wantCount:    40,
			wantBoundary: 480 * time.Hour,
		},
		{
			name:      "nothing due when already at cap",
			received:  40,
			at:        100 * 24 * time.Hour,
			wantCount: 0,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			m := s.newMiner(20)
			m.PayoutsReceived = t.received
			if t.lastPayoutAt != nil {
				last := s.purchasedAt.Add(*t.lastPayoutAt)
				m.LastPayoutAt = &last
			}

			count, boundary := m.DuePayouts(s.purchasedAt.Add(t.at))

			s.Equal(t.wantCount, count)
			if t.wantCount > 0 {
				s.Equal(s.purchasedAt.Add(t.wantBoundary), boundary)
			}
		})
	}
}

// TestDuePayoutsIdempotence проверяет, что после применения результата повторная
// оценка с тем же now ничего не доначисляет.
func (s *AccrualTestSuite) TestDuePayoutsIdempotence() {
	m := s.newMiner(20)
	now := s.purchasedAt.Add(60 * time.Hour)

	count, boundary := m.DuePayouts(now)
	s.Equal(int32(5), count)

	m.PayoutsReceived += count
	m.LastPayoutAt = &boundary

	again, _ := m.DuePayouts(now)
	s.Equal(int32(0), again)

	// а следующая граница доступна ровно через интервал.
	next, _ := m.DuePayouts(now.Add(PayoutInterval))
	s.Equal(int32(1), next)
}

func (s *AccrualTestSuite) TestExpired() {
	m := s.newMiner(20)

	s.False(m.Expired(m.EndsAt.Add(-time.Second)))
	s.True(m.Expired(m.EndsAt))

	m.PayoutsReceived = m.MaxPayouts
	s.True(m.Expired(s.purchasedAt))
}

func (s *AccrualTestSuite) TestProgress() {
	m := s.newMiner(20)
	s.InDelta(0.0, m.Progress(), 1e-9)

	m.PayoutsReceived = 10
	s.InDelta(0.25, m.Progress(), 1e-9)

	m.PayoutsReceived = 50
	s.InDelta(1.0, m.Progress(), 1e-9)

	m.MaxPayouts = 0
	s.InDelta(0.0, m.Progress(), 1e-9)
}

func (s *AccrualTestSuite) TestTimeUntilPayout() {
	m := s.newMiner(20)

	s.Equal(2*time.Hour, m.TimeUntilPayout(s.purchasedAt.Add(10*time.Hour)))
	s.Equal(time.Duration(0), m.TimeUntilPayout(s.purchasedAt.Add(13*time.Hour)))
}

func (s *AccrualTestSuite) TestSoonestPayoutAt() {
	now := s.purchasedAt.Add(time.Hour)

	early := s.newMiner(20)
	late := s.newMiner(20)
	lateLast := s.purchasedAt.Add(12 * time.Hour)
	late.LastPayoutAt = &lateLast
	inactive := s.newMiner(20)
	inactive.Active = false

	soonest, ok := SoonestPayoutAt([]UserMiner{late, early, inactive}, now)
	s.True(ok)
	s.Equal(early.NextPayoutAt(), soonest)

	_, ok = SoonestPayoutAt([]UserMiner{inactive}, now)
	s.False(ok)

	_, ok = SoonestPayoutAt(nil, now)
	s.False(ok)
}

func (s *AccrualTestSuite) TestWithdrawalEligibility() {
	createdAt := s.purchasedAt

	cases := []struct {
		name          string
		age           time.Duration
		wantEligible  bool
		wantRemaining time.Duration
	}{
		{
			name:          "fresh account",
			age:           time.Hour,
			wantEligible:  false,
			wantRemaining: 47 * time.Hour,
		},
		{
			name:          "one minute short",
			age:           48*time.Hour - time.Minute,
			wantEligible:  false,
			wantRemaining: time.Minute,
		},
		{
			name:         "exactly at threshold",
			age:          48 * time.Hour,
			wantEligible: true,
		},
		{
			name:         "old account",
			age:          30 * 24 * time.Hour,
			wantEligible: true,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			eligible, remaining := WithdrawalEligibility(createdAt, createdAt.Add(t.age))

			s.Equal(t.wantEligible, eligible)
			s.Equal(t.wantRemaining, remaining)
		})
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
