package accrual

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fsdevblog/minegrid/internal/accrual/mocks"
	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ProcessorTestSuite struct {
	suite.Suite
	processor   *Processor
	mockService *mocks.MockServicer
	ctrl        *gomock.Controller
	now         time.Time
}

func (s *ProcessorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockServicer(s.ctrl)
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.processor = New(s.mockService, logger).
		SetClock(func() time.Time { return s.now })
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

// TestProcess_NoDuePackages Тест на случай, когда начислять нечего.
func (s *ProcessorTestSuite) TestProcess_NoDuePackages() {
	s.mockService.EXPECT().
		DueUserMiners(gomock.Any(), s.now, s.processor.limitPerIteration).
		Return(nil, nil)

	err := s.processor.process(context.Background())

	s.ErrorIs(err, ErrNoDuePackages)
}

// TestProcess_Success Тест на успешное начисление по всем пакетам итерации.
func (s *ProcessorTestSuite) TestProcess_Success() {
	ids := []int64{1, 2, 3}

	s.mockService.EXPECT().
		DueUserMiners(gomock.Any(), s.now, s.processor.limitPerIteration).
		Return(ids, nil)

	var mu sync.Mutex
	settledIDs := make(map[int64]bool)

	for _, id := range ids {
		s.mockService.EXPECT().
			SettleDuePayouts(gomock.Any(), id, s.now).
			DoAndReturn(func(_ context.Context, userMinerID int64, now time.Time) (*domain.UserMiner, error) {
				mu.Lock()
				settledIDs[userMinerID] = true
				mu.Unlock()

				last := now
				return &domain.UserMiner{
					ID:              userMinerID,
					PayoutsReceived: 1,
					LastPayoutAt:    &last,
					Active:          true,
				}, nil
			})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.processor.process(ctx)

	s.Require().NoError(err)
	s.Len(settledIDs, len(ids))
}

// TestProcess_PartialFailures Тест на случай, когда часть пакетов не начислилась:
// ошибки по отдельным пакетам не валят итерацию.
func (s *ProcessorTestSuite) TestProcess_PartialFailures() {
	ids := []int64{1, 2, 3}

	s.mockService.EXPECT().
		DueUserMiners(gomock.Any(), s.now, s.processor.limitPerIteration).
		Return(ids, nil)

	s.mockService.EXPECT().
		SettleDuePayouts(gomock.Any(), int64(1), s.now).
		Return(&domain.UserMiner{ID: 1, PayoutsReceived: 1, Active: true}, nil)
	// конкурентный инстанс успел начислить первым.
	s.mockService.EXPECT().
		SettleDuePayouts(gomock.Any(), int64(2), s.now).
		Return(nil, domain.ErrStaleState)
	s.mockService.EXPECT().
		SettleDuePayouts(gomock.Any(), int64(3), s.now).
		Return(nil, errors.New("connection reset"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.processor.process(ctx)

	s.NoError(err)
}

// TestRun_StopsOnContextCancel Тест на завершение цикла по отмене контекста.
func (s *ProcessorTestSuite) TestRun_StopsOnContextCancel() {
	s.processor.SetTickInterval(time.Hour) // до первого тика дело не дойдет

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.processor.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("processor did not stop after context cancel")
	}
}
