package service

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/internal/service/mocks"

	"github.com/fsdevblog/minegrid/pkg/uow"
	uowmocks "github.com/fsdevblog/minegrid/pkg/uow/mocks"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type MinerServiceTestSuite struct {
	suite.Suite
	mockCtrl             *gomock.Controller
	mockUOW              *uowmocks.MockUOW
	mockTX               *uowmocks.MockTX
	mockUserRepo         *mocks.MockUserRepository
	mockMinerRepo        *mocks.MockMinerRepository
	mockUserMinerRepo    *mocks.MockUserMinerRepository
	mockNotificationRepo *mocks.MockNotificationRepository
	minerService         *MinerService

	now time.Time
}

func TestMinerServiceSuite(t *testing.T) {
	suite.Run(t, new(MinerServiceTestSuite))
}

func (s *MinerServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockMinerRepo = mocks.NewMockMinerRepository(s.mockCtrl)
	s.mockUserMinerRepo = mocks.NewMockUserMinerRepository(s.mockCtrl)
	s.mockNotificationRepo = mocks.NewMockNotificationRepository(s.mockCtrl)

	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserMinerRepoName)).
		Return(s.mockUserMinerRepo, nil).AnyTimes()

	// Все репозитории доступны и из транзакции.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.MinerRepoName)).
		Return(s.mockMinerRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserMinerRepoName)).
		Return(s.mockUserMinerRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.NotificationRepoName)).
		Return(s.mockNotificationRepo, nil).AnyTimes()

	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	minerService, servErr := NewMinerService(s.mockUOW)
	s.Require().NoError(servErr)
	s.minerService = minerService
}

func (s *MinerServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *MinerServiceTestSuite) catalogMiner() domain.Miner {
	return domain.Miner{
		ID:                 10,
		Name:               "Starter Rig",
		Price:              decimal.NewFromInt(10000),
		DurationDays:       20,
		PayoutAmount:       decimal.NewFromInt(475),
		TotalReturnPercent: decimal.NewFromInt(190),
		Active:             true,
	}
}

func (s *MinerServiceTestSuite) TestPurchase() {
	var userID int64 = 1
	miner := s.catalogMiner()

	purchased := domain.UserMiner{
		ID:           100,
		UserID:       userID,
		MinerID:      miner.ID,
		PayoutAmount: miner.PayoutAmount,
		MaxPayouts:   40,
		PurchasedAt:  s.now,
		EndsAt:       s.now.Add(20 * 24 * time.Hour),
		Active:       true,
	}

	s.mockMinerRepo.EXPECT().FindByID(gomock.Any(), miner.ID).Return(&miner, nil)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), userID).Return(&domain.User{ID: userID}, nil)
	s.mockUserRepo.EXPECT().ApplyPurchase(gomock.Any(), userID, miner.Price).Return(nil)

	s.mockUserMinerRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateUserMiner) (*domain.UserMiner, error) {
			// снепшот условий каталога и производные поля.
			s.Equal(userID, args.UserID)
			s.Equal(miner.ID, args.MinerID)
			s.True(args.PayoutAmount.Equal(miner.PayoutAmount))
			s.Equal(int32(40), args.MaxPayouts)
			s.Equal(s.now, args.PurchasedAt)
			s.Equal(s.now.Add(20*24*time.Hour), args.EndsAt)
			return &purchased, nil
		})

	s.mockNotificationRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateNotification) (*domain.Notification, error) {
			s.Equal(userID, args.UserID)
			s.Equal(domain.SeveritySuccess, args.Severity)
			return &domain.Notification{ID: 1}, nil
		})

	got, err := s.minerService.Purchase(context.Background(), userID, miner.ID, s.now)

	s.Require().NoError(err)
	s.Equal(&purchased, got)
}

func (s *MinerServiceTestSuite) TestPurchaseInactiveMiner() {
	miner := s.catalogMiner()
	miner.Active = false

	s.mockMinerRepo.EXPECT().FindByID(gomock.Any(), miner.ID).Return(&miner, nil)

	_, err := s.minerService.Purchase(context.Background(), 1, miner.ID, s.now)

	s.ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *MinerServiceTestSuite) TestPurchaseNotEnoughBalance() {
	var userID int64 = 1
	miner := s.catalogMiner()

	s.mockMinerRepo.EXPECT().FindByID(gomock.Any(), miner.ID).Return(&miner, nil)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), userID).Return(&domain.User{ID: userID}, nil)
	s.mockUserRepo.EXPECT().
		ApplyPurchase(gomock.Any(), userID, miner.Price).
		Return(domain.ErrNotEnoughBalance)

	_, err := s.minerService.Purchase(context.Background(), userID, miner.ID, s.now)

	s.ErrorIs(err, domain.ErrNotEnoughBalance)
}

func (s *MinerServiceTestSuite) ownedMiner() domain.UserMiner {
	return domain.UserMiner{
		ID:           100,
		UserID:       1,
		MinerID:      10,
		PayoutAmount: decimal.NewFromInt(475),
		MaxPayouts:   40,
		PurchasedAt:  s.now,
		EndsAt:       s.now.Add(20 * 24 * time.Hour),
		Active:       true,
	}
}

func (s *MinerServiceTestSuite) TestSettleDuePayouts() {
	owned := s.ownedMiner()
	at := s.now.Add(60 * time.Hour) // наступило 5 границ

	s.mockUserMinerRepo.EXPECT().FindByID(gomock.Any(), owned.ID).Return(&owned, nil).Times(2)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), owned.UserID).Return(&domain.User{ID: owned.UserID}, nil)

	wantAccrued := decimal.NewFromInt(475 * 5)

	settled := owned
	settled.PayoutsReceived = 5

	s.mockUserMinerRepo.EXPECT().
		ApplyAccrual(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.ApplyAccrual) (*domain.UserMiner, error) {
			s.Equal(owned.ID, args.ID)
			s.Equal(int32(0), args.ExpectedPayouts)
			s.Equal(int32(5), args.NewPayouts)
			s.True(args.Accrued.Equal(wantAccrued), "got %s", args.Accrued)
			s.Equal(at, args.LastPayoutAt)
			s.True(args.Active)
			return &settled, nil
		})

	s.mockUserRepo.EXPECT().
		ApplyPayout(gomock.Any(), owned.UserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, amount decimal.Decimal) error {
			s.True(amount.Equal(wantAccrued))
			return nil
		})

	// одно сводное уведомление, а не пять.
	s.mockNotificationRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.Notification{ID: 1}, nil)

	got, err := s.minerService.SettleDuePayouts(context.Background(), owned.ID, at)

	s.Require().NoError(err)
	s.Equal(int32(5), got.PayoutsReceived)
}

func (s *MinerServiceTestSuite) TestSettleDuePayoutsNothingDue() {
	owned := s.ownedMiner()
	at := s.now.Add(time.Hour) // первая граница еще не наступила

	s.mockUserMinerRepo.EXPECT().FindByID(gomock.Any(), owned.ID).Return(&owned, nil).Times(2)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), owned.UserID).Return(&domain.User{ID: owned.UserID}, nil)

	got, err := s.minerService.SettleDuePayouts(context.Background(), owned.ID, at)

	s.Require().NoError(err)
	s.True(got.Active)
	s.Equal(int32(0), got.PayoutsReceived)
}

func (s *MinerServiceTestSuite) TestSettleDuePayoutsDeactivatesAtCap() {
	owned := s.ownedMiner()
	owned.PayoutsReceived = owned.MaxPayouts
	last := owned.EndsAt
	owned.LastPayoutAt = &last
	at := owned.EndsAt.Add(time.Hour)

	s.mockUserMinerRepo.EXPECT().FindByID(gomock.Any(), owned.ID).Return(&owned, nil).Times(2)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), owned.UserID).Return(&domain.User{ID: owned.UserID}, nil)
	s.mockUserMinerRepo.EXPECT().Deactivate(gomock.Any(), owned.ID).Return(nil)

	got, err := s.minerService.SettleDuePayouts(context.Background(), owned.ID, at)

	s.Require().NoError(err)
	s.False(got.Active)
}

func (s *MinerServiceTestSuite) TestSettleDuePayoutsInactiveSkips() {
	owned := s.ownedMiner()
	owned.Active = false

	s.mockUserMinerRepo.EXPECT().FindByID(gomock.Any(), owned.ID).Return(&owned, nil)

	got, err := s.minerService.SettleDuePayouts(context.Background(), owned.ID, s.now.Add(60*time.Hour))

	s.Require().NoError(err)
	s.False(got.Active)
}

func (s *MinerServiceTestSuite) TestSettleDuePayoutsStaleState() {
	owned := s.ownedMiner()
	at := s.now.Add(12 * time.Hour)

	s.mockUserMinerRepo.EXPECT().FindByID(gomock.Any(), owned.ID).Return(&owned, nil).Times(2)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), owned.UserID).Return(&domain.User{ID: owned.UserID}, nil)
	s.mockUserMinerRepo.EXPECT().
		ApplyAccrual(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrStaleState)

	_, err := s.minerService.SettleDuePayouts(context.Background(), owned.ID, at)

	s.ErrorIs(err, domain.ErrStaleState)
}

func (s *MinerServiceTestSuite) TestNextDrop() {
	var userID int64 = 1
	owned := s.ownedMiner()
	at := s.now.Add(time.Hour)

	s.mockUserMinerRepo.EXPECT().
		GetActiveByUserID(gomock.Any(), userID).
		Return([]domain.UserMiner{owned}, nil)

	drop, ok, err := s.minerService.NextDrop(context.Background(), userID, at)

	s.Require().NoError(err)
	s.True(ok)
	s.Equal(s.now.Add(12*time.Hour), drop)

	s.mockUserMinerRepo.EXPECT().
		GetActiveByUserID(gomock.Any(), userID).
		Return(nil, nil)

	_, ok, err = s.minerService.NextDrop(context.Background(), userID, at)

	s.Require().NoError(err)
	s.False(ok)
}
