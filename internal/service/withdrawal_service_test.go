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

type WithdrawalServiceTestSuite struct {
	suite.Suite
	mockCtrl             *gomock.Controller
	mockUOW              *uowmocks.MockUOW
	mockTX               *uowmocks.MockTX
	mockUserRepo         *mocks.MockUserRepository
	mockWithdrawalRepo   *mocks.MockWithdrawalRepository
	mockNotificationRepo *mocks.MockNotificationRepository
	withdrawalService    *WithdrawalService

	now time.Time
}

func TestWithdrawalServiceSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalServiceTestSuite))
}

func (s *WithdrawalServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockWithdrawalRepo = mocks.NewMockWithdrawalRepository(s.mockCtrl)
	s.mockNotificationRepo = mocks.NewMockNotificationRepository(s.mockCtrl)

	s.now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.WithdrawalRepoName)).
		Return(s.mockWithdrawalRepo, nil).AnyTimes()

	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.WithdrawalRepoName)).
		Return(s.mockWithdrawalRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.NotificationRepoName)).
		Return(s.mockNotificationRepo, nil).AnyTimes()

	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	withdrawalService, servErr := NewWithdrawalService(s.mockUOW)
	s.Require().NoError(servErr)
	s.withdrawalService = withdrawalService
}

func (s *WithdrawalServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WithdrawalServiceTestSuite) submitArgs() SubmitWithdrawalArgs {
	return SubmitWithdrawalArgs{
		UserID:        1,
		Amount:        decimal.NewFromInt(1500),
		BankName:      "First National",
		AccountNumber: "0123456789",
		AccountName:   "John Doe",
	}
}

func (s *WithdrawalServiceTestSuite) TestSubmit() {
	args := s.submitArgs()
	// аккаунту больше 48 часов.
	user := domain.User{ID: args.UserID, CreatedAt: s.now.Add(-72 * time.Hour)}

	created := domain.Withdrawal{
		ID:     1,
		UserID: args.UserID,
		Amount: args.Amount,
		Status: domain.WithdrawalStatusPending,
	}

	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), args.UserID).Return(&user, nil)

	// сумма резервируется при подаче.
	s.mockUserRepo.EXPECT().
		ApplyWithdrawalHold(gomock.Any(), args.UserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, amount decimal.Decimal) error {
			s.True(amount.Equal(args.Amount))
			return nil
		})

	s.mockWithdrawalRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c repoargs.CreateWithdrawal) (*domain.Withdrawal, error) {
			s.Equal(args.UserID, c.UserID)
			s.Equal(args.BankName, c.BankName)
			s.Equal(args.AccountNumber, c.AccountNumber)
			s.Equal(args.AccountName, c.AccountName)
			return &created, nil
		})

	s.mockNotificationRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n repoargs.CreateNotification) (*domain.Notification, error) {
			s.Equal(domain.SeverityInfo, n.Severity)
			return &domain.Notification{ID: 1}, nil
		})

	withdrawal, err := s.withdrawalService.Submit(context.Background(), args, s.now)

	s.Require().NoError(err)
	s.Equal(domain.WithdrawalStatusPending, withdrawal.Status)
}

func (s *WithdrawalServiceTestSuite) TestSubmitBelowMinimum() {
	args := s.submitArgs()
	args.Amount = decimal.NewFromInt(999)

	_, err := s.withdrawalService.Submit(context.Background(), args, s.now)

	s.ErrorIs(err, domain.ErrValidation)
}

func (s *WithdrawalServiceTestSuite) TestSubmitYoungAccount() {
	args := s.submitArgs()
	user := domain.User{ID: args.UserID, CreatedAt: s.now.Add(-time.Hour)}

	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), args.UserID).Return(&user, nil)

	_, err := s.withdrawalService.Submit(context.Background(), args, s.now)

	s.Require().Error(err)
	var ineligibleErr *domain.IneligibleWithdrawalError
	s.Require().ErrorAs(err, &ineligibleErr)
	s.Equal(47*time.Hour, ineligibleErr.Remaining)
}

func (s *WithdrawalServiceTestSuite) TestSubmitNotEnoughBalance() {
	args := s.submitArgs()
	user := domain.User{ID: args.UserID, CreatedAt: s.now.Add(-72 * time.Hour)}

	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), args.UserID).Return(&user, nil)
	s.mockUserRepo.EXPECT().
		ApplyWithdrawalHold(gomock.Any(), args.UserID, gomock.Any()).
		Return(domain.ErrNotEnoughBalance)

	_, err := s.withdrawalService.Submit(context.Background(), args, s.now)

	s.ErrorIs(err, domain.ErrNotEnoughBalance)
}

func (s *WithdrawalServiceTestSuite) TestApprove() {
	pending := domain.Withdrawal{
		ID:     1,
		UserID: 1,
		Amount: decimal.NewFromInt(1500),
		Status: domain.WithdrawalStatusPending,
	}
	completed := pending
	completed.Status = domain.WithdrawalStatusCompleted
	completed.ProcessedAt = &s.now

	s.mockWithdrawalRepo.EXPECT().FindByID(gomock.Any(), pending.ID).Return(&pending, nil)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), pending.UserID).Return(&domain.User{ID: pending.UserID}, nil)
	s.mockWithdrawalRepo.EXPECT().
		Transition(gomock.Any(), pending.ID, domain.WithdrawalStatusCompleted, s.now).
		Return(&completed, nil)
	s.mockUserRepo.EXPECT().SetLastWithdrawalAt(gomock.Any(), pending.UserID, s.now).Return(nil)

	s.mockNotificationRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n repoargs.CreateNotification) (*domain.Notification, error) {
			s.Equal(domain.SeveritySuccess, n.Severity)
			return &domain.Notification{ID: 1}, nil
		})

	withdrawal, err := s.withdrawalService.Approve(context.Background(), pending.ID, s.now)

	s.Require().NoError(err)
	s.Equal(domain.WithdrawalStatusCompleted, withdrawal.Status)
}

func (s *WithdrawalServiceTestSuite) TestRejectRefundsHold() {
	pending := domain.Withdrawal{
		ID:     1,
		UserID: 1,
		Amount: decimal.NewFromInt(1500),
		Status: domain.WithdrawalStatusPending,
	}
	rejected := pending
	rejected.Status = domain.WithdrawalStatusRejected
	rejected.ProcessedAt = &s.now

	s.mockWithdrawalRepo.EXPECT().FindByID(gomock.Any(), pending.ID).Return(&pending, nil)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), pending.UserID).Return(&domain.User{ID: pending.UserID}, nil)
	s.mockWithdrawalRepo.EXPECT().
		Transition(gomock.Any(), pending.ID, domain.WithdrawalStatusRejected, s.now).
		Return(&rejected, nil)

	// зарезервированная сумма возвращается на баланс.
	s.mockUserRepo.EXPECT().
		RefundWithdrawal(gomock.Any(), pending.UserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, amount decimal.Decimal) error {
			s.True(amount.Equal(pending.Amount))
			return nil
		})

	s.mockNotificationRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n repoargs.CreateNotification) (*domain.Notification, error) {
			s.Equal(domain.SeverityError, n.Severity)
			return &domain.Notification{ID: 1}, nil
		})

	withdrawal, err := s.withdrawalService.Reject(context.Background(), pending.ID, s.now)

	s.Require().NoError(err)
	s.Equal(domain.WithdrawalStatusRejected, withdrawal.Status)
}

func (s *WithdrawalServiceTestSuite) TestApproveAlreadyProcessed() {
	processed := domain.Withdrawal{
		ID:     1,
		UserID: 1,
		Amount: decimal.NewFromInt(1500),
		Status: domain.WithdrawalStatusCompleted,
	}

	s.mockWithdrawalRepo.EXPECT().FindByID(gomock.Any(), processed.ID).Return(&processed, nil)
	s.mockUserRepo.EXPECT().LockByID(gomock.Any(), processed.UserID).Return(&domain.User{ID: processed.UserID}, nil)
	s.mockWithdrawalRepo.EXPECT().
		Transition(gomock.Any(), processed.ID, domain.WithdrawalStatusCompleted, s.now).
		Return(nil, domain.ErrStaleState)

	_, err := s.withdrawalService.Approve(context.Background(), processed.ID, s.now)

	s.ErrorIs(err, domain.ErrStaleState)
}
