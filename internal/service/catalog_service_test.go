package service

import (
	"context"
	"testing"

	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/internal/service/mocks"

	"github.com/fsdevblog/minegrid/pkg/uow"
	uowmocks "github.com/fsdevblog/minegrid/pkg/uow/mocks"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type CatalogServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockMinerRepo  *mocks.MockMinerRepository
	catalogService *CatalogService
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

func (s *CatalogServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockMinerRepo = mocks.NewMockMinerRepository(s.mockCtrl)

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.MinerRepoName)).
		Return(s.mockMinerRepo, nil).AnyTimes()

	catalogService, servErr := NewCatalogService(s.mockUOW)
	s.Require().NoError(servErr)
	s.catalogService = catalogService
}

func (s *CatalogServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CatalogServiceTestSuite) TestPayoutAmountFor() {
	cases := []struct {
		name         string
		price        decimal.Decimal
		durationDays int32
		want         string
	}{
		{
			name:         "10000 over 20 days",
			price:        decimal.NewFromInt(10000),
			durationDays: 20,
			want:         "475",
		},
		{
			name:         "3500 over 7 days",
			price:        decimal.NewFromInt(3500),
			durationDays: 7,
			want:         "475",
		},
		{
			name:         "uneven division rounds to cents",
			price:        decimal.NewFromInt(1000),
			durationDays: 3,
			want:         "316.67",
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			got := PayoutAmountFor(t.price, t.durationDays)
			s.True(got.Equal(decimal.RequireFromString(t.want)), "got %s", got)
		})
	}
}

// Сумма всех выплат за срок пакета дает 190% цены (с точностью до копеечной ошибки округления).
func (s *CatalogServiceTestSuite) TestTotalReturnDerivation() {
	price := decimal.NewFromInt(10000)
	var durationDays int32 = 20

	payout := PayoutAmountFor(price, durationDays)
	total := payout.Mul(decimal.NewFromInt(int64(durationDays) * domain.PayoutsPerDay))

	s.True(total.Equal(decimal.NewFromInt(19000)), "got %s", total)
}

func (s *CatalogServiceTestSuite) TestCreate() {
	created := domain.Miner{
		ID:                 1,
		Name:               "Starter Rig",
		Price:              decimal.NewFromInt(10000),
		DurationDays:       20,
		PayoutAmount:       decimal.NewFromInt(475),
		TotalReturnPercent: TotalReturnPercent,
		Active:             true,
	}

	s.mockMinerRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateMiner) (*domain.Miner, error) {
			s.Equal("Starter Rig", args.Name)
			s.True(args.PayoutAmount.Equal(decimal.NewFromInt(475)))
			s.True(args.TotalReturnPercent.Equal(TotalReturnPercent))
			return &created, nil
		})

	miner, err := s.catalogService.Create(context.Background(), CreateMinerArgs{
		Name:         "Starter Rig",
		Price:        decimal.NewFromInt(10000),
		DurationDays: 20,
	})

	s.Require().NoError(err)
	s.Equal(&created, miner)
}

func (s *CatalogServiceTestSuite) TestCreateValidation() {
	cases := []struct {
		name string
		args CreateMinerArgs
	}{
		{
			name: "zero price",
			args: CreateMinerArgs{Name: "Bad", Price: decimal.Zero, DurationDays: 20},
		},
		{
			name: "negative price",
			args: CreateMinerArgs{Name: "Bad", Price: decimal.NewFromInt(-100), DurationDays: 20},
		},
		{
			name: "zero duration",
			args: CreateMinerArgs{Name: "Bad", Price: decimal.NewFromInt(100), DurationDays: 0},
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			_, err := s.catalogService.Create(context.Background(), t.args)

			s.Require().Error(err)
			s.ErrorIs(err, domain.ErrValidation)
		})
	}
}

func (s *CatalogServiceTestSuite) TestToggleActive() {
	toggled := domain.Miner{ID: 1, Active: false}

	s.mockMinerRepo.EXPECT().
		ToggleActive(gomock.Any(), int64(1)).
		Return(&toggled, nil)

	miner, err := s.catalogService.ToggleActive(context.Background(), 1)

	s.Require().NoError(err)
	s.False(miner.Active)

	s.mockMinerRepo.EXPECT().
		ToggleActive(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	_, err = s.catalogService.ToggleActive(context.Background(), 404)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}
