package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

// TotalReturnPercent — суммарная доходность пакета. Фиксирована для всех пакетов:
// за полный срок пакет возвращает 190% своей цены.
var TotalReturnPercent = decimal.NewFromInt(190)

var oneHundred = decimal.NewFromInt(100)

type CatalogService struct {
	uow       uow.UOW
	minerRepo MinerRepository
}

func NewCatalogService(u uow.UOW) (*CatalogService, error) {
	minerRepo, err := uow.GetRepositoryAs[MinerRepository](u, uow.RepositoryName(repoargs.MinerRepoName))
	if err != nil {
		return nil, err
	}
	return &CatalogService{
		uow:       u,
		minerRepo: minerRepo,
	}, nil
}

type CreateMinerArgs struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	DurationDays int32
}

// Create добавляет шаблон пакета в каталог. Сумма одной выплаты выводится из цены:
// payout = price * 1.9 / (durationDays * 2) — 190% цены, распределенные по двум
// выплатам в сутки на весь срок. При price <= 0 или durationDays <= 0 возвращает
// domain.ErrValidation.
func (c *CatalogService) Create(ctx context.Context, args CreateMinerArgs) (*domain.Miner, error) {
	if !args.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if args.DurationDays <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", domain.ErrValidation)
	}

	payoutAmount := PayoutAmountFor(args.Price, args.DurationDays)

	miner, err := c.minerRepo.Create(ctx, repoargs.CreateMiner{
		Name:               args.Name,
		Description:        args.Description,
		Price:              args.Price,
		DurationDays:       args.DurationDays,
		PayoutAmount:       payoutAmount,
		TotalReturnPercent: TotalReturnPercent,
	})
	if err != nil {
		return nil, fmt.Errorf("creating miner: %w", err)
	}
	return miner, nil
}

// PayoutAmountFor возвращает сумму одной выплаты для заданной цены и срока.
// Округляется до 2 знаков (валютная точность колонок NUMERIC).
func PayoutAmountFor(price decimal.Decimal, durationDays int32) decimal.Decimal {
	totalPayouts := decimal.NewFromInt(int64(durationDays) * domain.PayoutsPerDay)
	return price.Mul(TotalReturnPercent).Div(oneHundred).Div(totalPayouts).Round(2)
}

// ListActive возвращает видимые новым покупателям шаблоны, по цене по возрастанию.
func (c *CatalogService) ListActive(ctx context.Context) ([]domain.Miner, error) {
	miners, err := c.minerRepo.ListActive(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return miners, nil
}

// ListAll возвращает все шаблоны, включая скрытые. Для админки.
func (c *CatalogService) ListAll(ctx context.Context) ([]domain.Miner, error) {
	miners, err := c.minerRepo.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return miners, nil
}

// ToggleActive переключает видимость шаблона для новых покупок. Условия уже купленных
// пакетов зафиксированы снепшотом и не меняются.
func (c *CatalogService) ToggleActive(ctx context.Context, id int64) (*domain.Miner, error) {
	miner, err := c.minerRepo.ToggleActive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggling miner %d: %w", id, err)
	}
	return miner, nil
}
