package pgrepo

import (
	"context"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

const minerColumns = `id, created_at, updated_at, name, description, price, duration_days,
	payout_amount, total_return_percent, active`

type MinerRepository struct {
	db uow.DBTX
}

func NewMinerRepository(db uow.DBTX) *MinerRepository {
	return &MinerRepository{db: db}
}

func (m *MinerRepository) Create(ctx context.Context, args repoargs.CreateMiner) (*domain.Miner, error) {
	row := m.db.QueryRow(ctx, `
		INSERT INTO miners (name, description, price, duration_days, payout_amount, total_return_percent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+minerColumns,
		args.Name, args.Description, args.Price, args.DurationDays, args.PayoutAmount, args.TotalReturnPercent)

	miner, err := scanMiner(row)
	if err != nil {
		return nil, convertErr(err, "creating miner")
	}
	return miner, nil
}

func (m *MinerRepository) FindByID(ctx context.Context, id int64) (*domain.Miner, error) {
	row := m.db.QueryRow(ctx, `SELECT `+minerColumns+` FROM miners WHERE id = $1`, id)
	miner, err := scanMiner(row)
	if err != nil {
		return nil, convertErr(err, "finding miner by id %d", id)
	}
	return miner, nil
}

// ListActive возвращает активные шаблоны пакетов, отсортированные по цене по возрастанию.
func (m *MinerRepository) ListActive(ctx context.Context) ([]domain.Miner, error) {
	return m.list(ctx, `SELECT `+minerColumns+` FROM miners WHERE active ORDER BY price ASC`)
}

// ListAll возвращает все шаблоны пакетов (для админки), отсортированные по цене.
func (m *MinerRepository) ListAll(ctx context.Context) ([]domain.Miner, error) {
	return m.list(ctx, `SELECT `+minerColumns+` FROM miners ORDER BY price ASC`)
}

// ToggleActive переключает видимость шаблона для новых покупок. Уже купленные пакеты
// не затрагиваются.
func (m *MinerRepository) ToggleActive(ctx context.Context, id int64) (*domain.Miner, error) {
	row := m.db.QueryRow(ctx, `
		UPDATE miners SET active = NOT active, updated_at = now()
		WHERE id = $1
		RETURNING `+minerColumns,
		id)
	miner, err := scanMiner(row)
	if err != nil {
		return nil, convertErr(err, "toggling miner %d", id)
	}
	return miner, nil
}

func (m *MinerRepository) list(ctx context.Context, query string) ([]domain.Miner, error) {
	rows, err := m.db.Query(ctx, query)
	if err != nil {
		return nil, convertErr(err, "listing miners")
	}
	defer rows.Close()

	var miners []domain.Miner
	for rows.Next() {
		miner, scanErr := scanMiner(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing miners")
		}
		miners = append(miners, *miner)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing miners")
	}
	return miners, nil
}

func scanMiner(row rowScanner) (*domain.Miner, error) {
	var miner domain.Miner
	err := row.Scan(
		&miner.ID,
		&miner.CreatedAt,
		&miner.UpdatedAt,
		&miner.Name,
		&miner.Description,
		&miner.Price,
		&miner.DurationDays,
		&miner.PayoutAmount,
		&miner.TotalReturnPercent,
		&miner.Active,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &miner, nil
}
