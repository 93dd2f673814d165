package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

const userMinerColumns = `id, created_at, updated_at, user_id, miner_id, payout_amount,
	max_payouts, purchased_at, ends_at, last_payout_at, payouts_received, total_earned, active`

type UserMinerRepository struct {
	db uow.DBTX
}

func NewUserMinerRepository(db uow.DBTX) *UserMinerRepository {
	return &UserMinerRepository{db: db}
}

func (r *UserMinerRepository) Create(ctx context.Context, args repoargs.CreateUserMiner) (*domain.UserMiner, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_miners (user_id, miner_id, payout_amount, max_payouts, purchased_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userMinerColumns,
		args.UserID, args.MinerID, args.PayoutAmount, args.MaxPayouts, args.PurchasedAt, args.EndsAt)

	userMiner, err := scanUserMiner(row)
	if err != nil {
		return nil, convertErr(err, "creating user miner")
	}
	return userMiner, nil
}

func (r *UserMinerRepository) FindByID(ctx context.Context, id int64) (*domain.UserMiner, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userMinerColumns+` FROM user_miners WHERE id = $1`, id)
	userMiner, err := scanUserMiner(row)
	if err != nil {
		return nil, convertErr(err, "finding user miner by id %d", id)
	}
	return userMiner, nil
}

// GetByUserID возвращает пакеты юзера, отсортированные по дате покупки по убыванию.
func (r *UserMinerRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.UserMiner, error) {
	return r.list(ctx, `
		SELECT `+userMinerColumns+` FROM user_miners
		WHERE user_id = $1
		ORDER BY purchased_at DESC`,
		userID)
}

func (r *UserMinerRepository) GetActiveByUserID(ctx context.Context, userID int64) ([]domain.UserMiner, error) {
	return r.list(ctx, `
		SELECT `+userMinerColumns+` FROM user_miners
		WHERE user_id = $1 AND active
		ORDER BY purchased_at DESC`,
		userID)
}

// GetDue возвращает id активных пакетов, у которых на момент now наступила хотя бы одна
// невыплаченная граница. Лимит нужен фоновому обработчику, чтобы резать итерации.
// Условие повторяет domain.(*UserMiner).NextPayoutAt: первая выплата через 12 часов
// после покупки, далее через 12 часов после последней выплаты.
func (r *UserMinerRepository) GetDue(ctx context.Context, now time.Time, limit uint) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM user_miners
		WHERE active
		  AND COALESCE(last_payout_at, purchased_at) + interval '12 hours' <= $1
		ORDER BY COALESCE(last_payout_at, purchased_at) ASC
		LIMIT $2`,
		now, limit)
	if err != nil {
		return nil, convertErr(err, "listing due user miners")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, convertErr(scanErr, "listing due user miners")
		}
		ids = append(ids, id)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing due user miners")
	}
	return ids, nil
}

// ApplyAccrual записывает результат начисления. Апдейт охраняется прочитанным ранее
// значением payouts_received: если 0 строк затронуто — пакет успел измениться
// конкурентно, возвращается domain.ErrStaleState (безопасно повторить на следующем
// тике). Начисление и деактивация — одна атомарная запись.
func (r *UserMinerRepository) ApplyAccrual(ctx context.Context, args repoargs.ApplyAccrual) (*domain.UserMiner, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE user_miners
		SET payouts_received = $3,
		    total_earned = total_earned + $4,
		    last_payout_at = $5,
		    active = $6,
		    updated_at = now()
		WHERE id = $1 AND payouts_received = $2
		RETURNING `+userMinerColumns,
		args.ID, args.ExpectedPayouts, args.NewPayouts, args.Accrued, args.LastPayoutAt, args.Active)

	userMiner, err := scanUserMiner(row)
	if err != nil {
		converted := convertErr(err, "applying accrual to user miner %d", args.ID)
		if isNotFound(converted) {
			return nil, domain.ErrStaleState
		}
		return nil, converted
	}
	return userMiner, nil
}

// Deactivate переводит истекший пакет в неактивное состояние без начисления.
func (r *UserMinerRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_miners SET active = false, updated_at = now() WHERE id = $1`,
		id)
	return convertErr(err, "deactivating user miner %d", id)
}

func (r *UserMinerRepository) list(ctx context.Context, query string, args ...any) ([]domain.UserMiner, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, convertErr(err, "listing user miners")
	}
	defer rows.Close()

	var miners []domain.UserMiner
	for rows.Next() {
		userMiner, scanErr := scanUserMiner(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing user miners")
		}
		miners = append(miners, *userMiner)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing user miners")
	}
	return miners, nil
}

func scanUserMiner(row rowScanner) (*domain.UserMiner, error) {
	var m domain.UserMiner
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.UserID,
		&m.MinerID,
		&m.PayoutAmount,
		&m.MaxPayouts,
		&m.PurchasedAt,
		&m.EndsAt,
		&m.LastPayoutAt,
		&m.PayoutsReceived,
		&m.TotalEarned,
		&m.Active,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &m, nil
}
