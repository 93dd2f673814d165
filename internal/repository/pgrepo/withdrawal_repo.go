package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

const withdrawalColumns = `id, created_at, updated_at, user_id, amount, bank_name,
	account_number, account_name, status, processed_at`

type WithdrawalRepository struct {
	db uow.DBTX
}

func NewWithdrawalRepository(db uow.DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (w *WithdrawalRepository) Create(ctx context.Context, args repoargs.CreateWithdrawal) (*domain.Withdrawal, error) {
	row := w.db.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, bank_name, account_number, account_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+withdrawalColumns,
		args.UserID, args.Amount, args.BankName, args.AccountNumber, args.AccountName)

	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "creating withdrawal")
	}
	return withdrawal, nil
}

func (w *WithdrawalRepository) FindByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := w.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "finding withdrawal by id %d", id)
	}
	return withdrawal, nil
}

// GetByUserID возвращает заявки юзера, отсортированные по дате создания по убыванию.
func (w *WithdrawalRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	return w.list(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID)
}

// GetAll возвращает все заявки (админка), pending первыми, затем по дате создания.
func (w *WithdrawalRepository) GetAll(ctx context.Context) ([]domain.Withdrawal, error) {
	return w.list(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		ORDER BY status = 'pending' DESC, created_at DESC`)
}

// Transition переводит заявку из pending в терминальный статус. Апдейт охраняется
// условием status = 'pending': заявка переходит в терминальное состояние ровно один
// раз, повторная или конкурентная попытка получит domain.ErrStaleState.
func (w *WithdrawalRepository) Transition(
	ctx context.Context,
	id int64,
	status domain.WithdrawalStatusType,
	processedAt time.Time,
) (*domain.Withdrawal, error) {
	row := w.db.QueryRow(ctx, `
		UPDATE withdrawals
		SET status = $2, processed_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+withdrawalColumns,
		id, status, processedAt)

	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		converted := convertErr(err, "transitioning withdrawal %d to %s", id, status)
		if isNotFound(converted) {
			return nil, domain.ErrStaleState
		}
		return nil, converted
	}
	return withdrawal, nil
}

func (w *WithdrawalRepository) list(ctx context.Context, query string, args ...any) ([]domain.Withdrawal, error) {
	rows, err := w.db.Query(ctx, query, args...)
	if err != nil {
		return nil, convertErr(err, "listing withdrawals")
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		withdrawal, scanErr := scanWithdrawal(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing withdrawals")
		}
		withdrawals = append(withdrawals, *withdrawal)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing withdrawals")
	}
	return withdrawals, nil
}

func scanWithdrawal(row rowScanner) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(
		&w.ID,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.UserID,
		&w.Amount,
		&w.BankName,
		&w.AccountNumber,
		&w.AccountName,
		&w.Status,
		&w.ProcessedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &w, nil
}
