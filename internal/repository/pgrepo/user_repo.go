package pgrepo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

const userColumns = `id, created_at, updated_at, email, name, encrypted_password, is_admin,
	balance, total_invested, total_earned, last_withdrawal_at`

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser создает юзера в базе данных. В случае конфликта email возвращает ошибку
// domain.ErrDuplicateKey, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		INSERT INTO users (email, name, encrypted_password)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		args.Email, args.Name, args.Password)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return user, nil
}

// FindByEmail ищет юзера по email. Возвращает ошибку domain.ErrRecordNotFound если запись
// не найдена, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email %s", email)
	}
	return user, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// LockByID читает юзера с блокировкой строки (SELECT ... FOR UPDATE). Вызывается первым
// в каждой транзакции, мутирующей баланс — так записи по одному аккаунту сериализуются.
func (u *UserRepository) LockByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "locking user by id %d", id)
	}
	return user, nil
}

func (u *UserRepository) UpdateName(ctx context.Context, id int64, name string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		UPDATE users SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, name)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating user %d name", id)
	}
	return user, nil
}

// ApplyPurchase списывает цену пакета с баланса и увеличивает total_invested.
// Апдейт охраняется условием balance >= price: при нехватке средств вернется
// domain.ErrNotEnoughBalance. Предполагается, что строка юзера уже заблокирована
// через LockByID в той же транзакции.
func (u *UserRepository) ApplyPurchase(ctx context.Context, id int64, price decimal.Decimal) error {
	tag, err := u.db.Exec(ctx, `
		UPDATE users
		SET balance = balance - $2, total_invested = total_invested + $2, updated_at = now()
		WHERE id = $1 AND balance >= $2`,
		id, price)
	if err != nil {
		return convertErr(err, "applying purchase for user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotEnoughBalance
	}
	return nil
}

// ApplyPayout зачисляет выплату на баланс и увеличивает total_earned. Выплаты — долг
// системы перед юзером, операция безусловная.
func (u *UserRepository) ApplyPayout(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := u.db.Exec(ctx, `
		UPDATE users
		SET balance = balance + $2, total_earned = total_earned + $2, updated_at = now()
		WHERE id = $1`,
		id, amount)
	if err != nil {
		return convertErr(err, "applying payout for user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "applying payout for user %d", id)
	}
	return nil
}

// ApplyWithdrawalHold резервирует сумму вывода: списывает её с баланса в момент подачи
// заявки. При нехватке средств возвращает domain.ErrNotEnoughBalance.
func (u *UserRepository) ApplyWithdrawalHold(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := u.db.Exec(ctx, `
		UPDATE users
		SET balance = balance - $2, updated_at = now()
		WHERE id = $1 AND balance >= $2`,
		id, amount)
	if err != nil {
		return convertErr(err, "applying withdrawal hold for user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotEnoughBalance
	}
	return nil
}

// RefundWithdrawal возвращает зарезервированную сумму на баланс (отклоненная заявка).
func (u *UserRepository) RefundWithdrawal(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := u.db.Exec(ctx, `
		UPDATE users
		SET balance = balance + $2, updated_at = now()
		WHERE id = $1`,
		id, amount)
	if err != nil {
		return convertErr(err, "refunding withdrawal for user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "refunding withdrawal for user %d", id)
	}
	return nil
}

// ApplyDeposit зачисляет пополнение от платежного шлюза. total_earned не трогаем —
// пополнение не является доходом от пакетов.
func (u *UserRepository) ApplyDeposit(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := u.db.Exec(ctx, `
		UPDATE users
		SET balance = balance + $2, updated_at = now()
		WHERE id = $1`,
		id, amount)
	if err != nil {
		return convertErr(err, "applying deposit for user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "applying deposit for user %d", id)
	}
	return nil
}

func (u *UserRepository) SetLastWithdrawalAt(ctx context.Context, id int64, t time.Time) error {
	_, err := u.db.Exec(ctx, `
		UPDATE users SET last_withdrawal_at = $2, updated_at = now() WHERE id = $1`,
		id, t)
	return convertErr(err, "setting last withdrawal time for user %d", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Email,
		&user.Name,
		&user.EncryptedPassword,
		&user.IsAdmin,
		&user.Balance,
		&user.TotalInvested,
		&user.TotalEarned,
		&user.LastWithdrawalAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
