package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	LockByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*domain.User, error)
	ApplyPurchase(ctx context.Context, id int64, price decimal.Decimal) error
	ApplyPayout(ctx context.Context, id int64, amount decimal.Decimal) error
	ApplyWithdrawalHold(ctx context.Context, id int64, amount decimal.Decimal) error
	RefundWithdrawal(ctx context.Context, id int64, amount decimal.Decimal) error
	ApplyDeposit(ctx context.Context, id int64, amount decimal.Decimal) error
	SetLastWithdrawalAt(ctx context.Context, id int64, t time.Time) error
}

type MinerRepository interface {
	Create(ctx context.Context, args repoargs.CreateMiner) (*domain.Miner, error)
	FindByID(ctx context.Context, id int64) (*domain.Miner, error)
	ListActive(ctx context.Context) ([]domain.Miner, error)
	ListAll(ctx context.Context) ([]domain.Miner, error)
	ToggleActive(ctx context.Context, id int64) (*domain.Miner, error)
}

type UserMinerRepository interface {
	Create(ctx context.Context, args repoargs.CreateUserMiner) (*domain.UserMiner, error)
	FindByID(ctx context.Context, id int64) (*domain.UserMiner, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.UserMiner, error)
	GetActiveByUserID(ctx context.Context, userID int64) ([]domain.UserMiner, error)
	GetDue(ctx context.Context, now time.Time, limit uint) ([]int64, error)
	ApplyAccrual(ctx context.Context, args repoargs.ApplyAccrual) (*domain.UserMiner, error)
	Deactivate(ctx context.Context, id int64) error
}

type WithdrawalRepository interface {
	Create(ctx context.Context, args repoargs.CreateWithdrawal) (*domain.Withdrawal, error)
	FindByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
	GetAll(ctx context.Context) ([]domain.Withdrawal, error)
	Transition(
		ctx context.Context,
		id int64,
		status domain.WithdrawalStatusType,
		processedAt time.Time,
	) (*domain.Withdrawal, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, args repoargs.CreateNotification) (*domain.Notification, error)
	GetByUserID(ctx context.Context, userID int64, limit uint) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID int64, id int64) error
}
