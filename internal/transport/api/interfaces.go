package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*domain.User, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) error
}

type CatalogServicer interface {
	Create(ctx context.Context, args service.CreateMinerArgs) (*domain.Miner, error)
	ListActive(ctx context.Context) ([]domain.Miner, error)
	ListAll(ctx context.Context) ([]domain.Miner, error)
	ToggleActive(ctx context.Context, id int64) (*domain.Miner, error)
}

type MinerServicer interface {
	Purchase(ctx context.Context, userID, minerID int64, now time.Time) (*domain.UserMiner, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.UserMiner, error)
	NextDrop(ctx context.Context, userID int64, now time.Time) (time.Time, bool, error)
}

type WithdrawalServicer interface {
	Submit(ctx context.Context, args service.SubmitWithdrawalArgs, now time.Time) (*domain.Withdrawal, error)
	Approve(ctx context.Context, id int64, now time.Time) (*domain.Withdrawal, error)
	Reject(ctx context.Context, id int64, now time.Time) (*domain.Withdrawal, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Withdrawal, error)
	GetAll(ctx context.Context) ([]domain.Withdrawal, error)
}

type NotificationServicer interface {
	GetByUserID(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID int64, id int64) error
}
