package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type User struct {
	ID                int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Email             string
	Name              string
	EncryptedPassword string
	IsAdmin           bool
	Balance           decimal.Decimal
	TotalInvested     decimal.Decimal
	TotalEarned       decimal.Decimal
	LastWithdrawalAt  *time.Time
}

// Miner — шаблон майнинг-пакета в каталоге. Условия (цена, длительность, сумма выплаты)
// фиксируются в момент покупки, поэтому правки каталога не затрагивают уже купленные пакеты.
type Miner struct {
	ID                 int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Name               string
	Description        string
	Price              decimal.Decimal
	DurationDays       int32
	PayoutAmount       decimal.Decimal
	TotalReturnPercent decimal.Decimal
	Active             bool
}

// UserMiner — купленный пакет. PayoutAmount и MaxPayouts — снепшот условий каталога
// на момент покупки.
type UserMiner struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          int64
	MinerID         int64
	PayoutAmount    decimal.Decimal
	MaxPayouts      int32
	PurchasedAt     time.Time
	EndsAt          time.Time
	LastPayoutAt    *time.Time
	PayoutsReceived int32
	TotalEarned     decimal.Decimal
	Active          bool
}

type Withdrawal struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        int64
	Amount        decimal.Decimal
	BankName      string
	AccountNumber string
	AccountName   string
	Status        WithdrawalStatusType
	ProcessedAt   *time.Time
}

type Notification struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	Title     string
	Message   string
	Severity  SeverityType
	Read      bool
}
