package repoargs

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateUserMiner struct {
	UserID       int64
	MinerID      int64
	PayoutAmount decimal.Decimal
	MaxPayouts   int32
	PurchasedAt  time.Time
	EndsAt       time.Time
}

// ApplyAccrual — аргументы начисления выплат по пакету. ExpectedPayouts — значение
// payouts_received, прочитанное перед расчетом: апдейт охраняется этим значением
// (optimistic lock), конкурентное начисление по тому же пакету не задвоит выплаты.
type ApplyAccrual struct {
	ID              int64
	ExpectedPayouts int32
	NewPayouts      int32
	Accrued         decimal.Decimal
	LastPayoutAt    time.Time
	Active          bool
}
