package repoargs

import "github.com/shopspring/decimal"

type CreateMiner struct {
	Name               string
	Description        string
	Price              decimal.Decimal
	DurationDays       int32
	PayoutAmount       decimal.Decimal
	TotalReturnPercent decimal.Decimal
}
