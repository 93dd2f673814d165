package repoargs

import "github.com/shopspring/decimal"

type CreateWithdrawal struct {
	UserID        int64
	Amount        decimal.Decimal
	BankName      string
	AccountNumber string
	AccountName   string
}
