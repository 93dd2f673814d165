package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinWithdrawalAmount — минимальная сумма заявки на вывод.
var MinWithdrawalAmount = decimal.NewFromInt(1000)

// WithdrawalEligibility проверяет возраст аккаунта. Возвращает признак доступности
// вывода и оставшееся время ожидания (0, если вывод уже доступен). Гейт одноразовый —
// от даты создания аккаунта, кулдауна между последовательными выводами нет.
func WithdrawalEligibility(createdAt, now time.Time) (bool, time.Duration) {
	age := now.Sub(createdAt)
	if age >= WithdrawalMinAccountAge {
		return true, 0
	}
	return false, WithdrawalMinAccountAge - age
}
