package domain

import (
	"time"
)

const (
	// PayoutInterval — интервал между выплатами. Каддэнс фиксированный: 2 выплаты в сутки.
	PayoutInterval = 12 * time.Hour

	// PayoutsPerDay — кол-во выплат в сутки.
	PayoutsPerDay = 2

	// WithdrawalMinAccountAge — минимальный возраст аккаунта для подачи заявки на вывод.
	WithdrawalMinAccountAge = 48 * time.Hour
)

// NextPayoutAt возвращает время следующей выплаты. Первая выплата происходит через
// PayoutInterval после покупки, а не в момент покупки.
func (m *UserMiner) NextPayoutAt() time.Time {
	if m.LastPayoutAt != nil {
		return m.LastPayoutAt.Add(PayoutInterval)
	}
	return m.PurchasedAt.Add(PayoutInterval)
}

// DuePayouts считает кол-во наступивших, но еще не начисленных выплат на момент now,
// и время последней наступившей границы. Расчет — чистая функция от сохраненного
// состояния пакета и now: повторный вызов с тем же now после применения результата
// вернет 0 (идемпотентность начисления).
//
// Границы выплат считаются до min(now, EndsAt) включительно, поэтому пропущенные
// циклы (например, процесс был выключен) доначисляются при следующей оценке.
// Результат ограничен сверху так, что PayoutsReceived + count <= MaxPayouts.
func (m *UserMiner) DuePayouts(now time.Time) (int32, time.Time) {
	if m.PayoutsReceived >= m.MaxPayouts {
		return 0, time.Time{}
	}

	horizon := now
	if m.EndsAt.Before(horizon) {
		horizon = m.EndsAt
	}

	next := m.NextPayoutAt()
	if next.After(horizon) {
		return 0, time.Time{}
	}

	count := int32(horizon.Sub(next)/PayoutInterval) + 1 //nolint:gosec
	if remaining := m.MaxPayouts - m.PayoutsReceived; count > remaining {
		count = remaining
	}

	lastBoundary := next.Add(time.Duration(count-1) * PayoutInterval)
	return count, lastBoundary
}

// Expired сообщает, должен ли пакет быть деактивирован на момент now: срок вышел либо
// достигнут максимум выплат. Проверяется после доначисления (см. DuePayouts), иначе
// последние наступившие границы были бы потеряны.
func (m *UserMiner) Expired(now time.Time) bool {
	return !now.Before(m.EndsAt) || m.PayoutsReceived >= m.MaxPayouts
}

// Progress возвращает долю полученных выплат в диапазоне [0, 1]. Значение чисто
// презентационное и не участвует в расчете начислений.
func (m *UserMiner) Progress() float64 {
	if m.MaxPayouts <= 0 {
		return 0
	}
	p := float64(m.PayoutsReceived) / float64(m.MaxPayouts)
	if p > 1 {
		return 1
	}
	return p
}

// TimeUntilPayout возвращает время до следующей выплаты. Имеет смысл только для
// активного не истекшего пакета; для наступившей границы возвращает 0.
func (m *UserMiner) TimeUntilPayout(now time.Time) time.Duration {
	d := m.NextPayoutAt().Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// SoonestPayoutAt возвращает минимальное время следующей выплаты среди активных
// не истекших пакетов. Второе значение false, если таких пакетов нет.
func SoonestPayoutAt(miners []UserMiner, now time.Time) (time.Time, bool) {
	var soonest time.Time
	var found bool
	for i := range miners {
		m := &miners[i]
		if !m.Active || m.Expired(now) {
			continue
		}
		next := m.NextPayoutAt()
		if !found || next.Before(soonest) {
			soonest = next
			found = true
		}
	}
	return soonest, found
}

