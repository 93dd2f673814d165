package accrual

import (
	"math/rand/v2"
	"time"
)

// jitter возвращает длительность, рассыпавшуюся относительно value на случайный процент
// в пределах [1-minPercent, 1+maxPercent]. Например, при minPercent=0.1, maxPercent=0.1
// получим диапазон [0.9*value, 1.1*value].
//
// minPercent и maxPercent должны быть >= 0 (0.1 = 10%). Если указано иное, значение
// выставится в 0.15.
func jitter(value time.Duration, minPercent, maxPercent float64) time.Duration {
	if minPercent < 0 || maxPercent < 0 {
		minPercent = 0.15
		maxPercent = 0.15
	}
	factor := 1 - minPercent + rand.Float64()*(minPercent+maxPercent) //nolint:gosec
	return time.Duration(float64(value) * factor)
}
