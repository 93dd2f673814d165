package accrual

import "errors"

// ErrNoDuePackages сигнализирует, что на текущем тике начислять нечего.
var ErrNoDuePackages = errors.New("no due packages")
