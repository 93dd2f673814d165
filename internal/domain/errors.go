package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrNotEnoughBalance = errors.New("not enough balance")
	ErrValidation       = errors.New("validation error")
	ErrStaleState       = errors.New("stale state conflict")
)

// IneligibleWithdrawalError возвращается при попытке вывода средств до истечения
// минимального возраста аккаунта. Remaining — сколько осталось ждать.
type IneligibleWithdrawalError struct {
	Remaining time.Duration
}

func NewIneligibleWithdrawalError(remaining time.Duration) error {
	return &IneligibleWithdrawalError{Remaining: remaining}
}

func (e *IneligibleWithdrawalError) Error() string {
	return fmt.Sprintf("account too young for withdrawal, %s remaining", e.Remaining)
}
