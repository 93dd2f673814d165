package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

type WithdrawalService struct {
	uow            uow.UOW
	withdrawalRepo WithdrawalRepository
}

func NewWithdrawalService(u uow.UOW) (*WithdrawalService, error) {
	withdrawalRepo, err := uow.GetRepositoryAs[WithdrawalRepository](u, uow.RepositoryName(repoargs.WithdrawalRepoName))
	if err != nil {
		return nil, err
	}
	return &WithdrawalService{
		uow:            u,
		withdrawalRepo: withdrawalRepo,
	}, nil
}

type SubmitWithdrawalArgs struct {
	UserID        int64
	Amount        decimal.Decimal
	BankName      string
	AccountNumber string
	AccountName   string
}

// Submit создает заявку на вывод средств.
//
// Порядок проверок:
//  1. Возраст аккаунта: моложе 48 часов — *domain.IneligibleWithdrawalError.
//  2. Минимальная сумма заявки — domain.ErrValidation.
//  3. Резерв: сумма списывается с баланса сразу при подаче (эскроу), при нехватке
//     средств — domain.ErrNotEnoughBalance. Так несколько параллельных заявок не
//     могут суммарно превысить баланс.
//
// Резерв и создание заявки — одна транзакция под блокировкой строки юзера.
func (s *WithdrawalService) Submit(
	ctx context.Context,
	args SubmitWithdrawalArgs,
	now time.Time,
) (*domain.Withdrawal, error) {
	if args.Amount.LessThan(domain.MinWithdrawalAmount) {
		return nil, fmt.Errorf(
			"%w: minimum withdrawal amount is %s",
			domain.ErrValidation,
			domain.MinWithdrawalAmount.StringFixed(2),
		)
	}

	var withdrawal *domain.Withdrawal

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		withdrawalRepo, wRepoErr := uow.GetAs[WithdrawalRepository](tx, uow.RepositoryName(repoargs.WithdrawalRepoName))
		if wRepoErr != nil {
			return wRepoErr //nolint:wrapcheck
		}

		user, lockErr := userRepo.LockByID(c, args.UserID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}

		if eligible, remaining := domain.WithdrawalEligibility(user.CreatedAt, now); !eligible {
			return domain.NewIneligibleWithdrawalError(remaining)
		}

		if holdErr := userRepo.ApplyWithdrawalHold(c, user.ID, args.Amount); holdErr != nil {
			return holdErr //nolint:wrapcheck
		}

		var createErr error
		withdrawal, createErr = withdrawalRepo.Create(c, repoargs.CreateWithdrawal{
			UserID:        args.UserID,
			Amount:        args.Amount,
			BankName:      args.BankName,
			AccountNumber: args.AccountNumber,
			AccountName:   args.AccountName,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		return createTxNotification(c, tx, repoargs.CreateNotification{
			UserID:   args.UserID,
			Title:    "Withdrawal Request Submitted",
			Message:  fmt.Sprintf("Your withdrawal request of %s has been submitted and is being processed.", args.Amount.StringFixed(2)),
			Severity: domain.SeverityInfo,
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("submitting withdrawal for user %d: %w", args.UserID, txErr)
	}
	return withdrawal, nil
}

// Approve переводит заявку pending -> completed. Сумма уже зарезервирована при подаче,
// дополнительных движений по балансу нет. Фиксируется время последнего вывода юзера.
// Повторная попытка обработать ту же заявку получит domain.ErrStaleState.
func (s *WithdrawalService) Approve(ctx context.Context, id int64, now time.Time) (*domain.Withdrawal, error) {
	var withdrawal *domain.Withdrawal

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, withdrawalRepo, reposErr := s.txRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		current, findErr := withdrawalRepo.FindByID(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		if _, lockErr := userRepo.LockByID(c, current.UserID); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}

		var transitionErr error
		withdrawal, transitionErr = withdrawalRepo.Transition(c, id, domain.WithdrawalStatusCompleted, now)
		if transitionErr != nil {
			return transitionErr //nolint:wrapcheck
		}

		if setErr := userRepo.SetLastWithdrawalAt(c, current.UserID, now); setErr != nil {
			return setErr //nolint:wrapcheck
		}

		return createTxNotification(c, tx, repoargs.CreateNotification{
			UserID:   current.UserID,
			Title:    "Withdrawal Approved",
			Message:  fmt.Sprintf("Your withdrawal request of %s has been approved and processed.", current.Amount.StringFixed(2)),
			Severity: domain.SeveritySuccess,
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("approving withdrawal %d: %w", id, txErr)
	}
	return withdrawal, nil
}

// Reject переводит заявку pending -> rejected и возвращает зарезервированную сумму
// на баланс. Возврат и смена статуса — одна транзакция.
func (s *WithdrawalService) Reject(ctx context.Context, id int64, now time.Time) (*domain.Withdrawal, error) {
	var withdrawal *domain.Withdrawal

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, withdrawalRepo, reposErr := s.txRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		current, findErr := withdrawalRepo.FindByID(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		if _, lockErr := userRepo.LockByID(c, current.UserID); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}

		var transitionErr error
		withdrawal, transitionErr = withdrawalRepo.Transition(c, id, domain.WithdrawalStatusRejected, now)
		if transitionErr != nil {
			return transitionErr //nolint:wrapcheck
		}

		if refundErr := userRepo.RefundWithdrawal(c, current.UserID, current.Amount); refundErr != nil {
			return refundErr //nolint:wrapcheck
		}

		return createTxNotification(c, tx, repoargs.CreateNotification{
			UserID:   current.UserID,
			Title:    "Withdrawal Rejected",
			Message:  fmt.Sprintf("Your withdrawal request of %s has been rejected, the amount was returned to your balance.", current.Amount.StringFixed(2)),
			Severity: domain.SeverityError,
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("rejecting withdrawal %d: %w", id, txErr)
	}
	return withdrawal, nil
}

// GetByUserID возвращает заявки юзера, по дате создания по убыванию.
func (s *WithdrawalService) GetByUserID(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return withdrawals, nil
}

// GetAll возвращает все заявки для админки, pending первыми.
func (s *WithdrawalService) GetAll(ctx context.Context) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return withdrawals, nil
}

func (s *WithdrawalService) txRepos(tx uow.TX) (UserRepository, WithdrawalRepository, error) {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, nil, userRepoErr //nolint:wrapcheck
	}
	withdrawalRepo, wRepoErr := uow.GetAs[WithdrawalRepository](tx, uow.RepositoryName(repoargs.WithdrawalRepoName))
	if wRepoErr != nil {
		return nil, nil, wRepoErr //nolint:wrapcheck
	}
	return userRepo, withdrawalRepo, nil
}
