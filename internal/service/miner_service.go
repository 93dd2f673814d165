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

type MinerService struct {
	uow           uow.UOW
	userMinerRepo UserMinerRepository
}

func NewMinerService(u uow.UOW) (*MinerService, error) {
	userMinerRepo, err := uow.GetRepositoryAs[UserMinerRepository](u, uow.RepositoryName(repoargs.UserMinerRepoName))
	if err != nil {
		return nil, err
	}
	return &MinerService{
		uow:           u,
		userMinerRepo: userMinerRepo,
	}, nil
}

// Purchase покупает пакет minerID для юзера userID. Внутри одной транзакции:
// блокируется строка юзера, списывается цена (domain.ErrNotEnoughBalance при
// нехватке средств), создается купленный пакет со снепшотом условий каталога.
// Скрытый шаблон недоступен для покупки и возвращает domain.ErrRecordNotFound.
func (s *MinerService) Purchase(ctx context.Context, userID, minerID int64, now time.Time) (*domain.UserMiner, error) {
	var purchased *domain.UserMiner

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		minerRepo, minerRepoErr := uow.GetAs[MinerRepository](tx, uow.RepositoryName(repoargs.MinerRepoName))
		if minerRepoErr != nil {
			return minerRepoErr //nolint:wrapcheck
		}
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		userMinerRepo, umRepoErr := uow.GetAs[UserMinerRepository](tx, uow.RepositoryName(repoargs.UserMinerRepoName))
		if umRepoErr != nil {
			return umRepoErr //nolint:wrapcheck
		}

		miner, minerErr := minerRepo.FindByID(c, minerID)
		if minerErr != nil {
			return minerErr //nolint:wrapcheck
		}
		if !miner.Active {
			// скрытый шаблон для покупателя неотличим от несуществующего.
			return domain.ErrRecordNotFound
		}

		if _, lockErr := userRepo.LockByID(c, userID); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if purchaseErr := userRepo.ApplyPurchase(c, userID, miner.Price); purchaseErr != nil {
			return purchaseErr //nolint:wrapcheck
		}

		var createErr error
		purchased, createErr = userMinerRepo.Create(c, repoargs.CreateUserMiner{
			UserID:       userID,
			MinerID:      miner.ID,
			PayoutAmount: miner.PayoutAmount,
			MaxPayouts:   miner.DurationDays * domain.PayoutsPerDay,
			PurchasedAt:  now,
			EndsAt:       now.Add(time.Duration(miner.DurationDays) * 24 * time.Hour),
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		return createTxNotification(c, tx, repoargs.CreateNotification{
			UserID:   userID,
			Title:    "Miner Purchased",
			Message:  fmt.Sprintf("You purchased %s for %s.", miner.Name, miner.Price.StringFixed(2)),
			Severity: domain.SeveritySuccess,
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("purchasing miner %d for user %d: %w", minerID, userID, txErr)
	}
	return purchased, nil
}

// SettleDuePayouts начисляет все наступившие выплаты по пакету на момент now.
//
// Алгоритм работы:
//  1. Блокируется строка владельца, после чего пакет перечитывается — расчет идет
//     только от зафиксированного состояния.
//  2. Кол-во наступивших границ считается чистой функцией domain.DuePayouts: повторный
//     вызов с тем же now ничего не доначислит.
//  3. Начисление по пакету, кредит баланса и деактивация по достижению срока или
//     максимума выплат — одна транзакция: либо закоммитилось всё, либо ничего.
//
// Конкурентное начисление по тому же пакету отсеивается охраняемым апдейтом
// (domain.ErrStaleState) и безопасно повторяется следующим тиком обработчика.
func (s *MinerService) SettleDuePayouts(ctx context.Context, userMinerID int64, now time.Time) (*domain.UserMiner, error) {
	var settled *domain.UserMiner

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userMinerRepo, umRepoErr := uow.GetAs[UserMinerRepository](tx, uow.RepositoryName(repoargs.UserMinerRepoName))
		if umRepoErr != nil {
			return umRepoErr //nolint:wrapcheck
		}
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		miner, minerErr := userMinerRepo.FindByID(c, userMinerID)
		if minerErr != nil {
			return minerErr //nolint:wrapcheck
		}
		if !miner.Active {
			settled = miner
			return nil
		}

		if _, lockErr := userRepo.LockByID(c, miner.UserID); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		// перечитываем после взятия блокировки: параллельный тик мог успеть начислить.
		miner, minerErr = userMinerRepo.FindByID(c, userMinerID)
		if minerErr != nil {
			return minerErr //nolint:wrapcheck
		}
		if !miner.Active {
			settled = miner
			return nil
		}

		due, lastBoundary := miner.DuePayouts(now)
		if due == 0 {
			if miner.Expired(now) {
				if deactivateErr := userMinerRepo.Deactivate(c, miner.ID); deactivateErr != nil {
					return deactivateErr //nolint:wrapcheck
				}
				miner.Active = false
			}
			settled = miner
			return nil
		}

		accrued := miner.PayoutAmount.Mul(decimal.NewFromInt(int64(due)))

		next := *miner
		next.PayoutsReceived = miner.PayoutsReceived + due
		next.LastPayoutAt = &lastBoundary
		next.Active = !next.Expired(now)

		updated, accrualErr := userMinerRepo.ApplyAccrual(c, repoargs.ApplyAccrual{
			ID:              miner.ID,
			ExpectedPayouts: miner.PayoutsReceived,
			NewPayouts:      next.PayoutsReceived,
			Accrued:         accrued,
			LastPayoutAt:    lastBoundary,
			Active:          next.Active,
		})
		if accrualErr != nil {
			return accrualErr //nolint:wrapcheck
		}

		if payoutErr := userRepo.ApplyPayout(c, miner.UserID, accrued); payoutErr != nil {
			return payoutErr //nolint:wrapcheck
		}

		// одно сводное уведомление на все начисленные границы.
		notifErr := createTxNotification(c, tx, repoargs.CreateNotification{
			UserID:   miner.UserID,
			Title:    "Mining Payout",
			Message:  fmt.Sprintf("You earned %s from your miner (%d payouts).", accrued.StringFixed(2), due),
			Severity: domain.SeveritySuccess,
		})
		if notifErr != nil {
			return notifErr
		}

		settled = updated
		return nil
	})

	if txErr != nil {
		return nil, fmt.Errorf("settling payouts for user miner %d: %w", userMinerID, txErr)
	}
	return settled, nil
}

// DueUserMiners возвращает id пакетов с наступившими выплатами. Используется фоновым
// обработчиком начислений.
func (s *MinerService) DueUserMiners(ctx context.Context, now time.Time, limit uint) ([]int64, error) {
	ids, err := s.userMinerRepo.GetDue(ctx, now, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return ids, nil
}

// GetByUserID возвращает все пакеты юзера, по дате покупки по убыванию.
func (s *MinerService) GetByUserID(ctx context.Context, userID int64) ([]domain.UserMiner, error) {
	miners, err := s.userMinerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return miners, nil
}

// NextDrop возвращает ближайшее время выплаты среди активных пакетов юзера.
// Второе значение false, если активных пакетов нет.
func (s *MinerService) NextDrop(ctx context.Context, userID int64, now time.Time) (time.Time, bool, error) {
	miners, err := s.userMinerRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return time.Time{}, false, err //nolint:wrapcheck
	}
	soonest, ok := domain.SoonestPayoutAt(miners, now)
	return soonest, ok, nil
}

// createTxNotification создает уведомление внутри текущей uow-транзакции. Выплатные
// уведомления едут в одной транзакции с начислением, чтобы не потеряться молча.
func createTxNotification(ctx context.Context, tx uow.TX, args repoargs.CreateNotification) error {
	notificationRepo, repoErr := uow.GetAs[NotificationRepository](
		tx,
		uow.RepositoryName(repoargs.NotificationRepoName),
	)
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}
	if _, err := notificationRepo.Create(ctx, args); err != nil {
		return err //nolint:wrapcheck
	}
	return nil
}
