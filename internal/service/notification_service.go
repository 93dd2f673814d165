package service

import (
	"context"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

const notificationsLimit = 50

// NotificationService отдает ленту уведомлений юзера. Сами уведомления создаются
// сервисами покупок/начислений/выводов внутри их транзакций, чтобы не теряться молча.
type NotificationService struct {
	notificationRepo NotificationRepository
}

func NewNotificationService(u uow.UOW) (*NotificationService, error) {
	notificationRepo, err := uow.GetRepositoryAs[NotificationRepository](
		u,
		uow.RepositoryName(repoargs.NotificationRepoName),
	)
	if err != nil {
		return nil, err
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
	}, nil
}

// GetByUserID возвращает последние уведомления юзера.
func (n *NotificationService) GetByUserID(ctx context.Context, userID int64) ([]domain.Notification, error) {
	notifications, err := n.notificationRepo.GetByUserID(ctx, userID, notificationsLimit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return notifications, nil
}

// MarkRead помечает уведомление прочитанным. Чужое уведомление неотличимо от
// несуществующего (domain.ErrRecordNotFound).
func (n *NotificationService) MarkRead(ctx context.Context, userID int64, id int64) error {
	return n.notificationRepo.MarkRead(ctx, userID, id) //nolint:wrapcheck
}
