package pgrepo

import (
	"context"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/repository/repoargs"
	"github.com/fsdevblog/minegrid/pkg/uow"
)

const notificationColumns = `id, created_at, user_id, title, message, severity, read`

type NotificationRepository struct {
	db uow.DBTX
}

func NewNotificationRepository(db uow.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (n *NotificationRepository) Create(
	ctx context.Context,
	args repoargs.CreateNotification,
) (*domain.Notification, error) {
	row := n.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, severity)
		VALUES ($1, $2, $3, $4)
		RETURNING `+notificationColumns,
		args.UserID, args.Title, args.Message, args.Severity)

	notification, err := scanNotification(row)
	if err != nil {
		return nil, convertErr(err, "creating notification")
	}
	return notification, nil
}

func (n *NotificationRepository) GetByUserID(ctx context.Context, userID int64, limit uint) ([]domain.Notification, error) {
	rows, err := n.db.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, convertErr(err, "listing notifications for user %d", userID)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		notification, scanErr := scanNotification(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing notifications for user %d", userID)
		}
		notifications = append(notifications, *notification)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing notifications for user %d", userID)
	}
	return notifications, nil
}

func (n *NotificationRepository) MarkRead(ctx context.Context, userID int64, id int64) error {
	tag, err := n.db.Exec(ctx, `
		UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return convertErr(err, "marking notification %d read", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "marking notification %d read", id)
	}
	return nil
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.CreatedAt,
		&n.UserID,
		&n.Title,
		&n.Message,
		&n.Severity,
		&n.Read,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &n, nil
}
