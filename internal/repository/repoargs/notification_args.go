package repoargs

import "github.com/fsdevblog/minegrid/internal/domain"

type CreateNotification struct {
	UserID   int64
	Title    string
	Message  string
	Severity domain.SeverityType
}
