package repoargs

import "github.com/fsdevblog/bookstore/internal/domain"

type CreateNotification struct {
	ID      string
	OrderID int64
	Kind    domain.NotificationKindType
	Payload []byte
}
