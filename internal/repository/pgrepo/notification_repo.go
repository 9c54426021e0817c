package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type NotificationRepository struct {
	db uow.DBTX
}

func NewNotificationRepository(db uow.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create кладет уведомление в outbox. Вызывается внутри транзакции, меняющей заказ.
func (n *NotificationRepository) Create(ctx context.Context, args repoargs.CreateNotification) error {
	_, err := n.db.Exec(ctx,
		`INSERT INTO notifications (id, order_id, kind, payload) VALUES ($1, $2, $3, $4)`,
		args.ID, args.OrderID, string(args.Kind), args.Payload,
	)
	if err != nil {
		return convertErr(err, "creating notification %s for order %d", args.ID, args.OrderID)
	}
	return nil
}

// ClaimUnsent забирает до limit неотправленных уведомлений, у которых меньше maxAttempts неудачных попыток,
// в порядке создания, и закрепляет их за вызывающим на время lease. Уведомления, закрепленные за другим
// обработчиком, не выдаются, пока не истечет их срок. Выборка и закрепление выполняются одним запросом.
func (n *NotificationRepository) ClaimUnsent(
	ctx context.Context,
	limit, maxAttempts int32,
	lease time.Duration,
) ([]domain.Notification, error) {
	rows, err := n.db.Query(ctx, `
		WITH batch AS (
			SELECT id
			FROM notifications
			WHERE sent_at IS NULL
			  AND attempts < $2
			  AND (claimed_until IS NULL OR claimed_until < NOW())
			ORDER BY created_at
			LIMIT $1 FOR UPDATE SKIP LOCKED
		), claimed AS (
			UPDATE notifications nt
			SET claimed_until = NOW() + $3::bigint * INTERVAL '1 millisecond'
			FROM batch
			WHERE nt.id = batch.id
			RETURNING nt.id, nt.created_at, nt.order_id, nt.kind, nt.payload, nt.attempts
		)
		SELECT id::text, created_at, order_id, kind, payload, attempts
		FROM claimed
		ORDER BY created_at`,
		limit, maxAttempts, lease.Milliseconds(),
	)
	if err != nil {
		return nil, convertErr(err, "claiming unsent notifications")
	}
	notifications, collectErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Notification, error) {
		var nt domain.Notification
		var kind string
		scanErr := row.Scan(&nt.ID, &nt.CreatedAt, &nt.OrderID, &kind, &nt.Payload, &nt.Attempts)
		nt.Kind = domain.NotificationKindType(kind)
		return nt, scanErr
	})
	if collectErr != nil {
		return nil, convertErr(collectErr, "scanning unsent notifications")
	}
	return notifications, nil
}

func (n *NotificationRepository) MarkSent(ctx context.Context, ids []string) error {
	if _, err := n.db.Exec(ctx,
		`UPDATE notifications SET sent_at = NOW() WHERE id = ANY($1::uuid[]) AND sent_at IS NULL`,
		ids,
	); err != nil {
		return convertErr(err, "marking notifications %v as sent", ids)
	}
	return nil
}

func (n *NotificationRepository) IncrementAttempts(ctx context.Context, ids []string) error {
	if _, err := n.db.Exec(ctx,
		`UPDATE notifications SET attempts = attempts + 1, claimed_until = NULL WHERE id = ANY($1::uuid[])`,
		ids,
	); err != nil {
		return convertErr(err, "incrementing attempts of notifications %v", ids)
	}
	return nil
}
