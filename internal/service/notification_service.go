package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/pkg/uow"
)

// DefaultMaxDeliveryAttempts после стольких неудачных отправок уведомление больше не выбирается.
const DefaultMaxDeliveryAttempts int32 = 10

// DefaultClaimLease столько выданное уведомление недоступно другим обработчикам. Должно превышать время
// публикации пачки и фиксации результата.
const DefaultClaimLease = 2 * time.Minute

type NotificationService struct {
	uow         uow.UOW
	notifyRepo  NotificationRepository
	maxAttempts int32
}

func NewNotificationService(u uow.UOW, maxAttempts int32) (*NotificationService, error) {
	notifyRepo, err := uow.GetRepositoryAs[NotificationRepository](u, uow.RepositoryName(repoargs.NotificationRepoName))
	if err != nil {
		return nil, err
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxDeliveryAttempts
	}
	return &NotificationService{
		uow:         u,
		notifyRepo:  notifyRepo,
		maxAttempts: maxAttempts,
	}, nil
}

// Unsent забирает не более limit неотправленных уведомлений, начиная с самых старых. Выданные уведомления
// закрепляются за вызывающим на DefaultClaimLease, неудачная отправка (ReportDelivery) снимает закрепление.
func (n *NotificationService) Unsent(ctx context.Context, limit uint) ([]domain.Notification, error) {
	notifications, err := n.notifyRepo.ClaimUnsent(ctx, int32(limit), n.maxAttempts, DefaultClaimLease) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("getting unsent notifications: %w", err)
	}
	return notifications, nil
}

type DeliveryResult struct {
	Error          error
	NotificationID string
}

// ReportDelivery фиксирует результат отправки пачки уведомлений.
//
// Алгоритм работы:
//  1. Разбивает результаты на успешные и ошибочные.
//  2. В одной транзакции помечает успешные как отправленные, а ошибочным увеличивает счетчик попыток.
func (n *NotificationService) ReportDelivery(ctx context.Context, results []DeliveryResult) error {
	sentIDs, failedIDs := splitDeliveryResults(results)
	if len(sentIDs) == 0 && len(failedIDs) == 0 {
		return nil
	}

	txErr := n.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, repoErr := txRepo[NotificationRepository](tx, repoargs.NotificationRepoName)
		if repoErr != nil {
			return repoErr
		}
		if len(sentIDs) > 0 {
			if err := repo.MarkSent(c, sentIDs); err != nil {
				return err //nolint:wrapcheck
			}
		}
		if len(failedIDs) > 0 {
			if err := repo.IncrementAttempts(c, failedIDs); err != nil {
				return err //nolint:wrapcheck
			}
		}
		return nil
	})

	if txErr != nil {
		return fmt.Errorf("reporting notifications delivery: %w", wrapTxErr(txErr))
	}
	return nil
}

func splitDeliveryResults(results []DeliveryResult) ([]string, []string) {
	var sent = make([]string, 0, len(results))
	var failed = make([]string, 0, len(results))
	for _, r := range results {
		if r.Error == nil {
			sent = append(sent, r.NotificationID)
		} else {
			failed = append(failed, r.NotificationID)
		}
	}
	return sent, failed
}
