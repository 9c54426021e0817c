// Package notify доставляет уведомления из outbox во внешний приемник.
package notify

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	defaultServiceTimeout          = 3 * time.Second
	defaultPublishTimeout          = 10 * time.Second
	defaultInterval                = time.Second
	defaultLimitPerIteration  uint = 100
	defaultNotifyWorkers      uint = 4
	maxErrorPause                  = 30 * time.Second
)

// Processor периодически выбирает неотправленные уведомления и публикует их через Publisher.
type Processor struct {
	publisher         Publisher
	svs               Servicer
	l                 *logrus.Entry
	interval          time.Duration
	limitPerIteration uint
	workers           uint
}

// New создает новый экземпляр процессора уведомлений.
func New(svs Servicer, publisher Publisher, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "notify",
		"module":    "processor",
	})

	return &Processor{
		publisher:         publisher,
		svs:               svs,
		l:                 loggerEntry,
		interval:          defaultInterval,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultNotifyWorkers,
	}
}

// SetLimitPerIteration устанавливает кол-во уведомлений, обрабатываемых в одной итерации.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	if limit > 0 {
		p.limitPerIteration = limit
	}
	return p
}

// SetWorkers устанавливает кол-во воркеров, публикующих уведомления.
func (p *Processor) SetWorkers(workers uint) *Processor {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

// SetInterval устанавливает паузу между опросами пустого outbox.
func (p *Processor) SetInterval(interval time.Duration) *Processor {
	if interval > 0 {
		p.interval = interval
	}
	return p
}

// Run запускает доставку уведомлений в бесконечном цикле до отмены контекста.
//
// Алгоритм работы:
//  1. В каждой итерации запрашивает через сервисный слой неотправленные уведомления (не более
//     SetLimitPerIteration).
//  2. Раздает их N воркерам (SetWorkers), каждый публикует уведомление через Publisher.
//  3. Результаты публикации отправляются через сервисный слой одной пачкой.
//
// Если уведомлений нет, ждет SetInterval. После ошибок пауза растет экспоненциально с небольшим разбросом.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"limitPerIteration": p.limitPerIteration,
		"workers":           p.workers,
		"interval":          p.interval.String(),
	}).Info("Starting")

	var failures uint
	for {
		var pause time.Duration
		err := p.process(ctx)
		switch {
		case err == nil:
			failures = 0
		case errors.Is(err, ErrNoNotifications):
			failures = 0
			pause = p.interval
		default:
			failures++
			pause = backoff(p.interval, failures)
			p.l.WithError(err).WithField("pause", pause.String()).Error("process error")
		}

		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-time.After(pause):
		}
	}
}

// process выполняет один цикл доставки. Возвращает ErrNoNotifications если отправлять нечего.
func (p *Processor) process(ctx context.Context) error {
	notifications, err := p.produce(ctx)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	results := p.runWorkers(ctx, notifications)
	if len(results) == 0 {
		return nil
	}

	// результаты фиксируем даже если ctx уже отменен, иначе отправленные уведомления уйдут повторно.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultServiceTimeout)
	defer cancel()

	if reportErr := p.svs.ReportDelivery(reqCtx, results); reportErr != nil {
		return fmt.Errorf("process: %w", reportErr)
	}
	return nil
}

// produce получает пачку неотправленных уведомлений. Возвращает ErrNoNotifications, если их нет.
func (p *Processor) produce(ctx context.Context) ([]domain.Notification, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	notifications, err := p.svs.Unsent(produceCtx, p.limitPerIteration)
	if err != nil {
		return nil, fmt.Errorf("produce: %w", err)
	}
	if len(notifications) == 0 {
		return nil, ErrNoNotifications
	}
	return notifications, nil
}

// runWorkers раздает уведомления воркерам и собирает результаты (fan-out/fan-in).
func (p *Processor) runWorkers(ctx context.Context, notifications []domain.Notification) []service.DeliveryResult {
	var taskCh = make(chan domain.Notification, len(notifications))
	for _, n := range notifications {
		taskCh <- n
	}
	close(taskCh)

	var resultCh = make(chan service.DeliveryResult, len(notifications))

	wg := new(sync.WaitGroup)
	for i := range p.workers {
		wg.Add(1)
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	var results = make([]service.DeliveryResult, 0, len(notifications))
	for result := range resultCh {
		results = append(results, result)
	}
	return results
}

func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan domain.Notification,
	resultCh chan<- service.DeliveryResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-taskCh:
			if !ok {
				return
			}
			resultCh <- p.publish(ctx, workerID, task)
		}
	}
}

func (p *Processor) publish(ctx context.Context, workerID uint, n domain.Notification) service.DeliveryResult {
	l := p.l.WithFields(logrus.Fields{
		"worker":         workerID,
		"notificationID": n.ID,
		"orderID":        n.OrderID,
		"kind":           n.Kind,
		"attempt":        n.Attempts + 1,
	})

	pubCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	if err := p.publisher.Publish(pubCtx, n); err != nil {
		l.WithError(err).Error("publish notification")
		return service.DeliveryResult{NotificationID: n.ID, Error: err}
	}
	l.Debug("Published")
	return service.DeliveryResult{NotificationID: n.ID}
}

// backoff пауза после failures ошибок подряд: base * 2^(failures-1), не более maxErrorPause, плюс до 20% разброса.
func backoff(base time.Duration, failures uint) time.Duration {
	pause := base
	for i := uint(1); i < failures && pause < maxErrorPause; i++ {
		pause *= 2
	}
	pause = min(pause, maxErrorPause)
	return pause + rand.N(pause/5+1) //nolint:gosec
}
