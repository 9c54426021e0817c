package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/fsdevblog/bookstore/internal/service"
	"github.com/fsdevblog/bookstore/internal/transport/notify/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ProcessorTestSuite struct {
	suite.Suite
	processor     *Processor
	mockPublisher *mocks.MockPublisher
	mockService   *mocks.MockServicer
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func (s *ProcessorTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.mockPublisher = mocks.NewMockPublisher(ctrl)
	s.mockService = mocks.NewMockServicer(ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.processor = New(s.mockService, s.mockPublisher, logger).
		SetWorkers(3).
		SetLimitPerIteration(10).
		SetInterval(10 * time.Millisecond)
}

func notification(orderID int64) domain.Notification {
	return domain.Notification{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		OrderID:   orderID,
		Kind:      domain.NotificationOrderPlaced,
		Payload:   []byte(`{"orderId":1}`),
	}
}

// TestProcess_NoNotifications outbox пуст, публикаций нет.
func (s *ProcessorTestSuite) TestProcess_NoNotifications() {
	s.mockService.EXPECT().Unsent(gomock.Any(), uint(10)).Return(nil, nil)
	s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
	s.mockService.EXPECT().ReportDelivery(gomock.Any(), gomock.Any()).Times(0)

	err := s.processor.process(s.T().Context())
	s.ErrorIs(err, ErrNoNotifications)
}

// TestProcess_PartialFailure одно уведомление не отправилось, оба результата уходят в сервис.
func (s *ProcessorTestSuite) TestProcess_PartialFailure() {
	ok, failed := notification(1), notification(2)
	publishErr := errors.New("broker is down")

	s.mockService.EXPECT().Unsent(gomock.Any(), uint(10)).Return([]domain.Notification{ok, failed}, nil)
	s.mockPublisher.EXPECT().Publish(gomock.Any(), ok).Return(nil)
	s.mockPublisher.EXPECT().Publish(gomock.Any(), failed).Return(publishErr)
	s.mockService.EXPECT().ReportDelivery(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, results []service.DeliveryResult) error {
			s.ElementsMatch([]service.DeliveryResult{
				{NotificationID: ok.ID},
				{NotificationID: failed.ID, Error: publishErr},
			}, results)
			return nil
		})

	s.Require().NoError(s.processor.process(s.T().Context()))
}

// TestProcess_ReportError ошибка фиксации результатов возвращается наверх.
func (s *ProcessorTestSuite) TestProcess_ReportError() {
	n := notification(1)
	s.mockService.EXPECT().Unsent(gomock.Any(), uint(10)).Return([]domain.Notification{n}, nil)
	s.mockPublisher.EXPECT().Publish(gomock.Any(), n).Return(nil)
	s.mockService.EXPECT().ReportDelivery(gomock.Any(), gomock.Any()).Return(domain.ErrStorageUnavailable)

	err := s.processor.process(s.T().Context())
	s.ErrorIs(err, domain.ErrStorageUnavailable)
}

// TestProcess_UnsentError ошибка выборки уведомлений.
func (s *ProcessorTestSuite) TestProcess_UnsentError() {
	s.mockService.EXPECT().Unsent(gomock.Any(), uint(10)).Return(nil, domain.ErrStorageUnavailable)

	err := s.processor.process(s.T().Context())
	s.ErrorIs(err, domain.ErrStorageUnavailable)
	s.NotErrorIs(err, ErrNoNotifications)
}

// TestRun_StopsOnCancel Run завершается после отмены контекста.
func (s *ProcessorTestSuite) TestRun_StopsOnCancel() {
	ctx, cancel := context.WithCancel(s.T().Context())
	s.mockService.EXPECT().Unsent(gomock.Any(), uint(10)).Return(nil, nil).MinTimes(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.processor.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("processor did not stop")
	}
}

func (s *ProcessorTestSuite) TestBackoff() {
	base := 100 * time.Millisecond

	first := backoff(base, 1)
	s.GreaterOrEqual(first, base)
	s.LessOrEqual(first, base+base/5)

	third := backoff(base, 3)
	s.GreaterOrEqual(third, 4*base)

	capped := backoff(base, 100)
	s.GreaterOrEqual(capped, maxErrorPause)
	s.LessOrEqual(capped, maxErrorPause+maxErrorPause/5)
}
