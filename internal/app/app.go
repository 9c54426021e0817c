package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/bookstore/internal/config"
	"github.com/fsdevblog/bookstore/internal/repository/pgrepo"
	"github.com/fsdevblog/bookstore/internal/repository/repoargs"
	"github.com/fsdevblog/bookstore/internal/service"
	"github.com/fsdevblog/bookstore/internal/transport/api"
	"github.com/fsdevblog/bookstore/internal/transport/notify"
	"github.com/fsdevblog/bookstore/internal/transport/notify/broker"
	"github.com/fsdevblog/bookstore/pkg/uow"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

// Run поднимает пул соединений, http сервер и доставку уведомлений. Возвращает context.Canceled после
// сигнала SIGINT/SIGTERM и корректной остановки всех компонентов.
func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"runAddress":    a.Config.RunAddress,
		"migrationsDir": a.Config.MigrationsDir,
		"dbMaxConns":    a.Config.DBMaxConns,
		"notifySink":    a.Config.NotifySink,
		"adminAuth":     a.Config.AdminJWTSecret != "",
	}).Info("Starting app")

	conn, connErr := pgrepo.Connect(notifyCtx, pgrepo.ConnectArgs{
		DSN:           a.Config.DatabaseDSN,
		MigrationsDir: a.Config.MigrationsDir,
		MaxConns:      a.Config.DBMaxConns,
	}, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %w", connErr)
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		AdminJWTSecret:      []byte(a.Config.AdminJWTSecret),
		MaxDeliveryAttempts: a.Config.NotifyMaxAttempts,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	routerArgs := api.RouterArgs{
		Logger:       a.Logger,
		OrderService: services.OrderService,
		Pinger:       unitOfWork,
	}
	if a.Config.AdminJWTSecret != "" {
		routerArgs.AdminService = services.AdminService
		routerArgs.AdminJWTSecret = []byte(a.Config.AdminJWTSecret)
	}
	router, rErr := api.New(routerArgs)
	if rErr != nil {
		return fmt.Errorf("app run: %s", rErr.Error())
	}

	publisher, pErr := a.newPublisher(notifyCtx)
	if pErr != nil {
		return fmt.Errorf("app run: %w", pErr)
	}

	server := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(notifyCtx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if publisher != nil {
		g.Go(func() error {
			defer func() {
				if err := publisher.Close(); err != nil {
					a.Logger.WithError(err).Error("close notification publisher")
				}
			}()
			notify.New(services.NotificationService, publisher, a.Logger).
				SetInterval(a.Config.NotifyInterval).
				SetLimitPerIteration(a.Config.NotifyBatch).
				SetWorkers(a.Config.NotifyWorkers).
				Run(gCtx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	return notifyCtx.Err() //nolint:wrapcheck
}

// newPublisher создает приемник уведомлений согласно конфигурации. Для config.NotifySinkNone вернет nil.
func (a *App) newPublisher(ctx context.Context) (notify.Publisher, error) {
	switch a.Config.NotifySink {
	case config.NotifySinkFile:
		return broker.NewFilePublisher(a.Config.NotifyFile) //nolint:wrapcheck
	case config.NotifySinkKafka:
		return broker.NewKafkaPublisher(a.Config.KafkaBrokers, a.Config.KafkaTopic, a.Logger) //nolint:wrapcheck
	case config.NotifySinkRabbitMQ:
		return broker.NewRabbitPublisher(ctx, a.Config.RabbitMQURL, a.Config.RabbitMQExchange, a.Logger) //nolint:wrapcheck
	case config.NotifySinkNone:
		a.Logger.Warn("notification sink is disabled, notifications stay in outbox")
		return nil, nil //nolint:nilnil
	default:
		return nil, fmt.Errorf("unknown notification sink %q", a.Config.NotifySink)
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.CustomerRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCustomerRepository(dbtx)
		},
		repoargs.BookRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewBookRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.PaymentRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPaymentRepository(dbtx)
		},
		repoargs.AuditLogRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewAuditLogRepository(dbtx)
		},
		repoargs.NotificationRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewNotificationRepository(dbtx)
		},
		repoargs.AdminRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewAdminRepository(dbtx)
		},
	}
	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s: %s", name, regErr.Error())
		}
	}

	return unitOfWork, nil
}
