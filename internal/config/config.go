package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type NotifySinkType string

const (
	NotifySinkFile     NotifySinkType = "file"
	NotifySinkKafka    NotifySinkType = "kafka"
	NotifySinkRabbitMQ NotifySinkType = "rabbitmq"
	NotifySinkNone     NotifySinkType = "none"
)

type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	DatabaseDSN    string `env:"DATABASE_URI"`
	MigrationsDir  string `env:"MIGRATIONS_DIR"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`
	LogLevel       string `env:"LOG_LEVEL"`

	NotifySink        NotifySinkType `env:"NOTIFY_SINK"        envDefault:"file"`
	NotifyFile        string         `env:"NOTIFY_FILE"        envDefault:"notifications.log"`
	KafkaBrokers      []string       `env:"KAFKA_BROKERS"      envSeparator:","`
	KafkaTopic        string         `env:"KAFKA_TOPIC"        envDefault:"bookstore.orders"`
	RabbitMQURL       string         `env:"RABBITMQ_URL"`
	RabbitMQExchange  string         `env:"RABBITMQ_EXCHANGE"  envDefault:"bookstore"`
	NotifyInterval    time.Duration  `env:"NOTIFY_INTERVAL"    envDefault:"1s"`
	NotifyBatch       uint           `env:"NOTIFY_BATCH"       envDefault:"100"`
	NotifyWorkers     uint           `env:"NOTIFY_WORKERS"     envDefault:"4"`
	NotifyMaxAttempts int32          `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"10"`
}

// LoadConfig собирает конфигурацию из .env файла (если есть), переменных окружения и флагов args.
// Переменные окружения приоритетнее флагов.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %s", err.Error())
	}

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if flagsErr := loadFlags(&flagsConfig, args); flagsErr != nil {
		return nil, fmt.Errorf("parse flags: %s", flagsErr.Error())
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config, args []string) error {
	flags := flag.NewFlagSet("bookstore", flag.ContinueOnError)
	flags.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flags.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flags.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	maxConns := flags.Int("c", 0, "Max database connections, 0 - pgxpool default")

	if err := flags.Parse(args); err != nil {
		return err //nolint:wrapcheck
	}
	flagConfig.DBMaxConns = int32(*maxConns) //nolint:gosec
	return nil
}

// mergeConfig берет значения из окружения, а пустые заполняет из флагов. Поля без флагов берутся из окружения.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig
	conf.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	conf.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	conf.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	if conf.DBMaxConns == 0 {
		conf.DBMaxConns = flagsConfig.DBMaxConns
	}
	return &conf
}

func (c *Config) validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("database DSN is not set")
	}
	if c.DBMaxConns < 0 {
		return errors.New("max database connections must not be negative")
	}
	switch c.NotifySink {
	case NotifySinkFile:
		if c.NotifyFile == "" {
			return errors.New("notification file is not set")
		}
	case NotifySinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("kafka brokers are not set")
		}
	case NotifySinkRabbitMQ:
		if c.RabbitMQURL == "" {
			return errors.New("rabbitmq url is not set")
		}
	case NotifySinkNone:
	default:
		return fmt.Errorf("unknown notification sink %q", c.NotifySink)
	}
	return nil
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
