package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festhub/festhub-api/internal/api"
	"github.com/festhub/festhub-api/internal/config"
	"github.com/festhub/festhub-api/internal/db"
	"github.com/festhub/festhub-api/internal/logger"
	"github.com/festhub/festhub-api/internal/notification"
	"github.com/festhub/festhub-api/internal/repository/dao"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	rabbit, err := notification.NewRabbit(conf.Rabbit.URL, conf.Rabbit.Exchange, conf.Rabbit.Queue)
	if err != nil {
		return fmt.Errorf("failed to initialize rabbitmq -> %w", err)
	}
	defer rabbit.Close()

	publisher := notification.NewPublisher(rabbit)
	mailer := notification.NewMailer(conf.SMTP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := notification.NewWorker(rabbit, mailer)
	worker.Start(ctx)
	defer worker.Stop()

	s := api.NewServer(conf, postgresDB, rdb, publisher)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Router.Run(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		return fmt.Errorf("failed to start the server -> %w", err)
	case sig := <-quit:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
		return nil
	}
}
