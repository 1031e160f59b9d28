package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
	"github.com/Guyuepp/Go-Like-Toggle/internal/config"
	"github.com/Guyuepp/Go-Like-Toggle/internal/repository"
	myRedis "github.com/Guyuepp/Go-Like-Toggle/internal/repository/redis"
	"github.com/Guyuepp/Go-Like-Toggle/internal/rest"
	"github.com/Guyuepp/Go-Like-Toggle/internal/usecase/toggle"
)

func main() {
	// run owns every deferred cleanup, so exit only after it returns
	if err := run(os.Args[1:]); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("failed to parse log level, using info: %v", err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// prepare in-flight lock
	var lock domain.InFlightLock = repository.NewLocalLock()
	if cfg.Cache.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr(),
			Password: cfg.Cache.Pass,
			DB:       cfg.Cache.DB,
		})
		defer func() {
			if err := client.Close(); err != nil {
				logrus.Errorf("got error when closing the cache connection: %v", err)
			}
		}()

		if _, err := client.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("failed to open connection to cache: %w", err)
		}
		lock = myRedis.NewInFlightLock(client, cfg.LockTTL)
		logrus.Infof("using redis in-flight lock at %s", cfg.Cache.Addr())
	}

	// prepare toggle handler
	toggleClient := rest.NewToggleClient(rest.ClientConfig{
		BaseURL:       cfg.BaseURL,
		Path:          cfg.Path,
		Timeout:       cfg.Timeout,
		SessionCookie: cfg.SessionCookie,
	})
	toggleSvc := toggle.NewService(
		repository.NewBindingRepository(),
		toggleClient,
		lock,
		toggle.WithClasses(cfg.Classes()),
	)

	switch cfg.Mode {
	case config.ModeBrowser:
		return runBrowser(ctx, cfg, toggleSvc, toggleClient)
	default:
		return runFile(ctx, cfg, toggleSvc, args)
	}
}

func logOutcome(o domain.ToggleOutcome) {
	entry := logrus.WithFields(logrus.Fields{
		"id":        o.ButtonID,
		"liked":     o.Liked,
		"coalesced": o.Coalesced,
	})
	if !o.Succeeded() {
		entry.WithError(o.Err).Warn("like toggle failed, button kept its state")
		return
	}
	entry.Info("like toggled")
}
