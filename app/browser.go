package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
	"github.com/Guyuepp/Go-Like-Toggle/internal/browser"
	"github.com/Guyuepp/Go-Like-Toggle/internal/config"
	"github.com/Guyuepp/Go-Like-Toggle/internal/rest"
	"github.com/Guyuepp/Go-Like-Toggle/internal/workers"
)

const rescanInterval = 2 * time.Second

// runBrowser binds the like buttons of a live page until ctx is done
func runBrowser(ctx context.Context, cfg *config.Config, svc domain.ToggleUsecase, client *rest.ToggleClient) error {
	// the tab outlives ctx so that in-flight clicks can still render their outcome
	tab, err := browser.Open(context.Background(), cfg.PageURL, browser.Options{Headless: cfg.Headless})
	if err != nil {
		return err
	}
	defer tab.Close()

	cookies, err := tab.Cookies(ctx)
	if err != nil {
		logrus.Warnf("failed to read browser cookies: %v", err)
	} else {
		client.SetCookies(cookies)
	}

	worker := workers.NewClickWorker(svc, cfg.QueueSize, logOutcome)
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	onClick := func(id string) {
		worker.Send(domain.ClickEvent{ButtonID: id})
	}

	if err := bind(ctx, tab, cfg, svc, onClick); err != nil {
		return fmt.Errorf("failed to attach like buttons: %w", err)
	}

	// pick up buttons rendered after the first scan
	ticker := time.NewTicker(rescanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := bind(ctx, tab, cfg, svc, onClick); err != nil {
				logrus.Warnf("failed to rescan like buttons: %v", err)
			}
		case <-ctx.Done():
			logrus.Info("Shutdown signal received, waiting for in-flight clicks...")
			<-done
			return nil
		}
	}
}

func bind(ctx context.Context, tab *browser.Tab, cfg *config.Config, svc domain.ToggleUsecase, onClick func(string)) error {
	buttons, err := tab.Buttons(ctx, cfg.Selector, cfg.IDAttribute)
	if err != nil {
		return err
	}
	svc.Attach(buttons...)

	n, err := tab.Listen(ctx, cfg.Selector, cfg.IDAttribute, onClick)
	if err != nil {
		return err
	}
	if n > 0 {
		logrus.Infof("listening on %d new like buttons", n)
	}
	return nil
}
