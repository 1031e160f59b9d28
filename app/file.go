package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
	"github.com/Guyuepp/Go-Like-Toggle/internal/config"
	"github.com/Guyuepp/Go-Like-Toggle/internal/page"
)

const maxConcurrentClicks = 8

// runFile clicks the given ids on a saved page and writes the page back out
func runFile(ctx context.Context, cfg *config.Config, svc domain.ToggleUsecase, ids []string) error {
	doc, err := page.Load(cfg.PageFile)
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}

	n := svc.Attach(doc.Buttons(cfg.Selector, cfg.IDAttribute)...)
	logrus.Infof("attached %d like buttons from %s", n, cfg.PageFile)

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentClicks)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			outcome := svc.Click(ctx, id)
			logOutcome(outcome)
			return outcome.Err
		})
	}
	clickErr := g.Wait()

	html, err := doc.HTML()
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	if cfg.Output == "" {
		_, err = fmt.Fprintln(os.Stdout, html)
	} else {
		err = os.WriteFile(cfg.Output, []byte(html), 0o644)
	}
	if err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}

	return clickErr
}
