package internal

import (
	"context"
	"log/slog"

	rcron "github.com/robfig/cron/v3"

	"github.com/starford/journal/internal/pageservice"
)

// startDaily schedules the creation of today's page on schedule. The returned
// function stops the scheduler and waits for a running job.
func startDaily(ctx context.Context, schedule string, pages *pageservice.Service, logger *slog.Logger) (func(), error) {
	c := rcron.New()
	_, err := c.AddFunc(schedule, func() {
		page, err := pages.GetOrCreate(ctx, 0)
		if err != nil {
			logger.Error("daily: create page failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("daily: page ready", slog.String("path", page.Path), slog.Bool("created", !page.Exists))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("daily: scheduler started", slog.String("schedule", schedule))
	return func() { <-c.Stop().Done() }, nil
}
