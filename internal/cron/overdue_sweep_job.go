package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

// overdueMarker is the slice of the invoices repository the sweep needs.
type overdueMarker interface {
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}

// OverdueSweepJobParams configure the overdue invoice sweep.
type OverdueSweepJobParams struct {
	Logger   *logger.Logger
	Invoices overdueMarker
}

// NewOverdueSweepJob builds the job that flips pending invoices past their
// due date to OVERDUE.
func NewOverdueSweepJob(params OverdueSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Invoices == nil {
		return nil, fmt.Errorf("invoices marker required")
	}
	return &overdueSweepJob{
		logg:     params.Logger,
		invoices: params.Invoices,
		now:      time.Now,
	}, nil
}

type overdueSweepJob struct {
	logg     *logger.Logger
	invoices overdueMarker
	now      func() time.Time
}

func (j *overdueSweepJob) Name() string { return "overdue-sweep" }

func (j *overdueSweepJob) Run(ctx context.Context) error {
	// An invoice due today is not overdue yet; the cutoff is midnight UTC.
	now := j.now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	marked, err := j.invoices.MarkOverdue(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("mark overdue invoices: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": marked})
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}
