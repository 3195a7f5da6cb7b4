package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

type fakeOverdueMarker struct {
	cutoff time.Time
	marked int64
	err    error
	calls  int
}

func (f *fakeOverdueMarker) MarkOverdue(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.marked, f.err
}

func TestOverdueSweepUsesMidnightCutoff(t *testing.T) {
	marker := &fakeOverdueMarker{marked: 3}
	jobIface, err := NewOverdueSweepJob(OverdueSweepJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Invoices: marker,
	})
	if err != nil {
		t.Fatalf("NewOverdueSweepJob: %v", err)
	}
	job := jobIface.(*overdueSweepJob)
	job.now = func() time.Time {
		return time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if marker.calls != 1 {
		t.Fatalf("expected one sweep, got %d", marker.calls)
	}

	want := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if !marker.cutoff.Equal(want) {
		t.Fatalf("cutoff should be midnight UTC, got %s", marker.cutoff)
	}
}

func TestOverdueSweepPropagatesError(t *testing.T) {
	marker := &fakeOverdueMarker{err: errors.New("db down")}
	job, err := NewOverdueSweepJob(OverdueSweepJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Invoices: marker,
	})
	if err != nil {
		t.Fatalf("NewOverdueSweepJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error from failed sweep")
	}
}

func TestOverdueSweepParamsValidation(t *testing.T) {
	if _, err := NewOverdueSweepJob(OverdueSweepJobParams{Invoices: &fakeOverdueMarker{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewOverdueSweepJob(OverdueSweepJobParams{Logger: logger.New(logger.Options{ServiceName: "t"})}); err == nil {
		t.Fatal("expected error without invoices marker")
	}
}
