// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/paralympics-go/internal/store"
)

// DefaultRetentionSchedule prunes the event log once a day at 03:00.
const DefaultRetentionSchedule = "0 3 * * *"

// Scheduler prunes old event-log rows on a cron schedule and runs any extra
// jobs registered with AddJob.
type Scheduler struct {
	db        *sql.DB
	cron      *cron.Cron
	logger    *slog.Logger
	retention time.Duration
	schedule  string
	jobs      []job
	now       func() time.Time
}

type job struct {
	name     string
	schedule string
	run      func() error
}

// New creates a scheduler that keeps retentionDays of events. A zero or
// negative value disables pruning.
func New(db *sql.DB, logger *slog.Logger, retentionDays int) *Scheduler {
	return &Scheduler{
		db:        db,
		cron:      cron.New(),
		logger:    logger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  DefaultRetentionSchedule,
		now:       time.Now,
	}
}

// ValidateSchedule reports whether expr is a valid five-field cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}

// SetSchedule overrides the retention schedule. It must be called before Start.
func (s *Scheduler) SetSchedule(expr string) error {
	if err := ValidateSchedule(expr); err != nil {
		return err
	}
	s.schedule = expr
	return nil
}

// AddJob registers fn to run on schedule once Start is called. Errors are
// logged with the job name.
func (s *Scheduler) AddJob(name, schedule string, fn func() error) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}
	s.jobs = append(s.jobs, job{name: name, schedule: schedule, run: fn})
	return nil
}

// Start registers the retention job and starts the cron loop.
func (s *Scheduler) Start() error {
	for _, j := range s.jobs {
		_, err := s.cron.AddFunc(j.schedule, func() {
			if err := j.run(); err != nil {
				s.logger.Error("scheduled job failed", "job", j.name, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", j.name, err)
		}
	}

	if s.retention > 0 {
		_, err := s.cron.AddFunc(s.schedule, func() {
			if _, err := s.PruneEvents(context.Background()); err != nil {
				s.logger.Error("failed to prune event log", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneEvents deletes events older than the retention period and returns the
// number removed.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	cutoff := s.now().Add(-s.retention)
	n, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		s.logger.Info("pruned event log", "deleted", n, "cutoff", cutoff)
	}
	return n, nil
}
