package services

import (
	"context"
	"fmt"
	"time"

	"calorietracker/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the nightly progress snapshot for the previous day.
type Scheduler struct {
	cron      *cron.Cron
	summaries *SummaryService
	log       *logrus.Logger
}

func NewScheduler(spec string, summaries *SummaryService, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), summaries: summaries, log: log}
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.SnapshotPreviousDay(context.Background(), time.Now()); err != nil {
			s.log.WithError(err).Error("nightly snapshot failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule snapshot %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }

func (s *Scheduler) SnapshotPreviousDay(ctx context.Context, now time.Time) (int, error) {
	return s.summaries.SnapshotDay(ctx, now.AddDate(0, 0, -1).Format(models.DateLayout))
}
