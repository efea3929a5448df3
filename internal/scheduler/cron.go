package scheduler

import (
	"fmt"
	"time"

	"github.com/aci2n/subarr/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages the ledger maintenance job. The ledger is diagnostics
// only, so pruning it never affects a running batch.
type Scheduler struct {
	cron          *cron.Cron
	db            *models.Database
	retentionDays int
	logger        *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(db *models.Database, retentionDays int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		db:            db,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every hour: prune ledger entries past the retention window
	_, err := s.cron.AddFunc("0 * * * *", func() {
		s.runPrune()
	})
	if err != nil {
		return fmt.Errorf("failed to add prune job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runPrune executes the ledger prune job
func (s *Scheduler) runPrune() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	s.logger.WithField("cutoff", cutoff).Debug("Running ledger prune")

	steps, downloads, err := s.db.PruneOlderThan(cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Ledger prune failed")
		return
	}

	if steps > 0 || downloads > 0 {
		s.logger.WithFields(logrus.Fields{
			"steps":     steps,
			"downloads": downloads,
		}).Info("Pruned stale ledger entries")
	}
}
