// Package jobs runs the periodic maintenance tasks: idle session
// reaping and audit trail pruning.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/database"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/session"
)

// Scheduler owns the cron jobs
type Scheduler struct {
	cron        *cron.Cron
	sessions    *session.Manager
	db          *database.DB
	idleTimeout time.Duration
	retention   time.Duration
}

// New creates a scheduler. db may be nil when the audit trail is
// disabled; the pruning job is then skipped.
func New(sessions *session.Manager, db *database.DB, idleTimeout, retention time.Duration) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		sessions:    sessions,
		db:          db,
		idleTimeout: idleTimeout,
		retention:   retention,
	}
}

// Start registers and starts the jobs
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 15m", s.reapIdleSessions); err != nil {
		return err
	}

	if s.db != nil {
		if _, err := s.cron.AddFunc("0 4 * * *", s.pruneAudit); err != nil {
			return err
		}
	}

	s.cron.Start()
	logrus.Info("job scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("job scheduler stopped")
}

func (s *Scheduler) reapIdleSessions() {
	reaped := s.sessions.ReapIdle(s.idleTimeout)
	if reaped > 0 {
		logrus.WithField("count", reaped).Info("reaped idle sessions")
	}
}

func (s *Scheduler) pruneAudit() {
	n, err := s.db.Prune(s.retention)
	if err != nil {
		logrus.WithError(err).Error("audit prune failed")
		return
	}
	if n > 0 {
		logrus.WithField("rows", n).Info("pruned audit events")
	}
}
