package services

import (
	"context"
	"errors"
	"log"
	"time"

	"cottonwood-backend/internal/timeutil"

	"github.com/robfig/cron/v3"
)

// Scheduler runs background incremental syncs and roster backups
type Scheduler struct {
	Sync   *SyncService
	Backup *BackupService

	cron *cron.Cron
}

// NewScheduler registers the jobs. An empty schedule disables that job.
func NewScheduler(syncSvc *SyncService, backup *BackupService, syncSchedule, backupSchedule string) (*Scheduler, error) {
	s := &Scheduler{
		Sync:   syncSvc,
		Backup: backup,
		cron:   cron.New(cron.WithLocation(timeutil.Club)),
	}

	if syncSchedule != "" && syncSvc != nil && syncSvc.Commerce != nil {
		if _, err := s.cron.AddFunc(syncSchedule, s.runSync); err != nil {
			return nil, err
		}
		log.Printf("[Scheduler] Incremental sync scheduled: %s", syncSchedule)
	}
	if backupSchedule != "" && backup != nil && backup.Enabled() {
		if _, err := s.cron.AddFunc(backupSchedule, s.runBackup); err != nil {
			return nil, err
		}
		log.Printf("[Scheduler] Roster backup scheduled: %s", backupSchedule)
	}
	return s, nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[Scheduler] Started with %d jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Printf("[Scheduler] Stop timed out with jobs still running")
	}
}

func (s *Scheduler) runSync() {
	_, err := s.Sync.Sync(context.Background(), false)
	if errors.Is(err, ErrSyncInProgress) {
		log.Printf("[Scheduler] Skipping sync, another run is in progress")
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.Backup.Run(ctx); err != nil {
		log.Printf("[Scheduler] Backup failed: %v", err)
	}
}
