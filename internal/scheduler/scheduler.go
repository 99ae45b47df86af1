package scheduler

import (
	"sort"

	"agrirent-backend/internal/jobs"
	"agrirent-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler fires the rental reminder and overdue jobs on the configured
// six-field cron specs, evaluated in the booking timezone.
type Scheduler struct {
	cron    *cron.Cron
	runner  *jobs.JobRunner
	entries map[string]cron.EntryID
}

func NewScheduler(runner *jobs.JobRunner) *Scheduler {
	s := &Scheduler{
		runner:  runner,
		entries: make(map[string]cron.EntryID),
	}
	s.cron = cron.New(
		cron.WithLocation(runner.Config().Location()),
		cron.WithSeconds(),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	s.register()
	return s
}

func (s *Scheduler) register() {
	specs := s.runner.Config().Scheduler
	table := map[string]string{
		"pickup-reminders": specs.PickupReminders,
		"return-reminders": specs.ReturnReminders,
		"flag-overdue":     specs.FlagOverdue,
	}
	for name, spec := range table {
		run, _ := s.runner.Lookup(name)
		id, err := s.cron.AddFunc(spec, run)
		if err != nil {
			logger.Error("Invalid cron spec, job disabled", "job", name, "spec", spec, "error", err)
			continue
		}
		s.entries[name] = id
	}
}

// Jobs lists the names of the successfully registered jobs, sorted.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, name := range s.Jobs() {
		logger.Info("Job scheduled", "job", name, "next_run", s.cron.Entry(s.entries[name]).Next)
	}
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cron scheduler stopped")
}

// cronLogger routes robfig/cron's internal logging through the service logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
