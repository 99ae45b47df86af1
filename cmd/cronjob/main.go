package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"agrirent-backend/internal/config"
	"agrirent-backend/internal/jobs"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/metrics"
	"agrirent-backend/internal/notification"
	"agrirent-backend/internal/repository/postgres"
	"agrirent-backend/internal/scheduler"
	"agrirent-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run one job and exit: "+strings.Join(jobs.Names(), ", "))
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AgriRent cronjob runner...", "log_level", cfg.Log.Level, "timezone", cfg.Booking.Timezone)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err == nil {
		err = db.PingContext(context.Background())
	}
	if err != nil {
		logger.Error("Database unavailable", "host", cfg.Database.Host, "port", cfg.Database.Port, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := postgres.NewStore(db)
	metrics.Register()

	dispatcher := notification.NewDispatcher(
		time.Duration(cfg.Notification.TimeoutSeconds)*time.Second,
		notification.BuildNotifiers(context.Background(), cfg)...,
	)
	defer dispatcher.Wait()

	clock := func() time.Time { return time.Now().In(cfg.Location()) }
	reminders := service.NewReminderService(store.RentalRepository, store.EquipmentRepository, dispatcher, clock)

	jobRunner := jobs.NewJobRunner(reminders, cfg)

	if *runOnce != "" {
		run, ok := jobRunner.Lookup(*runOnce)
		if !ok {
			logger.Error("Unknown job name", "job", *runOnce)
			fmt.Fprintf(os.Stderr, "unknown job %q, expected one of: %s\n", *runOnce, strings.Join(jobs.Names(), ", "))
			os.Exit(2)
		}
		logger.Info("Running job once", "job", *runOnce)
		run()
		return
	}

	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	logger.Info("Scheduler running", "jobs", cronScheduler.Jobs(), "timezone", cfg.Booking.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down scheduler, waiting for running jobs")
	cronScheduler.Stop()
}
