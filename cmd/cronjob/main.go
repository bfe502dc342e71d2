package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmhub-backend/internal/app"
	"farmhub-backend/internal/config"
	"farmhub-backend/internal/jobs"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run one job by name, or 'all', and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FarmHub job runner", "store", cfg.Store.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	runner := jobs.NewJobRunner(
		application.Repos.Listings,
		application.Repos.Bookings,
		application.Services.Booking,
		cfg,
	)

	if *runOnce != "" {
		if !runJobOnce(runner, *runOnce) {
			application.Close()
			os.Exit(1)
		}
		return
	}

	cronScheduler, err := scheduler.NewScheduler(runner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	cronScheduler.Start()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := cronScheduler.Stop(shutdownCtx); err != nil {
		logger.Error("Scheduler did not stop cleanly", "error", err)
	}
}

// runJobOnce reports false when name matches no job.
func runJobOnce(runner *jobs.JobRunner, name string) bool {
	if name == "all" {
		runner.RunAll()
		return true
	}
	job, ok := runner.Lookup(name)
	if !ok {
		logger.Error("Unknown job name", "job", name)
		fmt.Println("Available jobs:")
		for _, j := range runner.Jobs() {
			fmt.Printf("  - %s\n", j.Name)
		}
		fmt.Println("  - all")
		return false
	}
	job.Run()
	return true
}
