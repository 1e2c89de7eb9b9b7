package workers

import (
	"context"
	"log"
	"os"
	"time"

	"monkArcAPI/services"
)

// StartSweepWorker runs the lifecycle sweep on a timer. Deployments without
// an external scheduler set RUN_SWEEP_WORKER=true and get the same daily
// freeze/death pass in-process; the sweep is idempotent, so running both is
// harmless.
func StartSweepWorker(lifecycleService *services.LifecycleService) {
	if os.Getenv("RUN_SWEEP_WORKER") != "true" {
		return
	}

	interval := 24 * time.Hour
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("Invalid SWEEP_INTERVAL %q, using %s", v, interval)
		} else {
			interval = parsed
		}
	}

	ticker := time.NewTicker(interval)

	go func() {
		log.Printf("Lifecycle sweep worker started, interval %s", interval)
		for range ticker.C {
			runSweep(lifecycleService)
		}
	}()
}

func runSweep(lifecycleService *services.LifecycleService) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := lifecycleService.RunSweep(ctx)
	if err != nil {
		log.Printf("Sweep worker pass failed: %v", err)
		return
	}

	log.Printf("Sweep worker pass: %d journeys, %v updated, %d failed",
		result.Total, result.Updated, result.Failed)
}
