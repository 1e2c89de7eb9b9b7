package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"monkArcAPI/services"
)

type LifecycleHandler struct {
	lifecycleService *services.LifecycleService
}

func NewLifecycleHandler(lifecycleService *services.LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleService: lifecycleService,
	}
}

// RunSweep is the cron entry point. The scheduler calls it once a day; the
// sweep itself is idempotent so a retry after a partial failure is safe.
func (h *LifecycleHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	result, err := h.lifecycleService.RunSweep(ctx)
	if err != nil {
		log.Printf("Lifecycle sweep failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Sweep failed")
		return
	}

	log.Printf("Lifecycle sweep finished in %s: %d journeys, %v updated, %d failed",
		time.Since(start).Round(time.Millisecond), result.Total, result.Updated, result.Failed)

	respondWithJSON(w, http.StatusOK, result)
}
