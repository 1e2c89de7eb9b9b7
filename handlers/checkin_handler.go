package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"monkArcAPI/internal/prompts"
	"monkArcAPI/internal/types/checkin"
	"monkArcAPI/middleware"
	"monkArcAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type CheckInHandler struct {
	checkInService *services.CheckInService
}

func NewCheckInHandler(checkInService *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{
		checkInService: checkInService,
	}
}

func (h *CheckInHandler) RecordCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	journeyID, ok := journeyIDFromRequest(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid journey id")
		return
	}

	var req checkin.CreateCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.checkInService.RecordCheckIn(ctx, clerkID, journeyID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *CheckInHandler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	journeyID, ok := journeyIDFromRequest(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid journey id")
		return
	}

	checkIns, err := h.checkInService.ListCheckIns(ctx, clerkID, journeyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, checkIns)
}

func (h *CheckInHandler) EditCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	checkInID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid check-in id")
		return
	}

	var req checkin.EditCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	edited, err := h.checkInService.EditCheckIn(ctx, clerkID, checkInID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, edited)
}

// GetTodayPrompt returns the rotating reflection prompt for today. The
// prompt is deterministic, so clients on the same day all see the same one.
func (h *CheckInHandler) GetTodayPrompt(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok || clerkID == "" {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	today := time.Now().UTC()
	respondWithJSON(w, http.StatusOK, map[string]string{
		"date":   today.Format("2006-01-02"),
		"prompt": prompts.ForDate(today),
	})
}
