package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"monkArcAPI/internal/types/journey"
	"monkArcAPI/middleware"
	"monkArcAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type JourneyHandler struct {
	journeyService *services.JourneyService
}

func NewJourneyHandler(journeyService *services.JourneyService) *JourneyHandler {
	return &JourneyHandler{
		journeyService: journeyService,
	}
}

// journeyIDFromRequest parses the {id} path variable shared by every
// journey route.
func journeyIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *JourneyHandler) CreateJourney(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req journey.CreateJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.journeyService.CreateJourney(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *JourneyHandler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	journeys, err := h.journeyService.ListJourneys(ctx, clerkID, r.URL.Query().Get("status"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, journeys)
}

func (h *JourneyHandler) GetJourney(w http.ResponseWriter, r *http.Request) {
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

	detail, err := h.journeyService.GetJourney(ctx, clerkID, journeyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *JourneyHandler) UpdateJourney(w http.ResponseWriter, r *http.Request) {
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

	var req journey.UpdateJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.journeyService.UpdateJourney(ctx, clerkID, journeyID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *JourneyHandler) DeleteJourney(w http.ResponseWriter, r *http.Request) {
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

	if err := h.journeyService.DeleteJourney(ctx, clerkID, journeyID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *JourneyHandler) PauseJourney(w http.ResponseWriter, r *http.Request) {
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

	paused, err := h.journeyService.PauseJourney(ctx, clerkID, journeyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, paused)
}

func (h *JourneyHandler) ResumeJourney(w http.ResponseWriter, r *http.Request) {
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

	resumed, err := h.journeyService.ResumeJourney(ctx, clerkID, journeyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resumed)
}

func (h *JourneyHandler) ExtendJourney(w http.ResponseWriter, r *http.Request) {
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

	var req journey.ExtendJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	extended, err := h.journeyService.ExtendJourney(ctx, clerkID, journeyID, req.Days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, extended)
}

func (h *JourneyHandler) CompleteJourney(w http.ResponseWriter, r *http.Request) {
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

	completed, err := h.journeyService.CompleteJourney(ctx, clerkID, journeyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, completed)
}

func (h *JourneyHandler) GetArcSummary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.journeyService.GetArcSummary(ctx, clerkID, journeyID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *JourneyHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
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

	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2020 || parsed > 2100 {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = parsed
	}

	cal, err := h.journeyService.GetCalendar(ctx, clerkID, journeyID, year, month)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}
