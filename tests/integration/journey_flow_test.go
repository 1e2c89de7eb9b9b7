package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monkArcAPI/handlers"
	"monkArcAPI/internal/lifecycle"
	"monkArcAPI/internal/types/checkin"
	"monkArcAPI/internal/types/journey"
	"monkArcAPI/middleware"
	"monkArcAPI/services"
	"monkArcAPI/tests/helpers"
)

func authed(req *http.Request, clerkID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	return req.WithContext(ctx)
}

func withJourneyID(req *http.Request, id string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id})
}

// TestJourneyLifecycleFlow walks a journey from creation through check-ins,
// pause and resume, to completion and the arc summary.
func TestJourneyLifecycleFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	journeyService := services.NewJourneyService(pool)
	checkInService := services.NewCheckInService(pool, nil, nil)

	journeyHandler := handlers.NewJourneyHandler(journeyService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_" + time.Now().Format("20060102150405")

	// Step 1: user signs up through the Clerk webhook.
	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload))
	rr := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, "Webhook should succeed")

	// Step 2: create a journey with a small target so completion is quick.
	createBody := `{"title": "Learn Go", "description": "A week of practice", "journey_type": "learning", "target_check_ins": 2}`
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys", strings.NewReader(createBody)), clerkID)
	rr = httptest.NewRecorder()

	journeyHandler.CreateJourney(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created journey.Journey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, lifecycle.StatusActive, created.Status)
	assert.Equal(t, lifecycle.PhaseSeed, created.Phase)
	assert.Equal(t, 2, created.TargetCheckIns)

	journeyID := created.ID.String()

	// Step 3: first check-in.
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	checkInBody := fmt.Sprintf(`{"date": "%s", "accomplishment": "Worked through the tour of Go"}`, yesterday)
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/checkins", strings.NewReader(checkInBody)), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	checkInHandler.RecordCheckIn(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var result checkin.CheckInResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 1, result.CurrentStreak)
	assert.False(t, result.BecameArc)

	// A duplicate for the same date must be rejected.
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/checkins", strings.NewReader(checkInBody)), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	checkInHandler.RecordCheckIn(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Completing before the target is met is rejected.
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/complete", nil), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	journeyHandler.CompleteJourney(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	// Step 4: second check-in reaches the target and flips the phase.
	today := time.Now().UTC().Format("2006-01-02")
	checkInBody = fmt.Sprintf(`{"date": "%s", "accomplishment": "Finished the concurrency chapter"}`, today)
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/checkins", strings.NewReader(checkInBody)), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	checkInHandler.RecordCheckIn(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 2, result.CurrentStreak)
	assert.True(t, result.BecameArc)
	assert.True(t, result.TargetReached)

	// Step 5: pause and resume.
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/pause", nil), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	journeyHandler.PauseJourney(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var paused journey.Journey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &paused))
	assert.Equal(t, lifecycle.StatusPaused, paused.Status)

	// Checking in while paused is a conflict.
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/checkins", strings.NewReader(checkInBody)), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	checkInHandler.RecordCheckIn(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/resume", nil), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	journeyHandler.ResumeJourney(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resumed journey.Journey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resumed))
	assert.Equal(t, lifecycle.StatusActive, resumed.Status)

	// Step 6: complete the journey.
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/complete", nil), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	journeyHandler.CompleteJourney(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var completed journey.Journey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &completed))
	assert.Equal(t, lifecycle.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// Completed is terminal: no more check-ins, no pause.
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/journeys/"+journeyID+"/pause", nil), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	journeyHandler.PauseJourney(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Step 7: the arc summary is available now.
	req = authed(httptest.NewRequest(http.MethodGet, "/api/v1/journeys/"+journeyID+"/arc", nil), clerkID)
	req = withJourneyID(req, journeyID)
	rr = httptest.NewRecorder()

	journeyHandler.GetArcSummary(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var summary map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.EqualValues(t, 2, summary["total_check_ins"])
}

// TestLifecycleSweepRevival exercises the sweep against a journey whose
// last check-in is old enough to freeze it, then revives it with a new
// check-in.
func TestLifecycleSweepRevival(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	journeyService := services.NewJourneyService(pool)
	checkInService := services.NewCheckInService(pool, nil, nil)
	lifecycleService := services.NewLifecycleService(pool, nil)

	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_sweep_" + time.Now().Format("20060102150405")

	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload))
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	ctx := context.Background()
	created, err := journeyService.CreateJourney(ctx, clerkID, &journey.CreateJourneyRequest{
		Title:       "Daily sketching",
		JourneyType: "project",
		Target:      30,
	})
	require.NoError(t, err)

	// Backdate the last activity past the freeze threshold.
	staleDate := time.Now().UTC().AddDate(0, 0, -4)
	_, err = pool.Exec(ctx, `
		UPDATE journeys
		SET last_check_in_date = $2, current_streak = 1, total_check_ins = 1
		WHERE id = $1`, created.ID, staleDate)
	require.NoError(t, err)

	result, err := lifecycleService.RunSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Failed)

	frozen, err := journeyService.GetJourney(ctx, clerkID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusFrozen, frozen.Journey.Status)
	assert.Zero(t, frozen.Journey.CurrentStreak)

	// Second sweep on the same day writes nothing.
	again, err := lifecycleService.RunSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Failed)
	assert.Empty(t, again.Updated)

	// A new check-in revives the journey with a streak of 1.
	res, err := checkInService.RecordCheckIn(ctx, clerkID, created.ID, &checkin.CreateCheckInRequest{
		Accomplishment: "Back at the drawing board",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentStreak)

	revived, err := journeyService.GetJourney(ctx, clerkID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusActive, revived.Journey.Status)
	assert.Nil(t, revived.Journey.FrozenAt)
}

// TestConcurrentCheckInsKeepAggregates records check-ins for distinct dates
// in parallel and verifies no increment is lost to a stale read.
func TestConcurrentCheckInsKeepAggregates(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	journeyService := services.NewJourneyService(pool)
	checkInService := services.NewCheckInService(pool, nil, nil)

	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_conc_" + time.Now().Format("20060102150405")

	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload))
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	ctx := context.Background()
	created, err := journeyService.CreateJourney(ctx, clerkID, &journey.CreateJourneyRequest{
		Title:       "Morning pages",
		JourneyType: "habit",
		Target:      30,
	})
	require.NoError(t, err)

	const n = 5
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(daysAgo int) {
			defer wg.Done()
			d := time.Now().UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02")
			_, err := checkInService.RecordCheckIn(ctx, clerkID, created.ID, &checkin.CreateCheckInRequest{
				Date:           d,
				Accomplishment: "Wrote three pages",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var totalCheckIns int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT total_check_ins FROM journeys WHERE id = $1`, created.ID).Scan(&totalCheckIns))
	assert.Equal(t, n, totalCheckIns, "every check-in must be counted")

	var rowCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE journey_id = $1`, created.ID).Scan(&rowCount))
	assert.Equal(t, n, rowCount)

	detail, err := journeyService.GetJourney(ctx, clerkID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, n, detail.Journey.CurrentStreak, "consecutive days form one streak")
}
