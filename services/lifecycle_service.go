package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"monkArcAPI/internal/datemath"
	"monkArcAPI/internal/lifecycle"
	"monkArcAPI/internal/types/journey"
	"monkArcAPI/internal/types/notification"
)

type LifecycleService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
	now           func() time.Time
}

func NewLifecycleService(db *pgxpool.Pool, notifications *NotificationService) *LifecycleService {
	return &LifecycleService{
		db:            db,
		notifications: notifications,
		now:           time.Now,
	}
}

// SweepResult is the summary returned to the cron trigger.
type SweepResult struct {
	Total   int            `json:"total"`
	Updated map[string]int `json:"updated"`
	Failed  int            `json:"failed"`
}

// daysSinceLastActivity counts whole days from the last check-in to today,
// falling back to the start date for journeys that have never checked in. A
// brand-new journey therefore starts aging immediately: it can freeze on day
// 3 and die on day 7 without a single check-in.
func daysSinceLastActivity(j *journey.Journey, today time.Time) int {
	anchor := j.StartDate
	if j.LastCheckInDate != nil {
		anchor = *j.LastCheckInDate
	}
	days := datemath.DaysBetween(anchor, today)
	if days < 0 {
		return 0
	}
	return days
}

// planTransition decides whether the sweep should move a journey to a new
// status. Pure; returns the target status and whether a write is needed.
func planTransition(j *journey.Journey, today time.Time) (lifecycle.Status, bool) {
	days := daysSinceLastActivity(j, today)
	next := lifecycle.NextStatus(j.Status, days, j.Status == lifecycle.StatusPaused)

	if next == j.Status {
		return next, false
	}
	if !lifecycle.CanTransition(j.Status, next) {
		return j.Status, false
	}
	return next, true
}

// RunSweep walks every journey the engine can still transition, applies the
// status rules, and persists only the diffs. Each journey is an independent
// unit of work: one failure is counted and the pass continues. Running the
// sweep twice back to back writes nothing the second time.
func (s *LifecycleService) RunSweep(ctx context.Context) (*SweepResult, error) {
	today := datemath.StartOfDay(s.now())

	result := &SweepResult{
		Updated: map[string]int{},
	}

	// Scheduled journeys whose start date has arrived become active before
	// the aging rules see them.
	activated, err := s.db.Exec(ctx, `
	UPDATE journeys
	SET status = $1, updated_at = NOW()
	WHERE status = $2 AND start_date <= $3`,
		lifecycle.StatusActive, lifecycle.StatusScheduled, today)
	if err != nil {
		return nil, fmt.Errorf("failed to activate scheduled journeys: %w", err)
	}
	if n := int(activated.RowsAffected()); n > 0 {
		result.Updated[string(lifecycle.StatusActive)] += n
		log.Printf("Lifecycle sweep: activated %d scheduled journeys", n)
	}

	query := fmt.Sprintf(`
	SELECT %s FROM journeys
	WHERE status NOT IN ($1, $2, $3, $4)`, journeyColumns)

	rows, err := s.db.Query(ctx, query,
		lifecycle.StatusCompleted, lifecycle.StatusDead, lifecycle.StatusPaused, lifecycle.StatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journeys for sweep: %w", err)
	}

	var candidates []*journey.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan journey: %w", err)
		}
		candidates = append(candidates, j)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journeys: %w", err)
	}

	result.Total = len(candidates)

	for _, j := range candidates {
		next, changed := planTransition(j, today)
		if !changed {
			continue
		}

		if err := s.applyTransition(ctx, j, next); err != nil {
			log.Printf("Lifecycle sweep: failed to update journey %s: %v", j.ID, err)
			result.Failed++
			continue
		}
		result.Updated[string(next)]++

		s.notifyTransition(j, next)
	}

	log.Printf("Lifecycle sweep: scanned %d, updated %v, failed %d", result.Total, result.Updated, result.Failed)
	return result, nil
}

// applyTransition persists one journey's status change. The frozen_at and
// dead_at stamps are set only on the first transition into that state, and
// entering frozen or dead resets the current streak.
func (s *LifecycleService) applyTransition(ctx context.Context, j *journey.Journey, next lifecycle.Status) error {
	switch next {
	case lifecycle.StatusFrozen:
		_, err := s.db.Exec(ctx, `
		UPDATE journeys
		SET status = $2, frozen_at = COALESCE(frozen_at, NOW()), current_streak = 0, updated_at = NOW()
		WHERE id = $1`, j.ID, next)
		return err
	case lifecycle.StatusDead:
		_, err := s.db.Exec(ctx, `
		UPDATE journeys
		SET status = $2, dead_at = COALESCE(dead_at, NOW()), current_streak = 0, updated_at = NOW()
		WHERE id = $1`, j.ID, next)
		return err
	default:
		_, err := s.db.Exec(ctx, `
		UPDATE journeys
		SET status = $2, updated_at = NOW()
		WHERE id = $1`, j.ID, next)
		return err
	}
}

func (s *LifecycleService) notifyTransition(j *journey.Journey, next lifecycle.Status) {
	if s.notifications == nil {
		return
	}

	var notifType notification.Type
	var title, body string
	switch next {
	case lifecycle.StatusFrozen:
		notifType = notification.TypeJourneyFrozen
		title = "Your journey froze"
		body = fmt.Sprintf("%q has gone %d days without a check-in. Check in today to thaw it.", j.Title, lifecycle.FreezeAfterDays)
	case lifecycle.StatusDead:
		notifType = notification.TypeJourneyDead
		title = "Your journey died"
		body = fmt.Sprintf("%q has gone %d days without a check-in. A new check-in can still revive it.", j.Title, lifecycle.DeathAfterDays)
	default:
		return
	}

	go s.notifications.NotifyJourneyEvent(context.Background(), j.UserID, notifType, title, body,
		map[string]any{"journey_id": j.ID.String()})
}
