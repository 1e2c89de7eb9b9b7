package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"monkArcAPI/internal/datemath"
	"monkArcAPI/internal/lifecycle"
	"monkArcAPI/internal/streak"
	"monkArcAPI/internal/types/checkin"
	"monkArcAPI/internal/types/journey"
	"monkArcAPI/internal/types/notification"
)

// Accomplishment and notes bounds, in characters.
const (
	accomplishmentMinLen = 10
	accomplishmentMaxLen = 500
	notesMaxLen          = 2000
)

// CommitFetcher is the optional external commit lookup. Failures degrade to
// zero commits.
type CommitFetcher interface {
	CommitsForDate(ctx context.Context, repo string, date time.Time) (int, error)
}

type CheckInService struct {
	db            *pgxpool.Pool
	commits       CommitFetcher
	notifications *NotificationService
	now           func() time.Time
}

func NewCheckInService(db *pgxpool.Pool, commits CommitFetcher, notifications *NotificationService) *CheckInService {
	return &CheckInService{
		db:            db,
		commits:       commits,
		notifications: notifications,
		now:           time.Now,
	}
}

// checkInPlan is the computed outcome of a check-in before anything is
// written: the new aggregates plus the signals the client needs. The streak
// and lastCheckIn always describe the journey's latest check-in, so a
// back-dated entry never moves either backward, though it can lengthen the
// streak by bridging a gap in the history.
type checkInPlan struct {
	streak        int
	longestStreak int
	totalCheckIns int
	lastCheckIn   time.Time
	isLatest      bool
	phase         lifecycle.Phase
	becameArc     bool
	targetReached bool
	hitTarget     bool
}

// planCheckIn computes the journey aggregates that recording a check-in on
// date would produce. Pure; callers have already rejected duplicates.
func planCheckIn(j *journey.Journey, existingDates []time.Time, date time.Time) checkInPlan {
	anchor := datemath.StartOfDay(date)
	for _, d := range existingDates {
		if datemath.StartOfDay(d).After(anchor) {
			anchor = datemath.StartOfDay(d)
		}
	}

	all := make([]time.Time, 0, len(existingDates)+1)
	all = append(all, existingDates...)
	all = append(all, date)

	p := checkInPlan{
		streak:        streak.Compute(all, anchor),
		totalCheckIns: j.TotalCheckIns + 1,
		lastCheckIn:   anchor,
		isLatest:      datemath.SameDay(anchor, date),
		phase:         j.Phase,
	}

	p.longestStreak = j.LongestStreak
	if p.streak > p.longestStreak {
		p.longestStreak = p.streak
	}

	if p.totalCheckIns >= j.TargetCheckIns {
		p.targetReached = true
		// hitTarget marks the exact crossing, so an extended journey
		// reaching its new target pings once instead of on every
		// check-in past it.
		p.hitTarget = p.totalCheckIns == j.TargetCheckIns
		if j.Phase == lifecycle.PhaseSeed {
			p.phase = lifecycle.PhaseArc
			p.becameArc = true
		}
	}

	return p
}

func wordCount(accomplishment, notes string) int {
	return len(strings.Fields(accomplishment + " " + notes))
}

func (s *CheckInService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

// RecordCheckIn is the single write path for daily progress. It validates,
// computes the streak and phase transition, and persists the check-in row
// plus the journey aggregates in one transaction.
func (s *CheckInService) RecordCheckIn(ctx context.Context, clerkID string, journeyID uuid.UUID, req *checkin.CreateCheckInRequest) (*checkin.CheckInResult, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	accomplishmentLen := len([]rune(req.Accomplishment))
	if accomplishmentLen < accomplishmentMinLen || accomplishmentLen > accomplishmentMaxLen {
		return nil, fmt.Errorf("%w: accomplishment must be between %d and %d characters",
			ErrValidation, accomplishmentMinLen, accomplishmentMaxLen)
	}
	if len([]rune(req.Notes)) > notesMaxLen {
		return nil, fmt.Errorf("%w: notes must be at most %d characters", ErrValidation, notesMaxLen)
	}

	query := fmt.Sprintf(`SELECT %s FROM journeys WHERE id = $1 AND user_id = $2`, journeyColumns)
	j, err := scanJourney(s.db.QueryRow(ctx, query, journeyID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJourneyNotFound
		}
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}

	if j.Status == lifecycle.StatusCompleted {
		return nil, ErrJourneyCompleted
	}
	if j.Status == lifecycle.StatusPaused {
		return nil, ErrJourneyPaused
	}

	today := datemath.StartOfDay(s.now())
	date := today
	if req.Date != "" {
		date, err = datemath.ParseDate(req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
		}
	}
	if date.After(today) {
		return nil, fmt.Errorf("%w: cannot check in for a future date", ErrValidation)
	}
	if date.Before(datemath.StartOfDay(j.StartDate)) {
		return nil, fmt.Errorf("%w: cannot check in before the journey start date", ErrValidation)
	}

	// Commit lookup is best-effort; the check-in must not fail because
	// GitHub is unreachable. It runs before the transaction so an external
	// call never sits inside one holding the journey row lock.
	commitCount := 0
	if j.GithubRepo != nil && s.commits != nil {
		commitCount, err = s.commits.CommitsForDate(ctx, *j.GithubRepo, date)
		if err != nil {
			log.Printf("RecordCheckIn: commit fetch failed for %s: %v", *j.GithubRepo, err)
			commitCount = 0
		}
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	var prompt *string
	if req.Prompt != "" {
		prompt = &req.Prompt
	}

	c := &checkin.CheckIn{
		ID:             uuid.New(),
		JourneyID:      journeyID,
		CheckInDate:    date,
		Accomplishment: req.Accomplishment,
		Notes:          notes,
		WordCount:      wordCount(req.Accomplishment, req.Notes),
		Prompt:         prompt,
		CommitCount:    commitCount,
	}

	// The aggregate read and write happen under a row lock in one
	// transaction, so concurrent check-ins for different dates serialize
	// and each one plans against the other's committed state.
	var plan checkInPlan
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		lockQuery := fmt.Sprintf(`SELECT %s FROM journeys WHERE id = $1 FOR UPDATE`, journeyColumns)
		locked, err := scanJourney(tx.QueryRow(ctx, lockQuery, journeyID))
		if err != nil {
			return fmt.Errorf("failed to lock journey: %w", err)
		}
		if locked.Status == lifecycle.StatusCompleted {
			return ErrJourneyCompleted
		}
		if locked.Status == lifecycle.StatusPaused {
			return ErrJourneyPaused
		}

		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM check_ins WHERE journey_id = $1 AND check_in_date = $2)`,
			journeyID, date).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check for existing check-in: %w", err)
		}
		if exists {
			return ErrDuplicateCheckIn
		}

		rows, err := tx.Query(ctx, `SELECT check_in_date FROM check_ins WHERE journey_id = $1`, journeyID)
		if err != nil {
			return fmt.Errorf("failed to fetch check-in dates: %w", err)
		}
		var existingDates []time.Time
		for rows.Next() {
			var d time.Time
			if err := rows.Scan(&d); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan check-in date: %w", err)
			}
			existingDates = append(existingDates, d)
		}
		rows.Close()
		if err = rows.Err(); err != nil {
			return fmt.Errorf("error iterating check-in dates: %w", err)
		}

		plan = planCheckIn(locked, existingDates, date)

		err = tx.QueryRow(ctx, `
		INSERT INTO check_ins (id, journey_id, check_in_date, accomplishment, notes, word_count, prompt, commit_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at`,
			c.ID, c.JourneyID, c.CheckInDate, c.Accomplishment, c.Notes, c.WordCount, c.Prompt, c.CommitCount,
		).Scan(&c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert check-in: %w", err)
		}

		// Only a check-in for the journey's newest date revives it to
		// active and clears the freeze/death stamps; a backfill leaves the
		// status and last_check_in_date where they were.
		_, err = tx.Exec(ctx, `
		UPDATE journeys
		SET total_check_ins = total_check_ins + 1,
			current_streak = $2,
			longest_streak = $3,
			last_check_in_date = $4,
			phase = $5,
			became_arc_at = CASE WHEN $6 THEN NOW() ELSE became_arc_at END,
			status = CASE WHEN $7 THEN $8 ELSE status END,
			frozen_at = CASE WHEN $7 THEN NULL ELSE frozen_at END,
			dead_at = CASE WHEN $7 THEN NULL ELSE dead_at END,
			updated_at = NOW()
		WHERE id = $1`,
			journeyID, plan.streak, plan.longestStreak, plan.lastCheckIn,
			plan.phase, plan.becameArc, plan.isLatest, lifecycle.StatusActive,
		)
		if err != nil {
			return fmt.Errorf("failed to update journey aggregates: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrJourneyCompleted) || errors.Is(err, ErrJourneyPaused) || errors.Is(err, ErrDuplicateCheckIn) {
			return nil, err
		}
		// A concurrent check-in for the same date loses the race at the
		// unique index on (journey_id, check_in_date).
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCheckIn
		}
		return nil, fmt.Errorf("check-in transaction failed: %w", err)
	}

	if s.notifications != nil {
		switch {
		case plan.becameArc:
			go s.notifications.NotifyJourneyEvent(context.Background(), userID, notification.TypeBecameArc,
				"Your journey became an Arc!",
				fmt.Sprintf("%q reached %d check-ins. Keep going or complete it.", j.Title, plan.totalCheckIns),
				map[string]any{"journey_id": journeyID.String()})
		case plan.hitTarget:
			go s.notifications.NotifyJourneyEvent(context.Background(), userID, notification.TypeTargetReached,
				"Target reached!",
				fmt.Sprintf("%q hit its extended target of %d check-ins.", j.Title, plan.totalCheckIns),
				map[string]any{"journey_id": journeyID.String()})
		}
	}

	return &checkin.CheckInResult{
		CheckIn:       c,
		CurrentStreak: plan.streak,
		LongestStreak: plan.longestStreak,
		TotalCheckIns: plan.totalCheckIns,
		BecameArc:     plan.becameArc,
		TargetReached: plan.targetReached,
	}, nil
}

func (s *CheckInService) ListCheckIns(ctx context.Context, clerkID string, journeyID uuid.UUID) ([]*checkin.CheckIn, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM journeys WHERE id = $1 AND user_id = $2)`,
		journeyID, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to verify journey: %w", err)
	}
	if !exists {
		return nil, ErrJourneyNotFound
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, journey_id, check_in_date, accomplishment, notes, word_count, prompt, commit_count, edited_at, created_at
	FROM check_ins
	WHERE journey_id = $1
	ORDER BY check_in_date DESC`, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	checkIns := []*checkin.CheckIn{}
	for rows.Next() {
		c := &checkin.CheckIn{}
		err := rows.Scan(&c.ID, &c.JourneyID, &c.CheckInDate, &c.Accomplishment, &c.Notes,
			&c.WordCount, &c.Prompt, &c.CommitCount, &c.EditedAt, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkIns = append(checkIns, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check-ins: %w", err)
	}

	return checkIns, nil
}

// EditCheckIn updates accomplishment and notes only. The date and journey
// binding never change, and completed journeys are immutable.
func (s *CheckInService) EditCheckIn(ctx context.Context, clerkID string, checkInID uuid.UUID, req *checkin.EditCheckInRequest) (*checkin.CheckIn, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	accomplishmentLen := len([]rune(req.Accomplishment))
	if accomplishmentLen < accomplishmentMinLen || accomplishmentLen > accomplishmentMaxLen {
		return nil, fmt.Errorf("%w: accomplishment must be between %d and %d characters",
			ErrValidation, accomplishmentMinLen, accomplishmentMaxLen)
	}
	if len([]rune(req.Notes)) > notesMaxLen {
		return nil, fmt.Errorf("%w: notes must be at most %d characters", ErrValidation, notesMaxLen)
	}

	var journeyStatus lifecycle.Status
	err = s.db.QueryRow(ctx, `
	SELECT j.status
	FROM check_ins c
	JOIN journeys j ON j.id = c.journey_id
	WHERE c.id = $1 AND j.user_id = $2`, checkInID, userID).Scan(&journeyStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("failed to fetch check-in: %w", err)
	}
	if journeyStatus == lifecycle.StatusCompleted {
		return nil, ErrJourneyCompleted
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	c := &checkin.CheckIn{}
	err = s.db.QueryRow(ctx, `
	UPDATE check_ins
	SET accomplishment = $2,
		notes = $3,
		word_count = $4,
		edited_at = NOW()
	WHERE id = $1
	RETURNING id, journey_id, check_in_date, accomplishment, notes, word_count, prompt, commit_count, edited_at, created_at`,
		checkInID, req.Accomplishment, notes, wordCount(req.Accomplishment, req.Notes),
	).Scan(&c.ID, &c.JourneyID, &c.CheckInDate, &c.Accomplishment, &c.Notes,
		&c.WordCount, &c.Prompt, &c.CommitCount, &c.EditedAt, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to edit check-in: %w", err)
	}

	return c, nil
}
