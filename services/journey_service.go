package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"monkArcAPI/internal/arcstats"
	"monkArcAPI/internal/datemath"
	"monkArcAPI/internal/lifecycle"
	"monkArcAPI/internal/types/calendar"
	"monkArcAPI/internal/types/checkin"
	"monkArcAPI/internal/types/journey"
)

const journeyColumns = `id, user_id, journey_type, title, description, start_date, status, phase,
	target_check_ins, original_target, total_check_ins, current_streak, longest_streak,
	last_check_in_date, github_repo, paused_at, paused_days, frozen_at, dead_at,
	became_arc_at, completed_at, is_extended, times_extended, created_at, updated_at`

type JourneyService struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewJourneyService(db *pgxpool.Pool) *JourneyService {
	return &JourneyService{db: db, now: time.Now}
}

func scanJourney(row pgx.Row) (*journey.Journey, error) {
	j := &journey.Journey{}
	err := row.Scan(
		&j.ID, &j.UserID, &j.JourneyType, &j.Title, &j.Description, &j.StartDate,
		&j.Status, &j.Phase, &j.TargetCheckIns, &j.OriginalTarget, &j.TotalCheckIns,
		&j.CurrentStreak, &j.LongestStreak, &j.LastCheckInDate, &j.GithubRepo,
		&j.PausedAt, &j.PausedDays, &j.FrozenAt, &j.DeadAt, &j.BecameArcAt,
		&j.CompletedAt, &j.IsExtended, &j.TimesExtended, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JourneyService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
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

func (s *JourneyService) getOwnedJourney(ctx context.Context, userID, journeyID uuid.UUID) (*journey.Journey, error) {
	query := fmt.Sprintf(`SELECT %s FROM journeys WHERE id = $1 AND user_id = $2`, journeyColumns)

	j, err := scanJourney(s.db.QueryRow(ctx, query, journeyID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJourneyNotFound
		}
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}
	return j, nil
}

func (s *JourneyService) CreateJourney(ctx context.Context, clerkID string, req *journey.CreateJourneyRequest) (*journey.Journey, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	titleLen := len([]rune(req.Title))
	if titleLen < 1 || titleLen > 100 {
		return nil, fmt.Errorf("%w: title must be between 1 and 100 characters", ErrValidation)
	}
	if len([]rune(req.Description)) > 1000 {
		return nil, fmt.Errorf("%w: description must be at most 1000 characters", ErrValidation)
	}
	journeyType := lifecycle.JourneyType(req.JourneyType)
	if !lifecycle.ValidType(journeyType) {
		return nil, fmt.Errorf("%w: journey_type must be 'learning' or 'project'", ErrValidation)
	}
	if req.Target < 1 || req.Target > 365 {
		return nil, fmt.Errorf("%w: target_check_ins must be between 1 and 365", ErrValidation)
	}

	today := datemath.StartOfDay(s.now())
	startDate := today
	if req.StartDate != "" {
		startDate, err = datemath.ParseDate(req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrValidation)
		}
	}

	status := lifecycle.StatusActive
	if startDate.After(today) {
		status = lifecycle.StatusScheduled
	}

	var githubRepo *string
	if req.GithubRepo != "" {
		githubRepo = &req.GithubRepo
	}

	query := fmt.Sprintf(`
	INSERT INTO journeys (id, user_id, journey_type, title, description, start_date, status, phase,
		target_check_ins, original_target, github_repo, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	RETURNING %s`, journeyColumns)

	j, err := scanJourney(s.db.QueryRow(ctx, query,
		uuid.New(), userID, journeyType, req.Title, req.Description, startDate,
		status, lifecycle.PhaseSeed, req.Target, req.Target, githubRepo,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create journey: %w", err)
	}

	return j, nil
}

func (s *JourneyService) GetJourney(ctx context.Context, clerkID string, journeyID uuid.UUID) (*journey.JourneyDetail, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	j, err := s.getOwnedJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, journey_id, check_in_date, accomplishment, notes, word_count, prompt, commit_count, edited_at, created_at
	FROM check_ins
	WHERE journey_id = $1
	ORDER BY check_in_date DESC
	LIMIT 7`, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent check-ins: %w", err)
	}
	defer rows.Close()

	recent := []*checkin.CheckIn{}
	for rows.Next() {
		c := &checkin.CheckIn{}
		err := rows.Scan(&c.ID, &c.JourneyID, &c.CheckInDate, &c.Accomplishment, &c.Notes,
			&c.WordCount, &c.Prompt, &c.CommitCount, &c.EditedAt, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		recent = append(recent, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check-ins: %w", err)
	}

	return &journey.JourneyDetail{Journey: j, RecentCheckIns: recent}, nil
}

func (s *JourneyService) ListJourneys(ctx context.Context, clerkID string, statusFilter string) ([]*journey.Journey, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM journeys WHERE user_id = $1`, journeyColumns)
	args := []any{userID}

	if statusFilter != "" {
		if !lifecycle.ValidStatus(lifecycle.Status(statusFilter)) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, statusFilter)
		}
		query += ` AND status = $2`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	journeys := []*journey.Journey{}
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journey: %w", err)
		}
		journeys = append(journeys, j)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journeys: %w", err)
	}

	return journeys, nil
}

func (s *JourneyService) UpdateJourney(ctx context.Context, clerkID string, journeyID uuid.UUID, req *journey.UpdateJourneyRequest) (*journey.Journey, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	j, err := s.getOwnedJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if j.Status == lifecycle.StatusCompleted {
		return nil, ErrJourneyCompleted
	}

	if req.Title != "" && len([]rune(req.Title)) > 100 {
		return nil, fmt.Errorf("%w: title must be at most 100 characters", ErrValidation)
	}
	if len([]rune(req.Description)) > 1000 {
		return nil, fmt.Errorf("%w: description must be at most 1000 characters", ErrValidation)
	}

	query := fmt.Sprintf(`
	UPDATE journeys
	SET
		title = COALESCE(NULLIF($3, ''), title),
		description = COALESCE(NULLIF($4, ''), description),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING %s`, journeyColumns)

	updated, err := scanJourney(s.db.QueryRow(ctx, query, journeyID, userID, req.Title, req.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to update journey: %w", err)
	}

	return updated, nil
}

func (s *JourneyService) DeleteJourney(ctx context.Context, clerkID string, journeyID uuid.UUID) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM journeys WHERE id = $1 AND user_id = $2`, journeyID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrJourneyNotFound
	}

	return nil
}

func (s *JourneyService) PauseJourney(ctx context.Context, clerkID string, journeyID uuid.UUID) (*journey.Journey, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	j, err := s.getOwnedJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if j.Status == lifecycle.StatusCompleted {
		return nil, ErrJourneyCompleted
	}
	if !lifecycle.CanTransition(j.Status, lifecycle.StatusPaused) {
		return nil, fmt.Errorf("%w: cannot pause a %s journey", ErrValidation, j.Status)
	}
	if j.Status == lifecycle.StatusPaused {
		return j, nil
	}

	query := fmt.Sprintf(`
	UPDATE journeys
	SET status = $3, paused_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING %s`, journeyColumns)

	updated, err := scanJourney(s.db.QueryRow(ctx, query, journeyID, userID, lifecycle.StatusPaused))
	if err != nil {
		return nil, fmt.Errorf("failed to pause journey: %w", err)
	}

	return updated, nil
}

func (s *JourneyService) ResumeJourney(ctx context.Context, clerkID string, journeyID uuid.UUID) (*journey.Journey, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	j, err := s.getOwnedJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if j.Status != lifecycle.StatusPaused {
		return nil, fmt.Errorf("%w: journey is not paused", ErrValidation)
	}

	pausedDays := 0
	if j.PausedAt != nil {
		pausedDays = datemath.DaysBetween(*j.PausedAt, s.now())
		if pausedDays < 0 {
			pausedDays = 0
		}
	}

	query := fmt.Sprintf(`
	UPDATE journeys
	SET status = $3, paused_at = NULL, paused_days = paused_days + $4, updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING %s`, journeyColumns)

	updated, err := scanJourney(s.db.QueryRow(ctx, query, journeyID, userID, lifecycle.StatusActive, pausedDays))
	if err != nil {
		return nil, fmt.Errorf("failed to resume journey: %w", err)
	}

	return updated, nil
}

func (s *JourneyService) ExtendJourney(ctx context.Context, clerkID string, journeyID uuid.UUID, daysToAdd int) (*journey.Journey, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if daysToAdd < 1 || daysToAdd > 30 {
		return nil, fmt.Errorf("%w: days must be between 1 and 30", ErrValidation)
	}

	j, err := s.getOwnedJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if j.Status == lifecycle.StatusCompleted {
		return nil, ErrJourneyCompleted
	}
	if !j.TargetReached() {
		return nil, fmt.Errorf("%w: target not reached yet (%d of %d check-ins)", ErrValidation, j.TotalCheckIns, j.TargetCheckIns)
	}

	// Extended is a display state for journeys still actively checking in;
	// frozen/dead journeys keep their status until the next check-in revives
	// them.
	newStatus := j.Status
	if lifecycle.CanTransition(j.Status, lifecycle.StatusExtended) && j.Status == lifecycle.StatusActive {
		newStatus = lifecycle.StatusExtended
	}

	query := fmt.Sprintf(`
	UPDATE journeys
	SET target_check_ins = target_check_ins + $3,
		is_extended = TRUE,
		times_extended = times_extended + 1,
		status = $4,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING %s`, journeyColumns)

	updated, err := scanJourney(s.db.QueryRow(ctx, query, journeyID, userID, daysToAdd, newStatus))
	if err != nil {
		return nil, fmt.Errorf("failed to extend journey: %w", err)
	}

	log.Printf("ExtendJourney: %s extended by %d days (target now %d)", journeyID, daysToAdd, updated.TargetCheckIns)
	return updated, nil
}

func (s *JourneyService) CompleteJourney(ctx context.Context, clerkID string, journeyID uuid.UUID) (*journey.Journey, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	j, err := s.getOwnedJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanTransition(j.Status, lifecycle.StatusCompleted) {
		return nil, ErrJourneyCompleted
	}
	// Completion is earned the same way extension is: the target must be
	// met first. Journeys abandoned short of it stay deletable instead.
	if !j.TargetReached() {
		return nil, fmt.Errorf("%w: target not reached yet (%d of %d check-ins)", ErrValidation, j.TotalCheckIns, j.TargetCheckIns)
	}

	query := fmt.Sprintf(`
	UPDATE journeys
	SET status = $3, completed_at = NOW(), paused_at = NULL, updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING %s`, journeyColumns)

	updated, err := scanJourney(s.db.QueryRow(ctx, query, journeyID, userID, lifecycle.StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to complete journey: %w", err)
	}

	log.Printf("CompleteJourney: %s completed with %d check-ins", journeyID, updated.TotalCheckIns)
	return updated, nil
}

func (s *JourneyService) GetArcSummary(ctx context.Context, clerkID string, journeyID uuid.UUID) (*arcstats.Summary, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	j, err := s.getOwnedJourney(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if j.Status != lifecycle.StatusCompleted {
		return nil, fmt.Errorf("%w: arc summary is only available for completed journeys", ErrValidation)
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, journey_id, check_in_date, accomplishment, notes, word_count, prompt, commit_count, edited_at, created_at
	FROM check_ins
	WHERE journey_id = $1
	ORDER BY check_in_date`, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []*checkin.CheckIn
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

	return arcstats.Summarize(j, checkIns), nil
}

func (s *JourneyService) GetCalendar(ctx context.Context, clerkID string, journeyID uuid.UUID, year int, month int) (*calendar.CalendarResponse, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if _, err := s.getOwnedJourney(ctx, userID, journeyID); err != nil {
		return nil, err
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	rows, err := s.db.Query(ctx, `
	SELECT check_in_date
	FROM check_ins
	WHERE journey_id = $1
		AND check_in_date >= $2
		AND check_in_date <= $3
	ORDER BY check_in_date`, journeyID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	dayMap := make(map[string]bool)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		dayMap[datemath.DayKey(date)] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar rows: %w", err)
	}

	var days []*calendar.CalendarDay
	today := datemath.DayKey(s.now())

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := datemath.DayKey(d)
		days = append(days, &calendar.CalendarDay{
			Date:      d,
			CheckedIn: dayMap[dateStr],
			IsToday:   dateStr == today,
		})
	}

	return &calendar.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}
