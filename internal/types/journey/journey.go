package journey

import (
	"time"

	"github.com/google/uuid"

	"monkArcAPI/internal/lifecycle"
)

type Journey struct {
	ID              uuid.UUID             `json:"id" db:"id"`
	UserID          uuid.UUID             `json:"user_id" db:"user_id"`
	JourneyType     lifecycle.JourneyType `json:"journey_type" db:"journey_type"`
	Title           string                `json:"title" db:"title"`
	Description     string                `json:"description" db:"description"`
	StartDate       time.Time             `json:"start_date" db:"start_date"`
	Status          lifecycle.Status      `json:"status" db:"status"`
	Phase           lifecycle.Phase       `json:"phase" db:"phase"`
	TargetCheckIns  int                   `json:"target_check_ins" db:"target_check_ins"`
	OriginalTarget  int                   `json:"original_target" db:"original_target"`
	TotalCheckIns   int                   `json:"total_check_ins" db:"total_check_ins"`
	CurrentStreak   int                   `json:"current_streak" db:"current_streak"`
	LongestStreak   int                   `json:"longest_streak" db:"longest_streak"`
	LastCheckInDate *time.Time            `json:"last_check_in_date,omitempty" db:"last_check_in_date"`
	GithubRepo      *string               `json:"github_repo,omitempty" db:"github_repo"`
	PausedAt        *time.Time            `json:"paused_at,omitempty" db:"paused_at"`
	PausedDays      int                   `json:"paused_days" db:"paused_days"`
	FrozenAt        *time.Time            `json:"frozen_at,omitempty" db:"frozen_at"`
	DeadAt          *time.Time            `json:"dead_at,omitempty" db:"dead_at"`
	BecameArcAt     *time.Time            `json:"became_arc_at,omitempty" db:"became_arc_at"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty" db:"completed_at"`
	IsExtended      bool                  `json:"is_extended" db:"is_extended"`
	TimesExtended   int                   `json:"times_extended" db:"times_extended"`
	CreatedAt       time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at" db:"updated_at"`
}

// TargetReached reports whether the journey has logged at least its current
// target of check-ins.
func (j *Journey) TargetReached() bool {
	return j.TotalCheckIns >= j.TargetCheckIns
}
