package journey

import (
	"monkArcAPI/internal/types/checkin"
)

type CreateJourneyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	JourneyType string `json:"journey_type"`
	Target      int    `json:"target_check_ins"`
	StartDate   string `json:"start_date,omitempty"` // YYYY-MM-DD, defaults to today
	GithubRepo  string `json:"github_repo,omitempty"`
}

type UpdateJourneyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ExtendJourneyRequest struct {
	Days int `json:"days"`
}

// JourneyDetail is the journey page payload: the journey plus its most
// recent check-ins.
type JourneyDetail struct {
	Journey        *Journey           `json:"journey"`
	RecentCheckIns []*checkin.CheckIn `json:"recent_check_ins"`
}
