package checkin

type CreateCheckInRequest struct {
	Date           string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Accomplishment string `json:"accomplishment"`
	Notes          string `json:"notes,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
}

type EditCheckInRequest struct {
	Accomplishment string `json:"accomplishment"`
	Notes          string `json:"notes,omitempty"`
}

// CheckInResult tells the client what the check-in did, so it can route to
// the celebration screen, the extend/complete prompt, or a plain success.
type CheckInResult struct {
	CheckIn       *CheckIn `json:"check_in"`
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	TotalCheckIns int      `json:"total_check_ins"`
	BecameArc     bool     `json:"became_arc"`
	TargetReached bool     `json:"target_reached"`
}
