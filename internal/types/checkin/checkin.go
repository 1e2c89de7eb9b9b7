package checkin

import (
	"time"

	"github.com/google/uuid"
)

type CheckIn struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	JourneyID      uuid.UUID  `json:"journey_id" db:"journey_id"`
	CheckInDate    time.Time  `json:"check_in_date" db:"check_in_date"`
	Accomplishment string     `json:"accomplishment" db:"accomplishment"`
	Notes          *string    `json:"notes,omitempty" db:"notes"`
	WordCount      int        `json:"word_count" db:"word_count"`
	Prompt         *string    `json:"prompt,omitempty" db:"prompt"`
	CommitCount    int        `json:"commit_count" db:"commit_count"`
	EditedAt       *time.Time `json:"edited_at,omitempty" db:"edited_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
