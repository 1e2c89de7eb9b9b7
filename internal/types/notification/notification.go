package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type names the lifecycle events that trigger a push.
type Type string

const (
	TypeJourneyFrozen Type = "journey_frozen"
	TypeJourneyDead   Type = "journey_dead"
	TypeBecameArc     Type = "became_arc"
	TypeTargetReached Type = "target_reached"
)

type DeviceToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
