package lifecycle

// Status is the lifecycle state of a journey.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusFrozen    Status = "frozen"
	StatusDead      Status = "dead"
	StatusCompleted Status = "completed"
	StatusExtended  Status = "extended"
	StatusScheduled Status = "scheduled"
)

// Phase tracks whether a journey has reached its target yet.
type Phase string

const (
	PhaseSeed Phase = "seed"
	PhaseArc  Phase = "arc"
)

// JourneyType distinguishes what kind of goal a journey tracks.
type JourneyType string

const (
	TypeLearning JourneyType = "learning"
	TypeProject  JourneyType = "project"
)

// Inactivity thresholds, in whole days without a check-in.
const (
	FreezeAfterDays = 3
	DeathAfterDays  = 7
)

// NextStatus computes the status a journey should hold given its current
// status, the number of whole days since its last check-in (or since its
// start date if it has never checked in), and whether the owner has paused
// it. Pure function; the caller applies any side effects (frozen_at/dead_at
// stamps, streak reset).
func NextStatus(current Status, daysSinceLastCheckIn int, isPaused bool) Status {
	if current == StatusCompleted {
		return StatusCompleted
	}
	if isPaused {
		return StatusPaused
	}
	switch {
	case daysSinceLastCheckIn >= DeathAfterDays:
		return StatusDead
	case daysSinceLastCheckIn >= FreezeAfterDays:
		return StatusFrozen
	default:
		return StatusActive
	}
}

// transitions is the explicit state machine consulted by every mutating
// operation. Completed has no outgoing edges anywhere.
var transitions = map[Status]map[Status]bool{
	StatusScheduled: {
		StatusActive:    true,
		StatusCompleted: true,
	},
	StatusActive: {
		StatusPaused:    true,
		StatusFrozen:    true,
		StatusDead:      true,
		StatusExtended:  true,
		StatusCompleted: true,
	},
	StatusPaused: {
		StatusActive:    true,
		StatusCompleted: true,
	},
	StatusFrozen: {
		StatusActive:    true,
		StatusDead:      true,
		StatusCompleted: true,
	},
	StatusDead: {
		StatusActive:    true,
		StatusCompleted: true,
	},
	StatusExtended: {
		StatusActive:    true,
		StatusPaused:    true,
		StatusFrozen:    true,
		StatusDead:      true,
		StatusCompleted: true,
	},
	StatusCompleted: {},
}

// CanTransition reports whether a journey may move from one status to
// another. Staying in the same status is always allowed except out of
// nothing; completed accepts no transitions at all.
func CanTransition(from, to Status) bool {
	if from == StatusCompleted {
		return false
	}
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// ValidStatus reports whether s is a known journey status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPaused, StatusFrozen, StatusDead,
		StatusCompleted, StatusExtended, StatusScheduled:
		return true
	}
	return false
}

// ValidType reports whether t is a known journey type.
func ValidType(t JourneyType) bool {
	return t == TypeLearning || t == TypeProject
}
