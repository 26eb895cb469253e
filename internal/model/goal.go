package model

import "time"

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

// Goal status constants.
const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalPaused     GoalStatus = "paused"
	GoalCancelled  GoalStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalNotStarted, GoalInProgress, GoalCompleted, GoalPaused, GoalCancelled:
		return true
	}
	return false
}

// Active reports whether a goal in this status still counts toward the
// savings summary.
func (s GoalStatus) Active() bool {
	return s == GoalNotStarted || s == GoalInProgress
}

// Goal is a long-term savings target.
type Goal struct {
	StartDate     time.Time
	TargetDate    time.Time
	CreatedAt     time.Time
	CompletedDate *time.Time
	AccountID     *int
	Name          string
	Description   string
	Color         string
	Status        GoalStatus
	TargetAmount  float64
	CurrentAmount float64
	Priority      int // 1-5, 5 highest
	ID            int
}
