package types

import (
	"time"

	"github.com/google/uuid"
)

// StopInterval is one downtime ledger entry. EndTime == nil means the
// interval is open, i.e. downtime currently in progress.
type StopInterval struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	Reason          string     `json:"reason"`
	Category        string     `json:"category"`
	Notes           string     `json:"notes,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	ResolvedBy      *uuid.UUID `json:"resolved_by,omitempty"`
}

// StopSpec opens a new interval.
type StopSpec struct {
	OrderID   uuid.UUID
	Reason    string
	Category  string
	Notes     string
	StartTime time.Time
	CreatedBy *uuid.UUID
}

// StopFilter narrows aggregate queries. Zero values mean "any".
type StopFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

type CategoryStat struct {
	Count        int `json:"count"`
	TotalMinutes int `json:"total_minutes"`
}

// StopSummary is the aggregate view over closed and open intervals.
type StopSummary struct {
	Count        int                     `json:"count"`
	TotalMinutes int                     `json:"total_minutes"`
	ByCategory   map[string]CategoryStat `json:"by_category"`
}
