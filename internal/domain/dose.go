package domain

import (
	"context"
	"time"
)

// Dose types. A bolus and a basal segment may share a timestamp, so
// uniqueness is on (time, type).
const (
	DoseBolus = "bolus"
	DoseBasal = "basal"
)

// Dose is a single insulin delivery event. Units holds units delivered
// for a bolus and units/hour for a basal segment.
type Dose struct {
	Time            time.Time `json:"time"`
	Type            string    `json:"type"`
	Units           float64   `json:"units"`
	SubType         string    `json:"subType,omitempty"`
	DurationSeconds *float64  `json:"durationSeconds,omitempty"`
	Source          string    `json:"source"`
}

// DoseRepository is the port for insulin dose persistence.
type DoseRepository interface {
	UpsertDoses(ctx context.Context, doses []Dose) (int, error)
	ListDosesBetween(ctx context.Context, start, end time.Time) ([]Dose, error)
}
