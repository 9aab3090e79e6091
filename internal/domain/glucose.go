// Package domain contains the canonical record types and the ports they
// flow through. Every external source is normalized into these shapes
// before anything touches storage.
package domain

import (
	"context"
	"time"
)

// Reading is a single continuous-glucose-monitor sample. Time is the
// unique key; duplicate timestamps are ignored on insert.
type Reading struct {
	Time      time.Time `json:"time"`
	ValueMgdl float64   `json:"valueMgdl"`
	Trend     string    `json:"trend,omitempty"`
	Source    string    `json:"source"`
}

// GlucoseRepository is the port for glucose persistence.
type GlucoseRepository interface {
	UpsertReadings(ctx context.Context, readings []Reading) (int, error)
	ListReadingsBetween(ctx context.Context, start, end time.Time) ([]Reading, error)
}
