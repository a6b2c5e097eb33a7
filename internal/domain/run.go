package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RunRecord is a completed simulation run as written to the results sink.
type RunRecord struct {
	ID          string        `json:"id"`
	Preset      string        `json:"preset"`
	Params      Params        `json:"params"`
	Results     ImpactResults `json:"results"`
	CompletedAt time.Time     `json:"completed_at"`
}

// ResultPublisher delivers completed runs to an external sink.
type ResultPublisher interface {
	Publish(ctx context.Context, record RunRecord) error
}

// NewRunRecord stamps a completed run with a deterministic ID.
func NewRunRecord(preset string, p Params, results ImpactResults, completedAt time.Time) RunRecord {
	completedAt = completedAt.UTC()
	return RunRecord{
		ID:          generateRunID(p, completedAt),
		Preset:      preset,
		Params:      p,
		Results:     results,
		CompletedAt: completedAt,
	}
}

// generateRunID hashes the parameters and completion time so replaying the
// same record downstream yields the same key.
func generateRunID(p Params, completedAt time.Time) string {
	input := fmt.Sprintf("%g|%g|%g|%s", p.Diameter, p.Speed, p.Angle, completedAt.Format(time.RFC3339Nano))
	hash := sha256.Sum256([]byte(input))
	return "run-" + hex.EncodeToString(hash[:8])
}
