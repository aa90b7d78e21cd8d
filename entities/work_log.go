package entities

import (
	"time"

	"github.com/google/uuid"
)

// ValidationStep is one entry of a work log's ordered step list, stored as JSONB.
type ValidationStep struct {
	Type   string `json:"type"`   // "FOOD_VALIDATION", "PLATE_VALIDATION", "BUZZER_VALIDATION"
	Status string `json:"status"` // "pending", "in_progress", "completed", "skipped"
}

// ValidationWorkLog is one reviewer's claim on a recognition's validation task,
// possibly spanning multiple ordered steps.
type ValidationWorkLog struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RecognitionID int64      `gorm:"index" json:"recognition_id"`
	AssignedTo    *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to,omitempty"`

	Status           string           `json:"status"` // "pending", "active", "completed", "abandoned"
	ValidationSteps  []ValidationStep `gorm:"serializer:json" json:"validation_steps"`
	CurrentStepIndex int              `json:"current_step_index"`

	LastActivityAt *time.Time `gorm:"type:timestamp" json:"last_activity_at,omitempty"`
	CompletedAt    *time.Time `gorm:"type:timestamp" json:"completed_at,omitempty"`

	Assignee *Profile `gorm:"foreignKey:AssignedTo" json:"-"`
	Timestamp
}

// CurrentStep returns the active step, or nil when the index is out of range.
func (w *ValidationWorkLog) CurrentStep() *ValidationStep {
	if w.CurrentStepIndex < 0 || w.CurrentStepIndex >= len(w.ValidationSteps) {
		return nil
	}
	return &w.ValidationSteps[w.CurrentStepIndex]
}

// IsLastStep reports whether the active step is the final one of the work log.
func (w *ValidationWorkLog) IsLastStep() bool {
	return len(w.ValidationSteps) > 0 && w.CurrentStepIndex == len(w.ValidationSteps)-1
}
