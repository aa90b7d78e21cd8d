package domain

import (
	"errors"

	"Tray-Validation-Backend/entities"
)

const (
	StepFoodValidation   = "FOOD_VALIDATION"
	StepPlateValidation  = "PLATE_VALIDATION"
	StepBuzzerValidation = "BUZZER_VALIDATION"

	StepStatusPending    = "pending"
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
	StepStatusSkipped    = "skipped"

	WorkLogStatusPending   = "pending"
	WorkLogStatusActive    = "active"
	WorkLogStatusCompleted = "completed"
	WorkLogStatusAbandoned = "abandoned"

	ValidationModeQuick = "quick"
	ValidationModeEdit  = "edit"
)

var (
	MessageSuccessGetSession     = "validation session retrieved successfully"
	MessageSuccessComplete       = "validation completed successfully"
	MessageSuccessAbandon        = "validation abandoned successfully"
	MessageSuccessNextStep       = "advanced to next validation step"
	MessageSuccessReset          = "validation session reset successfully"
	MessageSuccessHeartbeat      = "heartbeat recorded"
	MessageSuccessClaimWorkLog   = "work log claimed successfully"

	MessageFailedGetSession   = "failed to retrieve validation session"
	MessageFailedComplete     = "failed to complete validation"
	MessageFailedAbandon      = "failed to abandon validation"
	MessageFailedNextStep     = "failed to advance validation step"
	MessageFailedReset        = "failed to reset validation session"
	MessageFailedHeartbeat    = "failed to record heartbeat"
	MessageFailedClaimWorkLog = "no work log available to claim"

	ErrWorkLogNotFound     = errors.New("work log not found")
	ErrWorkLogNotActive    = errors.New("work log is not active")
	ErrWorkLogTerminal     = errors.New("work log already completed or abandoned")
	ErrNotLastStep         = errors.New("completion is only reachable from the last step")
	ErrNoStepsRemaining    = errors.New("no validation steps remaining")
	ErrNoPendingWork       = errors.New("no pending work log available")
	ErrValidationIncomplete = errors.New("validation errors remain, cannot complete")
)

type (
	// ValidationSessionSnapshot is the full payload of
	// GET /validation-session/:workLogId, everything a review session needs.
	ValidationSessionSnapshot struct {
		WorkLog           *entities.ValidationWorkLog `json:"work_log"`
		Recognition       *entities.Recognition       `json:"recognition"`
		Images            []entities.Image            `json:"images"`
		Recipe            *entities.Recipe            `json:"recipe,omitempty"`
		RecipeLines       []entities.RecipeLine       `json:"recipe_lines"`
		RecipeLineOptions []entities.RecipeLineOption `json:"recipe_line_options"`
		ActiveMenu        []entities.MenuEntry        `json:"active_menu"`
		Items             []entities.WorkItem         `json:"items"`
		Annotations       []entities.WorkAnnotation   `json:"annotations"`
	}

	WorkLogRequest struct {
		WorkLogID int64 `json:"work_log_id" validate:"required"`
	}

	NextStepRequest struct {
		WorkLogID int64 `json:"work_log_id" validate:"required"`
		Skip      bool  `json:"skip"`
	}

	NextStepResponse struct {
		NewStepIndex int                      `json:"new_step_index"` // -1 once the work log is finalized
		CurrentStep  *entities.ValidationStep `json:"current_step,omitempty"`
		Completed    bool                     `json:"completed"`
	}

	ResetResponse struct {
		Items       []entities.WorkItem       `json:"items"`
		Annotations []entities.WorkAnnotation `json:"annotations"`
	}

	ClaimWorkLogResponse struct {
		WorkLogID int64 `json:"work_log_id"`
	}
)
