package session

import (
	"context"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

// Backend is everything a validation session needs from the persistence
// service. Create calls return the server-assigned ID; the session remaps its
// temporary IDs through it. Implementations must only report success when the
// server confirmed the write.
type Backend interface {
	FetchSession(ctx context.Context, workLogID int64) (*domain.ValidationSessionSnapshot, error)

	CreateItem(ctx context.Context, item *entities.WorkItem) (int64, error)
	UpdateItem(ctx context.Context, item *entities.WorkItem) error
	DeleteItem(ctx context.Context, id int64) error

	CreateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) (int64, error)
	UpdateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) error
	DeleteAnnotation(ctx context.Context, id int64) error

	Complete(ctx context.Context, workLogID int64) error
	Abandon(ctx context.Context, workLogID int64) error
	NextStep(ctx context.Context, workLogID int64, skip bool) (*domain.NextStepResponse, error)
	Reset(ctx context.Context, workLogID int64) (*domain.ResetResponse, error)
	Heartbeat(ctx context.Context, workLogID int64) error
}
