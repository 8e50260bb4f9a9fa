package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/romariotrain/vidtube/internal/models"
	"github.com/romariotrain/vidtube/internal/video/query"
)

// VideoRepository is the document store contract consumed by the video service.
//
// Lookups return models.ErrNotFound when nothing matches. The write methods
// that take a caller are conditional: they only apply while the stored owner
// equals caller (models.ErrForbidden otherwise), and Update additionally
// requires the stored version to equal v.Version (models.ErrConflict).
type VideoRepository interface {
	List(ctx context.Context, q query.VideoQuery) ([]models.Video, error)
	Count(ctx context.Context, f query.Filter) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	Create(ctx context.Context, v *models.Video) error
	Update(ctx context.Context, v *models.Video, caller uuid.UUID) (*models.Video, error)
	TogglePublished(ctx context.Context, id, caller uuid.UUID) (*models.Video, error)
	Delete(ctx context.Context, id, caller uuid.UUID) error
}
