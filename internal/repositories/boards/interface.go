package boards

import (
	"context"

	"github.com/dmitrijs2005/motionboard/internal/models"
)

// Repository describes storage operations on board records.
type Repository interface {
	// Create inserts a new board record.
	Create(ctx context.Context, rec *models.BoardRecord) error

	// GetByID returns the board record with the given id.
	GetByID(ctx context.Context, id string) (*models.BoardRecord, error)

	// List returns all board records ordered by updated_at descending.
	List(ctx context.Context) ([]models.BoardRecord, error)

	// Update applies a partial update. UpdatedAt is always written.
	Update(ctx context.Context, id string, upd models.BoardUpdate) error

	// DeleteByID removes the board record.
	DeleteByID(ctx context.Context, id string) error

	// SerializedSize returns the total byte length of the stored item and
	// group payloads across all boards.
	SerializedSize(ctx context.Context) (int64, error)
}
