package media

import (
	"context"

	"github.com/dmitrijs2005/motionboard/internal/models"
)

// Repository describes storage operations on media records.
type Repository interface {
	// Create inserts a medium. Size is taken from m.Size.
	Create(ctx context.Context, m *models.Media) error

	// GetByID returns the medium including its bytes.
	GetByID(ctx context.Context, id string) (*models.Media, error)

	// ListByBoard returns every medium owned by boardID, ordered by id.
	ListByBoard(ctx context.Context, boardID string) ([]models.Media, error)

	// DeleteByID removes a single medium.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByBoard removes every medium owned by boardID and reports how
	// many were removed.
	DeleteByBoard(ctx context.Context, boardID string) (int64, error)

	// TotalSize sums the recorded size of all media.
	TotalSize(ctx context.Context) (int64, error)
}
