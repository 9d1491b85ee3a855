package repositories

import (
	"context"
	"time"

	"github.com/neuvia/backend/internal/domain/entities"
)

// SymptomLogRepository stores intake submissions
type SymptomLogRepository interface {
	Create(ctx context.Context, log *entities.SymptomLog) error

	// ListSince returns the user's logs submitted at or after since, oldest first
	ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.SymptomLog, error)
}
