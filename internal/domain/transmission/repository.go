package transmission

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogRepository manages the append-only transmission log with pagination support.
// There is no update or delete: the log is the audit trail.
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	GetByDocumentID(ctx context.Context, documentID uuid.UUID, limit, offset int) ([]*LogEntry, error)
	CountByDocumentID(ctx context.Context, documentID uuid.UUID) (int64, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*LogEntry, error)
}
