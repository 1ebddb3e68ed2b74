// Package mongo provides the MongoDB implementation of the transmission log.
// The log is append-only: every dispatch attempt inserts one entry and no
// entry is ever updated or deleted.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/customs-docflow/internal/domain/transmission"
)

const (
	// TransmissionLogCollectionName is the name of the transmission log collection in MongoDB
	TransmissionLogCollectionName = "transmission_log"
)

// TransmissionLogRepository implements the transmission.LogRepository interface for MongoDB
type TransmissionLogRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewTransmissionLogRepository creates a new MongoDB transmission log repository
func NewTransmissionLogRepository(logger *slog.Logger, db *mongo.Database) transmission.LogRepository {
	return &TransmissionLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts a new log entry. There is deliberately no duplicate check:
// dispatch is non-idempotent and repeated attempts for the same document each
// get their own entry.
func (r *TransmissionLogRepository) Append(ctx context.Context, entry *transmission.LogEntry) error {
	collection := r.db.Collection(TransmissionLogCollectionName)

	_, err := collection.InsertOne(ctx, entry)
	if err != nil {
		r.logger.Error("Failed to append transmission log entry",
			"document_id", entry.DocumentID.String(),
			"error", err)
		return fmt.Errorf("failed to append transmission log entry: %w", err)
	}

	return nil
}

// GetByDocumentID retrieves paginated log entries for a document.
// Results are sorted by creation time in descending order (newest first).
func (r *TransmissionLogRepository) GetByDocumentID(ctx context.Context, documentID uuid.UUID, limit, offset int) ([]*transmission.LogEntry, error) {
	collection := r.db.Collection(TransmissionLogCollectionName)

	filter := bson.M{"document_id": documentID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transmission log entries",
			"document_id", documentID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transmission log entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*transmission.LogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode transmission log entries",
			"document_id", documentID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode transmission log entries: %w", err)
	}

	return entries, nil
}

// CountByDocumentID counts the total number of log entries for a document
func (r *TransmissionLogRepository) CountByDocumentID(ctx context.Context, documentID uuid.UUID) (int64, error) {
	collection := r.db.Collection(TransmissionLogCollectionName)

	filter := bson.M{"document_id": documentID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count transmission log entries",
			"document_id", documentID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count transmission log entries: %w", err)
	}

	return count, nil
}

// GetByTimeRange retrieves paginated log entries within the specified time window.
// Results are sorted by creation time in descending order for recent-first access.
func (r *TransmissionLogRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*transmission.LogEntry, error) {
	collection := r.db.Collection(TransmissionLogCollectionName)

	filter := bson.M{
		"created_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transmission log entries by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get transmission log entries by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*transmission.LogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode transmission log entries",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode transmission log entries: %w", err)
	}

	return entries, nil
}
