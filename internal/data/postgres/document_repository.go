// Package postgres provides PostgreSQL implementations of the domain repositories.
// Documents and service credentials live here; the transmission log lives in
// MongoDB (see internal/data/mongo).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/platform/persistence"
)

// DocumentRepository implements the document.Repository interface for PostgreSQL
type DocumentRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewDocumentRepository creates a new PostgreSQL document repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewDocumentRepository(logger *slog.Logger, db *persistence.PostgresDB) document.Repository {
	return &DocumentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls.
func (r *DocumentRepository) WithTx(tx pgx.Tx) document.Repository {
	return &DocumentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new document in the database
func (r *DocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	query := `
		INSERT INTO documents (id, ref_number, document_code, warehouse_code, tank_number, tank_capacity, measured_volume, temperature, density, entry_date, approval_status, sent_to_host, last_transmitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.querier.Exec(ctx, query,
		doc.ID,
		doc.RefNumber,
		doc.DocumentCode,
		doc.WarehouseCode,
		doc.TankNumber,
		doc.TankCapacity,
		doc.MeasuredVolume,
		doc.Temperature,
		doc.Density,
		doc.EntryDate,
		doc.ApprovalStatus,
		doc.SentToHost,
		doc.LastTransmittedAt,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", "error", err)
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by its ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `
		SELECT id, ref_number, document_code, warehouse_code, tank_number, tank_capacity, measured_volume, temperature, density, entry_date, approval_status, sent_to_host, last_transmitted_at, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var doc document.Document
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.RefNumber,
		&doc.DocumentCode,
		&doc.WarehouseCode,
		&doc.TankNumber,
		&doc.TankCapacity,
		&doc.MeasuredVolume,
		&doc.Temperature,
		&doc.Density,
		&doc.EntryDate,
		&doc.ApprovalStatus,
		&doc.SentToHost,
		&doc.LastTransmittedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrDocumentNotFound{DocumentID: id}
		}
		r.logger.Error("Failed to get document", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// MarkTransmitted records a successful transmission on the document. The flag
// only ever moves from false to true; repeated successes just refresh the
// transmission timestamp.
func (r *DocumentRepository) MarkTransmitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE documents
		SET sent_to_host = TRUE, last_transmitted_at = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to mark document transmitted", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark document transmitted: %w", err)
	}

	if result.RowsAffected() == 0 {
		return document.ErrDocumentNotFound{DocumentID: id}
	}

	return nil
}
