package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines document persistence operations
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// MarkTransmitted sets sent_to_host and stamps the transmission time
	MarkTransmitted(ctx context.Context, id uuid.UUID, at time.Time) error
	WithTx(tx pgx.Tx) Repository
}

// ErrDocumentNotFound indicates missing document
type ErrDocumentNotFound struct {
	DocumentID uuid.UUID
}

func (e ErrDocumentNotFound) Error() string {
	return "document not found: " + e.DocumentID.String()
}

// ErrDocumentNotApproved indicates the document is not in a transmittable state
type ErrDocumentNotApproved struct {
	DocumentID uuid.UUID
	Status     ApprovalStatus
}

func (e ErrDocumentNotApproved) Error() string {
	return "document " + e.DocumentID.String() + " is not approved for transmission (status: " + string(e.Status) + ")"
}
