package dispatch

import (
	"context"

	"github.com/google/uuid"

	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/domain/transmission"
)

// Outcome is the API-facing summary of one dispatch attempt. It exists for
// both host acceptances and host rejections; pre-flight failures return a
// domain error instead.
type Outcome struct {
	DocumentID uuid.UUID              `json:"document_id"`
	Format     credential.ServiceType `json:"format"`
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	ErrorCode  string                 `json:"error_code,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Service defines the transmission dispatch operations
type Service interface {
	// DispatchToHost transmits an approved document to the external host over
	// the protocol selected by serviceType. Every attempt that reaches the
	// host appends exactly one transmission log entry; pre-flight failures
	// (unknown document, not approved, credential problems) append none and
	// surface as typed domain errors.
	DispatchToHost(ctx context.Context, documentID uuid.UUID, serviceType credential.ServiceType, correlationID string) (*Outcome, error)

	// GetDocument retrieves a document by its ID.
	// Returns ErrDocumentNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error)

	// GetTransmissions retrieves the paginated transmission history for a
	// document, newest first. Returns entries, total count, and any error.
	GetTransmissions(ctx context.Context, documentID uuid.UUID, page, perPage int) ([]*transmission.LogEntry, int64, error)
}
