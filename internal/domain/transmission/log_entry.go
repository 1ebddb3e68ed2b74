package transmission

import (
	"time"

	"github.com/google/uuid"

	"github.com/customs-docflow/internal/domain/credential"
)

// LogStatus is the persisted outcome of a dispatch attempt
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusFailed  LogStatus = "failed"
)

// LogEntry is one row of the append-only transmission audit trail. Entries
// reference documents but are never updated or deleted; every dispatch
// attempt appends exactly one.
type LogEntry struct {
	ID            uuid.UUID              `json:"id" bson:"id"`
	DocumentID    uuid.UUID              `json:"document_id" bson:"document_id"`
	Format        credential.ServiceType `json:"format" bson:"format"`
	Status        LogStatus              `json:"status" bson:"status"`
	Message       string                 `json:"message" bson:"message"`
	ErrorCode     string                 `json:"error_code,omitempty" bson:"error_code,omitempty"`
	RawResponse   string                 `json:"raw_response,omitempty" bson:"raw_response,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time              `json:"created_at" bson:"created_at"`
}

// NewLogEntry builds a log entry from a send result
func NewLogEntry(documentID uuid.UUID, format credential.ServiceType, result *Result, correlationID string) *LogEntry {
	status := LogStatusFailed
	if result.Success {
		status = LogStatusSuccess
	}

	return &LogEntry{
		ID:            uuid.New(),
		DocumentID:    documentID,
		Format:        format,
		Status:        status,
		Message:       result.Message,
		ErrorCode:     result.ErrorCode,
		RawResponse:   result.RawResponse,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
	}
}
