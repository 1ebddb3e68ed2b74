// Package dispatch orchestrates document transmission: it resolves the
// document, the active credential and the protocol adapter, performs the
// send, and records the outcome in the append-only transmission log.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/domain/transmission"
	"github.com/customs-docflow/internal/platform/messaging/producers"
	"github.com/customs-docflow/internal/transmitter"
)

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	logger        *slog.Logger
	documentRepo  document.Repository
	credRepo      credential.Repository
	logRepo       transmission.LogRepository
	registry      *transmitter.Registry
	eventProducer producers.MessagePublisher    // Optional, nil disables outcome events
	dlqProducer   producers.DeadLetterPublisher // Optional
}

// NewService creates a dispatch service. The producers may be nil; outcome
// events are advisory and dispatch works without them.
func NewService(
	logger *slog.Logger,
	documentRepo document.Repository,
	credRepo credential.Repository,
	logRepo transmission.LogRepository,
	registry *transmitter.Registry,
	eventProducer producers.MessagePublisher,
	dlqProducer producers.DeadLetterPublisher,
) Service {
	return &ServiceImpl{
		logger:        logger,
		documentRepo:  documentRepo,
		credRepo:      credRepo,
		logRepo:       logRepo,
		registry:      registry,
		eventProducer: eventProducer,
		dlqProducer:   dlqProducer,
	}
}

// DispatchToHost runs the full dispatch sequence. The ordering matters:
// everything up to the send is pre-flight and appends nothing to the log,
// while every attempt that reaches the send appends exactly one entry,
// success or failure.
func (s *ServiceImpl) DispatchToHost(ctx context.Context, documentID uuid.UUID, serviceType credential.ServiceType, correlationID string) (*Outcome, error) {
	log := s.logger
	if correlationID != "" {
		log = log.With("correlation_id", correlationID)
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if !doc.IsApproved() {
		log.Warn("Rejected dispatch of unapproved document",
			"document_id", documentID,
			"approval_status", string(doc.ApprovalStatus),
		)
		return nil, document.ErrDocumentNotApproved{DocumentID: documentID, Status: doc.ApprovalStatus}
	}

	cred, err := s.credRepo.GetActiveByServiceType(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	tr, err := s.registry.Resolve(serviceType)
	if err != nil {
		return nil, err
	}

	if err := tr.ValidateCredential(cred); err != nil {
		log.Warn("Active credential failed validation",
			"document_id", documentID,
			"credential_id", cred.ID,
			"error", err,
		)
		return nil, err
	}

	log.Info("Dispatching document to host",
		"document_id", documentID,
		"service_type", string(serviceType),
		"transmitter", tr.Name(),
	)

	result := s.send(ctx, tr, doc, cred)

	entry := transmission.NewLogEntry(doc.ID, serviceType, result, correlationID)
	if err := s.logRepo.Append(ctx, entry); err != nil {
		log.Error("Failed to record transmission outcome",
			"document_id", documentID,
			"success", result.Success,
			"error", err,
		)
		return nil, fmt.Errorf("transmission completed but outcome could not be recorded: %w", err)
	}

	if result.Success {
		if err := s.documentRepo.MarkTransmitted(ctx, doc.ID, entry.CreatedAt); err != nil {
			// The log entry is the source of truth; the flag catches up on the
			// next successful dispatch.
			log.Error("Failed to mark document as transmitted",
				"document_id", documentID,
				"error", err,
			)
		}
	}

	s.publishOutcome(ctx, log, entry)

	log.Info("Dispatch complete",
		"document_id", documentID,
		"success", result.Success,
		"error_code", result.ErrorCode,
	)

	return &Outcome{
		DocumentID: doc.ID,
		Format:     serviceType,
		Success:    result.Success,
		Message:    result.Message,
		ErrorCode:  result.ErrorCode,
		HTTPStatus: result.HTTPStatus(),
	}, nil
}

// send invokes the transmitter, converting a panic into a failed result so
// the attempt still gets its log entry.
func (s *ServiceImpl) send(ctx context.Context, tr transmitter.Transmitter, doc *document.Document, cred *credential.Credential) (result *transmission.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Transmitter panicked",
				"transmitter", tr.Name(),
				"document_id", doc.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result = transmission.Failure(
				fmt.Sprintf("transmitter %s panicked: %v", tr.Name(), r),
				transmission.CodeInternalError,
			)
		}
	}()

	return tr.Send(ctx, doc, cred)
}

// publishOutcome emits the log entry as a Kafka event. Failures never affect
// the dispatch outcome; an undeliverable event goes to the DLQ.
func (s *ServiceImpl) publishOutcome(ctx context.Context, log *slog.Logger, entry *transmission.LogEntry) {
	if s.eventProducer == nil {
		return
	}

	key := entry.DocumentID.String()
	if err := s.eventProducer.Publish(ctx, key, entry); err != nil {
		log.Error("Failed to publish transmission event", "document_id", entry.DocumentID, "error", err)

		if s.dlqProducer == nil {
			return
		}
		payload, marshalErr := json.Marshal(entry)
		if marshalErr != nil {
			log.Error("Failed to marshal transmission event for DLQ", "document_id", entry.DocumentID, "error", marshalErr)
			return
		}
		if dlqErr := s.dlqProducer.PublishToDLQ(ctx, key, payload, err.Error()); dlqErr != nil {
			log.Error("Failed to publish transmission event to DLQ", "document_id", entry.DocumentID, "error", dlqErr)
		}
	}
}

// GetDocument retrieves a document by its ID
func (s *ServiceImpl) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	return s.documentRepo.GetByID(ctx, id)
}

// GetTransmissions retrieves paginated transmission history for a document,
// newest first. Returns entries, total count, and any error.
func (s *ServiceImpl) GetTransmissions(ctx context.Context, documentID uuid.UUID, page, perPage int) ([]*transmission.LogEntry, int64, error) {
	// The document must exist even when it has no history yet
	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	entries, err := s.logRepo.GetByDocumentID(ctx, documentID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.logRepo.CountByDocumentID(ctx, documentID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
