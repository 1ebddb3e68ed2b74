package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/customs-docflow/internal/api_server/middleware"
	"github.com/customs-docflow/internal/dispatch"
	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/transmitter"
)

// wire format aliases accepted by the API
var formatAliases = map[string]credential.ServiceType{
	"xml":  credential.ServiceTypeSOAPXML,
	"json": credential.ServiceTypeJSONBearer,
}

// ExportHandler handles HTTP requests for host transmission operations
type ExportHandler struct {
	dispatchService dispatch.Service
	logger          *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(logger *slog.Logger, dispatchService dispatch.Service) *ExportHandler {
	return &ExportHandler{
		dispatchService: dispatchService,
		logger:          logger,
	}
}

// SendToHost dispatches a document to the external government host. The HTTP
// status mirrors the dispatch outcome: the host's verdict for attempts that
// reached it, a 4xx mapping for pre-flight failures.
func (h *ExportHandler) SendToHost(c *gin.Context) {
	idParam := c.Param("id")
	documentID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid document ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid document ID")
		return
	}

	var req SendToHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: format must be \"xml\" or \"json\"")
		return
	}

	serviceType, ok := formatAliases[req.Format]
	if !ok {
		RespondBadRequest(c, "Unsupported format: "+req.Format)
		return
	}

	outcome, err := h.dispatchService.DispatchToHost(
		c.Request.Context(),
		documentID,
		serviceType,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		h.respondDispatchError(c, documentID, err)
		return
	}

	// Dispatch outcomes are flat: success, format and message sit at the top
	// level of the body, mirroring what the host reported.
	c.JSON(outcome.HTTPStatus, SendToHostResponse{
		DocumentID:    outcome.DocumentID.String(),
		Format:        string(outcome.Format),
		Success:       outcome.Success,
		Message:       outcome.Message,
		ErrorCode:     outcome.ErrorCode,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// respondDispatchError maps pre-flight dispatch errors onto HTTP statuses
func (h *ExportHandler) respondDispatchError(c *gin.Context, documentID uuid.UUID, err error) {
	var (
		notFoundErr    document.ErrDocumentNotFound
		notApprovedErr document.ErrDocumentNotApproved
		noActiveErr    credential.ErrNoActiveCredential
		ambiguousErr   credential.ErrAmbiguousCredential
		invalidErr     *transmitter.InvalidCredentialError
		unsupportedErr transmitter.ErrUnsupportedServiceType
	)

	switch {
	case errors.As(err, &notFoundErr):
		RespondNotFound(c, "Document not found")
	case errors.As(err, &notApprovedErr):
		RespondConflict(c, "NOT_APPROVED", err.Error())
	case errors.As(err, &noActiveErr):
		RespondUnprocessableEntity(c, "NO_ACTIVE_CREDENTIAL", err.Error())
	case errors.As(err, &ambiguousErr):
		RespondConflict(c, "AMBIGUOUS_CREDENTIAL", err.Error())
	case errors.As(err, &invalidErr):
		RespondUnprocessableEntity(c, "INVALID_CREDENTIAL", err.Error())
	case errors.As(err, &unsupportedErr):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Dispatch failed", "document_id", documentID, "error", err)
		RespondInternalError(c)
	}
}
