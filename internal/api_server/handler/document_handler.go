package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/customs-docflow/internal/dispatch"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/domain/transmission"
)

// DocumentHandler handles HTTP requests for document reads and their
// transmission history
type DocumentHandler struct {
	dispatchService dispatch.Service
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(logger *slog.Logger, dispatchService dispatch.Service) *DocumentHandler {
	return &DocumentHandler{
		dispatchService: dispatchService,
		logger:          logger,
	}
}

// GetByID retrieves document details by its ID, returns 404 if not found
func (h *DocumentHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid document ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.dispatchService.GetDocument(c.Request.Context(), id)
	if err != nil {
		var notFoundErr document.ErrDocumentNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, "Document not found")
			return
		}
		h.logger.Error("Failed to get document", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapDocumentToResponse(doc))
}

// GetTransmissions retrieves the paginated transmission history for a document
func (h *DocumentHandler) GetTransmissions(c *gin.Context) {
	idParam := c.Param("id")
	documentID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid document ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid document ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.dispatchService.GetTransmissions(
		c.Request.Context(),
		documentID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		var notFoundErr document.ErrDocumentNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, "Document not found")
			return
		}
		h.logger.Error("Failed to get transmission history", "document_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	var transmissions []TransmissionResponse
	for _, entry := range entries {
		transmissions = append(transmissions, mapLogEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, transmissions, pagination.Page, pagination.PerPage, int(total))
}

// mapDocumentToResponse maps a document to its response DTO
func mapDocumentToResponse(doc *document.Document) DocumentResponse {
	response := DocumentResponse{
		ID:             doc.ID.String(),
		RefNumber:      doc.RefNumber,
		DocumentCode:   doc.DocumentCode,
		WarehouseCode:  doc.WarehouseCode,
		TankNumber:     doc.TankNumber,
		TankCapacity:   doc.TankCapacity,
		MeasuredVolume: doc.MeasuredVolume,
		Temperature:    doc.Temperature,
		Density:        doc.Density,
		EntryDate:      doc.EntryDate.Format("2006-01-02"),
		ApprovalStatus: string(doc.ApprovalStatus),
		SentToHost:     doc.SentToHost,
		CreatedAt:      doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      doc.UpdatedAt.Format(time.RFC3339),
	}

	if doc.LastTransmittedAt != nil {
		response.LastTransmittedAt = doc.LastTransmittedAt.Format(time.RFC3339)
	}

	return response
}

// mapLogEntryToResponse maps a transmission log entry to its response DTO
func mapLogEntryToResponse(entry *transmission.LogEntry) TransmissionResponse {
	return TransmissionResponse{
		ID:            entry.ID.String(),
		DocumentID:    entry.DocumentID.String(),
		Format:        string(entry.Format),
		Status:        string(entry.Status),
		Message:       entry.Message,
		ErrorCode:     entry.ErrorCode,
		CorrelationID: entry.CorrelationID,
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
}
