package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/domain/transmission"
)

// PaginatedResponse mirrors the wire shape of paginated endpoints for tests
type PaginatedResponse[T any] struct {
	Data []T       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

func approvedDocument() *document.Document {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	return &document.Document{
		ID:             uuid.New(),
		RefNumber:      "REF-2025-001",
		DocumentCode:   "20",
		WarehouseCode:  "KB-1234",
		TankNumber:     "T-01",
		TankCapacity:   500000,
		MeasuredVolume: 420000,
		Temperature:    28.5,
		Density:        0.85,
		EntryDate:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ApprovalStatus: document.StatusApproved,
		SentToHost:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func getRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestDocumentHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	newRouter := func(h *DocumentHandler) *gin.Engine {
		router := gin.New()
		router.GET("/api/v1/documents/:id", h.GetByID)
		return router
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		doc := approvedDocument()
		transmittedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		doc.MarkTransmitted(transmittedAt)

		mockService.On("GetDocument", mock.Anything, doc.ID).Return(doc, nil).Once()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+doc.ID.String())

		assert.Equal(t, http.StatusOK, rr.Code)
		data := decodeResponse(t, rr)["data"].(map[string]interface{})
		assert.Equal(t, doc.ID.String(), data["id"])
		assert.Equal(t, "REF-2025-001", data["ref_number"])
		assert.Equal(t, "2025-06-01", data["entry_date"])
		assert.Equal(t, string(document.StatusApproved), data["approval_status"])
		assert.Equal(t, true, data["sent_to_host"])
		assert.Equal(t, transmittedAt.Format(time.RFC3339), data["last_transmitted_at"])
		mockService.AssertExpectations(t)
	})

	t.Run("NeverTransmittedOmitsTimestamp", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		doc := approvedDocument()

		mockService.On("GetDocument", mock.Anything, doc.ID).Return(doc, nil).Once()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+doc.ID.String())

		assert.Equal(t, http.StatusOK, rr.Code)
		data := decodeResponse(t, rr)["data"].(map[string]interface{})
		_, present := data["last_transmitted_at"]
		assert.False(t, present)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		id := uuid.New()

		mockService.On("GetDocument", mock.Anything, id).
			Return(nil, document.ErrDocumentNotFound{DocumentID: id}).Once()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+id.String())

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)

		rr := getRequest(t, newRouter(h), "/api/v1/documents/abc")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetDocument", mock.Anything, mock.Anything)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		id := uuid.New()

		mockService.On("GetDocument", mock.Anything, id).
			Return(nil, assert.AnError).Once()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+id.String())

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestDocumentHandler_GetTransmissions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	newRouter := func(h *DocumentHandler) *gin.Engine {
		router := gin.New()
		router.GET("/api/v1/documents/:id/transmissions", h.GetTransmissions)
		return router
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		documentID := uuid.New()

		entries := []*transmission.LogEntry{
			{
				ID:            uuid.New(),
				DocumentID:    documentID,
				Format:        credential.ServiceTypeJSONBearer,
				Status:        transmission.LogStatusSuccess,
				Message:       "Data received successfully",
				CorrelationID: "corr-1",
				CreatedAt:     time.Now(),
			},
			{
				ID:         uuid.New(),
				DocumentID: documentID,
				Format:     credential.ServiceTypeSOAPXML,
				Status:     transmission.LogStatusFailed,
				Message:    "Gagal: duplicate document",
				ErrorCode:  transmission.CodeHostRejected,
				CreatedAt:  time.Now().Add(-time.Hour),
			},
		}

		mockService.On("GetTransmissions", mock.Anything, documentID, 2, 10).
			Return(entries, int64(12), nil).Once()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+documentID.String()+"/transmissions?page=2&per_page=10")

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp PaginatedResponse[TransmissionResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "json_bearer", resp.Data[0].Format)
		assert.Equal(t, string(transmission.LogStatusSuccess), resp.Data[0].Status)
		assert.Equal(t, transmission.CodeHostRejected, resp.Data[1].ErrorCode)

		require.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 10, resp.Meta.PerPage)
		assert.Equal(t, 12, resp.Meta.TotalItems)
		assert.Equal(t, 2, resp.Meta.TotalPages)
		mockService.AssertExpectations(t)
	})

	t.Run("DefaultPagination", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		documentID := uuid.New()

		mockService.On("GetTransmissions", mock.Anything, documentID, 1, 10).
			Return([]*transmission.LogEntry{}, int64(0), nil).Once()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+documentID.String()+"/transmissions")

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownDocument", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		documentID := uuid.New()

		mockService.On("GetTransmissions", mock.Anything, documentID, 1, 10).
			Return(nil, int64(0), document.ErrDocumentNotFound{DocumentID: documentID}).Once()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+documentID.String()+"/transmissions")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		mockService := new(MockDispatchService)
		h := NewDocumentHandler(logger, mockService)
		documentID := uuid.New()

		rr := getRequest(t, newRouter(h), "/api/v1/documents/"+documentID.String()+"/transmissions?page=0")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetTransmissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
