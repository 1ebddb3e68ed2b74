package transmission

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/customs-docflow/internal/domain/credential"
)

func TestResult_HTTPStatus(t *testing.T) {
	testCases := []struct {
		name     string
		result   *Result
		expected int
	}{
		{"Success", &Result{Success: true}, http.StatusOK},
		{"HostError500", Failure("Internal Server Error", "500"), http.StatusInternalServerError},
		{"HostError404", Failure("not found", "404"), http.StatusNotFound},
		{"TransportError", Failure("dial tcp: timeout", CodeTransportError), http.StatusInternalServerError},
		{"AuthFailed", Failure("invalid credentials", CodeAuthFailed), http.StatusInternalServerError},
		{"NonHTTPNumericCode", Failure("weird", "42"), http.StatusInternalServerError},
		{"EmptyCode", Failure("boom", ""), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.result.HTTPStatus())
		})
	}
}

func TestNewLogEntry(t *testing.T) {
	documentID := uuid.New()

	t.Run("SuccessResult", func(t *testing.T) {
		result := &Result{Success: true, Message: "Berhasil Kirim Data", RawResponse: "<xml/>"}
		entry := NewLogEntry(documentID, credential.ServiceTypeSOAPXML, result, "corr-1")

		assert.Equal(t, LogStatusSuccess, entry.Status)
		assert.Equal(t, documentID, entry.DocumentID)
		assert.Equal(t, credential.ServiceTypeSOAPXML, entry.Format)
		assert.Equal(t, "Berhasil Kirim Data", entry.Message)
		assert.Equal(t, "corr-1", entry.CorrelationID)
		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("FailedResult", func(t *testing.T) {
		result := Failure("host unavailable", CodeTransportError)
		entry := NewLogEntry(documentID, credential.ServiceTypeJSONBearer, result, "")

		assert.Equal(t, LogStatusFailed, entry.Status)
		assert.Equal(t, CodeTransportError, entry.ErrorCode)
	})
}
