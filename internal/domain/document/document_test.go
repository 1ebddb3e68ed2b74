package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	entryDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		doc, err := NewDocument("REF-001", "BC16", "WH-PLB-01", "TK-04", 125000, entryDate)
		require.NoError(t, err)
		require.NotNil(t, doc)

		assert.Equal(t, "REF-001", doc.RefNumber)
		assert.Equal(t, StatusDraft, doc.ApprovalStatus)
		assert.False(t, doc.SentToHost)
		assert.Nil(t, doc.LastTransmittedAt)
	})

	t.Run("EmptyRefNumber", func(t *testing.T) {
		doc, err := NewDocument("", "BC16", "WH-PLB-01", "TK-04", 125000, entryDate)
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, ErrEmptyRefNumber)
	})

	t.Run("EmptyDocumentCode", func(t *testing.T) {
		doc, err := NewDocument("REF-001", "", "WH-PLB-01", "TK-04", 125000, entryDate)
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, ErrEmptyDocumentCode)
	})

	t.Run("NegativeVolume", func(t *testing.T) {
		doc, err := NewDocument("REF-001", "BC16", "WH-PLB-01", "TK-04", -1, entryDate)
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, ErrInvalidVolume)
	})
}

func TestDocument_IsApproved(t *testing.T) {
	doc := &Document{ApprovalStatus: StatusPending}
	assert.False(t, doc.IsApproved())

	doc.ApprovalStatus = StatusApproved
	assert.True(t, doc.IsApproved())

	doc.ApprovalStatus = StatusRejected
	assert.False(t, doc.IsApproved())
}

func TestDocument_MarkTransmitted(t *testing.T) {
	doc, err := NewDocument("REF-002", "BC16", "WH-PLB-01", "TK-01", 90000, time.Now())
	require.NoError(t, err)

	at := time.Now()
	doc.MarkTransmitted(at)

	assert.True(t, doc.SentToHost)
	require.NotNil(t, doc.LastTransmittedAt)
	assert.Equal(t, at, *doc.LastTransmittedAt)
	assert.Equal(t, at, doc.UpdatedAt)
}
