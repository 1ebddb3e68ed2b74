package document

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus tracks where a document is in the review workflow.
// Only approved documents may be transmitted to the external host.
type ApprovalStatus string

const (
	StatusDraft    ApprovalStatus = "DRAFT"
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// Common errors
var (
	ErrEmptyRefNumber    = errors.New("reference number cannot be empty")
	ErrEmptyDocumentCode = errors.New("document code cannot be empty")
	ErrInvalidVolume     = errors.New("measured volume cannot be negative")
)

// Document represents a customs tank-condition document (CoCoTangki).
// A document carries a single tank reading; the host submission schema
// expects one reading per document.
type Document struct {
	ID                uuid.UUID      `json:"id"`
	RefNumber         string         `json:"ref_number"`
	DocumentCode      string         `json:"document_code"`
	WarehouseCode     string         `json:"warehouse_code"`
	TankNumber        string         `json:"tank_number"`
	TankCapacity      int64          `json:"tank_capacity"`   // Litres
	MeasuredVolume    int64          `json:"measured_volume"` // Litres
	Temperature       float64        `json:"temperature"`     // Celsius
	Density           float64        `json:"density"`         // kg/m3 at observed temperature
	EntryDate         time.Time      `json:"entry_date"`
	ApprovalStatus    ApprovalStatus `json:"approval_status"`
	SentToHost        bool           `json:"sent_to_host"`
	LastTransmittedAt *time.Time     `json:"last_transmitted_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// NewDocument creates a new draft document with the given parameters
func NewDocument(refNumber, documentCode, warehouseCode, tankNumber string, measuredVolume int64, entryDate time.Time) (*Document, error) {
	if refNumber == "" {
		return nil, ErrEmptyRefNumber
	}
	if documentCode == "" {
		return nil, ErrEmptyDocumentCode
	}
	if measuredVolume < 0 {
		return nil, ErrInvalidVolume
	}

	now := time.Now()
	return &Document{
		ID:             uuid.New(),
		RefNumber:      refNumber,
		DocumentCode:   documentCode,
		WarehouseCode:  warehouseCode,
		TankNumber:     tankNumber,
		MeasuredVolume: measuredVolume,
		EntryDate:      entryDate,
		ApprovalStatus: StatusDraft,
		SentToHost:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsApproved reports whether the document may be transmitted to the host
func (d *Document) IsApproved() bool {
	return d.ApprovalStatus == StatusApproved
}

// MarkTransmitted records a successful host transmission
func (d *Document) MarkTransmitted(at time.Time) {
	d.SentToHost = true
	d.LastTransmittedAt = &at
	d.UpdatedAt = at
}
