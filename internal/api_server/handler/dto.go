package handler

// SendToHostRequest selects the wire protocol for a dispatch.
// "xml" and "json" are the operator-facing aliases for the SOAP/XML and
// JSON/Bearer host services.
type SendToHostRequest struct {
	Format string `json:"format" binding:"required,oneof=xml json"`
}

// SendToHostResponse reports the outcome of a dispatch attempt. It is the
// whole response body: success, format and message sit at the top level.
type SendToHostResponse struct {
	DocumentID    string `json:"document_id"`
	Format        string `json:"format"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ErrorCode     string `json:"error_code,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID                string  `json:"id"`
	RefNumber         string  `json:"ref_number"`
	DocumentCode      string  `json:"document_code"`
	WarehouseCode     string  `json:"warehouse_code"`
	TankNumber        string  `json:"tank_number"`
	TankCapacity      int64   `json:"tank_capacity"`
	MeasuredVolume    int64   `json:"measured_volume"`
	Temperature       float64 `json:"temperature"`
	Density           float64 `json:"density"`
	EntryDate         string  `json:"entry_date"`
	ApprovalStatus    string  `json:"approval_status"`
	SentToHost        bool    `json:"sent_to_host"`
	LastTransmittedAt string  `json:"last_transmitted_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// TransmissionResponse represents a transmission log entry in API responses
type TransmissionResponse struct {
	ID            string `json:"id"`
	DocumentID    string `json:"document_id"`
	Format        string `json:"format"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	ErrorCode     string `json:"error_code,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
