package credential

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType identifies the wire protocol a credential authenticates against.
// Adding a protocol means adding a constant here plus a transmitter registration;
// existing callers are unaffected.
type ServiceType string

const (
	ServiceTypeSOAPXML    ServiceType = "soap_xml"
	ServiceTypeJSONBearer ServiceType = "json_bearer"
)

// DefaultRequestTimeout applies when a credential does not configure one
const DefaultRequestTimeout = 30 * time.Second

// AdditionalConfig holds protocol-specific credential options. Recognized keys
// are typed fields; anything else the operator stores rides along in Extra.
type AdditionalConfig struct {
	Timeout      time.Duration     `json:"timeout,omitempty"`       // Per-request timeout, 0 means DefaultRequestTimeout
	AuthEndpoint string            `json:"auth_endpoint,omitempty"` // Token endpoint, required for json_bearer
	Extra        map[string]string `json:"extra,omitempty"`
}

// EffectiveTimeout returns the credential's configured request timeout, the
// given fallback, or DefaultRequestTimeout, in that order. A configured
// credential timeout always wins, even over a shorter fallback.
func (c AdditionalConfig) EffectiveTimeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultRequestTimeout
}

// Credential is the stored configuration for one external government service.
// The password is a secret; it is never serialized into API responses or logs.
type Credential struct {
	ID          uuid.UUID        `json:"id"`
	ServiceName string           `json:"service_name"`
	ServiceType ServiceType      `json:"service_type"`
	EndpointURL string           `json:"endpoint_url"`
	Username    string           `json:"username"`
	Password    string           `json:"-"`
	IsActive    bool             `json:"is_active"`
	Config      AdditionalConfig `json:"config"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
