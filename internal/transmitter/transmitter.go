// Package transmitter defines the protocol-agnostic contract for sending a
// customs document to an external government host, and the registry that maps
// a credential's service type to the adapter implementing that protocol.
package transmitter

import (
	"context"
	"strings"

	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/domain/document"
	"github.com/customs-docflow/internal/domain/transmission"
)

// Transmitter is implemented once per wire protocol. Send normalizes every
// ordinary failure (host errors, malformed responses, timeouts) into the
// returned Result rather than an error; being handed a credential of the
// wrong service type is a programmer error and panics.
type Transmitter interface {
	// Send builds the protocol-specific request from the document, performs
	// the network call(s) and returns the normalized outcome.
	Send(ctx context.Context, doc *document.Document, cred *credential.Credential) *transmission.Result

	// ValidateCredential checks required fields without any network access.
	// Returns nil when the credential is usable, or an *InvalidCredentialError
	// listing what is missing.
	ValidateCredential(cred *credential.Credential) error

	// Name is a stable identifier for logging, distinct per adapter
	Name() string
}

// InvalidCredentialError reports the credential fields a transmitter requires
// but did not find.
type InvalidCredentialError struct {
	TransmitterName string
	MissingFields   []string
}

func (e *InvalidCredentialError) Error() string {
	return "credential invalid for " + e.TransmitterName + ": missing " + strings.Join(e.MissingFields, ", ")
}
