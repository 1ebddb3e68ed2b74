package credential

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines credential persistence operations
type Repository interface {
	Create(ctx context.Context, cred *Credential) error
	GetByID(ctx context.Context, id uuid.UUID) (*Credential, error)

	// GetActiveByServiceType returns the single active credential for a service
	// type. Returns ErrNoActiveCredential when none is active and
	// ErrAmbiguousCredential when more than one is.
	GetActiveByServiceType(ctx context.Context, serviceType ServiceType) (*Credential, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrCredentialNotFound indicates missing credential
type ErrCredentialNotFound struct {
	CredentialID uuid.UUID
}

func (e ErrCredentialNotFound) Error() string {
	return "credential not found: " + e.CredentialID.String()
}

// ErrNoActiveCredential indicates no active credential exists for a service type
type ErrNoActiveCredential struct {
	ServiceType ServiceType
}

func (e ErrNoActiveCredential) Error() string {
	return "no active credential for service type: " + string(e.ServiceType)
}

// ErrAmbiguousCredential indicates more than one active credential for a service type
type ErrAmbiguousCredential struct {
	ServiceType ServiceType
	Count       int
}

func (e ErrAmbiguousCredential) Error() string {
	return fmt.Sprintf("%d active credentials for service type %s, expected exactly one", e.Count, e.ServiceType)
}
