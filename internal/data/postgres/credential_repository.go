package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/platform/persistence"
)

// CredentialRepository implements the credential.Repository interface for PostgreSQL.
// Protocol-specific options are stored in a JSONB column.
type CredentialRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewCredentialRepository creates a new PostgreSQL credential repository
func NewCredentialRepository(logger *slog.Logger, db *persistence.PostgresDB) credential.Repository {
	return &CredentialRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *CredentialRepository) WithTx(tx pgx.Tx) credential.Repository {
	return &CredentialRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new service credential. A partial unique index on
// (service_type) WHERE is_active rejects a second active credential for the
// same service type at the database level.
func (r *CredentialRepository) Create(ctx context.Context, cred *credential.Credential) error {
	configJSON, err := json.Marshal(cred.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal credential config: %w", err)
	}

	query := `
		INSERT INTO service_credentials (id, service_name, service_type, endpoint_url, username, password, is_active, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.querier.Exec(ctx, query,
		cred.ID,
		cred.ServiceName,
		cred.ServiceType,
		cred.EndpointURL,
		cred.Username,
		cred.Password,
		cred.IsActive,
		configJSON,
		cred.CreatedAt,
		cred.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create credential", "error", err)
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

// GetByID retrieves a credential by its ID
func (r *CredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*credential.Credential, error) {
	query := `
		SELECT id, service_name, service_type, endpoint_url, username, password, is_active, config, created_at, updated_at
		FROM service_credentials
		WHERE id = $1
	`

	cred, err := r.scanCredential(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, credential.ErrCredentialNotFound{CredentialID: id}
		}
		r.logger.Error("Failed to get credential", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}

// GetActiveByServiceType returns the single active credential for a service
// type. Zero active rows yield ErrNoActiveCredential; more than one yields
// ErrAmbiguousCredential rather than silently picking a row.
func (r *CredentialRepository) GetActiveByServiceType(ctx context.Context, serviceType credential.ServiceType) (*credential.Credential, error) {
	query := `
		SELECT id, service_name, service_type, endpoint_url, username, password, is_active, config, created_at, updated_at
		FROM service_credentials
		WHERE service_type = $1 AND is_active = TRUE
	`

	rows, err := r.querier.Query(ctx, query, serviceType)
	if err != nil {
		r.logger.Error("Failed to query active credentials", "service_type", serviceType, "error", err)
		return nil, fmt.Errorf("failed to query active credentials: %w", err)
	}
	defer rows.Close()

	var creds []*credential.Credential
	for rows.Next() {
		cred, err := r.scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active credentials: %w", err)
	}

	switch len(creds) {
	case 0:
		return nil, credential.ErrNoActiveCredential{ServiceType: serviceType}
	case 1:
		return creds[0], nil
	default:
		r.logger.Error("Multiple active credentials for service type", "service_type", serviceType, "count", len(creds))
		return nil, credential.ErrAmbiguousCredential{ServiceType: serviceType, Count: len(creds)}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CredentialRepository) scanCredential(row rowScanner) (*credential.Credential, error) {
	var cred credential.Credential
	var configJSON []byte

	err := row.Scan(
		&cred.ID,
		&cred.ServiceName,
		&cred.ServiceType,
		&cred.EndpointURL,
		&cred.Username,
		&cred.Password,
		&cred.IsActive,
		&configJSON,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &cred.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal credential config: %w", err)
		}
	}

	return &cred, nil
}
