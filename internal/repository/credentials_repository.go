package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"launchpad/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCredentialsNotFound = errors.New("creator credentials not found")
)

// CredentialsRepository defines the interface for creator credential data access
type CredentialsRepository interface {
	Get(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorCredentials, error)
	Upsert(ctx context.Context, creds *domain.CreatorCredentials) error
}

type credentialsRepository struct {
	db *sql.DB
}

// NewCredentialsRepository creates a new instance of CredentialsRepository
func NewCredentialsRepository(db *sql.DB) CredentialsRepository {
	return &credentialsRepository{db: db}
}

// Get retrieves the connected provider accounts for a creator
func (r *credentialsRepository) Get(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorCredentials, error) {
	query := `
		SELECT creator_id, test_account_id, live_account_id, created_at, updated_at
		FROM creator_credentials
		WHERE creator_id = $1
	`

	creds := &domain.CreatorCredentials{}
	err := r.db.QueryRowContext(ctx, query, creatorID).Scan(
		&creds.CreatorID,
		&creds.TestAccountID,
		&creds.LiveAccountID,
		&creds.CreatedAt,
		&creds.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to find creator credentials: %w", err)
	}

	return creds, nil
}

// Upsert inserts or replaces the connected accounts for a creator
func (r *credentialsRepository) Upsert(ctx context.Context, creds *domain.CreatorCredentials) error {
	query := `
		INSERT INTO creator_credentials (creator_id, test_account_id, live_account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (creator_id)
		DO UPDATE SET test_account_id = $2, live_account_id = $3, updated_at = $5
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		creds.CreatorID,
		creds.TestAccountID,
		creds.LiveAccountID,
		creds.CreatedAt,
		creds.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert creator credentials: %w", err)
	}

	return nil
}
