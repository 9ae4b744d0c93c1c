package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"launchpad/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDeploymentNotFound = errors.New("deployment record not found")

	// ErrDeploymentInFlight is returned when a promotion attempt is already
	// running for the same product. Enforced by the unique partial index on
	// deployment_records (product_id) WHERE status = 'deploying'.
	ErrDeploymentInFlight = errors.New("a deployment is already in flight for this product")
)

// uniqueViolation is the Postgres error code for unique constraint violations
const uniqueViolation = "23505"

// DeploymentRepository defines the interface for deployment record data access
type DeploymentRepository interface {
	Create(ctx context.Context, record *domain.DeploymentRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.DeploymentRecord, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, message string) error
	MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorDetail string, completedAt time.Time) error
	List(ctx context.Context, creatorID uuid.UUID, status *domain.DeploymentStatus) ([]*domain.DeploymentRecord, error)
	MostRecent(ctx context.Context, creatorID uuid.UUID) (*domain.DeploymentRecord, error)
	CountInFlight(ctx context.Context, creatorID uuid.UUID) (int, error)
}

type deploymentRepository struct {
	db *sql.DB
}

// NewDeploymentRepository creates a new instance of DeploymentRepository
func NewDeploymentRepository(db *sql.DB) DeploymentRepository {
	return &deploymentRepository{db: db}
}

const deploymentColumns = `id, creator_id, product_id, source_env, target_env,
	status, progress, message, initiated_by, started_at, completed_at, error_detail`

func scanDeployment(row interface{ Scan(...any) error }) (*domain.DeploymentRecord, error) {
	record := &domain.DeploymentRecord{}
	err := row.Scan(
		&record.ID,
		&record.CreatorID,
		&record.ProductID,
		&record.SourceEnv,
		&record.TargetEnv,
		&record.Status,
		&record.Progress,
		&record.Message,
		&record.InitiatedBy,
		&record.StartedAt,
		&record.CompletedAt,
		&record.ErrorDetail,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Create inserts a new deployment record. Returns ErrDeploymentInFlight when
// another attempt for the same product is still in status 'deploying'.
func (r *deploymentRepository) Create(ctx context.Context, record *domain.DeploymentRecord) error {
	query := `
		INSERT INTO deployment_records (id, creator_id, product_id, source_env, target_env,
			status, progress, message, initiated_by, started_at, completed_at, error_detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.CreatorID,
		record.ProductID,
		record.SourceEnv,
		record.TargetEnv,
		record.Status,
		record.Progress,
		record.Message,
		record.InitiatedBy,
		record.StartedAt,
		record.CompletedAt,
		record.ErrorDetail,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDeploymentInFlight
		}
		return fmt.Errorf("failed to create deployment record: %w", err)
	}

	return nil
}

// FindByID retrieves a deployment record by ID
func (r *deploymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeploymentRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM deployment_records
		WHERE id = $1
	`, deploymentColumns)

	record, err := scanDeployment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("failed to find deployment record: %w", err)
	}

	return record, nil
}

// UpdateProgress advances the progress of a still-running deployment.
// Terminal records are never touched; the status guard makes the update a
// no-op for completed or failed rows.
func (r *deploymentRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, message string) error {
	query := `
		UPDATE deployment_records
		SET progress = $2, message = $3
		WHERE id = $1 AND status = 'deploying'
	`

	result, err := r.db.ExecContext(ctx, query, id, progress, message)
	if err != nil {
		return fmt.Errorf("failed to update deployment progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrDeploymentNotFound
	}

	return nil
}

// MarkCompleted transitions a deploying record to completed with progress 100
func (r *deploymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	query := `
		UPDATE deployment_records
		SET status = 'completed', progress = 100, message = 'Deployment completed', completed_at = $2
		WHERE id = $1 AND status = 'deploying'
	`

	result, err := r.db.ExecContext(ctx, query, id, completedAt)
	if err != nil {
		return fmt.Errorf("failed to mark deployment completed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrDeploymentNotFound
	}

	return nil
}

// MarkFailed transitions a deploying record to failed with an error detail
func (r *deploymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorDetail string, completedAt time.Time) error {
	query := `
		UPDATE deployment_records
		SET status = 'failed', error_detail = $2, completed_at = $3
		WHERE id = $1 AND status = 'deploying'
	`

	result, err := r.db.ExecContext(ctx, query, id, errorDetail, completedAt)
	if err != nil {
		return fmt.Errorf("failed to mark deployment failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrDeploymentNotFound
	}

	return nil
}

// List retrieves a creator's deployment records, optionally filtered by status
func (r *deploymentRepository) List(ctx context.Context, creatorID uuid.UUID, status *domain.DeploymentStatus) ([]*domain.DeploymentRecord, error) {
	args := []interface{}{creatorID}
	statusClause := ""
	if status != nil {
		statusClause = "AND status = $2"
		args = append(args, *status)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM deployment_records
		WHERE creator_id = $1 %s
		ORDER BY started_at DESC
	`, deploymentColumns, statusClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployment records: %w", err)
	}
	defer rows.Close()

	records := []*domain.DeploymentRecord{}
	for rows.Next() {
		record, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deployment record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deployment records: %w", err)
	}

	return records, nil
}

// MostRecent retrieves the creator's latest deployment record
func (r *deploymentRepository) MostRecent(ctx context.Context, creatorID uuid.UUID) (*domain.DeploymentRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM deployment_records
		WHERE creator_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`, deploymentColumns)

	record, err := scanDeployment(r.db.QueryRowContext(ctx, query, creatorID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("failed to find most recent deployment: %w", err)
	}

	return record, nil
}

// CountInFlight counts deployments still in status 'deploying'
func (r *deploymentRepository) CountInFlight(ctx context.Context, creatorID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM deployment_records WHERE creator_id = $1 AND status = 'deploying'`

	var count int
	if err := r.db.QueryRowContext(ctx, query, creatorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count in-flight deployments: %w", err)
	}

	return count, nil
}
