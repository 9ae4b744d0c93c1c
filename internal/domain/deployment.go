package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeploymentStatus is the lifecycle state of one promotion attempt
type DeploymentStatus string

const (
	DeploymentStatusPending   DeploymentStatus = "pending"
	DeploymentStatusDeploying DeploymentStatus = "deploying"
	DeploymentStatusCompleted DeploymentStatus = "completed"
	DeploymentStatusFailed    DeploymentStatus = "failed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s DeploymentStatus) IsTerminal() bool {
	return s == DeploymentStatusCompleted || s == DeploymentStatusFailed
}

// Environment names used on deployment records
const (
	EnvironmentTest       = "test"
	EnvironmentProduction = "production"
)

// DeploymentRecord is the durable audit object for one promotion attempt.
// A record is created the moment the pipeline commits to calling the external
// provider and becomes immutable once completed or failed.
type DeploymentRecord struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	CreatorID   uuid.UUID        `json:"creator_id" db:"creator_id"`
	ProductID   uuid.UUID        `json:"product_id" db:"product_id"`
	SourceEnv   string           `json:"source_env" db:"source_env"`
	TargetEnv   string           `json:"target_env" db:"target_env"`
	Status      DeploymentStatus `json:"status" db:"status"`
	Progress    int              `json:"progress" db:"progress"`
	Message     string           `json:"message" db:"message"`
	InitiatedBy uuid.UUID        `json:"initiated_by" db:"initiated_by"`
	StartedAt   time.Time        `json:"started_at" db:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	ErrorDetail *string          `json:"error_detail,omitempty" db:"error_detail"`
}
