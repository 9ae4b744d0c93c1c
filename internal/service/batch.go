package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pacer inserts a delay between successive batch items so the external
// provider's rate limits are respected. Injected so tests run without real
// time passing.
type Pacer interface {
	Pace(ctx context.Context) error
}

type delayPacer struct {
	delay time.Duration
}

// NewDelayPacer returns a Pacer that waits a fixed delay, honoring context
// cancellation.
func NewDelayPacer(delay time.Duration) Pacer {
	return &delayPacer{delay: delay}
}

func (p *delayPacer) Pace(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BatchItemResult is the outcome of one product within a batch promotion.
type BatchItemResult struct {
	ProductID    uuid.UUID  `json:"product_id"`
	Success      bool       `json:"success"`
	DeploymentID *uuid.UUID `json:"deployment_id,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// BatchSummary aggregates per-item outcomes. Successful + Failed == Total
// always holds.
type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BatchResult is the structured outcome of a batch promotion.
type BatchResult struct {
	Results []BatchItemResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

// BatchPromote promotes the given products strictly sequentially with pacing
// between items. One item's failure, including a panic, never aborts the
// batch; every requested product gets exactly one result entry.
func (s *deploymentService) BatchPromote(ctx context.Context, creatorID uuid.UUID, productIDs []uuid.UUID) *BatchResult {
	results := make([]BatchItemResult, 0, len(productIDs))

	for i, productID := range productIDs {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchItemResult{
				ProductID: productID,
				Success:   false,
				Error:     fmt.Sprintf("batch aborted: %v", err),
			})
			continue
		}

		if i > 0 {
			if err := s.pacer.Pace(ctx); err != nil {
				results = append(results, BatchItemResult{
					ProductID: productID,
					Success:   false,
					Error:     fmt.Sprintf("batch aborted: %v", err),
				})
				continue
			}
		}

		results = append(results, s.promoteItem(ctx, creatorID, productID))
	}

	summary := BatchSummary{Total: len(results)}
	for _, item := range results {
		if item.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	s.logger.Info("Batch promotion finished",
		zap.String("creator_id", creatorID.String()),
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
	)

	return &BatchResult{Results: results, Summary: summary}
}

// promoteItem runs one promotion and converts panics into a per-item failure.
func (s *deploymentService) promoteItem(ctx context.Context, creatorID, productID uuid.UUID) (item BatchItemResult) {
	item = BatchItemResult{ProductID: productID}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Promotion panicked",
				zap.String("product_id", productID.String()),
				zap.Any("panic", r),
			)
			item.Success = false
			item.Error = fmt.Sprintf("promotion panicked: %v", r)
		}
	}()

	result := s.Promote(ctx, creatorID, productID)
	item.Success = result.Success
	item.DeploymentID = result.DeploymentID
	item.Error = result.Error
	return item
}
