package repositories

import (
	"fmt"

	"github.com/desertthunder/streamcatch/internal/models"
)

// CaptureStoreAdapter implements tasks.CaptureStore using CaptureRepository.
//
// Captures that were already saved (non-empty ID) are updated in place instead of inserted again.
type CaptureStoreAdapter struct {
	repo *CaptureRepository
}

// NewCaptureStoreAdapter creates a new CaptureStoreAdapter with the given repository
func NewCaptureStoreAdapter(repo *CaptureRepository) *CaptureStoreAdapter {
	return &CaptureStoreAdapter{repo: repo}
}

// SaveCapture persists the outcome of a capture run.
func (a *CaptureStoreAdapter) SaveCapture(capture *models.Capture) error {
	if capture.ID() != "" {
		if err := a.repo.Update(capture); err != nil {
			return fmt.Errorf("failed to update capture: %w", err)
		}
		return nil
	}

	if err := a.repo.Create(capture); err != nil {
		return fmt.Errorf("failed to save capture: %w", err)
	}
	return nil
}
