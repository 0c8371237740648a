package services

import (
	"sync"
	"time"

	"framecheck/internal/models"
)

// DefaultHistoryPoints is the window size used when none is configured
const DefaultHistoryPoints = 200

// EstimationHistory keeps the most recent estimation outcomes in memory
type EstimationHistory struct {
	mu            sync.RWMutex
	records       []models.EstimationRecord
	maxDataPoints int
	now           func() time.Time
}

// NewEstimationHistory creates a history window holding at most maxPoints records
func NewEstimationHistory(maxPoints int) *EstimationHistory {
	if maxPoints <= 0 {
		maxPoints = DefaultHistoryPoints
	}
	return &EstimationHistory{
		records:       make([]models.EstimationRecord, 0, maxPoints),
		maxDataPoints: maxPoints,
		now:           time.Now,
	}
}

// ObserveEstimation appends a record, dropping the oldest once full
func (h *EstimationHistory) ObserveEstimation(record models.EstimationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, record)
	if len(h.records) > h.maxDataPoints {
		h.records = h.records[1:]
	}
}

// Recent returns the records newer than duration, oldest first. A
// non-positive duration returns the whole window.
func (h *EstimationHistory) Recent(duration time.Duration) []models.EstimationRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	filtered := []models.EstimationRecord{}
	if duration <= 0 {
		return append(filtered, h.records...)
	}

	cutoffTime := h.now().Add(-duration)
	for _, r := range h.records {
		if r.Timestamp.After(cutoffTime) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Len returns the number of records in the window
func (h *EstimationHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
