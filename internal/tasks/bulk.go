package tasks

import (
	"context"
	"fmt"

	"taskbuddy-api/internal/models"
)

// Bulk actions
const (
	BulkDelete = "delete"
	BulkStatus = "status"
)

// BulkRequest applies one action to several selected tasks.
type BulkRequest struct {
	IDs    []string          `json:"ids"`
	Action string            `json:"action"`
	Status models.TaskStatus `json:"status"`
}

// BulkResult is the outcome for one id.
type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	// Task is the updated task after a successful status change.
	Task *models.Task `json:"task,omitempty"`
}

// Bulk runs the action for each id in turn. A failure on one id does not
// stop the others.
func (s *Store) Bulk(ctx context.Context, userID string, req BulkRequest) ([]BulkResult, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	switch req.Action {
	case BulkDelete:
	case BulkStatus:
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTask, req.Status)
		}
	default:
		return nil, fmt.Errorf("%w: unknown bulk action %q", ErrInvalidTask, req.Action)
	}

	results := make([]BulkResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		var (
			err     error
			updated models.Task
		)
		if req.Action == BulkDelete {
			err = s.Remove(ctx, userID, id)
		} else {
			updated, err = s.SetStatus(ctx, userID, id, req.Status)
		}
		r := BulkResult{ID: id, OK: err == nil}
		switch {
		case err != nil:
			r.Error = err.Error()
		case req.Action == BulkStatus:
			r.Task = &updated
		}
		results = append(results, r)
	}
	return results, nil
}
