package tasks

import (
	"context"
	"fmt"

	"taskbuddy-api/internal/models"
)

// MoveRequest describes a card dropped on the board.
type MoveRequest struct {
	// Status is the column the card was dropped on.
	Status models.TaskStatus `json:"status"`
	// Index is the drop position inside the column; nil appends.
	Index *int `json:"index"`
	// FilterActive is set by clients whose view is narrowed by search or filters.
	FilterActive bool `json:"filterActive"`
}

// MoveResult lists what a move changed.
type MoveResult struct {
	Task    models.Task   `json:"task"`
	Changed []models.Task `json:"changed"`
	NoOp    bool          `json:"noOp"`
}

// Move applies a drag-and-drop. Dropping on another column changes the
// status and appends the task there, then repositions it if an index was
// given. Dropping inside the current column reorders it, writing every
// sibling whose order changed one by one. Moves are refused while a filter
// is active.
func (s *Store) Move(ctx context.Context, userID, id string, req MoveRequest) (MoveResult, error) {
	if userID == "" {
		return MoveResult{}, ErrNoUser
	}
	if req.FilterActive {
		return MoveResult{}, ErrFilterActive
	}
	if !req.Status.Valid() {
		return MoveResult{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTask, req.Status)
	}

	task, err := s.find(ctx, userID, id)
	if err != nil {
		return MoveResult{}, err
	}

	var changed []models.Task
	if task.Status != req.Status {
		task, err = s.SetStatus(ctx, userID, id, req.Status)
		if err != nil {
			return MoveResult{}, err
		}
		changed = append(changed, task)
	}

	if req.Index != nil {
		reordered, err := s.reorder(ctx, userID, task, *req.Index)
		if err != nil {
			return MoveResult{}, err
		}
		for _, t := range reordered {
			if t.ID == task.ID {
				task = t
			}
		}
		changed = mergeChanged(changed, reordered)
	}

	return MoveResult{Task: task, Changed: changed, NoOp: len(changed) == 0}, nil
}

// reorder places task at index inside its status group and persists every
// task whose order changed. Pure reorders add no activity entries.
func (s *Store) reorder(ctx context.Context, userID string, task models.Task, index int) ([]models.Task, error) {
	var group []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, task.Status).
		Order("created_at asc, rowid asc").
		Find(&group).Error
	if err != nil {
		return nil, fmt.Errorf("load %s group: %w", task.Status, err)
	}
	SortByOrder(group)

	from := -1
	for i, t := range group {
		if t.ID == task.ID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, ErrNotFound
	}

	to := clamp(index, 0, len(group)-1)
	if from == to {
		return nil, nil
	}
	group = moveItem(group, from, to)

	var changed []models.Task
	for i := range group {
		if group[i].Order != nil && *group[i].Order == i {
			continue
		}
		group[i].Order = models.IntPtr(i)
		saved, err := s.save(ctx, group[i])
		if err != nil {
			return changed, err
		}
		changed = append(changed, saved)
	}
	return changed, nil
}

// moveItem returns list with the element at from relocated to to.
func moveItem(list []models.Task, from, to int) []models.Task {
	if from == to {
		return list
	}
	item := list[from]
	out := make([]models.Task, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	out = append(out[:to], append([]models.Task{item}, out[to:]...)...)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mergeChanged appends later versions, replacing earlier ones with the same id.
func mergeChanged(into, later []models.Task) []models.Task {
	for _, t := range later {
		replaced := false
		for i := range into {
			if into[i].ID == t.ID {
				into[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			into = append(into, t)
		}
	}
	return into
}
