package tasks

import (
	"fmt"
	"strings"
	"time"

	"taskbuddy-api/internal/models"
)

// DescribeChanges summarizes what an edit changed, for the activity log.
func DescribeChanges(prev, next models.Task) string {
	var changes []string
	if prev.Title != next.Title {
		changes = append(changes, fmt.Sprintf("Title changed from %q to %q", prev.Title, next.Title))
	}
	if prev.Description != next.Description {
		changes = append(changes, "Description was updated")
	}
	if prev.Category != next.Category {
		changes = append(changes, fmt.Sprintf("Category changed from %q to %q", prev.Category, next.Category))
	}
	if prev.Status != next.Status {
		changes = append(changes, fmt.Sprintf("Status changed from %q to %q", prev.Status, next.Status))
	}
	if prev.DueDate != next.DueDate {
		changes = append(changes, fmt.Sprintf("Due date changed from %q to %q", prev.DueDate, next.DueDate))
	}
	if next.FileURL != "" && next.FileURL != prev.FileURL {
		changes = append(changes, "New file was attached")
	}
	if len(changes) == 0 {
		return "Task was edited"
	}
	return strings.Join(changes, ", ")
}

// appendActivity adds an entry stamped at or after the previous entry.
func appendActivity(t *models.Task, at time.Time, action, details string) {
	at = at.UTC()
	if n := len(t.Activity); n > 0 && at.Before(t.Activity[n-1].Timestamp) {
		at = t.Activity[n-1].Timestamp
	}
	t.Activity = append(t.Activity, models.ActivityEntry{
		Timestamp: at,
		Action:    action,
		Details:   details,
	})
}
