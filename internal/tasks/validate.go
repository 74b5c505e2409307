package tasks

import (
	"fmt"
	"strings"
	"time"

	"taskbuddy-api/internal/models"
)

const dateLayout = "2006-01-02"

// Draft is the user-supplied content of a new task.
type Draft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    models.TaskCategory `json:"category"`
	DueDate     string              `json:"dueDate"`
	Status      models.TaskStatus   `json:"status"`
	FileURL     string              `json:"fileUrl"`
	Order       *int                `json:"order"`
}

func (d Draft) normalized() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.DueDate = strings.TrimSpace(d.DueDate)
	if d.Category == "" {
		d.Category = models.CategoryWork
	}
	d.FileURL = durableURL(d.FileURL)
	return d
}

func validate(title string, category models.TaskCategory, dueDate string, status models.TaskStatus) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTask, category)
	}
	if dueDate == "" {
		return fmt.Errorf("%w: due date is required", ErrInvalidTask)
	}
	if _, err := time.Parse(dateLayout, dueDate); err != nil {
		return fmt.Errorf("%w: due date %q is not YYYY-MM-DD", ErrInvalidTask, dueDate)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, status)
	}
	return nil
}

// durableURL drops browser-local blob references, which cannot be fetched later.
func durableURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "blob:") {
		return ""
	}
	return u
}
