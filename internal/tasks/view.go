package tasks

import (
	"sort"
	"strings"

	"taskbuddy-api/internal/models"
)

// Filter narrows the visible task list. Zero values match everything.
type Filter struct {
	Search            string
	Category          string
	DueDate           string
	SearchDescription bool
}

// Active reports whether any input narrows the list.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Search) != "" || f.Category != "" || f.DueDate != ""
}

// Match reports whether t is visible under f.
func (f Filter) Match(t models.Task) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hit := strings.Contains(strings.ToLower(t.Title), q)
		if !hit && f.SearchDescription {
			hit = strings.Contains(strings.ToLower(t.Description), q)
		}
		if !hit {
			return false
		}
	}
	if f.Category != "" && string(t.Category) != f.Category {
		return false
	}
	if f.DueDate != "" && t.DueDate != f.DueDate {
		return false
	}
	return true
}

// Apply returns the visible subset of tasks, in input order.
func Apply(tasks []models.Task, f Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Groups partitions tasks into board columns.
type Groups struct {
	Todo       []models.Task `json:"todo"`
	InProgress []models.Task `json:"inProgress"`
	Completed  []models.Task `json:"completed"`
}

// Len returns the number of grouped tasks.
func (g Groups) Len() int {
	return len(g.Todo) + len(g.InProgress) + len(g.Completed)
}

// ByStatus returns the column for a status, or nil for an unknown one.
func (g Groups) ByStatus(s models.TaskStatus) []models.Task {
	switch s {
	case models.StatusTodo:
		return g.Todo
	case models.StatusInProgress:
		return g.InProgress
	case models.StatusCompleted:
		return g.Completed
	}
	return nil
}

// Group partitions tasks by status. Tasks with an unknown status are left out.
func Group(tasks []models.Task) Groups {
	g := Groups{
		Todo:       []models.Task{},
		InProgress: []models.Task{},
		Completed:  []models.Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusTodo:
			g.Todo = append(g.Todo, t)
		case models.StatusInProgress:
			g.InProgress = append(g.InProgress, t)
		case models.StatusCompleted:
			g.Completed = append(g.Completed, t)
		}
	}
	SortByOrder(g.Todo)
	SortByOrder(g.InProgress)
	SortByOrder(g.Completed)
	return g
}

// View filters and then groups.
func View(tasks []models.Task, f Filter) Groups {
	return Group(Apply(tasks, f))
}

// SortByOrder sorts in place by order; unordered tasks keep their relative
// position after the ordered ones.
func SortByOrder(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].Order, tasks[j].Order
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
}
