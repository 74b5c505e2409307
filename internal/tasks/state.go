package tasks

import "taskbuddy-api/internal/models"

// Action is a change to a user's in-memory task list. Reduce is the only
// place the list is mutated.
type Action interface {
	isAction()
}

// SetTasks replaces the whole list.
type SetTasks struct{ Tasks []models.Task }

// AddTask appends a task, replacing any cached task with the same id.
type AddTask struct{ Task models.Task }

// UpdateTask replaces the task with the same id.
type UpdateTask struct{ Task models.Task }

// DeleteTask drops the task with the given id.
type DeleteTask struct{ ID string }

func (SetTasks) isAction()   {}
func (AddTask) isAction()    {}
func (UpdateTask) isAction() {}
func (DeleteTask) isAction() {}

// Reduce returns the list that results from applying a to state.
// state is not modified.
func Reduce(state []models.Task, a Action) []models.Task {
	switch a := a.(type) {
	case SetTasks:
		return cloneAll(a.Tasks)
	case AddTask:
		next := cloneAll(state)
		for i := range next {
			if next[i].ID == a.Task.ID {
				next[i] = a.Task.Clone()
				return next
			}
		}
		return append(next, a.Task.Clone())
	case UpdateTask:
		next := cloneAll(state)
		for i := range next {
			if next[i].ID == a.Task.ID {
				next[i] = a.Task.Clone()
				break
			}
		}
		return next
	case DeleteTask:
		next := make([]models.Task, 0, len(state))
		for _, t := range state {
			if t.ID != a.ID {
				next = append(next, t.Clone())
			}
		}
		return next
	default:
		return cloneAll(state)
	}
}

func cloneAll(in []models.Task) []models.Task {
	out := make([]models.Task, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
