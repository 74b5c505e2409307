package tasks

import (
	"context"
	"testing"

	"taskbuddy-api/internal/models"

	"github.com/stretchr/testify/require"
)

func titlesInGroup(t *testing.T, s *Store, status models.TaskStatus) []string {
	t.Helper()
	list, err := s.Load(context.Background(), "u-1")
	require.NoError(t, err)
	var titles []string
	for _, task := range Group(list).ByStatus(status) {
		titles = append(titles, task.Title)
	}
	return titles
}

func TestMove_AcrossGroups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _ = s.Create(ctx, "u-1", draft("done", models.StatusCompleted))
	task, err := s.Create(ctx, "u-1", draft("a", models.StatusTodo))
	require.NoError(t, err)

	res, err := s.Move(ctx, "u-1", task.ID, MoveRequest{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.False(t, res.NoOp)
	require.Equal(t, models.StatusCompleted, res.Task.Status)
	require.True(t, res.Task.Completed)
	require.Equal(t, []string{"done", "a"}, titlesInGroup(t, s, models.StatusCompleted))
	require.Len(t, res.Task.Activity, 2)
}

func TestMove_RejectedWhileFiltering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task, err := s.Create(ctx, "u-1", draft("a", models.StatusTodo))
	require.NoError(t, err)

	_, err = s.Move(ctx, "u-1", task.ID, MoveRequest{Status: models.StatusCompleted, FilterActive: true})
	require.ErrorIs(t, err, ErrFilterActive)

	got, err := s.Get(ctx, "u-1", task.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, got.Status)
}

func TestMove_SameGroupIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, "u-1", draft("a", models.StatusTodo))
	_, _ = s.Create(ctx, "u-1", draft("b", models.StatusTodo))

	res, err := s.Move(ctx, "u-1", a.ID, MoveRequest{Status: models.StatusTodo})
	require.NoError(t, err)
	require.True(t, res.NoOp)

	res, err = s.Move(ctx, "u-1", a.ID, MoveRequest{Status: models.StatusTodo, Index: models.IntPtr(0)})
	require.NoError(t, err)
	require.True(t, res.NoOp)

	got, _ := s.Get(ctx, "u-1", a.ID)
	require.Len(t, got.Activity, 1)
}

func TestMove_ReorderWithinGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _ = s.Create(ctx, "u-1", draft("a", models.StatusTodo))
	_, _ = s.Create(ctx, "u-1", draft("b", models.StatusTodo))
	c, _ := s.Create(ctx, "u-1", draft("c", models.StatusTodo))

	res, err := s.Move(ctx, "u-1", c.ID, MoveRequest{Status: models.StatusTodo, Index: models.IntPtr(0)})
	require.NoError(t, err)
	require.False(t, res.NoOp)
	require.Len(t, res.Changed, 3)
	require.Equal(t, 0, res.Task.OrderValue())
	require.Equal(t, []string{"c", "a", "b"}, titlesInGroup(t, s, models.StatusTodo))

	// reorders do not grow the activity log
	got, _ := s.Get(ctx, "u-1", c.ID)
	require.Len(t, got.Activity, 1)
}

func TestMove_IndexIsClamped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, "u-1", draft("a", models.StatusTodo))
	_, _ = s.Create(ctx, "u-1", draft("b", models.StatusTodo))

	_, err := s.Move(ctx, "u-1", a.ID, MoveRequest{Status: models.StatusTodo, Index: models.IntPtr(99)})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, titlesInGroup(t, s, models.StatusTodo))
}

func TestMove_IntoGroupAtIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _ = s.Create(ctx, "u-1", draft("x", models.StatusInProgress))
	_, _ = s.Create(ctx, "u-1", draft("y", models.StatusInProgress))
	a, _ := s.Create(ctx, "u-1", draft("a", models.StatusTodo))

	res, err := s.Move(ctx, "u-1", a.ID, MoveRequest{Status: models.StatusInProgress, Index: models.IntPtr(1)})
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, res.Task.Status)
	require.Equal(t, []string{"x", "a", "y"}, titlesInGroup(t, s, models.StatusInProgress))
}

func TestMove_UnknownTaskOrStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, "u-1", draft("a", models.StatusTodo))

	_, err := s.Move(ctx, "u-1", "nope", MoveRequest{Status: models.StatusTodo})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Move(ctx, "u-1", a.ID, MoveRequest{Status: "Later"})
	require.ErrorIs(t, err, ErrInvalidTask)
}

func TestMoveItem(t *testing.T) {
	list := []models.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	ids := func(ts []models.Task) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}
	require.Equal(t, []string{"b", "c", "a", "d"}, ids(moveItem(append([]models.Task(nil), list...), 0, 2)))
	require.Equal(t, []string{"d", "a", "b", "c"}, ids(moveItem(append([]models.Task(nil), list...), 3, 0)))
}
