package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"taskbuddy-api/internal/cache"
	"taskbuddy-api/internal/models"
	"taskbuddy-api/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options tunes a Store. Zero values pick sensible defaults.
type Options struct {
	CacheTTL time.Duration
	Now      func() time.Time
	NewID    func() string
	// Blobs, when set, has replaced and orphaned attachments released.
	Blobs storage.BlobStore
}

// Store keeps each user's task list in memory and in sync with the database.
// Database writes are not versioned: concurrent writers to one task race and
// the later write wins.
type Store struct {
	db    *gorm.DB
	lists cache.TaskLists
	ttl   time.Duration
	now   func() time.Time
	newID func() string
	blobs storage.BlobStore

	// guards the cached lists and gen
	mu sync.Mutex
	// bumped by every mutation; Load only caches what it read if
	// no mutation for that user happened meanwhile
	gen map[string]uint64
}

// NewStore builds a Store over db. A nil lists gets an in-memory cache.
func NewStore(db *gorm.DB, lists cache.TaskLists, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	if lists == nil {
		lists = cache.NewMemoryTaskLists(opts.CacheTTL)
	}
	return &Store{
		db:    db,
		lists: lists,
		ttl:   opts.CacheTTL,
		now:   opts.Now,
		newID: opts.NewID,
		blobs: opts.Blobs,
		gen:   make(map[string]uint64),
	}
}

// dispatch applies a committed mutation to the user's cached list.
func (s *Store) dispatch(userID string, a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[userID]++
	s.lists.Update(userID, func(state []models.Task) []models.Task {
		return Reduce(state, a)
	})
}

func (s *Store) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[userID]
}

// Load fetches all of the user's tasks and replaces the in-memory list.
// An empty user id yields an empty list. On failure the cached list is
// dropped and the error returned. If a mutation for the user commits while
// the query runs, the result is returned but not cached.
func (s *Store) Load(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return []models.Task{}, nil
	}
	started := s.generation(userID)

	var rows []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, rowid asc").
		Find(&rows).Error
	if err != nil {
		log.Printf("load tasks for %s: %v", userID, err)
		s.mu.Lock()
		s.lists.Delete(userID)
		s.mu.Unlock()
		return []models.Task{}, fmt.Errorf("load tasks: %w", err)
	}

	s.mu.Lock()
	if s.gen[userID] == started {
		s.lists.Set(userID, Reduce(nil, SetTasks{Tasks: rows}), s.ttl)
	} else {
		s.lists.Delete(userID)
	}
	s.mu.Unlock()
	return cloneAll(rows), nil
}

// Tasks returns the user's in-memory list, loading it on a cache miss.
func (s *Store) Tasks(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return []models.Task{}, nil
	}
	if cached, ok := s.lists.Get(userID); ok {
		return cached, nil
	}
	return s.Load(ctx, userID)
}

// Get returns one of the user's tasks.
func (s *Store) Get(ctx context.Context, userID, id string) (models.Task, error) {
	if userID == "" {
		return models.Task{}, ErrNoUser
	}
	return s.find(ctx, userID, id)
}

func (s *Store) find(ctx context.Context, userID, id string) (models.Task, error) {
	var t models.Task
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("fetch task %s: %w", id, err)
	}
	return t, nil
}

// nextOrder returns one past the highest order in the user's status group.
func (s *Store) nextOrder(ctx context.Context, userID string, status models.TaskStatus) (int, error) {
	var max sql.NullInt64
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, status).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("compute order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Create inserts a new task owned by userID and records a "created" activity entry.
func (s *Store) Create(ctx context.Context, userID string, d Draft) (models.Task, error) {
	if userID == "" {
		return models.Task{}, ErrNoUser
	}
	d = d.normalized()
	if err := validate(d.Title, d.Category, d.DueDate, d.Status); err != nil {
		return models.Task{}, err
	}

	order := d.Order
	if order == nil {
		next, err := s.nextOrder(ctx, userID, d.Status)
		if err != nil {
			return models.Task{}, err
		}
		order = &next
	}

	task := models.Task{
		ID:          s.newID(),
		UserID:      userID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		DueDate:     d.DueDate,
		Status:      d.Status,
		Completed:   d.Status == models.StatusCompleted,
		FileURL:     d.FileURL,
		Order:       order,
	}
	appendActivity(&task, s.now(), models.ActionCreated, fmt.Sprintf("Task %q was created", task.Title))

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.dispatch(userID, AddTask{Task: task})
	return task, nil
}

// Modify overwrites every editable field of the stored task with next's and
// records an "updated" activity entry describing the differences. The id,
// owner, creation time and activity history are kept from the stored row.
// A nil order keeps the current position, or moves the task to the end of
// its new group when the status changed.
func (s *Store) Modify(ctx context.Context, userID string, next models.Task) (models.Task, error) {
	if userID == "" {
		return models.Task{}, ErrNoUser
	}
	prev, err := s.find(ctx, userID, next.ID)
	if err != nil {
		return models.Task{}, err
	}

	updated := prev.Clone()
	updated.Title = strings.TrimSpace(next.Title)
	updated.Description = next.Description
	updated.Category = next.Category
	if updated.Category == "" {
		updated.Category = prev.Category
	}
	updated.DueDate = strings.TrimSpace(next.DueDate)
	updated.Status = next.Status
	// a blob: reference keeps the stored attachment
	switch u := durableURL(next.FileURL); {
	case u != "":
		updated.FileURL = u
	case strings.TrimSpace(next.FileURL) == "":
		updated.FileURL = ""
	}
	if err := validate(updated.Title, updated.Category, updated.DueDate, updated.Status); err != nil {
		return models.Task{}, err
	}

	switch {
	case next.Order != nil:
		updated.Order = models.IntPtr(*next.Order)
	case updated.Status != prev.Status:
		end, err := s.nextOrder(ctx, userID, updated.Status)
		if err != nil {
			return models.Task{}, err
		}
		updated.Order = &end
	}

	appendActivity(&updated, s.now(), models.ActionUpdated, DescribeChanges(prev, updated))
	saved, err := s.save(ctx, updated)
	if err != nil {
		return models.Task{}, err
	}
	if prev.FileURL != saved.FileURL {
		s.releaseFile(ctx, prev.FileURL)
	}
	return saved, nil
}

// releaseFile drops an attachment no task refers to any more.
func (s *Store) releaseFile(ctx context.Context, url string) {
	if s.blobs == nil || url == "" {
		return
	}
	if err := s.blobs.Release(ctx, url); err != nil {
		log.Printf("release attachment %s: %v", url, err)
	}
}

// save writes the full record in one statement and mirrors it in memory.
func (s *Store) save(ctx context.Context, t models.Task) (models.Task, error) {
	t.Completed = t.Status == models.StatusCompleted
	if err := s.db.WithContext(ctx).Save(&t).Error; err != nil {
		return models.Task{}, fmt.Errorf("update task %s: %w", t.ID, err)
	}
	s.dispatch(t.UserID, UpdateTask{Task: t})
	return t, nil
}

// SetStatus changes only the status (and with it completed and order).
func (s *Store) SetStatus(ctx context.Context, userID, id string, status models.TaskStatus) (models.Task, error) {
	if userID == "" {
		return models.Task{}, ErrNoUser
	}
	current, err := s.find(ctx, userID, id)
	if err != nil {
		return models.Task{}, err
	}
	next := current.Clone()
	next.Status = status
	next.Order = nil
	return s.Modify(ctx, userID, next)
}

// Remove hard-deletes the task and checks that it is gone. Removing an
// unknown or already removed id returns ErrNotFound and changes nothing.
func (s *Store) Remove(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNoUser
	}
	current, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)

	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	var remaining int64
	if err := db.Model(&models.Task{}).Where("id = ?", id).Count(&remaining).Error; err != nil {
		return fmt.Errorf("verify delete of %s: %w", id, err)
	}
	if remaining > 0 {
		return fmt.Errorf("task %s still present after delete", id)
	}

	s.dispatch(userID, DeleteTask{ID: id})
	s.releaseFile(ctx, current.FileURL)
	return nil
}

// Stats counts the user's tasks per status group.
type Stats struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Total      int64 `json:"total"`
}

// Stats returns per-status counts for the user.
func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	if userID == "" {
		return st, nil
	}

	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return st, fmt.Errorf("compute stats: %w", err)
	}

	for _, r := range rows {
		switch models.TaskStatus(r.Status) {
		case models.StatusTodo:
			st.Todo = r.Count
		case models.StatusInProgress:
			st.InProgress = r.Count
		case models.StatusCompleted:
			st.Completed = r.Count
		}
		st.Total += r.Count
	}
	return st, nil
}
