package cache

import (
	"time"

	"taskbuddy-api/internal/models"
)

// TaskLists holds the last known task list per user.
// Values handed in and out are copies; callers never share slices with the cache.
type TaskLists interface {
	// Get returns the user's list and whether it was present and not expired.
	Get(userID string) ([]models.Task, bool)

	// Set stores the user's list. If ttl <= 0, the entry does not expire.
	Set(userID string, tasks []models.Task, ttl time.Duration)

	// Update applies fn to the cached list in place of the old one, if present
	// and not expired. It reports whether an entry was updated.
	Update(userID string, fn func([]models.Task) []models.Task) bool

	// Delete forgets a user's list.
	Delete(userID string)

	// Len returns the number of non-expired lists.
	Len() int

	// PurgeExpired removes expired lists.
	PurgeExpired()
}
