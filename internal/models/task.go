package models

import (
	"time"
)

// TaskStatus represents the status group of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// Statuses lists the status groups in board column order
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known status groups
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskCategory represents the category tag of a task
type TaskCategory string

const (
	CategoryWork     TaskCategory = "Work"
	CategoryPersonal TaskCategory = "Personal"
)

// Valid reports whether c is a supported category
func (c TaskCategory) Valid() bool {
	return c == CategoryWork || c == CategoryPersonal
}

// Activity actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// ActivityEntry is one line of a task's change history
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// Task represents a task in the system
type Task struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	UserID      string          `json:"userId" gorm:"column:user_id;index;not null"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description"`
	Category    TaskCategory    `json:"category" gorm:"not null;default:'Work'"`
	DueDate     string          `json:"dueDate" gorm:"column:due_date"`
	Status      TaskStatus      `json:"status" gorm:"not null;default:'Todo';index"`
	Completed   bool            `json:"completed"`
	FileURL     string          `json:"fileUrl,omitempty" gorm:"column:file_url"`
	Selected    bool            `json:"selected,omitempty" gorm:"-"`
	Order       *int            `json:"order,omitempty" gorm:"column:sort_order"`
	Activity    []ActivityEntry `json:"activity" gorm:"serializer:json"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// Clone returns a copy that shares no slices or pointers with t
func (t Task) Clone() Task {
	c := t
	if t.Order != nil {
		o := *t.Order
		c.Order = &o
	}
	if t.Activity != nil {
		c.Activity = append([]ActivityEntry(nil), t.Activity...)
	}
	return c
}

// OrderValue returns the order or -1 when unset
func (t Task) OrderValue() int {
	if t.Order == nil {
		return -1
	}
	return *t.Order
}

// IntPtr is a small helper for optional order values
func IntPtr(v int) *int {
	return &v
}
