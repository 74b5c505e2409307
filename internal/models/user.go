package models

import (
	"time"
)

// User represents an account that owns tasks
type User struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"unique;not null"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoUrl" gorm:"column:photo_url"`
	Password    string    `json:"-" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
