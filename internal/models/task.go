package models

import (
	"time"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "In progress"
	StatusDone       TaskStatus = "Done"
)

// Valid reports whether s is one of the known status values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Description string     `json:"description" gorm:"size:500"`
	Priority    int        `json:"priority" gorm:"not null"`
	Status      TaskStatus `json:"status" gorm:"size:20;not null;default:'TODO'"`

	ResponsiblePersonID uint `json:"responsible_person_id" gorm:"not null"`
	ResponsiblePerson   User `json:"-" gorm:"foreignKey:ResponsiblePersonID;constraint:OnDelete:CASCADE"`

	Executors []User `json:"executors,omitempty" gorm:"many2many:task_executors;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasExecutor reports whether the given user is assigned as an executor.
func (t *Task) HasExecutor(userID uint) bool {
	for _, executor := range t.Executors {
		if executor.ID == userID {
			return true
		}
	}
	return false
}
