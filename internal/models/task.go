package models

import "time"

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   string     `gorm:"size:64;index;not null" json:"projectId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	Status      TaskStatus `gorm:"size:20;default:'open'" json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *uint      `gorm:"index" json:"assignedTo"`
	CreatedBy   uint       `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
