package models

import "time"

// Message - proje sohbet panelindeki tek mesaj.
// ConversationID her zaman "project#<projectId>" formatındadır.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProjectID      string    `gorm:"size:64;index;not null" json:"projectId"`
	ConversationID string    `gorm:"size:100;index;not null" json:"conversationId"`
	UserID         uint      `gorm:"index;not null" json:"userId"`
	Username       string    `gorm:"size:100" json:"username"` // denormalize
	Body           string    `gorm:"size:2000;not null" json:"body"`
	Edited         bool      `gorm:"default:false" json:"edited"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
