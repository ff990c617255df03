package models

import "time"

type Project struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID string `gorm:"size:64;uniqueIndex;not null" json:"projectId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Slug      string `gorm:"size:255;index" json:"slug"`
	Status    string `gorm:"size:30;default:'active'" json:"status"`

	// Zaman çizelgesi event'leri proje üzerinde JSON dizisi olarak tutulur,
	// bütçe satırlarından bağımsız olarak tek parça okunup yazılır
	TimelineEvents string `gorm:"type:jsonb;default:'[]'" json:"timelineEvents"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TimelineEvent - bir bütçe satırına bağlı takvim girdisi.
// Tablo değil, Project.TimelineEvents içindeki JSON elemanı.
type TimelineEvent struct {
	ID           string  `json:"id"`
	BudgetItemID string  `json:"budgetItemId"`
	Date         string  `json:"date"` // "2025-12-09"
	Hours        float64 `json:"hours"`
	Description  string  `json:"description"`
}
