package models

import "time"

// FileEntry - dosya yöneticisindeki bir kayıt. İçerik diskte, meta burada.
type FileEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   string    `gorm:"size:64;index;not null" json:"projectId"`
	FileName    string    `gorm:"size:255;not null" json:"fileName"`
	StoredPath  string    `gorm:"size:500;not null" json:"-"`
	Size        int64     `json:"size"`
	ContentType string    `gorm:"size:100" json:"contentType"`
	UploadedBy  uint      `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
