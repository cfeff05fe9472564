package models

import (
	"time"

	"github.com/google/uuid"
)

// Trạng thái xử lý tài liệu: pending -> processing -> indexed | error.
// Không quay lại pending/processing sau khi đã ở trạng thái kết thúc.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusIndexed    = "indexed"
	StatusError      = "error"
)

type Document struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"` // tên file lưu trên đĩa
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	FileSize     int64     `json:"file_size"` // bytes
	Status       string    `gorm:"size:30;default:'pending';index" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	PageCount    int       `json:"page_count"`
	DocumentType string    `gorm:"size:50;index" json:"document_type"` // policy|manual|faq|guide|document
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Pages []DocumentPage `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// DocumentPage lưu văn bản đã trích xuất của từng trang.
// Mỗi cặp (document_id, page_number) chỉ có đúng một dòng.
type DocumentPage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_page" json:"document_id"`
	PageNumber int       `gorm:"not null;uniqueIndex:idx_document_page" json:"page_number"`
	Content    string    `gorm:"type:text" json:"content"`
}
