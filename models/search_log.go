package models

import "time"

// SearchLog ghi lại lịch sử tìm kiếm, chỉ thêm không sửa.
// Dùng cho tính năng "tìm kiếm gần đây" và thống kê.
type SearchLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Query        string    `gorm:"size:255;not null" json:"query"`
	ResultsCount int       `json:"results_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
