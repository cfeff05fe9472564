package controllers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/ams-backend/models"
)

type TypeCount struct {
	DocumentType string `json:"document_type"`
	Count        int64  `json:"count"`
}

// GetStats trả số liệu tổng hợp: chỉ đọc, không side effect
func GetStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var totalDocs int64
	db.Model(&models.Document{}).Where("status = ?", models.StatusIndexed).Count(&totalDocs)

	var totalPages int64
	db.Model(&models.Document{}).
		Where("status = ?", models.StatusIndexed).
		Select("COALESCE(SUM(page_count), 0)").
		Scan(&totalPages)

	// Số lượt tìm kiếm 24h gần nhất
	var recentSearches int64
	db.Model(&models.SearchLog{}).
		Where("created_at >= ?", time.Now().Add(-24*time.Hour)).
		Count(&recentSearches)

	// Phân bố theo loại tài liệu
	var typeCounts []TypeCount
	db.Raw(`
		SELECT document_type, COUNT(*) AS count
		FROM documents
		WHERE status = ?
		GROUP BY document_type
		ORDER BY count DESC
	`, models.StatusIndexed).Scan(&typeCounts)

	documentTypes := make(map[string]int64, len(typeCounts))
	for _, tc := range typeCounts {
		documentTypes[tc.DocumentType] = tc.Count
	}

	// Lần index gần nhất
	var lastUpdated sql.NullTime
	db.Model(&models.Document{}).
		Where("status = ?", models.StatusIndexed).
		Select("MAX(updated_at)").
		Scan(&lastUpdated)

	var lastUpdatedAt *time.Time
	if lastUpdated.Valid {
		lastUpdatedAt = &lastUpdated.Time
	}

	c.JSON(http.StatusOK, gin.H{
		"total_documents": totalDocs,
		"total_pages":     totalPages,
		"recent_searches": recentSearches,
		"document_types":  documentTypes,
		"last_updated":    lastUpdatedAt,
	})
}
