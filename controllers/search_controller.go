package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/ams-backend/services"
)

type SearchResponse struct {
	Query   string                  `json:"query"`
	Total   int                     `json:"total"`
	Results []services.SearchResult `json:"results"`
}

// SearchHandler tìm kiếm full-text trên nội dung các trang đã indexed
func SearchHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		docType := c.DefaultQuery("type", "all")

		limit := services.DefaultSearchLimit
		if l := c.Query("limit"); l != "" {
			if val, err := strconv.Atoi(l); err == nil {
				limit = val
			}
		}

		results, err := services.SearchDocuments(db, query, docType, limit)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Tìm kiếm thất bại", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, SearchResponse{
			Query:   query,
			Total:   len(results),
			Results: results,
		})
	}
}

// RecentSearches trả về các từ khoá tìm kiếm gần đây (không trùng lặp)
func RecentSearches(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		queries, err := services.RecentSearches(db, 10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lấy được lịch sử tìm kiếm"})
			return
		}
		c.JSON(http.StatusOK, queries)
	}
}
