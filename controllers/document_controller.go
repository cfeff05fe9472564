package controllers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/ams-backend/models"
	"github.com/vnkhanh/ams-backend/services"
	"github.com/vnkhanh/ams-backend/utils"
	"github.com/vnkhanh/ams-backend/ws"
)

const MaxUploadSize = 50 * 1024 * 1024 // 50MB

var pdfMagic = []byte("%PDF")

// UploadDocument nhận file PDF, lưu bytes gốc xuống đĩa, tạo record pending
// rồi đẩy vào hàng đợi. Trích xuất và index chạy nền, client poll trạng thái.
func UploadDocument(queue *services.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
			return
		}
		if file.Size > MaxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File vượt quá 50MB"})
			return
		}
		if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Chỉ hỗ trợ file PDF"})
			return
		}

		// Kiểm tra magic bytes, không tin phần mở rộng
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được file", "details": err.Error()})
			return
		}
		header := make([]byte, 4)
		_, err = io.ReadFull(src, header)
		src.Close()
		if err != nil || !bytes.Equal(header, pdfMagic) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File không phải PDF hợp lệ"})
			return
		}

		docID := uuid.New()
		storedName := utils.StoredFileName(docID.String(), file.Filename)

		uploadDir := utils.UploadDir()
		if _, err := utils.SaveUploadedFile(file, uploadDir, storedName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được file", "details": err.Error()})
			return
		}

		doc := models.Document{
			ID:           docID,
			Filename:     storedName,
			OriginalName: file.Filename,
			FileSize:     file.Size,
			Status:       models.StatusPending,
		}
		if err := db.Create(&doc).Error; err != nil {
			utils.RemoveStoredFile(uploadDir, storedName)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tài liệu", "details": err.Error()})
			return
		}

		if err := queue.Submit(docID); err != nil {
			// dọn lại để client upload lại sau
			db.Delete(&models.Document{}, "id = ?", docID)
			utils.RemoveStoredFile(uploadDir, storedName)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Hệ thống đang bận, thử lại sau"})
			return
		}

		ws.BroadcastDocumentListChanged()

		c.JSON(http.StatusOK, gin.H{
			"id":       doc.ID,
			"filename": doc.OriginalName,
			"size":     doc.FileSize,
			"status":   doc.Status,
		})
	}
}

// GetDocuments trả danh sách tài liệu kèm trạng thái, dùng cho polling trang danh sách
func GetDocuments(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var documents []models.Document
	query := db.Model(&models.Document{})

	// lọc theo trạng thái
	if status := c.Query("status"); status != "" {
		switch status {
		case models.StatusPending, models.StatusProcessing, models.StatusIndexed, models.StatusError:
			query = query.Where("status = ?", status)
		}
	}

	// lọc theo loại tài liệu
	if docType := c.Query("type"); docType != "" && docType != "all" {
		query = query.Where("document_type = ?", docType)
	}

	// tìm kiếm theo tên
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(original_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	// phân trang
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số tài liệu"})
		return
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  documents,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetDocumentDetail trả record của 1 tài liệu: client poll ở đây cho tới khi
// status là indexed (kèm page_count) hoặc error (kèm error_message).
func GetDocumentDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	id := c.Param("id")
	var document models.Document
	if err := db.First(&document, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}
	c.JSON(http.StatusOK, document)
}

// DownloadDocument trả về bytes PDF gốc, không biến đổi gì
func DownloadDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	id := c.Param("id")
	var document models.Document
	if err := db.First(&document, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	path := filepath.Join(utils.UploadDir(), document.Filename)
	c.FileAttachment(path, document.OriginalName)
}

// ReindexDocument đưa tài liệu vào hàng đợi index lại (sau lỗi hoặc khi cần làm mới).
// Trang cũ sẽ bị thay thế, không nhân đôi.
func ReindexDocument(queue *services.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)

		id := c.Param("id")
		docID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
			return
		}

		var document models.Document
		if err := db.First(&document, "id = ?", docID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
			return
		}

		if document.Status == models.StatusPending || document.Status == models.StatusProcessing {
			c.JSON(http.StatusConflict, gin.H{"error": "Tài liệu đang được xử lý"})
			return
		}

		if err := queue.Submit(docID); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Hệ thống đang bận, thử lại sau"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Đã đưa vào hàng đợi index lại", "id": docID})
	}
}

// DeleteDocument xoá tài liệu: record + các trang (cascade) + file trên đĩa
func DeleteDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	id := c.Param("id")
	docID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var document models.Document
	if err := db.First(&document, "id = ?", docID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&models.DocumentPage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, "id = ?", docID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa tài liệu"})
		return
	}

	// file trên đĩa xoá sau, lỗi chỉ log qua response cũng không cần
	utils.RemoveStoredFile(utils.UploadDir(), document.Filename)

	ws.BroadcastDocumentListChanged()
	c.JSON(http.StatusOK, gin.H{"message": "Xóa thành công"})
}
