package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/ams-backend/models"
	"github.com/vnkhanh/ams-backend/ws"
)

// Indexer ghi nội dung trang và cập nhật trạng thái tài liệu.
// Mỗi tài liệu chỉ được index bởi một goroutine tại một thời điểm,
// các tài liệu khác nhau chạy song song thoải mái.
type Indexer struct {
	db        *gorm.DB
	uploadDir string

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewIndexer(db *gorm.DB, uploadDir string) *Indexer {
	return &Indexer{
		db:        db,
		uploadDir: uploadDir,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor trả về mutex riêng của một tài liệu.
func (ix *Indexer) lockFor(docID uuid.UUID) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if l, ok := ix.locks[docID]; ok {
		return l
	}
	l := &sync.Mutex{}
	ix.locks[docID] = l
	return l
}

// ProcessDocument chạy toàn bộ pipeline cho một tài liệu: đọc file trên đĩa,
// trích xuất từng trang, ghi index. Thất bại ở bước nào thì tài liệu chuyển
// sang trạng thái error kèm thông báo, không ném lỗi cho client.
func (ix *Indexer) ProcessDocument(docID uuid.UUID) error {
	lock := ix.lockFor(docID)
	lock.Lock()
	defer lock.Unlock()

	var doc models.Document
	if err := ix.db.First(&doc, "id = ?", docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, docID)
		}
		return err
	}

	// Chuyển sang processing. Index lại (reindex) từ indexed/error cũng đi qua đây.
	res := ix.db.Model(&models.Document{}).
		Where("id = ? AND status IN ?", docID,
			[]string{models.StatusPending, models.StatusIndexed, models.StatusError}).
		Update("status", models.StatusProcessing)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// đang được xử lý ở chỗ khác
		return nil
	}

	ws.SendStatusUpdate(docID.String(), models.StatusProcessing, 0, "")
	ws.BroadcastDocumentListChanged()

	data, err := os.ReadFile(filepath.Join(ix.uploadDir, doc.Filename))
	if err != nil {
		msg := "không đọc được file đã lưu: " + err.Error()
		ix.markError(docID, msg)
		return fmt.Errorf("%w: %s", ErrExtraction, msg)
	}

	pages, err := ExtractPagesFromPDF(data)
	if err != nil {
		ix.markError(docID, err.Error())
		return err
	}

	if err := ix.IndexPages(docID, pages); err != nil {
		ix.markError(docID, err.Error())
		return err
	}

	ws.SendStatusUpdate(docID.String(), models.StatusIndexed, len(pages), "")
	ws.BroadcastDocumentListChanged()
	return nil
}

// IndexPages ghi các trang đã trích xuất trong một transaction duy nhất:
// xoá trang cũ (nếu index lại), ghi trang mới, cập nhật trạng thái indexed.
// Hoặc tất cả trang được ghi, hoặc không trang nào cả.
func (ix *Indexer) IndexPages(docID uuid.UUID, pages []PageText) error {
	var doc models.Document
	if err := ix.db.First(&doc, "id = ?", docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, docID)
		}
		return err
	}

	docType := ClassifyDocument(doc.OriginalName, pages)

	err := ix.db.Transaction(func(tx *gorm.DB) error {
		// Index lại phải thay thế trang cũ, không nhân đôi
		if err := tx.Where("document_id = ?", docID).Delete(&models.DocumentPage{}).Error; err != nil {
			return err
		}

		rows := make([]models.DocumentPage, 0, len(pages))
		for _, p := range pages {
			rows = append(rows, models.DocumentPage{
				DocumentID: docID,
				PageNumber: p.PageNumber,
				Content:    p.Text,
			})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Document{}).Where("id = ?", docID).
			Updates(map[string]interface{}{
				"status":        models.StatusIndexed,
				"page_count":    len(pages),
				"document_type": docType,
				"error_message": "",
			}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexWrite, err)
	}
	return nil
}

// markError chuyển tài liệu sang trạng thái error kèm thông báo.
// Chỉ chuyển được từ processing, trạng thái kết thúc không bị ghi đè.
func (ix *Indexer) markError(docID uuid.UUID, msg string) {
	res := ix.db.Model(&models.Document{}).
		Where("id = ? AND status = ?", docID, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":        models.StatusError,
			"error_message": msg,
		})
	if res.Error != nil {
		log.Printf("Không cập nhật được trạng thái lỗi cho %s: %v", docID, res.Error)
		return
	}
	ws.SendStatusUpdate(docID.String(), models.StatusError, 0, msg)
	ws.BroadcastDocumentListChanged()
}
