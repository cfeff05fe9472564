package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/ams-backend/models"
)

func createPendingDocument(t *testing.T, db *gorm.DB, name, storedName string) uuid.UUID {
	t.Helper()

	docID := uuid.New()
	require.NoError(t, db.Create(&models.Document{
		ID:           docID,
		Filename:     storedName,
		OriginalName: name,
		Status:       models.StatusPending,
	}).Error)
	return docID
}

func TestIndexPagesIdempotent(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, t.TempDir())

	docID := createPendingDocument(t, db, "leave-policy.pdf", "x.pdf")
	pages := []PageText{
		{PageNumber: 1, Text: "vacation request form"},
		{PageNumber: 2, Text: ""},
	}

	// index 2 lần: vẫn đúng 1 dòng cho mỗi trang
	require.NoError(t, ix.IndexPages(docID, pages))
	require.NoError(t, ix.IndexPages(docID, pages))

	var count int64
	require.NoError(t, db.Model(&models.DocumentPage{}).
		Where("document_id = ?", docID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", docID).Error)
	assert.Equal(t, models.StatusIndexed, doc.Status)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, "policy", doc.DocumentType) // theo tên file
}

func TestIndexPagesEmptyPageKept(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, t.TempDir())

	docID := createPendingDocument(t, db, "scan.pdf", "scan.pdf")
	require.NoError(t, ix.IndexPages(docID, []PageText{{PageNumber: 1, Text: ""}}))

	var page models.DocumentPage
	require.NoError(t, db.First(&page, "document_id = ?", docID).Error)
	assert.Equal(t, 1, page.PageNumber)
	assert.Empty(t, page.Content)
}

func TestIndexPagesUnknownDocument(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, t.TempDir())

	err := ix.IndexPages(uuid.New(), []PageText{{PageNumber: 1, Text: "x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestProcessDocumentMissingFile(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, t.TempDir())

	docID := createPendingDocument(t, db, "mat-file.pdf", "khong-ton-tai.pdf")

	err := ix.ProcessDocument(docID)
	require.Error(t, err)

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", docID).Error)
	assert.Equal(t, models.StatusError, doc.Status)
	assert.NotEmpty(t, doc.ErrorMessage)
}

func TestProcessDocumentCorruptPDF(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	ix := NewIndexer(db, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "hong.pdf"), []byte("not a pdf"), 0o644))
	docID := createPendingDocument(t, db, "hong.pdf", "hong.pdf")

	err := ix.ProcessDocument(docID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtraction))

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", docID).Error)
	assert.Equal(t, models.StatusError, doc.Status)
}

func TestProcessDocumentEndToEnd(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	ix := NewIndexer(db, dir)

	// policy.pdf: trang 1 có nội dung, trang 2 trắng
	data := makePDF(t, []string{"vacation request form", ""})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy-stored.pdf"), data, 0o644))

	docID := createPendingDocument(t, db, "policy.pdf", "policy-stored.pdf")
	require.NoError(t, ix.ProcessDocument(docID))

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", docID).Error)
	assert.Equal(t, models.StatusIndexed, doc.Status)
	assert.Equal(t, 2, doc.PageCount)

	// tìm "vacation" phải ra đúng policy.pdf trang 1 với từ khoá được highlight
	results, err := SearchDocuments(db, "vacation", "all", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "policy.pdf", results[0].Document)
	assert.Equal(t, 1, results[0].Page)
	assert.Contains(t, results[0].Snippet, "<mark>vacation</mark>")
}

// Index cùng một tài liệu từ nhiều goroutine phải tuần tự hoá trên mutex
// theo ID: kết thúc vẫn đúng 1 dòng mỗi trang, trạng thái indexed.
func TestProcessDocumentConcurrentSameDocument(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	ix := NewIndexer(db, dir)

	data := makePDF(t, []string{"vacation request form", "annual leave policy"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song-song.pdf"), data, 0o644))
	docID := createPendingDocument(t, db, "song-song.pdf", "song-song.pdf")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// goroutine đến sau chờ mutex rồi index lại, không được chen ngang
			ix.ProcessDocument(docID)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.DocumentPage{}).
		Where("document_id = ?", docID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", docID).Error)
	assert.Equal(t, models.StatusIndexed, doc.Status)
	assert.Equal(t, 2, doc.PageCount)
	assert.Empty(t, doc.ErrorMessage)
}

func TestMarkErrorDoesNotOverrideTerminalStatus(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, t.TempDir())

	docID := createPendingDocument(t, db, "done.pdf", "done.pdf")
	require.NoError(t, ix.IndexPages(docID, []PageText{{PageNumber: 1, Text: "x y z"}}))

	// đã indexed thì markError không được kéo lùi trạng thái
	ix.markError(docID, "lỗi muộn")

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", docID).Error)
	assert.Equal(t, models.StatusIndexed, doc.Status)
	assert.Empty(t, doc.ErrorMessage)
}

func TestQueueProcessesSubmittedDocument(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	ix := NewIndexer(db, dir)

	data := makePDF(t, []string{"annual leave policy"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queued.pdf"), data, 0o644))
	docID := createPendingDocument(t, db, "queued.pdf", "queued.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := NewQueue(ix, 8)
	queue.Start(ctx, 2)
	require.NoError(t, queue.Submit(docID))

	// hoàn thành chỉ quan sát qua trạng thái trong DB
	require.Eventually(t, func() bool {
		var doc models.Document
		if err := db.First(&doc, "id = ?", docID).Error; err != nil {
			return false
		}
		return doc.Status == models.StatusIndexed
	}, 5*time.Second, 50*time.Millisecond)
}

func TestQueueFull(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, t.TempDir())

	// không Start worker nào nên buffer đầy ngay
	queue := NewQueue(ix, 1)
	require.NoError(t, queue.Submit(uuid.New()))
	err := queue.Submit(uuid.New())
	assert.True(t, errors.Is(err, ErrQueueFull))
}
