package services

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/ams-backend/models"
)

// openTestDB mở sqlite in-memory. Không có Postgres nên nhánh full-text
// sẽ lỗi và search tự chuyển sang fallback substring, đúng như khi
// full-text index không khả dụng.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // in-memory sqlite: 1 connection duy nhất

	require.NoError(t, db.AutoMigrate(
		&models.Document{},
		&models.DocumentPage{},
		&models.SearchLog{},
	))
	return db
}

// seedDocument tạo 1 tài liệu indexed kèm các trang
func seedDocument(t *testing.T, db *gorm.DB, name, docType string, pages ...string) uuid.UUID {
	t.Helper()

	docID := uuid.New()
	doc := models.Document{
		ID:           docID,
		Filename:     docID.String() + "_" + name,
		OriginalName: name,
		Status:       models.StatusIndexed,
		PageCount:    len(pages),
		DocumentType: docType,
	}
	require.NoError(t, db.Create(&doc).Error)

	for i, content := range pages {
		require.NoError(t, db.Create(&models.DocumentPage{
			DocumentID: docID,
			PageNumber: i + 1,
			Content:    content,
		}).Error)
	}
	return docID
}

func TestSearchQueryValidation(t *testing.T) {
	db := openTestDB(t)

	_, err := SearchDocuments(db, "a", "all", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	// chỉ khoảng trắng cũng bị từ chối
	_, err = SearchDocuments(db, "   x   ", "all", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSearchConjunctiveMatching(t *testing.T) {
	db := openTestDB(t)
	seedDocument(t, db, "hr.pdf", "policy",
		"annual leave policy for all employees", // đủ cả "annual" và "policy"
		"annual leave only")                     // thiếu "policy"

	results, err := SearchDocuments(db, "annual policy", "all", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Page)
}

func TestSearchCaseInsensitiveRoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedDocument(t, db, "billing.pdf", "document", "The INVOICE total is due")

	results, err := SearchDocuments(db, "invoice", "all", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Snippet, "<mark>INVOICE</mark>")
}

func TestSearchSkipsUnindexedDocuments(t *testing.T) {
	db := openTestDB(t)

	docID := uuid.New()
	require.NoError(t, db.Create(&models.Document{
		ID:           docID,
		Filename:     "x.pdf",
		OriginalName: "x.pdf",
		Status:       models.StatusProcessing,
	}).Error)
	require.NoError(t, db.Create(&models.DocumentPage{
		DocumentID: docID,
		PageNumber: 1,
		Content:    "vacation request form",
	}).Error)

	// tài liệu đang xử lý không được xuất hiện trong kết quả
	results, err := SearchDocuments(db, "vacation", "all", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchTypeFilter(t *testing.T) {
	db := openTestDB(t)
	seedDocument(t, db, "leave-policy.pdf", "policy", "vacation policy details")
	seedDocument(t, db, "it-manual.pdf", "manual", "vacation auto-reply setup")

	results, err := SearchDocuments(db, "vacation", "policy", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "leave-policy.pdf", results[0].Document)

	// "all" không lọc gì
	results, err = SearchDocuments(db, "vacation", "all", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchFallbackEngineAndScore(t *testing.T) {
	db := openTestDB(t)
	seedDocument(t, db, "hr.pdf", "policy", "vacation request form")

	results, err := SearchDocuments(db, "vacation", "all", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// sqlite không có full-text index -> kết quả đến từ fallback, điểm thấp cố định
	assert.Equal(t, EngineSubstring, results[0].Engine)
	assert.Equal(t, substringScore, results[0].Score)
}

func TestSearchWritesSearchLog(t *testing.T) {
	db := openTestDB(t)
	seedDocument(t, db, "hr.pdf", "policy", "vacation request form")

	_, err := SearchDocuments(db, "vacation", "all", 10)
	require.NoError(t, err)

	var logs []models.SearchLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "vacation", logs[0].Query)
	assert.Equal(t, 1, logs[0].ResultsCount)
}

func TestSearchLimitClamp(t *testing.T) {
	db := openTestDB(t)
	pages := make([]string, 30)
	for i := range pages {
		pages[i] = "vacation note"
	}
	seedDocument(t, db, "big.pdf", "document", pages...)

	// limit <= 0 về mặc định
	results, err := SearchDocuments(db, "vacation", "all", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultSearchLimit)

	results, err = SearchDocuments(db, "vacation", "all", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestRecentSearchesDistinct(t *testing.T) {
	db := openTestDB(t)

	now := time.Now()
	for i, q := range []string{"vacation", "policy", "vacation", "invoice"} {
		require.NoError(t, db.Create(&models.SearchLog{
			Query:        q,
			ResultsCount: 1,
			CreatedAt:    now.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	queries, err := RecentSearches(db, 10)
	require.NoError(t, err)
	// không trùng lặp, mới nhất trước
	assert.Equal(t, []string{"invoice", "vacation", "policy"}, queries)
}
