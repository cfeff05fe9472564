package services

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/vnkhanh/ams-backend/models"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100

	// Engine cho biết kết quả đến từ đâu: full-text index của Postgres
	// hay fallback substring khi index không trả về gì / không khả dụng.
	EngineFullText  = "fulltext"
	EngineSubstring = "substring"

	// Điểm cố định (thấp) cho kết quả substring, báo hiệu chất lượng khớp kém hơn.
	substringScore = 40
)

type SearchResult struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Document    string    `json:"document"`
	Page        int       `json:"page"`
	Snippet     string    `json:"snippet"`
	Score       int       `json:"score"` // 0-100
	Type        string    `json:"type"`
	Engine      string    `json:"engine"`
	LastUpdated time.Time `json:"last_updated"`
}

// dòng kết quả thô từ DB, trước khi tính điểm và cắt snippet
type searchRow struct {
	ID           string
	OriginalName string
	DocumentType string
	UpdatedAt    time.Time
	PageNumber   int
	Content      string
	Rank         float64
}

// SearchDocuments tìm kiếm trên nội dung trang của các tài liệu đã indexed.
// Một trang khớp khi chứa đủ tất cả từ khoá. Thử full-text index trước,
// nếu lỗi hoặc không có kết quả thì fallback sang substring LIKE.
func SearchDocuments(db *gorm.DB, rawQuery, docType string, limit int) ([]SearchResult, error) {
	query := strings.TrimSpace(rawQuery)
	if utf8.RuneCountInString(query) < 2 {
		return nil, fmt.Errorf("%w: từ khoá phải có ít nhất 2 ký tự", ErrValidation)
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	terms := strings.Fields(strings.ToLower(query))

	results, err := fullTextSearch(db, query, terms, docType, limit)
	if err != nil || len(results) == 0 {
		if err != nil {
			log.Println("Full-text search lỗi, chuyển sang substring:", err)
		}
		results, err = substringSearch(db, terms, docType, limit)
		if err != nil {
			return nil, err
		}
	}

	// Ghi log tìm kiếm; lỗi log không được làm hỏng response
	logSearch(db, query, len(results))

	return results, nil
}

// fullTextSearch dùng tsvector/plainto_tsquery của Postgres.
// plainto_tsquery nối các từ bằng AND nên khớp là conjunctive sẵn.
func fullTextSearch(db *gorm.DB, query string, terms []string, docType string, limit int) ([]SearchResult, error) {
	sql := `
		SELECT d.id, d.original_name, d.document_type, d.updated_at,
		       dp.page_number, dp.content,
		       ts_rank(dp.content_tsv, plainto_tsquery('english', ?)) AS rank
		FROM document_pages dp
		JOIN documents d ON d.id = dp.document_id
		WHERE d.status = ?
		  AND dp.content_tsv @@ plainto_tsquery('english', ?)`
	args := []interface{}{query, models.StatusIndexed, query}

	if docType != "" && docType != "all" {
		sql += ` AND d.document_type = ?`
		args = append(args, docType)
	}
	sql += ` ORDER BY rank DESC LIMIT ?`
	args = append(args, limit)

	var rows []searchRow
	if err := db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	// Chuẩn hoá ts_rank về thang 0-100 theo rank cao nhất trong tập kết quả
	var maxRank float64
	for _, r := range rows {
		if r.Rank > maxRank {
			maxRank = r.Rank
		}
	}

	results := make([]SearchResult, 0, len(rows))
	for _, r := range rows {
		score := 50
		if maxRank > 0 {
			score = int(math.Round(100 * r.Rank / maxRank))
		}
		results = append(results, buildResult(r, terms, score, EngineFullText))
	}
	return results, nil
}

// substringSearch là đường dự phòng: LIKE con trên văn bản gốc, mỗi từ khoá
// một điều kiện (conjunctive). Đảm bảo vẫn có kết quả khi full-text index
// không khả dụng hoặc không hỗ trợ ký tự trong query.
func substringSearch(db *gorm.DB, terms []string, docType string, limit int) ([]SearchResult, error) {
	q := db.Table("document_pages AS dp").
		Select("d.id, d.original_name, d.document_type, d.updated_at, dp.page_number, dp.content").
		Joins("JOIN documents d ON d.id = dp.document_id").
		Where("d.status = ?", models.StatusIndexed)

	for _, term := range terms {
		q = q.Where("LOWER(dp.content) LIKE ?", "%"+term+"%")
	}
	if docType != "" && docType != "all" {
		q = q.Where("d.document_type = ?", docType)
	}

	var rows []searchRow
	if err := q.Order("d.updated_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, buildResult(r, terms, substringScore, EngineSubstring))
	}
	return results, nil
}

func buildResult(r searchRow, terms []string, score int, engine string) SearchResult {
	snippet := HighlightTerms(ExtractSnippet(r.Content, terms), terms)
	return SearchResult{
		ID:          r.ID,
		Title:       r.OriginalName,
		Document:    r.OriginalName,
		Page:        r.PageNumber,
		Snippet:     snippet,
		Score:       score,
		Type:        r.DocumentType,
		Engine:      engine,
		LastUpdated: r.UpdatedAt,
	}
}

// logSearch ghi lịch sử tìm kiếm, lỗi chỉ log ra console rồi bỏ qua.
func logSearch(db *gorm.DB, query string, resultsCount int) {
	entry := models.SearchLog{Query: query, ResultsCount: resultsCount}
	if err := db.Create(&entry).Error; err != nil {
		log.Println("Không ghi được search log:", err)
	}
}

// RecentSearches trả về các query khác nhau gần đây nhất.
func RecentSearches(db *gorm.DB, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	var queries []string
	err := db.Raw(`
		SELECT query
		FROM search_logs
		GROUP BY query
		ORDER BY MAX(created_at) DESC
		LIMIT ?
	`, limit).Scan(&queries).Error
	if err != nil {
		return nil, err
	}
	return queries, nil
}
