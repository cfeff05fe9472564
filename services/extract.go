package services

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText là văn bản trích xuất của một trang, đánh số từ 1.
type PageText struct {
	PageNumber int
	Text       string
}

// ExtractPagesFromPDF trích xuất văn bản theo từng trang, giữ đúng thứ tự trang.
// Trang không có văn bản (ảnh scan) vẫn trả về với Text rỗng.
// Trả về ErrExtraction nếu file không phải PDF hợp lệ, bị mã hoá hoặc không có trang nào.
func ExtractPagesFromPDF(data []byte) ([]PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: không thể tạo reader PDF: %v", ErrExtraction, err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: tài liệu không có trang nào", ErrExtraction)
	}

	pages := make([]PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			content, err := page.GetPlainText(nil)
			if err == nil {
				text = CleanPageText(content)
			}
			// lỗi đọc 1 trang không làm hỏng cả tài liệu, coi như trang rỗng
		}
		pages = append(pages, PageText{PageNumber: i, Text: text})
	}

	return pages, nil
}

var (
	reMultiSpace   = regexp.MustCompile(`[ \t]{2,}`)
	reMultiNewLine = regexp.MustCompile(`\n{2,}`)
)

// CleanPageText xử lý thô văn bản trích xuất: gộp khoảng trắng, bỏ dòng trống thừa.
func CleanPageText(text string) string {
	cleaned := reMultiSpace.ReplaceAllString(text, " ")
	cleaned = reMultiNewLine.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}
