package services

import (
	"regexp"
	"unicode/utf8"
)

// SnippetLength là độ dài tối đa của đoạn trích hiển thị (chưa tính markup).
const SnippetLength = 200

// ExtractSnippet cắt một đoạn văn quanh vị trí khớp đầu tiên của bất kỳ
// từ khoá nào, thêm "..." ở hai đầu nếu bị cắt.
func ExtractSnippet(content string, terms []string) string {
	// Tìm vị trí xuất hiện sớm nhất của một từ khoá, so khớp không phân biệt
	// hoa thường ngay trên chuỗi gốc. Không dùng offset trên ToLower(content)
	// vì case-fold có thể đổi độ dài byte và làm lệch cửa sổ cắt.
	firstMatch := -1
	for _, term := range terms {
		if term == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
		if loc := re.FindStringIndex(content); loc != nil {
			if firstMatch == -1 || loc[0] < firstMatch {
				firstMatch = loc[0]
			}
		}
	}

	if firstMatch == -1 {
		if len(content) > SnippetLength {
			return content[:snapRuneStart(content, SnippetLength)] + "..."
		}
		return content
	}

	start := firstMatch - SnippetLength/2
	if start < 0 {
		start = 0
	}
	end := start + SnippetLength
	if end > len(content) {
		end = len(content)
	}
	start = snapRuneStart(content, start)
	end = snapRuneStart(content, end)

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

// HighlightTerms bọc mỗi lần xuất hiện của từ khoá trong <mark>, không phân biệt hoa thường.
func HighlightTerms(snippet string, terms []string) string {
	for _, term := range terms {
		if term == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
		snippet = re.ReplaceAllString(snippet, "<mark>$0</mark>")
	}
	return snippet
}

// snapRuneStart lùi offset về đầu rune gần nhất để không cắt giữa ký tự UTF-8.
func snapRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
