package services

import "strings"

// ClassifyDocument đoán loại tài liệu từ tên file và nội dung đã trích xuất.
// Ưu tiên tên file trước, sau đó mới xét nội dung.
func ClassifyDocument(filename string, pages []PageText) string {
	filenameLower := strings.ToLower(filename)

	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(strings.ToLower(p.Text))
		sb.WriteString(" ")
	}
	contentLower := sb.String()

	switch {
	case containsAny(filenameLower, "policy", "policies"):
		return "policy"
	case containsAny(filenameLower, "manual", "guide", "handbook"):
		return "manual"
	case containsAny(filenameLower, "faq", "questions", "answers"):
		return "faq"
	case containsAny(contentLower, "policy", "procedure", "guidelines"):
		return "policy"
	case containsAny(contentLower, "manual", "instructions", "how to"):
		return "guide"
	default:
		return "document"
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
