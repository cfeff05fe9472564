package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDocument(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"tên file policy", "leave-policy.pdf", "some text", "policy"},
		{"tên file manual", "user-manual.pdf", "some text", "manual"},
		{"tên file handbook", "employee_handbook.pdf", "some text", "manual"},
		{"tên file faq", "faq-2025.pdf", "some text", "faq"},
		{"nội dung policy", "doc1.pdf", "company procedure for onboarding", "policy"},
		{"nội dung guide", "doc2.pdf", "instructions: how to submit a claim", "guide"},
		{"mặc định", "scan0001.pdf", "không có từ khoá nào", "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := []PageText{{PageNumber: 1, Text: tt.content}}
			assert.Equal(t, tt.want, ClassifyDocument(tt.filename, pages))
		})
	}
}
