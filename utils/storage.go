package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// UploadDir trả về thư mục lưu file upload, mặc định "uploads".
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

// StoredFileName sinh tên file an toàn trên đĩa: <docID>_<slug-tên-gốc>.pdf
func StoredFileName(docID string, originalName string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	safe := slug.Make(base)
	if safe == "" {
		safe = "document"
	}
	return docID + "_" + safe + ".pdf"
}

// SaveUploadedFile lưu file multipart vào dir với tên name, tạo thư mục nếu chưa có.
func SaveUploadedFile(file *multipart.FileHeader, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// RemoveStoredFile xoá file đã lưu, bỏ qua nếu không tồn tại.
func RemoveStoredFile(dir, name string) error {
	err := os.Remove(filepath.Join(dir, name))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
