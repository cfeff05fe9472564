package services

import "errors"

// Các lỗi gốc của pipeline xử lý tài liệu. Controller dùng errors.Is
// để map sang HTTP status tương ứng.
var (
	// ErrValidation: input sai ngay tại boundary (file không phải PDF,
	// quá dung lượng, query quá ngắn). Trả về caller ngay, không retry.
	ErrValidation = errors.New("dữ liệu đầu vào không hợp lệ")

	// ErrExtraction: PDF hỏng, mã hoá hoặc không đọc được trang nào.
	// Được ghi vào trạng thái error của tài liệu, không ném cho caller.
	ErrExtraction = errors.New("không thể trích xuất nội dung PDF")

	// ErrIndexWrite: ghi index thất bại, transaction đã rollback.
	ErrIndexWrite = errors.New("không thể ghi dữ liệu index")

	// ErrNotFound: không tìm thấy tài liệu theo id.
	ErrNotFound = errors.New("không tìm thấy tài liệu")
)
