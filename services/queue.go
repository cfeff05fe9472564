package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

// ErrQueueFull: hàng đợi index đang đầy, client thử lại sau.
var ErrQueueFull = errors.New("hàng đợi xử lý đang đầy")

// Queue là hàng đợi index chạy nền: upload chỉ cần Submit rồi trả response,
// worker pool lo phần còn lại. Tiến độ chỉ quan sát được qua trạng thái
// tài liệu trong DB (polling) và WebSocket.
type Queue struct {
	indexer *Indexer
	tasks   chan uuid.UUID
}

func NewQueue(indexer *Indexer, buffer int) *Queue {
	if buffer <= 0 {
		buffer = 256
	}
	return &Queue{
		indexer: indexer,
		tasks:   make(chan uuid.UUID, buffer),
	}
}

// Submit đưa tài liệu vào hàng đợi, không chặn request.
func (q *Queue) Submit(docID uuid.UUID) error {
	select {
	case q.tasks <- docID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start chạy numWorkers goroutine xử lý hàng đợi cho tới khi ctx bị huỷ.
func (q *Queue) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 2
	}
	log.Printf("Khởi động %d worker xử lý tài liệu...", numWorkers)
	for i := 0; i < numWorkers; i++ {
		go q.processLoop(ctx, i)
	}
}

func (q *Queue) processLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		case docID := <-q.tasks:
			log.Printf("[Worker-%d] Nhận tài liệu: %s", workerID, docID)
			if err := q.indexer.ProcessDocument(docID); err != nil {
				log.Printf("[Worker-%d] Xử lý thất bại %s: %v", workerID, docID, err)
			} else {
				log.Printf("[Worker-%d] Hoàn thành: %s", workerID, docID)
			}
		}
	}
}
