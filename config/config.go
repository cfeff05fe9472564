package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/ams-backend/models"
)

var DB *gorm.DB

func InitDB() {
	// Lấy thông tin từ biến môi trường
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	// DSN cho PostgreSQL
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Ho_Chi_Minh",
		dbHost, dbUser, dbPass, dbName, dbPort,
	)

	// Kết nối DB với logger
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatal("Không thể kết nối database:", err)
	}

	DB = db

	// Lấy *sql.DB để config connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Không thể lấy sql.DB từ gorm:", err)
	}

	// Connection Pooling config
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// AutoMigrate các models
	err = DB.AutoMigrate(
		&models.Document{},
		&models.DocumentPage{},
		&models.SearchLog{},
	)
	if err != nil {
		log.Fatal("autoMigrate lỗi: ", err)
	}

	if err := migrateFullTextIndex(DB); err != nil {
		log.Fatal("Không tạo được full-text index: ", err)
	}

	log.Println("postgreSQL connected & migrated successfully!")
}

// migrateFullTextIndex thêm cột tsvector sinh tự động trên document_pages.content
// và GIN index cho tìm kiếm full-text. Cột generated đảm bảo index luôn khớp
// với nội dung trang trong cùng transaction.
func migrateFullTextIndex(db *gorm.DB) error {
	stmts := []string{
		`ALTER TABLE document_pages
			ADD COLUMN IF NOT EXISTS content_tsv tsvector
			GENERATED ALWAYS AS (to_tsvector('english', coalesce(content, ''))) STORED`,
		`CREATE INDEX IF NOT EXISTS idx_document_pages_content_tsv
			ON document_pages USING GIN (content_tsv)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
