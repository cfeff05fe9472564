package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/ams-backend/config"
	"github.com/vnkhanh/ams-backend/routes"
	"github.com/vnkhanh/ams-backend/services"
	"github.com/vnkhanh/ams-backend/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env")
	}

	config.InitDB()

	// Worker pool xử lý trích xuất + index chạy nền
	indexer := services.NewIndexer(config.DB, utils.UploadDir())
	queue := services.NewQueue(indexer, 256)

	workers := 2
	if w := os.Getenv("WORKER_COUNT"); w != "" {
		if val, err := strconv.Atoi(w); err == nil && val > 0 {
			workers = val
		}
	}
	queue.Start(context.Background(), workers)

	r := gin.Default()

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	// Gọi SetupRouter để đăng ký route
	r = routes.SetupRouter(r, config.DB, queue)

	// Route test server
	r.GET("/", func(c *gin.Context) {
		c.String(200, "AMS backend is running")
	})

	// Lấy PORT từ env
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // mặc định nếu không có PORT
	}

	log.Println("Server running at Port:" + port)
	r.Run(":" + port)
}
