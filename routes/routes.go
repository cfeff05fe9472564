package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/ams-backend/controllers"
	"github.com/vnkhanh/ams-backend/middleware"
	"github.com/vnkhanh/ams-backend/services"
	"github.com/vnkhanh/ams-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB, queue *services.Queue) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", middleware.DBMiddleware(db), controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))
	{
		// Quản lý tài liệu
		api.POST("/documents", controllers.UploadDocument(queue))
		api.GET("/documents", controllers.GetDocuments)
		api.GET("/documents/:id", controllers.GetDocumentDetail)
		api.GET("/documents/:id/download", controllers.DownloadDocument)
		api.POST("/documents/:id/reindex", controllers.ReindexDocument(queue))
		api.DELETE("/documents/:id", controllers.DeleteDocument)

		// Tìm kiếm
		api.GET("/search", controllers.SearchHandler(db))
		api.GET("/recent-searches", controllers.RecentSearches(db))

		// Thống kê
		api.GET("/stats", controllers.GetStats)
	}

	r.GET("/ws/document/:id", ws.HandleDocumentWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
