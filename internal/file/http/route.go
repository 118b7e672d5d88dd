package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers file routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	files := r.Group("/files")
	{
		files.GET("/:id", handler.ServeFile)
		files.GET("/:id/thumbnail", handler.ServeThumbnail)
	}
	r.GET("/fields/:id/photos", handler.ListFieldPhotos)

	admin := r.Group("/admin", authMiddleware, adminMiddleware)
	{
		admin.POST("/fields/:id/photos", handler.UploadFieldPhoto)
		admin.DELETE("/files/:id", handler.Delete)
	}
}
