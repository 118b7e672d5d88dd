package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *SettingsHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	r.GET("/settings", h.Get)

	admin := r.Group("/admin/settings", authMiddleware, adminMiddleware)
	{
		admin.GET("", h.Get)
		admin.PUT("", h.Update)
	}
}
