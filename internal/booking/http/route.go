package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	r.GET("/availability", h.Availability)
	r.POST("/bookings", h.Create)

	// === Admin Routes ===
	admin := r.Group("/admin", authMiddleware, adminMiddleware)
	{
		admin.GET("/bookings", h.List)
		admin.POST("/bookings", h.AdminCreate)
		admin.GET("/bookings/:id", h.Get)
		admin.PATCH("/bookings/:id", h.Update)
		admin.DELETE("/bookings/:id", h.Delete)

		admin.POST("/blocks", h.Block)
		admin.GET("/stats", h.Stats)
	}
}
