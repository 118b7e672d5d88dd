package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *FieldHandler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	public := r.Group("/fields")
	{
		public.GET("", h.ListActive)
		public.GET("/:id", h.Get)
	}

	admin := r.Group("/admin/fields", authMiddleware, adminMiddleware)
	{
		admin.GET("", h.ListAll)
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
	}
}
