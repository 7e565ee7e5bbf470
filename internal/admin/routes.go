package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the console routes
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.POST("/admin/login", handler.Login)
	rg.POST("/admin/logout", handler.Logout)
	rg.GET("/admin/me", handler.Me)

	rg.GET("/projects", handler.ListProjects)
	rg.GET("/verifications", handler.ListVerifications)
	rg.PATCH("/verifications/:id", handler.UpdateVerification)

	rg.POST("/remarks", handler.GenerateRemark)
	rg.GET("/dashboard/stats", handler.DashboardStats)
	rg.GET("/ws", handler.Subscribe)
}
