// Package web assembles the gin router.
package web

import (
	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/web/handlers"
	"packtrack.app/packtrack/web/middlewares"
)

// NewRouter builds the HTTP surface: a public ping and login, an
// authenticated API group, and an admin subgroup for settings and cache
// control.
func NewRouter(h *handlers.Handlers, jwtSecret string) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.RequestID())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/selftest", h.SelfTest)
	r.POST("/api/v1/auth/login", h.Login)

	protected := r.Group("/api/v1")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		protected.GET("/dictionaries/:kind", h.ListDictionary)
		protected.GET("/rates", h.Rates)
		protected.GET("/rates/keys", h.OperationKeys)
		protected.GET("/salary", h.Salary)

		protected.GET("/records", h.TodayRecords)
		protected.POST("/records/check", h.CheckRecord)
		protected.POST("/records", h.SubmitRecord)
		protected.PUT("/records/:index", h.EditRecord)
		protected.DELETE("/records/:index", h.DeleteRecord)

		protected.GET("/stats", h.GetStats)
		protected.GET("/settings", h.GetSettings)
		protected.POST("/reports/salary", h.SalaryReport)

		admin := protected.Group("/admin")
		admin.Use(middlewares.RequireAdmin())
		{
			admin.PUT("/settings", h.UpdateSettings)
			admin.POST("/settings/refresh", h.RefreshSettings)
			admin.POST("/dictionaries/refresh", h.RefreshDictionaries)
			admin.POST("/stats/refresh", h.RefreshStats)
		}
	}

	return r
}
