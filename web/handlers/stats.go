package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/web/common"
	"packtrack.app/packtrack/web/middlewares"
)

type statsQuery struct {
	Employee string `form:"employee"`
	Date     string `form:"date" binding:"required,datetime=2006-01-02"`
}

// GetStats serves the daily summary for an employee. Defaults to the caller.
func (h *Handlers) GetStats(c *gin.Context) {
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	identity := middlewares.IdentityFrom(c)
	if q.Employee == "" {
		q.Employee = identity.Login
	}

	view, err := h.stats.Get(c.Request.Context(), q.Employee, q.Date, identity.EmployeeStatus)
	if err != nil {
		h.log.Warn().Err(err).Str("employee", q.Employee).Str("date", q.Date).Msg("stats load failed")
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("stats unavailable"))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(view))
}

// RefreshStats drops every cached summary. Admin only.
func (h *Handlers) RefreshStats(c *gin.Context) {
	h.stats.InvalidateAll()
	c.JSON(http.StatusOK, common.NewSuccessResponse("stats cache invalidated"))
}
