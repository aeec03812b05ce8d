package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/web/common"
)

// SelfTest probes the sheet service end to end. The probe carries its own
// timeout, so a dead backend answers within ~10 seconds.
func (h *Handlers) SelfTest(c *gin.Context) {
	if err := h.selftest.SelfTest(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("sheet service reachable"))
}
