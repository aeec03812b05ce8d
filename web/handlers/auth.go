package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/security"
	"packtrack.app/packtrack/sheetapi/v1/common"
	webcommon "packtrack.app/packtrack/web/common"
	"packtrack.app/packtrack/web/middlewares"
)

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token          string `json:"token"`
	Login          string `json:"login"`
	Role           string `json:"role"`
	EmployeeStatus string `json:"employeeStatus"`
}

// Login checks credentials against the sheet service and issues an identity
// token, also set as a session cookie for browser clients.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, webcommon.NewErrorResponse(webcommon.FormatBindingError(err)))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		var svcErr *common.ServiceError
		if errors.As(err, &svcErr) {
			c.JSON(http.StatusUnauthorized, webcommon.NewErrorResponse("invalid login or password"))
			return
		}
		h.log.Error().Err(err).Msg("login request failed")
		c.JSON(http.StatusBadGateway, webcommon.NewErrorResponse("authentication service unavailable"))
		return
	}

	identity := security.Identity{
		Login:          result.Login,
		Role:           result.Role,
		EmployeeStatus: result.EmployeeStatus,
	}
	token, err := security.CreateIdentityToken(identity, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.log.Error().Err(err).Msg("token signing failed")
		c.JSON(http.StatusInternalServerError, webcommon.NewErrorResponse("could not issue token"))
		return
	}

	c.SetCookie(middlewares.CookieName, token, int(h.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, webcommon.NewSuccessResponse(loginResponse{
		Token:          token,
		Login:          identity.Login,
		Role:           identity.Role,
		EmployeeStatus: identity.EmployeeStatus,
	}))
}
