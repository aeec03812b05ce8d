package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/core/settings"
	"packtrack.app/packtrack/web/common"
	"packtrack.app/packtrack/web/middlewares"
)

type settingsResponse struct {
	Settings model.AdminSettings `json:"settings"`
	PayType  string              `json:"payType"`
}

// GetSettings serves the current admin flags together with the pay type they
// imply for the caller.
func (h *Handlers) GetSettings(c *gin.Context) {
	flags := h.settings.Current()
	identity := middlewares.IdentityFrom(c)
	c.JSON(http.StatusOK, common.NewSuccessResponse(settingsResponse{
		Settings: flags,
		PayType:  settings.EffectivePayType(identity.EmployeeStatus, flags),
	}))
}

type updateSettingsRequest struct {
	AllowRecordEditing  *bool `json:"allow_record_editing"`
	AllowRecordDeletion *bool `json:"allow_record_deletion"`
	AutoEndTimeEnabled  *bool `json:"auto_end_time_enabled"`
	ForceDealPaytype    *bool `json:"force_deal_paytype"`
}

func (r updateSettingsRequest) overlay(current model.AdminSettings) model.AdminSettings {
	partial := map[string]bool{}
	if r.AllowRecordEditing != nil {
		partial["allow_record_editing"] = *r.AllowRecordEditing
	}
	if r.AllowRecordDeletion != nil {
		partial["allow_record_deletion"] = *r.AllowRecordDeletion
	}
	if r.AutoEndTimeEnabled != nil {
		partial["auto_end_time_enabled"] = *r.AutoEndTimeEnabled
	}
	if r.ForceDealPaytype != nil {
		partial["force_deal_paytype"] = *r.ForceDealPaytype
	}
	return current.Merge(partial)
}

// UpdateSettings writes the flags present in the request over the current
// snapshot. Admin only. A partial save answers 502 with the saved subset in
// effect.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	desired := req.overlay(h.settings.Current())
	if err := h.settings.Save(c.Request.Context(), desired); err != nil {
		h.log.Warn().Err(err).Msg("settings save incomplete")
		c.JSON(http.StatusBadGateway, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(h.settings.Current()))
}

// RefreshSettings forces an immediate re-read from the sheet service.
func (h *Handlers) RefreshSettings(c *gin.Context) {
	flags, err := h.settings.RefreshFromServer(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("settings refresh failed"))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(flags))
}
