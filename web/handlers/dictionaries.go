package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/core/model"
	v1 "packtrack.app/packtrack/sheetapi/v1"
	"packtrack.app/packtrack/web/common"
	"packtrack.app/packtrack/web/middlewares"
)

var listKinds = map[string]v1.ListKind{
	"operations":    v1.ListOperations,
	"volumes":       v1.ListVolumes,
	"sets":          v1.ListSets,
	"setSizes":      v1.ListSetSizes,
	"packingModels": v1.ListPackingModels,
}

// ListDictionary serves one reference list by its kind path parameter.
func (h *Handlers) ListDictionary(c *gin.Context) {
	kind, ok := listKinds[c.Param("kind")]
	if !ok {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("unknown dictionary"))
		return
	}

	items, err := h.dicts.LoadList(c.Request.Context(), kind)
	if err != nil {
		h.log.Warn().Err(err).Str("kind", string(kind)).Msg("dictionary load failed")
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("dictionary unavailable"))
		return
	}
	c.JSON(http.StatusOK, common.NewListResponse(items, len(items)))
}

// Rates serves the operation rate table.
func (h *Handlers) Rates(c *gin.Context) {
	rates, err := h.dicts.LoadRates(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("rate table load failed")
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("rate table unavailable"))
		return
	}
	c.JSON(http.StatusOK, common.NewListResponse(rates, len(rates)))
}

// OperationKeys serves the volume/set keys known for one operation, for the
// dependent dropdown on the entry form.
func (h *Handlers) OperationKeys(c *gin.Context) {
	operation := c.Query("operation")
	if operation == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("operation is required"))
		return
	}
	if _, err := h.dicts.LoadRates(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("rate table load failed")
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("rate table unavailable"))
		return
	}

	keys := h.dicts.KeysFor(operation)
	c.JSON(http.StatusOK, common.NewListResponse(keys, len(keys)))
}

type salaryResponse struct {
	Employee string `json:"employee"`
	Shift    string `json:"shift"`
	Salary   string `json:"salary"`
}

// Salary serves the caller's base salary for a shift. An empty salary is a
// valid answer: the value is informational.
func (h *Handlers) Salary(c *gin.Context) {
	shift := c.DefaultQuery("shift", model.ShiftDay)
	employee := c.Query("employee")
	if employee == "" {
		employee = middlewares.IdentityFrom(c).Login
	}

	salary := h.dicts.LoadSalary(c.Request.Context(), employee, shift)
	c.JSON(http.StatusOK, common.NewSuccessResponse(salaryResponse{
		Employee: employee,
		Shift:    shift,
		Salary:   salary,
	}))
}

// RefreshDictionaries drops all cached reference data. Admin only.
func (h *Handlers) RefreshDictionaries(c *gin.Context) {
	h.dicts.InvalidateAll()
	c.JSON(http.StatusOK, common.NewSuccessResponse("dictionaries invalidated"))
}
