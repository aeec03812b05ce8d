package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/core/dupcheck"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/core/records"
	"packtrack.app/packtrack/web/common"
	"packtrack.app/packtrack/web/middlewares"
)

type recordRequest struct {
	EmployeeName  string  `json:"employeeName"`
	Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	StartTime     string  `json:"startTime" binding:"required"`
	EndTime       string  `json:"endTime" binding:"required"`
	OperationType string  `json:"operationType" binding:"required"`
	OrderNumber   string  `json:"orderNumber"`
	SetNumber     string  `json:"setNumber"`
	Volume        string  `json:"volume"`
	ShiftType     string  `json:"shiftType" binding:"omitempty,oneof=День Ночь"`
	Confirmed     bool    `json:"confirmed"`
}

func (r recordRequest) toRecord(c *gin.Context) model.WorkRecord {
	identity := middlewares.IdentityFrom(c)
	rec := model.WorkRecord{
		EmployeeName:   r.EmployeeName,
		Quantity:       r.Quantity,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		OperationType:  r.OperationType,
		OrderNumber:    r.OrderNumber,
		SetNumber:      r.SetNumber,
		Volume:         r.Volume,
		ShiftType:      r.ShiftType,
		EmployeeStatus: identity.EmployeeStatus,
	}
	if rec.EmployeeName == "" {
		rec.EmployeeName = identity.Login
	}
	if rec.ShiftType == "" {
		rec.ShiftType = model.ShiftDay
	}
	return rec
}

type duplicateResponse struct {
	Message string          `json:"message"`
	Result  dupcheck.Result `json:"result"`
}

// TodayRecords serves the working set of today's records.
func (h *Handlers) TodayRecords(c *gin.Context) {
	today, err := h.records.Today(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("today records load failed")
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("records unavailable"))
		return
	}
	c.JSON(http.StatusOK, common.NewListResponse(today, len(today)))
}

// CheckRecord runs the duplicate analysis without submitting.
func (h *Handlers) CheckRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	result, err := h.records.Check(c.Request.Context(), req.toRecord(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("duplicate check unavailable"))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}

// SubmitRecord stores a new record. Duplicate findings answer 409 with the
// analysis until the client confirms them.
func (h *Handlers) SubmitRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	err := h.records.Submit(c.Request.Context(), req.toRecord(c), records.SubmitOptions{Confirmed: req.Confirmed})
	if err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse("record stored"))
}

// EditRecord replaces the record at the index path parameter.
func (h *Handlers) EditRecord(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid record index"))
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	if err := h.records.Edit(c.Request.Context(), index, req.toRecord(c)); err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("record updated"))
}

// DeleteRecord removes the record at the index path parameter.
func (h *Handlers) DeleteRecord(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid record index"))
		return
	}

	if err := h.records.Delete(c.Request.Context(), index); err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse("record deleted"))
}

func (h *Handlers) writeMutationError(c *gin.Context, err error) {
	var dup *records.DuplicateError
	var warn *records.NeedsConfirmError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, duplicateResponse{
			Message: dup.Error(),
			Result:  dup.Result,
		})
	case errors.As(err, &warn):
		c.JSON(http.StatusConflict, duplicateResponse{
			Message: warn.Error(),
			Result:  warn.Result,
		})
	case errors.Is(err, records.ErrTooSoon):
		c.JSON(http.StatusTooManyRequests, common.NewErrorResponse(err.Error()))
	case errors.Is(err, records.ErrPolicyDenied):
		c.JSON(http.StatusForbidden, common.NewErrorResponse(err.Error()))
	default:
		h.log.Warn().Err(err).Msg("record mutation failed")
		c.JSON(http.StatusBadGateway, common.NewErrorResponse(err.Error()))
	}
}
