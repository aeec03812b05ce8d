package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/core/settings"
	"packtrack.app/packtrack/reports"
	"packtrack.app/packtrack/utils"
	"packtrack.app/packtrack/web/common"
	"packtrack.app/packtrack/web/middlewares"
)

// maxReportDays bounds one report to roughly two months of summaries.
const maxReportDays = 62

type salaryReportRequest struct {
	Employee string          `json:"employee"`
	Shift    string          `json:"shift"`
	From     common.DateOnly `json:"from" binding:"required"`
	To       common.DateOnly `json:"to" binding:"required"`
}

// SalaryReport renders an xlsx salary report for a date span. Summaries come
// from the stats cache, so a recently viewed span costs no network calls.
func (h *Handlers) SalaryReport(c *gin.Context) {
	var req salaryReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}
	if req.To.Before(req.From.Time) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("'to' precedes 'from'"))
		return
	}
	if int(req.To.Sub(req.From.Time).Hours()/24) > maxReportDays {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("date span too large"))
		return
	}

	identity := middlewares.IdentityFrom(c)
	employee := req.Employee
	if employee == "" {
		employee = identity.Login
	}
	shift := req.Shift
	if shift == "" {
		shift = model.ShiftDay
	}

	report := reports.SalaryReport{
		Employee: employee,
		PayType:  settings.EffectivePayType(identity.EmployeeStatus, h.settings.Current()),
		Salary:   h.dicts.LoadSalary(c.Request.Context(), employee, shift),
	}
	for day := req.From.Time; !day.After(req.To.Time); day = day.AddDate(0, 0, 1) {
		date := utils.ISODate(day)
		view, err := h.stats.Get(c.Request.Context(), employee, date, identity.EmployeeStatus)
		if err != nil {
			h.log.Warn().Err(err).Str("date", date).Msg("report day load failed")
			c.JSON(http.StatusBadGateway, common.NewErrorResponse("stats unavailable for "+date))
			return
		}
		report.Rows = append(report.Rows, reports.SalaryRow{
			Date:     date,
			Quantity: view.Totals.Quantity,
			Hours:    view.Totals.Hours,
			Pay:      view.Totals.Pay,
		})
	}

	workbook, err := report.Workbook()
	if err != nil {
		h.log.Error().Err(err).Msg("workbook build failed")
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("report generation failed"))
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename()+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("report write failed")
	}
}
