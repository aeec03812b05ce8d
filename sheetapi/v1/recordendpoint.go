package v1

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/sheetapi/v1/common"
)

type RecordEndpoint struct {
	transport *Transport
}

// Today fetches the current day's records (the duplicate detector's working
// set). An empty payload means no records yet, not a failure.
func (e *RecordEndpoint) Today(ctx context.Context) ([]model.WorkRecord, error) {
	data, err := e.transport.Get(ctx, "records", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Records []model.WorkRecord `json:"records"`
	}
	if err := common.DecodeJSON("records", data, &payload); err != nil {
		return nil, err
	}
	return payload.Records, nil
}

// Stats fetches the computed summary for one employee and date.
func (e *RecordEndpoint) Stats(ctx context.Context, employee, date string) (*model.StatsSnapshot, error) {
	query := url.Values{}
	query.Set("employee", employee)
	query.Set("date", date)

	data, err := e.transport.Get(ctx, "stats", query)
	if err != nil {
		return nil, err
	}

	var snapshot model.StatsSnapshot
	if err := common.DecodeJSON("stats", data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// recordForm encodes a record the way the spreadsheet expects it: every
// field as a string, plus the duration as a fraction of a day so the sheet
// renders it as h:mm:ss.
func recordForm(rec model.WorkRecord, durationMinutes int) url.Values {
	form := url.Values{}
	form.Set("employeeName", rec.EmployeeName)
	form.Set("quantity", strconv.FormatFloat(rec.Quantity, 'f', -1, 64))
	form.Set("startTime", rec.StartTime)
	form.Set("endTime", rec.EndTime)
	form.Set("operationType", rec.OperationType)
	form.Set("orderNumber", rec.OrderNumber)
	form.Set("setNumber", rec.SetNumber)
	form.Set("volume", rec.Volume)
	form.Set("shiftType", rec.ShiftType)
	form.Set("employeeStatus", rec.EmployeeStatus)
	form.Set("duration", strconv.FormatFloat(float64(durationMinutes)/(24*60), 'f', -1, 64))
	return form
}

// Add appends a new record.
func (e *RecordEndpoint) Add(ctx context.Context, rec model.WorkRecord, durationMinutes int) error {
	data, err := e.transport.PostForm(ctx, "addRecord", recordForm(rec, durationMinutes))
	if err != nil {
		return err
	}
	return common.CheckError("addRecord", data)
}

// Edit replaces the record at the given position in today's sequence.
func (e *RecordEndpoint) Edit(ctx context.Context, index int, rec model.WorkRecord, durationMinutes int) error {
	form := recordForm(rec, durationMinutes)
	form.Set("index", strconv.Itoa(index))

	data, err := e.transport.PostForm(ctx, "editRecord", form)
	if err != nil {
		return err
	}
	return common.CheckError("editRecord", data)
}

// Delete removes the record at the given position in today's sequence. The
// delete operation is the one mutation that answers with status:"success"
// rather than the usual envelope.
func (e *RecordEndpoint) Delete(ctx context.Context, index int) error {
	query := url.Values{}
	query.Set("index", strconv.Itoa(index))

	data, err := e.transport.Get(ctx, "deleteRecord", query)
	if err != nil {
		return err
	}
	if err := common.CheckError("deleteRecord", data); err != nil {
		return err
	}

	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := common.DecodeJSON("deleteRecord", data, &payload); err != nil {
		return err
	}
	if payload.Status != "" && payload.Status != "success" && payload.Status != "ok" {
		msg := payload.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %q", payload.Status)
		}
		return &common.ServiceError{Op: "deleteRecord", Message: msg}
	}
	return nil
}
