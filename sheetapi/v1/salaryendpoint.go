package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"packtrack.app/packtrack/sheetapi/v1/common"
)

type SalaryEndpoint struct {
	transport *Transport
}

// salaryPayload tolerates the salary arriving as a number or a string,
// depending on how the cell is formatted in the sheet.
type salaryPayload struct {
	Salary json.RawMessage `json:"salary"`
}

func (p salaryPayload) text() string {
	raw := p.Salary
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// ByShift fetches the employee's base salary for a specific shift variant.
func (e *SalaryEndpoint) ByShift(ctx context.Context, employee, shift string) (string, error) {
	query := url.Values{}
	query.Set("employee", employee)
	query.Set("shift", shift)

	data, err := e.transport.Get(ctx, "getSalaryByShift", query)
	if err != nil {
		return "", err
	}

	var payload salaryPayload
	if err := common.DecodeJSON("getSalaryByShift", data, &payload); err != nil {
		return "", err
	}
	salary := payload.text()
	if salary == "" {
		return "", fmt.Errorf("getSalaryByShift: no salary for %q (%s)", employee, shift)
	}
	return salary, nil
}

// Generic fetches the shift-independent salary, the fallback for sheets
// that predate per-shift salaries.
func (e *SalaryEndpoint) Generic(ctx context.Context, employee string) (string, error) {
	query := url.Values{}
	query.Set("employee", employee)

	data, err := e.transport.Get(ctx, "getSalary", query)
	if err != nil {
		return "", err
	}

	var payload salaryPayload
	if err := common.DecodeJSON("getSalary", data, &payload); err != nil {
		return "", err
	}
	salary := payload.text()
	if salary == "" {
		return "", fmt.Errorf("getSalary: no salary for %q", employee)
	}
	return salary, nil
}
