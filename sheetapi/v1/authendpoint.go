package v1

import (
	"context"
	"net/url"

	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/sheetapi/v1/common"
)

type AuthEndpoint struct {
	transport *Transport
}

// Login checks credentials against the sheet service and returns the
// operator's role and employee status.
func (e *AuthEndpoint) Login(ctx context.Context, login, password string) (*model.AuthResult, error) {
	query := url.Values{}
	query.Set("login", login)
	query.Set("password", password)

	data, err := e.transport.Get(ctx, "auth", query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Status         string `json:"status"`
		Role           string `json:"role"`
		EmployeeStatus string `json:"employeeStatus"`
	}
	if err := common.DecodeJSON("auth", data, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" {
		return nil, &common.ServiceError{Op: "auth", Message: "invalid login or password"}
	}

	result := &model.AuthResult{
		Login:          login,
		Role:           payload.Role,
		EmployeeStatus: payload.EmployeeStatus,
	}
	if result.Role == "" {
		result.Role = "user"
	}
	if result.EmployeeStatus == "" {
		result.EmployeeStatus = model.StatusStaff
	}
	return result, nil
}
