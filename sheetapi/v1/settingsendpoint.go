package v1

import (
	"context"
	"net/url"
	"strconv"

	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/sheetapi/v1/common"
)

type SettingsEndpoint struct {
	transport *Transport
}

// Get fetches the admin flag set. The service may return a subset of keys;
// the caller merges them over its current state.
func (e *SettingsEndpoint) Get(ctx context.Context) (map[string]bool, error) {
	data, err := e.transport.Get(ctx, "getAdminSettings", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Settings map[string]bool `json:"settings"`
	}
	if err := common.DecodeJSON("getAdminSettings", data, &payload); err != nil {
		return nil, err
	}
	if payload.Settings == nil {
		return nil, &common.ServiceError{Op: "getAdminSettings", Message: "response carried no settings"}
	}
	return payload.Settings, nil
}

// UpdateAll writes the full flag set in one combined request.
func (e *SettingsEndpoint) UpdateAll(ctx context.Context, settings model.AdminSettings) error {
	form := url.Values{}
	for key, value := range settings.Map() {
		form.Set(key, strconv.FormatBool(value))
	}

	data, err := e.transport.PostForm(ctx, "updateAdminSettings", form)
	if err != nil {
		return err
	}
	return common.CheckError("updateAdminSettings", data)
}

// UpdateOne writes a single flag. Used as the per-key fallback when the
// combined write fails.
func (e *SettingsEndpoint) UpdateOne(ctx context.Context, key string, value bool) error {
	query := url.Values{}
	query.Set("key", key)
	query.Set("value", strconv.FormatBool(value))

	data, err := e.transport.Get(ctx, "updateAdminSetting", query)
	if err != nil {
		return err
	}
	return common.CheckError("updateAdminSetting", data)
}
