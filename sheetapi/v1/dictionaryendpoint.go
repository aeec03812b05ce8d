package v1

import (
	"context"
	"encoding/json"
	"fmt"

	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/sheetapi/v1/common"
)

// ListKind names one of the simple reference dictionaries.
type ListKind string

const (
	ListOperations    ListKind = "operations"
	ListVolumes       ListKind = "volumes"
	ListSets          ListKind = "sets"
	ListSetSizes      ListKind = "setSizes"
	ListPackingModels ListKind = "packingModels"
)

// listField maps a dictionary kind to the field the service wraps it in.
// Packing models are the one legacy exception.
func (k ListKind) listField() string {
	if k == ListPackingModels {
		return "models"
	}
	return string(k)
}

type DictionaryEndpoint struct {
	transport *Transport
}

// List fetches one reference dictionary. A response without the expected
// field is "no data", not an error.
func (e *DictionaryEndpoint) List(ctx context.Context, kind ListKind) ([]string, error) {
	op := string(kind)
	data, err := e.transport.Get(ctx, op, nil)
	if err != nil {
		return nil, err
	}

	var payload map[string]json.RawMessage
	if err := common.DecodeJSON(op, data, &payload); err != nil {
		return nil, err
	}

	raw, ok := payload[kind.listField()]
	if !ok {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: unexpected list shape: %w", op, err)
	}
	return items, nil
}

// Rates fetches the full rate table.
func (e *DictionaryEndpoint) Rates(ctx context.Context) ([]model.OperationRate, error) {
	data, err := e.transport.Get(ctx, "rates", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Rates []model.OperationRate `json:"rates"`
	}
	if err := common.DecodeJSON("rates", data, &payload); err != nil {
		return nil, err
	}
	return payload.Rates, nil
}
