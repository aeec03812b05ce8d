package common

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ServiceError is an error the sheet service reported inside an otherwise
// successful HTTP response.
type ServiceError struct {
	Op      string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: sheet service reported an error", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// probe is the loose discriminator shape shared by every sheet-service
// response. Error may be a string or an object depending on the operation.
type probe struct {
	Status  string          `json:"status"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// CheckError inspects a response body for the status/error discriminator.
// Rules, in order:
//   - empty body: success with no data
//   - non-JSON body: tolerated as success (several legacy operations return
//     plain text or HTML on success)
//   - JSON with status:"error" or a non-null error field: *ServiceError
func CheckError(op string, data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var p probe
	if err := json.Unmarshal(trimmed, &p); err != nil {
		// Legacy endpoints sometimes answer with HTML or plain text. Without
		// a recognizable error marker we treat that as success.
		return nil
	}

	if p.Status == "error" || errorPresent(p.Error) {
		msg := p.Message
		if msg == "" {
			msg = errorText(p.Error)
		}
		return &ServiceError{Op: op, Message: msg}
	}
	return nil
}

// DecodeJSON parses data into v after running CheckError. An empty or
// non-JSON body leaves v untouched and returns nil, so callers see "no
// data" rather than a failure.
func DecodeJSON(op string, data []byte, v any) error {
	if err := CheckError(op, data); err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		if !json.Valid(trimmed) {
			// Tolerated legacy non-JSON success body.
			return nil
		}
		return fmt.Errorf("%s: unexpected response shape: %w", op, err)
	}
	return nil
}

func errorPresent(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) > 0 && !bytes.Equal(s, []byte("null")) && !bytes.Equal(s, []byte(`""`)) && !bytes.Equal(s, []byte("false"))
}

func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
