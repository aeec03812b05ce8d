package v1

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"packtrack.app/packtrack/sheetapi/v1/common"
)

// selfTestTimeout bounds the connectivity self-test; other requests rely on
// the transport's default behavior.
const selfTestTimeout = 10 * time.Second

type SheetClient struct {
	Transport    *Transport
	Dictionaries *DictionaryEndpoint
	Records      *RecordEndpoint
	Settings     *SettingsEndpoint
	Salaries     *SalaryEndpoint
	Auth         *AuthEndpoint
}

// NewSheetClient initializes the API client for the sheet service.
func NewSheetClient(baseURL string, log zerolog.Logger) *SheetClient {
	t := NewTransport(baseURL, log)
	return &SheetClient{
		Transport:    t,
		Dictionaries: &DictionaryEndpoint{transport: t},
		Records:      &RecordEndpoint{transport: t},
		Settings:     &SettingsEndpoint{transport: t},
		Salaries:     &SalaryEndpoint{transport: t},
		Auth:         &AuthEndpoint{transport: t},
	}
}

// SelfTest checks that the sheet service is reachable and answers with
// parseable JSON. It is the only call with an explicit timeout.
func (c *SheetClient) SelfTest(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, selfTestTimeout)
	defer cancel()

	data, err := c.Transport.Get(ctx, "getAdminSettings", nil)
	if err != nil {
		return err
	}
	return common.CheckError("getAdminSettings", data)
}
