// Package handlers wires the HTTP surface to the caching core. Every handler
// answers with the common success/error envelopes.
package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"packtrack.app/packtrack/core/dupcheck"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/core/records"
	"packtrack.app/packtrack/core/stats"
	v1 "packtrack.app/packtrack/sheetapi/v1"
)

// AuthGateway is the sheet login operation.
type AuthGateway interface {
	Login(ctx context.Context, login, password string) (*model.AuthResult, error)
}

// DictionaryService is the cached reference-data layer.
type DictionaryService interface {
	LoadList(ctx context.Context, kind v1.ListKind) ([]string, error)
	LoadRates(ctx context.Context) ([]model.OperationRate, error)
	KeysFor(operation string) []string
	LoadSalary(ctx context.Context, employee, shift string) string
	InvalidateAll()
}

// SelfTester probes connectivity to the sheet service.
type SelfTester interface {
	SelfTest(ctx context.Context) error
}

// SettingsStore is the admin flag store.
type SettingsStore interface {
	Current() model.AdminSettings
	RefreshFromServer(ctx context.Context) (model.AdminSettings, error)
	Save(ctx context.Context, desired model.AdminSettings) error
}

// RecordService is the record mutation layer.
type RecordService interface {
	Today(ctx context.Context) ([]model.WorkRecord, error)
	Check(ctx context.Context, rec model.WorkRecord) (dupcheck.Result, error)
	Submit(ctx context.Context, rec model.WorkRecord, opts records.SubmitOptions) error
	Edit(ctx context.Context, index int, rec model.WorkRecord) error
	Delete(ctx context.Context, index int) error
}

// StatsService is the cached summary layer.
type StatsService interface {
	Get(ctx context.Context, employee, date, employeeStatus string) (*stats.View, error)
	InvalidateAll()
}

type Handlers struct {
	auth      AuthGateway
	dicts     DictionaryService
	settings  SettingsStore
	records   RecordService
	stats     StatsService
	selftest  SelfTester
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func New(auth AuthGateway, dicts DictionaryService, settings SettingsStore, records RecordService, stats StatsService, selftest SelfTester, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *Handlers {
	return &Handlers{
		auth:      auth,
		dicts:     dicts,
		settings:  settings,
		records:   records,
		stats:     stats,
		selftest:  selftest,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log.With().Str("component", "web").Logger(),
	}
}
