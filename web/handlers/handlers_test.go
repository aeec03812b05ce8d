package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"packtrack.app/packtrack/core/dupcheck"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/core/records"
	"packtrack.app/packtrack/core/stats"
	"packtrack.app/packtrack/security"
	v1 "packtrack.app/packtrack/sheetapi/v1"
	"packtrack.app/packtrack/sheetapi/v1/common"
	"packtrack.app/packtrack/web/middlewares"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

type fakeAuth struct {
	result *model.AuthResult
	err    error
}

func (f *fakeAuth) Login(context.Context, string, string) (*model.AuthResult, error) {
	return f.result, f.err
}

type fakeDicts struct {
	lists  map[v1.ListKind][]string
	rates  []model.OperationRate
	salary string
}

func (f *fakeDicts) LoadList(_ context.Context, kind v1.ListKind) ([]string, error) {
	return f.lists[kind], nil
}
func (f *fakeDicts) LoadRates(context.Context) ([]model.OperationRate, error) { return f.rates, nil }
func (f *fakeDicts) KeysFor(string) []string                                  { return nil }
func (f *fakeDicts) LoadSalary(context.Context, string, string) string        { return f.salary }
func (f *fakeDicts) InvalidateAll()                                           {}

type fakeSelfTest struct{ err error }

func (f *fakeSelfTest) SelfTest(context.Context) error { return f.err }

type fakeSettings struct {
	flags   model.AdminSettings
	saveErr error
	saved   *model.AdminSettings
}

func (f *fakeSettings) Current() model.AdminSettings { return f.flags }
func (f *fakeSettings) RefreshFromServer(context.Context) (model.AdminSettings, error) {
	return f.flags, nil
}
func (f *fakeSettings) Save(_ context.Context, desired model.AdminSettings) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.flags = desired
	f.saved = &desired
	return nil
}

type fakeRecords struct {
	today     []model.WorkRecord
	submitErr error
	submitted []model.WorkRecord
}

func (f *fakeRecords) Today(context.Context) ([]model.WorkRecord, error) { return f.today, nil }
func (f *fakeRecords) Check(context.Context, model.WorkRecord) (dupcheck.Result, error) {
	return dupcheck.Result{}, nil
}
func (f *fakeRecords) Submit(_ context.Context, rec model.WorkRecord, _ records.SubmitOptions) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, rec)
	return nil
}
func (f *fakeRecords) Edit(context.Context, int, model.WorkRecord) error { return nil }
func (f *fakeRecords) Delete(context.Context, int) error                 { return nil }

type fakeStats struct {
	view *stats.View
	err  error
}

func (f *fakeStats) Get(context.Context, string, string, string) (*stats.View, error) {
	return f.view, f.err
}
func (f *fakeStats) InvalidateAll() {}

type deps struct {
	auth     *fakeAuth
	dicts    *fakeDicts
	settings *fakeSettings
	records  *fakeRecords
	stats    *fakeStats
}

func newTestRouter(t *testing.T, d *deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := New(d.auth, d.dicts, d.settings, d.records, d.stats, &fakeSelfTest{}, testSecret, time.Hour, zerolog.Nop())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	api := r.Group("/api")
	api.Use(middlewares.Authentication(testSecret))
	{
		api.GET("/dictionaries/:kind", h.ListDictionary)
		api.GET("/salary", h.Salary)
		api.GET("/stats", h.GetStats)
		api.GET("/settings", h.GetSettings)
		api.POST("/records", h.SubmitRecord)
		admin := api.Group("/admin")
		admin.Use(middlewares.RequireAdmin())
		admin.PUT("/settings", h.UpdateSettings)
	}
	return r
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := security.CreateIdentityToken(security.Identity{
		Login:          "Иванова",
		Role:           role,
		EmployeeStatus: model.StatusStaff,
	}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func doJSON(r *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func defaultDeps() *deps {
	return &deps{
		auth:     &fakeAuth{result: &model.AuthResult{Login: "Иванова", Role: "user", EmployeeStatus: model.StatusStaff}},
		dicts:    &fakeDicts{lists: map[v1.ListKind][]string{v1.ListVolumes: {"2мл", "10мл"}}, salary: "45000"},
		settings: &fakeSettings{},
		records:  &fakeRecords{},
		stats:    &fakeStats{view: &stats.View{PayType: model.PayTypeDeal}},
	}
}

func TestLoginIssuesToken(t *testing.T) {
	d := defaultDeps()
	r := newTestRouter(t, d)

	w := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{"login": "Иванова", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
			Login string `json:"login"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "Иванова", resp.Data.Login)

	// The issued token opens the protected API.
	w = doJSON(r, http.MethodGet, "/api/dictionaries/volumes", resp.Data.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	d := defaultDeps()
	d.auth.err = &common.ServiceError{Op: "auth", Message: "invalid login or password"}
	r := newTestRouter(t, d)

	w := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{"login": "Иванова", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginValidatesBody(t *testing.T) {
	r := newTestRouter(t, defaultDeps())
	w := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{"login": "Иванова"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, defaultDeps())
	w := doJSON(r, http.MethodGet, "/api/settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/settings", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateSettingsRequiresAdmin(t *testing.T) {
	d := defaultDeps()
	r := newTestRouter(t, d)

	w := doJSON(r, http.MethodPut, "/api/admin/settings", token(t, "user"), gin.H{"force_deal_paytype": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, d.settings.saved)

	w = doJSON(r, http.MethodPut, "/api/admin/settings", token(t, "admin"), gin.H{"force_deal_paytype": true})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, d.settings.saved)
	assert.True(t, d.settings.saved.ForceDealPaytype)
	// Flags absent from the request keep their value.
	assert.False(t, d.settings.saved.AllowRecordEditing)
}

func TestSubmitRecordConflictCarriesAnalysis(t *testing.T) {
	d := defaultDeps()
	d.records.submitErr = &records.DuplicateError{Result: dupcheck.Result{
		Exact: []model.WorkRecord{{EmployeeName: "Иванова"}},
	}}
	r := newTestRouter(t, d)

	w := doJSON(r, http.MethodPost, "/api/records", token(t, "user"), gin.H{
		"quantity":      100,
		"startTime":     "09:00",
		"endTime":       "10:00",
		"operationType": "Фасовка",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp duplicateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Result.HasExact())
}

func TestSubmitRecordTooSoon(t *testing.T) {
	d := defaultDeps()
	d.records.submitErr = records.ErrTooSoon
	r := newTestRouter(t, d)

	w := doJSON(r, http.MethodPost, "/api/records", token(t, "user"), gin.H{
		"quantity":      100,
		"startTime":     "09:00",
		"endTime":       "10:00",
		"operationType": "Фасовка",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSubmitRecordDefaultsToCallerIdentity(t *testing.T) {
	d := defaultDeps()
	r := newTestRouter(t, d)

	w := doJSON(r, http.MethodPost, "/api/records", token(t, "user"), gin.H{
		"quantity":      100,
		"startTime":     "09:00",
		"endTime":       "10:00",
		"operationType": "Фасовка",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, d.records.submitted, 1)
	assert.Equal(t, "Иванова", d.records.submitted[0].EmployeeName)
	assert.Equal(t, model.StatusStaff, d.records.submitted[0].EmployeeStatus)
	assert.Equal(t, model.ShiftDay, d.records.submitted[0].ShiftType)
}

func TestStatsValidatesDate(t *testing.T) {
	r := newTestRouter(t, defaultDeps())
	w := doJSON(r, http.MethodGet, "/api/stats?date=10.02.2026", token(t, "user"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/stats?date=2026-02-10", token(t, "user"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSalaryDefaultsToCaller(t *testing.T) {
	r := newTestRouter(t, defaultDeps())
	w := doJSON(r, http.MethodGet, "/api/salary", token(t, "user"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "45000")
	assert.Contains(t, w.Body.String(), "Иванова")
}
