package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/sheetapi/v1/common"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *SheetClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSheetClient(srv.URL, zerolog.Nop())
}

func TestDictionaryList(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("type") {
		case "volumes":
			w.Write([]byte(`{"volumes":["2мл","10мл"]}`))
		case "packingModels":
			w.Write([]byte(`{"models":["FBO","FBS"]}`))
		case "operations":
			w.Write([]byte(`{}`))
		default:
			http.Error(w, "unknown type", http.StatusBadRequest)
		}
	})

	volumes, err := client.Dictionaries.List(context.Background(), ListVolumes)
	require.NoError(t, err)
	assert.Equal(t, []string{"2мл", "10мл"}, volumes)

	models, err := client.Dictionaries.List(context.Background(), ListPackingModels)
	require.NoError(t, err)
	assert.Equal(t, []string{"FBO", "FBS"}, models)

	// Semantically empty response is "no data", not an error.
	ops, err := client.Dictionaries.List(context.Background(), ListOperations)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestRecordAddSendsForm(t *testing.T) {
	var gotForm map[string]string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	rec := model.WorkRecord{
		EmployeeName:  "Иванова",
		Quantity:      120,
		StartTime:     "22:30",
		EndTime:       "01:00",
		OperationType: "Фасовка",
		Volume:        "10мл",
		ShiftType:     model.ShiftNight,
	}
	// 22:30 to 01:00 wraps midnight: 150 minutes.
	require.NoError(t, client.Records.Add(context.Background(), rec, 150))

	assert.Equal(t, "addRecord", gotForm["type"])
	assert.Equal(t, "Иванова", gotForm["employeeName"])
	assert.Equal(t, "120", gotForm["quantity"])
	// 150 min as a fraction of a day.
	assert.Equal(t, "0.10416666666666667", gotForm["duration"])
}

func TestRecordDeleteStatuses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "success", body: `{"status":"success"}`, wantErr: false},
		{name: "error with message", body: `{"status":"error","message":"нет записи"}`, wantErr: true},
		{name: "unexpected status", body: `{"status":"pending"}`, wantErr: true},
		{name: "legacy plain text", body: `OK`, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "deleteRecord", r.URL.Query().Get("type"))
				assert.Equal(t, "3", r.URL.Query().Get("index"))
				w.Write([]byte(tt.body))
			})

			err := client.Records.Delete(context.Background(), 3)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthLogin(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("password") == "secret" {
			w.Write([]byte(`{"status":"ok","role":"master","employeeStatus":"Штат"}`))
			return
		}
		w.Write([]byte(`{"status":"error"}`))
	})

	result, err := client.Auth.Login(context.Background(), "op1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "master", result.Role)
	assert.Equal(t, model.StatusStaff, result.EmployeeStatus)

	_, err = client.Auth.Login(context.Background(), "op1", "wrong")
	var svcErr *common.ServiceError
	require.ErrorAs(t, err, &svcErr)
}

func TestSalaryByShiftToleratesNumbers(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("type") {
		case "getSalaryByShift":
			w.Write([]byte(`{"salary":45000}`))
		case "getSalary":
			w.Write([]byte(`{"salary":"40000"}`))
		}
	})

	salary, err := client.Salaries.ByShift(context.Background(), "Иванова", model.ShiftDay)
	require.NoError(t, err)
	assert.Equal(t, "45000", salary)

	salary, err = client.Salaries.Generic(context.Background(), "Иванова")
	require.NoError(t, err)
	assert.Equal(t, "40000", salary)
}

func TestSettingsRoundTrip(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("type") {
		case "getAdminSettings":
			w.Write([]byte(`{"settings":{"allow_record_editing":true}}`))
		case "updateAdminSettings":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "true", r.PostForm.Get("force_deal_paytype"))
			w.Write([]byte(`{"status":"ok"}`))
		}
	})

	flags, err := client.Settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"allow_record_editing": true}, flags)

	err = client.Settings.UpdateAll(context.Background(), model.AdminSettings{ForceDealPaytype: true})
	require.NoError(t, err)
}

func TestSelfTestTimeout(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"settings":{}}`))
	})
	assert.NoError(t, client.SelfTest(context.Background()))
}
