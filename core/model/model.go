// Package model holds the domain types shared by the sheet-service client
// and the caching core.
package model

// Employee statuses and pay types as they appear in the sheet service.
// The backend is a Russian-language spreadsheet, so the literals are too.
const (
	StatusOutsourcing = "Аутсорсинг"
	StatusStaff       = "Штат"

	PayTypeDeal       = "Сделка"
	PayTypeSalaryDeal = "Оклад + сделка"

	// OperationKitAssembly is the one operation type whose exact-duplicate
	// check skips the volume comparison (kits have no volume).
	OperationKitAssembly = `Сборка "Набора"`

	ShiftDay   = "День"
	ShiftNight = "Ночь"
)

// WorkRecord is one packing/operation entry, either a submission candidate
// or a historical row from the sheet. Times are "HH:MM" strings; an interval
// whose end precedes its start crosses midnight.
type WorkRecord struct {
	EmployeeName   string  `json:"employeeName"`
	Quantity       float64 `json:"quantity"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	OperationType  string  `json:"operationType"`
	OrderNumber    string  `json:"orderNumber"`
	SetNumber      string  `json:"setNumber"`
	Volume         string  `json:"volume"`
	ShiftType      string  `json:"shiftType"`
	EmployeeStatus string  `json:"employeeStatus"`
}

// OperationRate is one row of the rate table: the norm and the four unit
// rates for an (operation, key) pair, where key is a volume or set article.
type OperationRate struct {
	Operation   string  `json:"operation"`
	Key         string  `json:"key"`
	NormPerHour float64 `json:"normPerHour"`
	RatePerUnit float64 `json:"ratePerUnit"`
	RateFBS     float64 `json:"rateFBS"`
	RateDeal    float64 `json:"rateDeal"`
	RateFBSDeal float64 `json:"rateFBSDeal"`
}

// Synthetic rate-table rows holding base salary rates rather than piecework
// rates. They are excluded from the operation/key index.
const (
	RateRowOutsourcing = "Ставка_Аутсорсинг"
	RateRowStaff       = "Ставка_штат"
)

// AdminSettings is the fixed fail-closed flag set. The zero value is the
// safe default: everything off.
type AdminSettings struct {
	AllowRecordEditing  bool `json:"allow_record_editing"`
	AllowRecordDeletion bool `json:"allow_record_deletion"`
	AutoEndTimeEnabled  bool `json:"auto_end_time_enabled"`
	ForceDealPaytype    bool `json:"force_deal_paytype"`
}

// Merge overlays the flags present in partial onto s. The sheet service may
// return a subset of keys; absent keys keep their current value.
func (s AdminSettings) Merge(partial map[string]bool) AdminSettings {
	if v, ok := partial["allow_record_editing"]; ok {
		s.AllowRecordEditing = v
	}
	if v, ok := partial["allow_record_deletion"]; ok {
		s.AllowRecordDeletion = v
	}
	if v, ok := partial["auto_end_time_enabled"]; ok {
		s.AutoEndTimeEnabled = v
	}
	if v, ok := partial["force_deal_paytype"]; ok {
		s.ForceDealPaytype = v
	}
	return s
}

// Map returns the flags as the key/value map the sheet service expects.
func (s AdminSettings) Map() map[string]bool {
	return map[string]bool{
		"allow_record_editing":  s.AllowRecordEditing,
		"allow_record_deletion": s.AllowRecordDeletion,
		"auto_end_time_enabled": s.AutoEndTimeEnabled,
		"force_deal_paytype":    s.ForceDealPaytype,
	}
}

// StatsTotals aggregates one record group.
type StatsTotals struct {
	Quantity float64 `json:"quantity"`
	Hours    float64 `json:"hours"`
	Pay      float64 `json:"pay"`
}

// MentorBonusDetail is one mentor's bonus line in a daily summary.
type MentorBonusDetail struct {
	Mentor  string  `json:"mentor"`
	Trainee string  `json:"trainee"`
	Bonus   float64 `json:"bonus"`
}

// StatsSnapshot is the fully computed summary for one (employee, date)
// pair, cached as-is so a repeat view needs no recomputation.
type StatsSnapshot struct {
	Records            []WorkRecord        `json:"records"`
	DayRecords         []WorkRecord        `json:"dayRecords,omitempty"`
	NightRecords       []WorkRecord        `json:"nightRecords,omitempty"`
	StaffRecords       []WorkRecord        `json:"staffRecords,omitempty"`
	TraineeRecords     []WorkRecord        `json:"traineeRecords,omitempty"`
	Totals             StatsTotals         `json:"totals"`
	DayTotals          StatsTotals         `json:"dayTotals,omitempty"`
	NightTotals        StatsTotals         `json:"nightTotals,omitempty"`
	StaffTotals        StatsTotals         `json:"staffTotals,omitempty"`
	TraineeTotals      StatsTotals         `json:"traineeTotals,omitempty"`
	MentorBonusDetails []MentorBonusDetail `json:"mentorBonusDetails,omitempty"`
	Logs               []string            `json:"logs,omitempty"`
}

// AuthResult is the sheet service's answer to a login attempt.
type AuthResult struct {
	Login          string `json:"login"`
	Role           string `json:"role"`
	EmployeeStatus string `json:"employeeStatus"`
}
