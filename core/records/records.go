// Package records owns the submit, edit and delete flows and the in-memory
// working set of today's records that the duplicate analyzer runs against.
package records

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"packtrack.app/packtrack/core/dupcheck"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/utils"
)

// MinSubmitInterval is the double-click guard: a second submit inside this
// window is rejected outright.
const MinSubmitInterval = 2 * time.Second

var (
	ErrTooSoon      = errors.New("previous submission is still settling, try again in a moment")
	ErrPolicyDenied = errors.New("action is disabled by admin settings")
)

// DuplicateError reports an exact match on an unconfirmed submission.
// Resubmitting with Confirmed set proceeds past it.
type DuplicateError struct {
	Result dupcheck.Result
}

func (e *DuplicateError) Error() string { return "record is an exact duplicate of an existing entry" }

// NeedsConfirmError reports advisory findings on an unconfirmed submission.
// Resubmitting with Confirmed set proceeds past it.
type NeedsConfirmError struct {
	Result dupcheck.Result
}

func (e *NeedsConfirmError) Error() string { return "record resembles existing entries" }

// Gateway is the slice of the sheet client that reads and mutates records.
type Gateway interface {
	Today(ctx context.Context) ([]model.WorkRecord, error)
	Add(ctx context.Context, rec model.WorkRecord, durationMinutes int) error
	Edit(ctx context.Context, index int, rec model.WorkRecord, durationMinutes int) error
	Delete(ctx context.Context, index int) error
}

// StatsInvalidator drops cached summaries touched by a mutation.
type StatsInvalidator interface {
	Invalidate(employee, date string)
}

// FlagSource supplies the admin flags guarding edit and delete.
type FlagSource interface {
	Current() model.AdminSettings
}

// SubmitOptions modifies one submission attempt.
type SubmitOptions struct {
	// Confirmed acknowledges previously reported advisory warnings.
	Confirmed bool
}

type Service struct {
	gateway  Gateway
	analyzer *dupcheck.Analyzer
	flags    FlagSource
	stats    StatsInvalidator
	log      zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	submitting bool
	lastSubmit time.Time
	workingSet []model.WorkRecord
	workingDay string
}

func NewService(gateway Gateway, analyzer *dupcheck.Analyzer, flags FlagSource, stats StatsInvalidator, log zerolog.Logger) *Service {
	return &Service{
		gateway:  gateway,
		analyzer: analyzer,
		flags:    flags,
		stats:    stats,
		log:      log.With().Str("component", "records").Logger(),
		now:      time.Now,
	}
}

// WithClock replaces the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today returns the working set, fetching it on first use and again after a
// day rollover. Mutations refresh it eagerly.
func (s *Service) Today(ctx context.Context) ([]model.WorkRecord, error) {
	today := utils.ISODate(s.now())
	s.mu.Lock()
	if s.workingDay == today {
		records := s.workingSet
		s.mu.Unlock()
		return records, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh re-reads today's records from the sheet service.
func (s *Service) Refresh(ctx context.Context) ([]model.WorkRecord, error) {
	records, err := s.gateway.Today(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.workingSet = records
	s.workingDay = utils.ISODate(s.now())
	s.mu.Unlock()
	return records, nil
}

// Check runs the duplicate analysis for a candidate without submitting it.
func (s *Service) Check(ctx context.Context, rec model.WorkRecord) (dupcheck.Result, error) {
	existing, err := s.Today(ctx)
	if err != nil {
		return dupcheck.Result{}, err
	}
	return s.analyzer.Analyze(rec, existing), nil
}

// Submit validates, analyzes and stores a new record. Findings of any tier
// are advisory: the first attempt is rejected with the analysis attached and
// a confirmed resubmit goes through. On success the touched summary is
// invalidated before the working set refresh, so no stale summary can
// survive a refresh failure.
func (s *Service) Submit(ctx context.Context, rec model.WorkRecord, opts SubmitOptions) error {
	if err := s.beginSubmit(); err != nil {
		return err
	}
	defer s.endSubmit()

	duration, err := recordDuration(rec)
	if err != nil {
		return err
	}

	result, err := s.Check(ctx, rec)
	if err != nil {
		return err
	}
	if !result.IsClean() && !opts.Confirmed {
		if result.HasExact() {
			return &DuplicateError{Result: result}
		}
		return &NeedsConfirmError{Result: result}
	}

	if err := s.gateway.Add(ctx, rec, duration); err != nil {
		return err
	}
	s.markSubmitted()

	s.afterMutation(ctx, rec.EmployeeName)
	return nil
}

// Edit replaces the record at index. Requires the editing flag.
func (s *Service) Edit(ctx context.Context, index int, rec model.WorkRecord) error {
	if !s.flags.Current().AllowRecordEditing {
		return ErrPolicyDenied
	}

	duration, err := recordDuration(rec)
	if err != nil {
		return err
	}
	if err := s.gateway.Edit(ctx, index, rec, duration); err != nil {
		return err
	}

	s.afterMutation(ctx, rec.EmployeeName)
	return nil
}

// Delete removes the record at index. Requires the deletion flag.
func (s *Service) Delete(ctx context.Context, index int) error {
	if !s.flags.Current().AllowRecordDeletion {
		return ErrPolicyDenied
	}

	employee := ""
	s.mu.Lock()
	if index >= 0 && index < len(s.workingSet) {
		employee = s.workingSet[index].EmployeeName
	}
	s.mu.Unlock()

	if err := s.gateway.Delete(ctx, index); err != nil {
		return err
	}

	s.afterMutation(ctx, employee)
	return nil
}

func (s *Service) beginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting || s.now().Sub(s.lastSubmit) < MinSubmitInterval {
		return ErrTooSoon
	}
	s.submitting = true
	return nil
}

func (s *Service) endSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

func (s *Service) markSubmitted() {
	s.mu.Lock()
	s.lastSubmit = s.now()
	s.mu.Unlock()
}

// afterMutation invalidates the touched summary first, then refreshes the
// working set. The refresh is best-effort; a failure only delays the next
// duplicate check's data.
func (s *Service) afterMutation(ctx context.Context, employee string) {
	if s.stats != nil && employee != "" {
		s.stats.Invalidate(employee, utils.ISODate(s.now()))
	}
	if _, err := s.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("working set refresh after mutation failed")
	}
}

func recordDuration(rec model.WorkRecord) (int, error) {
	start, err := utils.ParseClock(rec.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := utils.ParseClock(rec.EndTime)
	if err != nil {
		return 0, err
	}
	return utils.DurationMinutes(start, end), nil
}
