// Package dupcheck analyzes a submission candidate against the employee's
// already-entered records and classifies the findings into three tiers:
// exact duplicates, similar records, and suspicious patterns. The caller
// decides what each tier means for the submit flow; the analyzer only
// reports.
package dupcheck

import (
	"fmt"
	"math"

	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/utils"
)

// Thresholds for the similarity and suspicion rules.
const (
	quantityTolerance = 0.10 // ±10%
	timeToleranceMin  = 15
	smallGapMin       = 5
	rateFactor        = 2.0

	// similarScore is how many of the four closeness criteria must hold for
	// a record to count as similar rather than merely suspicious.
	similarScore = 3
)

// User-facing reasons, in the language of the rest of the UI.
const (
	ReasonOverlap      = "пересекается по времени с другой записью"
	ReasonSmallGap     = "подозрительно маленький перерыв до соседней записи"
	ReasonSameInterval = "тот же интервал времени, но другая операция"
	ReasonRateTooHigh  = "скорость более чем вдвое выше нормы"
	ReasonPartial      = "частично совпадает с существующей записью"
)

// Warning ties a flagged record to the reason it was flagged.
type Warning struct {
	Record model.WorkRecord `json:"record"`
	Reason string           `json:"reason"`
}

// Result is the classified outcome of one analysis.
type Result struct {
	Exact      []model.WorkRecord `json:"exact,omitempty"`
	Similar    []Warning          `json:"similar,omitempty"`
	Suspicious []Warning          `json:"suspicious,omitempty"`
}

// HasExact reports whether an exact duplicate was found.
func (r Result) HasExact() bool { return len(r.Exact) > 0 }

// IsClean reports whether the analysis found nothing at all.
func (r Result) IsClean() bool {
	return len(r.Exact) == 0 && len(r.Similar) == 0 && len(r.Suspicious) == 0
}

// NormSource resolves the hourly norm for an (operation, key) pair. Zero
// means "no norm known" and disables the rate rule.
type NormSource interface {
	NormPerHour(operation, key string) float64
}

type Analyzer struct {
	norms NormSource
}

func NewAnalyzer(norms NormSource) *Analyzer {
	return &Analyzer{norms: norms}
}

// Analyze classifies candidate against the existing records of the same day.
// All rules are per employee; other employees' records are ignored. The tiers
// are disjoint: each record lands in at most one of them, first match wins
// (exact, then similar, then the suspicion rules).
func (a *Analyzer) Analyze(candidate model.WorkRecord, existing []model.WorkRecord) Result {
	var result Result
	candInterval, candTimesOK := newInterval(candidate.StartTime, candidate.EndTime)

	own := utils.Filter(existing, func(r model.WorkRecord) bool {
		return r.EmployeeName == candidate.EmployeeName
	})
	for _, record := range own {
		if isExactDuplicate(candidate, record) {
			result.Exact = append(result.Exact, record)
			continue
		}

		score := closenessScore(candidate, record)
		if score >= similarScore {
			result.Similar = append(result.Similar, Warning{Record: record, Reason: ReasonPartial})
			continue
		}

		if warning, ok := suspicionFor(candidate, record, candInterval, candTimesOK, score); ok {
			result.Suspicious = append(result.Suspicious, warning)
		}
	}

	if warning, ok := a.rateCheck(candidate, candInterval, candTimesOK); ok {
		result.Suspicious = append(result.Suspicious, warning)
	}
	return result
}

// suspicionFor evaluates the suspicion rules against one record and returns
// the first one that holds.
func suspicionFor(cand, rec model.WorkRecord, candInterval interval, timesOK bool, score int) (Warning, bool) {
	if score == similarScore-1 {
		return Warning{Record: rec, Reason: ReasonPartial}, true
	}
	if !timesOK {
		return Warning{}, false
	}
	recInterval, ok := newInterval(rec.StartTime, rec.EndTime)
	if !ok {
		return Warning{}, false
	}

	if cand.StartTime == rec.StartTime && cand.EndTime == rec.EndTime &&
		cand.OperationType != rec.OperationType {
		return Warning{Record: rec, Reason: ReasonSameInterval}, true
	}
	if candInterval.overlaps(recInterval) {
		return Warning{Record: rec, Reason: ReasonOverlap}, true
	}
	if gap := candInterval.gapTo(recInterval); gap > 0 && gap < smallGapMin {
		return Warning{Record: rec, Reason: fmt.Sprintf("%s (%d мин)", ReasonSmallGap, gap)}, true
	}
	return Warning{}, false
}

// isExactDuplicate compares the identifying fields. Kit assembly records
// carry no volume, so volume is skipped for them.
func isExactDuplicate(a, b model.WorkRecord) bool {
	if a.EmployeeName != b.EmployeeName ||
		a.Quantity != b.Quantity ||
		a.StartTime != b.StartTime ||
		a.EndTime != b.EndTime ||
		a.OperationType != b.OperationType ||
		a.OrderNumber != b.OrderNumber ||
		a.SetNumber != b.SetNumber {
		return false
	}
	if a.OperationType == model.OperationKitAssembly {
		return true
	}
	return a.Volume == b.Volume
}

// closenessScore counts how many of the four criteria hold: quantity within
// tolerance, either boundary time within tolerance, same operation, same
// volume or set.
func closenessScore(cand, rec model.WorkRecord) int {
	score := 0
	if rec.Quantity > 0 && math.Abs(cand.Quantity-rec.Quantity) <= rec.Quantity*quantityTolerance {
		score++
	}
	if clockClose(cand.StartTime, rec.StartTime) || clockClose(cand.EndTime, rec.EndTime) {
		score++
	}
	if cand.OperationType == rec.OperationType {
		score++
	}
	if (cand.Volume != "" && cand.Volume == rec.Volume) ||
		(cand.SetNumber != "" && cand.SetNumber == rec.SetNumber) {
		score++
	}
	return score
}

func clockClose(a, b string) bool {
	ma, mb := utils.ClockMinutes(a), utils.ClockMinutes(b)
	if ma < 0 || mb < 0 {
		return false
	}
	diff := ma - mb
	if diff < 0 {
		diff = -diff
	}
	// Shortest distance around midnight.
	if wrapped := utils.MinutesPerDay - diff; wrapped < diff {
		diff = wrapped
	}
	return diff <= timeToleranceMin
}

func (a *Analyzer) rateCheck(cand model.WorkRecord, iv interval, timesOK bool) (Warning, bool) {
	if a.norms == nil || !timesOK || cand.Quantity <= 0 {
		return Warning{}, false
	}
	key := cand.Volume
	if key == "" {
		key = cand.SetNumber
	}
	norm := a.norms.NormPerHour(cand.OperationType, key)
	if norm <= 0 {
		return Warning{}, false
	}
	minutes := iv.duration()
	if minutes <= 0 {
		return Warning{}, false
	}
	implied := cand.Quantity / (float64(minutes) / 60)
	if implied > norm*rateFactor {
		return Warning{
			Record: cand,
			Reason: fmt.Sprintf("%s (%.0f шт/ч при норме %.0f)", ReasonRateTooHigh, implied, norm),
		}, true
	}
	return Warning{}, false
}

// interval is a clock interval in minutes since midnight. An interval whose
// end does not exceed its start wraps to the next day.
type interval struct {
	start, end int
}

func newInterval(startClock, endClock string) (interval, bool) {
	start := utils.ClockMinutes(startClock)
	end := utils.ClockMinutes(endClock)
	if start < 0 || end < 0 {
		return interval{}, false
	}
	if end <= start {
		end += utils.MinutesPerDay
	}
	return interval{start: start, end: end}, true
}

func (iv interval) duration() int { return iv.end - iv.start }

func (iv interval) overlaps(other interval) bool {
	return iv.start < other.end && iv.end > other.start
}

// gapTo returns the minutes between the two intervals when they do not
// overlap, whichever side the other interval is on. Zero or negative means
// adjacency or overlap.
func (iv interval) gapTo(other interval) int {
	if g := other.start - iv.end; g > 0 {
		return g
	}
	return iv.start - other.end
}
