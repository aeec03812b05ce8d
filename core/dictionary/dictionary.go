// Package dictionary serves the reference data behind the entry form: the
// simple value lists, the operation rate table with its lookup index, and the
// per-employee base salary. Everything is read through the TTL cache, and
// list loads fall back to stale data when the sheet service is unreachable.
package dictionary

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"packtrack.app/packtrack/core/cache"
	"packtrack.app/packtrack/core/model"
	v1 "packtrack.app/packtrack/sheetapi/v1"
	"packtrack.app/packtrack/utils"
)

const ratesKey = "rates"

// Gateway is the slice of the sheet client that serves reference data.
type Gateway interface {
	List(ctx context.Context, kind v1.ListKind) ([]string, error)
	Rates(ctx context.Context) ([]model.OperationRate, error)
}

// SalaryGateway serves the per-employee base salary. The byShift endpoint is
// newer and preferred; the generic one is kept for older deployments.
type SalaryGateway interface {
	ByShift(ctx context.Context, employee, shift string) (string, error)
	Generic(ctx context.Context, employee string) (string, error)
}

type Service struct {
	gateway  Gateway
	salaries SalaryGateway
	lists    *cache.Cache[[]string]
	rates    *cache.Cache[[]model.OperationRate]
	salary   *cache.Cache[string]
	log      zerolog.Logger

	mu        sync.RWMutex
	rateIndex map[string]model.OperationRate
	keysByOp  map[string][]string
}

func NewService(gateway Gateway, salaries SalaryGateway, durable cache.DurableStore, log zerolog.Logger) *Service {
	return &Service{
		gateway:  gateway,
		salaries: salaries,
		lists:    cache.New[[]string](cache.KindDictionary, durable, log),
		rates:    cache.New[[]model.OperationRate](cache.KindDictionary, durable, log),
		salary:   cache.New[string](cache.KindSalary, durable, log),
		log:      log.With().Str("component", "dictionary").Logger(),
	}
}

// LoadList returns one reference dictionary in display order. Cache first;
// on a miss the sheet service; on a network failure whatever stale copy
// exists, because an old dropdown beats an empty one.
func (s *Service) LoadList(ctx context.Context, kind v1.ListKind) ([]string, error) {
	key := string(kind)
	if items, ok := s.lists.Get(key); ok {
		return items, nil
	}

	items, err := s.gateway.List(ctx, kind)
	if err != nil {
		if stale, ok := s.lists.GetStale(key); ok {
			s.log.Warn().Err(err).Str("list", key).Msg("dictionary fetch failed, serving stale copy")
			return stale, nil
		}
		return nil, err
	}

	items = utils.Unique(items)
	SortNatural(items)
	s.lists.Put(key, items)
	return items, nil
}

// LoadRates returns the rate table, refreshing the lookup index alongside.
func (s *Service) LoadRates(ctx context.Context) ([]model.OperationRate, error) {
	if rates, ok := s.rates.Get(ratesKey); ok {
		s.ensureIndex(rates)
		return rates, nil
	}

	rates, err := s.gateway.Rates(ctx)
	if err != nil {
		if stale, ok := s.rates.GetStale(ratesKey); ok {
			s.log.Warn().Err(err).Msg("rate table fetch failed, serving stale copy")
			s.ensureIndex(stale)
			return stale, nil
		}
		return nil, err
	}

	s.rates.Put(ratesKey, rates)
	s.rebuildIndex(rates)
	return rates, nil
}

// RateFor looks up the rate row for an (operation, key) pair. LoadRates must
// have succeeded at least once; otherwise every lookup misses.
func (s *Service) RateFor(operation, key string) (model.OperationRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.rateIndex[indexKey(operation, key)]
	return rate, ok
}

// KeysFor returns the volume/set keys the rate table knows for an
// operation, in display order. The dependent dropdown on the entry form is
// filled from this.
func (s *Service) KeysFor(operation string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keysByOp[strings.TrimSpace(operation)]
}

// NormPerHour returns the hourly norm for an (operation, key) pair, zero
// when unknown.
func (s *Service) NormPerHour(operation, key string) float64 {
	rate, ok := s.RateFor(operation, key)
	if !ok {
		return 0
	}
	return rate.NormPerHour
}

// LoadSalary resolves an employee's base salary for a shift. Tiers: fresh
// cache, the byShift endpoint, the generic endpoint, then any stale cached
// value. Exhausting all tiers yields an empty string, never an error, since
// the salary block is decorative on most screens.
func (s *Service) LoadSalary(ctx context.Context, employee, shift string) string {
	key := employee + "|" + shift
	if salary, ok := s.salary.Get(key); ok {
		return salary
	}

	salary, err := s.salaries.ByShift(ctx, employee, shift)
	if err != nil {
		s.log.Debug().Err(err).Str("employee", employee).Msg("byShift salary lookup failed, trying generic")
		salary, err = s.salaries.Generic(ctx, employee)
	}
	if err == nil && salary != "" {
		s.salary.Put(key, salary)
		return salary
	}

	if stale, ok := s.salary.GetStale(key); ok {
		s.log.Warn().Str("employee", employee).Msg("salary endpoints failed, serving stale value")
		return stale
	}
	return ""
}

// InvalidateAll drops every cached dictionary and salary value. The admin
// refresh action calls this before re-reading.
func (s *Service) InvalidateAll() {
	s.lists.InvalidateAll()
	s.rates.InvalidateAll()
	s.salary.InvalidateAll()
	s.mu.Lock()
	s.rateIndex = nil
	s.keysByOp = nil
	s.mu.Unlock()
}

func (s *Service) ensureIndex(rates []model.OperationRate) {
	s.mu.RLock()
	built := s.rateIndex != nil
	s.mu.RUnlock()
	if !built {
		s.rebuildIndex(rates)
	}
}

// rebuildIndex maps operation|key to its rate row and collects the sorted
// unique keys per operation. The synthetic base-rate rows are not operations
// and stay out of both.
func (s *Service) rebuildIndex(rates []model.OperationRate) {
	index := make(map[string]model.OperationRate, len(rates))
	keysByOp := make(map[string][]string)
	for _, rate := range rates {
		if rate.Operation == model.RateRowOutsourcing || rate.Operation == model.RateRowStaff {
			continue
		}
		op := strings.TrimSpace(rate.Operation)
		index[indexKey(rate.Operation, rate.Key)] = rate
		if key := strings.TrimSpace(rate.Key); key != "" {
			keysByOp[op] = append(keysByOp[op], key)
		}
	}
	for op, keys := range keysByOp {
		keys = utils.Unique(keys)
		SortNatural(keys)
		keysByOp[op] = keys
	}
	s.mu.Lock()
	s.rateIndex = index
	s.keysByOp = keysByOp
	s.mu.Unlock()
}

func indexKey(operation, key string) string {
	return strings.TrimSpace(operation) + "|" + strings.TrimSpace(key)
}
