// Package stats serves the per-employee daily summary. Snapshots are cached
// per (employee, date) so a repeat view costs nothing, and the neighbouring
// days are preloaded in the background because the screen is navigated with
// previous/next day arrows.
package stats

import (
	"context"

	"github.com/rs/zerolog"
	"packtrack.app/packtrack/core/cache"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/core/settings"
	"packtrack.app/packtrack/tasks"
	"packtrack.app/packtrack/utils"
)

// Gateway is the slice of the sheet client that serves summaries.
type Gateway interface {
	Stats(ctx context.Context, employee, date string) (*model.StatsSnapshot, error)
}

// FlagSource supplies the current admin flags. The pay type shown on a
// summary reflects the flags at view time, never the flags at cache time.
type FlagSource interface {
	Current() model.AdminSettings
}

// View is a snapshot decorated with the values derived at read time.
type View struct {
	model.StatsSnapshot
	PayType   string `json:"payType"`
	FromCache bool   `json:"fromCache"`
}

type Service struct {
	gateway Gateway
	cache   *cache.Cache[model.StatsSnapshot]
	queue   *tasks.Queue
	flags   FlagSource
	log     zerolog.Logger
}

func NewService(gateway Gateway, durable cache.DurableStore, queue *tasks.Queue, flags FlagSource, log zerolog.Logger) *Service {
	return &Service{
		gateway: gateway,
		cache:   cache.New[model.StatsSnapshot](cache.KindStats, durable, log),
		queue:   queue,
		flags:   flags,
		log:     log.With().Str("component", "stats").Logger(),
	}
}

func snapshotKey(employee, date string) string {
	return employee + "|" + date
}

// Get returns the summary for one employee and date, from cache when fresh.
// A cache hit still derives the pay type from the live flags. On a network
// hit the adjacent days are queued for preload.
func (s *Service) Get(ctx context.Context, employee, date, employeeStatus string) (*View, error) {
	key := snapshotKey(employee, date)
	if snapshot, ok := s.cache.Get(key); ok {
		return s.view(snapshot, employeeStatus, true), nil
	}

	snapshot, err := s.gateway.Stats(ctx, employee, date)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, *snapshot)
	s.preloadAdjacent(employee, date)
	return s.view(*snapshot, employeeStatus, false), nil
}

// Invalidate drops the cached snapshot for one employee and date. Mutation
// paths call this before anything else, so a failed refresh can never leave
// a stale summary behind.
func (s *Service) Invalidate(employee, date string) {
	s.cache.Invalidate(snapshotKey(employee, date))
}

// InvalidateAll drops every cached snapshot.
func (s *Service) InvalidateAll() {
	s.cache.InvalidateAll()
}

// Warm reports whether a fresh snapshot is cached for the pair. Exposed for
// the preload path and for tests.
func (s *Service) Warm(employee, date string) bool {
	_, ok := s.cache.Get(snapshotKey(employee, date))
	return ok
}

func (s *Service) view(snapshot model.StatsSnapshot, employeeStatus string, fromCache bool) *View {
	payType := model.PayTypeDeal
	if s.flags != nil {
		payType = settings.EffectivePayType(employeeStatus, s.flags.Current())
	}
	return &View{StatsSnapshot: snapshot, PayType: payType, FromCache: fromCache}
}

// preloadAdjacent queues background fetches for the previous and next day,
// skipping days that are already warm.
func (s *Service) preloadAdjacent(employee, date string) {
	if s.queue == nil {
		return
	}
	day := utils.MustParseDate(date)
	if day.IsZero() {
		return
	}
	for _, offset := range []int{-1, 1} {
		adjacent := utils.ISODate(day.AddDate(0, 0, offset))
		if s.Warm(employee, adjacent) {
			continue
		}
		s.queue.Spawn("stats-preload", func(ctx context.Context) error {
			if s.Warm(employee, adjacent) {
				return nil
			}
			snapshot, err := s.gateway.Stats(ctx, employee, adjacent)
			if err != nil {
				return err
			}
			s.cache.Put(snapshotKey(employee, adjacent), *snapshot)
			return nil
		})
	}
}
