// Package settings manages the admin flag set: a fail-closed snapshot kept in
// sync with the sheet service and broadcast to sibling instances on change.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"packtrack.app/packtrack/core/cache"
	"packtrack.app/packtrack/core/model"
	"packtrack.app/packtrack/notify"
)

const (
	cacheKey = "admin"

	// updatedAtKey is the durable marker bumped on every applied change, so
	// an instance coming up can tell how old its settings snapshot is.
	updatedAtKey = "settings_adminSettingsUpdated"

	// DefaultSyncInterval is how often the store re-reads the flags from the
	// sheet service while running.
	DefaultSyncInterval = 15 * time.Second
)

// Gateway is the slice of the sheet client the store needs.
type Gateway interface {
	Get(ctx context.Context) (map[string]bool, error)
	UpdateAll(ctx context.Context, settings model.AdminSettings) error
	UpdateOne(ctx context.Context, key string, value bool) error
}

// Store holds the current admin flags. The zero snapshot is all-false, so a
// cold start with no cache and no network denies every guarded action.
type Store struct {
	gateway  Gateway
	cache    *cache.Cache[model.AdminSettings]
	durable  cache.DurableStore
	notifier notify.Notifier
	log      zerolog.Logger
	interval time.Duration

	mu      sync.RWMutex
	current model.AdminSettings

	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewStore(gateway Gateway, durable cache.DurableStore, notifier notify.Notifier, log zerolog.Logger) *Store {
	return &Store{
		gateway:  gateway,
		cache:    cache.New[model.AdminSettings](cache.KindSettings, durable, log),
		durable:  durable,
		notifier: notifier,
		log:      log.With().Str("component", "settings").Logger(),
		interval: DefaultSyncInterval,
	}
}

// WithSyncInterval overrides the periodic sync interval. Tests shorten it.
func (s *Store) WithSyncInterval(d time.Duration) *Store {
	s.interval = d
	return s
}

// Current returns the flag snapshot. Always safe to call; before any
// successful load it is the all-false default.
func (s *Store) Current() model.AdminSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// InitFromCache hydrates the snapshot from the durable mirror so that flags
// are available before the first network round trip. Age is ignored here:
// a stale snapshot still beats the all-false default, and the periodic sync
// corrects it shortly after startup.
func (s *Store) InitFromCache() bool {
	cached, ok := s.cache.GetStale(cacheKey)
	if !ok {
		return false
	}
	s.mu.Lock()
	s.current = cached
	s.mu.Unlock()
	s.log.Debug().Msg("admin settings hydrated from cache")
	return true
}

// RefreshFromServer re-reads the flags from the sheet service and applies
// them. Keys absent from the response keep their current value. Returns the
// resulting snapshot; on error the previous snapshot stays in effect.
func (s *Store) RefreshFromServer(ctx context.Context) (model.AdminSettings, error) {
	if !s.cache.TryBeginFetch() {
		return s.Current(), nil
	}
	defer s.cache.EndFetch()

	flags, err := s.gateway.Get(ctx)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	previous := s.current
	s.current = s.current.Merge(flags)
	updated := s.current
	s.mu.Unlock()

	s.cache.Put(cacheKey, updated)
	if updated != previous {
		s.log.Info().Interface("settings", updated.Map()).Msg("admin settings changed")
		s.touchUpdatedAt()
		s.broadcast(updated)
	}
	return updated, nil
}

// LastUpdated returns when the flags last changed, zero when unknown.
func (s *Store) LastUpdated() time.Time {
	if s.durable == nil {
		return time.Time{}
	}
	raw, err := s.durable.Get(updatedAtKey)
	if err != nil {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

func (s *Store) touchUpdatedAt() {
	if s.durable == nil {
		return
	}
	value := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := s.durable.Put(updatedAtKey, []byte(value)); err != nil {
		s.log.Warn().Err(err).Msg("settings change marker write failed")
	}
}

// Save writes desired to the sheet service. It tries the combined update
// first and falls back to per-flag writes for the flags that differ from the
// current snapshot. Flags written successfully are applied locally even when
// others fail, and the error names the flags left unwritten.
func (s *Store) Save(ctx context.Context, desired model.AdminSettings) error {
	previous := s.Current()

	err := s.gateway.UpdateAll(ctx, desired)
	if err == nil {
		s.apply(desired, previous)
		return nil
	}
	s.log.Warn().Err(err).Msg("combined settings update failed, falling back to per-flag writes")

	applied := previous
	var failed []string
	for key, want := range desired.Map() {
		if previous.Map()[key] == want {
			continue
		}
		if err := s.gateway.UpdateOne(ctx, key, want); err != nil {
			s.log.Warn().Err(err).Str("flag", key).Msg("per-flag settings write failed")
			failed = append(failed, key)
			continue
		}
		applied = applied.Merge(map[string]bool{key: want})
	}

	s.apply(applied, previous)
	if len(failed) > 0 {
		return fmt.Errorf("settings partially saved, failed flags: %s", strings.Join(failed, ", "))
	}
	return nil
}

// StartPeriodicSync launches the background sync loop and the listener for
// change signals from sibling instances.
func (s *Store) StartPeriodicSync(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RefreshFromServer(ctx); err != nil {
					s.log.Warn().Err(err).Msg("periodic settings sync failed")
				}
			}
		}
	}()

	if s.notifier == nil {
		return
	}
	signals, err := s.notifier.Subscribe(ctx, notify.TopicSettingsUpdated)
	if err != nil {
		s.log.Warn().Err(err).Msg("settings change subscription failed, relying on periodic sync only")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for payload := range signals {
			var incoming model.AdminSettings
			if err := json.Unmarshal(payload, &incoming); err != nil {
				s.log.Warn().Err(err).Msg("ignoring malformed settings change signal")
				continue
			}
			s.mu.Lock()
			changed := incoming != s.current
			s.current = incoming
			s.mu.Unlock()
			if changed {
				s.cache.Put(cacheKey, incoming)
				s.log.Debug().Msg("admin settings applied from change signal")
			}
		}
	}()
}

// Stop halts the sync loop and waits for it to exit.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
	})
}

func (s *Store) apply(updated, previous model.AdminSettings) {
	s.mu.Lock()
	s.current = updated
	s.mu.Unlock()

	s.cache.Put(cacheKey, updated)
	if updated != previous {
		s.touchUpdatedAt()
		s.broadcast(updated)
	}
}

func (s *Store) broadcast(updated model.AdminSettings) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(updated)
	if err != nil {
		return
	}
	if err := s.notifier.Publish(notify.TopicSettingsUpdated, payload); err != nil {
		s.log.Warn().Err(err).Msg("settings change broadcast failed")
	}
}

// EffectivePayType derives the pay type shown on a record. Outsourced
// employees are always on piecework; staff are on piecework unless the
// force_deal_paytype flag switches them to salary plus piecework.
func EffectivePayType(employeeStatus string, flags model.AdminSettings) string {
	if employeeStatus == model.StatusOutsourcing {
		return model.PayTypeDeal
	}
	if flags.ForceDealPaytype {
		return model.PayTypeSalaryDeal
	}
	return model.PayTypeDeal
}
