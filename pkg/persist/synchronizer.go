// Package persist keeps the in-memory board and a durable medium in step:
// it loads once at startup, saves on a fixed interval and on demand, and
// absorbs every storage failure at its boundary.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rhinspira/hrboard/pkg/blob"
	"github.com/rhinspira/hrboard/pkg/metrics"
	"github.com/rhinspira/hrboard/pkg/store"
)

const (
	// DefaultKey is the storage key the snapshot lives under.
	DefaultKey = "rh_dashboard_data_v1"
	// DefaultInterval is the autosave period.
	DefaultInterval = 60 * time.Second
	// DefaultManualDelay is the pause between a manual save request and the write.
	DefaultManualDelay = 500 * time.Millisecond
)

var ErrAlreadyRunning = errors.New("autosave already running")

// Ticker is the minimal interface needed for driving the autosave loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.ticker.C }
func (t timeTicker) Stop()               { t.ticker.Stop() }

// LoadOutcome says where the initial state came from.
type LoadOutcome string

const (
	LoadRestored   LoadOutcome = "restored"
	LoadSeeded     LoadOutcome = "seeded"
	LoadInvalid    LoadOutcome = "invalid"
	LoadUnreadable LoadOutcome = "unreadable"
)

// ReloadOutcome is the result of re-reading the medium after an external change.
type ReloadOutcome string

const (
	ReloadApplied   ReloadOutcome = "applied"
	ReloadUnchanged ReloadOutcome = "unchanged"
	ReloadConflict  ReloadOutcome = "conflict"
	ReloadInvalid   ReloadOutcome = "invalid"
	ReloadFailed    ReloadOutcome = "failed"
)

// Status is a point-in-time view of the synchronizer.
type Status struct {
	LastFlush time.Time
	Pending   bool
	Running   bool
	LastError error
}

// Synchronizer moves snapshots between the live state and a blob.Store.
type Synchronizer struct {
	medium blob.Store
	source func() store.Snapshot
	sink   func(store.Snapshot)

	logger        zerolog.Logger
	key           string
	interval      time.Duration
	manualDelay   time.Duration
	tickerFactory func(time.Duration) Ticker
	after         func(time.Duration) <-chan time.Time
	now           func() time.Time
	onWarning     func(error)
	hooks         []func(payload string)
	metrics       *metrics.Metrics

	// flushMu serializes writes so the last write always holds the most
	// recently read snapshot.
	flushMu sync.Mutex

	mu          sync.Mutex
	lastFlush   time.Time
	lastErr     error
	lastPayload string // raw stored text, for recognising our own writes
	baseline    string // canonical encoding of the last stored state
	pending     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// Option customizes synchronizer behavior.
type Option func(*Synchronizer)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Synchronizer) { s.key = key }
}

// WithInterval overrides the autosave period.
func WithInterval(d time.Duration) Option {
	return func(s *Synchronizer) { s.interval = d }
}

// WithManualDelay overrides the manual save delay.
func WithManualDelay(d time.Duration) Option {
	return func(s *Synchronizer) { s.manualDelay = d }
}

// WithTickerFactory overrides how autosave tickers are created.
func WithTickerFactory(factory func(time.Duration) Ticker) Option {
	return func(s *Synchronizer) { s.tickerFactory = factory }
}

// WithClock overrides the time source used for LastFlush.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Synchronizer) { s.logger = logger }
}

// WithWarningHandler receives every absorbed storage failure.
func WithWarningHandler(fn func(error)) Option {
	return func(s *Synchronizer) { s.onWarning = fn }
}

// WithFlushHook registers a callback run with the payload after each
// successful write. Hooks run synchronously, in registration order.
func WithFlushHook(fn func(payload string)) Option {
	return func(s *Synchronizer) { s.hooks = append(s.hooks, fn) }
}

// WithMetrics records flush and load counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// New constructs a Synchronizer. source is read at flush time and must
// return the live state; sink receives loaded state.
func New(medium blob.Store, source func() store.Snapshot, sink func(store.Snapshot), opts ...Option) *Synchronizer {
	s := &Synchronizer{
		medium:      medium,
		source:      source,
		sink:        sink,
		logger:      zerolog.Nop(),
		key:         DefaultKey,
		interval:    DefaultInterval,
		manualDelay: DefaultManualDelay,
		tickerFactory: func(d time.Duration) Ticker {
			return timeTicker{ticker: time.NewTicker(d)}
		},
		after: time.After,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Synchronizer) Key() string { return s.key }

// Status returns the current save indicator state.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		LastFlush: s.lastFlush,
		Pending:   s.pending,
		Running:   s.cancel != nil,
		LastError: s.lastErr,
	}
}

func (s *Synchronizer) warn(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if s.onWarning != nil {
		s.onWarning(err)
	}
}

// Load reads the stored snapshot once and pushes it to the sink. A missing,
// unreadable, malformed or wrongly shaped payload pushes the seed instead;
// the seed is not written back until the next flush.
func (s *Synchronizer) Load(ctx context.Context) LoadOutcome {
	outcome := s.load(ctx)
	s.metrics.IncLoads(string(outcome))
	return outcome
}

func (s *Synchronizer) load(ctx context.Context) LoadOutcome {
	raw, ok, err := s.medium.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("storage unreadable, starting from seed")
		s.sink(store.Seed())
		return LoadUnreadable
	}
	if !ok {
		s.logger.Info().Str("key", s.key).Msg("nothing stored, starting from seed")
		s.sink(store.Seed())
		return LoadSeeded
	}

	snap, err := store.DecodeSnapshot([]byte(raw))
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("stored snapshot rejected, starting from seed")
		s.sink(store.Seed())
		return LoadInvalid
	}

	s.sink(snap)
	s.mu.Lock()
	s.lastFlush = s.now()
	s.lastPayload = raw
	s.baseline = canonical(snap)
	s.mu.Unlock()
	s.logger.Info().Str("key", s.key).Int("weeks", len(snap.Weeks)).Msg("snapshot restored")
	return LoadRestored
}

// Flush writes the live snapshot now.
func (s *Synchronizer) Flush(ctx context.Context) error {
	return s.flush(ctx, metrics.TriggerDirect)
}

func (s *Synchronizer) flush(ctx context.Context, trigger string) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	start := time.Now()
	payload, err := store.EncodeSnapshot(s.source())
	if err == nil {
		err = s.medium.Set(ctx, s.key, string(payload))
	}
	s.metrics.ObserveFlush(trigger, time.Since(start), len(payload), err)
	if err != nil {
		err = fmt.Errorf("saving %s: %w", s.key, err)
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("flush failed")
		s.warn(err)
		return err
	}

	at := s.now()
	s.mu.Lock()
	s.lastFlush = at
	s.lastErr = nil
	s.lastPayload = string(payload)
	s.baseline = string(payload)
	s.mu.Unlock()
	s.metrics.SetLastFlushTimestamp(at)
	s.logger.Debug().Str("trigger", trigger).Int("bytes", len(payload)).Msg("snapshot flushed")

	for _, hook := range s.hooks {
		hook(string(payload))
	}
	return nil
}

// Start begins autosaving every interval until Stop or ctx is done.
// Ticks that arrive while a flush is running are coalesced by the ticker.
func (s *Synchronizer) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("autosave interval must be greater than zero")
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	ticker := s.tickerFactory(s.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Debug().Msg("autosave stopped")
				return
			case <-ticker.C():
				_ = s.flush(ctx, metrics.TriggerAutosave)
			}
		}
	}()
	s.logger.Debug().Dur("interval", s.interval).Msg("autosave started")
	return nil
}

// Stop ends autosaving and waits for an in-flight flush to finish.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// ManualSave waits the manual delay and then flushes, reading the live
// state after the delay. It returns false without doing anything when a
// manual save is already pending.
func (s *Synchronizer) ManualSave(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return false, nil
	}
	s.pending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return true, ctx.Err()
	case <-s.after(s.manualDelay):
	}
	return true, s.flush(ctx, metrics.TriggerManual)
}

// Reload re-reads the medium after an external change. Our own writes are
// recognised and ignored. A foreign payload replaces the live state only
// when nothing has been edited since the last flush or load.
func (s *Synchronizer) Reload(ctx context.Context) ReloadOutcome {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	raw, ok, err := s.medium.Get(ctx, s.key)
	if err != nil {
		s.warn(fmt.Errorf("reloading %s: %w", s.key, err))
		return ReloadFailed
	}
	s.mu.Lock()
	last, baseline := s.lastPayload, s.baseline
	s.mu.Unlock()
	if !ok || raw == last {
		return ReloadUnchanged
	}

	snap, err := store.DecodeSnapshot([]byte(raw))
	if err != nil {
		s.logger.Warn().Err(err).Msg("external change rejected")
		return ReloadInvalid
	}
	if baseline == "" {
		baseline = canonical(store.Seed())
	}
	current, err := store.EncodeSnapshot(s.source())
	if err != nil || string(current) != baseline {
		s.logger.Warn().Msg("external change ignored, unsaved edits present")
		return ReloadConflict
	}

	s.sink(snap)
	s.mu.Lock()
	s.lastPayload = raw
	s.baseline = canonical(snap)
	s.lastFlush = s.now()
	s.mu.Unlock()
	s.logger.Info().Msg("snapshot reloaded from external change")
	return ReloadApplied
}

// canonical is the encoding a flush would write for snap. Stored text in
// any other layout (indented, other key order) compares equal through it.
func canonical(snap store.Snapshot) string {
	payload, err := store.EncodeSnapshot(snap)
	if err != nil {
		return ""
	}
	return string(payload)
}
