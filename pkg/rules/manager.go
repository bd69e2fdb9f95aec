package rules

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"checkered/cartgate/pkg/admission"
)

// Reload results reported to the Recorder.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Source produces the current rule set, typically by re-reading the
// configuration file.
type Source func() (admission.Rules, error)

// Recorder receives reload metrics.
type Recorder interface {
	RecordRulesReload(result string, generation uint64)
}

// Manager holds the active admission engine.
type Manager struct {
	source   Source
	logger   *slog.Logger
	recorder Recorder

	// reloadMu serializes reloads; readers never take it.
	reloadMu sync.Mutex

	engine     atomic.Pointer[admission.Engine]
	generation atomic.Uint64
	loadedAt   atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRecorder sets the reload metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// NewManager creates a manager and performs the initial load. Unlike later
// reloads, a failed initial load is returned as an error.
func NewManager(source Source, opts ...Option) (*Manager, error) {
	if source == nil {
		return nil, errors.New("rules source cannot be nil")
	}

	m := &Manager{
		source: source,
		logger: slog.Default().With("component", "rules.manager"),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Engine returns the active engine. It is safe for concurrent use.
func (m *Manager) Engine() *admission.Engine {
	return m.engine.Load()
}

// Generation returns the number of successful loads.
func (m *Manager) Generation() uint64 {
	return m.generation.Load()
}

// LoadedAt returns when the active engine was loaded.
func (m *Manager) LoadedAt() time.Time {
	ns := m.loadedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Reload loads the rules again and swaps the engine. On failure the active
// engine is kept and a *ReloadError is returned.
func (m *Manager) Reload() error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	engine, err := m.load()
	if err != nil {
		current := m.generation.Load()
		m.record(ResultFailure, current)
		m.logger.Error("rules reload failed, keeping active rules",
			"generation", current,
			"error", err,
		)
		return &ReloadError{Generation: current, Err: err}
	}

	m.engine.Store(engine)
	m.loadedAt.Store(time.Now().UnixNano())
	generation := m.generation.Add(1)
	m.record(ResultSuccess, generation)

	rules := engine.Rules()
	m.logger.Info("admission rules loaded",
		"generation", generation,
		"max_total_items", rules.MaxTotalItems,
		"premium_ratio", rules.PremiumToFantasyRatio,
		"licensed_ratio", rules.LicensedToFantasyRatio,
		"quantity_cap", rules.NonFantasyQuantityCap,
		"unknown_availability", string(rules.UnknownAvailability),
		"locale", rules.Locale.String(),
	)
	return nil
}

// Check reports whether an engine is loaded. It backs the readiness probe.
func (m *Manager) Check() error {
	if m.Engine() == nil {
		return ErrNoEngine
	}
	return nil
}

func (m *Manager) load() (*admission.Engine, error) {
	rules, err := m.source()
	if err != nil {
		return nil, err
	}
	return admission.NewEngine(rules)
}

func (m *Manager) record(result string, generation uint64) {
	if m.recorder != nil {
		m.recorder.RecordRulesReload(result, generation)
	}
}
