package trader

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// LifecycleState tracks which strategies occupy which slots: a single
// exclusive slot plus independent named slots. It lives inside the Manager
// rather than as package state.
type LifecycleState struct {
	exclusiveKind Kind
	exclusive     Strategy
	named         map[Kind]Strategy
}

// Status is a point-in-time report of the lifecycle state.
type Status struct {
	Running     bool     `json:"running"`
	Exclusive   string   `json:"exclusive,omitempty"`
	Named       []string `json:"named,omitempty"`
	ResultCount int      `json:"result_count"`
}

// Manager owns the strategy lifecycle: instantiation with merged defaults,
// slot tracking, and teardown.
type Manager struct {
	mu     sync.Mutex
	logger *zap.Logger
	sctx   StrategyContext
	state  LifecycleState
}

// NewManager creates a lifecycle manager over the shared strategy context.
func NewManager(sctx StrategyContext) *Manager {
	return &Manager{
		logger: sctx.Logger.Named("lifecycle"),
		sctx:   sctx,
		state:  LifecycleState{named: make(map[Kind]Strategy)},
	}
}

// Start instantiates and launches a strategy of the given kind. Unknown
// kinds fail before any state is mutated. Starting an exclusive strategy
// stops the current exclusive occupant first; starting an already-running
// named-slot strategy is a logged no-op.
func (m *Manager) Start(ctx context.Context, kind Kind, ov Overrides) error {
	f, ok := registry[kind]
	if !ok {
		return fmt.Errorf("unknown strategy %q", kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !f.exclusive {
		if _, running := m.state.named[kind]; running {
			m.logger.Warn("Strategy already running, ignoring start", zap.String("strategy", string(kind)))
			return nil
		}
	}

	if f.exclusive && m.state.exclusive != nil {
		m.logger.Info("Replacing running exclusive strategy",
			zap.String("old", string(m.state.exclusiveKind)),
			zap.String("new", string(kind)),
		)
		m.state.exclusive.Stop()
		m.state.exclusive = nil
		m.state.exclusiveKind = ""
	}

	strategy := f.build(m.sctx, ov)
	if err := strategy.Start(ctx); err != nil {
		return fmt.Errorf("failed to start strategy %q: %w", kind, err)
	}

	if f.exclusive {
		m.state.exclusive = strategy
		m.state.exclusiveKind = kind
	} else {
		m.state.named[kind] = strategy
	}
	m.logger.Info("Strategy started", zap.String("strategy", string(kind)), zap.Bool("exclusive", f.exclusive))
	return nil
}

// Stop halts one strategy by kind. Nothing running under that kind is a
// non-error outcome.
func (m *Manager) Stop(kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.exclusiveKind == kind && m.state.exclusive != nil {
		m.state.exclusive.Stop()
		m.state.exclusive = nil
		m.state.exclusiveKind = ""
		m.logger.Info("Exclusive strategy stopped", zap.String("strategy", string(kind)))
		return
	}
	if s, ok := m.state.named[kind]; ok {
		s.Stop()
		delete(m.state.named, kind)
		m.logger.Info("Named strategy stopped", zap.String("strategy", string(kind)))
		return
	}
	m.logger.Info("Nothing to stop", zap.String("strategy", string(kind)))
}

// StopAll tears down every running strategy.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.exclusive != nil {
		m.state.exclusive.Stop()
		m.state.exclusive = nil
		m.state.exclusiveKind = ""
	}
	for kind, s := range m.state.named {
		s.Stop()
		delete(m.state.named, kind)
	}
	m.logger.Info("All strategies stopped")
}

// Status reports what is running and how many results have accumulated.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{ResultCount: m.sctx.Results.Len()}
	if m.state.exclusive != nil {
		status.Running = true
		status.Exclusive = string(m.state.exclusiveKind)
	}
	for kind := range m.state.named {
		status.Running = true
		status.Named = append(status.Named, string(kind))
	}
	return status
}
