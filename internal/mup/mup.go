// Package mup implements maximal update parametrization (muP) bookkeeping.
//
// A Mup tracks, for one model, the learning-rate multipliers of every
// parameter and the output multiplier of every readout layer. It derives them
// during an initialization pass from the ratio between each parameter's shape
// and its shape in a smaller base model:
//
//	tracker := mup.New()
//	model := tracker.Transform(forward)
//
//	var params tree.Tree
//	err := tracker.InitContext(mup.Shapes(baseParams), func() (err error) {
//	    params, err = model.Init(seed, x)
//	    return err
//	})
//
//	tx, err := tracker.WrapOptimizer(optim.Adam(optim.AdamConfig{LR: 1e-3}), true)
//
// A Mup is not safe for concurrent use.
package mup

import (
	"log/slog"
)

// Mup owns the base shapes of an active session and the registries it fills.
type Mup struct {
	baseShapes BaseShapes
	active     bool

	lrs          *Registry
	readoutMults ReadoutMults

	logger *slog.Logger
}

// Option configures a Mup.
type Option func(*Mup)

// WithLogger sets the logger used for session and registry events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mup) {
		m.logger = logger
	}
}

// New creates a Mup with empty registries.
func New(opts ...Option) *Mup {
	m := &Mup{
		lrs:          NewRegistry(),
		readoutMults: ReadoutMults{},
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enter opens the initialization session with base shapes.
//
// exit must be called on every path; it ends the session but keeps the
// registries. Entering fails with ErrSessionReuse once any learning rate has
// been recorded and with ErrSessionActive while a session is open.
func (m *Mup) Enter(base BaseShapes) (exit func(), err error) {
	if m.active {
		return nil, ErrSessionActive
	}
	if m.lrs.Len() > 0 {
		return nil, ErrSessionReuse
	}

	m.baseShapes = base
	m.active = true
	m.logger.Info("mup session opened", "scopes", len(base))

	done := false
	return func() {
		if done {
			return
		}
		done = true
		m.active = false
		m.baseShapes = nil
		m.logger.Info("mup session closed", "params", m.lrs.Len(), "readouts", len(m.readoutMults))
	}, nil
}

// InitContext runs fn inside a session opened with base shapes.
//
// The session is closed when fn returns or panics.
func (m *Mup) InitContext(base BaseShapes, fn func() error) error {
	exit, err := m.Enter(base)
	if err != nil {
		return err
	}
	defer exit()

	return fn()
}

// Active reports whether an initialization session is open.
func (m *Mup) Active() bool {
	return m.active
}

// LearningRates returns the learning-rate registry.
func (m *Mup) LearningRates() *Registry {
	return m.lrs
}

// ReadoutMult returns the multiplier recorded for a readout scope.
func (m *Mup) ReadoutMult(parent string) (float64, bool) {
	return m.readoutMults.Get(parent)
}

// ReadoutMults returns a copy of every recorded readout multiplier.
func (m *Mup) ReadoutMults() ReadoutMults {
	out := make(ReadoutMults, len(m.readoutMults))
	for k, v := range m.readoutMults {
		out[k] = v
	}
	return out
}

func (m *Mup) setLRs(parent, name string, lr LR) {
	m.lrs.Set(parent, name, lr.SGD, lr.Adam)
	m.logger.Debug("mup learning rates", "scope", parent, "param", name, "sgd", lr.SGD, "adam", lr.Adam)
}
