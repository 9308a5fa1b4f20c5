package mup

import (
	"github.com/born-ml/born-mup/internal/serialization"
	"github.com/born-ml/born-mup/internal/tree"
	"github.com/pkg/errors"
)

// Save writes params together with the recorded multipliers to a .born file.
func (m *Mup) Save(path string, params tree.Tree, modelType string) error {
	if m.lrs.Len() == 0 {
		return ErrEmptyRegistry
	}
	err := serialization.Save(path, params, serialization.Header{
		ModelType: modelType,
		Mup:       m.Meta(),
	})
	return errors.Wrapf(err, "saving %s", path)
}

// Meta returns the recorded multipliers in checkpoint form.
func (m *Mup) Meta() *serialization.MupMeta {
	meta := &serialization.MupMeta{
		LearningRates: tree.Map(m.lrs.entries, func(_, _ string, lr LR) serialization.LRMeta {
			return serialization.LRMeta{SGD: lr.SGD, Adam: lr.Adam}
		}),
	}
	if len(m.readoutMults) > 0 {
		meta.ReadoutMults = m.ReadoutMults()
	}
	return meta
}

// Restore fills the registries of a fresh Mup from a checkpoint.
//
// A restored Mup behaves as if it had run the initialization session itself:
// its getter divides readout values and WrapOptimizer scales updates, while a
// further session is rejected with ErrSessionReuse.
func (m *Mup) Restore(meta *serialization.MupMeta) error {
	if meta == nil {
		return ErrNoMupMeta
	}
	if m.active {
		return ErrSessionActive
	}
	if m.lrs.Len() > 0 {
		return ErrSessionReuse
	}

	meta.LearningRates.Walk(func(parent, name string, lr serialization.LRMeta) {
		m.setLRs(parent, name, LR{SGD: lr.SGD, Adam: lr.Adam})
	})
	for parent, mult := range meta.ReadoutMults {
		m.readoutMults[parent] = mult
	}
	m.logger.Info("mup multipliers restored", "params", m.lrs.Len(), "readouts", len(m.readoutMults))
	return nil
}

// Load reads a checkpoint written by Save and returns its parameters with a
// Mup holding the saved multipliers.
func Load(path string, opts ...Option) (*Mup, tree.Tree, error) {
	f, err := serialization.Load(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	m := New(opts...)
	if err := m.Restore(f.Header.Mup); err != nil {
		return nil, nil, errors.Wrapf(err, "loading %s", path)
	}
	return m, f.Params, nil
}

// LoadBaseShapes reads the parameter shapes of a .born file without loading
// its tensor data.
func LoadBaseShapes(path string) (BaseShapes, error) {
	f, err := serialization.LoadWithOptions(path, serialization.ReaderOptions{HeaderOnly: true})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	shapes, err := f.Header.Shapes()
	return shapes, errors.WithStack(err)
}
