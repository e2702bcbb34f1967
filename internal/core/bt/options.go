package bt

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/observability/log"
)

type TreeOption func(*Tree)

// WithID overrides the generated tree id reported in transitions.
func WithID(id string) TreeOption {
	return func(t *Tree) { t.id = id }
}

func WithLogger(logger log.Log) TreeOption {
	return func(t *Tree) { t.logger = logger }
}

func WithObserver(observer Observer) TreeOption {
	return func(t *Tree) { t.observer = observer }
}

// WithRandSource sets the factory used by random selectors. It is called once
// per shuffle.
func WithRandSource(source func() *rand.Rand) TreeOption {
	return func(t *Tree) { t.randSource = source }
}

// SeededRandSource returns a deterministic factory: every call yields the next
// generator of a PCG sequence rooted at seed.
func SeededRandSource(seed uint64) func() *rand.Rand {
	parent := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(parent.Uint64(), parent.Uint64()))
	}
}

func defaultRandSource() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (t *Tree) applyDefaults() {
	if t.id == "" {
		t.id = uuid.NewString()
	}
	if t.logger == nil {
		t.logger = log.Provide()
	}
	if t.randSource == nil {
		t.randSource = defaultRandSource
	}
	t.logger = t.logger.With(log.String("tree", t.tmpl.name), log.String("tree_id", t.id))
}
