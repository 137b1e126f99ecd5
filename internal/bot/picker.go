package bot

import (
	"math/rand/v2"
	"sync"

	"speechmeme/internal/core"
)

// Picker selects one item uniformly at random.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker returns a Picker seeded from the runtime's random source.
func NewPicker() *Picker {
	//nolint:gosec // G404: selection does not need a cryptographic source
	return &Picker{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededPicker returns a Picker whose sequence is reproducible.
func NewSeededPicker(seed uint64) *Picker {
	return &Picker{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Pick returns a random item, or false if items is empty.
func (p *Picker) Pick(items []core.Item) (core.Item, bool) {
	if len(items) == 0 {
		return core.Item{}, false
	}
	p.mu.Lock()
	//nolint:gosec // G404: selection does not need a cryptographic source
	i := p.rng.IntN(len(items))
	p.mu.Unlock()
	return items[i], true
}
