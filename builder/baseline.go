package builder

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Baseline remembers the primitive streams fixed by persistent frames. It is shared by the
// builders of one log and is safe for concurrent use.
type Baseline struct {
	mu      sync.Mutex
	streams map[string]struct{}
}

// NewBaseline returns an empty baseline.
func NewBaseline() *Baseline {
	return &Baseline{streams: map[string]struct{}{}}
}

// Has reports whether stream was fixed by a persistent frame.
func (b *Baseline) Has(stream string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.streams[stream]
	return ok
}

// Streams returns the fixed streams in sorted order.
func (b *Baseline) Streams() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := lo.Keys(b.streams)
	slices.Sort(ids)
	return ids
}

func (b *Baseline) record(streams ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range streams {
		b.streams[s] = struct{}{}
	}
}
