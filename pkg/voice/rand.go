package voice

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness source for phrase pools. It is injectable so tests
// can pin selection.
type Rand interface {
	Intn(n int) int
}

// lockedRand wraps math/rand for concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand() *lockedRand {
	return &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// pick selects one phrase from a non-empty pool.
func pick(r Rand, pool []string) string {
	if len(pool) == 1 {
		return pool[0]
	}
	return pool[r.Intn(len(pool))]
}
