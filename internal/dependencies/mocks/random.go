package mocks

import (
	"sync"

	"github.com/mcoot/battleship/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued values are consumed in order; once a queue is empty the
// fallback source is used, or zero if there is none.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	intnIndex   int

	fallback random.Random
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.intnResults) {
		if r.fallback != nil {
			return r.fallback.Intn(n)
		}
		return 0
	}
	result := r.intnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// SetFallback sets the source used once the queue runs dry
func (r *MockRandom) SetFallback(fallback random.Random) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fallback
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.intnIndex = 0
}
