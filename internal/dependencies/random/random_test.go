package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededRandomIsDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(10), b.Intn(10))
	}
}

func TestIntnStaysInRange(t *testing.T) {
	sources := []Random{New(), NewSeeded(7)}
	for _, r := range sources {
		for i := 0; i < 200; i++ {
			v := r.Intn(6)
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, 6)
		}
		assert.Equal(t, 0, r.Intn(0))
		assert.Equal(t, 0, r.Intn(-3))
	}
}
