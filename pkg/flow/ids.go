package flow

import (
	"math/rand"
	"strconv"
	"sync"
)

// IDGenerator hands out identifiers for new nodes and edges. kind is "node"
// or "edge" and lets a generator keep separate sequences.
type IDGenerator interface {
	NextID(kind string) string
}

// CounterIDs is a monotonic generator. The zero value starts at 1.
type CounterIDs struct {
	mu   sync.Mutex
	Next int
}

// NewCounterIDs returns a generator whose first id is start.
func NewCounterIDs(start int) *CounterIDs {
	return &CounterIDs{Next: start}
}

// NextID returns the next number in sequence.
func (c *CounterIDs) NextID(kind string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Next <= 0 {
		c.Next = 1
	}
	id := strconv.Itoa(c.Next)
	c.Next++
	return id
}

// RandomIDs generates short random ids from Letters.
type RandomIDs struct {
	Letters   []rune
	MaxDigits int
	Source    *rand.Rand
}

// NextID returns a random sequence of MaxDigits letters.
func (r *RandomIDs) NextID(kind string) string {
	if len(r.Letters) == 0 {
		r.Letters = []rune("abcdefghijklmnopqrstuvwxyz0123456789")
	}
	if r.MaxDigits <= 0 {
		r.MaxDigits = 8
	}
	if r.Source == nil {
		r.Source = rand.New(rand.NewSource(1))
	}
	b := make([]rune, r.MaxDigits)
	for i := range b {
		b[i] = r.Letters[r.Source.Intn(len(r.Letters))]
	}
	return string(b)
}
