package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrIDsExhausted is returned by FixedGenerator once every token has been used.
var ErrIDsExhausted = errors.New("fixed generator: all ids exhausted")

// IDGenerator produces the identifier assigned to an accepted farm.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (version 4) UUIDs. Safe for concurrent use.
type UUIDGenerator struct{}

// NewID returns a hyphenated UUID string.
func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// FixedGenerator hands out predetermined ids in order, for tests.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator returning ids in the given order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next id or ErrIDsExhausted.
func (g *FixedGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		return "", ErrIDsExhausted
	}
	id := g.ids[g.idx]
	g.idx++
	return id, nil
}
