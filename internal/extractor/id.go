package extractor

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces globally unique record identifiers of the form
// "<prefix>-<uuid>".
//
// Uniqueness already follows from the UUID, but the generator still
// tracks issued ids and regenerates on collision so the guarantee holds
// by construction, not by probability. One generator serves a whole run.
type IDGenerator struct {
	// mu guards used. Check-and-insert is one critical section.
	mu   sync.Mutex
	used map[string]bool
}

// NewIDGenerator creates an empty IDGenerator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{used: make(map[string]bool)}
}

// Generate returns a fresh unique id with the given prefix.
// An empty prefix yields a bare UUID. Safe for concurrent use.
func (g *IDGenerator) Generate(prefix string) string {
	for {
		id := uuid.NewString()
		if prefix != "" {
			id = prefix + "-" + id
		}

		g.mu.Lock()
		if !g.used[id] {
			g.used[id] = true
			g.mu.Unlock()
			return id
		}
		g.mu.Unlock()
	}
}

// Count returns the number of ids issued so far.
func (g *IDGenerator) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.used)
}
