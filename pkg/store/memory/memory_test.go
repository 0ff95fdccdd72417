package memory

import (
	"testing"

	"github.com/novachat/nova/pkg/store"
)

// TestMemoryStoreSuite runs the full store conformance suite against the
// in-memory backend.
func TestMemoryStoreSuite(t *testing.T) {
	suite := &store.TestSuite{
		NewStore: func(t *testing.T) store.Store {
			return NewMemoryStore()
		},
	}
	suite.RunAllTests(t)
}
