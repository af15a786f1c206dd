package refresh

import (
	"sync"

	"github.com/okian/encore/internal/domain/model"
)

// Inflight guards against two workers reloading the same table at once.
// Duplicate jobs are skipped, not queued behind the running one; a
// subsequent manual or scheduled refresh picks up any missed update.
type Inflight struct {
	mu     sync.Mutex
	active map[model.TableName]bool
}

// NewInflight creates an empty guard.
func NewInflight() *Inflight {
	return &Inflight{active: make(map[model.TableName]bool)}
}

// Begin marks the table as reloading. Returns false when a reload is
// already running for it.
func (f *Inflight) Begin(table model.TableName) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active[table] {
		return false
	}
	f.active[table] = true
	return true
}

// End clears the reloading mark for the table.
func (f *Inflight) End(table model.TableName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, table)
}
