// Package repository holds the in-memory ranked table store.
//
// Each named table lives in its own atomic slot. A load replaces the
// slot's table wholesale, so concurrent readers observe either the
// previous table or the new one, never a partially written state.
// Tables are immutable once published.
package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/pkg/metrics"
)

// Table is one loaded recommendation table. It is never mutated after
// construction; a reload publishes a fresh Table into the slot.
type Table struct {
	name     model.TableName
	rows     []model.Row
	users    map[int64][]int32 // row indices per user, in table order
	loadedAt time.Time
}

// TableInfo describes a loaded table for the stats surface.
type TableInfo struct {
	Name     model.TableName `json:"name"`
	Rows     int             `json:"rows"`
	Users    int             `json:"users"`
	LoadedAt time.Time       `json:"loaded_at"`
}

// TableStore keeps the three recommendation tables, each behind an
// atomic pointer. Any subset of tables may be loaded at a given time.
type TableStore struct {
	slots map[model.TableName]*atomic.Pointer[Table]
}

// NewTableStore creates an empty store with a slot per known table.
func NewTableStore(_ context.Context) *TableStore {
	slots := make(map[model.TableName]*atomic.Pointer[Table], len(model.AllTables()))
	for _, name := range model.AllTables() {
		slots[name] = &atomic.Pointer[Table]{}
	}
	return &TableStore{slots: slots}
}

// Replace atomically swaps the named table for a new one built from
// rows. The row order of the artifact is preserved, including duplicate
// track ids. Returns ErrUnknownTable for names outside the known set.
func (s *TableStore) Replace(ctx context.Context, name model.TableName, rows []model.Row) error {
	slot, ok := s.slots[name]
	if !ok {
		return ErrUnknownTable
	}

	t := &Table{
		name:     name,
		rows:     rows,
		loadedAt: time.Now(),
	}
	if name.UserIndexed() {
		t.users = make(map[int64][]int32)
		for i, row := range rows {
			t.users[row.UserID] = append(t.users[row.UserID], int32(i))
		}
	}

	slot.Store(t)
	metrics.UpdateTableRows(string(name), len(rows))
	metrics.UpdateTableLoadedUnix(string(name), t.loadedAt.Unix())
	return nil
}

// UserRows returns the rows of a user-indexed table matching userID, in
// table order. An absent user or table yields an empty slice.
func (s *TableStore) UserRows(ctx context.Context, name model.TableName, userID int64) []model.Row {
	t := s.load(name)
	if t == nil || t.users == nil {
		return nil
	}
	idx := t.users[userID]
	if len(idx) == 0 {
		return nil
	}
	rows := make([]model.Row, len(idx))
	for i, j := range idx {
		rows[i] = t.rows[j]
	}
	return rows
}

// GlobalRows returns every row of the named table in table order, or an
// empty slice when the table is not loaded.
func (s *TableStore) GlobalRows(ctx context.Context, name model.TableName) []model.Row {
	t := s.load(name)
	if t == nil {
		return nil
	}
	return t.rows
}

// Loaded reports whether the named table has been loaded.
func (s *TableStore) Loaded(ctx context.Context, name model.TableName) bool {
	return s.load(name) != nil
}

// Stats describes the loaded tables in tier-priority order. Unloaded
// tables are omitted.
func (s *TableStore) Stats(ctx context.Context) []TableInfo {
	infos := make([]TableInfo, 0, len(s.slots))
	for _, name := range model.AllTables() {
		t := s.load(name)
		if t == nil {
			continue
		}
		infos = append(infos, TableInfo{
			Name:     t.name,
			Rows:     len(t.rows),
			Users:    len(t.users),
			LoadedAt: t.loadedAt,
		})
	}
	return infos
}

func (s *TableStore) load(name model.TableName) *Table {
	slot, ok := s.slots[name]
	if !ok {
		return nil
	}
	return slot.Load()
}
