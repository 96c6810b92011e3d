package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todofy/todofy/internal/todo"
)

// MemoryRepository is an in-memory todo.Repository used by unit tests. It
// mirrors the Mongo repository's contract, including owner scoping and
// createdAt-descending list order.
type MemoryRepository struct {
	mu    sync.RWMutex
	seq   int64
	store map[primitive.ObjectID]*memEntry
}

type memEntry struct {
	rec todo.Record
	seq int64
}

var _ todo.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*memEntry)}
}

// touch returns a timestamp strictly after prev so repeated mutations always
// advance updatedAt.
func touch(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (m *MemoryRepository) Create(ctx context.Context, ownerID, title, description string) (*todo.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	rec := todo.Record{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.seq++
	m.store[rec.ID] = &memEntry{rec: rec, seq: m.seq}
	out := rec
	return &out, nil
}

func (m *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]todo.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := []*memEntry{}
	for _, e := range m.store {
		if e.rec.OwnerID == ownerID {
			entries = append(entries, e)
		}
	}
	// createdAt descending; insertion order breaks ties
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].rec.CreatedAt.Equal(entries[j].rec.CreatedAt) {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].rec.CreatedAt.After(entries[j].rec.CreatedAt)
	})
	out := make([]todo.Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.rec)
	}
	return out, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID, ownerID string) (*todo.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[id]
	if !ok || e.rec.OwnerID != ownerID {
		return nil, nil
	}
	out := e.rec
	return &out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id primitive.ObjectID, ownerID string, in todo.UpdateInput) (*todo.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok || e.rec.OwnerID != ownerID {
		return nil, nil
	}
	if in.Title != nil {
		e.rec.Title = *in.Title
	}
	if in.Description != nil {
		e.rec.Description = *in.Description
	}
	if in.Completed != nil {
		e.rec.Completed = *in.Completed
	}
	e.rec.UpdatedAt = touch(e.rec.UpdatedAt)
	out := e.rec
	return &out, nil
}

func (m *MemoryRepository) ToggleCompletion(ctx context.Context, id primitive.ObjectID, ownerID string) (*todo.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok || e.rec.OwnerID != ownerID {
		return nil, nil
	}
	e.rec.Completed = !e.rec.Completed
	e.rec.UpdatedAt = touch(e.rec.UpdatedAt)
	out := e.rec
	return &out, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok || e.rec.OwnerID != ownerID {
		return false, nil
	}
	delete(m.store, id)
	return true, nil
}

func (m *MemoryRepository) DeleteAllCompleted(ctx context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.store {
		if e.rec.OwnerID == ownerID && e.rec.Completed {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}
