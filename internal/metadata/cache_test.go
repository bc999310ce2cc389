package metadata

import (
	"context"
	"errors"
	"testing"
)

type memStore struct {
	rows    map[string]Entry
	deleted []string
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]Entry)}
}

func (m *memStore) PutMetadata(ctx context.Context, e Entry) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.rows[e.Path] = e
	return nil
}

func (m *memStore) GetMetadata(ctx context.Context, path string) (*Entry, error) {
	e, ok := m.rows[path]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memStore) DeleteMetadata(ctx context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	delete(m.rows, path)
	return nil
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache(nil, nil)
	ctx := context.Background()

	c.Put(ctx, Entry{Path: "/p/media/a.mp4", Duration: 4.5})

	got, ok := c.Get(ctx, "/p/media/a.mp4")
	if !ok {
		t.Fatal("Get() missed a stored entry")
	}
	if got.Duration != 4.5 {
		t.Errorf("Duration = %v, want 4.5", got.Duration)
	}
	if got.ProbedAt.IsZero() {
		t.Error("ProbedAt not stamped")
	}
}

func TestCache_PurgeIsIdempotent(t *testing.T) {
	c := NewCache(nil, nil)
	ctx := context.Background()

	c.Put(ctx, Entry{Path: "/a.tsx"})
	c.Put(ctx, Entry{Path: "/shared.bundle.js"})
	c.Put(ctx, Entry{Path: "/keep.mp4"})

	c.Purge(ctx, "/a.tsx", "/shared.bundle.js")
	c.Purge(ctx, "/shared.bundle.js")
	c.Purge(ctx, "/never-existed")

	if c.Has("/a.tsx") || c.Has("/shared.bundle.js") {
		t.Error("purged entries still present")
	}
	if !c.Has("/keep.mp4") {
		t.Error("unrelated entry purged")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_StoreFallbackAndPurge(t *testing.T) {
	store := newMemStore()
	store.rows["/warm.mp4"] = Entry{Path: "/warm.mp4", Duration: 9}
	c := NewCache(store, nil)
	ctx := context.Background()

	got, ok := c.Get(ctx, "/warm.mp4")
	if !ok || got.Duration != 9 {
		t.Fatalf("Get() = %+v, %v; want store-backed entry", got, ok)
	}
	if !c.Has("/warm.mp4") {
		t.Error("store hit not promoted into memory")
	}

	c.Purge(ctx, "/warm.mp4")
	if _, ok := c.Get(ctx, "/warm.mp4"); ok {
		t.Error("entry survived purge in store")
	}
	if len(store.deleted) != 1 || store.deleted[0] != "/warm.mp4" {
		t.Errorf("store deletes = %v", store.deleted)
	}
}

func TestCache_StoreWriteFailureKeepsMemory(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("disk full")
	c := NewCache(store, nil)

	c.Put(context.Background(), Entry{Path: "/a.mp4"})
	if !c.Has("/a.mp4") {
		t.Error("memory entry dropped after store failure")
	}
}
