// Shared scaffolding plus construction and fail-open behavior tests.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mesh-intelligence/chartstore/internal/storage"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// fakeClock is a settable time source so stamps are deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// seqIDs yields doc-001, doc-002, ... so generated ids stay stable.
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("doc-%03d", n)
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	base := []Option{WithClock(clock.Now), WithIDFunc(seqIDs())}
	e, err := New(context.Background(), storage.NewMemory(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, clock
}

func mustCreate(t *testing.T, e *Engine, col string, doc types.Document) types.Document {
	t.Helper()

	created, err := e.Create(context.Background(), col, doc)
	if err != nil {
		t.Fatalf("Create in %s failed: %v", col, err)
	}
	return created
}

func TestReservedCollectionNames(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	for _, col := range []string{"", "_metadata", "_synclog", "_indexes", "index:patients_by_mrn"} {
		if _, err := e.Create(ctx, col, types.Document{"name": "x"}); !errors.Is(err, types.ErrCollectionReserved) {
			t.Errorf("Create(%q): expected ErrCollectionReserved, got %v", col, err)
		}
		if _, err := e.Get(ctx, col, "some-id"); !errors.Is(err, types.ErrCollectionReserved) {
			t.Errorf("Get(%q): expected ErrCollectionReserved, got %v", col, err)
		}
	}
}

func TestCorruptCollectionReadsEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if err := e.adapter.Set(ctx, types.PatientsCollection, []byte("{not json")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	docs, err := e.GetAll(ctx, types.PatientsCollection)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected corrupt collection to read empty, got %d docs", len(docs))
	}

	// The store must recover: the next write replaces the bad payload.
	mustCreate(t, e, types.PatientsCollection, types.Document{"name": "Ana Diaz"})
	n, err := e.Count(ctx, types.PatientsCollection)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 document after recovery, got %d", n)
	}
}

func TestCloseReleasesAdapter(t *testing.T) {
	e, _ := newTestEngine(t)

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := e.GetAll(context.Background(), types.PatientsCollection); !errors.Is(err, types.ErrAdapterClosed) {
		t.Errorf("expected ErrAdapterClosed after Close, got %v", err)
	}
}
