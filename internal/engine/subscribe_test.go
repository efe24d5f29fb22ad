// Subscription delivery: ordering, unsubscription, and panic containment.
package engine

import (
	"context"
	"testing"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

func TestSubscribeReceivesDiffEvents(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var events []types.ChangeEvent
	e.Subscribe(types.PatientsCollection, func(ev types.ChangeEvent) {
		events = append(events, ev)
	})

	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-1", "name": "Ana Diaz"})
	if _, err := e.Update(ctx, types.PatientsCollection, "pat-1", types.Document{"name": "Ana D."}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := e.Delete(ctx, types.PatientsCollection, "pat-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []string{types.ActionCreate, types.ActionUpdate, types.ActionDelete}
	for i, ev := range events {
		if ev.Action != want[i] {
			t.Errorf("event %d: expected action %s, got %s", i, want[i], ev.Action)
		}
		if ev.Collection != types.PatientsCollection {
			t.Errorf("event %d: wrong collection %s", i, ev.Collection)
		}
		if ev.Doc == nil || ev.Doc.ID() != "pat-1" {
			t.Errorf("event %d: expected single-doc payload for pat-1, got %v", i, ev.Doc)
		}
		if ev.Docs != nil {
			t.Errorf("event %d: single mutations must not carry Docs", i)
		}
	}
	if events[1].Doc["name"] != "Ana D." {
		t.Errorf("update event must carry the post-merge document, got %v", events[1].Doc["name"])
	}
}

func TestBatchMutationsEmitOneEvent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var events []types.ChangeEvent
	e.Subscribe(types.DoctorsCollection, func(ev types.ChangeEvent) {
		events = append(events, ev)
	})

	if _, err := e.CreateMany(ctx, types.DoctorsCollection, []types.Document{
		{"id": "doc-a"}, {"id": "doc-b"}, {"id": "doc-c"},
	}); err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}
	if _, err := e.DeleteMany(ctx, types.DoctorsCollection, []string{"doc-a", "doc-b"}); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events for 2 batch calls, got %d", len(events))
	}
	if len(events[0].Docs) != 3 || events[0].Action != types.ActionCreate {
		t.Errorf("batch create event wrong: action=%s docs=%d", events[0].Action, len(events[0].Docs))
	}
	if len(events[1].Docs) != 2 || events[1].Action != types.ActionDelete {
		t.Errorf("batch delete event wrong: action=%s docs=%d", events[1].Action, len(events[1].Docs))
	}
}

func TestNoEventWhenNothingChanges(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	fired := 0
	e.Subscribe(types.PatientsCollection, func(types.ChangeEvent) { fired++ })

	if _, err := e.Update(ctx, types.PatientsCollection, "nope", types.Document{"name": "x"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := e.Delete(ctx, types.PatientsCollection, "nope"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if fired != 0 {
		t.Errorf("no-op mutations must not notify, got %d events", fired)
	}
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	e, _ := newTestEngine(t)

	var order []string
	unsubA := e.Subscribe(types.PatientsCollection, func(types.ChangeEvent) {
		order = append(order, "a")
	})
	e.Subscribe(types.PatientsCollection, func(types.ChangeEvent) {
		order = append(order, "b")
	})

	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-1"})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected registration-order delivery [a b], got %v", order)
	}

	unsubA()
	unsubA() // second call is a no-op

	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-2"})
	if len(order) != 3 || order[2] != "b" {
		t.Errorf("expected only b after unsubscribe, got %v", order)
	}
}

func TestSubscriberPanicContained(t *testing.T) {
	e, _ := newTestEngine(t)

	survived := 0
	e.Subscribe(types.PatientsCollection, func(types.ChangeEvent) {
		panic("subscriber bug")
	})
	e.Subscribe(types.PatientsCollection, func(types.ChangeEvent) { survived++ })

	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-1"})
	if survived != 1 {
		t.Errorf("subscriber after the panicking one must still run, got %d", survived)
	}

	// The engine itself keeps working.
	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-2"})
	if survived != 2 {
		t.Errorf("expected delivery to continue on later mutations, got %d", survived)
	}
}

func TestSubscriberScopedToCollection(t *testing.T) {
	e, _ := newTestEngine(t)

	fired := 0
	e.Subscribe(types.PatientsCollection, func(types.ChangeEvent) { fired++ })

	mustCreate(t, e, types.DoctorsCollection, types.Document{"id": "doc-a"})
	if fired != 0 {
		t.Errorf("doctors mutation must not reach a patients subscriber")
	}
}

func TestSubscriberCanReadEngine(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var seen int
	e.Subscribe(types.PatientsCollection, func(ev types.ChangeEvent) {
		// Reads from inside a subscriber must not deadlock.
		n, err := e.Count(ctx, types.PatientsCollection)
		if err != nil {
			t.Errorf("Count inside subscriber failed: %v", err)
		}
		seen = n
	})

	mustCreate(t, e, types.PatientsCollection, types.Document{"id": "pat-1"})
	if seen != 1 {
		t.Errorf("subscriber should observe the committed write, got %d", seen)
	}
}
