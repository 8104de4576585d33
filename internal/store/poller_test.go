package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPoller_SubscribeDeliversInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Add(ctx, Ingredients, "i-1", []byte(`{"id":"i-1"}`))

	p := NewPoller(m, time.Hour, zerolog.Nop())

	var got [][]byte
	cancel, err := p.Subscribe(ctx, Ingredients, func(docs [][]byte) { got = docs })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if len(got) != 1 {
		t.Fatalf("expected initial snapshot of 1 doc, got %d", len(got))
	}
}

func TestPoller_RefreshAfterTrackedWrite(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	m := NewMemory()
	p := NewPoller(m, time.Hour, zerolog.Nop()) // no tick during the test

	snapshots := make(chan int, 8)
	cancel, err := p.Subscribe(ctx, Orders, func(docs [][]byte) { snapshots <- len(docs) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	<-snapshots // initial, empty

	go p.Run(ctx)

	tracked := p.Tracked()
	if err := tracked.Add(ctx, Orders, "o-1", []byte(`{"id":"o-1"}`)); err != nil {
		t.Fatalf("add: %v", err)
	}

	select {
	case n := <-snapshots:
		if n != 1 {
			t.Fatalf("expected refreshed snapshot of 1 doc, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered after tracked write")
	}
}

func TestPoller_TickDeliversSnapshots(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	m := NewMemory()
	_ = m.Add(ctx, MenuItems, "m-1", []byte(`{"id":"m-1"}`))
	p := NewPoller(m, 10*time.Millisecond, zerolog.Nop())

	snapshots := make(chan int, 8)
	cancel, err := p.Subscribe(ctx, MenuItems, func(docs [][]byte) { snapshots <- len(docs) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	<-snapshots // initial

	go p.Run(ctx)

	select {
	case n := <-snapshots:
		if n != 1 {
			t.Fatalf("expected tick snapshot of 1 doc, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered by poll tick")
	}
}

func TestPoller_CancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := NewPoller(m, time.Hour, zerolog.Nop())

	calls := 0
	cancel, err := p.Subscribe(ctx, Users, func([][]byte) { calls++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	p.refresh(ctx, Users)
	if calls != 1 {
		t.Fatalf("expected only the initial delivery, got %d", calls)
	}
}

func TestPoller_SubscribeUnknownCollection(t *testing.T) {
	p := NewPoller(NewMemory(), time.Hour, zerolog.Nop())
	if _, err := p.Subscribe(context.Background(), "receipts", func([][]byte) {}); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}
