package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval matches the POS clients' refresh cadence.
const DefaultPollInterval = 5 * time.Second

// Snapshot receives the full current contents of a collection. It is
// never given a partial diff.
type Snapshot func(docs [][]byte)

// Poller delivers full collection snapshots to subscribers: once on
// subscribe, on every tick, and immediately after a local write made
// through the tracked store. While local writes are in flight the tick
// refresh is suppressed, so an optimistic in-memory update is not
// reverted by a stale read racing the write.
type Poller struct {
	store    Store
	interval time.Duration
	log      zerolog.Logger

	inflight atomic.Int32
	kick     chan string

	mu     sync.Mutex
	subs   map[string]map[int]Snapshot
	nextID int
}

// NewPoller creates a poller over the given store. A non-positive
// interval falls back to DefaultPollInterval.
func NewPoller(s Store, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		store:    s,
		interval: interval,
		log:      log,
		kick:     make(chan string, 64),
		subs:     make(map[string]map[int]Snapshot),
	}
}

// Tracked returns a Store that counts in-flight writes and requests a
// refresh of the written collection after each operation. All
// application writes should go through it.
func (p *Poller) Tracked() Store {
	return &trackedStore{inner: p.store, poller: p}
}

// Subscribe registers a snapshot callback and synchronously delivers
// the current contents. The returned function cancels the subscription.
func (p *Poller) Subscribe(ctx context.Context, collection string, fn Snapshot) (func(), error) {
	if !validCollection(collection) {
		return nil, ErrUnknownCollection
	}
	docs, err := p.store.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	if p.subs[collection] == nil {
		p.subs[collection] = make(map[int]Snapshot)
	}
	p.subs[collection][id] = fn
	p.mu.Unlock()

	fn(docs)

	return func() {
		p.mu.Lock()
		delete(p.subs[collection], id)
		p.mu.Unlock()
	}, nil
}

// Run drives the poll loop until ctx is done. Refresh failures are
// logged and swallowed; subscribers simply keep their last snapshot.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case collection := <-p.kick:
			p.refresh(ctx, collection)
		case <-ticker.C:
			if p.inflight.Load() > 0 {
				continue
			}
			for _, collection := range p.subscribed() {
				p.refresh(ctx, collection)
			}
		}
	}
}

func (p *Poller) subscribed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.subs))
	for name, subs := range p.subs {
		if len(subs) > 0 {
			out = append(out, name)
		}
	}
	return out
}

func (p *Poller) refresh(ctx context.Context, collection string) {
	docs, err := p.store.List(ctx, collection)
	if err != nil {
		p.log.Warn().Err(err).Str("collection", collection).Msg("snapshot refresh failed")
		return
	}
	p.mu.Lock()
	fns := make([]Snapshot, 0, len(p.subs[collection]))
	for _, fn := range p.subs[collection] {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(docs)
	}
}

func (p *Poller) requestRefresh(collection string) {
	select {
	case p.kick <- collection:
	default:
		// A refresh for this tick is already queued up; dropping the
		// request loses nothing since snapshots are full copies.
	}
}

// trackedStore forwards to the inner store while gating the poll loop.
type trackedStore struct {
	inner  Store
	poller *Poller
}

func (t *trackedStore) List(ctx context.Context, collection string) ([][]byte, error) {
	return t.inner.List(ctx, collection)
}

func (t *trackedStore) Add(ctx context.Context, collection, id string, doc []byte) error {
	return t.write(collection, func() error { return t.inner.Add(ctx, collection, id, doc) })
}

func (t *trackedStore) Update(ctx context.Context, collection, id string, doc []byte) error {
	return t.write(collection, func() error { return t.inner.Update(ctx, collection, id, doc) })
}

func (t *trackedStore) Delete(ctx context.Context, collection, id string) error {
	return t.write(collection, func() error { return t.inner.Delete(ctx, collection, id) })
}

func (t *trackedStore) BulkAdd(ctx context.Context, collection string, docs map[string][]byte) error {
	return t.write(collection, func() error { return t.inner.BulkAdd(ctx, collection, docs) })
}

func (t *trackedStore) BulkUpdate(ctx context.Context, collection string, docs map[string][]byte) error {
	return t.write(collection, func() error { return t.inner.BulkUpdate(ctx, collection, docs) })
}

func (t *trackedStore) BulkDelete(ctx context.Context, collection string, ids []string) error {
	return t.write(collection, func() error { return t.inner.BulkDelete(ctx, collection, ids) })
}

func (t *trackedStore) Ping(ctx context.Context) error {
	return t.inner.Ping(ctx)
}

func (t *trackedStore) write(collection string, op func() error) error {
	t.poller.inflight.Add(1)
	err := op()
	t.poller.inflight.Add(-1)
	t.poller.requestRefresh(collection)
	return err
}
