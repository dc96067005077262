package reconcile

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/devsync/internal/client/models"
)

// fakeRemote records calls and answers from preset hooks.
type fakeRemote struct {
	mu sync.Mutex

	fetch     func(ctx context.Context, q models.Query) (*models.Page, error)
	createErr func(in models.DeveloperInput) error
	UpdateErr error
	DeleteErr error

	nextID  int64
	Queries []models.Query
	Created []models.DeveloperInput
	Updated []models.Developer
	Deleted []int64
	Calls   []string
}

func (f *fakeRemote) FetchPage(ctx context.Context, q models.Query) (*models.Page, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, q)
	f.Calls = append(f.Calls, "fetch")
	fetch := f.fetch
	f.mu.Unlock()

	if fetch == nil {
		return &models.Page{Data: []models.Developer{}}, nil
	}
	return fetch(ctx, q)
}

func (f *fakeRemote) Create(ctx context.Context, in models.DeveloperInput) (*models.Developer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "create "+in.Name)
	if f.createErr != nil {
		if err := f.createErr(in); err != nil {
			return nil, err
		}
	}
	f.Created = append(f.Created, in)
	f.nextID++
	d := in.WithID(100 + f.nextID)
	return &d, nil
}

func (f *fakeRemote) Update(ctx context.Context, id int64, d models.Developer) (*models.Developer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	f.Updated = append(f.Updated, d)
	return &d, nil
}

func (f *fakeRemote) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, id)
	return nil
}

func (f *fakeRemote) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// fakeCache is an in-memory Cache.
type fakeCache struct {
	mu      sync.Mutex
	records map[int64]models.Developer
	total   int
	GetErr  error
	PutErr  error
}

func newFakeCache(list ...models.Developer) *fakeCache {
	c := &fakeCache{records: map[int64]models.Developer{}}
	for _, d := range list {
		c.records[d.ID] = d
	}
	return c
}

func (c *fakeCache) Put(ctx context.Context, list []models.Developer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PutErr != nil {
		return c.PutErr
	}
	for _, d := range list {
		if d.ID > 0 {
			c.records[d.ID] = d
		}
	}
	return nil
}

func (c *fakeCache) Get(ctx context.Context) ([]models.Developer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	out := make([]models.Developer, 0, len(c.records))
	for _, d := range c.records {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *fakeCache) PutTotal(ctx context.Context, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = n
	return nil
}

func (c *fakeCache) Total(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, nil
}

func (c *fakeCache) UpdateOne(ctx context.Context, d models.Developer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[d.ID]; ok {
		c.records[d.ID] = d
	}
	return nil
}

func (c *fakeCache) RemoveOne(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, id)
	return nil
}

func (c *fakeCache) has(id int64) (models.Developer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.records[id]
	return d, ok
}

// fakeQueue is an in-memory Queue.
type fakeQueue struct {
	mu      sync.Mutex
	seq     int64
	entries []models.PendingWrite
	Acks    []int64
}

func (q *fakeQueue) Enqueue(ctx context.Context, in models.DeveloperInput) (models.PendingWrite, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	w := models.PendingWrite{Seq: q.seq, LocalID: "local", Payload: in}
	q.entries = append(q.entries, w)
	return w, nil
}

func (q *fakeQueue) Snapshot(ctx context.Context) ([]models.PendingWrite, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.PendingWrite(nil), q.entries...), nil
}

func (q *fakeQueue) Ack(ctx context.Context, upTo int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Acks = append(q.Acks, upTo)
	rest := q.entries[:0]
	for _, w := range q.entries {
		if w.Seq > upTo {
			rest = append(rest, w)
		}
	}
	q.entries = rest
	return nil
}

func (q *fakeQueue) DrainAll(ctx context.Context) ([]models.PendingWrite, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.entries
	q.entries = nil
	return out, nil
}

func (q *fakeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// fakeSignal is a controllable ChangeSignal.
type fakeSignal struct {
	mu        sync.Mutex
	connected bool
	conns     uint64
	token     string
	Sent      []string
	updates   chan struct{}
}

func newFakeSignal() *fakeSignal {
	return &fakeSignal{updates: make(chan struct{}, 1)}
}

func (s *fakeSignal) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeSignal) Connections() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

func (s *fakeSignal) LastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSignal) Send(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, msg)
}

func (s *fakeSignal) Updates() <-chan struct{} { return s.updates }

func (s *fakeSignal) set(connected bool, token string) {
	s.mu.Lock()
	if connected && !s.connected {
		s.conns++
	}
	s.connected = connected
	s.token = token
	s.mu.Unlock()
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *fakeSignal) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Sent...)
}
