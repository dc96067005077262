package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/devsync/internal/client/client"
	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/logging"
)

const (
	DefaultPageSize       = 10
	DefaultRequestTimeout = 10 * time.Second
)

var (
	// ErrSuperseded is returned by a Load whose result was discarded because
	// a newer Load started meanwhile.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrPendingRecord rejects edits of records that exist only in the offline queue.
	ErrPendingRecord = errors.New("record is not synced yet")
)

// State is a snapshot of what the user sees.
type State struct {
	Page       int
	PageSize   int
	NameFilter string
	Employment models.EmploymentFilter

	List    []models.Developer
	Total   int
	Loading bool
	Err     error
	// Offline is set when the last remote call failed for lack of connectivity.
	Offline bool
}

// DrainReport summarises one replay of the offline queue.
type DrainReport struct {
	Submitted int
	Failed    int
	Remaining int
}

type Engine struct {
	remote Remote
	cache  Cache
	queue  Queue
	signal Signal
	log    logging.Logger

	timeout   time.Duration
	drainHook func(DrainReport)

	// drainMu keeps Drain exclusive of loads.
	drainMu sync.RWMutex

	mu         sync.Mutex
	state      State
	gen        uint64
	cancelLoad context.CancelFunc
}

type Option func(*Engine)

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.state.PageSize = n
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithDrainHook registers fn to be called after every Drain that found queued entries.
func WithDrainHook(fn func(DrainReport)) Option {
	return func(e *Engine) { e.drainHook = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(remote Remote, cache Cache, queue Queue, signal Signal, opts ...Option) *Engine {
	e := &Engine{
		remote:  remote,
		cache:   cache,
		queue:   queue,
		signal:  signal,
		log:     logging.Discard(),
		timeout: DefaultRequestTimeout,
		state: State{
			PageSize: DefaultPageSize,
			List:     []models.Developer{},
		},
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With("module", "reconcile")
	return e
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.List = append([]models.Developer{}, e.state.List...)
	return s
}

func (e *Engine) queryLocked() models.Query {
	return models.Query{
		Page:       e.state.Page,
		Size:       e.state.PageSize,
		Name:       e.state.NameFilter,
		Employment: e.state.Employment,
	}
}

// Load refreshes the list for the current query. A connectivity failure is
// not an error: the list is rebuilt from local data and Offline is set.
func (e *Engine) Load(ctx context.Context) error {
	e.drainMu.RLock()
	defer e.drainMu.RUnlock()

	e.mu.Lock()
	e.gen++
	gen := e.gen
	if e.cancelLoad != nil {
		e.cancelLoad()
	}
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	e.cancelLoad = cancel
	q := e.queryLocked()
	e.state.Loading = true
	e.mu.Unlock()

	defer cancel()
	defer func() {
		e.mu.Lock()
		if e.gen == gen {
			e.state.Loading = false
			e.cancelLoad = nil
		}
		e.mu.Unlock()
	}()

	page, err := e.remote.FetchPage(fetchCtx, q)
	if !e.isCurrent(gen) {
		return ErrSuperseded
	}

	if err == nil {
		list, total := e.writeThrough(ctx, page)
		return e.apply(gen, func(s *State) {
			s.List = list
			s.Total = total
			s.Err = nil
			s.Offline = false
		})
	}

	list := e.localView(ctx, q)
	offline := client.IsUnavailable(err)
	if offline {
		e.log.Info(ctx, "backend unreachable, serving local data", "count", len(list), "error", err)
	} else {
		e.log.Error(ctx, "load failed", "error", err)
	}
	if aErr := e.apply(gen, func(s *State) {
		s.List = list
		s.Total = len(list)
		s.Offline = offline
		if offline {
			s.Err = nil
		} else {
			s.Err = err
		}
	}); aErr != nil {
		return aErr
	}
	if offline {
		return nil
	}
	return err
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen == gen
}

func (e *Engine) apply(gen uint64, fn func(*State)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return ErrSuperseded
	}
	fn(&e.state)
	return nil
}

// writeThrough stores a fetched page and returns the merged cached set with
// the remote total. Cache failures degrade to the page itself.
func (e *Engine) writeThrough(ctx context.Context, page *models.Page) ([]models.Developer, int) {
	if err := e.cache.Put(ctx, page.Data); err != nil {
		e.log.Error(ctx, "cache put failed", "error", err)
	}
	if err := e.cache.PutTotal(ctx, page.Total); err != nil {
		e.log.Error(ctx, "cache total put failed", "error", err)
	}

	list, err := e.cache.Get(ctx)
	if err != nil {
		e.log.Error(ctx, "cache read failed", "error", err)
		list = append([]models.Developer{}, page.Data...)
	}
	total, err := e.cache.Total(ctx)
	if err != nil {
		e.log.Error(ctx, "cache total read failed", "error", err)
		total = page.Total
	}
	return list, total
}

// localView is the degraded list: cached records plus placeholders for
// queued creates, filtered by q.
func (e *Engine) localView(ctx context.Context, q models.Query) []models.Developer {
	cached, err := e.cache.Get(ctx)
	if err != nil {
		e.log.Error(ctx, "cache read failed", "error", err)
	}
	queued, err := e.queue.Snapshot(ctx)
	if err != nil {
		e.log.Error(ctx, "queue read failed", "error", err)
	}

	combined := make([]models.Developer, 0, len(cached)+len(queued))
	combined = append(combined, cached...)
	for _, w := range queued {
		combined = append(combined, w.Placeholder())
	}
	return q.Filter(combined)
}

// Create sends in to the backend. When the backend is unreachable the
// input is queued and a pending placeholder is returned instead.
func (e *Engine) Create(ctx context.Context, in models.DeveloperInput) (models.Developer, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	d, err := e.remote.Create(callCtx, in)
	cancel()

	if err == nil {
		if cErr := e.cache.Put(ctx, []models.Developer{*d}); cErr != nil {
			e.log.Error(ctx, "cache put failed", "id", d.ID, "error", cErr)
		}
		e.mu.Lock()
		e.state.List = append(e.state.List, *d)
		e.state.Total++
		e.state.Err = nil
		e.state.Offline = false
		e.mu.Unlock()

		e.signal.Send("Created dev")
		return *d, nil
	}

	if !client.IsUnavailable(err) {
		return models.Developer{}, err
	}

	w, qErr := e.queue.Enqueue(ctx, in)
	if qErr != nil {
		return models.Developer{}, fmt.Errorf("queue offline create: %w", qErr)
	}
	placeholder := w.Placeholder()
	e.log.Info(ctx, "backend unreachable, create queued", "seq", w.Seq, "local_id", w.LocalID)

	e.mu.Lock()
	e.state.List = append(e.state.List, placeholder)
	e.state.Total++
	e.state.Offline = true
	e.mu.Unlock()

	return placeholder, nil
}

// Update replaces a synced record. Local state changes only after the
// backend accepted the change.
func (e *Engine) Update(ctx context.Context, d models.Developer) (models.Developer, error) {
	if d.IsPending() {
		return models.Developer{}, ErrPendingRecord
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	updated, err := e.remote.Update(callCtx, d.ID, d)
	cancel()
	if err != nil {
		return models.Developer{}, err
	}

	if cErr := e.cache.UpdateOne(ctx, *updated); cErr != nil {
		e.log.Error(ctx, "cache update failed", "id", updated.ID, "error", cErr)
	}
	e.mu.Lock()
	for i := range e.state.List {
		if e.state.List[i].ID == updated.ID {
			e.state.List[i] = *updated
		}
	}
	e.mu.Unlock()

	e.signal.Send(fmt.Sprintf("Update dev%d", updated.ID))
	return *updated, nil
}

func (e *Engine) Delete(ctx context.Context, id int64) error {
	if id < 0 {
		return ErrPendingRecord
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	err := e.remote.Delete(callCtx, id)
	cancel()
	if err != nil {
		return err
	}

	if cErr := e.cache.RemoveOne(ctx, id); cErr != nil {
		e.log.Error(ctx, "cache remove failed", "id", id, "error", cErr)
	}
	e.mu.Lock()
	if removeByID(&e.state.List, id) && e.state.Total > 0 {
		e.state.Total--
	}
	e.mu.Unlock()

	e.signal.Send(fmt.Sprintf("Delete dev%d", id))
	return nil
}

func removeByID(list *[]models.Developer, id int64) bool {
	out := (*list)[:0]
	found := false
	for _, d := range *list {
		if d.ID == id {
			found = true
			continue
		}
		out = append(out, d)
	}
	*list = out
	return found
}

// Drain replays queued creates in order. It stops at the first
// connectivity or auth failure and leaves the rest queued; entries the
// backend rejects are dropped. The processed prefix is acknowledged once at
// the end of the pass.
func (e *Engine) Drain(ctx context.Context) (DrainReport, error) {
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	entries, err := e.queue.Snapshot(ctx)
	if err != nil {
		return DrainReport{}, fmt.Errorf("read offline queue: %w", err)
	}
	if len(entries) == 0 {
		return DrainReport{}, nil
	}

	var (
		report DrainReport
		acked  int64
	)
	for i, w := range entries {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		d, err := e.remote.Create(callCtx, w.Payload)
		cancel()

		if err != nil {
			if client.IsUnavailable(err) || errors.Is(err, client.ErrUnauthorized) || ctx.Err() != nil {
				report.Remaining = len(entries) - i
				e.log.Warn(ctx, "offline queue replay interrupted", "seq", w.Seq, "remaining", report.Remaining, "error", err)
				break
			}
			report.Failed++
			acked = w.Seq
			e.log.Error(ctx, "queued create rejected, dropping", "seq", w.Seq, "local_id", w.LocalID, "error", err)
			e.mu.Lock()
			if removeByID(&e.state.List, -w.Seq) && e.state.Total > 0 {
				e.state.Total--
			}
			e.mu.Unlock()
			continue
		}

		report.Submitted++
		acked = w.Seq
		if cErr := e.cache.Put(ctx, []models.Developer{*d}); cErr != nil {
			e.log.Error(ctx, "cache put failed", "id", d.ID, "error", cErr)
		}
		e.promote(-w.Seq, *d)
	}

	var ackErr error
	if acked > 0 {
		if ackErr = e.queue.Ack(ctx, acked); ackErr != nil {
			ackErr = fmt.Errorf("acknowledge offline queue: %w", ackErr)
		}
	}

	e.log.Info(ctx, "offline queue replayed",
		"submitted", report.Submitted, "failed", report.Failed, "remaining", report.Remaining)
	if report.Submitted > 0 {
		e.signal.Send(fmt.Sprintf("Synced %d devs", report.Submitted))
	}
	if e.drainHook != nil {
		e.drainHook(report)
	}
	return report, ackErr
}

// Discard gives up on every queued create and removes their placeholders.
// It returns the dropped entries in queue order.
func (e *Engine) Discard(ctx context.Context) ([]models.PendingWrite, error) {
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	dropped, err := e.queue.DrainAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("discard offline queue: %w", err)
	}
	if len(dropped) == 0 {
		return dropped, nil
	}

	e.mu.Lock()
	for _, w := range dropped {
		if removeByID(&e.state.List, -w.Seq) && e.state.Total > 0 {
			e.state.Total--
		}
	}
	e.mu.Unlock()

	e.log.Info(ctx, "offline queue discarded", "dropped", len(dropped))
	return dropped, nil
}

// promote swaps the placeholder with the record the backend created.
func (e *Engine) promote(tempID int64, d models.Developer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.state.List {
		if e.state.List[i].ID == tempID {
			e.state.List[i] = d
			return
		}
	}
	e.state.List = append(e.state.List, d)
}

func (e *Engine) SetPage(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	e.mu.Lock()
	e.state.Page = page
	e.mu.Unlock()
	return e.Load(ctx)
}

func (e *Engine) SetNameFilter(ctx context.Context, name string) error {
	e.mu.Lock()
	e.state.NameFilter = name
	e.state.Page = 0
	e.mu.Unlock()
	return e.Load(ctx)
}

func (e *Engine) SetEmploymentFilter(ctx context.Context, f models.EmploymentFilter) error {
	e.mu.Lock()
	e.state.Employment = f
	e.state.Page = 0
	e.mu.Unlock()
	return e.Load(ctx)
}

// Run performs the initial load and then follows the change signal: a
// reconnect drains the offline queue and reloads, a new token reloads.
// It returns when ctx is done.
//
// Wake-ups coalesce, so a disconnect and the following reconnect may
// arrive as one; the connection count catches that case.
func (e *Engine) Run(ctx context.Context) {
	connected := false
	var conns uint64
	token := e.signal.LastToken()

	react := func() bool {
		now, n, tok := e.signal.Connected(), e.signal.Connections(), e.signal.LastToken()
		reload := tok != token
		if now && (!connected || n != conns) {
			if _, err := e.Drain(ctx); err != nil {
				e.log.Error(ctx, "drain failed", "error", err)
			}
			reload = true
		}
		connected, conns, token = now, n, tok
		if reload {
			e.loadLogged(ctx)
		}
		return reload
	}

	if !react() {
		e.loadLogged(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.signal.Updates():
			react()
		}
	}
}

func (e *Engine) loadLogged(ctx context.Context) {
	if err := e.Load(ctx); err != nil && !errors.Is(err, ErrSuperseded) && ctx.Err() == nil {
		e.log.Warn(ctx, "load failed", "error", err)
	}
}
