package delivery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"basketly/models"

	"go.uber.org/zap"
)

const (
	DefaultReevaluationInterval = 60 * time.Second
	DefaultFetchTimeout         = 5 * time.Second
)

// EngineConfig tunes a single session engine.
type EngineConfig struct {
	SessionID            string
	ReevaluationInterval time.Duration
	FetchTimeout         time.Duration
	InvoiceFee           float64
	Clock                func() time.Time
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.ReevaluationInterval <= 0 {
		c.ReevaluationInterval = DefaultReevaluationInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

type eventKind int

const (
	evCatalogLoaded eventKind = iota
	evCartUpdated
	evSelect
	evRefresh
	evReevaluate
	evSnapshot
)

type event struct {
	kind   eventKind
	slots  []models.RawSlot
	err    error
	cart   models.CartState
	slotID string
	reply  chan reply
}

type reply struct {
	snapshot models.SlotSnapshot
	accepted bool
}

// Engine is the delivery-slot pipeline of one cart session. All state is owned
// by the goroutine running Run; other goroutines talk to it through events.
type Engine struct {
	cfg     EngineConfig
	catalog CatalogProvider
	manager *SelectionManager
	logger  *zap.Logger

	events chan event
	done   chan struct{}

	// loop-owned
	raw               []models.RawSlot
	eval              models.SlotEvaluation
	cart              models.CartState
	cartKnown         bool
	loaded            bool
	catalogError      bool
	fetching          bool
	selectionDisabled bool
	pendingSelects    []event
	refreshWaiters    []chan reply
	queuedRefresh     []chan reply
	version           uint64

	mu          sync.Mutex
	last        models.SlotSnapshot
	subscribers map[int]chan models.SlotSnapshot
	nextSubID   int
	closed      bool

	lastActive atomic.Int64
}

func NewEngine(cfg EngineConfig, catalog CatalogProvider, store SelectionStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	logger = logger.With(zap.String("sessionID", cfg.SessionID))

	e := &Engine{
		cfg:         cfg,
		catalog:     catalog,
		manager:     NewSelectionManager(store, logger),
		logger:      logger,
		events:      make(chan event),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan models.SlotSnapshot),
	}
	e.last = e.buildSnapshot()
	e.touch()
	return e
}

// Run fetches the catalog and processes events until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.ReevaluationInterval)
	defer ticker.Stop()

	e.fetch(ctx)

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return
		case <-ticker.C:
			if e.loaded {
				e.reevaluate()
				e.publish()
			}
		case ev := <-e.events:
			e.handle(ctx, ev)
		}
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// LastActive is the time of the most recent caller interaction.
func (e *Engine) LastActive() time.Time {
	return time.Unix(0, e.lastActive.Load())
}

func (e *Engine) touch() {
	e.lastActive.Store(time.Now().UnixNano())
}

// Snapshot returns the current view without changing anything.
func (e *Engine) Snapshot(ctx context.Context) (models.SlotSnapshot, error) {
	r, err := e.send(ctx, event{kind: evSnapshot})
	return r.snapshot, err
}

// UpdateCart replaces the cart and re-runs the minimum-order auto-clear.
func (e *Engine) UpdateCart(ctx context.Context, cart models.CartState) (models.SlotSnapshot, error) {
	r, err := e.send(ctx, event{kind: evCartUpdated, cart: cart})
	return r.snapshot, err
}

// Select asks for slotID to become the selection. Selects issued before the
// catalog has loaded and the cart is known are held back and applied after
// restore/auto-pick.
func (e *Engine) Select(ctx context.Context, slotID string) (models.SlotSnapshot, bool, error) {
	r, err := e.send(ctx, event{kind: evSelect, slotID: slotID})
	return r.snapshot, r.accepted, err
}

// Refresh re-fetches the catalog and returns the snapshot once it has loaded.
// A refresh issued while a fetch is running waits for a fetch started after it.
func (e *Engine) Refresh(ctx context.Context) (models.SlotSnapshot, error) {
	r, err := e.send(ctx, event{kind: evRefresh})
	return r.snapshot, err
}

// Reevaluate forces a clock re-evaluation outside the ticker.
func (e *Engine) Reevaluate(ctx context.Context) (models.SlotSnapshot, error) {
	r, err := e.send(ctx, event{kind: evReevaluate})
	return r.snapshot, err
}

// Subscribe registers an observer. The channel holds at most one snapshot and
// always carries the latest one; it is closed on teardown or cancel.
func (e *Engine) Subscribe() (<-chan models.SlotSnapshot, func()) {
	ch := make(chan models.SlotSnapshot, 1)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	ch <- e.last
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if sub, ok := e.subscribers[id]; ok {
				delete(e.subscribers, id)
				close(sub)
			}
			e.touch()
		})
	}
}

// Observed reports whether any subscriber is attached. An observed session
// is live even when no calls arrive.
func (e *Engine) Observed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subscribers) > 0
}

func (e *Engine) send(ctx context.Context, ev event) (reply, error) {
	e.touch()
	ev.reply = make(chan reply, 1)

	select {
	case e.events <- ev:
	case <-e.done:
		return reply{}, ErrEngineClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}

	select {
	case r := <-ev.reply:
		return r, nil
	case <-e.done:
		return reply{}, ErrEngineClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

func (e *Engine) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evCatalogLoaded:
		e.onCatalogLoaded(ctx, ev)
		return

	case evCartUpdated:
		e.cart = ev.cart
		e.cartKnown = true

		var pending []event
		var accepted []bool
		if e.manager.Initialized() {
			if e.manager.SubtotalChanged(ctx, e.cart.Subtotal()) {
				e.selectionDisabled = false
			}
		} else {
			pending, accepted = e.initialize(ctx)
		}
		snap := e.publish()
		answer(pending, accepted, snap)
		ev.reply <- reply{snapshot: snap}
		return

	case evSelect:
		if e.holdSelect() {
			e.pendingSelects = append(e.pendingSelects, ev)
			return
		}
		accepted := e.applySelect(ctx, ev.slotID)
		snap := e.publish()
		ev.reply <- reply{snapshot: snap, accepted: accepted}
		return

	case evRefresh:
		if e.fetching {
			e.queuedRefresh = append(e.queuedRefresh, ev.reply)
			return
		}
		e.refreshWaiters = append(e.refreshWaiters, ev.reply)
		e.fetch(ctx)
		return

	case evReevaluate:
		if e.loaded {
			e.reevaluate()
		}
		e.publish()
	}

	ev.reply <- reply{snapshot: e.currentSnapshot()}
}

func (e *Engine) onCatalogLoaded(ctx context.Context, ev event) {
	e.fetching = false
	if ev.err != nil {
		e.logger.Warn("slot catalog unavailable, showing no slots", zap.Error(&CatalogError{Err: ev.err}))
		e.raw = nil
		e.catalogError = true
	} else {
		e.raw = ev.slots
		e.catalogError = false
	}
	e.loaded = true
	e.reevaluate()

	var pending []event
	var accepted []bool
	if e.catalogError {
		// held clicks are answered now; against an empty catalog they are rejected
		pending, accepted = e.replayPending(ctx)
	} else {
		pending, accepted = e.initialize(ctx)
	}

	snap := e.publish()
	answer(pending, accepted, snap)
	for _, w := range e.refreshWaiters {
		w <- reply{snapshot: snap}
	}
	e.refreshWaiters = nil

	if len(e.queuedRefresh) > 0 {
		e.refreshWaiters, e.queuedRefresh = e.queuedRefresh, nil
		e.fetch(ctx)
	}
}

// initialize runs the one-time restore/auto-pick once a catalog has loaded and
// the cart is known, then applies the selects held back until then.
func (e *Engine) initialize(ctx context.Context) ([]event, []bool) {
	if e.manager.Initialized() || !e.loaded || e.catalogError || !e.cartKnown {
		return nil, nil
	}
	e.manager.Initialize(ctx, e.eval, e.cart.Subtotal())
	e.selectionDisabled = e.manager.Revalidate(e.eval)
	return e.replayPending(ctx)
}

// holdSelect reports whether a select has to wait for initialization.
func (e *Engine) holdSelect() bool {
	if !e.loaded {
		return true
	}
	return !e.catalogError && !e.manager.Initialized()
}

// replayPending applies held selects in arrival order.
func (e *Engine) replayPending(ctx context.Context) ([]event, []bool) {
	pending := e.pendingSelects
	e.pendingSelects = nil
	accepted := make([]bool, len(pending))
	for i, sel := range pending {
		accepted[i] = e.applySelect(ctx, sel.slotID)
	}
	return pending, accepted
}

func answer(pending []event, accepted []bool, snap models.SlotSnapshot) {
	for i, sel := range pending {
		sel.reply <- reply{snapshot: snap, accepted: accepted[i]}
	}
}

func (e *Engine) applySelect(ctx context.Context, slotID string) bool {
	if !e.manager.Select(ctx, slotID, e.eval, e.cart.Subtotal()) {
		e.logger.Debug("rejected ineligible slot selection", zap.String("slotID", slotID))
		return false
	}
	e.selectionDisabled = false
	return true
}

// fetch starts a catalog fetch unless one is already running.
func (e *Engine) fetch(ctx context.Context) {
	if e.fetching {
		return
	}
	e.fetching = true

	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
		defer cancel()

		slots, err := e.catalog.ActiveSlots(fetchCtx)
		select {
		case e.events <- event{kind: evCatalogLoaded, slots: slots, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) reevaluate() {
	e.eval = Evaluate(e.raw, e.cfg.Clock(), e.cart.Subtotal())
	e.selectionDisabled = e.manager.Revalidate(e.eval)
}

func (e *Engine) buildSnapshot() models.SlotSnapshot {
	selection := e.manager.Current()
	snap := models.SlotSnapshot{
		SessionID:         e.cfg.SessionID,
		Loaded:            e.loaded,
		AwaitingCart:      e.loaded && !e.catalogError && !e.manager.Initialized(),
		CatalogError:      e.catalogError,
		NoSlotsAvailable:  e.loaded && e.eval.IsEmpty(),
		StandardSlots:     e.eval.Standard,
		ExpressSlots:      e.eval.Express,
		SelectedSlotID:    selection.SlotID(),
		SelectedSlot:      selection.Slot,
		SelectionDisabled: e.selectionDisabled,
		CartSubtotal:      e.cart.Subtotal(),
		EvaluatedAt:       e.eval.EvaluatedAt,
		Version:           e.version,
	}
	snap.Pricing = Aggregate(models.PricingInputs{
		Items:             e.cart.Items,
		InvoiceFeeEnabled: e.cart.InvoiceFeeEnabled,
		InvoiceFee:        e.cfg.InvoiceFee,
		Selection:         selection,
		DiscountAmount:    e.cart.DiscountAmount,
	})
	return snap
}

func (e *Engine) currentSnapshot() models.SlotSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// publish records a new snapshot and fans it out to observers.
func (e *Engine) publish() models.SlotSnapshot {
	e.version++
	snap := e.buildSnapshot()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = snap
	for _, ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot, keep the newest
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for id, ch := range e.subscribers {
		close(ch)
		delete(e.subscribers, id)
	}
}
