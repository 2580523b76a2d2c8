package occupancy

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/booking"
)

// Snapshotter reports which rooms are occupied at a point in time. It is
// satisfied by the application occupancy service.
type Snapshotter interface {
	OccupiedRooms(ctx context.Context, date booking.Date, t booking.TimeOfDay) ([]application.RoomOccupancy, error)
}

type observer struct {
	id int
	fn func()
}

// Watcher polls current room occupancy and notifies observers when the set of
// occupied rooms changes. The poll loop is reference counted: the first
// Subscribe starts it, releasing the last subscription stops it. Ticks never
// overlap; a snapshot that fails is logged and the next tick proceeds as
// scheduled.
type Watcher struct {
	snapshotter Snapshotter
	interval    time.Duration
	now         func() time.Time
	logger      *slog.Logger

	mu        sync.Mutex
	observers []observer
	nextID    int
	cancel    context.CancelFunc
	done      chan struct{}
	notifying bool

	occupied map[string]struct{}
}

// NewWatcher builds a watcher polling every interval. A nil now defaults to
// time.Now.
func NewWatcher(snapshotter Snapshotter, interval time.Duration, now func() time.Time, logger *slog.Logger) *Watcher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Watcher{
		snapshotter: snapshotter,
		interval:    interval,
		now:         now,
		logger:      logger,
	}
}

// Subscribe registers fn to run whenever the occupied-room set changes and
// returns a release function. Observers run synchronously on the poll
// goroutine in subscription order. Releasing twice is harmless, and an
// observer may release its own subscription from inside its callback; in
// that case the poll loop winds down asynchronously.
func (w *Watcher) Subscribe(fn func()) (release func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.observers = append(w.observers, observer{id: id, fn: fn})
	if len(w.observers) == 1 {
		w.start()
	}
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.unsubscribe(id) })
	}
}

func (w *Watcher) unsubscribe(id int) {
	w.mu.Lock()
	w.observers = slices.DeleteFunc(w.observers, func(o observer) bool { return o.id == id })
	var done chan struct{}
	if len(w.observers) == 0 && w.cancel != nil {
		w.cancel()
		w.cancel = nil
		// A release issued from inside an observer callback runs on the
		// poll goroutine itself; waiting for the loop to exit would
		// deadlock, so the loop is left to wind down on its own.
		if !w.notifying {
			done = w.done
		}
	}
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// start launches the poll loop. Caller holds w.mu.
func (w *Watcher) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	// The baseline is an empty occupied set, so the first tick notifies
	// only when something is occupied at startup.
	w.occupied = make(map[string]struct{})
	go w.run(ctx, w.done)
}

func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		w.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	instant := w.now()
	date := booking.DateOf(instant)
	timeOfDay := booking.NewTimeOfDay(instant.Hour(), instant.Minute())

	occupancies, err := w.snapshotter.OccupiedRooms(ctx, date, timeOfDay)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.WarnContext(ctx, "occupancy poll failed", "error", err)
		return
	}

	current := make(map[string]struct{}, len(occupancies))
	for _, occupancy := range occupancies {
		current[occupancy.Room.ID] = struct{}{}
	}

	w.mu.Lock()
	changed := !sameSet(w.occupied, current)
	w.occupied = current
	observers := slices.Clone(w.observers)
	if changed {
		w.notifying = true
	}
	w.mu.Unlock()

	if !changed {
		return
	}
	w.logger.DebugContext(ctx, "occupied rooms changed", "count", len(current))
	for _, o := range observers {
		o.fn()
	}

	w.mu.Lock()
	w.notifying = false
	w.mu.Unlock()
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

// running reports whether the poll loop is active.
func (w *Watcher) running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}
