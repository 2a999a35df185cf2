package cache

import (
	"sync"
	"time"

	"github.com/dailyyoga/ttlcache/logger"
	"github.com/dailyyoga/ttlcache/routine"
	"go.uber.org/zap"
)

// idleWait bounds the sweeper's sleep while no cache is registered. The
// wake channel ends the sleep early whenever the schedule changes, so
// this only caps the worst-case staleness of a fully idle sweeper.
const idleWait = time.Hour

// sweepable is the contract the manager holds a cache to. The manager
// never touches entries; it only flushes, sizes, and reschedules.
type sweepable interface {
	Name() string
	Len() int
	SweepInterval() time.Duration
	Flush()
}

// registration links a cache to its next scheduled sweep time
type registration struct {
	cache     sweepable
	nextSweep time.Time
}

// Manager sweeps every registered cache from a single background
// goroutine. Registrations are kept sorted by due time; the goroutine
// sleeps until the nearest one, flushes it, reschedules it, and repeats.
// Registering a sooner deadline or emptying the schedule wakes the
// goroutine early so it never sleeps toward a stale deadline.
//
// Caches register and unregister themselves as they transition between
// empty and non-empty; callers never interact with a Manager beyond
// constructing one.
type Manager struct {
	log logger.Logger

	mu      sync.Mutex
	regs    []*registration
	wake    chan struct{}
	started bool
}

// NewManager creates a manager with no registered caches. Its sweep
// goroutine starts lazily on the first registration and runs for the
// life of the process.
func NewManager(log logger.Logger) *Manager {
	return &Manager{
		log:  log,
		wake: make(chan struct{}, 1),
	}
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// DefaultManager returns the process-wide shared manager, creating it on
// first use with the global logger.
func DefaultManager() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = NewManager(logger.GetGlobalLogger())
	})
	return defaultManager
}

// register schedules c for its first sweep one interval from now.
// Idempotent: re-registering an already registered cache is a no-op.
func (m *Manager) register(c sweepable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(c) >= 0 {
		return
	}

	m.startLocked()

	r := &registration{
		cache:     c,
		nextSweep: time.Now().Add(c.SweepInterval()),
	}
	if m.insertLocked(r) {
		// New head deadline supersedes whatever the sweeper was
		// sleeping toward.
		m.signalLocked()
	}
}

// unregister drops c's registration if present. Emptying the schedule
// wakes the sweeper so it falls back to its idle sleep instead of
// waiting on a deadline that no longer exists.
func (m *Manager) unregister(c sweepable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(c)
	if i < 0 {
		return
	}
	m.regs = append(m.regs[:i], m.regs[i+1:]...)
	if len(m.regs) == 0 {
		m.signalLocked()
	}
}

// reschedule re-inserts c after a sweep with a fresh due time. If a
// concurrent Put already re-registered the cache, this is a no-op.
func (m *Manager) reschedule(c sweepable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(c) >= 0 {
		return
	}
	r := &registration{
		cache:     c,
		nextSweep: time.Now().Add(c.SweepInterval()),
	}
	if m.insertLocked(r) {
		m.signalLocked()
	}
}

// indexLocked returns the position of c's registration, or -1
func (m *Manager) indexLocked(c sweepable) int {
	for i, r := range m.regs {
		if r.cache == c {
			return i
		}
	}
	return -1
}

// insertLocked inserts r preserving ascending due-time order, with
// insertion order breaking ties. Reports whether r became the new head.
func (m *Manager) insertLocked(r *registration) bool {
	i := len(m.regs)
	for j, existing := range m.regs {
		if existing.nextSweep.After(r.nextSweep) {
			i = j
			break
		}
	}
	m.regs = append(m.regs, nil)
	copy(m.regs[i+1:], m.regs[i:])
	m.regs[i] = r
	return i == 0
}

// signalLocked wakes the sweep goroutine. The channel holds one pending
// wakeup; further signals coalesce into it.
func (m *Manager) signalLocked() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// startLocked launches the sweep goroutine once
func (m *Manager) startLocked() {
	if m.started {
		return
	}
	m.started = true
	routine.GoNamed(m.log, "cache-sweeper", m.run)
}

// run is the sweep loop. Each pass either flushes the registration at
// the head of the schedule (when due), or sleeps until the head's due
// time, a wake signal, or the idle ceiling, whichever comes first.
// Overdue registrations drain back to back without sleeping in between.
func (m *Manager) run() {
	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		m.mu.Lock()
		wait := idleWait
		var due sweepable
		if len(m.regs) > 0 {
			head := m.regs[0]
			if d := time.Until(head.nextSweep); d <= 0 {
				due = head.cache
				m.regs = m.regs[1:]
			} else {
				wait = d
			}
		}
		m.mu.Unlock()

		if due != nil {
			m.log.Debug("sweeping cache", zap.String("cache", due.Name()))
			due.Flush()
			// A cache emptied by its own sweep already unregistered
			// itself; only a still-populated cache goes back on the
			// schedule.
			if due.Len() > 0 {
				m.reschedule(due)
			}
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		// A wakeup is a control signal, never an error: the schedule
		// changed under us and the head must be re-examined.
		select {
		case <-timer.C:
		case <-m.wake:
		}
	}
}
