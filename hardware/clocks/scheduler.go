package clocks

import (
	"container/heap"

	"github.com/avrxmega/xmsim/errors"
	"github.com/avrxmega/xmsim/logger"
)

// Result is what an Event's callback returns: either Stop (drop the
// event) or Requeue(n) (reschedule n ticks, in the event's own clock
// domain, from its previous tick).
type Result uint32

// Stop tells the scheduler to discard the event.
const Stop Result = 0

// Requeue tells the scheduler to reschedule the event n ticks from now,
// in the event's clock domain.
func Requeue(n uint32) Result { return Result(n) }

// Callback is invoked when an Event's absolute tick is reached.
type Callback func() Result

// Event is a single entry in the scheduler's queue. Callers own the
// Event's storage (the scheduler only ever holds a pointer into it) so
// that Unschedule can identify it later; spec.md's "arena index" idea is
// realised here simply as "the caller's own pointer is the handle".
type Event struct {
	Label    string
	Domain   Domain
	Priority int
	Callback Callback

	tick  uint64
	scale uint32
	index int
}

// NewEvent creates an Event ready to be passed to Scheduler.Schedule.
func NewEvent(label string, domain Domain, priority int, cb Callback) *Event {
	return &Event{Label: label, Domain: domain, Priority: priority, Callback: cb, index: -1}
}

// Tick returns the event's current absolute SYS tick. Exported for
// introspection by tests and debuggers; callbacks should not need it.
func (e *Event) Tick() uint64 { return e.tick }

// Scale returns the event's current clock-domain scale.
func (e *Event) Scale() uint32 { return e.scale }

type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].tick != h[j].tick {
		return h[i].tick < h[j].tick
	}
	return h[i].Priority < h[j].Priority
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	e := x.(*Event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.index = -1
	return e
}

var allDomains = [...]Domain{SYS, PER4, PER2, PER, CPU, ASY}

// Scheduler is the single min-heap priority queue that drives the whole
// device. It is not safe for concurrent use — the core is
// single-threaded and cooperative, see spec.md §5.
type Scheduler struct {
	scales      Scales
	heap        eventHeap
	now         uint64
	domainScale map[Domain]uint32
}

// NewScheduler creates a Scheduler whose domain scales are queried from
// scales (normally the CLK block).
func NewScheduler(scales Scales) *Scheduler {
	s := &Scheduler{scales: scales, domainScale: make(map[Domain]uint32, len(allDomains))}
	heap.Init(&s.heap)
	for _, d := range allDomains {
		s.domainScale[d] = scales.ClockScale(d)
	}
	return s
}

// Now returns the current SYS tick.
func (s *Scheduler) Now() uint64 { return s.now }

// Empty reports whether any event is scheduled. The core's invariant is
// that this is never true while the device is running.
func (s *Scheduler) Empty() bool { return len(s.heap) == 0 }

// Schedule arms e to fire ticks ticks from now, in e.Domain's scale.
// Per spec.md §4.5 the absolute tick snaps to the domain: scheduling at
// a non-zero point within the current domain tick still lands on the
// next domain boundary.
func (s *Scheduler) Schedule(e *Event, ticks uint32) {
	scale := s.scales.ClockScale(e.Domain)
	e.scale = scale
	e.tick = (s.now/uint64(scale) + uint64(ticks)) * uint64(scale)
	heap.Push(&s.heap, e)
}

// Unschedule removes e from the queue by identity. A no-op if e is not
// currently scheduled.
func (s *Scheduler) Unschedule(e *Event) {
	if e.index < 0 || e.index >= len(s.heap) || s.heap[e.index] != e {
		return
	}
	heap.Remove(&s.heap, e.index)
}

// Step advances the SYS tick to the earliest scheduled event and drains
// every event due at or before that tick, in ascending priority order
// for ties. Per spec.md §5, events scheduled or unscheduled by a
// callback during a Step are undefined; callers must not do that.
func (s *Scheduler) Step() {
	if len(s.heap) == 0 {
		return
	}
	s.now = s.heap[0].tick
	for len(s.heap) > 0 && s.heap[0].tick <= s.now {
		e := heap.Pop(&s.heap).(*Event)
		n := e.Callback()
		if n == Stop {
			continue
		}
		e.tick += uint64(n) * uint64(e.scale)
		heap.Push(&s.heap, e)
	}
}

// OnClockConfigChange rescales every scheduled event whose clock domain
// changed divisor since it was last (re)scheduled. Must be called while
// aligned to every changed domain's tick (spec.md §4.5, §5); an event
// found misaligned logs a RuntimeAnomaly and is rescaled with its
// remaining ticks rounded up rather than left inconsistent.
func (s *Scheduler) OnClockConfigChange() {
	newScaleOf := make(map[Domain]uint32, len(allDomains))
	changed := false
	for _, d := range allDomains {
		ns := s.scales.ClockScale(d)
		newScaleOf[d] = ns
		if ns != s.domainScale[d] {
			changed = true
		}
	}
	if !changed {
		return
	}

	for _, e := range s.heap {
		newScale := newScaleOf[e.Domain]
		if newScale == e.scale {
			continue
		}
		oldScale := e.scale
		delta := e.tick - s.now
		if delta%uint64(oldScale) != 0 {
			logger.Logf(logger.Allow, "sched", errors.New(errors.UnalignedClockConfigChange).Error()+" (event %s)", e.Label)
		}
		dt := (delta + uint64(oldScale) - 1) / uint64(oldScale)
		e.tick = s.now + dt*uint64(newScale)
		e.scale = newScale
	}
	heap.Init(&s.heap)

	for d, ns := range newScaleOf {
		s.domainScale[d] = ns
	}
}
