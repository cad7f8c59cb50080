// Package scheduler fires cooldown expiry events from a min-heap of deadlines.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidExpiry = errors.New("scheduler: invalid expiry time")
	ErrStopped       = errors.New("scheduler: stopped")
)

// CooldownKey addresses one subobjective cooldown window.
type CooldownKey struct {
	ObjectiveID    string
	PhaseID        string
	SubObjectiveID string
}

type ExpiryEvent struct {
	Key       CooldownKey
	ExpiresAt time.Time
}

type queueItem struct {
	event ExpiryEvent
	gen   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].event.ExpiresAt.Before(pq[j].event.ExpiresAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Scheduler holds at most one live deadline per key. Replaced and cancelled
// entries stay in the heap until they surface and are discarded.
type Scheduler struct {
	mu      sync.Mutex
	queue   priorityQueue
	live    map[CooldownKey]uint64
	nextGen uint64
	out     chan ExpiryEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func New(bufferSize int) *Scheduler {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Scheduler{
		queue:  make(priorityQueue, 0),
		live:   make(map[CooldownKey]uint64),
		out:    make(chan ExpiryEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (s *Scheduler) C() <-chan ExpiryEvent {
	return s.out
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	heap.Init(&s.queue)
	go s.loop()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

// Schedule registers ev, replacing any pending deadline for the same key.
func (s *Scheduler) Schedule(ev ExpiryEvent) error {
	if ev.ExpiresAt.IsZero() {
		return ErrInvalidExpiry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}

	s.nextGen++
	s.live[ev.Key] = s.nextGen
	heap.Push(&s.queue, queueItem{event: ev, gen: s.nextGen})
	s.signalWakeup()
	return nil
}

// Cancel drops the pending deadline for key, if any.
func (s *Scheduler) Cancel(key CooldownKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, key)
}

// CancelObjective drops every pending deadline of one objective.
func (s *Scheduler) CancelObjective(objectiveID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.live {
		if key.ObjectiveID == objectiveID {
			delete(s.live, key)
		}
	}
}

// Pending is the number of live deadlines.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *Scheduler) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)
	defer close(s.out)

	var timer *time.Timer
	for {
		next, hasNext := s.peek()
		if !hasNext {
			select {
			case <-s.wakeup:
				continue
			case <-s.stopCh:
				return
			}
		}

		wait := time.Until(next.ExpiresAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := s.popDue(time.Now())
			for _, ev := range due {
				select {
				case s.out <- ev:
				default:
					atomic.AddUint64(&s.dropped, 1)
				}
			}
		case <-s.wakeup:
			continue
		case <-s.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (s *Scheduler) signalWakeup() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// peek discards dead entries at the top of the heap before reporting the next
// live deadline.
func (s *Scheduler) peek() (ExpiryEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) > 0 {
		top := s.queue[0]
		if s.live[top.event.Key] == top.gen {
			return top.event, true
		}
		heap.Pop(&s.queue)
	}
	return ExpiryEvent{}, false
}

func (s *Scheduler) popDue(now time.Time) []ExpiryEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ExpiryEvent, 0)
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.event.ExpiresAt.After(now) {
			break
		}
		heap.Pop(&s.queue)
		if s.live[next.event.Key] != next.gen {
			continue
		}
		delete(s.live, next.event.Key)
		out = append(out, next.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
