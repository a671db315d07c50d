package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// task is a unit of scheduled work. A task with a positive interval is
// rescheduled after each run until cancelled.
type task struct {
	id       string
	runAt    time.Time
	interval time.Duration
	fn       func()
	index    int // index in the heap (for heap.Interface)
}

// taskHeap is a min-heap of tasks ordered by runAt
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].runAt.Before(h[j].runAt)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	n := len(*h)
	t := x.(*task)
	t.index = n
	*h = append(*h, t)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil // avoid memory leak
	t.index = -1   // for safety
	*h = old[0 : n-1]
	return t
}

// Scheduler runs callbacks at their due times off a min-heap, sleeping
// exactly until the next task. Recurring tasks drive the periodic
// aggregation and alert evaluation passes.
type Scheduler struct {
	heap    taskHeap
	mu      sync.Mutex
	wakeup  chan struct{}
	tasks   map[string]*task // for O(1) lookup by ID
	stopped bool
	stopCh  chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	s := &Scheduler{
		heap:   make(taskHeap, 0),
		wakeup: make(chan struct{}, 1),
		tasks:  make(map[string]*task),
		stopCh: make(chan struct{}),
	}
	heap.Init(&s.heap)
	return s
}

// Start starts the scheduler loop
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler gracefully; pending tasks are discarded
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
}

// Schedule runs fn once at the given time. Scheduling an existing ID
// replaces the previous task.
func (s *Scheduler) Schedule(id string, runAt time.Time, fn func()) error {
	return s.add(&task{id: id, runAt: runAt, fn: fn})
}

// Every runs fn repeatedly at the given interval until cancelled. The
// first run happens one interval from now.
func (s *Scheduler) Every(id string, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	return s.add(&task{id: id, runAt: time.Now().Add(interval), interval: interval, fn: fn})
}

func (s *Scheduler) add(t *task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	// Remove existing task with same ID if present
	if existing, ok := s.tasks[t.id]; ok {
		heap.Remove(&s.heap, existing.index)
		delete(s.tasks, t.id)
	}

	heap.Push(&s.heap, t)
	s.tasks[t.id] = t

	// Wake up the loop if this became the earliest task
	if s.heap[0] == t {
		select {
		case s.wakeup <- struct{}{}:
		default:
		}
	}

	return nil
}

// Cancel removes a scheduled task
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false
	}

	heap.Remove(&s.heap, t.index)
	delete(s.tasks, id)
	return true
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	for {
		s.mu.Lock()

		if s.stopped {
			s.mu.Unlock()
			return
		}

		var waitDuration time.Duration
		if s.heap.Len() == 0 {
			// No tasks, wait for a wakeup
			waitDuration = 24 * time.Hour
		} else {
			next := s.heap[0]
			waitDuration = time.Until(next.runAt)

			if waitDuration <= 0 {
				t := heap.Pop(&s.heap).(*task)
				delete(s.tasks, t.id)

				// Recurring tasks go straight back on the heap. The next
				// run is anchored to the previous due time so the cadence
				// does not drift; runs missed while behind schedule
				// collapse into one.
				if t.interval > 0 {
					nextRun := t.runAt.Add(t.interval)
					if nextRun.Before(time.Now()) {
						nextRun = time.Now().Add(t.interval)
					}
					replacement := &task{id: t.id, runAt: nextRun, interval: t.interval, fn: t.fn}
					heap.Push(&s.heap, replacement)
					s.tasks[t.id] = replacement
				}

				go t.fn()

				s.mu.Unlock()
				continue
			}
		}

		s.mu.Unlock()

		// Wait for either timeout, wakeup signal or stop
		timer := time.NewTimer(waitDuration)
		select {
		case <-timer.C:
			// Time to check for due tasks
		case <-s.wakeup:
			// New task added or existing task updated
			timer.Stop()
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

// Stats returns statistics about the scheduler
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	recurring := 0
	for _, t := range s.tasks {
		if t.interval > 0 {
			recurring++
		}
	}

	return Stats{
		ScheduledTasks: len(s.tasks),
		RecurringTasks: recurring,
	}
}

// Stats contains statistics about the scheduler
type Stats struct {
	ScheduledTasks int
	RecurringTasks int
}

var (
	ErrSchedulerStopped = &SchedulerError{"scheduler is stopped"}
	ErrInvalidInterval  = &SchedulerError{"interval must be positive"}
)

// SchedulerError represents a scheduler error
type SchedulerError struct {
	msg string
}

func (e *SchedulerError) Error() string {
	return e.msg
}
