package core

import (
	"errors"
	"time"
)

// ErrQueueOverflow is returned by NewJob once every job slot is taken.
// It is a configuration error: the queue is sized for a known set of jobs.
var ErrQueueOverflow = errors.New("job queue overflow")

// NothingPending is returned by RunDue when no job is queued.
const NothingPending = time.Duration(1<<63 - 1)

// JobFunc is a deferred callback. It runs to completion on the loop.
type JobFunc func()

// Job is one scheduler slot. A slot is pending at most once: scheduling it
// again replaces the previous due time and callback.
type Job struct {
	name    string
	slot    int
	due     Tick
	fn      JobFunc
	next    *Job
	pending bool
	batched bool // detached for the current RunDue pass
}

// Name returns the name given to NewJob.
func (j *Job) Name() string { return j.name }

// Slot returns the job's index in reservation order.
func (j *Job) Slot() int { return j.slot }

// Pending reports whether the job is queued.
func (j *Job) Pending() bool { return j.pending }

// Due returns the tick the job was last scheduled for.
func (j *Job) Due() Tick { return j.due }

// Scheduler is a cooperative timer queue of Jobs ordered by due time.
// It follows the sorted insert and dispatch loop of a Klipper-style
// sched_add_timer, with a fixed set of slots instead of caller-owned timers.
type Scheduler struct {
	tb    *TimeBase
	slots []*Job
	head  *Job
	batch []*Job
}

// NewScheduler creates a scheduler with room for capacity jobs.
func NewScheduler(tb *TimeBase, capacity int) *Scheduler {
	if capacity <= 0 {
		capacity = 1
	}
	return &Scheduler{
		tb:    tb,
		slots: make([]*Job, 0, capacity),
		batch: make([]*Job, 0, capacity),
	}
}

// NewJob reserves a slot. It fails with ErrQueueOverflow when the
// scheduler's capacity is exhausted; callers treat that as fatal at startup.
func (s *Scheduler) NewJob(name string) (*Job, error) {
	if len(s.slots) == cap(s.slots) {
		return nil, ErrQueueOverflow
	}
	j := &Job{name: name, slot: len(s.slots)}
	s.slots = append(s.slots, j)
	return j, nil
}

// Capacity returns the number of job slots.
func (s *Scheduler) Capacity() int { return cap(s.slots) }

// Now returns the scheduler's current tick.
func (s *Scheduler) Now() Tick { return s.tb.Now() }

// ScheduleAt registers fn to run on j no earlier than at, replacing any
// pending registration of j.
func (s *Scheduler) ScheduleAt(j *Job, at Tick, fn JobFunc) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if j.pending {
		s.unlink(j)
	}
	j.batched = false
	j.due = at
	j.fn = fn
	j.pending = true
	s.insert(j)

	RecordTiming(EvtJobSchedule, uint8(j.slot), at, 0, 0)
}

// ScheduleNow registers fn to run on j at the next RunDue.
func (s *Scheduler) ScheduleNow(j *Job, fn JobFunc) {
	s.ScheduleAt(j, s.tb.Now(), fn)
}

// Pending returns the number of queued jobs.
func (s *Scheduler) Pending() int {
	n := 0
	for j := s.head; j != nil; j = j.next {
		n++
	}
	return n
}

// RunDue dispatches every job due at the start of the call, in due order,
// and returns the time until the next queued job. Jobs scheduled by a
// callback are left for the next pass. Returns NothingPending if the queue
// is empty and 0 if a job is already due.
func (s *Scheduler) RunDue() time.Duration {
	state := disableInterrupts()
	now := s.tb.Now()
	for s.head != nil && s.head.due <= now {
		j := s.head
		s.head = j.next
		j.next = nil
		j.pending = false
		j.batched = true
		s.batch = append(s.batch, j)
	}
	restoreInterrupts(state)

	for _, j := range s.batch {
		// Rescheduled by an earlier callback in this pass.
		if !j.batched {
			continue
		}
		j.batched = false
		RecordTiming(EvtJobFire, uint8(j.slot), s.tb.Now(), uint32(j.due.Millis()), 0)
		j.fn()
	}
	s.batch = s.batch[:0]

	return s.untilNext()
}

func (s *Scheduler) untilNext() time.Duration {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s.head == nil {
		return NothingPending
	}
	d := s.head.due.Sub(s.tb.Now())
	if d < 0 {
		return 0
	}
	return d
}

// insert places j after every job due at or before it, so equal due times
// dispatch in scheduling order.
func (s *Scheduler) insert(j *Job) {
	if s.head == nil || j.due < s.head.due {
		j.next = s.head
		s.head = j
		return
	}

	cur := s.head
	for cur.next != nil && cur.next.due <= j.due {
		cur = cur.next
	}
	j.next = cur.next
	cur.next = j
}

func (s *Scheduler) unlink(j *Job) {
	if s.head == j {
		s.head = j.next
		j.next = nil
		return
	}
	for cur := s.head; cur != nil; cur = cur.next {
		if cur.next == j {
			cur.next = j.next
			j.next = nil
			return
		}
	}
}
