// Implements the pending schedule: vehicles that have not yet arrived,
// ordered by scheduled arrival time.

package sim

import (
	"container/heap"
	"fmt"
	"strings"
)

// Arrival is one entry of a generated schedule: a vehicle/visitor pair that
// will show up at Time. Arrivals are plain values so a schedule can be copied
// into several runs unchanged.
type Arrival struct {
	ID           string  `yaml:"id" json:"id"`
	Time         float64 `yaml:"time" json:"time"`                   // scheduled arrival, seconds
	Accessible   bool    `yaml:"accessible" json:"accessible"`       // visitor has reduced mobility
	ShopDuration float64 `yaml:"shop_duration" json:"shop_duration"` // seconds inside the building
}

// CloneSchedule returns an independent copy of a schedule.
func CloneSchedule(arrivals []Arrival) []Arrival {
	out := make([]Arrival, len(arrivals))
	copy(out, arrivals)
	return out
}

// ValidateSchedule rejects schedules a run cannot execute.
func ValidateSchedule(arrivals []Arrival) error {
	seen := make(map[string]bool, len(arrivals))
	for i, a := range arrivals {
		if a.ID == "" {
			return fmt.Errorf("arrival[%d]: empty id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("arrival[%d]: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
		if err := validateFiniteNonNegative(fmt.Sprintf("arrival[%d].time", i), a.Time); err != nil {
			return err
		}
		if err := validateFiniteNonNegative(fmt.Sprintf("arrival[%d].shop_duration", i), a.ShopDuration); err != nil {
			return err
		}
	}
	return nil
}

// PendingQueue implements heap.Interface and orders vehicles by
// (scheduledArrival, seq). seq is assigned on every push, so vehicles that
// share an arrival time leave in push order and a requeued vehicle goes
// behind entries already waiting for the same instant.
type PendingQueue struct {
	items   []*Vehicle
	nextSeq uint64
}

func (pq *PendingQueue) Len() int { return len(pq.items) }

func (pq *PendingQueue) Less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.scheduledArrival != b.scheduledArrival {
		return a.scheduledArrival < b.scheduledArrival
	}
	return a.seq < b.seq
}

func (pq *PendingQueue) Swap(i, j int) { pq.items[i], pq.items[j] = pq.items[j], pq.items[i] }

func (pq *PendingQueue) Push(x any) {
	pq.items = append(pq.items, x.(*Vehicle))
}

func (pq *PendingQueue) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	pq.items = old[0 : n-1]
	return item
}

// Schedule adds a vehicle to the queue.
func (pq *PendingQueue) Schedule(v *Vehicle) {
	if v == nil {
		panic("Schedule: vehicle must not be nil")
	}
	v.seq = pq.nextSeq
	pq.nextSeq++
	heap.Push(pq, v)
}

// Peek returns the earliest vehicle without removing it, or nil.
func (pq *PendingQueue) Peek() *Vehicle {
	if len(pq.items) == 0 {
		return nil
	}
	return pq.items[0]
}

// PopDue removes and returns the earliest vehicle if it is due at now, or nil.
func (pq *PendingQueue) PopDue(now float64) *Vehicle {
	next := pq.Peek()
	if next == nil || next.scheduledArrival > now {
		return nil
	}
	return heap.Pop(pq).(*Vehicle)
}

// Ordered returns the queued vehicles in promotion order. The queue is not modified.
func (pq *PendingQueue) Ordered() []*Vehicle {
	tmp := &PendingQueue{items: make([]*Vehicle, len(pq.items))}
	copy(tmp.items, pq.items)
	out := make([]*Vehicle, 0, len(pq.items))
	for tmp.Len() > 0 {
		out = append(out, heap.Pop(tmp).(*Vehicle))
	}
	return out
}

func (pq *PendingQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range pq.Ordered() {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s@%.1f", v.id, v.scheduledArrival)
	}
	sb.WriteString("]")
	return sb.String()
}
