package core

// Queue is an explicit FIFO ring buffer of instructions with O(1)
// enqueue and dequeue. It is not safe for concurrent use: the queue is
// owned by exactly one logical actor at a time, matching the agent state
// ownership model.
type Queue struct {
	buf   []Instruction
	head  int
	count int
}

const minQueueCapacity = 8

// NewQueue creates a queue with at least the given initial capacity.
func NewQueue(capacity int) *Queue {
	if capacity < minQueueCapacity {
		capacity = minQueueCapacity
	}
	return &Queue{buf: make([]Instruction, capacity)}
}

// Len returns the number of pending instructions.
func (q *Queue) Len() int { return q.count }

// Enqueue appends an instruction at the tail.
func (q *Queue) Enqueue(in Instruction) {
	if q.count == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.count)%len(q.buf)] = in
	q.count++
}

// EnqueueAll appends instructions in slice order.
func (q *Queue) EnqueueAll(ins []Instruction) {
	for _, in := range ins {
		q.Enqueue(in)
	}
}

// Dequeue removes and returns the head instruction. The second return
// value is false when the queue is empty.
func (q *Queue) Dequeue() (Instruction, bool) {
	if q.count == 0 {
		return Instruction{}, false
	}
	in := q.buf[q.head]
	q.buf[q.head] = Instruction{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return in, true
}

// Peek returns the head instruction without removing it.
func (q *Queue) Peek() (Instruction, bool) {
	if q.count == 0 {
		return Instruction{}, false
	}
	return q.buf[q.head], true
}

// Snapshot returns the pending instructions in FIFO order as a defensive
// copy.
func (q *Queue) Snapshot() []Instruction {
	out := make([]Instruction, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

// Clone returns an independent copy of the queue preserving order.
func (q *Queue) Clone() *Queue {
	clone := NewQueue(q.count)
	clone.EnqueueAll(q.Snapshot())
	return clone
}

func (q *Queue) grow() {
	next := make([]Instruction, len(q.buf)*2)
	for i := 0; i < q.count; i++ {
		next[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = next
	q.head = 0
}
