package host

// A Queue collects host events.
//
// Producers may Post from any goroutine. Everything else, including
// the filter, runs on the consumer goroutine: events are moved from the
// producer channel into the pending list only by Pending and Wait.
type Queue struct {
	c       chan Event
	pending []Event
	filter  func(Event) bool
}

// NewQueue returns a queue that buffers up to n posted events
// before Post blocks.
func NewQueue(n int) *Queue {
	return &Queue{c: make(chan Event, n)}
}

// SetFilter installs f. Each event is passed to f once, when it is
// accepted into the pending list; events for which f returns false are
// dropped.
func (q *Queue) SetFilter(f func(Event) bool) {
	q.filter = f
}

// Post adds e to the queue.
func (q *Queue) Post(e Event) {
	q.c <- e
}

// Pending reports the number of accepted events not yet returned by Wait.
// If pump is set, events posted so far are accepted first.
func (q *Queue) Pending(pump bool) int {
	if pump {
		q.drain()
	}
	return len(q.pending)
}

// Wait returns the oldest pending event, blocking until one is posted.
func (q *Queue) Wait() Event {
	for len(q.pending) == 0 {
		q.accept(<-q.c)
	}
	e := q.pending[0]
	q.pending[0] = Event{}
	q.pending = q.pending[1:]
	return e
}

func (q *Queue) drain() {
	for {
		select {
		case e := <-q.c:
			q.accept(e)
		default:
			return
		}
	}
}

func (q *Queue) accept(e Event) {
	if q.filter != nil && !q.filter(e) {
		return
	}
	q.pending = append(q.pending, e)
}
