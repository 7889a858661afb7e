package engine

// eventQueue is the two-tier FIFO driving game progress. The sub queue holds
// board-change notifications that must reach players before the next main
// event; it always drains first. Within each tier, strict FIFO.
type eventQueue struct {
	main []GameEvent
	sub  []GameEvent
}

// popNext returns the next event to stage, sub queue first.
func (q *eventQueue) popNext() (GameEvent, bool) {
	if len(q.sub) > 0 {
		ev := q.sub[0]
		q.sub = q.sub[1:]
		return ev, true
	}
	if len(q.main) > 0 {
		ev := q.main[0]
		q.main = q.main[1:]
		return ev, true
	}
	return GameEvent{}, false
}

func (q *eventQueue) pushMain(ev GameEvent) {
	q.main = append(q.main, ev)
}

func (q *eventQueue) pushSub(ev GameEvent) {
	q.sub = append(q.sub, ev)
}
