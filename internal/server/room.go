package server

import (
	"github.com/sirupsen/logrus"

	"github.com/Yamazak-mc/algo-cg/engine"
	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

// WaitingRoom seats players until enough have joined to start a match.
// Seats are granted in connection order; the room assigns player ids and
// announces arrivals to everyone already seated.
type WaitingRoom struct {
	log  *logrus.Entry
	size int

	assigner engine.IDAssigner
	seats    []*PlayerHandler
	byLink   map[link]*PlayerHandler
}

func newWaitingRoom(log *logrus.Entry, size int) *WaitingRoom {
	return &WaitingRoom{
		log:    log,
		size:   size,
		byLink: make(map[link]*PlayerHandler),
	}
}

// HandleMessage processes one client envelope received while waiting.
func (r *WaitingRoom) HandleMessage(l link, env protocol.Envelope[protocol.ClientEvent]) {
	if env.Kind != protocol.KindRequest {
		// Acknowledgements to room announcements need no action.
		return
	}
	if env.Event.Type != protocol.ClientRequestJoin {
		r.rejectRequest(l, env, "no match is running; send request_join first")
		return
	}

	if h := r.byLink[l]; h != nil {
		h.Respond(env, protocol.ErrorEvent("already seated"))
		return
	}
	if len(r.seats) >= r.size {
		r.rejectRequest(l, env, "room is full")
		l.Close("room is full")
		return
	}

	waiting := make([]engine.PlayerID, 0, len(r.seats))
	for _, h := range r.seats {
		waiting = append(waiting, h.ID)
	}

	h := newPlayerHandler(r.assigner.Assign(), l)
	r.seats = append(r.seats, h)
	r.byLink[l] = h

	info := protocol.NewJoinInfo(h.ID, waiting, uint32(r.size))
	h.Respond(env, protocol.JoinAcceptedEvent(info))
	for _, other := range r.seats {
		if other != h {
			other.Notify(protocol.PlayerJoinedEvent(info))
		}
	}
	r.log.WithFields(logrus.Fields{"player": h.ID, "seated": len(r.seats)}).Info("player joined")
}

// HandleLost frees a seat when its connection drops and tells everyone else.
func (r *WaitingRoom) HandleLost(l link) {
	h := r.byLink[l]
	if h == nil {
		return
	}
	delete(r.byLink, l)
	for i, seat := range r.seats {
		if seat == h {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			break
		}
	}
	for _, other := range r.seats {
		other.Notify(protocol.PlayerDisconnectedEvent(h.ID))
	}
	r.log.WithField("player", h.ID).Info("player left the waiting room")
}

// Full reports whether every seat is taken.
func (r *WaitingRoom) Full() bool {
	return len(r.seats) == r.size
}

// Handlers returns the seated players in join order.
func (r *WaitingRoom) Handlers() []*PlayerHandler {
	return r.seats
}

func (r *WaitingRoom) rejectRequest(l link, env protocol.Envelope[protocol.ClientEvent], reason string) {
	l.Send(protocol.Respond(env, protocol.ErrorEvent(reason)))
}
