package server

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

const (
	outboundQueueSize = 32
	writeTimeout      = 10 * time.Second
)

// wsLink adapts a websocket connection to the link interface. The write pump
// is the only goroutine touching the socket's write side; the core loop just
// queues envelopes.
type wsLink struct {
	ws  *websocket.Conn
	out chan protocol.Envelope[protocol.ServerEvent]

	// done is closed when the write pump exits; Send fails afterwards.
	done chan struct{}
}

func newWSLink(ws *websocket.Conn) *wsLink {
	return &wsLink{
		ws:   ws,
		out:  make(chan protocol.Envelope[protocol.ServerEvent], outboundQueueSize),
		done: make(chan struct{}),
	}
}

// Send queues an envelope for the write pump. A client too slow to drain its
// queue counts as unwritable.
func (l *wsLink) Send(env protocol.Envelope[protocol.ServerEvent]) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.out <- env:
		return true
	default:
		return false
	}
}

// Close tears the connection down.
func (l *wsLink) Close(reason string) {
	l.ws.Close(websocket.StatusNormalClosure, reason)
}

// writePump drains the outbound queue onto the socket.
func (l *wsLink) writePump(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.ws.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case env := <-l.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, l.ws, env)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// readPump decodes inbound envelopes and forwards them to the core loop. It
// returns when the connection drops or fails to parse.
func (l *wsLink) readPump(ctx context.Context, core chan<- coreMsg) error {
	for {
		var env protocol.Envelope[protocol.ClientEvent]
		if err := wsjson.Read(ctx, l.ws, &env); err != nil {
			return err
		}
		select {
		case core <- inboundMsg{from: l, env: env}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
