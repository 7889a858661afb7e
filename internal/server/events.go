package server

import "github.com/Yamazak-mc/algo-cg/internal/protocol"

// link is one client connection as the core loop sees it: an outbound queue
// plus a way to force-close. The websocket transport and the in-memory test
// transport both implement it.
type link interface {
	// Send queues an envelope for delivery. It reports false once the
	// connection is no longer writable.
	Send(env protocol.Envelope[protocol.ServerEvent]) bool

	// Close tears the connection down with a reason shown to the client.
	Close(reason string)
}

// coreMsg is a message delivered to the core loop. Exactly the types below
// flow on the channel.
type coreMsg interface{}

// inboundMsg carries one decoded client envelope.
type inboundMsg struct {
	from link
	env  protocol.Envelope[protocol.ClientEvent]
}

// connLostMsg reports that a connection's read side ended.
type connLostMsg struct {
	from link
	err  error
}
