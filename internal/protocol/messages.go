package protocol

import "github.com/Yamazak-mc/algo-cg/engine"

// ClientEventType discriminates client-to-server payloads.
type ClientEventType string

const (
	// ClientRequestJoin asks for a seat in the waiting room.
	ClientRequestJoin ClientEventType = "request_join"

	// ClientGameEventResponse answers a game event the server pushed.
	ClientGameEventResponse ClientEventType = "game_event_response"
)

// ClientEvent is a client-to-server payload.
type ClientEvent struct {
	Type ClientEventType `json:"type"`

	// GameEventResponse
	Response *engine.GameEvent `json:"response,omitempty"`
}

// RequestJoinEvent builds a seat request.
func RequestJoinEvent() ClientEvent {
	return ClientEvent{Type: ClientRequestJoin}
}

// GameEventResponse wraps the player's reply to a pushed game event.
func GameEventResponse(response engine.GameEvent) ClientEvent {
	return ClientEvent{Type: ClientGameEventResponse, Response: &response}
}

// ServerEventType discriminates server-to-client payloads.
type ServerEventType string

const (
	ServerRequestJoinAccepted ServerEventType = "request_join_accepted"
	ServerPlayerJoined        ServerEventType = "player_joined"
	ServerPlayerDisconnected  ServerEventType = "player_disconnected"
	ServerGameEvent           ServerEventType = "game_event"
	ServerShutdown            ServerEventType = "server_shutdown"
	ServerError               ServerEventType = "error"
)

// ServerEvent is a server-to-client payload.
type ServerEvent struct {
	Type ServerEventType `json:"type"`

	// RequestJoinAccepted, PlayerJoined
	Join *JoinInfo `json:"join,omitempty"`

	// PlayerDisconnected
	Player engine.PlayerID `json:"player,omitempty"`

	// GameEvent
	Event *engine.GameEvent `json:"event,omitempty"`

	// Error
	Message string `json:"message,omitempty"`
}

// JoinInfo tells a freshly seated player who they are, who was already
// waiting, and how many seats the room has.
type JoinInfo struct {
	PlayerID engine.PlayerID   `json:"playerId"`
	Waiting  []engine.PlayerID `json:"waiting,omitempty"`
	Position uint32            `json:"position"`
	RoomSize uint32            `json:"roomSize"`
}

// NewJoinInfo describes a seat grant. Position is 1-based join order.
func NewJoinInfo(id engine.PlayerID, waiting []engine.PlayerID, roomSize uint32) JoinInfo {
	return JoinInfo{
		PlayerID: id,
		Waiting:  waiting,
		Position: uint32(len(waiting)) + 1,
		RoomSize: roomSize,
	}
}

// JoinAcceptedEvent confirms a seat.
func JoinAcceptedEvent(info JoinInfo) ServerEvent {
	return ServerEvent{Type: ServerRequestJoinAccepted, Join: &info}
}

// PlayerJoinedEvent announces another player's arrival, carrying the same
// seat details the joining player received.
func PlayerJoinedEvent(info JoinInfo) ServerEvent {
	return ServerEvent{Type: ServerPlayerJoined, Join: &info}
}

// PlayerDisconnectedEvent announces that a player's connection dropped.
func PlayerDisconnectedEvent(id engine.PlayerID) ServerEvent {
	return ServerEvent{Type: ServerPlayerDisconnected, Player: id}
}

// GameEventPush wraps a game event already redacted for its recipient.
func GameEventPush(ev engine.GameEvent) ServerEvent {
	return ServerEvent{Type: ServerGameEvent, Event: &ev}
}

// ShutdownEvent tells the client the match is over and the server is done
// with this connection.
func ShutdownEvent() ServerEvent {
	return ServerEvent{Type: ServerShutdown}
}

// ErrorEvent reports a rejected message, typically an invalid decision the
// client should correct and resend.
func ErrorEvent(message string) ServerEvent {
	return ServerEvent{Type: ServerError, Message: message}
}
