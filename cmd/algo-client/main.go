// Command algo-client is a terminal client for the match server. It joins,
// narrates every game event, and prompts on the player's own decisions.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Yamazak-mc/algo-cg/engine"
	"github.com/Yamazak-mc/algo-cg/internal/protocol"
)

// errMatchOver ends the read loop after a server shutdown notice.
var errMatchOver = errors.New("match over")

type client struct {
	ws    *websocket.Conn
	ids   protocol.IDSource
	inbox *protocol.Inbox[protocol.ServerEvent]
	in    *bufio.Reader

	me     engine.PlayerID
	myTurn bool
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "server websocket URL")
	flag.Parse()

	ctx := context.Background()
	ws, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer ws.Close(websocket.StatusNormalClosure, "bye")

	c := &client{
		ws:    ws,
		inbox: protocol.NewInbox[protocol.ServerEvent](),
		in:    bufio.NewReader(os.Stdin),
	}
	if err := c.run(ctx); err != nil && !errors.Is(err, errMatchOver) {
		fmt.Fprintf(os.Stderr, "connection lost: %v\n", err)
		os.Exit(1)
	}
}

func (c *client) run(ctx context.Context) error {
	if err := c.join(ctx); err != nil {
		return err
	}
	for {
		var env protocol.Envelope[protocol.ServerEvent]
		if err := wsjson.Read(ctx, c.ws, &env); err != nil {
			return err
		}
		if err := c.inbox.Put(env); err != nil {
			fmt.Printf("!! %v\n", err)
			continue
		}
		for {
			req, ok := c.inbox.FindRequest(func(protocol.ServerEvent) bool { return true })
			if !ok {
				break
			}
			if err := c.handle(ctx, req); err != nil {
				return err
			}
		}
	}
}

// join requests a seat and waits for the matching response.
func (c *client) join(ctx context.Context) error {
	req := protocol.Request(c.ids.Next(), protocol.RequestJoinEvent())
	if err := wsjson.Write(ctx, c.ws, req); err != nil {
		return err
	}
	for {
		var env protocol.Envelope[protocol.ServerEvent]
		if err := wsjson.Read(ctx, c.ws, &env); err != nil {
			return err
		}
		if err := c.inbox.Put(env); err != nil {
			return err
		}
		resp, ok := c.inbox.TakeResponse(req.ID)
		if !ok {
			continue
		}
		switch resp.Event.Type {
		case protocol.ServerRequestJoinAccepted:
			c.me = resp.Event.Join.PlayerID
			fmt.Printf("joined as player %d", c.me)
			if len(resp.Event.Join.Waiting) > 0 {
				fmt.Printf(", waiting: %v", resp.Event.Join.Waiting)
			} else {
				fmt.Print(", waiting for an opponent")
			}
			fmt.Println()
			return nil
		case protocol.ServerError:
			return fmt.Errorf("join rejected: %s", resp.Event.Message)
		default:
			return fmt.Errorf("unexpected join reply %q", resp.Event.Type)
		}
	}
}

func (c *client) handle(ctx context.Context, req protocol.Envelope[protocol.ServerEvent]) error {
	switch req.Event.Type {
	case protocol.ServerPlayerJoined:
		if req.Event.Join != nil {
			fmt.Printf("player %d joined (%d/%d seats taken)\n",
				req.Event.Join.PlayerID, req.Event.Join.Position, req.Event.Join.RoomSize)
		}
	case protocol.ServerPlayerDisconnected:
		fmt.Printf("player %d disconnected\n", req.Event.Player)
	case protocol.ServerError:
		fmt.Printf("!! %s\n", req.Event.Message)
	case protocol.ServerShutdown:
		fmt.Println("match over, server closing")
		return errMatchOver
	case protocol.ServerGameEvent:
		ev := *req.Event.Event
		c.narrate(ev)
		resp := c.decide(ev)
		return wsjson.Write(ctx, c.ws, protocol.Respond(req, protocol.GameEventResponse(resp)))
	}
	return nil
}

func (c *client) narrate(ev engine.GameEvent) {
	switch ev.Type {
	case engine.EventGameStarted:
		fmt.Printf("game started, %d cards in the talon\n", ev.Talon.CardsRemaining)
	case engine.EventTurnOrderDetermined:
		fmt.Printf("turn order: %v\n", ev.TurnOrder)
	case engine.EventCardDistributed:
		fmt.Printf("card dealt to player %d\n", ev.Player)
	case engine.EventTurnStarted:
		c.myTurn = ev.Player == c.me
		if c.myTurn {
			fmt.Println("-- your turn --")
		} else {
			fmt.Printf("-- player %d's turn --\n", ev.Player)
		}
	case engine.EventTurnPlayerDrewCard:
		fmt.Println("turn player draws a card")
	case engine.EventNoCardsLeft:
		fmt.Println("the talon is empty")
	case engine.EventBoardChanged:
		c.narrateChange(*ev.Change)
	case engine.EventAttackTargetSelected:
		fmt.Printf("target: card %d\n", *ev.TargetIdx)
	case engine.EventNumberGuessed:
		fmt.Printf("guess: %d\n", *ev.Number)
	case engine.EventAttackSucceeded:
		fmt.Println("the guess was right")
	case engine.EventAttackFailed:
		fmt.Println("the guess was wrong")
	case engine.EventAttackOrStayDecided:
		if *ev.Attack {
			fmt.Println("the attack continues")
		} else {
			fmt.Println("the attacker stays")
		}
	case engine.EventAttackedPlayerLost:
		fmt.Println("all cards revealed, attacked player loses")
	case engine.EventGameEnded:
		fmt.Println("game ended")
	case engine.EventTurnEnded:
		fmt.Println("turn ended")
	}
}

func (c *client) narrateChange(ch engine.BoardChange) {
	owner := "opponent's"
	if ch.Player == c.me {
		owner = "your"
	}
	switch ch.Type {
	case engine.ChangeCardMoved:
		switch ch.Movement.Kind {
		case engine.MoveTalonToField:
			fmt.Printf("%s field gains %s at position %d\n", owner, ch.Card, ch.Movement.InsertAt)
		case engine.MoveTalonToAttacker:
			fmt.Printf("%s attacker card is %s\n", owner, ch.Card)
		case engine.MoveAttackerToField:
			fmt.Printf("%s attacker card joins the field at position %d\n", owner, ch.Movement.InsertAt)
		}
	case engine.ChangeCardRevealed:
		fmt.Printf("%s card is revealed: %s\n", owner, ch.Card)
	}
}

// decide produces the response to a pushed game event, prompting on the
// player's own decisions.
func (c *client) decide(ev engine.GameEvent) engine.GameEvent {
	if !ev.IsDecisionRequired() || !c.myTurn {
		return engine.RespOkEvent()
	}
	switch ev.Type {
	case engine.EventAttackTargetSelectionRequired:
		idx := c.promptUint(fmt.Sprintf("attack player %d, target card index: ", ev.TargetPlayer), 32)
		return engine.AttackTargetSelectedEvent(uint32(idx))
	case engine.EventNumberGuessRequired:
		n := c.promptUint("guess the number: ", 8)
		return engine.NumberGuessedEvent(engine.CardNumber(n))
	case engine.EventAttackOrStayDecisionRequired:
		return engine.AttackOrStayDecidedEvent(c.promptYesNo("attack again? [y/n]: "))
	}
	return engine.RespOkEvent()
}

// promptUint reads a number fitting in bitSize bits, re-prompting on junk
// or overflow rather than truncating.
func (c *client) promptUint(prompt string, bitSize int) uint64 {
	for {
		fmt.Print(prompt)
		line, err := c.in.ReadString('\n')
		if err != nil {
			return 0
		}
		n, err := strconv.ParseUint(strings.TrimSpace(line), 10, bitSize)
		if err != nil {
			fmt.Printf("enter a number between 0 and %d\n", uint64(1)<<bitSize-1)
			continue
		}
		return n
	}
}

func (c *client) promptYesNo(prompt string) bool {
	for {
		fmt.Print(prompt)
		line, err := c.in.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Println("answer y or n")
	}
}
