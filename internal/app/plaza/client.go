/*
Package plaza contains the core logic for plaza viewing sessions: presenting
newly seen visitors to a viewer one at a time and streaming the result.

This file defines the Client struct, the WebSocket connection attached to one
viewing session. It translates the session's event stream into frames for the
browser and tears the session down when the connection drops.
*/
package plaza

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"plaza/internal/app/user"
	"plaza/internal/pkg/logx"
)

const (
	// timeout for writing a frame to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping frames.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size of an inbound frame. Viewing sessions are
	// server-push; clients only ever send control traffic.
	maxMessageSize = 512
)

// Client binds a WebSocket connection to a viewing session.
type Client struct {
	// session is the sequencer this connection watches.
	session *Session

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	// viewer is the user watching the plaza.
	viewer user.Snapshot

	// send queues outbound frames for the write pump.
	send chan []byte

	// structured logger with client and session context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an established connection and session.
func NewClient(session *Session, wsConn *websocket.Conn, viewer user.Snapshot) *Client {
	clientLogger := logx.Logger().With().
		Str("viewer_id", viewer.ID).
		Str("session_id", session.ID).
		Logger()

	return &Client{
		session: session,
		conn:    wsConn,
		viewer:  viewer,
		send:    make(chan []byte, 64),
		logger:  clientLogger,
	}
}

// SendInitData queues the initial frame: the viewer plus today's roster.
func (c *Client) SendInitData(roster []user.Snapshot) error {
	return c.queueMessage(NewMessage(TypeInitData, InitDataPayload{
		CurrentUser: c.viewer,
		Visitors:    roster,
	}))
}

// PumpEvents translates session events into outbound frames until the session
// ends, then closes the send queue so the write pump finishes.
func (c *Client) PumpEvents() {
	defer close(c.send)

	for event := range c.session.Events() {
		var msg Message

		switch event.Type {
		case EventVisitorActive:
			msg = NewMessage(TypeVisitorActive, VisitorPayload{Visitor: *event.Visitor})

		case EventEncounterResult:
			msg = NewMessage(TypeEncounterResult, OutcomePayload{
				XPGained:  event.Outcome.XPGained,
				LeveledUp: event.Outcome.LeveledUp,
			})

		case EventVisitorCleared:
			msg = NewMessage(TypeVisitorCleared, nil)

		default:
			c.logger.Warn().Str("event_type", string(event.Type)).Msg("Unknown session event, skipping.")
			continue
		}

		if err := c.queueMessage(msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to queue session event for client.")
		}
	}
}

// queueMessage marshals and queues one frame without blocking.
func (c *Client) queueMessage(msg Message) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling message for client")
		return err
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return errSendQueueFull
	}
}

var errSendQueueFull = errors.New("client send queue full")

// ReadPump consumes the connection until it drops, keeping the Pong deadline
// fresh. Inbound frames carry no application data and are discarded. When the
// read side ends, the session is stopped and the connection closed.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}
	}
}

// cleanupOnDisconnect tears the viewing session down once the read side ends.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.session.Stop()

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// WritePump drains the send queue to the connection and keeps the heartbeat
// going. Exits when the send queue closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one frame, or the close frame when the queue has
// been closed. Returns false when the pump should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends the heartbeat Ping. Returns false on write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
