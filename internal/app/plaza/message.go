/*
Package plaza contains the core logic for plaza viewing sessions: presenting
newly seen visitors to a viewer one at a time and streaming the result.

This file defines the WebSocket message envelope and payload types exchanged
with the presentation layer.
*/
package plaza

import (
	"time"

	"plaza/internal/app/user"
	"plaza/internal/pkg/randx"
)

// MessageType labels an outbound session message.
type MessageType string

const (
	// TypeInitData carries the viewer and today's roster right after connect.
	TypeInitData MessageType = "INIT_DATA"

	// TypeVisitorActive announces the visitor now occupying the display slot.
	TypeVisitorActive MessageType = "VISITOR_ACTIVE"

	// TypeEncounterResult carries the XP outcome for the active visitor.
	TypeEncounterResult MessageType = "ENCOUNTER_RESULT"

	// TypeVisitorCleared announces that the display slot was vacated.
	TypeVisitorCleared MessageType = "VISITOR_CLEARED"

	// TypeError carries an application error to the client.
	TypeError MessageType = "ERROR"
)

// Message is the envelope for every WebSocket frame the session sends.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// NewMessage stamps a payload with an id and timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		ID:        randx.EventID(),
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// InitDataPayload is the first frame after connect.
type InitDataPayload struct {
	CurrentUser user.Snapshot   `json:"currentUser"`
	Visitors    []user.Snapshot `json:"visitors"`
}

// VisitorPayload wraps the snapshot of the visitor being presented.
type VisitorPayload struct {
	Visitor user.Snapshot `json:"visitor"`
}

// OutcomePayload reports the encounter reward for the active visitor.
type OutcomePayload struct {
	XPGained  int  `json:"xpGained"`
	LeveledUp bool `json:"leveledUp"`
}

// ErrorPayload carries an error code and message to the client.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
