package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// Inbound actions.
const (
	ActionSubscribe = "subscribe"
	ActionPlace     = "place"
	ActionFire      = "fire"
	ActionSurrender = "surrender"
)

// Outbound events.
const (
	EventJoinAck          = "join-ack"
	EventMembershipUpdate = "membership-update"
	EventPlacementAck     = "placement-ack"
	EventFireResult       = "fire-result"
	EventTurnChange       = "turn-change"
	EventGameOver         = "game-over"
	EventSurrenderAck     = "surrender-ack"
	EventError            = "error"
)

// Message is the envelope for both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newMessage(action string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	return Message{Action: action, Payload: raw}, nil
}

type SubscribePayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type PlacePayload struct {
	RoomID   string      `json:"roomId"`
	PlayerID string      `json:"playerId"`
	ShipSpan entity.Span `json:"shipSpan"`
}

type FirePayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Coord    string `json:"coord"`
}

type SurrenderPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// ErrorFields is embedded into every outbound payload that can carry a failure.
type ErrorFields struct {
	Error string        `json:"error,omitempty"`
	Kind  apperror.Kind `json:"kind,omitempty"`
}

func errorFields(err error) ErrorFields {
	return ErrorFields{Error: apperror.PublicMessage(err), Kind: apperror.KindOf(err)}
}

type RosterPayload struct {
	RoomID   string   `json:"roomId"`
	Members  []string `json:"members,omitempty"`
	Turn     string   `json:"turn,omitempty"`
	PlayerID string   `json:"playerId,omitempty"`
	ErrorFields
}

type AckPayload struct {
	OK bool `json:"ok"`
	ErrorFields
}

type FireResultPayload struct {
	Shooter string            `json:"shooter"`
	Coord   string            `json:"coord"`
	Result  entity.ShotResult `json:"result,omitempty"`
	ErrorFields
}

type TurnChangePayload struct {
	NextTurn string `json:"nextTurn"`
}

type GameOverPayload struct {
	Winner      string `json:"winner"`
	Surrendered bool   `json:"surrendered,omitempty"`
}
