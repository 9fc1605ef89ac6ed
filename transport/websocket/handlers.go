package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

func decodePayload(message *Message, target any) error {
	if len(message.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", apperror.ErrInvalidInput)
	}

	if err := json.Unmarshal(message.Payload, target); err != nil {
		return fmt.Errorf("%w: %s payload: %w", apperror.ErrInvalidInput, message.Action, err)
	}

	return nil
}

func (that *Server) handleSubscribe(ctx context.Context, client *Client, message *Message) error {
	log := that.logger.With("method", "handleSubscribe")

	var payload SubscribePayload
	if err := decodePayload(message, &payload); err != nil {
		that.send(client, EventJoinAck, RosterPayload{ErrorFields: errorFields(err)})
		return nil
	}

	roster, err := that.engine.Roster(ctx, payload.RoomID, payload.PlayerID)
	if err != nil {
		that.send(client, EventJoinAck, RosterPayload{RoomID: payload.RoomID, ErrorFields: errorFields(err)})
		if !apperror.IsDomain(err) {
			return fmt.Errorf("failed to load roster: %w", err)
		}
		return nil
	}

	that.hub.Subscribe(payload.RoomID, client)

	that.send(client, EventJoinAck, RosterPayload{
		RoomID:  roster.RoomID,
		Members: roster.Members,
		Turn:    roster.Turn,
	})
	that.broadcast(payload.RoomID, EventMembershipUpdate, RosterPayload{
		RoomID:   roster.RoomID,
		Members:  roster.Members,
		Turn:     roster.Turn,
		PlayerID: payload.PlayerID,
	}, client)

	log.Info("player subscribed", "room_id", payload.RoomID, "player_id", payload.PlayerID)

	return nil
}

// handlePlace only ever answers the caller so the opponent never learns the ship position.
func (that *Server) handlePlace(ctx context.Context, client *Client, message *Message) error {
	var payload PlacePayload
	if err := decodePayload(message, &payload); err != nil {
		that.send(client, EventPlacementAck, AckPayload{ErrorFields: errorFields(err)})
		return nil
	}

	if err := that.engine.Place(ctx, payload.RoomID, payload.PlayerID, payload.ShipSpan); err != nil {
		that.send(client, EventPlacementAck, AckPayload{ErrorFields: errorFields(err)})
		if !apperror.IsDomain(err) {
			return fmt.Errorf("failed to place: %w", err)
		}
		return nil
	}

	that.send(client, EventPlacementAck, AckPayload{OK: true})

	return nil
}

func (that *Server) handleFire(ctx context.Context, client *Client, message *Message) error {
	var payload FirePayload
	if err := decodePayload(message, &payload); err != nil {
		that.send(client, EventFireResult, FireResultPayload{ErrorFields: errorFields(err)})
		return nil
	}

	// events are queued inside the commit so every subscriber sees shots in turn order
	_, err := that.engine.FireAndPublish(ctx, payload.RoomID, payload.PlayerID, payload.Coord, func(outcome entity.FireOutcome) {
		that.broadcast(payload.RoomID, EventFireResult, FireResultPayload{
			Shooter: payload.PlayerID,
			Coord:   outcome.Coord,
			Result:  outcome.Result,
		}, nil)

		if outcome.GameOver {
			that.broadcast(payload.RoomID, EventGameOver, GameOverPayload{Winner: outcome.Winner}, nil)
			return
		}

		that.broadcast(payload.RoomID, EventTurnChange, TurnChangePayload{NextTurn: outcome.NextTurn}, nil)
	})
	if err != nil {
		that.send(client, EventFireResult, FireResultPayload{
			Shooter:     payload.PlayerID,
			Coord:       payload.Coord,
			ErrorFields: errorFields(err),
		})
		if !apperror.IsDomain(err) {
			return fmt.Errorf("failed to fire: %w", err)
		}
		return nil
	}

	return nil
}

func (that *Server) handleSurrender(ctx context.Context, client *Client, message *Message) error {
	var payload SurrenderPayload
	if err := decodePayload(message, &payload); err != nil {
		that.send(client, EventSurrenderAck, AckPayload{ErrorFields: errorFields(err)})
		return nil
	}

	_, err := that.engine.SurrenderAndPublish(ctx, payload.RoomID, payload.PlayerID, func(winnerID string) {
		that.broadcast(payload.RoomID, EventGameOver, GameOverPayload{Winner: winnerID, Surrendered: true}, nil)
	})
	if err != nil {
		that.send(client, EventSurrenderAck, AckPayload{ErrorFields: errorFields(err)})
		if !apperror.IsDomain(err) {
			return fmt.Errorf("failed to surrender: %w", err)
		}
		return nil
	}

	return nil
}
