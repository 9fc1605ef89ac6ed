package roomclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

func TestClient_GetRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Decodes the room", func(t *testing.T) {
		// Given: a room service that knows room-1
		room := entity.NewRoom("room-1", "alice", nil)
		require.NoError(t, room.Join("bob"))
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rooms/room-1", r.URL.Path)
			_ = json.NewEncoder(w).Encode(room)
		}))
		defer server.Close()

		// When: fetching it
		found, err := New(server.URL, time.Second).GetRoom(ctx, "room-1")

		// Then: members and turn come through
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, found.Members)
		assert.Equal(t, "alice", found.Turn)
	})

	t.Run("Missing room", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"kind":"NotFound","message":"room not found"}}`))
		}))
		defer server.Close()

		_, err := New(server.URL, time.Second).GetRoom(ctx, "room-1")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Plain 404 from a foreign server is Upstream", func(t *testing.T) {
		// Given: a url that points at something other than the room service
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		// When: fetching a room
		_, err := New(server.URL, time.Second).GetRoom(ctx, "room-1")

		// Then: the room is not declared missing
		require.ErrorIs(t, err, apperror.ErrUpstream)
		assert.NotErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Server failure is Upstream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := New(server.URL, time.Second).GetRoom(ctx, "room-1")

		require.ErrorIs(t, err, apperror.ErrUpstream)
	})

	t.Run("Slow service is cut off", func(t *testing.T) {
		// Given: a service slower than the client timeout
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		// When: fetching a room
		started := time.Now()
		_, err := New(server.URL, 50*time.Millisecond).GetRoom(ctx, "room-1")

		// Then: the call fails fast as Upstream
		require.ErrorIs(t, err, apperror.ErrUpstream)
		assert.Less(t, time.Since(started), time.Second)
	})

	t.Run("Unreachable service is Upstream", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := New(url, time.Second).GetRoom(ctx, "room-1")

		require.ErrorIs(t, err, apperror.ErrUpstream)
		assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	})
}

func TestClient_Lobby(t *testing.T) {
	ctx := context.Background()

	t.Run("Create user, list and join", func(t *testing.T) {
		// Given: a stub room service with one open room
		room := entity.NewRoom("room-1", "alice", nil)
		mux := http.NewServeMux()
		mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(entity.User{ID: "bot-1", Name: req["name"]})
		})
		mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "true", r.URL.Query().Get("joinable"))
			_ = json.NewEncoder(w).Encode([]*entity.Room{room})
		})
		mux.HandleFunc("POST /rooms/room-1/join", func(w http.ResponseWriter, _ *http.Request) {
			joined := room.Clone()
			_ = joined.Join("bot-1")
			_ = json.NewEncoder(w).Encode(joined)
		})
		server := httptest.NewServer(mux)
		defer server.Close()
		client := New(server.URL, time.Second)

		// When: the lobby calls run in order
		user, err := client.CreateUser(ctx, "bot")
		require.NoError(t, err)
		rooms, err := client.ListJoinable(ctx)
		require.NoError(t, err)
		joined, err := client.JoinRoom(ctx, rooms[0].ID, user.ID)

		// Then: the bot ends up in the room
		require.NoError(t, err)
		assert.Equal(t, "bot", user.Name)
		assert.Equal(t, []string{"alice", "bot-1"}, joined.Members)
	})

	t.Run("Full room keeps its kind", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"kind":"Conflict","message":"room is full"}}`))
		}))
		defer server.Close()

		_, err := New(server.URL, time.Second).JoinRoom(ctx, "room-1", "bot-1")

		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})
}
