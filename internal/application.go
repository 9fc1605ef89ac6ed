package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/battleship-backend/internal/config"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
	"github.com/rocketscienceinc/battleship-backend/internal/repository/storage"
	"github.com/rocketscienceinc/battleship-backend/internal/service"
	"github.com/rocketscienceinc/battleship-backend/internal/transport/gameclient"
	"github.com/rocketscienceinc/battleship-backend/internal/transport/roomclient"
	"github.com/rocketscienceinc/battleship-backend/internal/usecase"
	"github.com/rocketscienceinc/battleship-backend/transport/rest"
	"github.com/rocketscienceinc/battleship-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type roomService struct {
	registry *usecase.RoomRegistry
	cleanup  func()
}

// RunApp - runs the services selected by conf.Mode until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	var rooms *roomService
	if conf.Mode == config.ModeAll || conf.Mode == config.ModeRoom {
		var err error
		rooms, err = startRoomService(ctx, group, logger, conf)
		if err != nil {
			return err
		}
		defer rooms.cleanup()
	}

	if conf.Mode == config.ModeAll || conf.Mode == config.ModeGame {
		if err := startGameService(ctx, group, logger, conf, rooms); err != nil {
			return err
		}
	}

	if conf.Mode == config.ModeBot {
		startBot(ctx, group, logger, conf)
	}

	log.Info("application started", "mode", conf.Mode)

	if err := group.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("application context canceled, shutting down")

	return nil
}

func startRoomService(ctx context.Context, group *errgroup.Group, logger *slog.Logger, conf *config.Config) (*roomService, error) {
	log := logger.With("component", "room-service")

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite storage: %w", err)
	}

	if err = sqliteStorage.Init(ctx); err != nil {
		_ = sqliteStorage.Close()
		return nil, fmt.Errorf("could not init sqlite storage: %w", err)
	}

	closers := []func() error{sqliteStorage.Close}
	cleanup := func() {
		for _, closeFn := range closers {
			if closeErr := closeFn(); closeErr != nil {
				log.Error("could not close storage", "error", closeErr)
			}
		}
	}

	roomRepo := repository.NewMemoryRoomRepository()
	if conf.RoomService.Storage == config.StorageRedis {
		redisAddr := conf.Redis.GetRedisAddr()
		if conf.Redis.Host == "" {
			cleanup()
			return nil, ErrAddrNotFound
		}

		redisStorage, redisErr := storage.NewRedisStorage(ctx, redisAddr)
		if redisErr != nil {
			cleanup()
			return nil, fmt.Errorf("could not connect to redis storage: %w", redisErr)
		}
		closers = append(closers, redisStorage.Close)

		roomRepo = repository.NewRedisRoomRepository(redisStorage.Connection)
	}

	users := usecase.NewUserDirectory(logger, repository.NewUserRepository(sqliteStorage.Connection))
	registry := usecase.NewRoomRegistry(logger, roomRepo, users)
	handler := rest.NewRoomRouter(logger, users, registry)

	group.Go(func() error {
		log.Info("starting HTTP server", "port", conf.RoomService.HTTPPort, "storage", conf.RoomService.Storage)
		return rest.Start(ctx, conf.RoomService.HTTPPort, handler)
	})

	return &roomService{registry: registry, cleanup: cleanup}, nil
}

func startGameService(ctx context.Context, group *errgroup.Group, logger *slog.Logger, conf *config.Config, rooms *roomService) error {
	log := logger.With("component", "game-service")

	var source interface {
		GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	}

	switch {
	case conf.RoomService.URL != "":
		source = roomclient.New(conf.RoomService.URL, conf.GameService.UpstreamTimeout)
	case rooms != nil:
		source = rooms.registry
	default:
		return errors.New("game service needs room-service.url or a local room service")
	}

	engine := usecase.NewGameEngine(logger, source, gridOf(conf), conf.GameService.UpstreamTimeout)
	channel := websocket.New(logger, engine)
	handler := rest.NewGameRouter(logger, engine, channel)

	group.Go(func() error {
		log.Info("starting HTTP server", "port", conf.GameService.HTTPPort, "remote_rooms", conf.RoomService.URL != "")
		return rest.Start(ctx, conf.GameService.HTTPPort, handler)
	})

	return nil
}

func startBot(ctx context.Context, group *errgroup.Group, logger *slog.Logger, conf *config.Config) {
	log := logger.With("component", "bot")

	bot := service.NewBotService(
		log,
		roomclient.New(conf.RoomService.URL, conf.GameService.UpstreamTimeout),
		gameclient.New(conf.GameService.URL, conf.GameService.UpstreamTimeout),
		gridOf(conf),
		conf.Bot.Name,
		conf.Bot.PollInterval,
		conf.Bot.ReadyTimeout,
	)

	group.Go(func() error {
		log.Info("bot is looking for rooms", "room_service", conf.RoomService.URL, "game_service", conf.GameService.URL)
		return bot.Run(ctx)
	})
}

func gridOf(conf *config.Config) entity.Grid {
	return entity.Grid{
		Rows:         conf.Grid.Rows,
		Cols:         conf.Grid.Cols,
		MaxShipCells: conf.Grid.MaxShipCells,
	}
}
