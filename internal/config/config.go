package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeAll  = "all"
	ModeRoom = "room"
	ModeGame = "game"
	ModeBot  = "bot"

	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel          string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Mode              string      `yaml:"mode" env:"APP_MODE" env-default:"all"`
	RoomService       RoomService `yaml:"room-service"`
	GameService       GameService `yaml:"game-service"`
	Redis             Redis       `yaml:"redis"`
	SQLiteStoragePath string      `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./users.db"`
	Grid              Grid        `yaml:"grid"`
	Bot               Bot         `yaml:"bot"`
}

type RoomService struct {
	HTTPPort string `yaml:"http-port" env:"ROOM_HTTP_PORT" env-default:"9090"`
	// URL of a remote room service. Empty means the game service reads rooms in-process.
	URL     string `yaml:"url" env:"ROOM_SERVICE_URL" env-default:""`
	Storage string `yaml:"storage" env:"ROOM_STORAGE" env-default:"memory"`
}

type GameService struct {
	HTTPPort string `yaml:"http-port" env:"GAME_HTTP_PORT" env-default:"9091"`
	// URL of a remote game service, used by the bot.
	URL             string        `yaml:"url" env:"GAME_SERVICE_URL" env-default:""`
	UpstreamTimeout time.Duration `yaml:"upstream-timeout" env:"GAME_UPSTREAM_TIMEOUT" env-default:"2s"`
}

type Bot struct {
	Name         string        `yaml:"name" env:"BOT_NAME" env-default:"bot"`
	PollInterval time.Duration `yaml:"poll-interval" env:"BOT_POLL_INTERVAL" env-default:"1s"`
	ReadyTimeout time.Duration `yaml:"ready-timeout" env:"BOT_READY_TIMEOUT" env-default:"2m"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Grid struct {
	Rows         int `yaml:"rows" env-default:"4"`
	Cols         int `yaml:"cols" env-default:"4"`
	MaxShipCells int `yaml:"max-ship-cells" env-default:"1"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

func (that *Config) Validate() error {
	switch that.Mode {
	case ModeAll, ModeRoom, ModeGame, ModeBot:
	default:
		return fmt.Errorf("unknown mode %q", that.Mode)
	}

	switch that.RoomService.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("unknown room storage %q", that.RoomService.Storage)
	}

	if that.Mode == ModeGame && that.RoomService.URL == "" {
		return fmt.Errorf("mode %q requires room-service.url", ModeGame)
	}

	if that.Mode == ModeBot {
		if that.RoomService.URL == "" || that.GameService.URL == "" {
			return fmt.Errorf("mode %q requires room-service.url and game-service.url", ModeBot)
		}

		if that.Bot.PollInterval <= 0 || that.Bot.ReadyTimeout <= 0 {
			return fmt.Errorf("bot intervals must be positive")
		}
	}

	if that.Grid.Rows < 1 || that.Grid.Rows > 26 || that.Grid.Cols < 1 {
		return fmt.Errorf("grid %dx%d is out of range", that.Grid.Rows, that.Grid.Cols)
	}

	if that.GameService.UpstreamTimeout <= 0 {
		return fmt.Errorf("game-service.upstream-timeout must be positive")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
