package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidPort         = errors.New("port must not be empty")
	ErrSamePorts           = errors.New("http and socket ports must differ")
	ErrInvalidCodeAttempts = errors.New("room code attempts must be at least 1")
	ErrInvalidBuffer       = errors.New("buffer size must be positive")
)

type Config struct {
	LogLevel         string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort         string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort       string   `yaml:"socket-port" env:"SOCKET_PORT" env-default:"3001"`
	RoomCodeAttempts int      `yaml:"room-code-attempts" env:"ROOM_CODE_ATTEMPTS" env-default:"1"`
	SendBuffer       int      `yaml:"send-buffer" env:"SEND_BUFFER" env-default:"16"`
	AllowedOrigins   []string `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-default:"*"`
	Redis            Redis    `yaml:"redis"`
	Journal          Journal  `yaml:"journal"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Journal struct {
	Enabled bool   `yaml:"enabled" env:"JOURNAL_ENABLED" env-default:"false"`
	Key     string `yaml:"key" env:"JOURNAL_KEY" env-default:"tictactoe:room-events"`
	MaxLen  int64  `yaml:"max-len" env:"JOURNAL_MAX_LEN" env-default:"10000"`
	Buffer  int    `yaml:"buffer" env:"JOURNAL_BUFFER" env-default:"256"`
}

// MustLoad - load all configurations in config.yml file, environment variables take precedence.
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
	switch that.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, that.LogLevel)
	}

	if that.HTTPPort == "" || that.SocketPort == "" {
		return ErrInvalidPort
	}

	if that.HTTPPort == that.SocketPort {
		return fmt.Errorf("%w: %s", ErrSamePorts, that.HTTPPort)
	}

	if that.RoomCodeAttempts < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCodeAttempts, that.RoomCodeAttempts)
	}

	if that.SendBuffer < 1 {
		return fmt.Errorf("send %w: %d", ErrInvalidBuffer, that.SendBuffer)
	}

	if that.Journal.Enabled && that.Journal.Buffer < 1 {
		return fmt.Errorf("journal %w: %d", ErrInvalidBuffer, that.Journal.Buffer)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
