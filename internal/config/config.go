package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	ConsoleID  string `yaml:"console_id" env:"CONSOLE_ID" env-default:"console-1"`
	HTTPServer `yaml:"http_server"`
	Platform   Platform `yaml:"platform"`
	DB         DB       `yaml:"db"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8082"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Platform points at the recording backend that owns cameras, clips and streams.
type Platform struct {
	Address         string        `yaml:"address" env:"PLATFORM_ADDRESS" env-required:"true"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"5s"`
	PollInterval    time.Duration `yaml:"poll_interval" env-default:"500ms"`
	PollTimeout     time.Duration `yaml:"poll_timeout" env-default:"10s"`
	LibraryFallback string        `yaml:"library_fallback" env:"LIBRARY_FALLBACK"`
}

type DB struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"5432"`
	Username string `yaml:"username" env-default:"postgres"`
	Password string `yaml:"-" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env-default:"cctv_viewer"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("CONFIG_PATH is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}
