package config

import (
	"context"
	"flag"
	"log/slog"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/crewbooks/crewbooks/internal/model"
)

type Config struct {
	RunAddr        string `env:"RUN_ADDRESS"     envDefault:"localhost:8080"`
	DatabaseURI    string `env:"DATABASE_URI"    envDefault:""`
	RedisAddr      string `env:"REDIS_ADDRESS"   envDefault:""`
	SecretKey      string `env:"SECRET_KEY"      envDefault:""`
	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
	StrictReview   bool   `env:"STRICT_REVIEW"   envDefault:"true"`
	CompactionHour int    `env:"COMPACTION_HOUR" envDefault:"0"`
}

type Builder struct {
	cfg *Config
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{},
		log: log,
	}
}

func (b *Builder) FromDotEnv() *Builder {
	if err := godotenv.Load(); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelDebug, "no .env file loaded", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromFlags() *Builder {
	flag.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	flag.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	flag.StringVar(&b.cfg.RedisAddr, "r", b.cfg.RedisAddr, "Redis address")
	flag.StringVar(&b.cfg.SecretKey, "k", b.cfg.SecretKey, "Secret key")
	flag.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")
	flag.BoolVar(&b.cfg.StrictReview, "s", b.cfg.StrictReview, "Reject re-reviews of terminal transactions")
	flag.IntVar(&b.cfg.CompactionHour, "c", b.cfg.CompactionHour, "Hour of day the snapshot compactor fires")

	flag.Parse()
	return b
}

func (b *Builder) GetConfig() *Config {
	return b.cfg
}
