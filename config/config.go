package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

const defaultBookListLimit = 200

// Config holds everything the server needs to start. The signing secret has
// no default: a process without one must not come up.
type Config struct {
	Addr          string `yaml:"addr"`
	MongoURI      string `yaml:"mongoURI"`
	Database      string `yaml:"database"`
	JWTSecret     string `yaml:"jwtSecret"`
	TokenTTL      string `yaml:"tokenTTL"`
	BcryptCost    int    `yaml:"bcryptCost"`
	BookListLimit int64  `yaml:"bookListLimit"`
}

// Load reads YAML config from path (optional), applies environment variable
// overrides, fills defaults and validates. Path being empty or absent is
// fine as long as the environment provides what is required.
func Load(path string) (Config, error) {
	cfg := Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		cfg.TokenTTL = v
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "bookshelf"
	}
	if cfg.BookListLimit <= 0 {
		cfg.BookListLimit = defaultBookListLimit
	}

	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: jwtSecret is required (set JWT_SECRET)")
	}
	if _, err := cfg.ParseTokenTTL(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseTokenTTL parses the optional token lifetime. Zero means tokens are
// issued without an expiry claim.
func (c Config) ParseTokenTTL() (time.Duration, error) {
	if c.TokenTTL == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid tokenTTL duration: %w", err)
	}
	return dur, nil
}

// Connect opens the MongoDB client and verifies the connection with a ping
// under a timeout. The caller owns the client lifecycle and disconnects it
// at shutdown.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	return client, nil
}
