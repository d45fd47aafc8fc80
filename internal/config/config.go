// Package config defines the command-line flags and the validated runtime
// configuration built from them. Every flag can also be set from the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// Storage backends
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config is the runtime configuration of the server
type Config struct {
	DatabaseURL     string
	Port            string
	APIBaseURL      string
	JWTSecret       string
	JWTIssuer       string
	JWKSURL         string
	Store           string
	MongoURI        string
	MongoDatabase   string
	RedisURL        string
	NATSURL         string
	LogLevel        string
	LogFormat       string
	CORSOrigins     []string
	RateLimitRPM    int
	MaxPageSize     int
	MaxUserPosts    int
	AuthorCacheSize int
	AuthorCacheTTL  time.Duration
	ShutdownTimeout time.Duration
	AutoMigrate     bool
	SeedUsers       []SeedUser
}

// SeedUser is a user record indexed when the server starts
type SeedUser struct {
	ID       string
	Username string
	Avatar   string
}

// Flag names shared between the flag definitions and FromContext
const (
	flagDatabaseURL     = "database-url"
	flagPort            = "port"
	flagAPIBaseURL      = "api-base-url"
	flagJWTSecret       = "jwt-secret"
	flagJWTIssuer       = "jwt-issuer"
	flagJWKSURL         = "jwks-url"
	flagStore           = "store"
	flagMongoURI        = "mongo-uri"
	flagMongoDatabase   = "mongo-database"
	flagRedisURL        = "redis-url"
	flagNATSURL         = "nats-url"
	flagLogLevel        = "log-level"
	flagLogFormat       = "log-format"
	flagCORSOrigins     = "cors-origins"
	flagRateLimitRPM    = "rate-limit-rpm"
	flagMaxPageSize     = "max-page-size"
	flagMaxUserPosts    = "max-user-posts"
	flagAuthorCacheSize = "author-cache-size"
	flagAuthorCacheTTL  = "author-cache-ttl"
	flagShutdownTimeout = "shutdown-timeout"
	flagAutoMigrate     = "auto-migrate"
	flagSeedUser        = "seed-user"
)

// GlobalFlags are shared by every command
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagLogLevel, Value: "info", EnvVars: []string{"LOG_LEVEL"}, Usage: "trace, debug, info, warn or error"},
		&cli.StringFlag{Name: flagLogFormat, Value: LogFormatJSON, EnvVars: []string{"LOG_FORMAT"}, Usage: "json or console"},
		&cli.StringFlag{Name: flagStore, Value: StorePostgres, EnvVars: []string{"STORE"}, Usage: "storage backend: postgres, mongo or memory"},
		&cli.StringFlag{Name: flagDatabaseURL, EnvVars: []string{"DATABASE_URL"}, Usage: "PostgreSQL connection string"},
		&cli.StringFlag{Name: flagMongoURI, Value: "mongodb://localhost:27017", EnvVars: []string{"MONGO_URI"}},
		&cli.StringFlag{Name: flagMongoDatabase, Value: "agora", EnvVars: []string{"MONGO_DATABASE"}},
		&cli.StringFlag{Name: flagJWTSecret, EnvVars: []string{"JWT_SECRET"}, Usage: "HS256 shared secret"},
		&cli.StringFlag{Name: flagJWTIssuer, EnvVars: []string{"JWT_ISSUER"}, Usage: "required iss claim, if set"},
	}
}

// ServeFlags are specific to the serve command
func ServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagPort, Value: "3333", EnvVars: []string{"PORT"}},
		&cli.StringFlag{Name: flagAPIBaseURL, Value: "/api", EnvVars: []string{"API_BASE_URL"}},
		&cli.StringFlag{Name: flagJWKSURL, EnvVars: []string{"JWKS_URL"}, Usage: "verify RS256/ES256 tokens against this key set instead of JWT_SECRET"},
		&cli.StringFlag{Name: flagRedisURL, EnvVars: []string{"REDIS_URL"}, Usage: "shared author cache; in-process cache when unset"},
		&cli.StringFlag{Name: flagNATSURL, EnvVars: []string{"NATS_URL"}, Usage: "domain event broker; events are dropped when unset"},
		&cli.StringSliceFlag{Name: flagCORSOrigins, EnvVars: []string{"CORS_ORIGINS"}},
		&cli.IntFlag{Name: flagRateLimitRPM, Value: 100, EnvVars: []string{"RATE_LIMIT_RPM"}, Usage: "requests per minute per client, 0 disables"},
		&cli.IntFlag{Name: flagMaxPageSize, Value: 100, EnvVars: []string{"MAX_PAGE_SIZE"}, Usage: "feed page size cap, 0 disables"},
		&cli.IntFlag{Name: flagMaxUserPosts, Value: 0, EnvVars: []string{"MAX_USER_POSTS"}, Usage: "cap on /posts/user results, 0 is unbounded"},
		&cli.IntFlag{Name: flagAuthorCacheSize, Value: 10000, EnvVars: []string{"AUTHOR_CACHE_SIZE"}},
		&cli.DurationFlag{Name: flagAuthorCacheTTL, Value: 5 * time.Minute, EnvVars: []string{"AUTHOR_CACHE_TTL"}},
		&cli.DurationFlag{Name: flagShutdownTimeout, Value: 15 * time.Second, EnvVars: []string{"SHUTDOWN_TIMEOUT"}},
		&cli.BoolFlag{Name: flagAutoMigrate, Value: true, EnvVars: []string{"AUTO_MIGRATE"}, Usage: "apply pending migrations on start (postgres only)"},
		&cli.StringSliceFlag{Name: flagSeedUser, EnvVars: []string{"SEED_USERS"}, Usage: "index id:username[:avatar] on start; required to use the memory store"},
	}
}

// ParseSeedUser parses an id:username[:avatar] flag value
func ParseSeedUser(value string) (SeedUser, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return SeedUser{}, fmt.Errorf("invalid seed user %q (want id:username[:avatar])", value)
	}
	seed := SeedUser{
		ID:       strings.TrimSpace(parts[0]),
		Username: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		seed.Avatar = strings.TrimSpace(parts[2])
	}
	return seed, nil
}

// FromContext builds a Config from parsed flags. Flags the running command
// does not define keep their zero values. Malformed seed users are an error.
func FromContext(c *cli.Context) (*Config, error) {
	var origins []string
	for _, origin := range c.StringSlice(flagCORSOrigins) {
		for _, part := range strings.Split(origin, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}

	var seeds []SeedUser
	for _, value := range c.StringSlice(flagSeedUser) {
		seed, err := ParseSeedUser(value)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}

	return &Config{
		DatabaseURL:     c.String(flagDatabaseURL),
		Port:            c.String(flagPort),
		APIBaseURL:      c.String(flagAPIBaseURL),
		JWTSecret:       c.String(flagJWTSecret),
		JWTIssuer:       c.String(flagJWTIssuer),
		JWKSURL:         c.String(flagJWKSURL),
		Store:           strings.ToLower(c.String(flagStore)),
		MongoURI:        c.String(flagMongoURI),
		MongoDatabase:   c.String(flagMongoDatabase),
		RedisURL:        c.String(flagRedisURL),
		NATSURL:         c.String(flagNATSURL),
		LogLevel:        c.String(flagLogLevel),
		LogFormat:       c.String(flagLogFormat),
		CORSOrigins:     origins,
		RateLimitRPM:    c.Int(flagRateLimitRPM),
		MaxPageSize:     c.Int(flagMaxPageSize),
		MaxUserPosts:    c.Int(flagMaxUserPosts),
		AuthorCacheSize: c.Int(flagAuthorCacheSize),
		AuthorCacheTTL:  c.Duration(flagAuthorCacheTTL),
		ShutdownTimeout: c.Duration(flagShutdownTimeout),
		AutoMigrate:     c.Bool(flagAutoMigrate),
		SeedUsers:       seeds,
	}, nil
}

// ValidateStore checks the storage settings every command needs
func (c *Config) ValidateStore() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want postgres, mongo or memory)", c.Store)
	}
	return nil
}

// Validate checks the settings the serve command needs
func (c *Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return errors.New("one of JWT_SECRET or JWKS_URL is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.RateLimitRPM < 0 || c.MaxPageSize < 0 || c.MaxUserPosts < 0 {
		return errors.New("rate limit, page size cap and user post cap must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}
