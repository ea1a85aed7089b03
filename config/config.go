package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageBolt     = "bolt"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort   int
	JWTSecretKey string
	LogLevel     slog.Level

	StorageDriver string
	DatabaseURL   string
	BoltPath      string

	ArchiveBucket          string
	ArchiveEndpoint        string
	ArchiveRegion          string
	ArchiveAccessKeyID     string
	ArchiveSecretAccessKey string
	ArchivePublicBaseURL   string

	SchedulerSpec      string
	EventBuffer        int
	CORSAllowedOrigins []string
}

// ArchiveEnabled сообщает, настроена ли выгрузка результатов.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intVar(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(withDefault(getenv("LOG_LEVEL"), "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	dbURL := getenv("DATABASE_URL")
	driver := strings.ToLower(getenv("STORAGE_DRIVER"))
	if driver == "" {
		driver = StorageMemory
		if dbURL != "" {
			driver = StoragePostgres
		}
	}
	switch driver {
	case StorageMemory, StorageBolt:
	case StoragePostgres:
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for postgres storage")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}

	eventBuffer, err := intVar(getenv, "EVENT_BUFFER", 64)
	if err != nil {
		return nil, err
	}
	if eventBuffer <= 0 {
		return nil, fmt.Errorf("EVENT_BUFFER must be positive, got %d", eventBuffer)
	}

	cfg := &Config{
		ServerPort:   port,
		JWTSecretKey: jwtKey,
		LogLevel:     level,

		StorageDriver: driver,
		DatabaseURL:   dbURL,
		BoltPath:      withDefault(getenv("BOLT_PATH"), "tournaments.db"),

		ArchiveBucket:          getenv("ARCHIVE_BUCKET"),
		ArchiveEndpoint:        getenv("ARCHIVE_ENDPOINT"),
		ArchiveRegion:          withDefault(getenv("ARCHIVE_REGION"), "auto"),
		ArchiveAccessKeyID:     getenv("ARCHIVE_ACCESS_KEY_ID"),
		ArchiveSecretAccessKey: getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		ArchivePublicBaseURL:   getenv("ARCHIVE_PUBLIC_BASE_URL"),

		SchedulerSpec:      withDefault(getenv("SCHEDULER_SPEC"), "@every 30s"),
		EventBuffer:        eventBuffer,
		CORSAllowedOrigins: splitList(withDefault(getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	if cfg.ArchiveEnabled() && (cfg.ArchiveAccessKeyID == "" || cfg.ArchiveSecretAccessKey == "") {
		return nil, fmt.Errorf("ARCHIVE_ACCESS_KEY_ID and ARCHIVE_SECRET_ACCESS_KEY are required when ARCHIVE_BUCKET is set")
	}

	return cfg, nil
}

func intVar(getenv func(string) string, name string, def int) (int, error) {
	raw := getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
