package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Orientation rule scopes.
const (
	OrientationScopeAll     = "all"
	OrientationScopeCurrent = "current"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	CORS     CORSConfig
	Import   ImportConfig
	Rules    RulesConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ImportConfig governs schedule spreadsheet ingestion.
type ImportConfig struct {
	SheetName           string
	BaseDir             string
	AllowedOrientations []string
	ErrorPreview        int
}

// RulesConfig holds the program completion rules and verdict caching.
type RulesConfig struct {
	ElectiveTypes        []string
	RequiredTypes        []string
	ElectiveTarget       int
	OrientationThreshold int
	OrientationScope     string
	CacheEnabled         bool
	CacheTTL             time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	cfg.Import = ImportConfig{
		SheetName:           v.GetString("IMPORT_SHEET_NAME"),
		BaseDir:             v.GetString("IMPORT_BASE_DIR"),
		AllowedOrientations: splitAndTrim(v.GetString("IMPORT_ALLOWED_ORIENTATIONS")),
		ErrorPreview:        v.GetInt("IMPORT_ERROR_PREVIEW"),
	}

	cfg.Rules = RulesConfig{
		ElectiveTypes:        splitAndTrim(v.GetString("RULES_ELECTIVE_TYPES")),
		RequiredTypes:        splitAndTrim(v.GetString("RULES_REQUIRED_TYPES")),
		ElectiveTarget:       v.GetInt("RULES_ELECTIVE_TARGET"),
		OrientationThreshold: v.GetInt("RULES_ORIENTATION_THRESHOLD"),
		OrientationScope:     parseScope(v.GetString("RULES_ORIENTATION_SCOPE")),
		CacheEnabled:         v.GetBool("RULES_CACHE_ENABLED"),
		CacheTTL:             parseDuration(v.GetString("RULES_CACHE_TTL"), time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cronograma")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("IMPORT_SHEET_NAME", "CronogramaConsolidado")
	v.SetDefault("IMPORT_BASE_DIR", "./data")
	v.SetDefault("IMPORT_ALLOWED_ORIENTATIONS", "")
	v.SetDefault("IMPORT_ERROR_PREVIEW", 10)

	v.SetDefault("RULES_ELECTIVE_TYPES", "Electiva,Elective")
	v.SetDefault("RULES_REQUIRED_TYPES", "Plan de negocio,Examen Inglés")
	v.SetDefault("RULES_ELECTIVE_TARGET", 8)
	v.SetDefault("RULES_ORIENTATION_THRESHOLD", 5)
	v.SetDefault("RULES_ORIENTATION_SCOPE", OrientationScopeAll)
	v.SetDefault("RULES_CACHE_ENABLED", false)
	v.SetDefault("RULES_CACHE_TTL", "1m")
}

func parseScope(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case OrientationScopeCurrent:
		return OrientationScopeCurrent
	default:
		return OrientationScopeAll
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
