package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Web        WebConfig
	Match      MatchConfig
	Database   DatabaseConfig
	Embedding  EmbeddingConfig
	Shifts     ShiftsConfig
	Attendance AttendanceConfig
}

type WebConfig struct {
	Host string // defaults to empty (all interfaces)
	Port int    // defaults to 8080
}

type MatchConfig struct {
	Metric    string  // "euclidean" or "cosine", defaults to euclidean
	Threshold float64 // acceptance distance, defaults per metric
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL, takes precedence
	MariaDBDSN   string // MariaDB DSN (e.g., facegate:facegate@tcp(mariadb:3306)/facegate)
	DataDir      string // directory for the JSON file backend (default ./data)
	MaxOpenConns int    // maximum open connections (default 25)
	MaxIdleConns int    // maximum idle connections (default 5)
}

type EmbeddingConfig struct {
	URL string // face embedding service, defaults to http://localhost:8000
	Dim int    // defaults to 128
}

type ShiftsConfig struct {
	Path string // YAML shift windows; empty means embedded defaults
}

type AttendanceConfig struct {
	RejectOutOfWindow bool // defaults to true
}

// Thresholds differ per metric: euclidean distances on raw face embeddings
// sit around 0.6 for a same-person pair, cosine distances well under 0.5.
const (
	defaultEuclideanThreshold = 0.6
	defaultCosineThreshold    = 0.5
)

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean. Returns the default
// value if the env var is unset, empty, or invalid.
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func Load() *Config {
	metric := strings.ToLower(os.Getenv("MATCH_METRIC"))
	if metric == "" {
		metric = "euclidean"
	}
	threshold := defaultEuclideanThreshold
	if metric == "cosine" {
		threshold = defaultCosineThreshold
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	return &Config{
		Web: WebConfig{
			Host: os.Getenv("WEB_HOST"),
			Port: envInt("WEB_PORT", 8080),
		},
		Match: MatchConfig{
			Metric:    metric,
			Threshold: envFloat("MATCH_THRESHOLD", threshold),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
			DataDir:      dataDir,
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 128),
		},
		Shifts: ShiftsConfig{
			Path: os.Getenv("SHIFTS_CONFIG_PATH"),
		},
		Attendance: AttendanceConfig{
			RejectOutOfWindow: envBool("REJECT_OUT_OF_WINDOW", true),
		},
	}
}

// Addr returns the listen address for the web server.
func (c *WebConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
