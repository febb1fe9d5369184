package config

import (
	"fmt"
	"os"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	LogLevel  string
	Engine    EngineConfig
	Generator GeneratorConfig
}

type EngineConfig struct {
	Path         string
	VariantsPath string
	OptionsPath  string // optional YAML file with extra engine options
	MultiPV      int
	SearchTimeMS int
}

type GeneratorConfig struct {
	MaxMoves    int
	MaxAttempts int
}

// LoadConfig reads the environment. Every variable has a default so the tool
// runs with no configuration at all.
func LoadConfig() (*Config, error) {
	multiPV, err := envInt("ENGINE_MULTIPV", 5)
	if err != nil {
		return nil, err
	}
	searchTime, err := envInt("ENGINE_SEARCH_TIME_MS", 10)
	if err != nil {
		return nil, err
	}
	maxMoves, err := envInt("MAX_MOVES", 300)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := envInt("MAX_ATTEMPTS", 10)
	if err != nil {
		return nil, err
	}

	return &Config{
		LogLevel: envStr("LOG_LEVEL", "info"),
		Engine: EngineConfig{
			Path:         envStr("ENGINE_PATH", "fairy-stockfish"),
			VariantsPath: envStr("VARIANTS_PATH", "variants.ini"),
			OptionsPath:  os.Getenv("ENGINE_OPTIONS_PATH"),
			MultiPV:      multiPV,
			SearchTimeMS: searchTime,
		},
		Generator: GeneratorConfig{
			MaxMoves:    maxMoves,
			MaxAttempts: maxAttempts,
		},
	}, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
