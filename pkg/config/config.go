// Package config loads flowapi settings from an optional .env file and
// FLOWAPI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ha1tch/flowchart-toolkit/pkg/logging"
)

// Environment variable names.
const (
	EnvAddr          = "FLOWAPI_ADDR"
	EnvDataDir       = "FLOWAPI_DATA_DIR"
	EnvStore         = "FLOWAPI_STORE"
	EnvAllowedOrigin = "FLOWAPI_ALLOWED_ORIGIN"
	EnvLogLevel      = "FLOWAPI_LOG_LEVEL"
	EnvLogFormat     = "FLOWAPI_LOG_FORMAT"
	EnvRenderSVG     = "FLOWAPI_RENDER_SVG"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
)

type Config struct {
	Addr          string
	DataDir       string
	Store         string
	AllowedOrigin string
	LogLevel      slog.Level
	LogFormat     string
	RenderSVG     bool
}

// Default matches the address the editor expects.
func Default() Config {
	return Config{
		Addr:          ":5285",
		DataDir:       "./data/diagrams",
		Store:         StoreFile,
		AllowedOrigin: "http://localhost:5173",
		LogLevel:      slog.LevelInfo,
		LogFormat:     "pretty",
	}
}

// Load reads envfile when it exists, then the environment. Variables
// already set in the environment win over the file.
func Load(envfile string) (Config, error) {
	if envfile != "" {
		if err := godotenv.Load(envfile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envfile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get(EnvAddr); ok {
		c.Addr = v
	}
	if v, ok := get(EnvDataDir); ok {
		c.DataDir = v
	}
	if v, ok := get(EnvStore); ok {
		c.Store = strings.ToLower(v)
	}
	if v, ok := lookup(EnvAllowedOrigin); ok {
		c.AllowedOrigin = strings.TrimSpace(v)
	}
	if v, ok := get(EnvLogLevel); ok {
		l, err := logging.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		c.LogLevel = l
	}
	if v, ok := get(EnvLogFormat); ok {
		c.LogFormat = strings.ToLower(v)
	}
	if v, ok := get(EnvRenderSVG); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid boolean %q", EnvRenderSVG, v)
		}
		c.RenderSVG = b
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.DataDir == "" {
			return fmt.Errorf("%s is required for the file store", EnvDataDir)
		}
	default:
		return fmt.Errorf("%s: unknown store %q", EnvStore, c.Store)
	}
	switch c.LogFormat {
	case "pretty", "json", "text":
	default:
		return fmt.Errorf("%s: unknown format %q", EnvLogFormat, c.LogFormat)
	}
	if c.Addr == "" {
		return fmt.Errorf("%s is empty", EnvAddr)
	}
	return nil
}
