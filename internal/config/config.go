package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ganot/roomstage/internal/domain/asset"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the MCP server is exposed: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// StorageConfig locates the capture directories and the project root.
type StorageConfig struct {
	// DocumentsDir holds Rooms/Models, Objects/Models and Projects.
	DocumentsDir string `yaml:"documents_dir"`
	// BundleDir holds the read-only sample captures.
	BundleDir string `yaml:"bundle_dir"`
	Extension string `yaml:"extension"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// RoomsDir is where room captures are scanned.
func (s StorageConfig) RoomsDir() string {
	return filepath.Join(s.DocumentsDir, "Rooms", "Models")
}

// ObjectsDir is where object captures are scanned.
func (s StorageConfig) ObjectsDir() string {
	return filepath.Join(s.DocumentsDir, "Objects", "Models")
}

// ProjectsDir is the root of the per-project directories.
func (s StorageConfig) ProjectsDir() string {
	return filepath.Join(s.DocumentsDir, "Projects")
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Storage: StorageConfig{
			DocumentsDir: "roomstage",
			BundleDir:    filepath.Join("roomstage", "Bundle"),
			Extension:    asset.DefaultExtension,
		},
		DB: DBConfig{
			Path: filepath.Join("roomstage", "activity.db"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("ROOMSTAGE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("ROOMSTAGE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("ROOMSTAGE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROOMSTAGE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("ROOMSTAGE_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dir := os.Getenv("ROOMSTAGE_DOCUMENTS_DIR"); dir != "" {
		cfg.Storage.DocumentsDir = dir
	}
	if dir := os.Getenv("ROOMSTAGE_BUNDLE_DIR"); dir != "" {
		cfg.Storage.BundleDir = dir
	}
	if ext := os.Getenv("ROOMSTAGE_CAPTURE_EXTENSION"); ext != "" {
		cfg.Storage.Extension = ext
	}
	if dbPath := os.Getenv("ROOMSTAGE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("ROOMSTAGE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("ROOMSTAGE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	cfg.Transport.Mode = strings.ToLower(cfg.Transport.Mode)
	cfg.Storage.Extension = strings.TrimPrefix(cfg.Storage.Extension, ".")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q (want stdio or http)", c.Transport.Mode)
	}
	if c.Storage.DocumentsDir == "" {
		return fmt.Errorf("storage.documents_dir must be set")
	}
	if c.Storage.Extension == "" {
		return fmt.Errorf("storage.extension must be set")
	}
	if c.Transport.Mode == "http" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
