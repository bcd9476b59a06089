package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the default config file location.
const EnvPath = "MANGADIR_CONFIG"

type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type MangaDex struct {
	Language string `yaml:"language"`
}

type Config struct {
	DownloadDirectory string      `yaml:"download_directory"`
	CBZ               bool        `yaml:"cbz"`
	Database          string      `yaml:"database"`
	Madokami          Credentials `yaml:"madokami"`
	MangaDex          MangaDex    `yaml:"mangadex"`

	path string
}

// Dir returns ~/.config/mangadir.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mangadir"
	}
	return filepath.Join(home, ".config", "mangadir")
}

// DefaultPath honours MANGADIR_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yml")
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DownloadDirectory: filepath.Join(home, "Downloads", "mangadir"),
		Database:          filepath.Join(Dir(), "mangadir.db"),
		MangaDex:          MangaDex{Language: "en"},
	}
}

// Load reads the config at path on top of the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	cfg.path = path

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DownloadDirectory) == "" {
		return errors.New("config: download_directory must not be empty")
	}
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("config: database must not be empty")
	}
	return nil
}

// Save writes the config back to the file it was loaded from. The file
// holds credentials, so it is only readable by the owner.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0600)
}

// Keys lists the settings reachable through Get and Set.
var Keys = []string{
	"download_directory",
	"cbz",
	"database",
	"madokami.username",
	"madokami.password",
	"mangadex.language",
}

func (c *Config) Get(key string) (string, error) {
	switch key {
	case "download_directory":
		return c.DownloadDirectory, nil
	case "cbz":
		return strconv.FormatBool(c.CBZ), nil
	case "database":
		return c.Database, nil
	case "madokami.username":
		return c.Madokami.Username, nil
	case "madokami.password":
		return c.Madokami.Password, nil
	case "mangadex.language":
		return c.MangaDex.Language, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

func (c *Config) Set(key, value string) error {
	switch key {
	case "download_directory":
		c.DownloadDirectory = value
	case "cbz":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cbz: %w", err)
		}
		c.CBZ = b
	case "database":
		c.Database = value
	case "madokami.username":
		c.Madokami.Username = value
	case "madokami.password":
		c.Madokami.Password = value
	case "mangadex.language":
		c.MangaDex.Language = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}
