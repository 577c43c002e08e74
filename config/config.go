// Package config reads the client configuration file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gcfg.v1"
)

const (
	DirName         = ".dsahelper"
	FileName        = "config"
	DefaultBaseURL  = "https://leetcode-project-backend-1082156221911.europe-west1.run.app"
	DefaultAddress  = "127.0.0.1:8411"
	DefaultTimeout  = 120
	defaultStoreRel = "store.db"
)

// Environment variables that override the file.
const (
	EnvBaseURL   = "DSAHELPER_API_URL"
	EnvAPIKey    = "DSAHELPER_IDENTITY_API_KEY"
	EnvAddress   = "DSAHELPER_DASHBOARD_ADDRESS"
	EnvStorePath = "DSAHELPER_STORE_PATH"
	EnvTimeout   = "DSAHELPER_API_TIMEOUT"
)

// Config mirrors the INI file:
//
//	[api]
//	baseurl = https://...
//	timeoutseconds = 120
//
//	[identity]
//	apikey = ...
//
//	[dashboard]
//	address = 127.0.0.1:8411
//	secret = ...
//
//	[storage]
//	path = ~/.dsahelper/store.db
type Config struct {
	API struct {
		BaseURL        string
		TimeoutSeconds int
	}
	Identity struct {
		APIKey string
	}
	Dashboard struct {
		Address string
		Secret  string
	}
	Storage struct {
		Path string
	}
}

// Dir is the per-user configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to find home directory: %w", err)
	}
	if home == "" {
		return "", errors.New("home directory is not set")
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Default returns the built-in settings.
func Default() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	cfg := new(Config)
	cfg.API.BaseURL = DefaultBaseURL
	cfg.API.TimeoutSeconds = DefaultTimeout
	cfg.Dashboard.Address = DefaultAddress
	cfg.Storage.Path = filepath.Join(dir, defaultStoreRel)
	return cfg, nil
}

// Load reads the config file at path (DefaultPath when empty), then a .env
// file in the working directory, then the environment. A missing config
// file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := gcfg.ReadFileInto(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		log.WithField("path", path).Debug("config file loaded")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("unable to read .env file")
	}
	cfg.applyEnv()

	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = DefaultTimeout
	}
	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")
	cfg.Storage.Path, err = expandHome(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	override := func(target *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*target = v
		}
	}
	override(&cfg.API.BaseURL, EnvBaseURL)
	override(&cfg.Identity.APIKey, EnvAPIKey)
	override(&cfg.Dashboard.Address, EnvAddress)
	override(&cfg.Storage.Path, EnvStorePath)

	if v := os.Getenv(EnvTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSeconds = n
		}
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Timeout is the per-request backend timeout.
func (cfg *Config) Timeout() time.Duration {
	return time.Duration(cfg.API.TimeoutSeconds) * time.Second
}
