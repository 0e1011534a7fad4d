package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir   = ".repoboard"
	DefaultConfigFile  = "config.json"
	DefaultHistoryFile = ".repoboard/history.db"
	DefaultDatasetFile = "data/repositories.json"
)

// Load reads the config file and returns a populated Config. The configPath
// flag may override the default location. Environment variables override
// file values (GITHUB_TOKEN covers github.token), and a .env file in the
// working directory is honoured when present.
func Load(configPath string) (*Config, error) {
	// Best-effort: local development and CI both keep the token in .env.
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only consults the environment for keys viper already
	// knows about; the token has no default, so it must be bound explicitly
	// for GITHUB_TOKEN (including one loaded from .env) to take effect.
	v.MustBindEnv("github.token", "GITHUB_TOKEN")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		// A file the user named explicitly must exist; only the default
		// location is allowed to be absent (defaults plus environment
		// still apply then).
		if configPath != "" {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	expandPaths(&cfg, home)
	return &cfg, nil
}

// Validate enforces the settings a sync pass cannot run without. A failure
// here aborts before anything is fetched or written.
func (c *Config) Validate() error {
	if c.GitHub.Token == "" {
		return errors.New("github token is not configured (set github.token or GITHUB_TOKEN)")
	}
	if len(c.Sync.Organizations) == 0 {
		return errors.New("no organizations configured (set sync.organizations)")
	}
	for _, org := range c.Sync.Organizations {
		if strings.TrimSpace(org) == "" {
			return errors.New("sync.organizations contains an empty entry")
		}
	}
	if c.Sync.DatasetPath == "" {
		return errors.New("sync.dataset_path is empty")
	}
	return nil
}

// ConfigPath returns the effective config file path.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("github.host", "github.com")

	v.SetDefault("sync.dataset_path", DefaultDatasetFile)
	v.SetDefault("sync.batch_size", 5)
	v.SetDefault("sync.page_size", 100)
	v.SetDefault("sync.version", "2")
	v.SetDefault("sync.include_archived", false)
	v.SetDefault("sync.schedule", "0 6 * * *")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(home, DefaultHistoryFile))
}

func expandPaths(cfg *Config, home string) {
	cfg.Sync.DatasetPath = expandHome(cfg.Sync.DatasetPath, home)
	cfg.Sync.PodMapPath = expandHome(cfg.Sync.PodMapPath, home)
	cfg.History.Path = expandHome(cfg.History.Path, home)
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file")
}
