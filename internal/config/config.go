// Package config loads verifetch settings from defaults, an optional
// config file, VERIFETCH_* environment variables and command line flags,
// in increasing order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/adamwoolhether/verifetch/fetch"
)

const envPrefix = "VERIFETCH"

type Config struct {
	OutDir      string         `mapstructure:"out_dir" validate:"required"`
	Compression string         `mapstructure:"compression" validate:"mode"`
	Digest      string         `mapstructure:"digest" validate:"oneof=sha256 blake3"`
	Timeout     time.Duration  `mapstructure:"timeout" validate:"gte=0"`
	UserAgent   string         `mapstructure:"user_agent"`
	RateLimit   int            `mapstructure:"rate_limit" validate:"gte=0"`
	Throttle    ThrottleConfig `mapstructure:"throttle"`
	Log         LogConfig      `mapstructure:"log"`
	Comments    bool           `mapstructure:"comments"`
	Submissions bool           `mapstructure:"submissions"`
	Sources     SourcesConfig  `mapstructure:"sources"`
}

// SourcesConfig locates the manifest and files of each category.
type SourcesConfig struct {
	Comments    SourceConfig `mapstructure:"comments"`
	Submissions SourceConfig `mapstructure:"submissions"`
}

type SourceConfig struct {
	ManifestURL string `mapstructure:"manifest_url" validate:"required,url"`
	BaseURL     string `mapstructure:"base_url" validate:"required,url"`
}

// ThrottleConfig limits outgoing requests. RPS of zero disables it.
type ThrottleConfig struct {
	RPS   int `mapstructure:"rps" validate:"gte=0"`
	Burst int `mapstructure:"burst" validate:"gte=1"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// flagKeys maps config keys to the command line flags that override them.
var flagKeys = map[string]string{
	"out_dir":     "out-dir",
	"compression": "compression",
	"digest":      "digest",
	"timeout":     "timeout",
	"user_agent":  "user-agent",
	"rate_limit":  "rate-limit",
	"log.level":   "log-level",
	"comments":    "comments",
	"submissions": "submissions",
}

// Load resolves the configuration. flags may be nil. When flags defines
// a non-empty "config" flag, that file must exist and is read first.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}

		if path, err := flags.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	cfg.OutDir = expandHome(cfg.OutDir)
	cfg.Digest = strings.ToLower(cfg.Digest)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("out_dir", defaultOutDir())
	v.SetDefault("compression", fetch.ModeDefault.String())
	v.SetDefault("digest", "sha256")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("user_agent", "verifetch")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("throttle.rps", 0)
	v.SetDefault("throttle.burst", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("comments", false)
	v.SetDefault("submissions", false)
	v.SetDefault("sources.comments.manifest_url", fetch.Comments.ManifestURL)
	v.SetDefault("sources.comments.base_url", fetch.Comments.BaseURL)
	v.SetDefault("sources.submissions.manifest_url", fetch.Submissions.ManifestURL)
	v.SetDefault("sources.submissions.base_url", fetch.Submissions.BaseURL)
}

func defaultOutDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("data", "reddit")
	}
	return filepath.Join(home, "data", "reddit")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Mode returns the parsed compression mode.
func (c Config) Mode() (fetch.Mode, error) {
	return fetch.ParseMode(c.Compression)
}

// Categories returns the selected categories, comments first.
func (c Config) Categories() []fetch.Category {
	var cats []fetch.Category
	if c.Comments {
		cats = append(cats, fetch.Category{
			Name:        fetch.Comments.Name,
			ManifestURL: c.Sources.Comments.ManifestURL,
			BaseURL:     c.Sources.Comments.BaseURL,
		})
	}
	if c.Submissions {
		cats = append(cats, fetch.Category{
			Name:        fetch.Submissions.Name,
			ManifestURL: c.Sources.Submissions.ManifestURL,
			BaseURL:     c.Sources.Submissions.BaseURL,
		})
	}
	return cats
}

// LogLevel returns the slog level for Log.Level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
