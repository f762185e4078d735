// Package config loads cookiewatch settings from cookiewatch.yaml in the
// state directory, with COOKIEWATCH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

// Setting keys. Each maps to COOKIEWATCH_<KEY> in the environment.
const (
	KeyDebug          = "debug"
	KeyRPCPort        = "rpc_port"
	KeyRPCSecret      = "rpc_secret"
	KeyCDPURL         = "cdp_url"
	KeyHeadless       = "headless"
	KeyGuardWindow    = "guard_window"
	KeySettleDelay    = "settle_delay"
	KeyMaxConcurrency = "max_concurrency"
	KeyDatasetPath    = "dataset_path"
)

// Config is the resolved configuration.
type Config struct {
	// Dir holds the config file, the state database and the log file.
	Dir string

	Debug     bool
	RPCPort   int
	RPCSecret string
	// CDPURL is the DevTools websocket of a running browser. Empty launches one.
	CDPURL   string
	Headless bool

	GuardWindow    time.Duration
	SettleDelay    time.Duration
	MaxConcurrency int
	// DatasetPath is an Open Cookie Database JSON file. Empty uses the
	// embedded dataset.
	DatasetPath string
}

// DefaultDir returns $COOKIEWATCH_HOME or the per-user config directory.
func DefaultDir() (string, error) {
	if dir := os.Getenv(common.HomeEnv); dir != "" {
		return filepath.Abs(dir)
	}
	cdr, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cdr, common.AppName), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyRPCPort, common.DefaultRPCPort)
	v.SetDefault(KeyHeadless, true)
	v.SetDefault(KeyGuardWindow, common.DefaultGuardWindow)
	v.SetDefault(KeySettleDelay, common.DefaultSettleDelay)
	v.SetDefault(KeyMaxConcurrency, cookielib.DefaultMaxConcurrency)
}

// Load reads dir/cookiewatch.yaml if present, applies environment
// overrides and creates dir when missing.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(common.AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(common.EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Dir:            dir,
		Debug:          v.GetBool(KeyDebug),
		RPCPort:        v.GetInt(KeyRPCPort),
		RPCSecret:      v.GetString(KeyRPCSecret),
		CDPURL:         v.GetString(KeyCDPURL),
		Headless:       v.GetBool(KeyHeadless),
		GuardWindow:    v.GetDuration(KeyGuardWindow),
		SettleDelay:    v.GetDuration(KeySettleDelay),
		MaxConcurrency: v.GetInt(KeyMaxConcurrency),
		DatasetPath:    v.GetString(KeyDatasetPath),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RPCPort <= 0 || c.RPCPort > 65535 {
		return fmt.Errorf("invalid %s %d", KeyRPCPort, c.RPCPort)
	}
	if c.GuardWindow < 0 {
		return fmt.Errorf("invalid %s %s", KeyGuardWindow, c.GuardWindow)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("invalid %s %s", KeySettleDelay, c.SettleDelay)
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = cookielib.DefaultMaxConcurrency
	}
	return nil
}

// StatePath is the sqlite database holding the streak, the onboarding
// flag and the last scan snapshot.
func (c *Config) StatePath() string {
	return filepath.Join(c.Dir, "state.db")
}

// LogDir is where the rotating log file is written.
func (c *Config) LogDir() string {
	return filepath.Join(c.Dir, "logs")
}
