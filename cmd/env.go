package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/internal/config"
	"github.com/laurynn-wl/cookie-project/internal/storage"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/credman"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// snapshotPurpose separates the snapshot key from other keys derived from the
// same master key.
const snapshotPurpose = "snapshots"

// keyStores lists where the master key is looked up, in order.
var keyStores = func(dir string) []credman.KeyStore {
	return []credman.KeyStore{credman.NewKeyring(), credman.NewFileKeyStore(dir)}
}

// components holds everything a command needs to run the pipeline.
type components struct {
	Config *config.Config
	Log    logger.Logger
	KV     *storage.SQLiteKV
	Api    *api.Api
}

// Close releases the components in reverse order of initialization.
func (c *components) Close() {
	if c.KV != nil {
		if err := c.KV.Close(); err != nil {
			c.Log.Warning("closing state database: %v", err)
		}
	}
	if c.Log != nil {
		_ = c.Log.Close()
	}
}

// loadConfig resolves the configuration with the global flag overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("home"))
	if err != nil {
		return nil, err
	}
	if ctx.GlobalBool("debug") {
		cfg.Debug = true
	}
	return cfg, nil
}

// initComponents opens the state database, the snapshot vault and the
// dataset, and builds the Api. l receives every log line; when nil, a file
// logger in the config directory is used.
//
// On error, anything already opened is closed before returning.
var initComponents = func(cfg *config.Config, l logger.Logger) (*components, error) {
	if l == nil {
		fl, err := logger.NewFileLogger(cfg.LogDir(), cfg.Debug)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l = fl
	}
	c := &components{Config: cfg, Log: l}

	kv, err := storage.OpenSQLiteKV(cfg.StatePath())
	if err != nil {
		l.Error("state database initialization failed: %v", err)
		c.Close()
		return nil, err
	}
	c.KV = kv

	var vault *credman.Vault
	key, err := credman.LoadOrCreateKey(keyStores(cfg.Dir)...)
	if err == nil {
		vault, err = credman.NewVault(key, snapshotPurpose)
	}
	if err != nil {
		l.Warning("snapshot encryption unavailable, cookie values will not be stored: %v", err)
		vault = nil
	}

	loader := cookielib.EmbeddedDatasetLoader()
	if cfg.DatasetPath != "" {
		loader = cookielib.FileDatasetLoader(afero.NewOsFs(), cfg.DatasetPath)
	}

	c.Api = api.NewApi(l, cookielib.NewLazyDataset(loader, l), kv, storage.NewSnapshotStore(kv, vault), api.Options{
		MaxConcurrency: cfg.MaxConcurrency,
		GuardWindow:    cfg.GuardWindow,
		SettleDelay:    cfg.SettleDelay,
		Version:        currentBuildArgs.Version,
		Commit:         currentBuildArgs.Commit,
		BuildType:      currentBuildArgs.BuildType,
	})
	return c, nil
}

// setup loads the configuration and initializes the components with the
// file logger. Errors are printed in the command's format.
func setup(ctx *cli.Context, cmd string) (*components, bool) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, cmd, "load_config", err)
		return nil, false
	}
	c, err := initComponents(cfg, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, cmd, "init", err)
		return nil, false
	}
	return c, true
}

// commandContext is canceled by SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
