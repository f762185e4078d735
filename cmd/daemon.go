package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/urfave/cli"

	cmdcommon "github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/server"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

var daemonFlags = append([]cli.Flag{
	cli.IntFlag{
		Name:  "port, p",
		Usage: "port to serve JSON-RPC on (default: the rpc_port setting)",
	},
	cli.BoolFlag{
		Name:  "listen-all",
		Usage: "listen on every interface instead of loopback only",
	},
	cli.BoolFlag{
		Name:  "no-browser",
		Usage: "serve without a browser, cookies.scan and cookies.delete then fail",
	},
}, browserFlags...)

// daemonLogger writes to the rotating log file and to stderr.
var daemonLogger = func(dir string, debug bool) (logger.Logger, error) {
	fl, err := logger.NewFileLogger(dir, debug)
	if err != nil {
		return nil, err
	}
	console := logger.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags)).WithDebug(debug)
	return logger.NewMultiLogger(fl, console), nil
}

func daemon(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	applyBrowserFlags(ctx, cfg)
	if p := ctx.Int("port"); p > 0 {
		cfg.RPCPort = p
	}
	if cfg.RPCSecret == "" {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "rpc_secret", errors.New(common.RPCSecretEnv+" is not set"))
		return nil
	}

	l, err := daemonLogger(cfg.LogDir(), cfg.Debug)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "logger", err)
		return nil
	}
	c, err := initComponents(cfg, l)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "init", err)
		return nil
	}
	defer c.Close()

	cctx, cancel := commandContext()
	defer cancel()

	var browser server.Browser
	if !ctx.Bool("no-browser") {
		b, err := newBrowser(cctx, cfg, c.Log)
		if err != nil {
			cmdcommon.PrintRuntimeErr(ctx, "daemon", "open_browser", err)
			return nil
		}
		defer b.Close()
		browser = b
	}

	srv := server.NewServer(c.Log, c.Api, browser, &server.RPCConfig{
		Secret:    cfg.RPCSecret,
		Port:      cfg.RPCPort,
		ListenAll: ctx.Bool("listen-all"),
	})
	if err := srv.Start(cctx); err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "serve", err)
		return nil
	}
	c.Log.Info("daemon stopped")
	return nil
}
