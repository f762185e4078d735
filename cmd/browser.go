package cmd

import (
	"context"

	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/internal/cdp"
	"github.com/laurynn-wl/cookie-project/internal/config"
	"github.com/laurynn-wl/cookie-project/internal/server"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// pageBrowser is a live browser the scan, delete and daemon commands drive.
type pageBrowser interface {
	server.Browser
	Close()
}

// newBrowser connects to cfg.CDPURL or launches a local browser.
var newBrowser = func(ctx context.Context, cfg *config.Config, l logger.Logger) (pageBrowser, error) {
	b, err := cdp.New(ctx, cdp.Options{
		RemoteURL: cfg.CDPURL,
		Headless:  cfg.Headless,
	}, l)
	if err != nil {
		return nil, err
	}
	return b, nil
}

var browserFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "cdp-url",
		Usage: "DevTools websocket URL of a running browser (default: launch one)",
	},
	cli.BoolFlag{
		Name:  "headful",
		Usage: "show the window of the launched browser",
	},
}

func applyBrowserFlags(ctx *cli.Context, cfg *config.Config) {
	if u := ctx.String("cdp-url"); u != "" {
		cfg.CDPURL = u
	}
	if ctx.Bool("headful") {
		cfg.Headless = false
	}
}
