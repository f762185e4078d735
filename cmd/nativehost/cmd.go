// Package nativehost provides the native-host commands: installing the
// browser manifests and running the host the extension talks to.
package nativehost

import (
	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/internal/nativehost"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// Runtime opens the pipeline served by the host. The returned func releases it.
type Runtime func(ctx *cli.Context) (*api.Api, logger.Logger, func(), error)

// Commands returns the native-host subcommands. open is used by run.
func Commands(open Runtime) []cli.Command {
	return []cli.Command{
		{
			Name:   "install",
			Action: install,
			Usage:  "install native messaging manifest for browsers",
			Flags:  installFlags,
		},
		{
			Name:   "uninstall",
			Action: uninstall,
			Usage:  "remove native messaging manifest from browsers",
			Flags:  uninstallFlags,
		},
		{
			Name:   "run",
			Action: run(open),
			Usage:  "run native messaging host (called by browser)",
			Hidden: true, // started by the browser
		},
		{
			Name:   "status",
			Action: status,
			Usage:  "show installation status for all browsers",
			Flags:  []cli.Flag{baseDirFlag},
		},
	}
}

// baseDirFlag replaces the home directory manifests are written under.
var baseDirFlag = cli.StringFlag{
	Name:   "base-dir",
	Usage:  "directory to use instead of the home directory",
	Hidden: true,
}

var installFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "browser",
		Usage: "browser to install for (chrome, firefox, chromium, edge, brave, all)",
		Value: "all",
	},
	cli.StringFlag{
		Name:  "chrome-extension-id",
		Usage: "Chrome extension ID (required for Chrome-based browsers)",
	},
	cli.StringFlag{
		Name:  "firefox-extension-id",
		Usage: "Firefox extension ID (required for Firefox)",
	},
	cli.BoolFlag{
		Name:  "auto",
		Usage: "use the published extension IDs (for package manager hooks)",
	},
	baseDirFlag,
}

var uninstallFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "browser",
		Usage: "browser to uninstall from (chrome, firefox, chromium, edge, brave, all)",
		Value: "all",
	},
	baseDirFlag,
}

// browsersFor expands a --browser value.
func browsersFor(name string) ([]nativehost.Browser, error) {
	if name == "" || name == "all" {
		return nativehost.SupportedBrowsers(), nil
	}
	b, err := nativehost.ParseBrowser(name)
	if err != nil {
		return nil, err
	}
	return []nativehost.Browser{b}, nil
}
