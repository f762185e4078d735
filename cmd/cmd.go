package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/cmd/nativehost"
	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is reported by system.getVersion and the native host.
var currentBuildArgs BuildArgs

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "home",
		Usage:  "directory holding the config, state and logs",
		EnvVar: "COOKIEWATCH_HOME",
	},
	cli.BoolFlag{
		Name:  "debug, d",
		Usage: "enable debug logging",
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	common.VersionCmdStr = fmt.Sprintf(
		"cookiewatch %s (%s_%s)\nBuild: %s=%s\n",
		bArgs.Version, runtime.GOOS, runtime.GOARCH, bArgs.BuildType, bArgs.Commit,
	)
	app := cli.App{
		Name:                  "cookiewatch",
		HelpName:              "cookiewatch",
		Usage:                 "See, grade and clean up website cookies.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "cookiewatch [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:                   "scan",
				Aliases:                []string{"s"},
				Usage:                  "grade the cookies of a page in a live browser",
				Action:                 scan,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ScanDescription,
				UsageText:              "[options] <url>",
				Flags:                  scanFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "audit",
				Aliases:            []string{"a"},
				Usage:              "grade the cookies stored in a browser profile or cookie file",
				Action:             audit,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        AuditDescription,
				UsageText:          "[options] [url]",
				Flags:              auditFlags,
			},
			{
				Name:               "delete",
				Aliases:            []string{"rm"},
				Usage:              "delete the cookies of a page",
				Action:             deleteCookies,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DeleteDescription,
				UsageText:          "[options] <url>",
				Flags:              deleteFlags,
			},
			{
				Name:               "classify",
				Aliases:            []string{"c"},
				Usage:              "print the category of cookie names",
				Action:             classify,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ClassifyDescription,
				UsageText:          "<name> [name...]",
				Flags:              classifyFlags,
			},
			{
				Name:               "streak",
				Usage:              "record today's visit and show the streak",
				Action:             streak,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StreakDescription,
				Flags: []cli.Flag{
					cli.BoolFlag{Name: "json, j", Usage: "print the streak as JSON"},
				},
			},
			{
				Name:   "tip",
				Usage:  "print a random privacy tip",
				Action: tip,
			},
			{
				Name:               "daemon",
				Usage:              "serve the cookie pipeline over JSON-RPC",
				Action:             daemon,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DaemonDescription,
				Flags:              daemonFlags,
			},
			{
				Name:        "native-host",
				Usage:       "manage the browser extension's native messaging host",
				Subcommands: nativehost.Commands(nativeHostRuntime),
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "prints installed version of cookiewatch",
				Action:  common.GetVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	return app.Run(args)
}

// nativeHostRuntime opens the pipeline for native-host run. It logs to the
// file only, since stdout belongs to the browser.
func nativeHostRuntime(ctx *cli.Context) (*api.Api, logger.Logger, func(), error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := initComponents(cfg, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return c.Api, c.Log, c.Close, nil
}
