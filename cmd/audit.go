package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	cmdcommon "github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/cookies"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

var auditFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "file, f",
		Usage: "cookie database or cookies.txt to read (default: detect an installed browser)",
	},
	cli.BoolFlag{
		Name:  "json, j",
		Usage: "print the audit as JSON",
	},
}

// openFileStore opens path, or the first browser profile found when path is empty.
var openFileStore = func(path string, l logger.Logger) (*cookies.FileStore, error) {
	if path != "" {
		return cookies.OpenFileStore(path, l)
	}
	return cookies.DetectFileStore(l)
}

func audit(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	c, ok := setup(ctx, "audit")
	if !ok {
		return nil
	}
	defer c.Close()

	store, err := openFileStore(ctx.String("file"), c.Log)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "audit", "open_cookies", err)
		return nil
	}

	cctx, cancel := commandContext()
	defer cancel()

	var resp *common.ScanResponse
	if target := ctx.Args().First(); target != "" {
		resp, err = c.Api.Scan(cctx, &cookielib.StaticPage{URL: target}, store, nil)
		if err != nil {
			cmdcommon.PrintRuntimeErr(ctx, "audit", "collect", err)
			return nil
		}
	} else {
		resp = c.Api.Analyze(cctx, "", store.All())
	}

	if ctx.Bool("json") {
		return printJSON(resp)
	}
	if src := store.Source(); src != nil {
		fmt.Printf("Reading %s cookies from %s\n", src.Browser, src.Path)
	}
	printScan(resp)
	return nil
}
