package cmd

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	cmdcommon "github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

var scanFlags = append([]cli.Flag{
	cli.BoolFlag{
		Name:  "json, j",
		Usage: "print the scan as JSON",
	},
}, browserFlags...)

func scan(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	target := ctx.Args().First()
	if target == "" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, errors.New("no url provided"))
	}
	c, ok := setup(ctx, "scan")
	if !ok {
		return nil
	}
	defer c.Close()
	applyBrowserFlags(ctx, c.Config)

	cctx, cancel := commandContext()
	defer cancel()
	b, err := newBrowser(cctx, c.Config, c.Log)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "scan", "open_browser", err)
		return nil
	}
	defer b.Close()
	if err := b.Navigate(cctx, target); err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "scan", "navigate", err)
		return nil
	}

	asJSON := ctx.Bool("json")
	resp, err := runScan(cctx, c.Api, b, b, !asJSON)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "scan", "collect", err)
		return nil
	}
	if asJSON {
		return printJSON(resp)
	}
	printScan(resp)
	return nil
}

// runScan scans page, drawing a progress bar on stderr when showBar is set.
func runScan(ctx context.Context, a *api.Api, page cookielib.PageContext, store cookielib.CookieStore, showBar bool) (*common.ScanResponse, error) {
	if !showBar {
		return a.Scan(ctx, page, store, nil)
	}
	p := mpb.NewWithContext(ctx, mpb.WithOutput(os.Stderr), mpb.WithWidth(40))
	bar := cmdcommon.InitScanBar(p, "")

	var (
		mu      sync.Mutex
		fetched int64
	)
	resp, err := a.Scan(ctx, page, store, func(common.ScanProgress) {
		mu.Lock()
		defer mu.Unlock()
		fetched++
		// keep the bar one step short of complete until the scan returns
		bar.SetTotal(fetched+1, false)
		bar.Increment()
	})
	bar.SetTotal(-1, true)
	p.Wait()
	return resp, err
}
