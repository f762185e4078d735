package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	cmdcommon "github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

var deleteFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "category, c",
		Usage: "comma separated categories to delete (default: every deletable category)",
	},
	cli.BoolFlag{
		Name:  "force",
		Usage: "also delete Essential and Unknown cookies",
	},
	cli.BoolTFlag{
		Name:  "verify",
		Usage: "check the cookies are gone after deleting (default: true)",
	},
	cli.BoolFlag{
		Name:  "guard, g",
		Usage: "keep removing deleted cookies the site writes back until the guard window ends",
	},
	cli.BoolFlag{
		Name:  "json, j",
		Usage: "print the result as JSON",
	},
}, browserFlags...)

// parseCategories reads a comma separated category list, ignoring case.
func parseCategories(s string) ([]cookielib.Category, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []cookielib.Category
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, c := range cookielib.Categories {
			if strings.EqualFold(part, string(c)) {
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown category %q", part)
		}
	}
	return out, nil
}

func deleteCookies(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	target := ctx.Args().First()
	if target == "" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, errors.New("no url provided"))
	}
	categories, err := parseCategories(ctx.String("category"))
	if err != nil {
		return cmdcommon.PrintErrWithCmdHelp(ctx, err)
	}
	c, ok := setup(ctx, "delete")
	if !ok {
		return nil
	}
	defer c.Close()
	applyBrowserFlags(ctx, c.Config)

	cctx, cancel := commandContext()
	defer cancel()
	b, err := newBrowser(cctx, c.Config, c.Log)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "delete", "open_browser", err)
		return nil
	}
	defer b.Close()
	if err := b.Navigate(cctx, target); err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "delete", "navigate", err)
		return nil
	}

	asJSON := ctx.Bool("json")
	scanned, err := runScan(cctx, c.Api, b, b, !asJSON)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "delete", "collect", err)
		return nil
	}

	guardCtx, stopGuard := context.WithCancel(cctx)
	defer stopGuard()
	var guardDone chan error
	if ctx.Bool("guard") {
		// subscribe before deleting so the first rewrite is not missed
		events, err := b.Watch(guardCtx)
		if err != nil {
			cmdcommon.PrintRuntimeErr(ctx, "delete", "watch", err)
			return nil
		}
		g := c.Api.Guard(b)
		g.OnRegenerated = func(r cookielib.Regeneration) {
			if !asJSON {
				fmt.Printf("Removed regenerated cookie %s (%s)\n", r.Cookie.Name, r.Cookie.Domain)
			}
		}
		guardDone = make(chan error, 1)
		go func() { guardDone <- g.Serve(guardCtx, events) }()
	}

	resp := c.Api.Delete(cctx, b, &common.DeleteParams{
		Cookies:    scanned.Cookies,
		Categories: categories,
		Force:      ctx.Bool("force"),
		Verify:     ctx.BoolT("verify"),
	})
	if asJSON {
		if err := printJSON(resp); err != nil {
			return err
		}
	} else {
		printDelete(resp)
	}

	if guardDone != nil {
		waitGuard(guardCtx, c.Config.GuardWindow, asJSON)
		stopGuard()
		if err := <-guardDone; err != nil {
			cmdcommon.PrintRuntimeErr(ctx, "delete", "guard", err)
		}
	}
	return nil
}

// waitGuard blocks for the guard window, or until ctx is canceled when the
// window is unbounded.
func waitGuard(ctx context.Context, window time.Duration, quiet bool) {
	if !quiet {
		if window > 0 {
			fmt.Printf("Guarding deleted cookies for %s\n", window)
		} else {
			fmt.Println("Guarding deleted cookies until interrupted")
		}
	}
	if window <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTimer(window)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
