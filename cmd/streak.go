package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	cmdcommon "github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

const welcomeText = `Welcome to cookiewatch!
Run "cookiewatch scan <url>" to grade the cookies of a site.`

func streak(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	c, ok := setup(ctx, "streak")
	if !ok {
		return nil
	}
	defer c.Close()

	cctx, cancel := commandContext()
	defer cancel()

	first, err := c.Api.FirstRun(cctx)
	if err != nil {
		c.Log.Warning("onboarding state unavailable: %v", err)
	}
	resp, err := c.Api.TickStreak(cctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "streak", "tick", err)
		return nil
	}
	if ctx.Bool("json") {
		return printJSON(resp)
	}
	if first {
		fmt.Println(welcomeText)
		fmt.Println()
	}
	printStreak(resp)
	return nil
}

func tip(ctx *cli.Context) error {
	t := cookielib.RandomTip()
	fmt.Printf("%s\n%s\n", t.Title, t.Text)
	return nil
}
