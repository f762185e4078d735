package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	cmdcommon "github.com/laurynn-wl/cookie-project/cmd/common"
)

var classifyFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "json, j",
		Usage: "print the categories as JSON",
	},
}

func classify(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	names := []string(ctx.Args())
	if len(names) == 0 {
		return cmdcommon.PrintErrWithCmdHelp(ctx, errors.New("no cookie names provided"))
	}
	c, ok := setup(ctx, "classify")
	if !ok {
		return nil
	}
	defer c.Close()

	resp := c.Api.Classify(names)
	if ctx.Bool("json") {
		return printJSON(resp)
	}
	w := 0
	for _, n := range names {
		w = max(w, len(n))
	}
	for _, n := range names {
		fmt.Printf("%-*s  %s\n", w, n, resp.Categories[n])
	}
	return nil
}
