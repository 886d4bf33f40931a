package main

import (
	"os"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Init    InitCmd          `cmd:"" help:"Write a starter configuration file"`
	Derive  DeriveCmd        `cmd:"" help:"Print the account addresses of a table"`
	Decode  DecodeCmd        `cmd:"" help:"Decode a raw account or event"`
	Eval    EvalCmd          `cmd:"" help:"Evaluate poker hands"`
	Show    ShowCmd          `cmd:"" help:"Fetch and render a table once"`
	Watch   WatchCmd         `cmd:"" help:"Follow tables live"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hiddenhand"),
		kong.Description("Client-side tools for hiddenhand poker tables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	cli.Globals.out = os.Stdout
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
