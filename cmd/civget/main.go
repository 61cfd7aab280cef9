package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"
)

var version = "dev"

type CLI struct {
	Get   GetCmd   `cmd:"" help:"Download models by AIR or download URL"`
	Token TokenCmd `cmd:"" help:"Manage the CivitAI API token"`

	Version VersionCmd `cmd:"" help:"Show version"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("civget version %s\n", version)
	return nil
}

func main() {
	cli := CLI{}
	parser := kong.Must(&cli,
		kong.Name("civget"),
		kong.Description("Batch CivitAI model downloader"),
		kong.UsageOnError(),
	)

	kongplete.Complete(parser,
		kongplete.WithPredictor("size", sizePredictor()),
		kongplete.WithPredictor("fp", fpPredictor()),
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}
