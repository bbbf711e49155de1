package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/nexusmusic/nexusdl/internal/shared"
	"github.com/urfave/cli/v3"
)

func delayFlag(value float64) *cli.FloatFlag {
	return &cli.FloatFlag{
		Name:  "delay",
		Usage: "Seconds to wait between external requests",
		Value: value,
	}
}

func dryRunFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Report what would happen without changing anything",
	}
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the run summary as JSON",
	}
}

// delayOf converts the seconds value of the --delay flag into a Duration.
func delayOf(cmd *cli.Command) time.Duration {
	return time.Duration(cmd.Float("delay") * float64(time.Second))
}

// firstArg returns the required first positional argument.
func firstArg(cmd *cli.Command, name string) (string, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return arg, nil
}

// runDirArg accepts either a run directory or a path to a file inside it
// (output.json, failures.json) and returns the run directory.
func runDirArg(cmd *cli.Command) (string, error) {
	arg, err := firstArg(cmd, "run directory or manifest path")
	if err != nil {
		return "", err
	}
	if filepath.Ext(arg) == ".json" {
		return filepath.Dir(arg), nil
	}
	return arg, nil
}
