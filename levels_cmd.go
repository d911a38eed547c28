package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pushbox/game/engine"
	"github.com/wricardo/mcp-training/pushbox/game/levels"
)

func (a *app) levelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "levels",
		Usage: "inspect level files",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "validate every level file in a directory",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.Args().First()
					if dir == "" {
						dir = a.cfg.Levels.Dir
					}
					return validateLevels(os.Stdout, dir)
				},
			},
		},
	}
}

// validateLevels prints a report for every level file in dir and fails
// when any of them is invalid
func validateLevels(out io.Writer, dir string) error {
	results, err := levels.ValidateDir(dir)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if len(results) == 0 {
		return cli.Exit(fmt.Sprintf("no level files found in %s", dir), 1)
	}

	allValid := true
	for _, result := range results {
		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, line := range summarize(result.Level) {
				fmt.Fprintln(out, "  ✓ "+line)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+e)
			}
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(out, "  ⚠ "+w)
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some levels have errors", 1)
	}
	fmt.Fprintln(out, "✅ All levels are valid!")
	return nil
}

func summarize(level *engine.Level) []string {
	if level == nil {
		return nil
	}
	board, actor, err := engine.ParseLayout(level.Layout)
	if err != nil {
		return nil
	}
	return []string{
		"Name: " + level.Name,
		fmt.Sprintf("Grid: %dx%d", board.Width(), board.Height()),
		fmt.Sprintf("Actor: %s", actor),
		fmt.Sprintf("Goals: %d", board.Count(engine.Goal)),
		fmt.Sprintf("Objects: %d", board.Count(engine.Object)),
	}
}
