package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pushbox/game/engine"
	"github.com/wricardo/mcp-training/pushbox/game/input"
	"github.com/wricardo/mcp-training/pushbox/game/levels"
	"github.com/wricardo/mcp-training/pushbox/game/render"
)

func (a *app) playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a level in the terminal (w/a/s/d to move, q to quit)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Usage: "level to play (default: the default level)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level, err := loadPlayLevel(a.cfg.Levels.Dir, cmd.String("level"))
			if err != nil {
				return err
			}
			return play(ctx, os.Stdin, os.Stdout, level)
		},
	}
}

// loadPlayLevel picks the level for the play command. Without a level
// directory the built-in level is used unless a specific level was asked for.
func loadPlayLevel(dir, name string) (*engine.Level, error) {
	lm, err := levels.NewManager(dir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		log.Debug().Err(err).Msg("No level directory, playing the built-in level")
		return engine.DefaultLevel(), nil
	}
	if name == "" {
		return lm.Default(), nil
	}
	return lm.Load(name)
}

// play runs the render, read, move loop until quit or end of input
func play(ctx context.Context, in io.Reader, out io.Writer, level *engine.Level) error {
	e, err := engine.NewEngine(level)
	if err != nil {
		return err
	}

	keys, err := input.NewKeyReader(in)
	if err != nil {
		return fmt.Errorf("failed to read keys: %w", err)
	}
	defer keys.Close()

	// Raw terminals do not translate \n into a carriage return
	newline := "\n"
	if keys.Raw() {
		newline = "\r\n"
	}
	draw := func() {
		fmt.Fprint(out, strings.ReplaceAll(render.Text(e), "\n", newline))
		fmt.Fprintf(out, "moves: %d  pushes: %d%s", e.State().Moves, e.State().Pushes, newline)
	}

	fmt.Fprintf(out, "%s - w/a/s/d to move, q to quit%s", level.Name, newline)
	draw()
	solved := e.IsSolved()
	for ctx.Err() == nil {
		b, err := keys.ReadKey()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if input.IsQuit(b) {
			return nil
		}
		// Unknown keys never reach the engine but still redraw
		if d, ok := input.Decode(b); ok {
			e.Move(d)
		}
		draw()
		if now := e.IsSolved(); now && !solved {
			fmt.Fprint(out, "Solved!"+newline)
		}
		solved = e.IsSolved()
	}
	return nil
}
