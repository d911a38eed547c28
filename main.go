// Command pushbox serves the Pushbox puzzle game.
//
// Subcommands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp HTTP endpoint, optionally through an ngrok tunnel
//  2. "mcp" runs an MCP stdio server, spinning up an internal HTTP API when
//     no external one answers
//  3. "play" plays a level in the terminal with WASD
//  4. "levels validate" checks every level file in a directory
//
// Settings come from defaults, an optional pushbox.yaml, PUSHBOX_* environment
// variables (a .env file is loaded first) and finally command-line flags.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pushbox/settings"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pushbox Server"
)

// app carries the settings resolved in Before to every subcommand
type app struct {
	settings *settings.Settings
	cfg      settings.Config
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("pushbox failed")
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	a := &app{}
	return &cli.Command{
		Name:           "pushbox",
		Usage:          "push every object onto a goal",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML settings file (default: ./pushbox.yaml if present)",
				Sources: cli.EnvVars("PUSHBOX_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "console or json",
			},
			&cli.StringFlag{
				Name:    "levels-dir",
				Usage:   "directory containing level files",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, a.load(cmd, os.Stdout)
		},
		Commands: []*cli.Command{
			a.serveCommand(),
			a.mcpCommand(),
			a.playCommand(),
			a.levelsCommand(),
		},
	}
}

// load resolves settings and applies flag overrides on top of them
func (a *app) load(cmd *cli.Command, logOut io.Writer) error {
	s, err := settings.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	cfg := s.Config()
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("levels-dir") {
		cfg.Levels.Dir = cmd.String("levels-dir")
	}
	if err := settings.Validate(&cfg); err != nil {
		return err
	}

	a.settings = s
	a.cfg = cfg
	setupLogging(cfg.Log, logOut)
	if f := s.FileUsed(); f != "" {
		log.Debug().Str("file", f).Msg("Loaded settings")
	}
	return nil
}

// watchSettings hot-reloads the log level when the settings file changes
func (a *app) watchSettings(logOut io.Writer) {
	a.settings.Watch(func(c settings.Config) {
		setupLogging(c.Log, logOut)
		log.Info().Str("level", c.Log.Level).Msg("Settings reloaded")
	}, func(err error) {
		log.Warn().Err(err).Msg("Ignoring invalid settings change")
	})
}

func setupLogging(c settings.LogConfig, out io.Writer) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Format == "json" || os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}
