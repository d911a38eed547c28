package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pushbox/transport/mcp"
	"github.com/wricardo/mcp-training/pushbox/transport/websocket"
)

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "REST API to proxy; an internal server starts when it does not answer",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("PUSHBOX_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// stdout carries the protocol, so logs move to stderr
			setupLogging(a.cfg.Log, os.Stderr)
			return runStdioMCP(ctx, a, cmd.String("api-url"))
		},
	}
}

// apiAvailable reports whether a REST API answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalServer serves the API on a random loopback port and returns
// its base URL and a shutdown function
func startInternalServer(ctx context.Context, a *app) (string, func(), error) {
	svc, err := initializeServices(a.cfg)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		svc.close()
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	hubCtx, cancelHub := context.WithCancel(ctx)
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	httpServer := &http.Server{Handler: newHandler(svc.game, hub, baseURL)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Internal HTTP server error")
		}
	}()

	log.Info().Str("url", baseURL).Msg("Started internal HTTP server for MCP stdio")
	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		cancelHub()
		if err := svc.sessions.SaveAll(); err != nil {
			log.Warn().Err(err).Msg("Failed to save sessions on shutdown")
		}
		svc.close()
	}
	return baseURL, shutdown, nil
}

// runStdioMCP runs an MCP stdio server. It reuses an external API when one
// answers at apiURL, otherwise it starts an internal one.
func runStdioMCP(ctx context.Context, a *app, apiURL string) error {
	baseURL := apiURL
	if apiAvailable(ctx, apiURL) {
		log.Info().Str("url", apiURL).Msg("External API server found, using it for MCP")
	} else {
		log.Info().Str("url", apiURL).Msg("No external API server found, starting internal HTTP server")
		url, shutdown, err := startInternalServer(ctx, a)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = url
	}

	client := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")
	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
