package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pushbox/api"
	"github.com/wricardo/mcp-training/pushbox/game/levels"
	"github.com/wricardo/mcp-training/pushbox/game/service"
	"github.com/wricardo/mcp-training/pushbox/game/session"
	"github.com/wricardo/mcp-training/pushbox/settings"
	"github.com/wricardo/mcp-training/pushbox/transport/mcp"
	"github.com/wricardo/mcp-training/pushbox/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"
)

// services bundles the wired game stack
type services struct {
	levels      *levels.Manager
	sessions    *session.Manager
	persistence session.Persistence
	game        service.GameService
	close       func() error
}

// initializeServices wires the level manager, session storage and the game
// service, and restores persisted sessions
func initializeServices(cfg settings.Config) (*services, error) {
	levelManager, err := levels.NewManager(cfg.Levels.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}
	if cfg.Levels.Default != "" {
		if err := levelManager.SetDefault(cfg.Levels.Default); err != nil {
			return nil, fmt.Errorf("failed to set default level: %w", err)
		}
	}

	svc := &services{levels: levelManager, close: func() error { return nil }}

	switch cfg.Sessions.Store {
	case settings.StoreFile:
		fp, err := session.NewFilePersistence(cfg.Sessions.Dir, levelManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svc.persistence = fp
	case settings.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rp, err := session.NewRedisPersistence(client, levelManager, session.RedisOptions{
			Prefix: cfg.Redis.Prefix,
			TTL:    cfg.Redis.TTL,
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect session store: %w", err)
		}
		svc.persistence = rp
		svc.close = client.Close
	}

	if svc.persistence != nil {
		svc.sessions = session.NewManagerWithPersistence(svc.persistence)
		if err := svc.sessions.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("Failed to load persisted sessions")
		}
	} else {
		svc.sessions = session.NewManager()
	}
	log.Info().
		Str("levels", cfg.Levels.Dir).
		Str("store", cfg.Sessions.Store).
		Int("sessions", svc.sessions.Count()).
		Msg("Services initialized")

	svc.game = service.NewGameService(svc.sessions, levelManager)
	return svc, nil
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "sessions-dir", Usage: "directory for session files"},
			&cli.StringFlag{Name: "store", Usage: "session store: file, redis or memory"},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for the redis store"},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := serveConfig(a.cfg, cmd)
			if err != nil {
				return err
			}
			a.watchSettings(os.Stdout)
			return runHTTPServer(ctx, cfg)
		},
	}
}

// serveConfig applies serve flags on top of the loaded settings
func serveConfig(cfg settings.Config, cmd *cli.Command) (settings.Config, error) {
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("sessions-dir") {
		cfg.Sessions.Dir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("store") {
		cfg.Sessions.Store = cmd.String("store")
	}
	if cmd.IsSet("redis-addr") {
		cfg.Redis.Addr = cmd.String("redis-addr")
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	return cfg, settings.Validate(&cfg)
}

// newHandler mounts the API (with /ws) at the root and the MCP proxy at /mcp
func newHandler(game service.GameService, hub *websocket.Hub, selfURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(game, hub))
	mux.Handle("/mcp", mcp.NewClient(selfURL))
	return mux
}

// selfURL is the address the /mcp proxy uses to reach this server
func selfURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// runHTTPServer runs the HTTP server and its background work until ctx is
// cancelled or one of them fails
func runHTTPServer(ctx context.Context, cfg settings.Config) error {
	svc, err := initializeServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	hub := websocket.NewHub()
	handler := newHandler(svc.game, hub, selfURL(cfg.Server.Host, cfg.Server.Port))

	addr := cfg.Server.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown error")
		}
		if err := svc.sessions.SaveAll(); err != nil {
			log.Warn().Err(err).Msg("Failed to save sessions on shutdown")
		}
		return nil
	})

	if cfg.Levels.Watch {
		g.Go(func() error {
			if err := svc.levels.Watch(gctx); err != nil {
				log.Warn().Err(err).Msg("Level hot reload disabled")
			}
			return nil
		})
	}

	g.Go(func() error {
		sessionCleanupRoutine(gctx, svc.sessions, cfg.Sessions.CleanupInterval, cfg.Sessions.MaxAge)
		return nil
	})

	if svc.persistence != nil {
		g.Go(func() error {
			storeSyncRoutine(gctx, svc.sessions, svc.persistence, 5*time.Second)
			return nil
		})
	}

	if cfg.Ngrok.Enabled {
		g.Go(func() error {
			runNgrok(gctx, cfg.Ngrok, handler)
			return nil
		})
	}

	err = g.Wait()
	log.Info().Msg("Server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done. Tunnel
// failures are logged; the local server keeps running.
func runNgrok(ctx context.Context, cfg settings.NgrokConfig, handler http.Handler) {
	if cfg.AuthToken == "" {
		log.Warn().Msg("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or ngrok.auth_token)")
		return
	}

	log.Info().Msg("Starting ngrok tunnel...")
	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		log.Info().Str("domain", cfg.Domain).Msg("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().Str("url", url).Msg("Ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", url)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", url)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", url)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Ngrok server error")
	}
	log.Info().Msg("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("Cleaned up expired sessions")
			}
		}
	}
}

// storeSyncRoutine drops sessions from memory once they vanish from the
// store, for instance when a session file is deleted by hand or a Redis key
// expires
func storeSyncRoutine(ctx context.Context, manager *session.Manager, store session.Persistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneMissing(manager, store); pruned > 0 {
				log.Info().Int("pruned", pruned).Msg("Store sync pruned orphaned sessions from memory")
			}
		}
	}
}

// pruneMissing drops sessions whose stored copy is gone. Sessions the store
// never held, such as ones whose saves keep failing, stay in memory.
func pruneMissing(manager *session.Manager, store session.Persistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		sess.Lock()
		persisted := sess.Persisted
		sess.Unlock()
		if !persisted || store.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Debug().Str("session", sess.ID).Msg("Pruned session missing from store")
		}
	}
	return pruned
}
