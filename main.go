// Command tilemerge starts the Tile Merge Game server.
//
// It supports three modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a game in the terminal
//
// Flags control host/port, config directory, log level, and optional ngrok
// tunneling for easy external access during development. Everything else
// comes from the environment, see config.Settings.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/tilemerge/api"
	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/scores"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
	"github.com/wricardo/mcp-training/tilemerge/transport/mcp"
	"github.com/wricardo/mcp-training/tilemerge/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Merge Game Server"
)

const (
	defaultAPIURL   = "http://localhost:8080"
	cleanupInterval = time.Hour
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("error loading .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("tilemerge")
	}
}

// newCommand builds the root command. Flags are visible to every sub-command.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "tilemerge",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing game configurations (default $CONFIG_DIR or configs)"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level (default $LOG_LEVEL or info)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (or NGROK_ENABLED)"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (or NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing a running API or starting an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: defaultAPIURL, Usage: "REST API to proxy when it is reachable"},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal: w/a/s/d to move, n for a new game, q to quit",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "Config ID to play (default classic)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := newApp(ctx, cmd)
					if err != nil {
						return err
					}
					defer a.Close()
					return runPlay(ctx, a.game, cmd.String("config"), os.Stdin, os.Stdout)
				},
			},
		},
	}
}

// app holds the wired services shared by every mode
type app struct {
	settings *config.Settings
	configs  *config.Manager
	sessions *session.Manager
	scores   service.ScoreStore
	game     service.GameService
}

// newApp reads settings, applies flag overrides and wires the services
func newApp(ctx context.Context, cmd *cli.Command) (*app, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	if dir := cmd.String("config-dir"); dir != "" {
		settings.ConfigDir = dir
	}
	if level := cmd.String("log-level"); level != "" {
		settings.LogLevel = level
	}
	if cmd.Bool("debug") {
		settings.LogLevel = zerolog.DebugLevel.String()
	}
	setupLogging(settings.LogLevel)

	return initializeServices(ctx, settings)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// initializeServices wires config, session and score stores into the game service
func initializeServices(ctx context.Context, settings *config.Settings) (*app, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if settings.DefaultConfig != "" {
		if err := configManager.SetDefault(settings.DefaultConfig); err != nil {
			return nil, fmt.Errorf("default config %s: %w", settings.DefaultConfig, err)
		}
	}

	store, err := openScoreStore(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open score store: %w", err)
	}

	sessionManager := session.NewManager()

	return &app{
		settings: settings,
		configs:  configManager,
		sessions: sessionManager,
		scores:   store,
		game:     service.NewGameService(sessionManager, configManager, service.WithScoreStore(store)),
	}, nil
}

// openScoreStore prefers Redis when REDIS_ADDR is set, then SQLite, then memory
func openScoreStore(ctx context.Context, settings *config.Settings) (service.ScoreStore, error) {
	switch {
	case settings.RedisAddr != "":
		log.Info().Str("addr", settings.RedisAddr).Str("key", settings.RedisKey).Msg("using redis leaderboard")
		return scores.NewRedisStore(ctx, settings.RedisAddr, settings.RedisKey)
	case settings.ScoresDB != "":
		log.Info().Str("path", settings.ScoresDB).Msg("using sqlite leaderboard")
		return scores.NewSQLiteStore(settings.ScoresDB)
	default:
		log.Info().Msg("using in-memory leaderboard")
		return scores.NewMemoryStore(), nil
	}
}

// Close releases the score store
func (a *app) Close() error {
	return a.scores.Close()
}

// cleanupExpiredSessions deletes sessions idle for longer than the TTL. Going
// through the service records their unfinished games.
func (a *app) cleanupExpiredSessions(ctx context.Context) int {
	removed := 0
	for _, id := range a.sessions.ExpiredSessions(a.settings.SessionTTL) {
		if err := a.game.DeleteSession(ctx, id); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("delete expired session")
			continue
		}
		removed++
	}
	return removed
}

// sessionCleanupRoutine periodically prunes stale sessions until ctx is done
func (a *app) sessionCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := a.cleanupExpiredSessions(ctx); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// reloadConfigsOnHangup drops cached configs on SIGHUP so edited files are
// picked up without a restart. Running sessions keep the config they started
// with.
func (a *app) reloadConfigsOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			a.configs.RefreshCache()
			if a.settings.DefaultConfig != "" {
				if err := a.configs.SetDefault(a.settings.DefaultConfig); err != nil {
					log.Warn().Err(err).Str("config", a.settings.DefaultConfig).Msg("default config")
				}
			}
			log.Info().Str("default", a.configs.GetDefault().Name).Msg("configs reloaded")
		}
	}
}

// mcpHTTPHandler serves single JSON-RPC messages over POST /mcp
func mcpHTTPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// loopbackURL is the address the in-process MCP proxy uses to reach the API
func loopbackURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(port))
}

// newRouter mounts the REST API and the /mcp endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHTTPHandler(mcpClient))
	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)
	go a.sessionCleanupRoutine(ctx)
	go a.reloadConfigsOnHangup(ctx)

	port := int(cmd.Int("port"))
	addr := net.JoinHostPort(cmd.String("host"), fmt.Sprint(port))
	mainRouter := newRouter(api.NewServer(a.game, hub), mcp.NewClient(loopbackURL(cmd.String("host"), port)))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("version", Version).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("ws", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") || a.settings.NgrokEnabled {
		authToken := cmd.String("ngrok-auth")
		if authToken == "" {
			authToken = a.settings.NgrokAuthToken
		}
		domain := cmd.String("ngrok-domain")
		if domain == "" {
			domain = a.settings.NgrokDomain
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, authToken, domain, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serveErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Warn().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// apiReachable reports whether a tilemerge API answers at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// one answers; otherwise it starts an internal HTTP API on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")

	if apiReachable(ctx, baseURL) {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Str("url", baseURL).Msg("no external API server found, starting internal HTTP server")

		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)
		go a.sessionCleanupRoutine(ctx)

		httpServer := &http.Server{Handler: api.NewServer(a.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("url", baseURL).Msg("internal HTTP server ready")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")
	return server.ServeStdio(mcpClient.GetMCPServer())
}
