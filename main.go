// Command tank-battle starts the Tank Battle server or a local terminal game.
//
// It supports three commands:
//  1. "serve" (default) runs the HTTP server exposing REST API, WebSocket, the
//     browser client and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none
//     is available
//  3. "play" plays a two-player match in the terminal
//
// Flags control host/port, config directory, debug logging and optional ngrok
// tunneling for easy external access during development.
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

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/tank-battle/api"
	"github.com/wricardo/tank-battle/game/config"
	"github.com/wricardo/tank-battle/game/service"
	"github.com/wricardo/tank-battle/game/session"
	"github.com/wricardo/tank-battle/presentation/terminal"
	"github.com/wricardo/tank-battle/transport/mcp"
	"github.com/wricardo/tank-battle/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tank Battle"
)

const (
	sessionCleanupInterval = time.Hour
	sessionMaxAge          = 24 * time.Hour
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tank-battle",
		Usage:   "two-player tank battle on a grid",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing maze configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "static-dir",
				Value:   api.DefaultStaticDir,
				Usage:   "Directory served at / for the browser client",
				Sources: cli.EnvVars("STATIC_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: setupLogging,
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with API, WebSocket, browser client and MCP endpoint",
				Action: runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "External API to proxy; an internal one is started when unreachable",
						Sources: cli.EnvVars("API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play a local two-player match in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "maze",
						Aliases: []string{"m"},
						Usage:   "Maze config id (default maze when empty)",
					},
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Write logs to this file while the terminal is in use",
					},
				},
				Action: runPlay,
			},
		},
	}
}

// setupLogging configures logrus from the root flags
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cmd.Bool("debug") {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return ctx, nil
}

// services bundles the long-lived components behind the HTTP API
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
}

// initializeServices wires config and session managers, the game service and
// the WebSocket hub. Every state change of every session is pushed to the hub.
func initializeServices(configDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	hub := websocket.NewHub()
	sessionManager := session.NewManager(session.WithStateListener(hub.BroadcastToSession))
	gameService := service.NewGameService(sessionManager, configManager)

	hub.SetKeyHandler(func(ctx context.Context, sessionID, key string) error {
		_, err := gameService.PressKey(ctx, sessionID, key)
		return err
	})

	return &services{game: gameService, sessions: sessionManager, hub: hub}, nil
}

// start runs the hub and the session cleanup routine until ctx is done
func (s *services) start(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.sessions.StartCleanup(ctx, sessionCleanupInterval, sessionMaxAge)
}

// mcpHandler serves single MCP JSON-RPC messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.WithError(err).Warn("failed to write MCP response")
		}
	}
}

// newRouter mounts the API at / and the MCP endpoint at /mcp
func newRouter(apiServer http.Handler, client *mcp.Client) *http.ServeMux {
	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", mcpHandler(client))
	return router
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel. It
// blocks until ctx is cancelled, then shuts everything down.
func runServe(ctx context.Context, cmd *cli.Command) error {
	logger := log.WithField("component", "server")
	logger.Infof("Starting %s v%s", AppName, Version)

	svc, err := initializeServices(cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.sessions.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	svc.start(ctx)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	apiServer := api.NewServer(svc.game, svc.hub, api.WithStaticDir(cmd.String("static-dir")))
	router := newRouter(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Infof("HTTP server listening on %s", addr)
		logger.Infof("Game UI: http://%s/", addr)
		logger.Infof("REST API: http://%s/api", addr)
		logger.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		logger.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd, router)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	logger.Info("Server stopped")
	return nil
}

// runNgrok serves the router through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	logger := log.WithField("component", "ngrok")

	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Infof("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	logger.Infof("Ngrok tunnel established: %s", url)
	logger.Infof("  Game UI (ngrok): %s/", url)
	logger.Infof("  REST API (ngrok): %s/api", url)
	logger.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", url)
	logger.Infof("  MCP endpoint (ngrok): %s/mcp", url)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.WithError(err).Warn("Ngrok server error")
	}
	logger.Info("Ngrok tunnel closed")
}

// apiAvailable reports whether an API answers health checks at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
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

// startInternalAPI serves the API on a random loopback port and returns its
// base URL. The server stops when ctx is done.
func startInternalAPI(ctx context.Context, svc *services) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Internal HTTP server error")
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return "http://" + listener.Addr().String(), nil
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// it answers; otherwise it starts an internal one. Logs go to stderr so
// stdout stays reserved for the protocol.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	log.SetOutput(os.Stderr)
	logger := log.WithField("component", "mcp")

	baseURL := cmd.String("api-url")
	logger.Infof("Checking for external API server at %s...", baseURL)

	if apiAvailable(ctx, baseURL) {
		logger.Infof("External API server found at %s", baseURL)
	} else {
		logger.Info("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(cmd.String("config-dir"))
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.sessions.Close()
		svc.start(ctx)

		baseURL, err = startInternalAPI(ctx, svc)
		if err != nil {
			return err
		}
		logger.Infof("Internal HTTP server on %s", baseURL)
	}

	client := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")
	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runPlay plays a match in the terminal. Logs are discarded unless
// --log-file is set, since they would draw over the board.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	maze := configManager.GetDefault()
	if name := cmd.String("maze"); name != "" {
		if maze, err = configManager.LoadConfig(name); err != nil {
			return fmt.Errorf("failed to load maze: %w", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}

	game, err := terminal.New(screen, maze)
	if err != nil {
		screen.Fini()
		return err
	}
	return game.Run(ctx)
}
