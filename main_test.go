package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tank-battle/api"
	"github.com/wricardo/tank-battle/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Tank Battle" {
		t.Errorf("Expected app name Tank Battle, got %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svc, err := initializeServices("configs")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.sessions.Close()

	if svc.game == nil || svc.hub == nil || svc.sessions == nil {
		t.Fatal("Expected all services to be initialized")
	}

	ctx := context.Background()
	info, err := svc.game.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	res, err := svc.game.PressKey(ctx, info.ID, "s")
	if err != nil {
		t.Fatalf("PressKey failed: %v", err)
	}
	if !res.Bound {
		t.Error("Expected s to be bound")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path"); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Int("port") != 8080 {
			t.Errorf("Expected default port 8080, got %v", cmd.Int("port"))
		}
		if cmd.String("host") != "localhost" {
			t.Errorf("Expected default host localhost, got %s", cmd.String("host"))
		}
		if cmd.String("config-dir") != "configs" {
			t.Errorf("Expected default config dir configs, got %s", cmd.String("config-dir"))
		}
		if cmd.String("static-dir") != api.DefaultStaticDir {
			t.Errorf("Expected default static dir, got %s", cmd.String("static-dir"))
		}
		if cmd.Bool("ngrok") {
			t.Error("ngrok should be disabled by default")
		}
		return nil
	}

	if err := app.Run(context.Background(), []string{"tank-battle"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestFlagSources(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("CONFIG_DIR", "mazes")

	called := false
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		called = true
		if cmd.Int("port") != 9191 {
			t.Errorf("Expected port from env, got %v", cmd.Int("port"))
		}
		if cmd.String("config-dir") != "mazes" {
			t.Errorf("Expected config dir from env, got %s", cmd.String("config-dir"))
		}
		if cmd.String("host") != "0.0.0.0" {
			t.Errorf("Expected host from flag, got %s", cmd.String("host"))
		}
		return nil
	}

	if err := app.Run(context.Background(), []string{"tank-battle", "--host", "0.0.0.0"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !called {
		t.Error("Expected root action to run")
	}
}

func TestCommands(t *testing.T) {
	app := newApp()

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"serve", "mcp", "play"} {
		if !names[want] {
			t.Errorf("Expected command %s", want)
		}
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1"))

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	req = httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	w = httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Tank Battle") {
		t.Errorf("Expected server name in initialize response, got %s", w.Body.String())
	}
}

func TestAPIAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if !apiAvailable(context.Background(), server.URL) {
		t.Error("Expected API to be available")
	}
	if apiAvailable(context.Background(), "http://127.0.0.1:1") {
		t.Error("Expected closed port to be unavailable")
	}
}

func TestStartInternalAPI(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svc, err := initializeServices("configs")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.sessions.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.start(ctx)

	baseURL, err := startInternalAPI(ctx, svc)
	if err != nil {
		t.Fatalf("Failed to start internal API: %v", err)
	}
	if !strings.HasPrefix(baseURL, "http://127.0.0.1:") {
		t.Errorf("Unexpected base URL %s", baseURL)
	}
	if !apiAvailable(ctx, baseURL) {
		t.Error("Expected internal API to answer health checks")
	}
}
